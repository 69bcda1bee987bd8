// SPDX-License-Identifier: GPL-2.0-or-later

package collision

import (
	"testing"

	"gokart/math/vec"
	"gokart/surface"
)

func TestResolveInsideFootprint(t *testing.T) {
	verts, faces := floorGrid(4, 100, 0)
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// strictly inside triangle 0 (cell 0,0 lower left half)
	for _, p := range []vec.Vec3{
		{X: -190, Y: 0, Z: -190},
		{X: -170, Y: 0, Z: -140},
		{X: -130, Y: 0, Z: -180},
	} {
		c := Resolve(m, p, Empty())
		if c.MeshIndexZX != 0 {
			t.Errorf("Resolve(%v).MeshIndexZX = %d, want 0", p, c.MeshIndexZX)
		}
		if d := c.Distance(ZX); d != 0 {
			t.Errorf("Resolve(%v) floor distance = %v, want 0", p, d)
		}
		if !c.HasGround() {
			t.Errorf("Resolve(%v) has no ground", p)
		}
	}
}

func TestResolveAboveFloor(t *testing.T) {
	verts, faces := floorGrid(2, 100, 10)
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	p := vec.Vec3{X: 20, Y: 30, Z: 30}
	c := Resolve(m, p, Empty())
	if !c.HasGround() {
		t.Fatalf("Resolve(%v) has no ground", p)
	}
	if d := c.Distance(ZX); abs(d-20) > 1e-4 {
		t.Errorf("Resolve(%v) floor distance = %v, want 20", p, d)
	}
	h, ok := m.GroundHeight(vec.Vec3{X: 20, Y: 55, Z: 30}, &c)
	if !ok || abs(h-10) > 1e-4 {
		t.Errorf("GroundHeight = %v, %v, want 10, true", h, ok)
	}
}

func TestResolveOutsideAllBoxes(t *testing.T) {
	verts, faces := floorGrid(2, 100, 0)
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	last := Empty()
	last.Normal = vec.Vec3{X: 0, Y: 0.8, Z: 0.6}
	for _, p := range []vec.Vec3{
		{X: 1000, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: -1000},
		{X: 0, Y: ContactReach + 1, Z: 0},
	} {
		c := Resolve(m, p, last)
		if !c.NoGroundFound() {
			t.Errorf("Resolve(%v) = %+v, want no ground", p, c)
		}
		for _, pr := range Projections {
			if d := c.Distance(pr); d != NoGround {
				t.Errorf("Resolve(%v) %v distance = %v, want NoGround", p, pr, d)
			}
		}
		if c.Normal != last.Normal {
			t.Errorf("Resolve(%v) normal = %v, want last known %v", p, c.Normal, last.Normal)
		}
	}
}

func TestResolveSharedEdgeIsDeterministic(t *testing.T) {
	verts, faces := floorGrid(1, 100, 0)
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// on the diagonal shared by triangles 0 and 1
	p := vec.Vec3{X: 0, Y: 0, Z: 0}
	first := Resolve(m, p, Empty())
	if first.MeshIndexZX != 0 {
		t.Errorf("shared edge resolved to %d, want declaration order winner 0", first.MeshIndexZX)
	}
	for range 50 {
		if c := Resolve(m, p, Empty()); c != first {
			t.Fatalf("Resolve not stable: %+v != %+v", c, first)
		}
	}
}

func TestResolvePrefersNearestFloor(t *testing.T) {
	// bridge above a road, both covering the same footprint
	verts := []vec.Vec3{
		{X: -50, Y: 0, Z: -50}, {X: -50, Y: 0, Z: 50}, {X: 50, Y: 0, Z: -50},
		{X: -50, Y: 40, Z: -50}, {X: -50, Y: 40, Z: 50}, {X: 50, Y: 40, Z: -50},
	}
	faces := []Face{
		{V: [3]int32{3, 4, 5}, Surface: surface.Bridge},
		{V: [3]int32{0, 1, 2}, Surface: surface.Road},
	}
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, tc := range []struct {
		p    vec.Vec3
		want int32
	}{
		{vec.Vec3{X: -20, Y: 1, Z: -20}, 1},
		// just under the bridge the road below is the floor
		{vec.Vec3{X: -20, Y: 39, Z: -20}, 1},
		{vec.Vec3{X: -20, Y: 40, Z: -20}, 0},
		{vec.Vec3{X: -20, Y: 42, Z: -20}, 0},
	} {
		c := Resolve(m, tc.p, Empty())
		if c.MeshIndexZX != tc.want {
			t.Errorf("Resolve(%v).MeshIndexZX = %d, want %d", tc.p, c.MeshIndexZX, tc.want)
		}
		if d := c.Distance(ZX); d < 0 {
			t.Errorf("Resolve(%v) distance = %v, want a floor in front", tc.p, d)
		}
		if got := m.Triangle(c.MeshIndexZX); got == nil || got.Index != tc.want {
			t.Errorf("Triangle(%d) = %v", c.MeshIndexZX, got)
		}
	}
}

func TestResolveTieGoesToDeclarationOrder(t *testing.T) {
	// two coplanar floors; the later one has a taller box, so it is the
	// nearer candidate along y
	verts := []vec.Vec3{
		{X: -50, Y: 0, Z: -50}, {X: -50, Y: 0, Z: 50}, {X: 50, Y: 0, Z: -50},
	}
	tall := &Box{Min: vec.Vec3{X: -50, Y: 0, Z: -50}, Max: vec.Vec3{X: 50, Y: 10, Z: 50}}
	faces := []Face{
		{V: [3]int32{0, 1, 2}, Surface: surface.Road},
		{V: [3]int32{0, 1, 2}, Surface: surface.Grass, Bounds: tall},
	}
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	p := vec.Vec3{X: -20, Y: 5, Z: -20}
	if near := m.QueryNear(p, ZX); len(near) != 2 || near[0] != 1 {
		t.Fatalf("QueryNear(%v) = %v, want [1 0]", p, near)
	}
	if c := Resolve(m, p, Empty()); c.MeshIndexZX != 0 {
		t.Errorf("Resolve(%v).MeshIndexZX = %d, want 0", p, c.MeshIndexZX)
	}
}

func TestResolvePenetrationOffset(t *testing.T) {
	verts := []vec.Vec3{
		{X: -50, Y: 0, Z: -50}, {X: -50, Y: 0, Z: 50}, {X: 50, Y: 0, Z: -50},
	}
	box := &Box{Min: vec.Vec3{X: -50, Y: -5, Z: -50}, Max: vec.Vec3{X: 50, Y: 5, Z: 50}}
	m, err := Build(verts, []Face{{V: [3]int32{0, 1, 2}, Bounds: box}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	c := Resolve(m, vec.Vec3{X: -10, Y: -2, Z: -10}, Empty())
	if c.MeshIndexZX != 0 {
		t.Fatalf("no floor below penetrating point")
	}
	if d := c.Distance(ZX); abs(d+2) > 1e-4 {
		t.Errorf("floor distance = %v, want -2", d)
	}
	if abs(c.Offset.Y-2) > 1e-4 {
		t.Errorf("offset = %v, want push out of 2 along y", c.Offset)
	}
	// further than the tolerance counts as having fallen through
	c = Resolve(m, vec.Vec3{X: -10, Y: -PenetrationTolerance - 0.5, Z: -10}, Empty())
	if c.HasGround() {
		t.Errorf("point below tolerance still has ground: %+v", c)
	}
}

func TestResolveWall(t *testing.T) {
	// wall in the plane x = 30 facing -x
	verts := []vec.Vec3{
		{X: 30, Y: 0, Z: -50}, {X: 30, Y: 50, Z: -50}, {X: 30, Y: 0, Z: 50},
	}
	box := &Box{Min: vec.Vec3{X: 20, Y: 0, Z: -50}, Max: vec.Vec3{X: 40, Y: 50, Z: 50}}
	m, err := Build(verts, []Face{{V: [3]int32{0, 2, 1}, Bounds: box}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if n := m.Tris[0].Normal; n.X > -0.99 {
		t.Fatalf("wall normal = %v, want -x", n)
	}
	c := Resolve(m, vec.Vec3{X: 28, Y: 5, Z: -40}, Empty())
	if c.MeshIndexZY != 0 {
		t.Fatalf("wall not found: %+v", c)
	}
	if d := c.Distance(ZY); abs(d-2) > 1e-4 {
		t.Errorf("wall distance = %v, want 2", d)
	}
	if c.HasGround() {
		t.Errorf("wall counted as floor")
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
