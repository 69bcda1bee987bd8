// SPDX-License-Identifier: GPL-2.0-or-later

package collision

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/chewxy/math32"

	"gokart/math/vec"
	"gokart/surface"
)

// floorGrid returns a flat n by n grid of cells of size s centered on the
// origin at height y, two triangles per cell with upward normals.
func floorGrid(n int, s, y float32) ([]vec.Vec3, []Face) {
	var verts []vec.Vec3
	var faces []Face
	half := float32(n) * s / 2
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			verts = append(verts, vec.Vec3{X: float32(j)*s - half, Y: y, Z: float32(i)*s - half})
		}
	}
	w := int32(n + 1)
	for i := int32(0); i < int32(n); i++ {
		for j := int32(0); j < int32(n); j++ {
			v0 := i*w + j
			v1 := v0 + 1
			v2 := v0 + w
			v3 := v2 + 1
			// winding (v0, v2, v1) gives +y normals
			faces = append(faces,
				Face{V: [3]int32{v0, v2, v1}, Surface: surface.Road},
				Face{V: [3]int32{v1, v2, v3}, Surface: surface.Road})
		}
	}
	return verts, faces
}

func TestBuildNormals(t *testing.T) {
	verts, faces := floorGrid(2, 100, 0)
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i, tri := range m.Tris {
		if d := vec.Sub(tri.Normal, vec.Up).Length(); d > 1e-5 {
			t.Errorf("triangle %d normal = %v, want up", i, tri.Normal)
		}
		if math32.Abs(tri.Dist) > 1e-4 {
			t.Errorf("triangle %d dist = %v, want 0", i, tri.Dist)
		}
		for _, vi := range tri.V {
			if !tri.Box().Contains(m.Verts[vi], 0) {
				t.Errorf("triangle %d box %v does not hold %v", i, tri.Box(), m.Verts[vi])
			}
		}
	}
}

func TestBuildRejectsInvalidGeometry(t *testing.T) {
	verts := []vec.Vec3{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 10}, {X: 20, Y: 0, Z: 0}}
	for _, tc := range []struct {
		name  string
		faces []Face
	}{
		{"empty", nil},
		{"degenerate", []Face{{V: [3]int32{0, 1, 3}}}},
		{"repeated vertex", []Face{{V: [3]int32{0, 0, 1}}}},
		{"index out of range", []Face{{V: [3]int32{0, 1, 9}}}},
		{"inverted box", []Face{{V: [3]int32{0, 2, 1}, Bounds: &Box{Min: vec.Vec3{X: 10, Y: 0, Z: 10}, Max: vec.Vec3{X: 0, Y: 0, Z: 0}}}}},
		{"box too small", []Face{{V: [3]int32{0, 2, 1}, Bounds: &Box{Min: vec.Vec3{X: 0, Y: 0, Z: 0}, Max: vec.Vec3{X: 5, Y: 0, Z: 5}}}}},
	} {
		_, err := Build(verts, tc.faces)
		var ige *InvalidGeometryError
		if !errors.As(err, &ige) {
			t.Errorf("%s: Build error = %v, want InvalidGeometryError", tc.name, err)
		}
	}
}

func TestBuildAcceptsCourseBounds(t *testing.T) {
	verts := []vec.Vec3{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 10}}
	box := &Box{Min: vec.Vec3{X: -1, Y: -1, Z: -1}, Max: vec.Vec3{X: 11, Y: 1, Z: 11}}
	m, err := Build(verts, []Face{{V: [3]int32{0, 2, 1}, Bounds: box}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.Tris[0].Box() != *box {
		t.Errorf("course bounds not kept: %v", m.Tris[0].Box())
	}
}

func TestEveryTriangleInOneBucketPerProjection(t *testing.T) {
	verts, faces := floorGrid(8, 50, 0)
	m, err := Build(verts, faces, WithGridCells(4))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, p := range Projections {
		g := &m.index[p]
		seen := make([]int, len(m.Tris))
		for bi, bk := range g.buckets {
			for _, ti := range bk.members {
				seen[ti]++
				if g.home[ti] != int32(bi) {
					t.Errorf("%v: triangle %d home %d, found in %d", p, ti, g.home[ti], bi)
				}
			}
			if !slices.IsSorted(bk.members) {
				t.Errorf("%v: bucket %d members not in declaration order", p, bi)
			}
		}
		for ti, n := range seen {
			if n != 1 {
				t.Errorf("%v: triangle %d in %d buckets, want 1", p, ti, n)
			}
		}
	}
}

func TestQueryNearOutside(t *testing.T) {
	verts, faces := floorGrid(2, 100, 0)
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, p := range Projections {
		if got := m.QueryNear(vec.Vec3{X: 5000, Y: 0, Z: 5000}, p); len(got) != 0 {
			t.Errorf("QueryNear(outside, %v) = %v, want empty", p, got)
		}
	}
}

func TestQueryNearNearestFirst(t *testing.T) {
	// two stacked floors, upper one declared first
	verts := []vec.Vec3{
		{X: 0, Y: 100, Z: 0}, {X: 0, Y: 100, Z: 10}, {X: 10, Y: 100, Z: 0},
		{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 10}, {X: 10, Y: 0, Z: 0},
	}
	faces := []Face{{V: [3]int32{0, 1, 2}}, {V: [3]int32{3, 4, 5}}}
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got := m.QueryNear(vec.Vec3{X: 2, Y: 10, Z: 2}, ZX)
	want := []int32{1, 0}
	if !slices.Equal(got, want) {
		t.Errorf("QueryNear near lower floor = %v, want %v", got, want)
	}
	got = m.QueryNear(vec.Vec3{X: 2, Y: 90, Z: 2}, ZX)
	want = []int32{0, 1}
	if !slices.Equal(got, want) {
		t.Errorf("QueryNear near upper floor = %v, want %v", got, want)
	}
}

func TestQueryNearConcurrent(t *testing.T) {
	verts, faces := floorGrid(16, 25, 0)
	m, err := Build(verts, faces)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	p := vec.Vec3{X: 13, Y: 3, Z: -41}
	want := m.QueryNear(p, ZX)
	if len(want) == 0 {
		t.Fatalf("QueryNear found nothing")
	}
	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if got := m.QueryNear(p, ZX); !slices.Equal(got, want) {
					errs <- "concurrent QueryNear returned a different result"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
