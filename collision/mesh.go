// SPDX-License-Identifier: GPL-2.0-or-later

package collision

import (
	"cmp"
	"slices"

	"gokart/math/vec"
)

// Projection names the plane a query is projected onto. The remaining axis
// is the one distances are measured along.
type Projection int

const (
	// ZY resolves walls facing along x.
	ZY Projection = iota
	// ZX resolves floors, distances along y.
	ZX
	// YX resolves walls facing along z.
	YX
)

var Projections = [3]Projection{ZY, ZX, YX}

// Axis returns the axis perpendicular to the projection plane.
func (p Projection) Axis() int {
	switch p {
	case ZY:
		return 0
	case ZX:
		return 1
	default:
		return 2
	}
}

// plane returns the two axes spanning the projection plane.
func (p Projection) plane() (int, int) {
	switch p {
	case ZY:
		return 2, 1
	case ZX:
		return 2, 0
	default:
		return 1, 0
	}
}

func (p Projection) String() string {
	switch p {
	case ZY:
		return "ZY"
	case ZX:
		return "ZX"
	default:
		return "YX"
	}
}

const defaultGridCells = 32

type bucket struct {
	members []int32
	// union of the members' boxes on the plane axes
	min, max [2]float32
}

type grid struct {
	a, b     int
	origin   [2]float32
	cellSize [2]float32
	cells    int
	// how many cells away from its own bucket a triangle's box can reach
	reach   [2]int
	buckets []bucket
	// bucket index per triangle
	home []int32
}

// Mesh is the immutable collision geometry of one course.
type Mesh struct {
	Verts  []vec.Vec3
	Tris   []Triangle
	Bounds Box
	index  [3]grid
}

type buildConfig struct {
	cells int
}

type Option func(*buildConfig)

// WithGridCells sets the number of index cells per plane axis.
func WithGridCells(n int) Option {
	return func(c *buildConfig) {
		if n > 0 {
			c.cells = n
		}
	}
}

// Build validates the faces, precomputes planes and boxes and indexes every
// triangle into exactly one bucket per projection. Bucket membership keeps
// declaration order, which makes query results deterministic.
func Build(verts []vec.Vec3, faces []Face, opts ...Option) (*Mesh, error) {
	cfg := buildConfig{cells: defaultGridCells}
	for _, o := range opts {
		o(&cfg)
	}
	if len(faces) == 0 {
		return nil, &InvalidGeometryError{Face: -1, Reason: "no faces"}
	}
	m := &Mesh{
		Verts: slices.Clone(verts),
		Tris:  make([]Triangle, 0, len(faces)),
	}
	for i, f := range faces {
		t, err := newTriangle(i, f, m.Verts)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			m.Bounds = t.Box()
		} else {
			m.Bounds.Min = vec.Min(m.Bounds.Min, t.Min)
			m.Bounds.Max = vec.Max(m.Bounds.Max, t.Max)
		}
		m.Tris = append(m.Tris, t)
	}
	for _, p := range Projections {
		m.index[p] = m.buildGrid(p, cfg.cells)
	}
	return m, nil
}

func (m *Mesh) buildGrid(p Projection, cells int) grid {
	a, b := p.plane()
	g := grid{
		a:       a,
		b:       b,
		cells:   cells,
		buckets: make([]bucket, cells*cells),
		home:    make([]int32, len(m.Tris)),
	}
	for k, ax := range [2]int{a, b} {
		lo, hi := m.Bounds.Min.Idx(ax), m.Bounds.Max.Idx(ax)
		g.origin[k] = lo
		g.cellSize[k] = max((hi-lo)/float32(cells), 1)
	}
	for i := range m.Tris {
		t := &m.Tris[i]
		var c [2]int
		for k, ax := range [2]int{a, b} {
			lo, hi := t.Min.Idx(ax), t.Max.Idx(ax)
			c[k] = g.cell(k, (lo+hi)/2)
			r := int((hi-lo)/2/g.cellSize[k]) + 1
			g.reach[k] = max(g.reach[k], r)
		}
		bi := c[0]*cells + c[1]
		bk := &g.buckets[bi]
		tmin := [2]float32{t.Min.Idx(a), t.Min.Idx(b)}
		tmax := [2]float32{t.Max.Idx(a), t.Max.Idx(b)}
		if len(bk.members) == 0 {
			bk.min, bk.max = tmin, tmax
		} else {
			for k := range 2 {
				bk.min[k] = min(bk.min[k], tmin[k])
				bk.max[k] = max(bk.max[k], tmax[k])
			}
		}
		bk.members = append(bk.members, int32(i))
		g.home[i] = int32(bi)
	}
	return g
}

func (g *grid) cell(k int, v float32) int {
	c := int((v - g.origin[k]) / g.cellSize[k])
	return min(max(c, 0), g.cells-1)
}

// QueryNear returns the triangles whose bounding box contains p projected
// onto proj, nearest first along the projection axis. Ties keep declaration
// order. The result is empty if p is outside every bucket.
func (m *Mesh) QueryNear(p vec.Vec3, proj Projection) []int32 {
	g := &m.index[proj]
	pa, pb := p.Idx(g.a), p.Idx(g.b)
	if pa < m.Bounds.Min.Idx(g.a) || pa > m.Bounds.Max.Idx(g.a) ||
		pb < m.Bounds.Min.Idx(g.b) || pb > m.Bounds.Max.Idx(g.b) {
		return nil
	}
	ci, cj := g.cell(0, pa), g.cell(1, pb)
	var out []int32
	for i := max(ci-g.reach[0], 0); i <= min(ci+g.reach[0], g.cells-1); i++ {
		for j := max(cj-g.reach[1], 0); j <= min(cj+g.reach[1], g.cells-1); j++ {
			bk := &g.buckets[i*g.cells+j]
			if len(bk.members) == 0 ||
				pa < bk.min[0] || pa > bk.max[0] ||
				pb < bk.min[1] || pb > bk.max[1] {
				continue
			}
			for _, ti := range bk.members {
				if m.Tris[ti].containsProjected(p, g.a, g.b) {
					out = append(out, ti)
				}
			}
		}
	}
	axis := proj.Axis()
	slices.SortFunc(out, func(x, y int32) int {
		gx, gy := m.Tris[x].axisGap(p, axis), m.Tris[y].axisGap(p, axis)
		if c := cmp.Compare(gx, gy); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})
	return out
}

// Triangle returns the triangle with declaration index i.
func (m *Mesh) Triangle(i int32) *Triangle {
	if i < 0 || int(i) >= len(m.Tris) {
		return nil
	}
	return &m.Tris[i]
}

// Floor returns the lowest y of the course.
func (m *Mesh) Floor() float32 {
	return m.Bounds.Min.Y
}
