// SPDX-License-Identifier: GPL-2.0-or-later

package collision

import (
	"fmt"

	"github.com/chewxy/math32"

	"gokart/math/vec"
	"gokart/surface"
)

const (
	// Faces with a smaller cross product are treated as zero area.
	degenerateEpsilon = 1e-6
	// Slack when checking that course supplied bounds enclose the vertices.
	boundsEpsilon = 1e-3
)

// Box is an axis aligned bounding box.
type Box struct {
	Min, Max vec.Vec3
}

// Contains reports whether p lies inside b, borders included, with slack eps.
func (b Box) Contains(p vec.Vec3, eps float32) bool {
	return p.X >= b.Min.X-eps && p.X <= b.Max.X+eps &&
		p.Y >= b.Min.Y-eps && p.Y <= b.Max.Y+eps &&
		p.Z >= b.Min.Z-eps && p.Z <= b.Max.Z+eps
}

// Face is one course triangle as delivered by the course loader.
type Face struct {
	V       [3]int32
	Flags   surface.Flags
	Surface surface.Type
	// Bounds is optional; course data usually carries a precomputed box.
	Bounds *Box
}

// Triangle is an indexed collision triangle. The plane is
// Normal·p + Dist = 0 and Normal follows the vertex winding.
type Triangle struct {
	V       [3]int32
	Normal  vec.Vec3
	Dist    float32
	Min     vec.Vec3
	Max     vec.Vec3
	Flags   surface.Flags
	Surface surface.Type
	// Index is the declaration order inside the course.
	Index int32
}

// InvalidGeometryError is returned by Build. A course with invalid geometry
// cannot be raced.
type InvalidGeometryError struct {
	Face   int
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	if e.Face < 0 {
		return fmt.Sprintf("invalid geometry: %s", e.Reason)
	}
	return fmt.Sprintf("invalid geometry: face %d: %s", e.Face, e.Reason)
}

func newTriangle(idx int, f Face, verts []vec.Vec3) (Triangle, error) {
	bad := func(format string, v ...interface{}) error {
		return &InvalidGeometryError{Face: idx, Reason: fmt.Sprintf(format, v...)}
	}
	var p [3]vec.Vec3
	for i, vi := range f.V {
		if vi < 0 || int(vi) >= len(verts) {
			return Triangle{}, bad("vertex index %d out of range", vi)
		}
		p[i] = verts[vi]
		if !p[i].IsFinite() {
			return Triangle{}, bad("vertex %d is not finite", vi)
		}
	}
	c := vec.Cross(vec.Sub(p[1], p[0]), vec.Sub(p[2], p[0]))
	l := c.Length()
	if l < degenerateEpsilon || math32.IsInf(l, 0) {
		return Triangle{}, bad("zero area")
	}
	n := vec.Vec3{X: c.X / l, Y: c.Y / l, Z: c.Z / l}

	box := Box{Min: p[0], Max: p[0]}
	for _, q := range p[1:] {
		box.Min = vec.Min(box.Min, q)
		box.Max = vec.Max(box.Max, q)
	}
	if f.Bounds != nil {
		b := *f.Bounds
		if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
			return Triangle{}, bad("bounding box min %v exceeds max %v", b.Min, b.Max)
		}
		for _, q := range p {
			if !b.Contains(q, boundsEpsilon) {
				return Triangle{}, bad("bounding box does not enclose vertex %v", q)
			}
		}
		box = b
	}

	return Triangle{
		V:       f.V,
		Normal:  n,
		Dist:    -vec.Dot(n, p[0]),
		Min:     box.Min,
		Max:     box.Max,
		Flags:   f.Flags,
		Surface: f.Surface,
		Index:   int32(idx),
	}, nil
}

// Box returns the bounding box of the triangle.
func (t *Triangle) Box() Box {
	return Box{Min: t.Min, Max: t.Max}
}

// PlaneDistance is the signed perpendicular distance from p to the plane,
// positive on the side the normal points to.
func (t *Triangle) PlaneDistance(p vec.Vec3) float32 {
	return vec.Dot(t.Normal, p) + t.Dist
}

// Intercept returns the coordinate on axis where the line through p parallel
// to that axis crosses the triangle's plane. ok is false if the plane is
// parallel to the axis.
func (t *Triangle) Intercept(p vec.Vec3, axis int) (float32, bool) {
	na := t.Normal.Idx(axis)
	if math32.Abs(na) < FacingEpsilon {
		return 0, false
	}
	rest := t.PlaneDistance(p.With(axis, 0))
	return -rest / na, true
}

// Properties classifies the triangle's surface.
func (t *Triangle) Properties() surface.Properties {
	return surface.Classify(t.Flags, t.Surface)
}

// axisGap is the distance from p to the box along one axis, 0 inside.
func (t *Triangle) axisGap(p vec.Vec3, axis int) float32 {
	v := p.Idx(axis)
	lo, hi := t.Min.Idx(axis), t.Max.Idx(axis)
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	}
	return 0
}

func (t *Triangle) containsProjected(p vec.Vec3, a, b int) bool {
	pa, pb := p.Idx(a), p.Idx(b)
	return pa >= t.Min.Idx(a) && pa <= t.Max.Idx(a) &&
		pb >= t.Min.Idx(b) && pb <= t.Max.Idx(b)
}
