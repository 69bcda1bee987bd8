// SPDX-License-Identifier: GPL-2.0-or-later

package collision

import (
	"github.com/chewxy/math32"

	"gokart/math/vec"
)

const (
	// NoMesh marks a projection without a contact triangle.
	NoMesh int32 = -1
	// FacingEpsilon is the smallest normal component along the query axis
	// for a triangle to count on that axis.
	FacingEpsilon = 0.1
	// PenetrationTolerance is how far behind a surface a point may be and
	// still count as touching it.
	PenetrationTolerance = 4
	// ContactReach is how far a point may be from a triangle's box along the
	// query axis and still see it.
	ContactReach = 64
)

// NoGround is the surface distance of a projection that found nothing.
const NoGround float32 = math32.MaxFloat32

// Collision is the per tyre query result. Axis 0, 1, 2 of SurfaceDistance
// belong to the ZY, ZX and YX projections.
type Collision struct {
	MeshIndexYX int32
	MeshIndexZY int32
	MeshIndexZX int32
	// SurfaceDistance is the signed perpendicular distance to the chosen
	// triangle per axis, or NoGround.
	SurfaceDistance vec.Vec3
	// Offset is the raw push out vector for penetrating contacts.
	Offset vec.Vec3
	// Normal is the floor normal, or the last known good one.
	Normal vec.Vec3
}

// Empty returns a collision without any contact.
func Empty() Collision {
	return Collision{
		MeshIndexYX:     NoMesh,
		MeshIndexZY:     NoMesh,
		MeshIndexZX:     NoMesh,
		SurfaceDistance: vec.Vec3{X: NoGround, Y: NoGround, Z: NoGround},
		Normal:          vec.Up,
	}
}

// MeshIndex returns the triangle found for the projection.
func (c *Collision) MeshIndex(p Projection) int32 {
	switch p {
	case ZY:
		return c.MeshIndexZY
	case ZX:
		return c.MeshIndexZX
	default:
		return c.MeshIndexYX
	}
}

func (c *Collision) setMeshIndex(p Projection, i int32) {
	switch p {
	case ZY:
		c.MeshIndexZY = i
	case ZX:
		c.MeshIndexZX = i
	default:
		c.MeshIndexYX = i
	}
}

// Distance returns the surface distance for the projection.
func (c *Collision) Distance(p Projection) float32 {
	return c.SurfaceDistance.Idx(p.Axis())
}

// HasGround reports whether a floor triangle was found.
func (c *Collision) HasGround() bool {
	return c.MeshIndexZX != NoMesh
}

// NoGroundFound reports that no projection found a triangle.
func (c *Collision) NoGroundFound() bool {
	return c.MeshIndexZX == NoMesh && c.MeshIndexZY == NoMesh && c.MeshIndexYX == NoMesh
}

// Resolve finds the contact triangles for point p on all three projections.
// For each projection the triangle with the smallest non-negative plane
// distance wins. Only when p is behind every candidate does the least
// penetrated one within PenetrationTolerance count. Equal distances go to the
// lower declaration index, which also decides points on a shared edge, as
// those count as inside both triangles. Triangles whose box is more than
// ContactReach away along the query axis are not seen. last supplies the
// fallback normal when no floor is found.
func Resolve(m *Mesh, p vec.Vec3, last Collision) Collision {
	c := Empty()
	if last.Normal != (vec.Vec3{}) {
		c.Normal = last.Normal
	}
	for _, proj := range Projections {
		axis := proj.Axis()
		a, b := proj.plane()
		front, behind := NoMesh, NoMesh
		var frontDist, behindDist float32
		for _, ti := range m.QueryNear(p, proj) {
			t := &m.Tris[ti]
			if t.axisGap(p, axis) > ContactReach {
				// candidates are sorted by gap
				break
			}
			facing := t.Normal.Idx(axis)
			if proj != ZX {
				facing = math32.Abs(facing)
			}
			// floors only count from above
			if facing < FacingEpsilon {
				continue
			}
			if !m.insideProjected(t, p, a, b) {
				continue
			}
			d := t.PlaneDistance(p)
			switch {
			case d >= 0:
				if closer(front, frontDist, ti, d) {
					front, frontDist = ti, d
				}
			case d >= -PenetrationTolerance:
				if closer(behind, -behindDist, ti, -d) {
					behind, behindDist = ti, d
				}
			}
		}
		best, bestDist := front, frontDist
		if best == NoMesh {
			best, bestDist = behind, behindDist
		}
		if best == NoMesh {
			continue
		}
		c.setMeshIndex(proj, best)
		c.SurfaceDistance = c.SurfaceDistance.With(axis, bestDist)
		t := &m.Tris[best]
		if bestDist < 0 {
			c.Offset = vec.MulAdd(c.Offset, t.Normal, -bestDist)
		}
		if proj == ZX {
			c.Normal = t.Normal
		}
	}
	return c
}

// closer reports whether candidate ti at distance d beats best at bestDist.
func closer(best int32, bestDist float32, ti int32, d float32) bool {
	return best == NoMesh || d < bestDist || (d == bestDist && ti < best)
}

// insideProjected is the 2D point in triangle test on axes a and b. Edges
// and vertices count as inside, independent of winding.
func (m *Mesh) insideProjected(t *Triangle, p vec.Vec3, a, b int) bool {
	pa, pb := p.Idx(a), p.Idx(b)
	var pos, neg bool
	for i := range 3 {
		v0 := m.Verts[t.V[i]]
		v1 := m.Verts[t.V[(i+1)%3]]
		ea, eb := v1.Idx(a)-v0.Idx(a), v1.Idx(b)-v0.Idx(b)
		wa, wb := pa-v0.Idx(a), pb-v0.Idx(b)
		e := float32(ea*wb) - float32(eb*wa)
		if e > 0 {
			pos = true
		} else if e < 0 {
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

// GroundHeight returns the height of the floor triangle below or above p,
// ok is false when the collision has no floor.
func (m *Mesh) GroundHeight(p vec.Vec3, c *Collision) (float32, bool) {
	t := m.Triangle(c.MeshIndexZX)
	if t == nil {
		return 0, false
	}
	return t.Intercept(p, 1)
}
