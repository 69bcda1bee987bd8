// SPDX-License-Identifier: GPL-2.0-or-later

package course

import (
	"gokart/collision"
	"gokart/math/vec"
	"gokart/surface"
)

// Builder assembles courses in code, mostly for tests and the demo race.
type Builder struct {
	c     Course
	index map[uint8]int
}

func NewBuilder(name string) *Builder {
	return &Builder{
		c:     Course{Name: name},
		index: make(map[uint8]int),
	}
}

// Section declares a section. Redeclaring an id replaces it.
func (b *Builder) Section(id uint8, t surface.Type, f surface.Flags) *Builder {
	s := Section{ID: id, Surface: t, Flags: f}
	if i, ok := b.index[id]; ok {
		b.c.Sections[i] = s
		return b
	}
	b.index[id] = len(b.c.Sections)
	b.c.Sections = append(b.c.Sections, s)
	return b
}

func (b *Builder) add(section uint8, v [4]vec.Vec3, faces [2][3]int32) {
	si, ok := b.index[section]
	if !ok {
		b.Section(section, surface.Road, 0)
		si = b.index[section]
	}
	s := b.c.Sections[si]
	base := int32(len(b.c.Verts))
	b.c.Verts = append(b.c.Verts, v[:]...)
	for _, f := range faces {
		b.c.Faces = append(b.c.Faces, collision.Face{
			V:       [3]int32{base + f[0], base + f[1], base + f[2]},
			Flags:   s.Flags,
			Surface: s.Surface,
		})
		b.c.faceSection = append(b.c.faceSection, si)
	}
}

// Quad adds an upward facing rectangle over x0..x1, z0..z1. y0 is the
// height along the z0 edge and y1 along the z1 edge.
func (b *Builder) Quad(section uint8, x0, z0, x1, z1, y0, y1 float32) *Builder {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if z1 < z0 {
		z0, z1 = z1, z0
		y0, y1 = y1, y0
	}
	b.add(section, [4]vec.Vec3{
		{X: x0, Y: y0, Z: z0},
		{X: x1, Y: y0, Z: z0},
		{X: x0, Y: y1, Z: z1},
		{X: x1, Y: y1, Z: z1},
	}, [2][3]int32{{0, 2, 1}, {1, 2, 3}})
	return b
}

// Wall adds a vertical rectangle from (x0, z0) to (x1, z1) between the
// heights bottom and top. It faces left of the direction from the first
// point to the second.
func (b *Builder) Wall(section uint8, x0, z0, x1, z1, bottom, top float32) *Builder {
	b.add(section, [4]vec.Vec3{
		{X: x0, Y: bottom, Z: z0},
		{X: x1, Y: bottom, Z: z1},
		{X: x0, Y: top, Z: z0},
		{X: x1, Y: top, Z: z1},
	}, [2][3]int32{{0, 1, 2}, {1, 3, 2}})
	return b
}

func (b *Builder) Start(pos vec.Vec3, yaw int16) *Builder {
	b.c.Starts = append(b.c.Starts, Start{Pos: pos, Yaw: yaw})
	return b
}

// Course returns the assembled course. The builder must not be used
// afterwards.
func (b *Builder) Course() *Course {
	c := b.c
	return &c
}

// Flat is a single square of road, 2*half wide, at height y.
func Flat(half, y float32) *Course {
	return NewBuilder("flat").
		Section(1, surface.Road, surface.LakituDroppable).
		Quad(1, -half, -half, half, half, y, y).
		Start(vec.Vec3{Y: y}, 0).
		Course()
}

// Slope is a square of road rising by rise from -z to +z.
func Slope(half, rise float32) *Course {
	return NewBuilder("slope").
		Section(1, surface.Road, surface.LakituDroppable).
		Quad(1, -half, -half, half, half, 0, rise).
		Start(vec.Vec3{Z: -half / 2}, 0).
		Course()
}

// Circuit section ids.
const (
	SectionRoad  = 1
	SectionGrass = 2
	SectionBoost = 3
	SectionVoid  = 4
	SectionWall  = 5
)

// Circuit is a square loop of road around a grass infield, with a boost
// strip on the east straight, an out of bounds apron and a wall around the
// outside. Four karts start on the south straight facing east.
func Circuit(rideHeight float32) *Course {
	const (
		inner = 900
		outer = 1500
		apron = 2000
		wall  = 64
	)
	b := NewBuilder("circuit").
		Section(SectionRoad, surface.Road, surface.LakituDroppable).
		Section(SectionGrass, surface.Grass, 0).
		Section(SectionBoost, surface.BoostRampAsphalt, surface.LakituDroppable).
		Section(SectionVoid, surface.OutOfBoundsFloor, surface.OutOfBounds).
		Section(SectionWall, surface.Stone, 0)

	b.Quad(SectionRoad, -outer, -outer, outer, -inner, 0, 0).
		Quad(SectionRoad, -outer, inner, outer, outer, 0, 0).
		Quad(SectionRoad, -outer, -inner, -inner, inner, 0, 0).
		Quad(SectionRoad, inner, -inner, outer, -300, 0, 0).
		Quad(SectionBoost, inner, -300, outer, 300, 0, 0).
		Quad(SectionRoad, inner, 300, outer, inner, 0, 0).
		Quad(SectionGrass, -inner, -inner, inner, inner, 0, 0)

	b.Quad(SectionVoid, -apron, -apron, apron, -outer, 0, 0).
		Quad(SectionVoid, -apron, outer, apron, apron, 0, 0).
		Quad(SectionVoid, -apron, -outer, -outer, outer, 0, 0).
		Quad(SectionVoid, outer, -outer, apron, outer, 0, 0)

	// Walls face inwards.
	b.Wall(SectionWall, -apron, -apron, apron, -apron, 0, wall).
		Wall(SectionWall, apron, -apron, apron, apron, 0, wall).
		Wall(SectionWall, apron, apron, -apron, apron, 0, wall).
		Wall(SectionWall, -apron, apron, -apron, -apron, 0, wall)

	for i := range 4 {
		x := float32(-200 - 120*i)
		z := float32(-1200 + 100*(i%2) - 50)
		b.Start(vec.Vec3{X: x, Y: rideHeight, Z: z}, 0x4000)
	}
	return b.Course()
}
