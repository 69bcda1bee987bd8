// SPDX-License-Identifier: GPL-2.0-or-later

// Package course loads course collision data from YAML files.
//
// A course file lists s16 vertices, triangles that reference them, the
// track sections the triangles belong to and the starting grid:
//
//	name: example
//	vertices:
//	  - [-1000, 0, -1000]
//	  - [1000, 0, -1000]
//	  - [-1000, 0, 1000]
//	sections:
//	  - id: 1
//	    surface: road
//	    flags: [lakitu_droppable]
//	faces:
//	  - v: [0, 2, 1]
//	    section: 1
//	start:
//	  - pos: [0, 4, 0]
//	    yaw: 0
package course

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"gokart/collision"
	"gokart/math/vec"
	"gokart/surface"
)

// Section is a named part of the track. Faces inherit its surface and
// flags unless they carry their own.
type Section struct {
	ID      uint8
	Surface surface.Type
	Flags   surface.Flags
}

// Start is one grid slot.
type Start struct {
	Pos vec.Vec3
	Yaw int16
}

// Course is a loaded course. Mesh builds the collision geometry.
type Course struct {
	Name     string
	Verts    []vec.Vec3
	Faces    []collision.Face
	Sections []Section
	Starts   []Start

	// section index per face, -1 for none
	faceSection []int
}

// NoSection is returned by SectionOf for faces outside any section.
const NoSection int32 = -1

type boxFile struct {
	Min [3]int16 `yaml:"min"`
	Max [3]int16 `yaml:"max"`
}

type faceFile struct {
	V       [3]int32 `yaml:"v"`
	Section *uint8   `yaml:"section"`
	Surface string   `yaml:"surface"`
	Flags   []string `yaml:"flags"`
	Bounds  *boxFile `yaml:"bounds"`
}

type sectionFile struct {
	ID      uint8    `yaml:"id"`
	Surface string   `yaml:"surface"`
	Flags   []string `yaml:"flags"`
}

type startFile struct {
	Pos [3]float32 `yaml:"pos"`
	Yaw int16      `yaml:"yaw"`
}

type courseFile struct {
	Name     string        `yaml:"name"`
	Vertices [][3]int16    `yaml:"vertices"`
	Faces    []faceFile    `yaml:"faces"`
	Sections []sectionFile `yaml:"sections"`
	Start    []startFile   `yaml:"start"`
}

func parseFlags(names []string) (surface.Flags, error) {
	var f surface.Flags
	for _, n := range names {
		b, err := surface.ParseFlag(n)
		if err != nil {
			return 0, err
		}
		f |= b
	}
	return f, nil
}

func s16(v [3]int16) vec.Vec3 {
	return vec.Vec3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
}

// Load reads a course file. Geometry is validated later by Mesh.
func Load(r io.Reader) (*Course, error) {
	var cf courseFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil {
		return nil, errors.Wrap(err, "course: unmarshal")
	}

	c := &Course{Name: cf.Name}
	c.Verts = make([]vec.Vec3, len(cf.Vertices))
	for i, v := range cf.Vertices {
		c.Verts[i] = s16(v)
	}

	byID := make(map[uint8]int, len(cf.Sections))
	for i, s := range cf.Sections {
		if _, dup := byID[s.ID]; dup {
			return nil, errors.Errorf("course: section %d declared twice", s.ID)
		}
		sec := Section{ID: s.ID, Surface: surface.Road}
		if s.Surface != "" {
			t, err := surface.ParseType(s.Surface)
			if err != nil {
				return nil, errors.Wrapf(err, "course: section %d", s.ID)
			}
			sec.Surface = t
		}
		f, err := parseFlags(s.Flags)
		if err != nil {
			return nil, errors.Wrapf(err, "course: section %d", s.ID)
		}
		sec.Flags = f
		byID[s.ID] = i
		c.Sections = append(c.Sections, sec)
	}

	c.Faces = make([]collision.Face, len(cf.Faces))
	c.faceSection = make([]int, len(cf.Faces))
	for i, ff := range cf.Faces {
		face := collision.Face{V: ff.V, Surface: surface.Road}
		c.faceSection[i] = -1
		if ff.Section != nil {
			si, ok := byID[*ff.Section]
			if !ok {
				return nil, errors.Errorf("course: face %d: unknown section %d", i, *ff.Section)
			}
			c.faceSection[i] = si
			face.Surface = c.Sections[si].Surface
			face.Flags = c.Sections[si].Flags
		}
		if ff.Surface != "" {
			t, err := surface.ParseType(ff.Surface)
			if err != nil {
				return nil, errors.Wrapf(err, "course: face %d", i)
			}
			face.Surface = t
		}
		if len(ff.Flags) > 0 {
			f, err := parseFlags(ff.Flags)
			if err != nil {
				return nil, errors.Wrapf(err, "course: face %d", i)
			}
			face.Flags = f
		}
		if ff.Bounds != nil {
			face.Bounds = &collision.Box{Min: s16(ff.Bounds.Min), Max: s16(ff.Bounds.Max)}
		}
		c.Faces[i] = face
	}

	for _, s := range cf.Start {
		c.Starts = append(c.Starts, Start{Pos: vec.VFromA(s.Pos), Yaw: s.Yaw})
	}
	return c, nil
}

// LoadFile is Load on the named file.
func LoadFile(path string) (*Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "course: load")
	}
	defer f.Close()
	c, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "course: %s", path)
	}
	return c, nil
}

// Mesh builds the collision mesh. Invalid geometry is returned as a wrapped
// *collision.InvalidGeometryError.
func (c *Course) Mesh(opts ...collision.Option) (*collision.Mesh, error) {
	m, err := collision.Build(c.Verts, c.Faces, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "course %q", c.Name)
	}
	return m, nil
}

// SectionOf returns the section id of triangle tri, or NoSection.
func (c *Course) SectionOf(tri int32) int32 {
	if tri < 0 || int(tri) >= len(c.faceSection) {
		return NoSection
	}
	si := c.faceSection[tri]
	if si < 0 {
		return NoSection
	}
	return int32(c.Sections[si].ID)
}
