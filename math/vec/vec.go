// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"github.com/chewxy/math32"
)

type Vec3 struct {
	X, Y, Z float32
}

var (
	Up = Vec3{0, 1, 0}
)

func VFromA(a [3]float32) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Idx returns the component on axis i (0 x, 1 y, 2 z).
func (v Vec3) Idx(i int) float32 {
	switch i {
	default:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
}

// With returns a copy of v with axis i set to f.
func (v Vec3) With(i int, f float32) Vec3 {
	switch i {
	default:
		v.X = f
	case 1:
		v.Y = f
	case 2:
		v.Z = f
	}
	return v
}

// Length returns the length of the vector
func (v Vec3) Length() float32 {
	return math32.Sqrt(Dot(v, v))
}

// HorizontalLength ignores the vertical (y) component.
func (v Vec3) HorizontalLength() float32 {
	return math32.Sqrt(v.X*v.X + v.Z*v.Z)
}

// Add returns a + b
func Add(a, b Vec3) Vec3 {
	return Vec3{
		X: a.X + b.X,
		Y: a.Y + b.Y,
		Z: a.Z + b.Z,
	}
}

// Sub returns a - b
func Sub(a, b Vec3) Vec3 {
	return Vec3{
		X: a.X - b.X,
		Y: a.Y - b.Y,
		Z: a.Z - b.Z,
	}
}

// Scale returns the vector multiplied by the skalar s
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{
		X: v.X * s,
		Y: v.Y * s,
		Z: v.Z * s,
	}
}

// MulAdd returns a + b*s. The float32 conversions keep the compiler from
// fusing the multiply and the add, which would make results differ between
// architectures.
func MulAdd(a, b Vec3, s float32) Vec3 {
	return Vec3{
		X: a.X + float32(b.X*s),
		Y: a.Y + float32(b.Y*s),
		Z: a.Z + float32(b.Z*s),
	}
}

// Normalize returns the normalized vector
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Dot returns a dot b
func Dot(a Vec3, b Vec3) float32 {
	return float32(a.X*b.X) + float32(a.Y*b.Y) + float32(a.Z*b.Z)
}

// Cross returns a cross b
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		float32(a.Y*b.Z) - float32(a.Z*b.Y),
		float32(a.Z*b.X) - float32(a.X*b.Z),
		float32(a.X*b.Y) - float32(a.Y*b.X),
	}
}

// Lerp computes a weighted average between two points
func Lerp(a, b Vec3, frac float32) Vec3 {
	fi := 1 - frac
	return Vec3{
		fi*a.X + frac*b.X,
		fi*a.Y + frac*b.Y,
		fi*a.Z + frac*b.Z,
	}
}

// Equal returns a == b
func Equal(a Vec3, b Vec3) bool {
	return a.X == b.X && a.Y == b.Y && a.Z == b.Z
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	for _, f := range v.Array() {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func minmax(a, b float32) (float32, float32) {
	if a < b {
		return a, b
	}
	return b, a
}

func MinMax(a, b Vec3) (Vec3, Vec3) {
	var r, s Vec3
	r.X, s.X = minmax(a.X, b.X)
	r.Y, s.Y = minmax(a.Y, b.Y)
	r.Z, s.Z = minmax(a.Z, b.Z)
	return r, s
}

// Min returns the componentwise minimum.
func Min(a, b Vec3) Vec3 {
	r, _ := MinMax(a, b)
	return r
}

// Max returns the componentwise maximum.
func Max(a, b Vec3) Vec3 {
	_, s := MinMax(a, b)
	return s
}

// ProjectOnPlane removes the part of v along the unit normal n.
func ProjectOnPlane(v, n Vec3) Vec3 {
	return Sub(v, n.Scale(Dot(v, n)))
}
