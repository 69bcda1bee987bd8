// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func (v Vec3) Mgl() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

func FromMgl(m mgl32.Vec3) Vec3 {
	return Vec3{m[0], m[1], m[2]}
}

// Basis builds an orientation matrix whose columns are right, up and forward.
// up must be unit length; forward is made orthogonal to it. If forward is
// parallel to up the previous basis cannot be recovered and the z axis is used.
func Basis(up, forward Vec3) mgl32.Mat3 {
	f := ProjectOnPlane(forward, up)
	if f.Length() < 1e-6 {
		f = ProjectOnPlane(Vec3{0, 0, 1}, up)
	}
	f = f.Normalize()
	r := Cross(up, f)
	return mgl32.Mat3FromCols(r.Mgl(), up.Mgl(), f.Mgl())
}

// YawForward returns the horizontal heading for a yaw in radians.
// Yaw 0 faces +z, positive yaw turns towards +x.
func YawForward(yaw float32) Vec3 {
	s, c := math32.Sincos(yaw)
	return Vec3{s, 0, c}
}

// Column returns column i of m as a Vec3.
func Column(m mgl32.Mat3, i int) Vec3 {
	return FromMgl(m.Col(i))
}

// Euler builds the basis for pitch, yaw and roll in radians. Pitch is read
// back as the asin of the forward column's height and roll as the asin of the
// right column's height.
func Euler(pitch, yaw, roll float32) mgl32.Mat3 {
	sp, cp := math32.Sincos(pitch)
	flat := YawForward(yaw)
	f := Vec3{flat.X * cp, sp, flat.Z * cp}
	right := Cross(Up, flat)
	up := Cross(f, right)
	var b float32
	if cp > 1e-6 {
		b = math32.Max(-1, math32.Min(math32.Sin(roll)/cp, 1))
	}
	r := MulAdd(right.Scale(math32.Sqrt(1-b*b)), up, b)
	return mgl32.Mat3FromCols(r.Mgl(), Cross(f, r).Mgl(), f.Mgl())
}
