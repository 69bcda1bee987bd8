// SPDX-License-Identifier: GPL-2.0-or-later

package math

import "github.com/chewxy/math32"

// Binary angles: a full turn is 0x10000, so int16 wraps for free.
const (
	BinaryTurn  = 0x10000
	binaryToRad = 2 * math32.Pi / BinaryTurn
)

// AngleMod changes an angle to be within 0-360 degrees
func AngleMod(a float32) float32 {
	return a - math32.Floor(a/360)*360
}

// BinaryToRadians converts a binary angle into radians in [-Pi, Pi).
func BinaryToRadians(a int16) float32 {
	return float32(a) * binaryToRad
}

// RadiansToBinary converts radians into a wrapped binary angle.
func RadiansToBinary(r float32) int16 {
	return int16(RoundInt(r/binaryToRad) & 0xffff)
}

// AddBinary adds a fractional number of binary angle units, wrapping around.
func AddBinary(a int16, delta float32) int16 {
	return int16((int32(a) + RoundInt(delta)) & 0xffff)
}

// RoundInt rounds half away from zero.
func RoundInt(f float32) int32 {
	if f < 0 {
		return -int32(math32.Floor(-f + 0.5))
	}
	return int32(math32.Floor(f + 0.5))
}
