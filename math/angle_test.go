// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestAngleInside(t *testing.T) {
	var a float32 = 180
	got := AngleMod(a)
	if got != a {
		t.Errorf("AngleMod(%v) = %v want 180", a, got)
	}
}

func TestAngleOver(t *testing.T) {
	var a float32 = 180 + 360
	got := AngleMod(a)
	if got != 180 {
		t.Errorf("AngleMod(%v) = %v want 180", a, got)
	}
}

func TestAngleUnder(t *testing.T) {
	var a float32 = -90
	got := AngleMod(a)
	if got != 270 {
		t.Errorf("AngleMod(%v) = %v want 270", a, got)
	}
}

func TestBinaryAngles(t *testing.T) {
	for _, tc := range []struct {
		bin int16
		rad float32
	}{
		{0, 0},
		{0x4000, math32.Pi / 2},
		{-0x4000, -math32.Pi / 2},
		{-0x8000, -math32.Pi},
	} {
		got := BinaryToRadians(tc.bin)
		if math32.Abs(got-tc.rad) > 1e-6 {
			t.Errorf("BinaryToRadians(%v) = %v, want %v", tc.bin, got, tc.rad)
		}
		back := RadiansToBinary(tc.rad)
		if back != tc.bin {
			t.Errorf("RadiansToBinary(%v) = %v, want %v", tc.rad, back, tc.bin)
		}
	}
}

func TestAddBinaryWraps(t *testing.T) {
	got := AddBinary(0x7fff, 2)
	if got != -0x7fff {
		t.Errorf("AddBinary(0x7fff, 2) = %v, want %v", got, -0x7fff)
	}
}
