// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"testing"
)

func TestClampMin(t *testing.T) {
	v := Clamp(1, 0, 10)
	if v != 1 {
		t.Errorf("Clamp(1,0,10) = %v", v)
	}
}

func TestClampMax(t *testing.T) {
	v := Clamp(1, 100, 10)
	if v != 10 {
		t.Errorf("Clamp(1,100,10) = %v", v)
	}
}

func TestClampInt16(t *testing.T) {
	v := Clamp[int16](0, 300, 255)
	if v != 255 {
		t.Errorf("Clamp[int16](0,300,255) = %v", v)
	}
}

func TestSign(t *testing.T) {
	for _, tc := range []struct {
		in, want float32
	}{{-3, -1}, {0, 0}, {0.25, 1}} {
		if got := Sign(tc.in); got != tc.want {
			t.Errorf("Sign(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestApproach(t *testing.T) {
	for _, tc := range []struct {
		v, target, step, want float32
	}{
		{0, 10, 3, 3},
		{9, 10, 3, 10},
		{10, 0, 4, 6},
		{1, 0, 4, 0},
	} {
		if got := Approach(tc.v, tc.target, tc.step); got != tc.want {
			t.Errorf("Approach(%v,%v,%v) = %v, want %v", tc.v, tc.target, tc.step, got, tc.want)
		}
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(2, 6, 0.5); got != 4 {
		t.Errorf("Lerp(2,6,0.5) = %v, want 4", got)
	}
}
