// SPDX-License-Identifier: GPL-2.0-or-later

package math

type Number interface {
	~int16 | ~int32 | ~int64 | ~float64 | ~float32 | ~int
}

func Clamp[K Number](min, val, max K) K {
	if min > val {
		return min
	} else if max < val {
		return max
	}
	return val
}

// Lerp returns the weighted average of a and b, frac 0 being a.
func Lerp(a, b, frac float32) float32 {
	return a + (b-a)*frac
}

// Sign returns -1, 0 or 1.
func Sign[K Number](v K) K {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Approach moves v towards target by at most step.
func Approach(v, target, step float32) float32 {
	if v < target {
		v += step
		if v > target {
			return target
		}
		return v
	}
	v -= step
	if v < target {
		return target
	}
	return v
}
