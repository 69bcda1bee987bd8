// SPDX-License-Identifier: GPL-2.0-or-later

package surface

import (
	"testing"
)

func TestClassifyFlags(t *testing.T) {
	for _, tc := range []struct {
		flags Flags
		typ   Type
		want  Properties
	}{
		{
			flags: 0,
			typ:   Road,
			want:  Properties{Friction: 0.9, Traction: 1},
		},
		{
			flags: OutOfBounds | 0x00ff,
			typ:   Grass,
			want:  Properties{Friction: 3, Traction: 0.6, OutOfBounds: true},
		},
		{
			flags: TumbleOnContact | LakituDroppable,
			typ:   Dirt,
			want:  Properties{Friction: 1.6, Traction: 0.8, TumbleOnContact: true, Recoverable: true},
		},
		{
			flags: TangibleOnlyWhenLanded,
			typ:   Bridge,
			want:  Properties{Friction: 0.9, Traction: 1, TangibleOnlyWhenLanded: true},
		},
		{
			flags: 0,
			typ:   BoostRampAsphalt,
			want:  Properties{Friction: 0.9, Traction: 1, Boost: true},
		},
		{
			flags: 0,
			typ:   OutOfBoundsFloor,
			want:  Properties{Friction: 2, Traction: 0.5, OutOfBounds: true},
		},
	} {
		got := Classify(tc.flags, tc.typ)
		if got != tc.want {
			t.Errorf("Classify(%#04x, %v) = %+v, want %+v", uint16(tc.flags), tc.typ, got, tc.want)
		}
	}
}

func TestClassifyUnknownIsRoad(t *testing.T) {
	got := Classify(0, Type(200))
	want := Classify(0, Road)
	if got != want {
		t.Errorf("Classify(unknown) = %+v, want %+v", got, want)
	}
}

func TestClassifyIsPure(t *testing.T) {
	a := Classify(OutOfBounds, Ice)
	b := Classify(OutOfBounds, Ice)
	if a != b {
		t.Errorf("Classify is not stable: %+v != %+v", a, b)
	}
}

func TestParseType(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Type
	}{
		{"road", Road},
		{"boost_ramp_wood", BoostRampWood},
		{"9", Ice},
	} {
		got, err := ParseType(tc.in)
		if err != nil {
			t.Fatalf("ParseType(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	for ty := range typeNames {
		if got, err := ParseType(ty.String()); err != nil || got != ty {
			t.Errorf("ParseType(%q) = %v, %v, want %v", ty.String(), got, err, ty)
		}
	}
	if _, err := ParseType("lava"); err == nil || err.Error() != `unknown surface type "lava"` {
		t.Errorf("ParseType(lava) = %v, want unknown surface type", err)
	}
}

func TestParseFlag(t *testing.T) {
	for _, f := range []Flags{TangibleOnlyWhenLanded, LakituDroppable, OutOfBounds, TumbleOnContact} {
		got, err := ParseFlag(f.String())
		if err != nil {
			t.Fatalf("ParseFlag(%q) failed: %v", f.String(), err)
		}
		if got != f {
			t.Errorf("ParseFlag(%q) = %#x, want %#x", f.String(), got, f)
		}
	}
	if _, err := ParseFlag("sticky"); err == nil {
		t.Errorf("ParseFlag(sticky) succeeded")
	}
	if got := (LakituDroppable | OutOfBounds).String(); got != "lakitu_droppable|out_of_bounds" {
		t.Errorf("String() = %q", got)
	}
}
