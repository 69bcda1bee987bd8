// SPDX-License-Identifier: GPL-2.0-or-later

// Package surface maps course triangle flag words and surface types to the
// physical properties the kart integrator works with.
package surface

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Flags is the flag word of a course triangle. Only the top byte carries
// meaning; the low byte is passed through untouched.
type Flags uint16

const (
	// Only tangible if landed on, not if driven onto.
	TangibleOnlyWhenLanded Flags = 1 << 15
	// Lakitu can drop a recovered kart here.
	LakituDroppable Flags = 1 << 14
	OutOfBounds     Flags = 1 << 12
	// Karts tumble on contact and may fall right through.
	TumbleOnContact Flags = 1 << 11
)

func (f Flags) Has(o Flags) bool {
	return f&o != 0
}

var flagNames = []struct {
	f    Flags
	name string
}{
	{TangibleOnlyWhenLanded, "tangible_only_when_landed"},
	{LakituDroppable, "lakitu_droppable"},
	{OutOfBounds, "out_of_bounds"},
	{TumbleOnContact, "tumble_on_contact"},
}

// ParseFlag returns the flag bit named s.
func ParseFlag(s string) (Flags, error) {
	for _, n := range flagNames {
		if n.name == s {
			return n.f, nil
		}
	}
	return 0, errors.Errorf("unknown surface flag %q", s)
}

func (f Flags) String() string {
	var names []string
	for _, n := range flagNames {
		if f.Has(n.f) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

type Type uint8

const (
	Airborne    Type = 0
	Road        Type = 1
	Dirt        Type = 2
	Sand        Type = 3
	Stone       Type = 4
	Snow        Type = 5
	Bridge      Type = 6
	DirtOffroad Type = 7
	Grass       Type = 8
	Ice         Type = 9
	WetSand     Type = 10
	SnowOffroad Type = 11
	Cliff       Type = 12
	TrainTrack  Type = 14
	Cave        Type = 15
	RopeBridge  Type = 16
	WoodBridge  Type = 17

	BoostRampWood    Type = 0xFC
	OutOfBoundsFloor Type = 0xFD
	BoostRampAsphalt Type = 0xFE
	Ramp             Type = 0xFF
)

var typeNames = map[Type]string{
	Airborne:         "airborne",
	Road:             "road",
	Dirt:             "dirt",
	Sand:             "sand",
	Stone:            "stone",
	Snow:             "snow",
	Bridge:           "bridge",
	DirtOffroad:      "dirt_offroad",
	Grass:            "grass",
	Ice:              "ice",
	WetSand:          "wet_sand",
	SnowOffroad:      "snow_offroad",
	Cliff:            "cliff",
	TrainTrack:       "train_track",
	Cave:             "cave",
	RopeBridge:       "rope_bridge",
	WoodBridge:       "wood_bridge",
	BoostRampWood:    "boost_ramp_wood",
	OutOfBoundsFloor: "out_of_bounds",
	BoostRampAsphalt: "boost_ramp_asphalt",
	Ramp:             "ramp",
}

var typesByName = make(map[string]Type, len(typeNames))

func init() {
	for t, n := range typeNames {
		typesByName[n] = t
	}
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("surface(%d)", uint8(t))
}

// ParseType is the inverse of String. Numeric values are accepted as well.
func ParseType(s string) (Type, error) {
	if t, ok := typesByName[s]; ok {
		return t, nil
	}
	var v uint8
	if _, err := fmt.Sscanf(s, "%d", &v); err == nil {
		return Type(v), nil
	}
	return 0, errors.Errorf("unknown surface type %q", s)
}

// Properties is the physical response of one surface.
type Properties struct {
	// Friction is the per second fraction of horizontal speed lost.
	Friction float32
	// Traction scales propulsion and lateral grip.
	Traction float32

	OutOfBounds     bool
	TumbleOnContact bool
	// Recoverable surfaces are valid Lakitu drop points.
	Recoverable bool
	// TangibleOnlyWhenLanded surfaces only count as contact while the kart
	// is descending.
	TangibleOnlyWhenLanded bool
	// Boost is set on boost ramps.
	Boost bool
}

type response struct {
	friction, traction float32
}

var responses = map[Type]response{
	Road:             {0.9, 1.0},
	Bridge:           {0.9, 1.0},
	WoodBridge:       {0.95, 0.95},
	RopeBridge:       {1.0, 0.9},
	TrainTrack:       {1.1, 0.9},
	Stone:            {1.0, 0.95},
	Cave:             {1.0, 0.95},
	Dirt:             {1.6, 0.8},
	Sand:             {1.8, 0.75},
	WetSand:          {2.0, 0.7},
	Snow:             {1.4, 0.7},
	DirtOffroad:      {3.0, 0.6},
	SnowOffroad:      {3.2, 0.55},
	Grass:            {3.0, 0.6},
	Ice:              {0.3, 0.35},
	Cliff:            {2.5, 0.5},
	Ramp:             {0.9, 1.0},
	BoostRampWood:    {0.9, 1.0},
	BoostRampAsphalt: {0.9, 1.0},
	OutOfBoundsFloor: {2.0, 0.5},
}

// Classify returns the physical properties of a triangle with the given
// flags and surface type. Unknown types respond like road.
func Classify(flags Flags, t Type) Properties {
	r, ok := responses[t]
	if !ok {
		r = responses[Road]
	}
	p := Properties{
		Friction:               r.friction,
		Traction:               r.traction,
		OutOfBounds:            flags.Has(OutOfBounds) || t == OutOfBoundsFloor,
		TumbleOnContact:        flags.Has(TumbleOnContact),
		Recoverable:            flags.Has(LakituDroppable),
		TangibleOnlyWhenLanded: flags.Has(TangibleOnlyWhenLanded),
		Boost:                  t == BoostRampWood || t == BoostRampAsphalt,
	}
	return p
}
