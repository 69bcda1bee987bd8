// SPDX-License-Identifier: GPL-2.0-or-later

package kart

import (
	"github.com/go-gl/mathgl/mgl32"

	"gokart/collision"
	kmath "gokart/math"
	"gokart/math/vec"
	"gokart/surface"
)

// Motion is the locomotion state of a kart.
type Motion uint8

const (
	Grounded Motion = iota
	Airborne
	OutOfBounds
	Tumbling
)

func (m Motion) String() string {
	switch m {
	case Grounded:
		return "grounded"
	case Airborne:
		return "airborne"
	case OutOfBounds:
		return "out-of-bounds"
	case Tumbling:
		return "tumbling"
	}
	return "unknown"
}

// Recovering reports whether the state suspends input.
func (m Motion) Recovering() bool {
	return m == OutOfBounds || m == Tumbling
}

// ControlFlags tells who drives a kart.
type ControlFlags uint32

const (
	ControlHuman ControlFlags = 1 << iota
	ControlCPU
	ControlNetwork
)

func (f ControlFlags) Has(o ControlFlags) bool {
	return f&o != 0
}

// Tyre positions, in the order tyres are resolved.
const (
	FrontLeft = iota
	FrontRight
	BackLeft
	BackRight
)

// Tyre is the contact state of one wheel.
type Tyre struct {
	Pos          vec.Vec3
	SurfaceType  surface.Type
	SurfaceFlags surface.Flags
	MeshIndex    int32
	// BaseHeight is the ground height under the tyre.
	BaseHeight float32
	// Light is the shading scalar the renderer uses, from the floor slope.
	Light    float32
	Touching bool
	Contact  collision.Collision
}

// Net is the network block of a player.
type Net struct {
	ControlFlags ControlFlags
	Character    uint8
	StartingRank uint8
	HasAuthority bool
}

// Player is one kart. All fields are plain values, so a Player can be
// copied and compared.
type Player struct {
	Slot     uint8
	Rank     uint8
	LapCount uint8

	Pos      vec.Vec3
	OldPos   vec.Vec3
	Velocity vec.Vec3
	// Rotation holds pitch, yaw and roll as binary angles.
	Rotation    [3]int16
	Orientation mgl32.Mat3
	Tyres       [4]Tyre

	AnimFrameSelector [4]uint16
	AnimGroupSelector [4]uint16

	Motion Motion

	Drift          DriftState
	DriftDirection float32
	DriftDuration  uint16
	DriftCharge    int

	Speed         float32
	PreviousSpeed float32
	TopSpeed      float32
	BoostTimer    int
	BoostPower    float32

	HopOffset       float32
	HopVelocity     float32
	HopAcceleration float32
	HopJerk         float32
	HopFrameCounter int
	HopBase         float32
	HopHeld         bool

	Friction           float32
	Traction           float32
	Gravity            float32
	PropulsionStrength float32

	NearestPathPointID int32
	SurfaceType        surface.Type
	Collision          collision.Collision

	OOBTicks      int
	RecoveryTimer int
	LastSafePos   vec.Vec3
	LastSafeYaw   int16

	Net Net
}

// NewPlayer places a kart for slot at pos facing yaw. pos is the kart
// centre, RideHeight above the ground.
func NewPlayer(slot uint8, pos vec.Vec3, yaw int16, t *Tuning) Player {
	p := Player{
		Slot:               slot,
		Rank:               slot,
		Pos:                pos,
		OldPos:             pos,
		Rotation:           [3]int16{0, yaw, 0},
		TopSpeed:           t.TopSpeed,
		Traction:           1,
		Gravity:            t.Gravity,
		PropulsionStrength: t.PropulsionStrength,
		NearestPathPointID: -1,
		Collision:          collision.Empty(),
		LastSafePos:        pos,
		LastSafeYaw:        yaw,
		Net: Net{
			ControlFlags: ControlHuman,
			StartingRank: slot,
			HasAuthority: true,
		},
	}
	for i := range p.Tyres {
		p.Tyres[i].MeshIndex = collision.NoMesh
		p.Tyres[i].Contact = collision.Empty()
	}
	p.Orientation = vec.Basis(vec.Up, p.Forward())
	p.Tyres = p.placeTyres(t)
	return p
}

// Yaw returns the heading in radians.
func (p *Player) Yaw() float32 {
	return kmath.BinaryToRadians(p.Rotation[1])
}

// Forward is the flat heading vector.
func (p *Player) Forward() vec.Vec3 {
	return vec.YawForward(p.Yaw())
}

// Hopping reports whether a hop arc is running.
func (p *Player) Hopping() bool {
	return p.HopFrameCounter > 0
}

func tyreOffset(i int, t *Tuning) (side, ahead float32) {
	side, ahead = t.TrackWidth/2, t.WheelBase/2
	if i == FrontLeft || i == BackLeft {
		side = -side
	}
	if i == BackLeft || i == BackRight {
		ahead = -ahead
	}
	return side, ahead
}

// PlaceTyres moves the tyres under the current position and heading without
// querying the course. A grounded kart shades them by its up axis.
func (p *Player) PlaceTyres(t *Tuning) {
	p.Tyres = p.placeTyres(t)
	if p.Motion != Grounded {
		return
	}
	up := vec.Column(p.Orientation, 1)
	for i := range p.Tyres {
		p.Tyres[i].Light = up.Y
	}
}

// OrientFromRotation rebuilds Orientation from the angles in Rotation.
func (p *Player) OrientFromRotation() {
	p.Orientation = vec.Euler(
		kmath.BinaryToRadians(p.Rotation[0]),
		p.Yaw(),
		kmath.BinaryToRadians(p.Rotation[2]))
}

// placeTyres returns the tyres moved to their contact points under the
// current position and heading.
func (p *Player) placeTyres(t *Tuning) [4]Tyre {
	tyres := p.Tyres
	f := p.Forward()
	r := vec.Cross(vec.Up, f)
	for i := range tyres {
		side, ahead := tyreOffset(i, t)
		pos := vec.MulAdd(vec.MulAdd(p.Pos, r, side), f, ahead)
		pos.Y = p.Pos.Y - t.RideHeight
		tyres[i].Pos = pos
	}
	return tyres
}

func (p *Player) probes(t *Tuning) [4]vec.Vec3 {
	var out [4]vec.Vec3
	for i, ty := range p.Tyres {
		out[i] = ty.Pos
		out[i].Y += t.ProbeHeight
	}
	return out
}

func (p *Player) contacts() [4]collision.Collision {
	var out [4]collision.Collision
	for i, ty := range p.Tyres {
		out[i] = ty.Contact
	}
	return out
}
