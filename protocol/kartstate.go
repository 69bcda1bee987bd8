// SPDX-License-Identifier: GPL-2.0-or-later

package protocol

import (
	"gokart/kart"
	"gokart/math/vec"
	"gokart/surface"
)

// KartState is what peers exchange about one kart each tick. A replicated
// kart takes these values verbatim.
type KartState struct {
	Slot uint8
	// Tick is the sender's simulation tick the state belongs to.
	Tick uint32

	Pos      vec.Vec3
	Velocity vec.Vec3
	Rotation [3]int16
	Speed    float32
	Motion   kart.Motion
	Surface  surface.Type

	Drift          kart.DriftState
	DriftDirection float32
	DriftDuration  uint16
	DriftCharge    int32

	BoostTimer int32
	BoostPower float32

	HopOffset       float32
	HopVelocity     float32
	HopAcceleration float32
	HopJerk         float32
	HopFrameCounter int32
	HopBase         float32

	RecoveryTimer int32

	ControlFlags kart.ControlFlags
	HasAuthority bool
}

// FromPlayer captures the replicated part of p at tick.
func FromPlayer(p *kart.Player, tick uint32) KartState {
	return KartState{
		Slot:            p.Slot,
		Tick:            tick,
		Pos:             p.Pos,
		Velocity:        p.Velocity,
		Rotation:        p.Rotation,
		Speed:           p.Speed,
		Motion:          p.Motion,
		Surface:         p.SurfaceType,
		Drift:           p.Drift,
		DriftDirection:  p.DriftDirection,
		DriftDuration:   p.DriftDuration,
		DriftCharge:     int32(p.DriftCharge),
		BoostTimer:      int32(p.BoostTimer),
		BoostPower:      p.BoostPower,
		HopOffset:       p.HopOffset,
		HopVelocity:     p.HopVelocity,
		HopAcceleration: p.HopAcceleration,
		HopJerk:         p.HopJerk,
		HopFrameCounter: int32(p.HopFrameCounter),
		HopBase:         p.HopBase,
		RecoveryTimer:   int32(p.RecoveryTimer),
		ControlFlags:    p.Net.ControlFlags,
		HasAuthority:    p.Net.HasAuthority,
	}
}

// ApplyTo overwrites p with s. Nothing is blended with the local values and
// the orientation follows the copied rotation. The tyres are left to the
// caller, see kart.(*Player).PlaceTyres.
// The control flags and the authority flag are not copied, they belong to
// the receiving process.
func (s *KartState) ApplyTo(p *kart.Player) {
	p.OldPos = p.Pos
	p.Pos = s.Pos
	p.Velocity = s.Velocity
	p.Rotation = s.Rotation
	p.PreviousSpeed = p.Speed
	p.Speed = s.Speed
	p.Motion = s.Motion
	p.SurfaceType = s.Surface
	p.Drift = s.Drift
	p.DriftDirection = s.DriftDirection
	p.DriftDuration = s.DriftDuration
	p.DriftCharge = int(s.DriftCharge)
	p.BoostTimer = int(s.BoostTimer)
	p.BoostPower = s.BoostPower
	p.HopOffset = s.HopOffset
	p.HopVelocity = s.HopVelocity
	p.HopAcceleration = s.HopAcceleration
	p.HopJerk = s.HopJerk
	p.HopFrameCounter = int(s.HopFrameCounter)
	p.HopBase = s.HopBase
	p.RecoveryTimer = int(s.RecoveryTimer)
	p.OrientFromRotation()
}

// Equal reports whether a and b carry the same kart state, ignoring the
// tick and the authority claim.
func Equal(a, b *KartState) bool {
	return len(Diff(a, b)) == 0
}
