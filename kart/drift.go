// SPDX-License-Identifier: GPL-2.0-or-later

package kart

import (
	"github.com/chewxy/math32"

	kmath "gokart/math"
)

// DriftState is the phase of a power slide.
type DriftState uint8

const (
	NotDrifting DriftState = iota
	DriftStarting
	Drifting
	DriftReleasing
)

func (d DriftState) String() string {
	switch d {
	case NotDrifting:
		return "not-drifting"
	case DriftStarting:
		return "drift-starting"
	case Drifting:
		return "drifting"
	case DriftReleasing:
		return "drift-releasing"
	}
	return "unknown"
}

const maxDriftDuration = 0xFFFF

// DriftBoostPower is the boost granted when a drift of the given length is
// released. It grows one tier every DriftTierTicks and stops at
// DriftBoostMax.
func DriftBoostPower(duration uint16, t *Tuning) float32 {
	if t.DriftTierTicks <= 0 {
		return 0
	}
	tier := int(duration) / t.DriftTierTicks
	return min(float32(tier)*t.DriftBoostPerTier, t.DriftBoostMax)
}

func (p *Player) canDrift(in Input, t *Tuning) bool {
	return in.Drift &&
		(p.Motion == Grounded || p.Hopping()) &&
		math32.Abs(in.Steer) >= t.DriftSteerThreshold &&
		p.Speed >= t.DriftMinSpeed
}

// updateDrift advances the drift machine by one tick.
func (p *Player) updateDrift(in Input, t *Tuning, ev *StepEvents) {
	switch p.Drift {
	case NotDrifting:
		if p.canDrift(in, t) {
			p.Drift = DriftStarting
			p.DriftCharge = 1
			p.DriftDirection = kmath.Sign(in.Steer)
			if p.DriftCharge >= t.DriftStartTicks {
				p.startDrifting()
			}
		}
	case DriftStarting:
		if !p.canDrift(in, t) || kmath.Sign(in.Steer) != p.DriftDirection {
			p.cancelDrift()
			return
		}
		p.DriftCharge++
		if p.DriftCharge >= t.DriftStartTicks {
			p.startDrifting()
		}
	case Drifting:
		if !in.Drift {
			p.Drift = DriftReleasing
			if power := DriftBoostPower(p.DriftDuration, t); power > 0 {
				p.grantBoost(power, t)
				ev.Boost = power
			}
			return
		}
		if p.DriftDuration < maxDriftDuration {
			p.DriftDuration++
		}
	case DriftReleasing:
		p.cancelDrift()
	}
}

func (p *Player) startDrifting() {
	p.Drift = Drifting
	p.DriftDuration = 0
	p.DriftCharge = 0
}

// cancelDrift drops back to NotDrifting without a boost.
func (p *Player) cancelDrift() {
	p.Drift = NotDrifting
	p.DriftDuration = 0
	p.DriftCharge = 0
	p.DriftDirection = 0
}

func (p *Player) grantBoost(power float32, t *Tuning) {
	p.BoostTimer = t.BoostTicks
	p.BoostPower = max(p.BoostPower, power)
}
