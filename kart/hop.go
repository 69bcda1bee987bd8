// SPDX-License-Identifier: GPL-2.0-or-later

package kart

// updateHop starts a hop on a fresh press of the hop button and advances a
// running arc. While the arc runs the kart is airborne whatever its tyres
// touch. The arc integrates jerk into acceleration, acceleration into
// velocity and velocity into the offset above HopBase.
func (p *Player) updateHop(in Input, t *Tuning, ev *StepEvents) {
	pressed := in.Hop && !p.HopHeld
	p.HopHeld = in.Hop

	if !p.Hopping() {
		if !pressed || p.Motion != Grounded {
			return
		}
		p.HopFrameCounter = 1
		p.HopOffset = 0
		p.HopVelocity = t.HopVelocity
		p.HopAcceleration = t.HopAcceleration
		p.HopJerk = t.HopJerk
		p.HopBase = p.Pos.Y
		p.Motion = Airborne
		ev.HopStarted = true
	} else {
		p.HopFrameCounter++
	}

	p.HopAcceleration += p.HopJerk * TickDuration
	p.HopVelocity += p.HopAcceleration * TickDuration
	p.HopOffset += p.HopVelocity * TickDuration

	if p.HopFrameCounter >= t.HopTicks || (p.HopFrameCounter > 1 && p.HopOffset <= 0) {
		p.endHop()
	}
}

// endHop finishes the arc. Grounding is decided by the next contact check.
func (p *Player) endHop() {
	p.HopFrameCounter = 0
	p.HopOffset = 0
	p.HopVelocity = 0
	p.HopAcceleration = 0
	p.HopJerk = 0
}
