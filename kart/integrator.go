// SPDX-License-Identifier: GPL-2.0-or-later

package kart

import (
	"context"

	"github.com/chewxy/math32"

	"gokart/collision"
	kmath "gokart/math"
	"gokart/math/vec"
	"gokart/surface"
)

const (
	// Steeper surfaces than this count as walls for push out.
	wallMaxNormalY = 0.5
	steerFrames    = 9
)

// StepEvents describes what happened to a kart during one tick.
type StepEvents struct {
	Surface        surface.Type
	SurfaceChanged bool
	Landed         bool
	Tumbled        bool
	OutOfBounds    bool
	Recovered      bool
	WallHit        bool
	HopStarted     bool
	// Boost is the power of a boost granted this tick, 0 if none.
	Boost float32
}

// Step advances p by one fixed tick. The four tyre contacts are resolved
// through g before anything is written back; on error p is unchanged and
// the tick can be retried.
func Step(ctx context.Context, p *Player, in Input, g Ground, t *Tuning) (StepEvents, error) {
	next := *p
	ev, err := next.step(ctx, in.Clamped(), g, t)
	if err != nil {
		return StepEvents{}, err
	}
	*p = next
	return ev, nil
}

func (p *Player) step(ctx context.Context, in Input, g Ground, t *Tuning) (StepEvents, error) {
	var ev StepEvents
	p.OldPos = p.Pos
	p.PreviousSpeed = p.Speed

	switch p.Motion {
	case OutOfBounds:
		p.recover(t, &ev)
		return ev, nil
	case Tumbling:
		in = Input{}
	}

	p.updateHop(in, t, &ev)
	p.updateDrift(in, t, &ev)
	p.steer(in, t)

	switch {
	case p.Motion == Tumbling:
		p.tumble(t)
	case p.Motion == Grounded || p.Hopping():
		p.drive(in, t)
	default:
		p.fall(t)
	}
	p.tickBoost()

	p.Pos = vec.MulAdd(p.Pos, p.Velocity, TickDuration)
	if p.Hopping() {
		p.Pos.Y = p.HopBase + p.HopOffset
	}
	p.Tyres = p.placeTyres(t)

	contacts, err := g.ResolveTyres(ctx, p.probes(t), p.contacts())
	if err != nil {
		return ev, err
	}
	p.applyContacts(g.Mesh(), contacts, t, &ev)
	p.orient()
	p.animate(in)
	p.Speed = p.Velocity.HorizontalLength()
	return ev, nil
}

func (p *Player) steer(in Input, t *Tuning) {
	if p.Motion != Grounded && !p.Hopping() {
		return
	}
	// no turning on the spot
	grip := kmath.Clamp(0, p.Speed*4/t.TopSpeed, 1)
	rate := in.Steer * t.SteerRate
	if p.Drift == Drifting {
		rate = p.DriftDirection*t.DriftSteerBias + in.Steer*t.SteerRate/2
	}
	p.Rotation[1] = kmath.AddBinary(p.Rotation[1], rate*grip*TickDuration)
}

// drive applies propulsion, friction and slope pull along the ground plane
// and clamps the result to the current speed cap.
func (p *Player) drive(in Input, t *Tuning) {
	n := p.Collision.Normal
	if n == (vec.Vec3{}) {
		n = vec.Up
	}
	f := vec.ProjectOnPlane(p.Forward(), n).Normalize()
	v := p.Velocity
	s := vec.Dot(v, f)
	lateral := vec.MulAdd(v, f, -s)

	accel := in.Accelerate * p.PropulsionStrength * p.Traction
	if p.BoostTimer > 0 {
		accel += p.BoostPower
	}
	s += accel * TickDuration
	decel := p.Friction * t.FrictionScale
	if in.Brake > 0 {
		decel += in.Brake * t.BrakeStrength
	}
	s = kmath.Approach(s, 0, decel*TickDuration)

	grip := t.LateralGrip
	if p.Drift == Drifting {
		grip = t.DriftGrip
	}
	lateral = lateral.Scale(1 - kmath.Clamp(0, grip*p.Traction, 1))
	v = vec.MulAdd(lateral, f, s)

	pull := vec.ProjectOnPlane(vec.Vec3{Y: -p.Gravity}, n)
	v = vec.MulAdd(v, pull, t.SlopeScale*TickDuration)
	v = vec.ProjectOnPlane(v, n)

	limit := p.TopSpeed
	if p.BoostTimer > 0 {
		limit *= t.BoostSpeedScale
	}
	if l := v.Length(); l > limit {
		v = v.Scale(limit / l)
	}
	p.Velocity = v
}

// fall applies gravity to the vertical velocity only.
func (p *Player) fall(t *Tuning) {
	p.Velocity.Y = max(p.Velocity.Y-p.Gravity*TickDuration, -t.TerminalVelocity)
}

// tumble spins the kart and bleeds off its horizontal speed.
func (p *Player) tumble(t *Tuning) {
	p.Rotation[1] = kmath.AddBinary(p.Rotation[1], t.TumbleSpin)
	h := vec.Vec3{X: p.Velocity.X, Z: p.Velocity.Z}
	if l := h.Length(); l > 0 {
		ticks := float32(max(t.TumbleTicks, 1))
		nl := kmath.Approach(l, 0, t.TumbleSpeed/ticks)
		h = h.Scale(nl / l)
	}
	p.Velocity.X, p.Velocity.Z = h.X, h.Z
	p.fall(t)
}

func (p *Player) tickBoost() {
	if p.BoostTimer <= 0 {
		return
	}
	p.BoostTimer--
	if p.BoostTimer == 0 {
		p.BoostPower = 0
	}
}

// recover counts down an out of bounds recovery. The kart is held in place
// and dropped back at its last safe position when the countdown ends.
func (p *Player) recover(t *Tuning, ev *StepEvents) {
	p.Velocity = vec.Vec3{}
	p.Speed = 0
	p.RecoveryTimer--
	if p.RecoveryTimer > 0 {
		return
	}
	p.RecoveryTimer = 0
	p.Pos = p.LastSafePos
	p.OldPos = p.Pos
	p.Rotation = [3]int16{0, p.LastSafeYaw, 0}
	p.Motion = Grounded
	p.OOBTicks = 0
	p.Collision = collision.Empty()
	for i := range p.Tyres {
		p.Tyres[i].Contact = collision.Empty()
		p.Tyres[i].MeshIndex = collision.NoMesh
		p.Tyres[i].Touching = false
	}
	p.Tyres = p.placeTyres(t)
	p.Orientation = vec.Basis(vec.Up, p.Forward())
	ev.Recovered = true
}

// applyContacts commits the resolved tyre contacts and runs the motion
// state transitions.
func (p *Player) applyContacts(m *collision.Mesh, contacts [4]collision.Collision, t *Tuning, ev *StepEvents) {
	var touching, grounded int
	var base, groundBase float32
	var friction, traction float32
	var normal vec.Vec3
	var tumble, boost, hazard bool
	nearest, nearestDist := -1, collision.NoGround
	for i := range p.Tyres {
		ty := &p.Tyres[i]
		c := contacts[i]
		ty.Contact = c
		ty.MeshIndex = c.MeshIndexZX
		ty.Touching = false
		tri := m.Triangle(c.MeshIndexZX)
		if tri == nil {
			ty.SurfaceType = surface.Airborne
			ty.SurfaceFlags = 0
			continue
		}
		dist := c.Distance(collision.ZX) - t.ProbeHeight
		props := tri.Properties()
		ty.SurfaceType = tri.Surface
		ty.SurfaceFlags = tri.Flags
		ty.BaseHeight = ty.Pos.Y - dist
		ty.Light = tri.Normal.Y
		grounded++
		groundBase += ty.BaseHeight
		if math32.Abs(dist) < nearestDist {
			nearest, nearestDist = i, math32.Abs(dist)
		}
		if dist > t.LandingThreshold {
			continue
		}
		// Landed only surfaces let a rising kart pass through. A kart
		// already driving on one keeps its contact.
		if props.TangibleOnlyWhenLanded && p.Motion != Grounded && p.Velocity.Y > 0 {
			continue
		}
		ty.Touching = true
		touching++
		base += ty.BaseHeight
		normal = vec.Add(normal, tri.Normal)
		friction += props.Friction
		traction += props.Traction
		tumble = tumble || props.TumbleOnContact
		boost = boost || props.Boost
		hazard = hazard || props.OutOfBounds || props.TumbleOnContact
	}

	surf := surface.Airborne
	kc := collision.Empty()
	kc.Normal = p.Collision.Normal
	if nearest >= 0 {
		surf = p.Tyres[nearest].SurfaceType
		kc = contacts[nearest]
		kc.Normal = p.Collision.Normal
	}
	if touching > 0 {
		k := float32(touching)
		p.Friction = friction / k
		p.Traction = traction / k
		kc.Normal = normal.Normalize()
	}
	p.Collision = kc
	if surf != p.SurfaceType {
		ev.SurfaceChanged = true
		p.SurfaceType = surf
	}
	ev.Surface = surf

	p.pushOutOfWalls(m, contacts, t, ev)

	if p.Motion == Tumbling {
		if touching > 0 {
			p.snap(base/float32(touching), t)
		}
		p.RecoveryTimer--
		if p.RecoveryTimer <= 0 {
			p.RecoveryTimer = 0
			p.Motion = Airborne
			if touching > 0 {
				p.Motion = Grounded
			}
			ev.Recovered = true
		}
		return
	}

	switch {
	case p.Hopping():
		if grounded > 0 {
			p.HopBase = groundBase/float32(grounded) + t.RideHeight
			p.Pos.Y = p.HopBase + p.HopOffset
		}
	case touching > 0:
		if p.Motion == Airborne {
			ev.Landed = true
		}
		p.Motion = Grounded
		p.snap(base/float32(touching), t)
	default:
		p.Motion = Airborne
	}

	if p.Motion == Grounded && tumble && p.Velocity.HorizontalLength() >= t.TumbleSpeed {
		p.enterTumble(t, ev)
		return
	}
	if p.Motion == Grounded && boost && p.BoostTimer == 0 {
		p.grantBoost(t.RampBoostPower, t)
		ev.Boost = t.RampBoostPower
	}

	if nearest >= 0 && surface.Classify(p.Tyres[nearest].SurfaceFlags, surf).OutOfBounds {
		p.OOBTicks++
	} else {
		p.OOBTicks = 0
	}
	if p.OOBTicks > t.OOBGraceTicks || p.Pos.Y < m.Floor()-t.VoidMargin {
		p.enterOutOfBounds(t, ev)
		return
	}
	if p.Motion == Grounded && !hazard && p.OOBTicks == 0 {
		p.LastSafePos = p.Pos
		p.LastSafeYaw = p.Rotation[1]
	}
}

// snap puts the kart on the ground and keeps its velocity along it.
func (p *Player) snap(ground float32, t *Tuning) {
	p.Pos.Y = ground + t.RideHeight
	p.Velocity = vec.ProjectOnPlane(p.Velocity, p.Collision.Normal)
	p.Tyres = p.placeTyres(t)
}

// pushOutOfWalls moves the kart out of the deepest wall any tyre is
// touching and clips its velocity against that wall.
func (p *Player) pushOutOfWalls(m *collision.Mesh, contacts [4]collision.Collision, t *Tuning, ev *StepEvents) {
	var (
		depth float32
		push  vec.Vec3
	)
	for _, c := range contacts {
		for _, proj := range [2]collision.Projection{collision.ZY, collision.YX} {
			tri := m.Triangle(c.MeshIndex(proj))
			if tri == nil || math32.Abs(tri.Normal.Y) >= wallMaxNormalY {
				continue
			}
			d := c.Distance(proj)
			if d >= t.WallRadius {
				continue
			}
			if pen := t.WallRadius - d; pen > depth {
				depth = pen
				push = vec.Vec3{X: tri.Normal.X, Z: tri.Normal.Z}.Normalize()
			}
		}
	}
	if depth == 0 {
		return
	}
	p.Pos = vec.MulAdd(p.Pos, push, depth)
	p.Velocity = clipVelocity(p.Velocity, push, 1+t.WallBounce)
	p.Tyres = p.placeTyres(t)
	ev.WallHit = true
}

// clipVelocity removes the part of in going into the plane, scaled by
// overbounce.
func clipVelocity(in, normal vec.Vec3, overbounce float32) vec.Vec3 {
	backoff := vec.Dot(in, normal)
	if backoff >= 0 {
		return in
	}
	return vec.MulAdd(in, normal, -backoff*overbounce)
}

func (p *Player) enterTumble(t *Tuning, ev *StepEvents) {
	p.Motion = Tumbling
	p.RecoveryTimer = t.TumbleTicks
	p.cancelDrift()
	p.endHop()
	p.BoostTimer = 0
	p.BoostPower = 0
	ev.Tumbled = true
}

func (p *Player) enterOutOfBounds(t *Tuning, ev *StepEvents) {
	p.Motion = OutOfBounds
	p.RecoveryTimer = t.RecoveryTicks
	p.Velocity = vec.Vec3{}
	p.OOBTicks = 0
	p.cancelDrift()
	p.endHop()
	p.BoostTimer = 0
	p.BoostPower = 0
	ev.OutOfBounds = true
}

// orient rebuilds the orientation matrix from the contact normal and the
// heading and derives pitch and roll from it.
func (p *Player) orient() {
	up := p.Collision.Normal
	if up == (vec.Vec3{}) {
		up = vec.Up
	}
	p.Orientation = vec.Basis(up, p.Forward())
	f := vec.Column(p.Orientation, 2)
	r := vec.Column(p.Orientation, 0)
	p.Rotation[0] = kmath.RadiansToBinary(math32.Asin(kmath.Clamp(-1, f.Y, 1)))
	p.Rotation[2] = kmath.RadiansToBinary(math32.Asin(kmath.Clamp(-1, r.Y, 1)))
}

// animate selects the wheel frames from the steering and the tyre groups
// from the surface under each tyre.
func (p *Player) animate(in Input) {
	frame := uint16(int((in.Steer+1)*(steerFrames-1)/2 + 0.5))
	for i, ty := range p.Tyres {
		p.AnimFrameSelector[i] = frame
		p.AnimGroupSelector[i] = 0
		if ty.Touching {
			p.AnimGroupSelector[i] = uint16(ty.SurfaceType)
		}
	}
}
