// SPDX-License-Identifier: GPL-2.0-or-later

package kart

import (
	"testing"

	"gokart/math/vec"
	"gokart/surface"
)

func TestDriftBoostPower(t *testing.T) {
	tun := DefaultTuning()
	prev := DriftBoostPower(0, &tun)
	if prev != 0 {
		t.Errorf("DriftBoostPower(0) = %v, want 0", prev)
	}
	for d := 1; d <= maxDriftDuration; d++ {
		got := DriftBoostPower(uint16(d), &tun)
		if got < prev {
			t.Fatalf("DriftBoostPower(%d) = %v, below DriftBoostPower(%d) = %v", d, got, d-1, prev)
		}
		if got > tun.DriftBoostMax {
			t.Fatalf("DriftBoostPower(%d) = %v, above cap %v", d, got, tun.DriftBoostMax)
		}
		prev = got
	}
	if prev != tun.DriftBoostMax {
		t.Errorf("DriftBoostPower(max) = %v, want %v", prev, tun.DriftBoostMax)
	}
	for _, tc := range []struct {
		d    uint16
		want float32
	}{
		{uint16(tun.DriftTierTicks - 1), 0},
		{uint16(tun.DriftTierTicks), tun.DriftBoostPerTier},
		{uint16(2 * tun.DriftTierTicks), 2 * tun.DriftBoostPerTier},
	} {
		if got := DriftBoostPower(tc.d, &tun); got != tc.want {
			t.Errorf("DriftBoostPower(%d) = %v, want %v", tc.d, got, tc.want)
		}
	}
}

func TestDriftCycle(t *testing.T) {
	tun := DefaultTuning()
	m := buildMesh(t, []quad{flat(-3000, -3000, 3000, 3000, 0, 0, surface.Road)})
	g := MeshGround{M: m}
	p := NewPlayer(0, vec.Vec3{X: 0, Y: tun.RideHeight, Z: 0}, 0, &tun)
	p.Velocity = vec.Vec3{Z: 400}
	p.Speed = 400

	hold := Input{Accelerate: 1, Steer: 1, Drift: true}
	for i := 0; i < tun.DriftStartTicks-1; i++ {
		stepN(t, &p, hold, g, &tun, 1)
		if p.Drift != DriftStarting {
			t.Fatalf("tick %d: Drift = %v, want drift-starting", i, p.Drift)
		}
	}
	stepN(t, &p, hold, g, &tun, 1)
	if p.Drift != Drifting {
		t.Fatalf("Drift = %v, want drifting", p.Drift)
	}

	last := p.DriftDuration
	for i := range 100 {
		stepN(t, &p, hold, g, &tun, 1)
		if p.Drift != Drifting {
			t.Fatalf("tick %d: Drift = %v, want drifting", i, p.Drift)
		}
		if p.DriftDuration < last {
			t.Fatalf("tick %d: DriftDuration fell from %d to %d", i, last, p.DriftDuration)
		}
		last = p.DriftDuration
	}
	if last != 100 {
		t.Errorf("DriftDuration = %d after 100 drifting ticks, want 100", last)
	}

	ev := stepN(t, &p, Input{Accelerate: 1}, g, &tun, 1)
	if p.Drift != DriftReleasing {
		t.Fatalf("Drift = %v, want drift-releasing", p.Drift)
	}
	if want := DriftBoostPower(last, &tun); ev.Boost != want || want == 0 {
		t.Errorf("release boost = %v, want %v", ev.Boost, want)
	}
	if p.BoostTimer == 0 {
		t.Errorf("BoostTimer not set on release")
	}
	stepN(t, &p, Input{Accelerate: 1}, g, &tun, 1)
	if p.Drift != NotDrifting {
		t.Fatalf("Drift = %v, want not-drifting", p.Drift)
	}
	if p.DriftDuration != 0 {
		t.Errorf("DriftDuration = %d on not-drifting, want 0", p.DriftDuration)
	}
}

func TestDriftNeedsSpeedAndSteer(t *testing.T) {
	tun := DefaultTuning()
	m := buildMesh(t, []quad{flat(-1000, -1000, 1000, 1000, 0, 0, surface.Road)})
	g := MeshGround{M: m}
	for _, tc := range []struct {
		name  string
		speed float32
		in    Input
	}{
		{"slow", tun.DriftMinSpeed / 4, Input{Steer: 1, Drift: true}},
		{"straight", 400, Input{Steer: 0.1, Drift: true}},
		{"no button", 400, Input{Steer: 1}},
	} {
		p := NewPlayer(0, vec.Vec3{X: 0, Y: tun.RideHeight, Z: 0}, 0, &tun)
		p.Velocity = vec.Vec3{Z: tc.speed}
		p.Speed = tc.speed
		stepN(t, &p, tc.in, g, &tun, 1)
		if p.Drift != NotDrifting {
			t.Errorf("%s: Drift = %v, want not-drifting", tc.name, p.Drift)
		}
	}
}

func TestDriftStartCancelledByCounterSteer(t *testing.T) {
	tun := DefaultTuning()
	m := buildMesh(t, []quad{flat(-1000, -1000, 1000, 1000, 0, 0, surface.Road)})
	g := MeshGround{M: m}
	p := NewPlayer(0, vec.Vec3{X: 0, Y: tun.RideHeight, Z: 0}, 0, &tun)
	p.Velocity = vec.Vec3{Z: 400}
	p.Speed = 400
	stepN(t, &p, Input{Accelerate: 1, Steer: 1, Drift: true}, g, &tun, 1)
	if p.Drift != DriftStarting {
		t.Fatalf("Drift = %v, want drift-starting", p.Drift)
	}
	stepN(t, &p, Input{Accelerate: 1, Steer: -1, Drift: true}, g, &tun, 1)
	if p.Drift != NotDrifting || p.DriftDuration != 0 {
		t.Errorf("Drift = %v duration %d, want not-drifting", p.Drift, p.DriftDuration)
	}
}

func TestHopArc(t *testing.T) {
	tun := DefaultTuning()
	m := buildMesh(t, []quad{flat(-1000, -1000, 1000, 1000, 0, 0, surface.Road)})
	g := MeshGround{M: m}
	p := NewPlayer(0, vec.Vec3{X: 0, Y: tun.RideHeight, Z: 0}, 0, &tun)

	hop := Input{Hop: true}
	ev := stepN(t, &p, hop, g, &tun, 1)
	if !ev.HopStarted || !p.Hopping() {
		t.Fatalf("hop did not start")
	}
	if p.Motion != Airborne {
		t.Errorf("Motion = %v during hop, want airborne", p.Motion)
	}
	if p.Pos.Y <= tun.RideHeight {
		t.Errorf("Pos.Y = %v, want above %v", p.Pos.Y, tun.RideHeight)
	}

	ticks := 1
	for p.Hopping() {
		frame := p.HopFrameCounter
		ev = stepN(t, &p, hop, g, &tun, 1)
		ticks++
		if ev.HopStarted {
			t.Fatalf("held button restarted the hop")
		}
		if p.Hopping() {
			if p.Motion != Airborne {
				t.Fatalf("tick %d: Motion = %v during hop", ticks, p.Motion)
			}
			if p.HopFrameCounter != frame+1 {
				t.Fatalf("tick %d: HopFrameCounter = %d, want %d", ticks, p.HopFrameCounter, frame+1)
			}
		}
		if ticks > tun.HopTicks+1 {
			t.Fatalf("hop longer than %d ticks", tun.HopTicks)
		}
	}

	landed := false
	for range 30 {
		if ev := stepN(t, &p, hop, g, &tun, 1); ev.Landed {
			landed = true
			break
		}
	}
	if !landed || p.Motion != Grounded {
		t.Errorf("kart did not land after hop: %v at %v", p.Motion, p.Pos)
	}

	ev = stepN(t, &p, Input{}, g, &tun, 1)
	if ev.HopStarted {
		t.Errorf("hop started without a press")
	}
	ev = stepN(t, &p, hop, g, &tun, 1)
	if !ev.HopStarted {
		t.Errorf("fresh press did not start a hop")
	}
}

func TestNoHopWhileAirborne(t *testing.T) {
	tun := DefaultTuning()
	m := buildMesh(t, []quad{flat(-100, -100, 100, 100, 0, 0, surface.Road)})
	g := MeshGround{M: m}
	p := NewPlayer(0, vec.Vec3{X: 0, Y: 50, Z: 0}, 0, &tun)
	p.Motion = Airborne
	if ev := stepN(t, &p, Input{Hop: true}, g, &tun, 1); ev.HopStarted {
		t.Errorf("airborne kart started a hop")
	}
}
