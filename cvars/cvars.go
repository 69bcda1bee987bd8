// SPDX-License-Identifier: GPL-2.0-or-later

// Package cvars declares the named cvars of the game. Physics cvars map one
// to one onto kart.Tuning and are read once when a race is set up.
package cvars

import (
	"strconv"

	"gokart/cvar"
	"gokart/kart"
)

type floatVar struct {
	name  string
	field func(t *kart.Tuning) *float32
}

type intVar struct {
	name  string
	field func(t *kart.Tuning) *int
}

var floatVars = []floatVar{
	{"kart_propulsion", func(t *kart.Tuning) *float32 { return &t.PropulsionStrength }},
	{"kart_brake", func(t *kart.Tuning) *float32 { return &t.BrakeStrength }},
	{"kart_friction", func(t *kart.Tuning) *float32 { return &t.FrictionScale }},
	{"kart_grip", func(t *kart.Tuning) *float32 { return &t.LateralGrip }},
	{"kart_drift_grip", func(t *kart.Tuning) *float32 { return &t.DriftGrip }},
	{"kart_top_speed", func(t *kart.Tuning) *float32 { return &t.TopSpeed }},
	{"kart_boost_scale", func(t *kart.Tuning) *float32 { return &t.BoostSpeedScale }},
	{"kart_gravity", func(t *kart.Tuning) *float32 { return &t.Gravity }},
	{"kart_terminal_velocity", func(t *kart.Tuning) *float32 { return &t.TerminalVelocity }},
	{"kart_slope_scale", func(t *kart.Tuning) *float32 { return &t.SlopeScale }},
	{"kart_steer_rate", func(t *kart.Tuning) *float32 { return &t.SteerRate }},
	{"kart_drift_steer_bias", func(t *kart.Tuning) *float32 { return &t.DriftSteerBias }},
	{"kart_wheel_base", func(t *kart.Tuning) *float32 { return &t.WheelBase }},
	{"kart_track_width", func(t *kart.Tuning) *float32 { return &t.TrackWidth }},
	{"kart_ride_height", func(t *kart.Tuning) *float32 { return &t.RideHeight }},
	{"kart_wall_radius", func(t *kart.Tuning) *float32 { return &t.WallRadius }},
	{"kart_wall_bounce", func(t *kart.Tuning) *float32 { return &t.WallBounce }},
	{"kart_probe_height", func(t *kart.Tuning) *float32 { return &t.ProbeHeight }},
	{"kart_landing_threshold", func(t *kart.Tuning) *float32 { return &t.LandingThreshold }},
	{"kart_tumble_speed", func(t *kart.Tuning) *float32 { return &t.TumbleSpeed }},
	{"kart_tumble_spin", func(t *kart.Tuning) *float32 { return &t.TumbleSpin }},
	{"kart_void_margin", func(t *kart.Tuning) *float32 { return &t.VoidMargin }},
	{"kart_drift_steer_threshold", func(t *kart.Tuning) *float32 { return &t.DriftSteerThreshold }},
	{"kart_drift_min_speed", func(t *kart.Tuning) *float32 { return &t.DriftMinSpeed }},
	{"kart_drift_boost_tier", func(t *kart.Tuning) *float32 { return &t.DriftBoostPerTier }},
	{"kart_drift_boost_max", func(t *kart.Tuning) *float32 { return &t.DriftBoostMax }},
	{"kart_ramp_boost", func(t *kart.Tuning) *float32 { return &t.RampBoostPower }},
	{"kart_hop_velocity", func(t *kart.Tuning) *float32 { return &t.HopVelocity }},
	{"kart_hop_acceleration", func(t *kart.Tuning) *float32 { return &t.HopAcceleration }},
	{"kart_hop_jerk", func(t *kart.Tuning) *float32 { return &t.HopJerk }},
}

var intVars = []intVar{
	{"kart_oob_grace", func(t *kart.Tuning) *int { return &t.OOBGraceTicks }},
	{"kart_recovery_ticks", func(t *kart.Tuning) *int { return &t.RecoveryTicks }},
	{"kart_tumble_ticks", func(t *kart.Tuning) *int { return &t.TumbleTicks }},
	{"kart_drift_start_ticks", func(t *kart.Tuning) *int { return &t.DriftStartTicks }},
	{"kart_drift_tier_ticks", func(t *kart.Tuning) *int { return &t.DriftTierTicks }},
	{"kart_boost_ticks", func(t *kart.Tuning) *int { return &t.BoostTicks }},
	{"kart_hop_ticks", func(t *kart.Tuning) *int { return &t.HopTicks }},
}

// Physics is the set of registered game cvars.
type Physics struct {
	Developer     *cvar.Cvar
	HostTimeScale *cvar.Cvar
	StaleTicks    *cvar.Cvar
	ParallelTyres *cvar.Cvar

	floats []*cvar.Cvar
	ints   []*cvar.Cvar
}

// Register creates every game cvar on reg, defaulting the physics ones to
// kart.DefaultTuning.
func Register(reg *cvar.Registry) *Physics {
	d := kart.DefaultTuning()
	p := &Physics{
		Developer:     reg.MustRegister("developer", "0", cvar.NONE),
		HostTimeScale: reg.MustRegister("host_timescale", "1", cvar.NONE),
		StaleTicks:    reg.MustRegister("net_stale_ticks", "30", cvar.ARCHIVE),
		ParallelTyres: reg.MustRegister("kart_parallel_tyres", "0", cvar.ARCHIVE),
	}
	for _, v := range floatVars {
		def := strconv.FormatFloat(float64(*v.field(&d)), 'f', -1, 32)
		p.floats = append(p.floats, reg.MustRegister(v.name, def, cvar.ARCHIVE|cvar.NOTIFY))
	}
	for _, v := range intVars {
		def := strconv.Itoa(*v.field(&d))
		p.ints = append(p.ints, reg.MustRegister(v.name, def, cvar.ARCHIVE|cvar.NOTIFY))
	}
	return p
}

// Tuning snapshots the current physics cvars.
func (p *Physics) Tuning() kart.Tuning {
	t := kart.DefaultTuning()
	for i, v := range floatVars {
		*v.field(&t) = p.floats[i].Value()
	}
	for i, v := range intVars {
		*v.field(&t) = int(p.ints[i].Value())
	}
	return t
}
