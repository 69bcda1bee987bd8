// SPDX-License-Identifier: GPL-2.0-or-later

package kart

// TickDuration is the fixed simulation step in seconds. Integration never
// uses wall clock time.
const TickDuration float32 = 1.0 / 60

// Tuning holds the physics constants of one race. It is a snapshot taken at
// race setup and never changes while ticks run.
type Tuning struct {
	// Propulsion and resistance, units/s².
	PropulsionStrength float32
	BrakeStrength      float32
	FrictionScale      float32
	// Share of the sideways velocity removed per tick at full traction.
	LateralGrip float32
	DriftGrip   float32

	TopSpeed        float32
	BoostSpeedScale float32

	Gravity          float32
	TerminalVelocity float32
	// How much of gravity pulls a grounded kart along a slope.
	SlopeScale float32

	// Steering in radians per second at full lock.
	SteerRate      float32
	DriftSteerBias float32

	// Kart geometry.
	WheelBase  float32
	TrackWidth float32
	RideHeight float32
	WallRadius float32
	WallBounce float32
	// Tyres are probed from this far above their contact point, so small
	// penetrations still find the surface.
	ProbeHeight      float32
	LandingThreshold float32

	OOBGraceTicks int
	RecoveryTicks int
	TumbleTicks   int
	TumbleSpeed   float32
	TumbleSpin    float32
	// Falling this far below the lowest point of the course counts as out
	// of bounds.
	VoidMargin float32

	DriftSteerThreshold float32
	DriftMinSpeed       float32
	DriftStartTicks     int
	DriftTierTicks      int
	DriftBoostPerTier   float32
	DriftBoostMax       float32

	BoostTicks     int
	RampBoostPower float32

	HopVelocity     float32
	HopAcceleration float32
	HopJerk         float32
	HopTicks        int
}

// DefaultTuning returns the stock kart.
func DefaultTuning() Tuning {
	return Tuning{
		PropulsionStrength: 800,
		BrakeStrength:      1200,
		FrictionScale:      100,
		LateralGrip:        0.25,
		DriftGrip:          0.08,

		TopSpeed:        600,
		BoostSpeedScale: 1.25,

		Gravity:          1200,
		TerminalVelocity: 600,
		SlopeScale:       0.5,

		SteerRate:      2.5,
		DriftSteerBias: 1.2,

		WheelBase:        12,
		TrackWidth:       10,
		RideHeight:       4,
		WallRadius:       8,
		WallBounce:       0.5,
		ProbeHeight:      8,
		LandingThreshold: 2,

		OOBGraceTicks: 6,
		RecoveryTicks: 90,
		TumbleTicks:   60,
		TumbleSpeed:   300,
		TumbleSpin:    0.35,
		VoidMargin:    100,

		DriftSteerThreshold: 0.5,
		DriftMinSpeed:       200,
		DriftStartTicks:     4,
		DriftTierTicks:      45,
		DriftBoostPerTier:   150,
		DriftBoostMax:       450,

		BoostTicks:     40,
		RampBoostPower: 400,

		HopVelocity:     120,
		HopAcceleration: -600,
		HopJerk:         -2000,
		HopTicks:        16,
	}
}
