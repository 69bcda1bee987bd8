// SPDX-License-Identifier: GPL-2.0-or-later

// Package gametime turns wall clock time into whole simulation ticks.
package gametime

import (
	"time"

	"gokart/math"
)

// MaxFrameTime is the longest wall clock gap credited in one update. A
// stalled process catches up at most this much instead of spiralling.
const MaxFrameTime = 100 * time.Millisecond

var (
	startTime = time.Now()
)

// Since returns the time passed since the process started.
func Since() time.Duration {
	return time.Since(startTime)
}

// GameTime accumulates frame time and hands it out as fixed ticks. The
// simulation itself never sees wall clock time.
type GameTime struct {
	tick      time.Duration
	scale     float64
	clock     func() time.Duration
	time      time.Duration
	oldTime   time.Duration
	frameTime time.Duration
	acc       time.Duration
	tickCount uint32
}

// New returns a GameTime running ticks of length tick.
func New(tick time.Duration) *GameTime {
	return &GameTime{tick: tick, scale: 1, clock: Since}
}

// SetClock replaces the wall clock, for tests and replays.
func (h *GameTime) SetClock(c func() time.Duration) {
	h.clock = c
	h.Reset()
}

// SetTimeScale speeds up or slows down the simulation. Values are clamped
// to 0.1..10.
func (h *GameTime) SetTimeScale(s float64) {
	h.scale = math.Clamp(0.1, s, 10)
}

func (h *GameTime) Reset() {
	h.time = h.clock()
	h.oldTime = h.time
	h.frameTime = 0
	h.acc = 0
}

func (h *GameTime) Time() time.Duration      { return h.time }
func (h *GameTime) FrameTime() time.Duration { return h.frameTime }
func (h *GameTime) TickCount() uint32        { return h.tickCount }

// Alpha is the fraction of a tick left in the accumulator, for renderers
// that interpolate between two snapshots.
func (h *GameTime) Alpha() float32 {
	return float32(h.acc) / float32(h.tick)
}

// UpdateTime reads the clock and returns how many ticks are due.
func (h *GameTime) UpdateTime() int {
	h.time = h.clock()
	h.frameTime = h.time - h.oldTime
	h.oldTime = h.time
	h.frameTime = math.Clamp(0, time.Duration(float64(h.frameTime)*h.scale), MaxFrameTime)
	h.acc += h.frameTime
	n := int(h.acc / h.tick)
	h.acc -= time.Duration(n) * h.tick
	h.tickCount += uint32(n)
	return n
}
