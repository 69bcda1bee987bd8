// SPDX-License-Identifier: GPL-2.0-or-later

package race

import (
	"gokart/kart"
	"gokart/rand"
)

// InputSource produces one input per tick. ok is false once the source
// has run out; the kart then gets zero input. ghost.Replay is one.
type InputSource interface {
	Next() (in kart.Input, ok bool)
}

// Poll reads the next input of every source. Missing sources give zero
// input.
func Poll(src [4]InputSource) [4]kart.Input {
	var in [4]kart.Input
	for i, s := range src {
		if s == nil {
			continue
		}
		if v, ok := s.Next(); ok {
			in[i] = v
		}
	}
	return in
}

// NoiseDriver is a stand in driver: full throttle with steering that
// wanders smoothly, seeded so two runs drive the same.
type NoiseDriver struct {
	steer rand.Generator
	hop   rand.Generator
	tick  int
	// Wander is how fast the steering changes, in noise cells per tick.
	Wander float32
}

func NewNoiseDriver(seed uint32) *NoiseDriver {
	g := rand.New(seed)
	return &NoiseDriver{
		steer:  g.Fork(1),
		hop:    g.Fork(2),
		Wander: 1.0 / 90,
	}
}

func (d *NoiseDriver) Next() (kart.Input, bool) {
	x := float32(d.tick) * d.Wander
	d.tick++
	steer := d.steer.Smooth(x)
	// hold hop while the noise is high to try drifts
	hop := d.hop.Smooth(x*0.5) > 0.6
	return kart.Input{
		Steer:      steer,
		Accelerate: 1,
		Hop:        hop,
		Drift:      hop,
	}, true
}
