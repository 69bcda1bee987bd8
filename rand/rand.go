// SPDX-License-Identifier: GPL-2.0-or-later

// Package rand is a seeded, position based noise generator. The same seed
// gives the same sequence on every platform, which keeps replays and peers
// in step.
package rand

import "github.com/chewxy/math32"

const (
	noise1 = 0xB5297A4D
	noise2 = 0x68E31DA4
	noise3 = 0x1B56C4E9
)

type Generator struct {
	idx  uint32
	seed uint32
}

func New(seed uint32) Generator {
	return Generator{idx: 0, seed: seed}
}

func noise(p uint32, s uint32) uint32 {
	m := p
	m *= noise1
	m += s
	m ^= (m >> 8)
	m *= noise2
	m ^= (m << 8)
	m *= noise3
	m ^= (m >> 8)
	return m
}

func (g *Generator) rand() uint32 {
	g.idx++
	return noise(g.idx, g.seed)
}

// Fork returns an independent generator derived from g's seed, one per
// stream (kart slot, effect, ...).
func (g *Generator) Fork(stream uint32) Generator {
	return New(noise(stream, g.seed^noise3))
}

func (g *Generator) Uint32n(n uint32) uint32 {
	return g.rand() % n
}

func (g *Generator) Intn(n int) int {
	return int(g.Uint32n(uint32(n)))
}

// Float32 returns a value in [0, 1).
func (g *Generator) Float32() float32 {
	return float32(g.Uint32n(1<<24)) / (1 << 24)
}

// Range returns a value in [lo, hi).
func (g *Generator) Range(lo, hi float32) float32 {
	return lo + (hi-lo)*g.Float32()
}

// at is the lattice value at integer position i, in [-1, 1).
func (g *Generator) at(i int32) float32 {
	return float32(noise(uint32(i), g.seed)>>8)/(1<<23) - 1
}

// Smooth is one dimensional value noise at x, in [-1, 1). It does not
// advance the sequence, so it can be sampled at any tick.
func (g *Generator) Smooth(x float32) float32 {
	f := math32.Floor(x)
	i := int32(f)
	t := x - f
	t = t * t * (3 - 2*t)
	a, b := g.at(i), g.at(i+1)
	return a + (b-a)*t
}
