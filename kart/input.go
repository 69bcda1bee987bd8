// SPDX-License-Identifier: GPL-2.0-or-later

package kart

import (
	"context"

	"gokart/collision"
	kmath "gokart/math"
	"gokart/math/vec"
)

// Input is one tick of normalized controls. Steer is -1 (left) to 1
// (right), Accelerate and Brake are 0 to 1.
type Input struct {
	Steer      float32
	Accelerate float32
	Brake      float32
	Hop        bool
	Drift      bool
}

// Clamped returns the input limited to its valid ranges.
func (in Input) Clamped() Input {
	in.Steer = kmath.Clamp(-1, in.Steer, 1)
	in.Accelerate = kmath.Clamp(0, in.Accelerate, 1)
	in.Brake = kmath.Clamp(0, in.Brake, 1)
	return in
}

// Ground resolves the four tyre contacts of one kart. Implementations must
// return all four results or an error, never a partial set.
type Ground interface {
	Mesh() *collision.Mesh
	ResolveTyres(ctx context.Context, probes [4]vec.Vec3, last [4]collision.Collision) ([4]collision.Collision, error)
}

// MeshGround resolves the tyres one after another on the calling goroutine.
type MeshGround struct {
	M *collision.Mesh
}

func (g MeshGround) Mesh() *collision.Mesh {
	return g.M
}

func (g MeshGround) ResolveTyres(ctx context.Context, probes [4]vec.Vec3, last [4]collision.Collision) ([4]collision.Collision, error) {
	var out [4]collision.Collision
	if err := ctx.Err(); err != nil {
		return out, err
	}
	for i, p := range probes {
		out[i] = collision.Resolve(g.M, p, last[i])
	}
	return out, nil
}
