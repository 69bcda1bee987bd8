// SPDX-License-Identifier: GPL-2.0-or-later

package race

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gokart/collision"
	"gokart/math/vec"
)

// parallelGround resolves the four tyres on their own goroutines. The mesh
// is immutable, so the queries share it without locking.
type parallelGround struct {
	m *collision.Mesh
}

func (g parallelGround) Mesh() *collision.Mesh {
	return g.m
}

func (g parallelGround) ResolveTyres(ctx context.Context, probes [4]vec.Vec3, last [4]collision.Collision) ([4]collision.Collision, error) {
	var out [4]collision.Collision
	eg, ctx := errgroup.WithContext(ctx)
	for i := range probes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = collision.Resolve(g.m, probes[i], last[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return [4]collision.Collision{}, err
	}
	return out, nil
}
