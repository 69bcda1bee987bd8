// SPDX-License-Identifier: GPL-2.0-or-later

package race

import (
	"testing"

	"gokart/ghost"
	"gokart/kart"
)

func TestNoiseDriverIsSeeded(t *testing.T) {
	a, b, c := NewNoiseDriver(3), NewNoiseDriver(3), NewNoiseDriver(4)
	same := true
	for i := range 200 {
		ia, _ := a.Next()
		ib, _ := b.Next()
		ic, _ := c.Next()
		if ia != ib {
			t.Fatalf("tick %d: %+v != %+v", i, ia, ib)
		}
		if ia.Steer < -1 || ia.Steer >= 1 || ia.Accelerate != 1 {
			t.Errorf("tick %d: input %+v out of range", i, ia)
		}
		same = same && ia == ic
	}
	if same {
		t.Errorf("seeds 3 and 4 drove identically")
	}
}

func TestPoll(t *testing.T) {
	rec := ghost.NewRecorder("x", 0)
	rec.Add(kart.Input{Accelerate: 1})
	src := [4]InputSource{hold{Brake: 1}, nil, ghost.NewReplay(rec.Recording())}
	in := Poll(src)
	if in[0].Brake != 1 || in[1] != (kart.Input{}) || in[2].Accelerate != 1 {
		t.Errorf("Poll = %+v", in)
	}
	// the ghost has run out
	if in = Poll(src); in[2] != (kart.Input{}) {
		t.Errorf("Poll after end = %+v", in[2])
	}
}
