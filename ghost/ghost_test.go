// SPDX-License-Identifier: GPL-2.0-or-later

package ghost

import (
	"bytes"
	"context"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"gokart/course"
	"gokart/kart"
)

func script() []kart.Input {
	var ins []kart.Input
	for i := range 300 {
		in := kart.Input{Accelerate: 1}
		switch {
		case i >= 60 && i < 120:
			in.Steer = 0.5
		case i >= 120 && i < 200:
			in.Steer = -1
			in.Drift = true
		case i == 200:
			in.Hop = true
		case i >= 250:
			in.Accelerate = 0
			in.Brake = 1
		}
		ins = append(ins, in)
	}
	return ins
}

func TestRecorderRunLength(t *testing.T) {
	r := NewRecorder("flat", 3)
	for range 300 {
		r.Add(kart.Input{Accelerate: 1})
	}
	rec := r.Recording()
	if got := rec.Ticks(); got != 300 {
		t.Errorf("Ticks() = %d, want 300", got)
	}
	if len(rec.Records) != 3 {
		t.Errorf("%d records, want 3", len(rec.Records))
	}
	for _, x := range rec.Records {
		if x.FrameDuration > maxDuration {
			t.Errorf("record duration %d above %d", x.FrameDuration, maxDuration)
		}
		if x.Button != ButtonA {
			t.Errorf("Button = %#x, want A", x.Button)
		}
	}
}

func TestReplayMatchesRecording(t *testing.T) {
	ins := script()
	r := NewRecorder("flat", 0)
	for _, in := range ins {
		r.Add(in)
	}
	rp := NewReplay(r.Recording())
	for i, want := range ins {
		got, ok := rp.Next()
		if !ok {
			t.Fatalf("replay ended at tick %d", i)
		}
		// Hop and drift share a button.
		want.Hop = want.Hop || want.Drift
		want.Drift = want.Hop
		if got != want {
			t.Fatalf("tick %d: Next() = %+v, want %+v", i, got, want)
		}
	}
	if in, ok := rp.Next(); ok || in != (kart.Input{}) {
		t.Errorf("Next() after end = %+v, %v", in, ok)
	}
}

func TestSaveLoad(t *testing.T) {
	r := NewRecorder("circuit", 5)
	for _, in := range script() {
		r.Add(in)
	}
	want := r.Recording()
	var buf bytes.Buffer
	if err := Save(&buf, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.ID != want.ID || got.Course != want.Course || got.Character != want.Character {
		t.Errorf("Load header = %v %q %d, want %v %q %d",
			got.ID, got.Course, got.Character, want.ID, want.Course, want.Character)
	}
	if len(got.Records) != len(want.Records) {
		t.Fatalf("Load has %d records, want %d", len(got.Records), len(want.Records))
	}
	for i := range got.Records {
		if got.Records[i] != want.Records[i] {
			t.Errorf("record %d = %+v, want %+v", i, got.Records[i], want.Records[i])
		}
	}

	if _, err := Load(bytes.NewReader([]byte{0xc1})); err == nil {
		t.Errorf("Load of garbage succeeded")
	}

	bad := *want
	bad.Records = append([]Record(nil), want.Records...)
	bad.Records[0].StickX++
	bad.CRC = checksum(want.Records)
	buf.Reset()
	if err := msgpack.NewEncoder(&buf).Encode(&bad); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := Load(&buf); err == nil {
		t.Errorf("Load of corrupted records succeeded")
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	tun := kart.DefaultTuning()
	m, err := course.Flat(4000, 0).Mesh()
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	g := kart.MeshGround{M: m}

	r := NewRecorder("flat", 0)
	for _, in := range script() {
		r.Add(in)
	}
	rec := r.Recording()

	run := func() kart.Player {
		p := kart.NewPlayer(0, course.Flat(4000, 0).Starts[0].Pos, 0, &tun)
		p.Pos.Y = tun.RideHeight
		rp := NewReplay(rec)
		for {
			in, ok := rp.Next()
			if !ok {
				return p
			}
			if _, err := kart.Step(context.Background(), &p, in, g, &tun); err != nil {
				t.Fatalf("Step failed: %v", err)
			}
		}
	}
	a, b := run(), run()
	if a != b {
		t.Errorf("two replays of one ghost diverged: %v vs %v", a.Pos, b.Pos)
	}
	if a.Pos == (course.Flat(4000, 0).Starts[0].Pos) {
		t.Errorf("replay did not move the kart")
	}
}
