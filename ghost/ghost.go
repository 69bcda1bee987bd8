// SPDX-License-Identifier: GPL-2.0-or-later

// Package ghost records and replays driver input as run-length encoded
// controller frames, the format staff ghosts are stored in.
package ghost

import (
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"gokart/crc"
	"gokart/kart"
	"gokart/math"
)

// Button bits of a record.
const (
	ButtonA = 0x80 // accelerate
	ButtonB = 0x40 // brake
	ButtonZ = 0x20 // item, kept but not replayed
	ButtonR = 0x10 // hop, held for drift
)

// StickRange is the stick deflection that maps to full steer or pitch.
const StickRange = 80

// maxDuration is the longest run one record can hold.
const maxDuration = 127

// Record holds one controller state for FrameDuration ticks.
type Record struct {
	Button        uint8 `msgpack:"b"`
	FrameDuration int8  `msgpack:"d"`
	StickY        int8  `msgpack:"y"`
	StickX        int8  `msgpack:"x"`
}

// Recording is one driver's run.
type Recording struct {
	ID        uuid.UUID `msgpack:"id"`
	Course    string    `msgpack:"course"`
	Character uint8     `msgpack:"character"`
	Records   []Record  `msgpack:"records"`
	// CRC covers the records. Save fills it in.
	CRC uint16 `msgpack:"crc"`
}

func checksum(recs []Record) uint16 {
	c := crc.Initial
	for _, r := range recs {
		c = crc.Update(c, []byte{r.Button, byte(r.FrameDuration), byte(r.StickY), byte(r.StickX)})
	}
	return c
}

// Ticks is the total replay length.
func (r *Recording) Ticks() int {
	n := 0
	for _, rec := range r.Records {
		n += int(rec.FrameDuration)
	}
	return n
}

func (rec Record) input() kart.Input {
	in := kart.Input{
		Steer: float32(rec.StickX) / StickRange,
		Hop:   rec.Button&ButtonR != 0,
		Drift: rec.Button&ButtonR != 0,
	}
	if rec.Button&ButtonA != 0 {
		in.Accelerate = 1
	}
	if rec.Button&ButtonB != 0 {
		in.Brake = 1
	}
	return in.Clamped()
}

func stick(v float32) int8 {
	return int8(math.RoundInt(math.Clamp(-1, v, 1) * StickRange))
}

func record(in kart.Input) Record {
	var b uint8
	if in.Accelerate >= 0.5 {
		b |= ButtonA
	}
	if in.Brake >= 0.5 {
		b |= ButtonB
	}
	if in.Hop || in.Drift {
		b |= ButtonR
	}
	return Record{Button: b, FrameDuration: 1, StickX: stick(in.Steer)}
}

// Recorder builds a Recording one tick at a time.
type Recorder struct {
	rec Recording
}

func NewRecorder(course string, character uint8) *Recorder {
	return &Recorder{rec: Recording{
		ID:        uuid.Must(uuid.NewV7()),
		Course:    course,
		Character: character,
	}}
}

// Add appends one tick of input. Runs of identical frames share a record.
func (r *Recorder) Add(in kart.Input) {
	next := record(in)
	if n := len(r.rec.Records); n > 0 {
		last := &r.rec.Records[n-1]
		if last.FrameDuration < maxDuration &&
			last.Button == next.Button && last.StickX == next.StickX && last.StickY == next.StickY {
			last.FrameDuration++
			return
		}
	}
	r.rec.Records = append(r.rec.Records, next)
}

// Recording returns a copy of what was recorded so far.
func (r *Recorder) Recording() *Recording {
	out := r.rec
	out.Records = append([]Record(nil), r.rec.Records...)
	return &out
}

// Replay feeds a recording back as kart input.
type Replay struct {
	rec  *Recording
	i    int
	left int
}

func NewReplay(r *Recording) *Replay {
	p := &Replay{rec: r}
	p.skipEmpty()
	return p
}

func (p *Replay) skipEmpty() {
	for p.i < len(p.rec.Records) && p.rec.Records[p.i].FrameDuration <= 0 {
		p.i++
	}
	if p.i < len(p.rec.Records) {
		p.left = int(p.rec.Records[p.i].FrameDuration)
	}
}

// Next returns the input of the next tick. ok is false once the recording
// is used up; the input is then zero.
func (p *Replay) Next() (in kart.Input, ok bool) {
	if p.i >= len(p.rec.Records) {
		return kart.Input{}, false
	}
	in = p.rec.Records[p.i].input()
	p.left--
	if p.left == 0 {
		p.i++
		p.skipEmpty()
	}
	return in, true
}

// Save writes r in msgpack form.
func Save(w io.Writer, r *Recording) error {
	out := *r
	out.CRC = checksum(r.Records)
	if err := msgpack.NewEncoder(w).Encode(&out); err != nil {
		return errors.Wrap(err, "ghost: encode")
	}
	return nil
}

// Load reads a recording written by Save.
func Load(rd io.Reader) (*Recording, error) {
	var r Recording
	if err := msgpack.NewDecoder(rd).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "ghost: decode")
	}
	for i, rec := range r.Records {
		if rec.FrameDuration < 0 {
			return nil, errors.Errorf("ghost: record %d has negative duration %d", i, rec.FrameDuration)
		}
	}
	if c := checksum(r.Records); c != r.CRC {
		return nil, errors.Errorf("ghost: checksum %#04x, want %#04x", c, r.CRC)
	}
	return &r, nil
}
