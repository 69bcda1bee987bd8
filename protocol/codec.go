// SPDX-License-Identifier: GPL-2.0-or-later

package protocol

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"gokart/kart"
	"gokart/surface"
)

// Header fields. State fields start at firstField.
const (
	fieldVersion = 1
	fieldKind    = 2
	fieldBase    = 3
	firstField   = 8
)

type fieldKindT int

const (
	varint fieldKindT = iota
	fixed32
)

// field describes one KartState member on the wire. Values travel as raw
// bits so a delta can compare them exactly.
type field struct {
	num  protowire.Number
	name string
	kind fieldKindT
	get  func(*KartState) uint64
	set  func(*KartState, uint64)
}

func f32(name string, p func(*KartState) *float32) field {
	return field{
		name: name,
		kind: fixed32,
		get:  func(s *KartState) uint64 { return uint64(math.Float32bits(*p(s))) },
		set:  func(s *KartState, v uint64) { *p(s) = math.Float32frombits(uint32(v)) },
	}
}

func sint(name string, get func(*KartState) int64, set func(*KartState, int64)) field {
	return field{
		name: name,
		kind: varint,
		get:  func(s *KartState) uint64 { return protowire.EncodeZigZag(get(s)) },
		set:  func(s *KartState, v uint64) { set(s, protowire.DecodeZigZag(v)) },
	}
}

func unsigned(name string, get func(*KartState) uint64, set func(*KartState, uint64)) field {
	return field{name: name, kind: varint, get: get, set: set}
}

var fields = func() []field {
	fs := []field{
		unsigned("slot",
			func(s *KartState) uint64 { return uint64(s.Slot) },
			func(s *KartState, v uint64) { s.Slot = uint8(v) }),
		unsigned("tick",
			func(s *KartState) uint64 { return uint64(s.Tick) },
			func(s *KartState, v uint64) { s.Tick = uint32(v) }),
		f32("pos.x", func(s *KartState) *float32 { return &s.Pos.X }),
		f32("pos.y", func(s *KartState) *float32 { return &s.Pos.Y }),
		f32("pos.z", func(s *KartState) *float32 { return &s.Pos.Z }),
		f32("velocity.x", func(s *KartState) *float32 { return &s.Velocity.X }),
		f32("velocity.y", func(s *KartState) *float32 { return &s.Velocity.Y }),
		f32("velocity.z", func(s *KartState) *float32 { return &s.Velocity.Z }),
		sint("rotation.x",
			func(s *KartState) int64 { return int64(s.Rotation[0]) },
			func(s *KartState, v int64) { s.Rotation[0] = int16(v) }),
		sint("rotation.y",
			func(s *KartState) int64 { return int64(s.Rotation[1]) },
			func(s *KartState, v int64) { s.Rotation[1] = int16(v) }),
		sint("rotation.z",
			func(s *KartState) int64 { return int64(s.Rotation[2]) },
			func(s *KartState, v int64) { s.Rotation[2] = int16(v) }),
		f32("speed", func(s *KartState) *float32 { return &s.Speed }),
		unsigned("motion",
			func(s *KartState) uint64 { return uint64(s.Motion) },
			func(s *KartState, v uint64) { s.Motion = kart.Motion(v) }),
		unsigned("surface",
			func(s *KartState) uint64 { return uint64(s.Surface) },
			func(s *KartState, v uint64) { s.Surface = surface.Type(v) }),
		unsigned("drift",
			func(s *KartState) uint64 { return uint64(s.Drift) },
			func(s *KartState, v uint64) { s.Drift = kart.DriftState(v) }),
		f32("drift_direction", func(s *KartState) *float32 { return &s.DriftDirection }),
		unsigned("drift_duration",
			func(s *KartState) uint64 { return uint64(s.DriftDuration) },
			func(s *KartState, v uint64) { s.DriftDuration = uint16(v) }),
		sint("drift_charge",
			func(s *KartState) int64 { return int64(s.DriftCharge) },
			func(s *KartState, v int64) { s.DriftCharge = int32(v) }),
		sint("boost_timer",
			func(s *KartState) int64 { return int64(s.BoostTimer) },
			func(s *KartState, v int64) { s.BoostTimer = int32(v) }),
		f32("boost_power", func(s *KartState) *float32 { return &s.BoostPower }),
		f32("hop_offset", func(s *KartState) *float32 { return &s.HopOffset }),
		f32("hop_velocity", func(s *KartState) *float32 { return &s.HopVelocity }),
		f32("hop_acceleration", func(s *KartState) *float32 { return &s.HopAcceleration }),
		f32("hop_jerk", func(s *KartState) *float32 { return &s.HopJerk }),
		sint("hop_frame_counter",
			func(s *KartState) int64 { return int64(s.HopFrameCounter) },
			func(s *KartState, v int64) { s.HopFrameCounter = int32(v) }),
		f32("hop_base", func(s *KartState) *float32 { return &s.HopBase }),
		sint("recovery_timer",
			func(s *KartState) int64 { return int64(s.RecoveryTimer) },
			func(s *KartState, v int64) { s.RecoveryTimer = int32(v) }),
		unsigned("control_flags",
			func(s *KartState) uint64 { return uint64(s.ControlFlags) },
			func(s *KartState, v uint64) { s.ControlFlags = kart.ControlFlags(v) }),
		unsigned("has_authority",
			func(s *KartState) uint64 {
				if s.HasAuthority {
					return 1
				}
				return 0
			},
			func(s *KartState, v uint64) { s.HasAuthority = v != 0 }),
	}
	for i := range fs {
		fs[i].num = protowire.Number(firstField + i)
	}
	return fs
}()

var byNumber = func() map[protowire.Number]*field {
	m := make(map[protowire.Number]*field, len(fields))
	for i := range fields {
		m[fields[i].num] = &fields[i]
	}
	return m
}()

func appendField(b []byte, f *field, v uint64) []byte {
	switch f.kind {
	case fixed32:
		b = protowire.AppendTag(b, f.num, protowire.Fixed32Type)
		return protowire.AppendFixed32(b, uint32(v))
	default:
		b = protowire.AppendTag(b, f.num, protowire.VarintType)
		return protowire.AppendVarint(b, v)
	}
}

func appendHeader(b []byte, kind int, base uint32) []byte {
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(kind))
	if kind == KindDelta {
		b = protowire.AppendTag(b, fieldBase, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(base))
	}
	return b
}

// EncodeFull appends the complete state to b.
func EncodeFull(b []byte, s *KartState) []byte {
	b = appendHeader(b, KindFull, 0)
	for i := range fields {
		b = appendField(b, &fields[i], fields[i].get(s))
	}
	return b
}

// EncodeDelta appends only the fields of s that differ from base. The
// receiver needs base to rebuild s. Slot and tick are always written.
func EncodeDelta(b []byte, base, s *KartState) []byte {
	b = appendHeader(b, KindDelta, base.Tick)
	for i := range fields {
		f := &fields[i]
		v := f.get(s)
		if f.name != "slot" && f.name != "tick" && v == f.get(base) {
			continue
		}
		b = appendField(b, f, v)
	}
	return b
}

// DecodeError is returned for messages that cannot be read.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "protocol: " + e.Reason
}

// BaseMismatchError is returned when a delta was built against a different
// state than the one offered to Decode.
type BaseMismatchError struct {
	Want, Have uint32
}

func (e *BaseMismatchError) Error() string {
	return fmt.Sprintf("protocol: delta against tick %d, have %d", e.Want, e.Have)
}

// Decode reads one message. Delta messages are applied on top of base,
// which may be nil for full messages. Unknown fields are skipped.
func Decode(b []byte, base *KartState) (KartState, error) {
	var (
		s        KartState
		kind     = -1
		baseTick uint32
		version  uint64
		started  bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return KartState{}, errors.Wrap(protowire.ParseError(n), "protocol: tag")
		}
		b = b[n:]
		if num >= firstField && !started {
			// Header is complete once the first state field shows up.
			if version != Version {
				return KartState{}, &DecodeError{Reason: fmt.Sprintf("unsupported version %d", version)}
			}
			switch kind {
			case KindFull:
			case KindDelta:
				if base == nil {
					return KartState{}, &BaseMismatchError{Want: baseTick}
				}
				if base.Tick != baseTick {
					return KartState{}, &BaseMismatchError{Want: baseTick, Have: base.Tick}
				}
				s = *base
			default:
				return KartState{}, &DecodeError{Reason: "missing message kind"}
			}
			started = true
		}
		var v uint64
		switch typ {
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var u uint32
			u, n = protowire.ConsumeFixed32(b)
			v = uint64(u)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return KartState{}, errors.Wrapf(protowire.ParseError(n), "protocol: field %d", num)
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return KartState{}, errors.Wrapf(protowire.ParseError(n), "protocol: field %d", num)
		}
		b = b[n:]
		switch num {
		case fieldVersion:
			version = v
		case fieldKind:
			kind = int(v)
		case fieldBase:
			baseTick = uint32(v)
		default:
			f, ok := byNumber[num]
			if !ok {
				continue
			}
			wantType := protowire.VarintType
			if f.kind == fixed32 {
				wantType = protowire.Fixed32Type
			}
			if typ != wantType {
				return KartState{}, &DecodeError{Reason: "wrong wire type for " + f.name}
			}
			f.set(&s, v)
		}
	}
	if !started {
		return KartState{}, &DecodeError{Reason: "no state fields"}
	}
	return s, nil
}

// Diff lists the names of the fields that differ between a and b. Floats
// are compared by bits. Tick, control flags and the authority claim are
// skipped.
func Diff(a, b *KartState) []string {
	var out []string
	for i := range fields {
		f := &fields[i]
		switch f.name {
		case "tick", "control_flags", "has_authority":
			continue
		}
		if f.get(a) != f.get(b) {
			out = append(out, f.name)
		}
	}
	return out
}

// Header is the routing part of a message.
type Header struct {
	Kind int
	// Base is the tick a delta was built against.
	Base uint32
	Slot uint8
}

// Peek reads the header and slot of a message without decoding the state,
// so the receiver can pick the right base for Decode.
func Peek(b []byte) (Header, error) {
	h := Header{Kind: -1}
	slot := false
	for len(b) > 0 && !slot {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Header{}, errors.Wrap(protowire.ParseError(n), "protocol: tag")
		}
		b = b[n:]
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return Header{}, errors.Wrapf(protowire.ParseError(n), "protocol: field %d", num)
		}
		if typ == protowire.VarintType {
			v, _ := protowire.ConsumeVarint(b)
			switch num {
			case fieldKind:
				h.Kind = int(v)
			case fieldBase:
				h.Base = uint32(v)
			case firstField:
				h.Slot = uint8(v)
				slot = true
			}
		}
		b = b[n:]
	}
	if h.Kind != KindFull && h.Kind != KindDelta {
		return Header{}, &DecodeError{Reason: "missing message kind"}
	}
	if !slot {
		return Header{}, &DecodeError{Reason: "missing slot"}
	}
	return h, nil
}
