// SPDX-License-Identifier: GPL-2.0-or-later

package race

import (
	"github.com/pkg/errors"

	"gokart/conlog"
	"gokart/net"
	"gokart/protocol"
)

// Transport carries datagrams to one peer. *net.Conn is one.
type Transport interface {
	SendUnreliable(data []byte) error
	// Receive returns nil, nil when nothing is waiting.
	Receive() ([]byte, error)
}

// Link replicates the karts a session owns to a peer and hands the peer's
// updates to the session. States go out as a full keyframe every KeyEvery
// ticks and as deltas against the last keyframe in between, so a lost
// datagram costs at most one keyframe interval.
type Link struct {
	KeyEvery uint32

	t    Transport
	sent [MaxKarts]*protocol.KartState
	recv [MaxKarts]*protocol.KartState
	buf  []byte
}

func NewLink(t Transport) *Link {
	return &Link{KeyEvery: 30, t: t}
}

// Send publishes the current state of every kart s has authority over.
// A full send buffer drops the datagram.
func (l *Link) Send(s *Session) error {
	for slot := range s.Karts() {
		p := s.Player(slot)
		if !p.Net.HasAuthority {
			continue
		}
		st := s.State(slot)
		key := l.sent[slot]
		if key == nil || st.Tick-key.Tick >= l.KeyEvery || st.Tick < key.Tick {
			l.buf = protocol.EncodeFull(l.buf[:0], &st)
			l.sent[slot] = &st
		} else {
			l.buf = protocol.EncodeDelta(l.buf[:0], key, &st)
		}
		if err := l.t.SendUnreliable(l.buf); err != nil {
			if errors.Is(err, net.ErrBufferFull) {
				conlog.DPrintf("link: kart %d update dropped", slot)
				continue
			}
			return errors.Wrapf(err, "link: send kart %d", slot)
		}
	}
	return nil
}

// Pump reads every waiting datagram and passes the decoded states to s.
// It never blocks. Broken datagrams are logged and skipped.
func (l *Link) Pump(s *Session) (int, error) {
	n := 0
	for {
		b, err := l.t.Receive()
		if err != nil {
			return n, errors.Wrap(err, "link: receive")
		}
		if b == nil {
			return n, nil
		}
		h, err := protocol.Peek(b)
		if err != nil {
			conlog.Warnf("link: %v", err)
			continue
		}
		if int(h.Slot) >= MaxKarts {
			continue
		}
		st, err := protocol.Decode(b, l.recv[h.Slot])
		if err != nil {
			var bm *protocol.BaseMismatchError
			if errors.As(err, &bm) {
				conlog.DPrintf("link: kart %d waits for a keyframe: %v", h.Slot, err)
			} else {
				conlog.Warnf("link: %v", err)
			}
			continue
		}
		if h.Kind == protocol.KindFull {
			key := st
			l.recv[h.Slot] = &key
		}
		s.Receive(st)
		n++
	}
}
