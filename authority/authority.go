// SPDX-License-Identifier: GPL-2.0-or-later

// Package authority decides which process owns each kart's physics and
// keeps replicated karts in step with their owners.
package authority

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"gokart/conlog"
	"gokart/kart"
	"gokart/math/vec"
	"gokart/protocol"
)

type Mode uint8

const (
	// Authoritative karts run the full integrator locally.
	Authoritative Mode = iota
	// Replicated karts take their state from the owning peer.
	Replicated
)

func (m Mode) String() string {
	if m == Replicated {
		return "replicated"
	}
	return "authoritative"
}

// Decide returns the mode for p. A kart this process has authority over is
// always simulated locally. Otherwise a network controlled kart is
// replicated and an offline kart is simulated.
func Decide(p *kart.Player, local kart.ControlFlags, hasAuthority bool) Mode {
	if hasAuthority {
		return Authoritative
	}
	if p.Net.ControlFlags.Has(kart.ControlNetwork) || local.Has(kart.ControlNetwork) {
		return Replicated
	}
	return Authoritative
}

// StaleReplicaWarning is advisory: a replicated kart has had no update for
// Ticks ticks and is coasting.
type StaleReplicaWarning struct {
	Slot  uint8
	Ticks int
}

func (w *StaleReplicaWarning) Error() string {
	return fmt.Sprintf("kart %d: no update for %d ticks", w.Slot, w.Ticks)
}

// DesyncDetected reports a peer that claims authority over a kart this
// process owns and disagrees about its state. Local state wins.
type DesyncDetected struct {
	Slot   uint8
	Tick   uint32
	Fields []string
}

func (d *DesyncDetected) Error() string {
	return fmt.Sprintf("kart %d: desync at tick %d in %v", d.Slot, d.Tick, d.Fields)
}

const (
	maxSlots = 4
	// Local states remembered per slot for Check.
	historyLen = 64
)

type history struct {
	states [historyLen]protocol.KartState
	valid  [historyLen]bool
}

func (h *history) put(s protocol.KartState) {
	i := s.Tick % historyLen
	h.states[i] = s
	h.valid[i] = true
}

func (h *history) get(tick uint32) (protocol.KartState, bool) {
	i := tick % historyLen
	if !h.valid[i] || h.states[i].Tick != tick {
		return protocol.KartState{}, false
	}
	return h.states[i], true
}

// Coordinator buffers peer updates and applies them at tick boundaries.
// Receive may be called from any goroutine; everything else belongs to the
// simulation goroutine.
type Coordinator struct {
	// StaleAfter is the number of ticks without an update after which a
	// replicated kart reports StaleReplicaWarning.
	StaleAfter int

	mu      sync.Mutex
	pending [maxSlots]*protocol.KartState

	tick     uint32
	fresh    [maxSlots]*protocol.KartState
	applied  [maxSlots]uint32
	stale    [maxSlots]int
	local    [maxSlots]history
	desyncs  atomic.Int64
	warnings atomic.Int64
}

func NewCoordinator(staleAfter int) *Coordinator {
	return &Coordinator{StaleAfter: staleAfter}
}

// Receive buffers s. Of several updates for one kart the newest tick wins,
// and updates older than the last applied one are dropped.
func (c *Coordinator) Receive(s protocol.KartState) {
	if int(s.Slot) >= maxSlots {
		conlog.DPrintf("authority: update for slot %d dropped", s.Slot)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if old := c.pending[s.Slot]; old != nil && old.Tick > s.Tick {
		return
	}
	c.pending[s.Slot] = &s
}

// BeginTick makes the buffered updates visible to Apply and Check.
func (c *Coordinator) BeginTick(tick uint32) {
	c.mu.Lock()
	p := c.pending
	c.pending = [maxSlots]*protocol.KartState{}
	c.mu.Unlock()

	c.tick = tick
	for i, s := range p {
		if s != nil && s.Tick < c.applied[i] {
			s = nil
		}
		c.fresh[i] = s
	}
}

// Apply updates a replicated kart. With a fresh update the state is copied
// verbatim. Without one the kart coasts on its last velocity, and once that
// lasted StaleAfter ticks a *StaleReplicaWarning is returned.
func (c *Coordinator) Apply(p *kart.Player) error {
	slot := p.Slot
	if int(slot) >= maxSlots {
		return nil
	}
	if s := c.fresh[slot]; s != nil {
		s.ApplyTo(p)
		c.applied[slot] = s.Tick
		c.fresh[slot] = nil
		c.stale[slot] = 0
		return nil
	}

	p.OldPos = p.Pos
	p.Pos = vec.MulAdd(p.Pos, p.Velocity, kart.TickDuration)
	c.stale[slot]++
	if c.StaleAfter <= 0 || c.stale[slot] < c.StaleAfter {
		return nil
	}
	if c.stale[slot] == c.StaleAfter {
		conlog.Logger().Warn("replica stale",
			slog.Int("slot", int(slot)),
			slog.Int("ticks", c.stale[slot]),
			slog.Uint64("tick", uint64(c.tick)))
	}
	c.warnings.Add(1)
	return &StaleReplicaWarning{Slot: slot, Ticks: c.stale[slot]}
}

// Check records the local state of an authoritative kart and compares it
// with any peer update claiming authority over the same kart. A mismatch
// returns *DesyncDetected; p is never changed.
func (c *Coordinator) Check(p *kart.Player) error {
	slot := p.Slot
	if int(slot) >= maxSlots {
		return nil
	}
	h := &c.local[slot]
	h.put(protocol.FromPlayer(p, c.tick))

	s := c.fresh[slot]
	c.fresh[slot] = nil
	if s == nil || !s.HasAuthority {
		return nil
	}
	mine, ok := h.get(s.Tick)
	if !ok {
		conlog.DPrintf("authority: claim for kart %d at tick %d is outside history", slot, s.Tick)
		return nil
	}
	fields := protocol.Diff(&mine, s)
	if len(fields) == 0 {
		return nil
	}
	c.desyncs.Add(1)
	conlog.Logger().Error("desync",
		slog.Int("slot", int(slot)),
		slog.Uint64("tick", uint64(s.Tick)),
		slog.Any("fields", fields))
	return &DesyncDetected{Slot: slot, Tick: s.Tick, Fields: fields}
}

// Desyncs is the number of DesyncDetected reported so far.
func (c *Coordinator) Desyncs() int64 {
	return c.desyncs.Load()
}

// StaleWarnings is the number of StaleReplicaWarning reported so far.
func (c *Coordinator) StaleWarnings() int64 {
	return c.warnings.Load()
}
