// SPDX-License-Identifier: GPL-2.0-or-later

// Package race owns one running race: the course mesh, the karts, the
// authority coordinator and the tick counter. There is no global state;
// every tick goes through a Session.
package race

import (
	"context"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gokart/authority"
	"gokart/collision"
	"gokart/conlog"
	"gokart/course"
	"gokart/kart"
	"gokart/math/vec"
	"gokart/protocol"
	"gokart/surface"
)

// MaxKarts is the number of kart slots of a race.
const MaxKarts = 4

// Option configures a Session.
type Option func(*Session)

// WithParallelTyres resolves the four tyre contacts of a kart on separate
// goroutines.
func WithParallelTyres() Option {
	return func(s *Session) {
		s.ground = parallelGround{m: s.mesh}
	}
}

// WithTuning replaces the default kart tuning.
func WithTuning(t kart.Tuning) Option {
	return func(s *Session) {
		s.tuning = t
	}
}

// WithCoordinator uses c instead of a fresh coordinator.
func WithCoordinator(c *authority.Coordinator) Option {
	return func(s *Session) {
		s.coord = c
	}
}

// WithLocalControl sets the control flags of this process.
func WithLocalControl(f kart.ControlFlags) Option {
	return func(s *Session) {
		s.local = f
	}
}

// KartView is the read-only per-tick view of a kart for renderers.
type KartView struct {
	Slot        uint8
	Mode        authority.Mode
	Pos         vec.Vec3
	Velocity    vec.Vec3
	Rotation    [3]int16
	Orientation mgl32.Mat3
	Speed       float32
	Motion      kart.Motion
	Drift       kart.DriftState
	Surface     surface.Type
	Section     int32
	BoostTimer  int
	HopOffset   float32
	Tyres       [4]vec.Vec3
	Light       [4]float32
	// per tyre wheel frame and surface group
	AnimFrame   [4]uint16
	AnimGroup   [4]uint16
}

func view(p *kart.Player, m authority.Mode) KartView {
	v := KartView{
		Slot:        p.Slot,
		Mode:        m,
		Pos:         p.Pos,
		Velocity:    p.Velocity,
		Rotation:    p.Rotation,
		Orientation: p.Orientation,
		Speed:       p.Speed,
		Motion:      p.Motion,
		Drift:       p.Drift,
		Surface:     p.SurfaceType,
		Section:     p.NearestPathPointID,
		BoostTimer:  p.BoostTimer,
		HopOffset:   p.HopOffset,
		AnimFrame:   p.AnimFrameSelector,
		AnimGroup:   p.AnimGroupSelector,
	}
	for i, t := range p.Tyres {
		v.Tyres[i] = t.Pos
		v.Light[i] = t.Light
	}
	return v
}

// Snapshot is the result of one tick.
type Snapshot struct {
	Tick   uint32
	Karts  []KartView
	Events []kart.StepEvents
	// Advisory holds stale replica warnings and detected desyncs of this
	// tick. None of them stop the race.
	Advisory []error
}

// Session is one race.
type Session struct {
	ID uuid.UUID

	course *course.Course
	mesh   *collision.Mesh
	ground kart.Ground
	tuning kart.Tuning
	coord  *authority.Coordinator
	local  kart.ControlFlags

	karts []kart.Player
	tick  uint32
}

// New sets up a race of n karts on the starting grid of c. m must be the
// mesh built from c.
func New(c *course.Course, m *collision.Mesh, n int, opts ...Option) (*Session, error) {
	if c == nil || m == nil {
		return nil, errors.New("race: course and mesh are required")
	}
	if n < 1 || n > MaxKarts {
		return nil, errors.Errorf("race: %d karts, want 1 to %d", n, MaxKarts)
	}
	if len(c.Starts) < n {
		return nil, errors.Errorf("race: course %q has %d starts for %d karts", c.Name, len(c.Starts), n)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "race: id")
	}
	s := &Session{
		ID:     id,
		course: c,
		mesh:   m,
		ground: kart.MeshGround{M: m},
		tuning: kart.DefaultTuning(),
		local:  kart.ControlHuman,
	}
	for _, o := range opts {
		o(s)
	}
	if s.coord == nil {
		s.coord = authority.NewCoordinator(30)
	}
	s.karts = make([]kart.Player, n)
	for i := range s.karts {
		st := c.Starts[i]
		s.karts[i] = kart.NewPlayer(uint8(i), st.Pos, st.Yaw, &s.tuning)
	}
	conlog.Logger().Info("race created",
		slog.String("id", s.ID.String()),
		slog.String("course", c.Name),
		slog.Int("karts", n),
		slog.Int("triangles", len(m.Tris)))
	return s, nil
}

func (s *Session) Tick() uint32           { return s.tick }
func (s *Session) Tuning() kart.Tuning    { return s.tuning }
func (s *Session) Mesh() *collision.Mesh  { return s.mesh }
func (s *Session) Course() *course.Course { return s.course }
func (s *Session) Karts() int             { return len(s.karts) }

// Coordinator returns the authority coordinator of the race.
func (s *Session) Coordinator() *authority.Coordinator {
	return s.coord
}

// Player returns a copy of the kart in slot.
func (s *Session) Player(slot int) kart.Player {
	return s.karts[slot]
}

// SetNet changes who controls the kart in slot. Only call it between
// ticks.
func (s *Session) SetNet(slot int, n kart.Net) {
	s.karts[slot].Net = n
}

// State is the replicated state of the kart in slot at the current tick.
func (s *Session) State(slot int) protocol.KartState {
	return protocol.FromPlayer(&s.karts[slot], s.tick)
}

// Receive hands a peer update to the coordinator. Safe from any goroutine.
func (s *Session) Receive(st protocol.KartState) {
	s.coord.Receive(st)
}

// Mode is the authority mode of the kart in slot.
func (s *Session) Mode(slot int) authority.Mode {
	p := &s.karts[slot]
	return authority.Decide(p, s.local, p.Net.HasAuthority)
}

// Step advances the race by one tick. Authoritative karts are integrated
// first, each on a copy; replicated karts take peer updates afterwards. The
// karts are only written back once every slot finished, so on error the
// session is unchanged and Step can be retried.
func (s *Session) Step(ctx context.Context, in [MaxKarts]kart.Input) (Snapshot, error) {
	next := make([]kart.Player, len(s.karts))
	copy(next, s.karts)
	modes := make([]authority.Mode, len(next))
	events := make([]kart.StepEvents, len(next))

	for i := range next {
		p := &next[i]
		modes[i] = authority.Decide(p, s.local, p.Net.HasAuthority)
		if modes[i] != authority.Authoritative {
			continue
		}
		ev, err := kart.Step(ctx, p, in[i], s.ground, &s.tuning)
		if err != nil {
			return Snapshot{}, errors.Wrapf(err, "race: tick %d kart %d", s.tick+1, i)
		}
		events[i] = ev
		if sec := s.course.SectionOf(p.Collision.MeshIndexZX); sec != course.NoSection {
			p.NearestPathPointID = sec
		}
	}

	tick := s.tick + 1
	s.coord.BeginTick(tick)
	snap := Snapshot{Tick: tick, Events: events}
	for i := range next {
		p := &next[i]
		var err error
		if modes[i] == authority.Replicated {
			err = s.coord.Apply(p)
			p.PlaceTyres(&s.tuning)
		} else {
			err = s.coord.Check(p)
		}
		if err != nil {
			snap.Advisory = append(snap.Advisory, err)
		}
	}

	s.karts = next
	s.tick = tick
	snap.Karts = make([]KartView, len(next))
	for i := range next {
		snap.Karts[i] = view(&next[i], modes[i])
	}
	return snap, nil
}
