// SPDX-License-Identifier: GPL-2.0-or-later

// gokart runs a headless kart race: it loads a course and the cvar config,
// drives the karts with ghosts or seeded computer drivers and optionally
// replicates some of them through a peer.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"

	"gokart/alias"
	"gokart/authority"
	"gokart/cmd"
	"gokart/collision"
	"gokart/commandline"
	"gokart/conlog"
	"gokart/course"
	"gokart/cvar"
	"gokart/cvars"
	"gokart/gametime"
	"gokart/ghost"
	"gokart/kart"
	"gokart/race"
	"gokart/sptask"
)

func main() {
	// flag.CommandLine exits on a bad flag
	_ = flag.CommandLine.Parse(commandline.FlagArgs(os.Args[1:]))
	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx); err != nil {
		conlog.Logger().Error("gokart failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func setupLogging() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if commandline.Developer() {
		opts.Level = slog.LevelDebug
	}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if commandline.JSONLog() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	conlog.SetLogger(slog.New(h))
}

func run(ctx context.Context) error {
	reg := cvar.NewRegistry()
	phys := cvars.Register(reg)
	conlog.SetDeveloper(phys.Developer.Bool)
	if commandline.Developer() {
		phys.Developer.SetByString("1")
	}
	cmds := cmd.New()
	if err := reg.AddCommands(cmds); err != nil {
		return err
	}
	al := alias.New()
	if err := al.Register(cmds); err != nil {
		return err
	}
	buf := cmd.NewBuffer(cmds, reg.Execute)
	buf.AddExecutor(al.Execute(buf))

	if cfg := commandline.Config(); cfg != "" {
		if err := reg.LoadFile(cfg); err != nil {
			return err
		}
		if commandline.Watch() {
			w, err := cvar.Watch(cfg, reg)
			if err != nil {
				return err
			}
			defer w.Close()
		}
	}
	buf.AddText(commandline.Scripts(os.Args[1:]))
	if err := buf.Execute(); err != nil {
		return err
	}

	// The tuning is fixed for the race, later cvar changes apply to the
	// next one.
	tuning := phys.Tuning()
	c, m, err := loadCourse(commandline.Course(), tuning.RideHeight)
	if err != nil {
		return err
	}
	// every session gets its own coordinator
	options := func() []race.Option {
		opts := []race.Option{
			race.WithTuning(tuning),
			race.WithCoordinator(authority.NewCoordinator(int(phys.StaleTicks.Value()))),
		}
		if phys.ParallelTyres.Bool() {
			opts = append(opts, race.WithParallelTyres())
		}
		return opts
	}
	s, err := race.New(c, m, commandline.Karts(), options()...)
	if err != nil {
		return err
	}

	src, err := drivers(s.Karts())
	if err != nil {
		return err
	}
	var rec *ghost.Recorder
	if commandline.Record() != "" {
		rec = ghost.NewRecorder(c.Name, 0)
	}

	p, err := newPeer(c, m, s, options)
	if err != nil {
		return err
	}
	if p != nil {
		defer p.Close()
	}

	q := sptask.NewQueue(ctx, 1, 4, present)
	defer func() {
		if err := q.Close(); err != nil {
			conlog.Warnf("render queue: %v", err)
		}
	}()

	tick := float64(kart.TickDuration)
	gt := gametime.New(time.Duration(float64(time.Second) * tick))
	gt.SetTimeScale(float64(phys.HostTimeScale.Value()))
	gt.Reset()
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	start := time.Now()
	for int(s.Tick()) < commandline.Ticks() {
		due := 1
		if commandline.Realtime() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			due = gt.UpdateTime()
		}
		for range due {
			if int(s.Tick()) >= commandline.Ticks() {
				break
			}
			if err := buf.Execute(); err != nil {
				return err
			}
			in := race.Poll(src)
			if rec != nil {
				rec.Add(in[0])
			}
			snap, err := s.Step(ctx, in)
			if err != nil {
				return err
			}
			if p != nil {
				if err := p.Tick(ctx); err != nil {
					return err
				}
			}
			for _, a := range snap.Advisory {
				conlog.DPrintf("tick %d: %v", snap.Tick, a)
			}
			if err := q.Submit(ctx, sptask.NewTask(sptask.Gfx, snap)); err != nil {
				return err
			}
			if err := q.Submit(ctx, sptask.NewTask(sptask.Audio, snap.Events)); err != nil {
				return err
			}
		}
	}
	report(s, time.Since(start))

	if rec != nil {
		if err := saveGhost(commandline.Record(), rec.Recording()); err != nil {
			return err
		}
	}
	return nil
}

func loadCourse(path string, rideHeight float32) (*course.Course, *collision.Mesh, error) {
	var c *course.Course
	if path == "" {
		c = course.Circuit(rideHeight)
	} else {
		var err error
		if c, err = course.LoadFile(path); err != nil {
			return nil, nil, err
		}
	}
	m, err := c.Mesh()
	if err != nil {
		return nil, nil, err
	}
	return c, m, nil
}

// drivers returns one input source per kart: the -ghost file for kart 0 if
// given, seeded computer drivers otherwise.
func drivers(n int) ([4]race.InputSource, error) {
	var src [4]race.InputSource
	for i := range n {
		src[i] = race.NewNoiseDriver(commandline.Seed() + uint32(i))
	}
	if path := commandline.Ghost(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return src, errors.Wrap(err, "ghost")
		}
		defer f.Close()
		g, err := ghost.Load(f)
		if err != nil {
			return src, errors.Wrap(err, path)
		}
		conlog.Logger().Info("ghost loaded",
			slog.String("id", g.ID.String()),
			slog.String("course", g.Course),
			slog.Int("ticks", g.Ticks()))
		src[0] = ghost.NewReplay(g)
	}
	return src, nil
}

func saveGhost(path string, r *ghost.Recording) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "record")
	}
	if err := ghost.Save(f, r); err != nil {
		f.Close()
		return errors.Wrap(err, path)
	}
	return errors.Wrap(f.Close(), path)
}

func report(s *race.Session, took time.Duration) {
	l := conlog.Logger()
	for i := range s.Karts() {
		p := s.Player(i)
		l.Info("kart",
			slog.Int("slot", i),
			slog.String("mode", s.Mode(i).String()),
			slog.String("motion", p.Motion.String()),
			slog.Any("pos", p.Pos.Array()),
			slog.Float64("speed", float64(p.Speed)),
			slog.Int("section", int(p.NearestPathPointID)))
	}
	l.Info("race finished",
		slog.String("id", s.ID.String()),
		slog.Int("ticks", int(s.Tick())),
		slog.Duration("took", took),
		slog.Int64("desyncs", s.Coordinator().Desyncs()),
		slog.Int64("stale", s.Coordinator().StaleWarnings()))
}
