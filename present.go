// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"gokart/conlog"
	"gokart/kart"
	"gokart/race"
	"gokart/sptask"
)

// present stands in for the display and audio tasks of a renderer: it
// logs what a frame would show at debug level.
func present(_ context.Context, t *sptask.Task) error {
	l := conlog.Logger()
	switch d := t.Data.(type) {
	case race.Snapshot:
		for _, k := range d.Karts {
			l.Debug("frame",
				slog.Uint64("tick", uint64(d.Tick)),
				slog.Int("slot", int(k.Slot)),
				slog.String("mode", k.Mode.String()),
				slog.Any("pos", k.Pos.Array()),
				slog.String("motion", k.Motion.String()),
				slog.String("drift", k.Drift.String()))
		}
	case []kart.StepEvents:
		for slot, ev := range d {
			for _, cue := range cues(ev) {
				l.Debug("sound", slog.Int("slot", slot), slog.String("cue", cue))
			}
		}
	default:
		return errors.Errorf("unknown task data %T", t.Data)
	}
	return nil
}

func cues(ev kart.StepEvents) []string {
	var out []string
	if ev.SurfaceChanged {
		out = append(out, "surface "+ev.Surface.String())
	}
	for _, c := range []struct {
		on   bool
		name string
	}{
		{ev.Landed, "land"},
		{ev.HopStarted, "hop"},
		{ev.WallHit, "wall"},
		{ev.Tumbled, "tumble"},
		{ev.OutOfBounds, "fall"},
		{ev.Recovered, "lakitu"},
		{ev.Boost > 0, "boost"},
	} {
		if c.on {
			out = append(out, c.name)
		}
	}
	return out
}
