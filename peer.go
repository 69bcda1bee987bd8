// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"gokart/collision"
	"gokart/commandline"
	"gokart/conlog"
	"gokart/course"
	"gokart/kart"
	"gokart/net"
	"gokart/race"
)

// peer replicates part of the race. With -loopback the peer is a second
// session in this process, with -peer it is another process over UDP.
type peer struct {
	local *race.Session
	link  *race.Link
	conn  *net.Conn

	// loopback only
	remote *race.Session
	rlink  *race.Link
	rconn  *net.Conn
	src    [4]race.InputSource
}

// handOver makes the karts in [from, to) of s network controlled.
func handOver(s *race.Session, from, to int) {
	for i := from; i < to; i++ {
		s.SetNet(i, kart.Net{ControlFlags: kart.ControlNetwork, StartingRank: uint8(i)})
	}
}

func split(karts, peerKarts int) (int, error) {
	if peerKarts < 1 || peerKarts >= karts {
		return 0, errors.Errorf("peer: %d of %d karts, want 1 to %d", peerKarts, karts, karts-1)
	}
	return karts - peerKarts, nil
}

func newPeer(c *course.Course, m *collision.Mesh, s *race.Session, options func() []race.Option) (*peer, error) {
	switch {
	case commandline.Loopback():
		first, err := split(s.Karts(), commandline.LoopbackNum())
		if err != nil {
			return nil, err
		}
		remote, err := race.New(c, m, s.Karts(), options()...)
		if err != nil {
			return nil, err
		}
		handOver(s, first, s.Karts())
		handOver(remote, 0, first)
		a, b := net.Loopback()
		p := &peer{
			local:  s,
			link:   race.NewLink(a),
			conn:   a,
			remote: remote,
			rlink:  race.NewLink(b),
			rconn:  b,
		}
		for i := first; i < s.Karts(); i++ {
			p.src[i] = race.NewNoiseDriver(commandline.Seed() + 100 + uint32(i))
		}
		conlog.Logger().Info("loopback peer",
			slog.String("id", b.ID().String()),
			slog.Int("karts", s.Karts()-first))
		return p, nil

	case commandline.PeerAddr() != "":
		first, err := split(s.Karts(), commandline.PeerKarts())
		if err != nil {
			return nil, err
		}
		if commandline.Mirror() {
			handOver(s, 0, first)
		} else {
			handOver(s, first, s.Karts())
		}
		conn, err := net.DialUDP(commandline.ListenAddr(), commandline.PeerAddr())
		if err != nil {
			return nil, err
		}
		conlog.Logger().Info("udp peer",
			slog.String("addr", conn.Address()),
			slog.String("id", conn.ID().String()))
		return &peer{local: s, link: race.NewLink(conn), conn: conn}, nil
	}
	return nil, nil
}

// Tick exchanges one tick of state. The local session has already
// stepped; a loopback peer steps its own session here.
func (p *peer) Tick(ctx context.Context) error {
	if p.remote != nil {
		if _, err := p.remote.Step(ctx, race.Poll(p.src)); err != nil {
			return errors.Wrap(err, "loopback peer")
		}
		if err := p.rlink.Send(p.remote); err != nil {
			return err
		}
	}
	if err := p.link.Send(p.local); err != nil {
		return err
	}
	if _, err := p.link.Pump(p.local); err != nil {
		return err
	}
	if p.remote != nil {
		if _, err := p.rlink.Pump(p.remote); err != nil {
			return err
		}
	}
	return nil
}

func (p *peer) Close() {
	p.conn.Close()
	if p.rconn != nil {
		p.rconn.Close()
	}
}
