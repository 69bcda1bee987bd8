// SPDX-License-Identifier: GPL-2.0-or-later

// Package commandline holds the flags of the gokart binary. Everything
// after a '+' is console text, run once the cvars are registered:
//
//	gokart -karts 2 +set kart_top_speed 700 +toggle developer
package commandline

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

var (
	developer bool
	jsonLog   bool
	mirror    bool
	realtime  bool
	watch     bool

	loopback = boolInt{false, 1}

	karts     int
	peerKarts int
	ticks     int
	seed      uint

	config    string
	course    string
	ghostFile string
	record    string
	listen    string
	peer      string
)

type boolInt struct {
	set bool
	num int
}

func (b *boolInt) IsBoolFlag() bool {
	// We can not support both "-flag" and "-flag 10"
	// This allows "-flag", and "-flag=10"
	// and also "-flag=true" and "-flag=false"
	// but not "-flag 10"
	return true
}

func (b *boolInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		v, err := strconv.ParseBool(s)
		b.set = v
		return err
	}
	b.set = true
	b.num = int(v)
	return nil
}

func (b *boolInt) String() string {
	return fmt.Sprintf("Set: %v, Num: %v", b.set, b.num)
}

func init() {
	flag.BoolVar(&developer, "developer", false, "enable debug logging")
	flag.BoolVar(&jsonLog, "json", false, "log as JSON")
	flag.BoolVar(&mirror, "mirror", false, "own the last -peerkarts karts and leave the others to -peer")
	flag.BoolVar(&realtime, "realtime", false, "pace ticks by the wall clock")
	flag.BoolVar(&watch, "watch", false, "reload -config when it changes")

	flag.Var(&loopback, "loopback", "replicate karts through an in-process peer, optional number of peer karts")

	flag.IntVar(&karts, "karts", 4, "karts in the race, 1 to 4")
	flag.IntVar(&peerKarts, "peerkarts", 1, "karts owned by -peer, counted from the last slot")
	flag.IntVar(&ticks, "ticks", 600, "ticks to run")
	flag.UintVar(&seed, "seed", 1, "seed of the computer drivers")

	flag.StringVar(&config, "config", "", "cvar YAML file")
	flag.StringVar(&course, "course", "", "course YAML file, empty for the built-in circuit")
	flag.StringVar(&ghostFile, "ghost", "", "ghost file driving kart 0")
	flag.StringVar(&record, "record", "", "write kart 0 as a ghost file")
	flag.StringVar(&listen, "listen", "", "local UDP address for -peer")
	flag.StringVar(&peer, "peer", "", "UDP address of the peer")
}

func Developer() bool    { return developer }
func JSONLog() bool      { return jsonLog }
func Mirror() bool       { return mirror }
func Realtime() bool     { return realtime }
func Watch() bool        { return watch }
func Loopback() bool     { return loopback.set }
func LoopbackNum() int   { return loopback.num }
func Karts() int         { return karts }
func PeerKarts() int     { return peerKarts }
func Ticks() int         { return ticks }
func Seed() uint32       { return uint32(seed) }
func Config() string     { return config }
func Course() string     { return course }
func Ghost() string      { return ghostFile }
func Record() string     { return record }
func ListenAddr() string { return listen }
func PeerAddr() string   { return peer }

// Scripts returns the console text of the '+' arguments in args. A command
// starts at '+' and runs until the next '+' or '-' argument.
//
//	+set kart_gravity 900 +developer 1 -ticks 60
//
// gives "set kart_gravity 900; developer 1".
func Scripts(args []string) string {
	var cmds []string
	plus := false
	for _, a := range args {
		if a == "" {
			continue
		}
		switch a[0] {
		case '+':
			cmds = append(cmds, a[1:])
			plus = true
		case '-':
			plus = false
		default:
			if plus {
				cmds[len(cmds)-1] += " " + a
			}
		}
	}
	return strings.Join(cmds, "; ")
}

// FlagArgs returns args without the '+' commands, for flag parsing.
func FlagArgs(args []string) []string {
	var out []string
	plus := false
	for _, a := range args {
		if a != "" {
			switch a[0] {
			case '+':
				plus = true
				continue
			case '-':
				plus = false
			}
		}
		if !plus {
			out = append(out, a)
		}
	}
	return out
}
