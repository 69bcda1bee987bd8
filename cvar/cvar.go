// SPDX-License-Identifier: GPL-2.0-or-later

// Package cvar holds named console variables. The string value is the
// truth, the float value is derived from it.
package cvar

import (
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"gokart/cmd"
	"gokart/conlog"
)

type flag uint64

const (
	// cvar flags bitfield
	NONE    flag = 0
	ARCHIVE flag = 1
	NOTIFY  flag = 1 << 1
	ROM     flag = 1 << 6
)

type CallbackFunc func(cv *Cvar)

type Cvar struct {
	mu       sync.RWMutex
	archive  bool
	notify   bool
	rom      bool
	user     bool
	callback CallbackFunc
	name     string
	// stringValue is the truth, value the derived one
	stringValue  string
	value        float32
	defaultValue string
	id           int
}

func (cv *Cvar) Archive() bool     { return cv.archive }
func (cv *Cvar) Notify() bool      { return cv.notify }
func (cv *Cvar) UserDefined() bool { return cv.user }
func (cv *Cvar) ID() int           { return cv.id }
func (cv *Cvar) Name() string      { return cv.name }

func (cv *Cvar) SetCallback(cb CallbackFunc) {
	cv.callback = cb
}

// SetByString sets the value. ROM cvars ignore it.
func (cv *Cvar) SetByString(s string) {
	if cv.rom {
		return
	}
	cv.set(s)
}

func (cv *Cvar) set(s string) {
	pf, _ := strconv.ParseFloat(strings.TrimSpace(s), 32)
	cv.mu.Lock()
	changed := cv.stringValue != s
	cv.stringValue = s
	cv.value = float32(pf)
	cv.mu.Unlock()
	if changed && cv.notify {
		conlog.Printf("\"%s\" changed to \"%s\"\n", cv.name, s)
	}
	if cv.callback != nil {
		cv.callback(cv)
	}
}

func (cv *Cvar) Reset() {
	cv.SetByString(cv.defaultValue)
}

func (cv *Cvar) String() string {
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	return cv.stringValue
}

func (cv *Cvar) Value() float32 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	return cv.value
}

func (cv *Cvar) SetValue(value float32) {
	if float32(int(value)) == value {
		cv.SetByString(strconv.FormatInt(int64(value), 10))
	} else {
		cv.SetByString(strconv.FormatFloat(float64(value), 'f', -1, 32))
	}
}

func (cv *Cvar) Toggle() {
	if cv.String() == "1" {
		cv.SetByString("0")
	} else {
		cv.SetByString("1")
	}
}

func (cv *Cvar) Bool() bool {
	s := cv.String()
	return s != "0" && s != ""
}

// Registry owns a set of cvars. Lookups are safe for concurrent use; the
// config watcher writes from its own goroutine.
type Registry struct {
	mu     sync.RWMutex
	all    []*Cvar
	byName map[string]*Cvar
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Cvar)}
}

func (r *Registry) All() []*Cvar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Cvar(nil), r.all...)
}

func (r *Registry) Get(name string) (*Cvar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cv, ok := r.byName[strings.ToLower(name)]
	return cv, ok
}

func (r *Registry) create(name, value string) *Cvar {
	cv := &Cvar{name: name, defaultValue: value}
	cv.set(value)
	cv.id = len(r.all)
	r.all = append(r.all, cv)
	r.byName[strings.ToLower(name)] = cv
	return cv
}

func (r *Registry) Register(name, value string, flags flag) (*Cvar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[strings.ToLower(name)]; ok {
		return nil, errors.Errorf("can't register variable %s, already defined", name)
	}
	cv := r.create(name, value)
	cv.archive = flags&ARCHIVE != 0
	cv.notify = flags&NOTIFY != 0
	cv.rom = flags&ROM != 0
	return cv, nil
}

func (r *Registry) MustRegister(n, v string, flag flag) *Cvar {
	cv, err := r.Register(n, v, flag)
	if err != nil {
		panic(err)
	}
	return cv
}

// Execute handles a bare cvar name (print it) or "name value" (set it).
// It is a cmd.Executor.
func (r *Registry) Execute(a cmd.Arguments) (bool, error) {
	args := a.Args()
	if len(args) == 0 {
		return false, nil
	}
	cv, ok := r.Get(args[0].String())
	if !ok {
		return false, nil
	}
	if len(args) == 1 {
		conlog.SafePrintf("\"%s\" is \"%s\"\n", cv.Name(), cv.String())
		return true, nil
	}
	cv.SetByString(args[1].String())
	return true, nil
}

// AddCommands registers the cvar console commands on c.
func (r *Registry) AddCommands(c *cmd.Commands) error {
	for _, e := range []struct {
		name string
		f    cmd.Func
	}{
		{"cvarlist", r.list},
		{"cycle", r.cycle},
		{"inc", r.inc},
		{"reset", r.reset},
		{"resetall", r.resetAll},
		{"set", r.set(c)},
		{"toggle", r.toggle},
	} {
		if err := c.Add(e.name, e.f); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) set(c *cmd.Commands) cmd.Func {
	return func(a cmd.Arguments) error {
		args := a.Args()[1:]
		if len(args) < 2 {
			conlog.SafePrintf("set <cvar> <value>\n")
			return nil
		}
		name := args[0].String()
		if c.Exists(name) {
			conlog.Printf("%s: conflict with command\n", name)
			return nil
		}
		if cv, ok := r.Get(name); ok {
			cv.SetByString(args[1].String())
			return nil
		}
		r.mu.Lock()
		cv := r.create(name, args[1].String())
		cv.user = true
		r.mu.Unlock()
		return nil
	}
}

func (r *Registry) toggle(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) != 1 {
		conlog.SafePrintf("toggle <cvar> : toggle cvar\n")
		return nil
	}
	if cv, ok := r.Get(args[0].String()); ok {
		cv.Toggle()
	} else {
		conlog.Printf("toggle: variable %v not found\n", args[0].String())
	}
	return nil
}

func (r *Registry) incr(n string, v float32) {
	if cv, ok := r.Get(n); ok {
		cv.SetValue(cv.Value() + v)
	} else {
		conlog.Printf("inc: variable %v not found\n", n)
	}
}

func (r *Registry) inc(a cmd.Arguments) error {
	args := a.Args()[1:]
	switch len(args) {
	case 1:
		r.incr(args[0].String(), 1)
	case 2:
		r.incr(args[0].String(), args[1].Float32())
	default:
		conlog.SafePrintf("inc <cvar> [amount] : increment cvar\n")
	}
	return nil
}

func (r *Registry) reset(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) != 1 {
		conlog.SafePrintf("reset <cvar> : reset cvar to default\n")
		return nil
	}
	if cv, ok := r.Get(args[0].String()); ok {
		cv.Reset()
	} else {
		conlog.Printf("reset: variable %v not found\n", args[0].String())
	}
	return nil
}

func (r *Registry) resetAll(_ cmd.Arguments) error {
	for _, cv := range r.All() {
		cv.Reset()
	}
	return nil
}

func (r *Registry) list(a cmd.Arguments) error {
	part := a.Argv(1).String()
	n := 0
	for _, v := range r.All() {
		if !strings.HasPrefix(v.Name(), part) {
			continue
		}
		n++
		arch, notify := " ", " "
		if v.Archive() {
			arch = "*"
		}
		if v.Notify() {
			notify = "s"
		}
		conlog.SafePrintf("%s%s %s \"%s\"\n", arch, notify, v.Name(), v.String())
	}
	conlog.SafePrintf("%v cvars\n", n)
	return nil
}

func (r *Registry) cycle(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) < 2 {
		conlog.SafePrintf("cycle <cvar> <value list>: cycle cvar through a list of values\n")
		return nil
	}
	cv, ok := r.Get(args[0].String())
	if !ok {
		conlog.Printf("cycle: variable %v not found\n", args[0].String())
		return nil
	}
	values := args[1:]
	next := 0
	for i, v := range values {
		if v.String() == cv.String() {
			next = (i + 1) % len(values)
			break
		}
	}
	cv.SetByString(values[next].String())
	return nil
}
