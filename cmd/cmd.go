// SPDX-License-Identifier: GPL-2.0-or-later

// Package cmd is the console: a line parser, a command table and a
// buffer that runs queued command text.
package cmd

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"gokart/conlog"
)

type Func func(args Arguments) error

// Executor handles a parsed line and reports whether it knew the command.
type Executor func(args Arguments) (bool, error)

type Commands map[string]Func

func New() *Commands {
	c := make(Commands)
	return &c
}

func (c *Commands) Add(name string, f Func) error {
	ln := strings.ToLower(name)
	if _, ok := (*c)[ln]; ok {
		return errors.Errorf("command %s already defined", ln)
	}
	(*c)[ln] = f
	return nil
}

func (c *Commands) Exists(cmdName string) bool {
	_, ok := (*c)[strings.ToLower(cmdName)]
	return ok
}

func (c *Commands) List() []string {
	cmds := make([]string, 0, len(*c))
	for cmd := range *c {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	return cmds
}

// Execute runs the command named by the first argument.
func (c *Commands) Execute(a Arguments) (bool, error) {
	n := a.Args()
	if len(n) == 0 {
		return false, nil
	}
	name := strings.ToLower(n[0].String())
	if cmd, ok := (*c)[name]; ok {
		if err := cmd(a); err != nil {
			return false, errors.Wrap(err, name)
		}
		return true, nil
	}
	return false, nil
}

func Must(err error) {
	if err != nil {
		panic(err.Error())
	}
}

// Buffer queues console text and runs it through a chain of executors.
type Buffer struct {
	text      string
	wait      bool
	executors []Executor
}

// NewBuffer returns a buffer trying the executors in order. It registers
// the "wait" and "cmdlist" commands on c.
func NewBuffer(c *Commands, more ...Executor) *Buffer {
	b := &Buffer{executors: append([]Executor{c.Execute}, more...)}
	Must(c.Add("wait", func(Arguments) error {
		b.wait = true
		return nil
	}))
	Must(c.Add("cmdlist", func(a Arguments) error {
		part := a.Argv(1).String()
		count := 0
		for _, n := range c.List() {
			if strings.HasPrefix(n, part) {
				conlog.SafePrintf("  %s\n", n)
				count++
			}
		}
		conlog.SafePrintf("%v commands\n", count)
		return nil
	}))
	return b
}

// AddExecutor appends e to the executor chain.
func (b *Buffer) AddExecutor(e Executor) {
	b.executors = append(b.executors, e)
}

func (b *Buffer) AddText(text string) {
	b.text += text
	if text != "" && !strings.HasSuffix(text, "\n") {
		b.text += "\n"
	}
}

// InsertText puts text in front of everything queued.
func (b *Buffer) InsertText(text string) {
	b.text = text + "\n" + b.text
}

// Execute runs queued commands until the buffer is empty or a "wait"
// defers the rest to the next call. Unknown commands are logged.
func (b *Buffer) Execute() error {
	for b.text != "" {
		lines := Split(b.text)
		if len(lines) == 0 {
			b.text = ""
			return nil
		}
		line := lines[0]
		b.text = strings.TrimPrefix(b.text, line)
		if b.text != "" {
			// the separator
			b.text = b.text[1:]
		}
		if err := b.run(line); err != nil {
			return err
		}
		if b.wait {
			b.wait = false
			return nil
		}
	}
	return nil
}

func (b *Buffer) run(line string) error {
	a := Parse(line)
	args := a.Args()
	if len(args) == 0 {
		return nil
	}
	for _, e := range b.executors {
		if ok, err := e(a); err != nil {
			return err
		} else if ok {
			return nil
		}
	}
	conlog.Printf("Unknown command \"%s\"\n", args[0].String())
	return nil
}
