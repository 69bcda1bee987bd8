// SPDX-License-Identifier: GPL-2.0-or-later

// Package alias lets console users name a line of commands, for example
// alias fast "set kart_top_speed 800; set kart_propulsion 1000".
package alias

import (
	"sort"
	"strings"

	"gokart/cmd"
	"gokart/conlog"
)

type Aliases struct {
	aliases map[string]string
}

func New() *Aliases {
	return &Aliases{aliases: make(map[string]string)}
}

// Register adds the alias, unalias and unaliasall commands to c.
func (al *Aliases) Register(c *cmd.Commands) error {
	if err := c.Add("alias", al.alias); err != nil {
		return err
	}
	if err := c.Add("unalias", al.unalias); err != nil {
		return err
	}
	return c.Add("unaliasall", al.unaliasAll)
}

func (al *Aliases) alias(a cmd.Arguments) error {
	args := a.Args()[1:]
	switch len(args) {
	case 0:
		al.list()
	case 1:
		if v, ok := al.Get(args[0].String()); ok {
			conlog.SafePrintf("  %s: %s\n", args[0].String(), v)
		}
	default:
		// keep the text as typed, quotes and separators included
		rest := strings.TrimSpace(strings.TrimPrefix(a.ArgumentString(), args[0].String()))
		al.aliases[args[0].String()] = strings.Trim(rest, "\"")
	}
	return nil
}

func (al *Aliases) list() {
	if len(al.aliases) == 0 {
		conlog.SafePrintf("no alias commands found\n")
		return
	}
	names := make([]string, 0, len(al.aliases))
	for k := range al.aliases {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		conlog.SafePrintf("  %s: %s\n", k, al.aliases[k])
	}
	conlog.SafePrintf("%v alias command(s)\n", len(al.aliases))
}

func (al *Aliases) unalias(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) != 1 {
		conlog.Printf("unalias <name> : delete alias\n")
		return nil
	}
	name := args[0].String()
	if _, ok := al.aliases[name]; ok {
		delete(al.aliases, name)
	} else {
		conlog.Printf("No alias named %s\n", name)
	}
	return nil
}

func (al *Aliases) unaliasAll(_ cmd.Arguments) error {
	al.aliases = make(map[string]string)
	return nil
}

func (al *Aliases) Get(name string) (string, bool) {
	a, ok := al.aliases[name]
	return a, ok
}

// Execute returns an executor that expands aliases into b, in front of
// whatever is still queued.
func (al *Aliases) Execute(b *cmd.Buffer) cmd.Executor {
	return func(a cmd.Arguments) (bool, error) {
		args := a.Args()
		if len(args) == 0 {
			return false, nil
		}
		if v, ok := al.Get(args[0].String()); ok {
			b.InsertText(v)
			return true, nil
		}
		return false, nil
	}
}
