// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"strconv"
	"strings"
	"unicode"
)

// Arg is one console word.
type Arg struct {
	a string
}

func (a Arg) String() string {
	return a.a
}

func (a Arg) Int() int {
	r, err := strconv.ParseInt(a.a, 10, 0)
	if err != nil {
		return 0
	}
	return int(r)
}

func (a Arg) Float32() float32 {
	r, err := strconv.ParseFloat(a.a, 32)
	if err != nil {
		return 0
	}
	return float32(r)
}

func (a Arg) Bool() bool {
	switch strings.ToLower(a.a) {
	case "1", "t", "true", "on", "yes":
		return true
	default:
		return false
	}
}

type Arguments struct {
	// each arg on its own
	args []Arg
	// the trimmed input line
	full string
}

// Argv returns argument i or an empty Arg when out of range.
func (c *Arguments) Argv(i int) Arg {
	if i < 0 || i >= len(c.args) {
		return Arg{}
	}
	return c.args[i]
}

func (c *Arguments) Full() string {
	return c.full
}

func (c *Arguments) Args() []Arg {
	return c.args
}

// ArgumentString is everything after the command word, with surrounding
// quotes removed.
func (c *Arguments) ArgumentString() string {
	if len(c.args) < 2 {
		return ""
	}
	r := strings.TrimPrefix(c.full, c.args[0].String())
	r = strings.TrimLeftFunc(r, unicode.IsSpace)
	if len(r) > 1 && r[0] == '"' {
		r = strings.Trim(r, "\"\t\n\v\f\r ")
	}
	return r
}

// Parse splits one console line into words. Double quotes group words,
// "//" starts a comment and a line break ends the command.
func Parse(s string) (args Arguments) {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	args.full = strings.TrimFunc(s, unicode.IsSpace)
	args.args = []Arg{}

	in := args.full
	for {
		in = strings.TrimLeft(in, " \t")
		switch {
		case in == "", strings.HasPrefix(in, "//"):
			return
		case in[0] == '"':
			end := strings.IndexByte(in[1:], '"')
			if end < 0 {
				// unterminated string, take the rest
				args.args = append(args.args, Arg{in[1:]})
				return
			}
			args.args = append(args.args, Arg{in[1 : end+1]})
			in = in[end+2:]
		default:
			end := strings.IndexAny(in, " \t\"")
			if end < 0 {
				end = len(in)
			}
			args.args = append(args.args, Arg{in[:end]})
			in = in[end:]
		}
	}
}

// Split cuts text into single commands at ';' and line breaks that are not
// inside quotes.
func Split(text string) []string {
	var lines []string
	quote := false
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			quote = !quote
		case ';':
			if quote {
				continue
			}
			fallthrough
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
			quote = false
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
