// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"flag"
	"reflect"
	"testing"
)

func TestBoolInt(t *testing.T) {
	var flags flag.FlagSet
	flags.Init("test", flag.ContinueOnError)
	a := boolInt{false, 4}
	b := boolInt{false, 5}
	c := boolInt{true, 6}
	d := boolInt{false, 7}
	e := boolInt{false, 8}
	f := boolInt{true, 9}
	flags.Var(&a, "a", "usage")
	flags.Var(&b, "b", "usage")
	flags.Var(&c, "c", "usage")
	flags.Var(&d, "d", "usage")
	flags.Var(&e, "e", "usage")
	flags.Var(&f, "f", "usage")
	if err := flags.Parse([]string{"-a", "-b=3", "-e=true", "-f=false"}); err != nil {
		t.Error(err)
	}
	if a.set != true {
		t.Errorf("a.set = %v", a.set)
	}
	if b.set != true {
		t.Errorf("b.set = %v", b.set)
	}
	if c.set != true {
		t.Errorf("c.set = %v", c.set)
	}
	if d.set != false {
		t.Errorf("d.set = %v", d.set)
	}
	if e.set != true {
		t.Errorf("e.set = %v", e.set)
	}
	if f.set != false {
		t.Errorf("f.set = %v", f.set)
	}
	if a.num != 4 {
		t.Errorf("a.num = %v", a.num)
	}
	if b.num != 3 {
		t.Errorf("b.num = %v", b.num)
	}
	if c.num != 6 {
		t.Errorf("c.num = %v", c.num)
	}
	if d.num != 7 {
		t.Errorf("d.num = %v", d.num)
	}
}

func TestScripts(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"-karts", "2"}, ""},
		{[]string{"+set", "kart_gravity", "900", "+developer", "1", "-ticks", "60"}, "set kart_gravity 900; developer 1"},
		{[]string{"-json", "+toggle", "developer"}, "toggle developer"},
		{[]string{"+cvarlist", "", "-karts"}, "cvarlist"},
	} {
		if got := Scripts(tc.args); got != tc.want {
			t.Errorf("Scripts(%q) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestFlagArgs(t *testing.T) {
	args := []string{"-karts", "2", "+set", "kart_gravity", "900", "-ticks=60", "+wait"}
	want := []string{"-karts", "2", "-ticks=60"}
	if got := FlagArgs(args); !reflect.DeepEqual(got, want) {
		t.Errorf("FlagArgs(%q) = %q, want %q", args, got, want)
	}
}
