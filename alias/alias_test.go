// SPDX-License-Identifier: GPL-2.0-or-later

package alias

import (
	"bytes"
	"testing"

	"gokart/cmd"
	"gokart/conlog"
)

func setup(t *testing.T) (*Aliases, *cmd.Buffer, *[]string) {
	t.Helper()
	al := New()
	cmds := cmd.New()
	if err := al.Register(cmds); err != nil {
		t.Fatal(err)
	}
	var ran []string
	cmd.Must(cmds.Add("set", func(a cmd.Arguments) error {
		ran = append(ran, a.Full())
		return nil
	}))
	b := cmd.NewBuffer(cmds)
	b.AddExecutor(al.Execute(b))
	return al, b, &ran
}

func TestAliasRegister(t *testing.T) {
	al := New()
	cmds := cmd.New()
	if err := al.Register(cmds); err != nil {
		t.Fatal(err)
	}
	if err := al.Register(cmds); err == nil {
		t.Errorf("second Register succeeded")
	}
}

func TestExecuteAlias(t *testing.T) {
	al, b, ran := setup(t)
	b.AddText(`alias fast "set kart_top_speed 800; set kart_propulsion 1000"`)
	b.AddText("fast; set done 1")
	if err := b.Execute(); err != nil {
		t.Fatal(err)
	}
	want := []string{"set kart_top_speed 800", "set kart_propulsion 1000", "set done 1"}
	if len(*ran) != len(want) {
		t.Fatalf("ran %q, want %q", *ran, want)
	}
	for i := range want {
		if (*ran)[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, (*ran)[i], want[i])
		}
	}
	if _, ok := al.Get("fast"); !ok {
		t.Errorf("Get(fast) failed")
	}

	b.AddText("unalias fast")
	if err := b.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, ok := al.Get("fast"); ok {
		t.Errorf("unalias left fast defined")
	}
}

func TestPrintAlias(t *testing.T) {
	var out bytes.Buffer
	conlog.SetOutput(&out)
	defer conlog.SetOutput(nil)

	_, b, _ := setup(t)
	b.AddText("alias hello world\nalias")
	if err := b.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "  hello: world\n1 alias command(s)\n" {
		t.Errorf("alias printed %q", got)
	}
	out.Reset()
	b.AddText("alias hello")
	if err := b.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "  hello: world\n" {
		t.Errorf("alias hello printed %q", got)
	}
	out.Reset()
	b.AddText("unaliasall\nalias")
	if err := b.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "no alias commands found\n" {
		t.Errorf("alias after unaliasall printed %q", got)
	}
}
