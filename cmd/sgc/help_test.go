package main

import (
	"strings"
	"testing"

	"github.com/sgcpro/sgc/internal/ui"
)

func TestColorizeHelp(t *testing.T) {
	in := "Records:\n  clients     Manage clients\n\nFlags:\n      --limit int   max rows (default 50)\n"
	out := colorizeHelp(in)

	for _, want := range []string{
		ui.RenderAccent("Records:"),
		ui.RenderCommand("clients"),
		ui.RenderMuted("int"),
		ui.RenderMuted("(default 50)"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
