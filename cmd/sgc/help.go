package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgcpro/sgc/internal/ui"
)

// Patterns applied to Cobra's plain help text.
var (
	// Unindented "Something:" lines, i.e. group titles and "Flags:".
	reSectionHeader = regexp.MustCompile(`(?m)^([A-Z][^\n]*:)\s*$`)

	// "  name   description" rows of the command listing.
	reCommandRow = regexp.MustCompile(`(?m)^(  )(\S+)(  )`)

	// Value types printed after a flag name.
	reFlagValue = regexp.MustCompile(`(--?\S+\s+)(string|int|float64|duration|strings|stringSlice|stringArray)\b`)

	reDefaultValue = regexp.MustCompile(`\(default [^)]*\)`)
)

// colorizedHelpFunc renders usage through colorizeHelp when stdout
// supports color.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelp(buf.String()))
	}
}

func colorizeHelp(s string) string {
	s = reSectionHeader.ReplaceAllStringFunc(s, func(m string) string {
		return ui.RenderAccent(strings.TrimSpace(m))
	})
	s = reCommandRow.ReplaceAllStringFunc(s, func(m string) string {
		p := reCommandRow.FindStringSubmatch(m)
		return p[1] + ui.RenderCommand(p[2]) + p[3]
	})
	s = reFlagValue.ReplaceAllStringFunc(s, func(m string) string {
		p := reFlagValue.FindStringSubmatch(m)
		return p[1] + ui.RenderMuted(p[2])
	})
	return reDefaultValue.ReplaceAllStringFunc(s, ui.RenderMuted)
}
