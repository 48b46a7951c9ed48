// Package ui styles terminal output of the sgc CLI.
package ui

import "fmt"

// ANSI 256-color codes.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorOK     = 71  // green
	colorWarn   = 178 // amber
	colorFail   = 167 // red
)

var noColor bool

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent styles section titles.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted styles secondary text such as flag types and defaults.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand styles command names.
func RenderCommand(s string) string { return render(colorCmd, s) }

// RenderOK, RenderWarn and RenderFail color a status by outcome.
func RenderOK(s string) string   { return render(colorOK, s) }
func RenderWarn(s string) string { return render(colorWarn, s) }
func RenderFail(s string) string { return render(colorFail, s) }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
