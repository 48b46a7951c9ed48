package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether stdout gets ANSI colors. NO_COLOR and
// TERM=dumb turn color off, CLICOLOR_FORCE=1 turns it on, CLICOLOR=0 turns
// it off, and otherwise stdout must be a terminal.
func ShouldUseColor() bool {
	if noColor {
		return false
	}
	return colorFromEnv(os.Getenv, func() bool { return term.IsTerminal(int(os.Stdout.Fd())) })
}

func colorFromEnv(getenv func(string) string, isTTY func() bool) bool {
	switch {
	case getenv("NO_COLOR") != "", getenv("TERM") == "dumb":
		return false
	case strings.TrimSpace(getenv("CLICOLOR_FORCE")) == "1":
		return true
	case strings.TrimSpace(getenv("CLICOLOR")) == "0":
		return false
	}
	return isTTY()
}
