package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// colorEnv reports the color decision made by the environment alone, and
// whether it made one. NO_COLOR wins over CLICOLOR_FORCE, which wins over
// CLICOLOR=0.
func colorEnv(getenv func(string) string) (use, decided bool) {
	switch {
	case getenv("NO_COLOR") != "":
		return false, true
	case strings.TrimSpace(getenv("CLICOLOR_FORCE")) == "1":
		return true, true
	case strings.TrimSpace(getenv("CLICOLOR")) == "0":
		return false, true
	}
	return false, false
}

// ShouldUseColor reports whether tables and help on stdout get ANSI colors.
// Without an environment override, only terminals do.
func ShouldUseColor() bool {
	if use, ok := colorEnv(os.Getenv); ok {
		return use
	}
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
