package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorOK     = 114 // green
	colorWarn   = 179 // amber
	colorDanger = 203 // red
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return paint(colorCmd, s) }

// RenderError returns s in the danger (red) color.
func RenderError(s string) string { return paint(colorDanger, s) }

// RenderSeverity colors a prompt risk level: high red, medium amber,
// low green, anything else muted.
func RenderSeverity(sev string) string {
	switch sev {
	case "high":
		return paint(colorDanger, sev)
	case "medium":
		return paint(colorWarn, sev)
	case "low":
		return paint(colorOK, sev)
	}
	return paint(colorMuted, sev)
}

// RenderStatus colors a record status word.
func RenderStatus(status string) string {
	switch status {
	case "active", "paid", "success":
		return paint(colorOK, status)
	case "pending", "loading":
		return paint(colorWarn, status)
	case "inactive", "overdue", "failure":
		return paint(colorDanger, status)
	}
	return paint(colorMuted, status)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
