package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorOK     = 114 // green
	colorErr    = 167 // red
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorCmd, s)
}

// RenderOK returns s in green, used for open gates and successful claims.
func RenderOK(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorOK, s)
}

// RenderErr returns s in red, used for closed gates and rejections.
func RenderErr(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorErr, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
