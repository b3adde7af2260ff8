// Package style composes the lipgloss styles shared by the CLI and the player screen.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/vidplay-cli/vidplay/color"
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg renders text in c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

// Truncate renders text into a block of the given width.
func Truncate(max int) func(string) string {
	return func(s string) string { return New().Width(max).Render(s) }
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }
)

// Title renders a screen heading, matching the library list title.
func Title(s string) string {
	return New().Foreground(Base).Background(AccentColor).Padding(0, 1).Render(s)
}

// ErrorTitle renders the heading of an error or permission screen.
func ErrorTitle(s string) string {
	return New().Foreground(Base).Background(color.Red).Padding(0, 1).Render(s)
}
