// Package color holds the terminal colors used by the CLI output and the player screen.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps an ANSI index or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI colors, so the CLI follows the user's terminal theme.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")

	HiRed    = New("9")
	HiPurple = New("13")
)

var (
	// Orange marks primary key bindings in help views.
	Orange = New("#ffb703")
	// Gray is used for transient notifications.
	Gray = New("#808080")
)
