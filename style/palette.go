package style

import "github.com/charmbracelet/lipgloss"

// Player screen palette.
var (
	Base  = lipgloss.Color("#1e1e2e")
	Text  = lipgloss.Color("#cdd6f4")
	Mauve = lipgloss.Color("#cba6f7")
	Rose  = lipgloss.Color("#f38ba8")
	Muted = lipgloss.Color("#6c7086")

	AccentColor = Mauve
	HiRed       = Rose
	FaintColor  = Muted
)
