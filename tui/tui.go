// Package tui provides the primary terminal user interface implementation.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/vidplay-cli/vidplay/nav"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Dir is the library directory.
	Dir string

	// URI opens the player screen right away instead of the library.
	URI mo.Option[string]
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(host App, options *Options) error {
	bubble := newBubble(host, options)

	if uri, ok := options.URI.Get(); ok {
		if err := host.Navigate(nav.PlayerRoute(uri)); err != nil {
			return err
		}
		bubble.setState(playerState)
	} else {
		bubble.setState(libraryState)
	}

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithReportFocus()).Run()
	return err
}
