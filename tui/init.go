// Package tui provides the primary terminal user interface implementation.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the library scan and subscribes to the hosting screen.
func (b *statefulBubble) Init() tea.Cmd {
	cmds := []tea.Cmd{b.scanLibrary(), b.waitForUpdate(), b.spinnerC.Tick}
	if b.state == playerState {
		cmds = append(cmds, b.showControls())
	}

	return tea.Batch(cmds...)
}
