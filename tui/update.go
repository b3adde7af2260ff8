// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidplay-cli/vidplay/app"
	"github.com/vidplay-cli/vidplay/playback"
	"github.com/vidplay-cli/vidplay/util"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Process Ephemeral UI Notifications
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case error:
		b.raiseError(msg)
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		var tick tea.Cmd
		b.spinnerC, tick = b.spinnerC.Update(msg)
		return b, tea.Batch(cmd, tick)
	case libraryMsg:
		return b, tea.Batch(cmd, b.onLibrary(msg))
	case app.Update:
		return b, tea.Batch(cmd, b.onAppUpdate(msg), b.waitForUpdate())
	case tea.BlurMsg:
		if b.state == playerState {
			return b, tea.Batch(cmd, b.userLeaving())
		}
		return b, cmd
	case tea.FocusMsg:
		return b, tea.Batch(cmd, b.userReturning())
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	var next tea.Cmd
	switch b.state {
	case loadingState:
		next = b.updateLoading(msg)
	case libraryState:
		next = b.updateLibrary(msg)
	case playerState:
		next = b.updatePlayer(msg)
	case errorState:
		next = b.updateError(msg)
	}

	return b, tea.Batch(cmd, next)
}

func (b *statefulBubble) onLibrary(msg libraryMsg) tea.Cmd {
	b.scanned = true
	b.libraryErr = msg.err
	if msg.err != nil {
		return b.libraryC.SetItems(nil)
	}
	return b.libraryC.SetItems(recordItems(msg.records))
}

// onAppUpdate keeps the screen in step with the route of the hosting screen,
// which can change without a key press when the player window is closed.
func (b *statefulBubble) onAppUpdate(u app.Update) tea.Cmd {
	b.app = u
	b.keymap.inPip = u.Pip.InPipMode

	switch {
	case u.Route.IsPlayer() && b.state != playerState && b.state != errorState:
		b.newState(playerState)
		return b.showControls()
	case !u.Route.IsPlayer() && b.state == playerState:
		b.statesHistory.Clear()
		b.setState(libraryState)
	case u.Active && !u.Session.Playing:
		b.controlsVisible = true
	}

	return nil
}

func (b *statefulBubble) updateLoading(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case navigatedMsg:
		b.setState(playerState)
		return b.showControls()
	}

	return nil
}

func (b *statefulBubble) updateLibrary(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && b.libraryC.FilterState() != list.Filtering {
		switch {
		case bubblesKey.Matches(key, b.keymap.confirm):
			item, ok := b.libraryC.SelectedItem().(*listItem)
			if !ok {
				return nil
			}
			b.progressStatus = fmt.Sprintf("Opening %s", item.record.DisplayName)
			b.newState(loadingState)
			return tea.Batch(b.spinnerC.Tick, b.openVideo(item.record))
		case bubblesKey.Matches(key, b.keymap.rescan):
			return b.rescanLibrary()
		}
	}

	var cmd tea.Cmd
	b.libraryC, cmd = b.libraryC.Update(msg)
	return cmd
}

func (b *statefulBubble) updatePlayer(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case hideControlsMsg:
		if msg.seq == b.controlsSeq && b.app.Session.Playing {
			b.controlsVisible = false
		}
		return nil
	case navigatedMsg:
		return nil
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			return tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			return b.goBack()
		}

		if b.app.Pip.InPipMode {
			return nil
		}

		show := b.showControls()
		var action func(*playback.Controller) error

		switch {
		case bubblesKey.Matches(msg, b.keymap.playPause):
			action = (*playback.Controller).TogglePlayPause
		case bubblesKey.Matches(msg, b.keymap.replay):
			action = (*playback.Controller).Replay
		case bubblesKey.Matches(msg, b.keymap.rewind):
			action = (*playback.Controller).Rewind
		case bubblesKey.Matches(msg, b.keymap.forward):
			action = (*playback.Controller).Forward
		case bubblesKey.Matches(msg, b.keymap.volumeUp):
			action = (*playback.Controller).IncreaseVolume
		case bubblesKey.Matches(msg, b.keymap.volumeDown):
			action = (*playback.Controller).DecreaseVolume
		case bubblesKey.Matches(msg, b.keymap.brightnessUp):
			action = b.brightnessBy(brightnessStep)
		case bubblesKey.Matches(msg, b.keymap.brightnessDown):
			action = b.brightnessBy(-brightnessStep)
		case bubblesKey.Matches(msg, b.keymap.fullscreen):
			action = (*playback.Controller).ToggleFullscreen
		case bubblesKey.Matches(msg, b.keymap.pip):
			return tea.Batch(show, b.userLeaving())
		case bubblesKey.Matches(msg, b.keymap.showHelp):
			b.helpC.ShowAll = !b.helpC.ShowAll
		}

		if action == nil {
			return show
		}
		return tea.Batch(show, b.withSession(action))
	}

	return nil
}

func (b *statefulBubble) brightnessBy(delta float64) func(*playback.Controller) error {
	return func(c *playback.Controller) error {
		level := util.Clamp(c.Snapshot().Brightness+delta, 0, 1)
		return c.SetBrightness(level)
	}
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(key, b.keymap.back):
			b.previousState()
		case bubblesKey.Matches(key, b.keymap.quit):
			return tea.Quit
		}
	}

	return nil
}
