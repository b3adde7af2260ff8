// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidplay-cli/vidplay/internal/ui"
	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/media"
	"github.com/vidplay-cli/vidplay/nav"
	"github.com/vidplay-cli/vidplay/playback"
)

type libraryMsg struct {
	records []media.Record
	err     error
}

type navigatedMsg struct{}

type hideControlsMsg struct {
	seq int
}

func (b *statefulBubble) scanLibrary() tea.Cmd {
	dir := b.dir
	return func() tea.Msg {
		records, err := media.Scan(dir)
		if err != nil {
			log.Warnf("tui: scan %s: %v", dir, err)
		}
		return libraryMsg{records: records, err: err}
	}
}

func (b *statefulBubble) rescanLibrary() tea.Cmd {
	if err := media.Forget(b.dir); err != nil {
		log.Warnf("tui: forget scan of %s: %v", b.dir, err)
	}
	b.scanned = false
	return b.scanLibrary()
}

// waitForUpdate blocks until the hosting screen publishes a new state.
func (b *statefulBubble) waitForUpdate() tea.Cmd {
	updates := b.host.Updates()
	return func() tea.Msg {
		return <-updates
	}
}

func (b *statefulBubble) openVideo(record media.Record) tea.Cmd {
	route := nav.PlayerRoute(record.URI())
	return func() tea.Msg {
		if err := b.host.Navigate(route); err != nil {
			return fmt.Errorf("open %s: %w", record.DisplayName, err)
		}
		return navigatedMsg{}
	}
}

func (b *statefulBubble) goBack() tea.Cmd {
	return func() tea.Msg {
		if _, err := b.host.Back(); err != nil {
			return err
		}
		return navigatedMsg{}
	}
}

// withSession runs fn against the playback session off the UI goroutine.
// Failures are shown as notifications rather than replacing the player screen.
func (b *statefulBubble) withSession(fn func(*playback.Controller) error) tea.Cmd {
	return func() tea.Msg {
		if err := b.host.WithSession(fn); err != nil {
			log.Warnf("tui: %v", err)
			return ui.NotificationMsg{Text: err.Error()}
		}
		return nil
	}
}

// userLeaving reports the terminal losing focus. When PiP does not take over
// the player is no longer visible.
func (b *statefulBubble) userLeaving() tea.Cmd {
	return func() tea.Msg {
		if err := b.host.OnUserLeaveHint(); err != nil {
			return ui.NotificationMsg{Text: err.Error()}
		}
		if b.host.PipState().InPipMode {
			return nil
		}
		if err := b.host.OnStop(); err != nil {
			return ui.NotificationMsg{Text: err.Error()}
		}
		return nil
	}
}

// userReturning reports the terminal regaining focus. Coming back ends PiP.
func (b *statefulBubble) userReturning() tea.Cmd {
	return func() tea.Msg {
		if b.host.PipState().InPipMode {
			if err := b.host.OnPipModeChanged(false); err != nil {
				return ui.NotificationMsg{Text: err.Error()}
			}
		}
		if err := b.host.OnResume(); err != nil {
			return ui.NotificationMsg{Text: err.Error()}
		}
		return nil
	}
}

// showControls reveals the playback controls and schedules them to hide again.
func (b *statefulBubble) showControls() tea.Cmd {
	b.controlsVisible = true
	b.controlsSeq++

	if b.controlsTimeout <= 0 {
		return nil
	}

	seq := b.controlsSeq
	return tea.Tick(b.controlsTimeout, func(time.Time) tea.Msg {
		return hideControlsMsg{seq: seq}
	})
}
