// Package pip coordinates picture-in-picture mode with the playback session:
// it decides when to enter, restores the play state on exit and turns PiP
// button presses into session calls.
package pip

import (
	"context"
	"fmt"

	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/playback"
	"github.com/vidplay-cli/vidplay/remote"
)

const eventBufferSize = 16

// Host is the windowing side able to show the player as a PiP window.
type Host interface {
	// SupportsPip reports whether PiP can be entered right now.
	SupportsPip() bool

	// EnterPip switches the player into PiP with the given configuration.
	EnterPip(Params) error

	// SetPipParams updates the configuration of the PiP window.
	SetPipParams(Params) error
}

// Session is the part of a playback session the coordinator drives.
type Session interface {
	Snapshot() playback.Snapshot
	SnapshotBeforePip()
	AutoPlay() error
	SetInPipMode(enter bool) error
	Play() error
	Pause() error
	Forward() error
	Rewind() error
	Replay() error
}

// State is the PiP mode state. It survives enter/exit cycles.
type State struct {
	InPipMode      bool
	VideoPlaying   bool
	VideoCompleted bool
}

// Coordinator owns the PiP state of one hosting screen. Handle is not safe
// for concurrent use; feed commands through Run from several goroutines instead.
type Coordinator struct {
	host    Host
	session Session
	state   State
	events  chan Event
}

// NewCoordinator returns a coordinator in normal mode.
func NewCoordinator(host Host) *Coordinator {
	return &Coordinator{
		host:   host,
		events: make(chan Event, eventBufferSize),
	}
}

// State returns the current PiP state.
func (c *Coordinator) State() State {
	return c.state
}

// Events returns the feed of mode and action-set changes.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Run handles commands until ctx is done or cmds is closed.
func (c *Coordinator) Run(ctx context.Context, cmds <-chan Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-cmds:
			if !ok {
				return
			}
			if err := c.Handle(cmd); err != nil {
				log.Warnf("pip: %T: %v", cmd, err)
			}
		}
	}
}

// Handle applies one command.
func (c *Coordinator) Handle(cmd Command) error {
	switch cmd := cmd.(type) {
	case Bind:
		c.session = cmd.Session
		if c.session != nil {
			snap := c.session.Snapshot()
			c.state.VideoPlaying = snap.Playing
			c.state.VideoCompleted = snap.Completed
		}
		return nil
	case Unbind:
		c.session = nil
		return nil
	case UserLeaving:
		if !cmd.OnPlayerScreen {
			return nil
		}
		return c.enter(true)
	case PipModeChanged:
		if cmd.InPip {
			return c.enter(false)
		}
		return c.exit()
	case RemoteAction:
		return c.dispatch(cmd.Code)
	case PlaybackChanged:
		changed := c.state.VideoPlaying != cmd.Playing || c.state.VideoCompleted != cmd.Completed
		c.state.VideoPlaying = cmd.Playing
		c.state.VideoCompleted = cmd.Completed
		if changed && c.state.InPipMode {
			c.refresh()
		}
		return nil
	case Resume:
		if c.state.InPipMode {
			c.refresh()
		}
		return nil
	case Stop:
		if cmd.OnPlayerScreen && !c.state.InPipMode {
			c.state.VideoPlaying = false
		}
		return nil
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

// enter performs the Normal to InPip transition. request is false when the
// host already switched to PiP on its own.
func (c *Coordinator) enter(request bool) error {
	if c.state.InPipMode {
		return nil
	}
	if c.session == nil {
		log.Debugf("pip: no session to continue in pip")
		return nil
	}
	if request && !c.host.SupportsPip() {
		log.Debugf("pip: not supported, staying in normal mode")
		return nil
	}

	if request {
		snap := c.session.Snapshot()
		if err := c.host.EnterPip(BuildParams(snap.Completed, snap.Playing)); err != nil {
			log.Warnf("pip: enter refused by host: %v", err)
			return nil
		}
	}

	c.session.SnapshotBeforePip()
	if err := c.session.AutoPlay(); err != nil {
		log.Warnf("pip: auto-play: %v", err)
	}
	c.state.VideoPlaying = true
	c.state.VideoCompleted = c.session.Snapshot().Completed

	c.state.InPipMode = true
	if err := c.session.SetInPipMode(true); err != nil {
		return fmt.Errorf("enter pip: %w", err)
	}

	c.emit(ModeChanged{InPip: true})
	c.refresh()

	log.Infof("pip: entered")
	return nil
}

// exit performs the InPip to Normal transition.
func (c *Coordinator) exit() error {
	if !c.state.InPipMode {
		return nil
	}

	var err error
	if c.session != nil {
		err = c.session.SetInPipMode(false)
		c.state.VideoPlaying = c.session.Snapshot().Playing
	}

	c.state.InPipMode = false
	c.emit(ModeChanged{InPip: false})

	log.Infof("pip: left")
	if err != nil {
		return fmt.Errorf("leave pip: %w", err)
	}
	return nil
}

// dispatch maps a PiP button press onto the session.
func (c *Coordinator) dispatch(code remote.Code) error {
	if !code.Valid() {
		log.Warnf("pip: ignoring remote action %s", code)
		return nil
	}
	if c.session == nil {
		log.Debugf("pip: remote action %s without a session", code)
		return nil
	}

	switch code {
	case remote.Play:
		if err := c.session.Play(); err != nil {
			return err
		}
		c.state.VideoCompleted = false
		c.state.VideoPlaying = true
	case remote.Pause:
		if err := c.session.Pause(); err != nil {
			return err
		}
		c.state.VideoPlaying = false
	case remote.Forward:
		return c.session.Forward()
	case remote.Rewind:
		return c.session.Rewind()
	case remote.Replay:
		if err := c.session.Replay(); err != nil {
			return err
		}
		c.state.VideoCompleted = false
		c.state.VideoPlaying = true
	}

	c.refresh()
	return nil
}

// refresh pushes the action set for the current state to the host.
func (c *Coordinator) refresh() {
	params := BuildParams(c.state.VideoCompleted, c.state.VideoPlaying)
	if err := c.host.SetPipParams(params); err != nil {
		log.Warnf("pip: update actions: %v", err)
		return
	}
	c.emit(ActionsChanged{Actions: params.Actions})
}

func (c *Coordinator) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		log.Warnf("pip: event %T dropped, no reader", ev)
	}
}
