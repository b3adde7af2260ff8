package pip

import "github.com/vidplay-cli/vidplay/remote"

// Command is a request handled by the Coordinator.
type Command interface {
	isCommand()
}

// Bind attaches the playback session of the player screen.
type Bind struct {
	Session Session
}

// Unbind detaches the current session when the player screen is left.
type Unbind struct{}

// UserLeaving reports the user sending the app to the background.
type UserLeaving struct {
	OnPlayerScreen bool
}

// PipModeChanged reports the host entering or leaving PiP.
type PipModeChanged struct {
	InPip bool
}

// RemoteAction carries a PiP button press back from the host.
type RemoteAction struct {
	Code remote.Code
}

// PlaybackChanged mirrors the session's playing and completed flags.
type PlaybackChanged struct {
	Playing   bool
	Completed bool
}

// Resume reports the hosting screen returning to the foreground.
type Resume struct{}

// Stop reports the hosting screen no longer being visible.
type Stop struct {
	OnPlayerScreen bool
}

func (Bind) isCommand()            {}
func (Unbind) isCommand()          {}
func (UserLeaving) isCommand()     {}
func (PipModeChanged) isCommand()  {}
func (RemoteAction) isCommand()    {}
func (PlaybackChanged) isCommand() {}
func (Resume) isCommand()          {}
func (Stop) isCommand()            {}

// Event is published by the Coordinator for the presentation layer.
type Event interface {
	isEvent()
}

// ModeChanged is published on every Normal/InPip boundary crossing.
type ModeChanged struct {
	InPip bool
}

// ActionsChanged is published whenever a new action set is pushed to the host.
type ActionsChanged struct {
	Actions []Action
}

func (ModeChanged) isEvent()    {}
func (ActionsChanged) isEvent() {}
