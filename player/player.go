// Package player defines the playback engine capability driven by a session,
// with the primary implementation targeting 'mpv' via its JSON-IPC interface.
package player

import (
	"context"
	"errors"
)

// DurationUnknown is reported by Engine.Duration until the media length is known.
const DurationUnknown int64 = -1

// ErrNotRunning is returned when a command is sent to an engine whose process has exited.
var ErrNotRunning = errors.New("engine is not running")

// State is the coarse lifecycle state of the loaded media item.
type State int

const (
	// StateIdle indicates the engine was created but media is not ready yet.
	StateIdle State = iota

	// StateBuffering indicates playback is stalled waiting for data.
	StateBuffering

	// StateReady indicates the media is loaded and can play immediately.
	StateReady

	// StateEnded indicates playback reached the end of the media.
	StateEnded
)

// String returns a human-readable label for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBuffering:
		return "Buffering"
	case StateReady:
		return "Ready"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Engine encapsulates the capabilities a playback session needs from a media player.
// Positions and durations are in milliseconds.
type Engine interface {
	// Play resumes playback from the current position.
	Play() error

	// Pause suspends playback.
	Pause() error

	// Seek moves playback to an absolute position. The engine clamps out-of-range values.
	Seek(ms int64) error

	// SetVolume applies a linear volume level in [0, 1].
	SetVolume(level float64) error

	// Position returns the current playback position.
	Position() int64

	// Duration returns the media length, or DurationUnknown.
	Duration() int64

	// State returns the current lifecycle state.
	State() State

	// IsPlaying reports whether media is actively advancing.
	IsPlaying() bool

	// Title resolves the display title from media metadata.
	Title() (string, error)

	// Events returns the single ordered feed of engine notifications.
	Events() <-chan Event

	// Close releases the engine and all associated system resources.
	Close() error
}

// Factory constructs an engine bound to one media URI.
type Factory func(ctx context.Context, uri string) (Engine, error)
