// Package playertest provides an in-memory player.Engine for tests.
package playertest

import (
	"context"
	"errors"
	"sync"

	"github.com/vidplay-cli/vidplay/player"
)

// Engine is a scriptable player.Engine. Seeks clamp to [0, duration] like a real engine.
type Engine struct {
	mu       sync.Mutex
	playing  bool
	position int64
	duration int64
	state    player.State
	volume   float64
	title    string
	titleErr error
	closed   int
	events   chan player.Event
}

// New returns a ready engine holding media of the given duration.
func New(duration int64) *Engine {
	return &Engine{
		duration: duration,
		state:    player.StateReady,
		title:    "Sample",
		events:   make(chan player.Event, 16),
	}
}

// Factory returns a player.Factory that always yields e.
func (e *Engine) Factory() player.Factory {
	return func(context.Context, string) (player.Engine, error) {
		return e, nil
	}
}

// FailingFactory returns a player.Factory that always fails with err.
func FailingFactory(err error) player.Factory {
	return func(context.Context, string) (player.Engine, error) {
		return nil, err
	}
}

// WithTitle sets the metadata title, or a lookup failure when title is empty.
func (e *Engine) WithTitle(title string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.title = title
	e.titleErr = nil
	if title == "" {
		e.titleErr = errors.New("no metadata")
	}
	return e
}

// SetPosition moves the playhead without a seek, as playback would.
func (e *Engine) SetPosition(ms int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = ms
}

// Finish drives the engine into the ended state and returns the matching event.
func (e *Engine) Finish() player.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = player.StateEnded
	e.playing = false
	e.position = e.duration
	return player.StateChanged{State: player.StateEnded, Playing: false}
}

// Emit pushes ev onto the event feed.
func (e *Engine) Emit(ev player.Event) {
	e.events <- ev
}

// Closed reports how many times Close was called.
func (e *Engine) Closed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Volume returns the last applied volume.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = true
	return nil
}

func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	return nil
}

func (e *Engine) Seek(ms int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ms < 0 {
		ms = 0
	}
	if e.duration >= 0 && ms > e.duration {
		ms = e.duration
	}
	e.position = ms
	if e.state == player.StateEnded && ms < e.duration {
		e.state = player.StateReady
	}
	return nil
}

func (e *Engine) SetVolume(level float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = level
	return nil
}

func (e *Engine) Position() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *Engine) Duration() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *Engine) State() player.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *Engine) Title() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title, e.titleErr
}

func (e *Engine) Events() <-chan player.Event {
	return e.events
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed++
	return nil
}
