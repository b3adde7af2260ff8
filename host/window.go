// Package host adapts the mpv player window into the PiP host and the display
// surface of a playback session.
package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/icon"
	"github.com/vidplay-cli/vidplay/key"
	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/pip"
	"github.com/vidplay-cli/vidplay/remote"
)

const (
	// ActionMessage prefixes script messages carrying a PiP button code.
	ActionMessage = "vidplay-action"

	// PipMessage prefixes script messages about the PiP window itself.
	PipMessage = "vidplay-pip"

	pipMargin       = 24
	osdDurationMs   = 5000
	defaultPipWidth = 480
)

// ErrDetached is returned when the window has no player attached.
var ErrDetached = errors.New("no player window attached")

// buttonKeys bind PiP buttons by position.
var buttonKeys = []string{"1", "2", "3"}

// exitKey leaves PiP from the player window.
const exitKey = "ESC"

// Controls is the part of the mpv client the window drives.
type Controls interface {
	Set(property string, value interface{}) error
	Get(property string) (interface{}, error)
	Command(args ...interface{}) error
	IsRunning() bool
	Messages() <-chan []string
}

// Options configures the PiP window.
type Options struct {
	Enabled bool
	Width   int
}

// DefaultOptions reads the PiP options from the configuration.
func DefaultOptions() Options {
	opts := Options{
		Enabled: viper.GetBool(key.PipEnabled),
		Width:   viper.GetInt(key.PipWidth),
	}
	if opts.Width <= 0 {
		opts.Width = defaultPipWidth
	}
	return opts
}

// Window is the player window of the current session.
type Window struct {
	opts    Options
	channel *remote.Channel
	onExit  func()

	mu       sync.Mutex
	controls Controls
	cancel   context.CancelFunc
	inPip    bool
	saved    saved
	params   pip.Params
}

// saved is the window layout restored when PiP ends.
type saved struct {
	geometry   string
	fullscreen bool
}

// New returns a detached window. Button presses are sent as intents on
// channel; onExit is called when the user leaves PiP from the window.
func New(opts Options, channel *remote.Channel, onExit func()) *Window {
	return &Window{opts: opts, channel: channel, onExit: onExit}
}

// Attach binds the window to a running player and starts forwarding its messages.
func (w *Window) Attach(ctx context.Context, controls Controls) {
	w.Detach()

	ctx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	w.controls = controls
	w.cancel = cancel
	w.inPip = false
	w.mu.Unlock()

	go w.forward(ctx, controls.Messages())
}

// Detach stops driving the current player.
func (w *Window) Detach() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.controls = nil
	w.inPip = false
}

func (w *Window) forward(ctx context.Context, messages <-chan []string) {
	for {
		select {
		case <-ctx.Done():
			return
		case args := <-messages:
			w.HandleMessage(args)
		}
	}
}

// HandleMessage interprets one script message sent by the player window.
func (w *Window) HandleMessage(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case ActionMessage:
		if len(args) != 2 {
			log.Warnf("host: malformed action message %v", args)
			return
		}
		code, err := strconv.Atoi(args[1])
		if err != nil {
			log.Warnf("host: malformed action code %q", args[1])
			return
		}
		if w.channel != nil {
			w.channel.Send(remote.NewIntent(remote.Code(code)))
		}
	case PipMessage:
		if len(args) == 2 && args[1] == "exit" && w.onExit != nil {
			w.onExit()
		}
	}
}

// SupportsPip reports whether PiP is enabled and a player is attached and running.
func (w *Window) SupportsPip() bool {
	w.mu.Lock()
	controls := w.controls
	w.mu.Unlock()

	return w.opts.Enabled && controls != nil && controls.IsRunning()
}

// EnterPip shrinks the window to a borderless always-on-top corner window.
func (w *Window) EnterPip(params pip.Params) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.controls == nil {
		return ErrDetached
	}
	if w.inPip {
		return w.applyParamsLocked(params)
	}

	w.saved = w.layoutLocked()

	width := w.opts.Width
	height := width
	if ratio := params.AspectRatio.Float(); ratio > 0 {
		height = int(math.Round(float64(width) / ratio))
	}

	steps := []lo.Tuple2[string, interface{}]{
		lo.T2[string, interface{}]("fullscreen", false),
		lo.T2[string, interface{}]("ontop", true),
		lo.T2[string, interface{}]("border", false),
		lo.T2[string, interface{}]("geometry", fmt.Sprintf("%dx%d-%d-%d", width, height, pipMargin, pipMargin)),
	}
	for _, step := range steps {
		if err := w.controls.Set(step.A, step.B); err != nil {
			return fmt.Errorf("enter pip: set %s: %w", step.A, err)
		}
	}

	if err := w.controls.Command("keybind", exitKey, fmt.Sprintf("script-message %s exit", PipMessage)); err != nil {
		log.Warnf("host: bind pip exit key: %v", err)
	}

	w.inPip = true
	log.Infof("host: window in pip (%dx%d)", width, height)
	return w.applyParamsLocked(params)
}

// ExitPip restores the layout saved on entry.
func (w *Window) ExitPip() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.controls == nil || !w.inPip {
		return nil
	}
	w.inPip = false

	for _, k := range append([]string{exitKey}, buttonKeys...) {
		_ = w.controls.Command("keybind", k, "ignore")
	}

	if err := w.controls.Set("ontop", false); err != nil {
		return fmt.Errorf("exit pip: %w", err)
	}
	if err := w.controls.Set("border", true); err != nil {
		return fmt.Errorf("exit pip: %w", err)
	}
	if w.saved.geometry != "" {
		if err := w.controls.Set("geometry", w.saved.geometry); err != nil {
			return fmt.Errorf("exit pip: %w", err)
		}
	}
	if w.saved.fullscreen {
		return w.controls.Set("fullscreen", true)
	}
	return nil
}

// InPip reports whether the window currently is the PiP window.
func (w *Window) InPip() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inPip
}

// SetPipParams binds the buttons to the number keys and shows them on screen.
// Outside PiP the parameters are kept for the next entry.
func (w *Window) SetPipParams(params pip.Params) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.params = params
	if w.controls == nil || !w.inPip {
		return nil
	}
	return w.applyParamsLocked(params)
}

func (w *Window) applyParamsLocked(params pip.Params) error {
	w.params = params

	for i, action := range params.Actions {
		if i >= len(buttonKeys) {
			break
		}
		cmd := fmt.Sprintf("script-message %s %d", ActionMessage, int(action.Code))
		if err := w.controls.Command("keybind", buttonKeys[i], cmd); err != nil {
			return fmt.Errorf("bind %s: %w", action.Label, err)
		}
	}

	return w.controls.Command("show-text", OSDLine(params.Actions), osdDurationMs)
}

// OSDLine renders the button row shown on the PiP window.
func OSDLine(actions []pip.Action) string {
	parts := lo.Map(actions, func(a pip.Action, i int) string {
		label := strings.TrimSpace(icon.Get(a.Icon) + " " + a.Label)
		if i < len(buttonKeys) {
			return fmt.Sprintf("[%s] %s", buttonKeys[i], label)
		}
		return label
	})
	return strings.Join(parts, "   ")
}

func (w *Window) layoutLocked() saved {
	var s saved
	if v, err := w.controls.Get("geometry"); err == nil {
		s.geometry, _ = v.(string)
	}
	if v, err := w.controls.Get("fullscreen"); err == nil {
		s.fullscreen, _ = v.(bool)
	}
	return s
}

// SetBrightness maps a [0, 1] hint onto the player's -100..100 brightness.
func (w *Window) SetBrightness(level float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.controls == nil {
		return nil
	}
	return w.controls.Set("brightness", BrightnessValue(level))
}

// BrightnessValue converts a [0, 1] brightness hint to mpv's scale, 1 being unchanged.
func BrightnessValue(level float64) int {
	return int(math.Round(level*100)) - 100
}

// SetImmersive switches the player window in or out of fullscreen.
func (w *Window) SetImmersive(on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.controls == nil {
		return nil
	}
	return w.controls.Set("fullscreen", on)
}
