// Package app is the hosting screen: it owns the current route, the playback
// session of the player screen and the PiP coordinator, and serializes every
// lifecycle callback onto one loop goroutine.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/nav"
	"github.com/vidplay-cli/vidplay/pip"
	"github.com/vidplay-cli/vidplay/playback"
	"github.com/vidplay-cli/vidplay/player"
	"github.com/vidplay-cli/vidplay/remote"
	"github.com/vidplay-cli/vidplay/util"
)

// ErrClosed is returned by calls made after the app stopped.
var ErrClosed = errors.New("app is closed")

// ErrNoSession is returned by WithSession outside the player screen.
var ErrNoSession = errors.New("no playback session")

// Host is the window the player screen is shown in.
type Host interface {
	pip.Host
	playback.Surface

	// ExitPip restores the normal window layout.
	ExitPip() error

	// Detach releases the window of a session that ended.
	Detach()
}

// Update is the state the presentation layer renders.
type Update struct {
	Route   nav.Route
	Session playback.Snapshot
	Active  bool
	Pip     pip.State
	Actions []pip.Action
}

type request struct {
	fn    func() error
	reply chan error
}

// App is the hosting screen.
type App struct {
	factory player.Factory
	host    Host
	channel *remote.Channel
	opts    playback.Options

	coordinator *pip.Coordinator
	receiver    int

	requests chan request
	updates  chan Update
	done     chan struct{}
	stop     sync.Once

	// owned by the loop goroutine
	ctx     context.Context
	route   nav.Route
	back    util.Stack[nav.Route]
	session *playback.Controller
	actions []pip.Action
}

// New builds the hosting screen on the library route and registers it for
// remote actions on channel.
func New(factory player.Factory, host Host, channel *remote.Channel, opts playback.Options) *App {
	a := &App{
		factory:     factory,
		host:        host,
		channel:     channel,
		opts:        opts,
		coordinator: pip.NewCoordinator(host),
		requests:    make(chan request),
		updates:     make(chan Update, 1),
		done:        make(chan struct{}),
		ctx:         context.Background(),
		route:       nav.Route{Screen: nav.Library},
	}

	a.receiver = channel.Register(a.OnNewIntent)
	return a
}

// Run serves lifecycle callbacks until ctx is done or Close is called.
func (a *App) Run(ctx context.Context) {
	a.ctx = ctx
	defer a.shutdown()

	for {
		var sessionUpdates <-chan playback.Snapshot
		if a.session != nil {
			sessionUpdates = a.session.Updates()
		}

		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case req := <-a.requests:
			req.reply <- req.fn()
		case snap := <-sessionUpdates:
			if err := a.coordinator.Handle(pip.PlaybackChanged{Playing: snap.Playing, Completed: snap.Completed}); err != nil {
				log.Warnf("app: mirror playback: %v", err)
			}
		case ev := <-a.coordinator.Events():
			if changed, ok := ev.(pip.ActionsChanged); ok {
				a.actions = changed.Actions
			}
		}

		a.publish()
	}
}

// do runs fn on the loop goroutine and returns its error.
func (a *App) do(fn func() error) error {
	req := request{fn: fn, reply: make(chan error, 1)}

	select {
	case a.requests <- req:
	case <-a.done:
		return ErrClosed
	}

	select {
	case err := <-req.reply:
		return err
	case <-a.done:
		return ErrClosed
	}
}

func (a *App) publish() {
	u := Update{
		Route:   a.route,
		Pip:     a.coordinator.State(),
		Actions: a.actions,
	}
	if a.session != nil {
		u.Session = a.session.Snapshot()
		u.Active = true
	}

	select {
	case <-a.updates:
	default:
	}
	select {
	case a.updates <- u:
	default:
	}
}

// Updates delivers the latest state after every change.
func (a *App) Updates() <-chan Update {
	return a.updates
}

// Navigate switches to route. Entering the player screen creates the playback
// session; a session that fails to start leaves the app on the previous screen.
func (a *App) Navigate(route string) error {
	target, err := nav.Parse(route)
	if err != nil {
		return err
	}

	return a.do(func() error {
		if err := a.enter(target); err != nil {
			return err
		}
		a.back.Push(a.route)
		a.route = target
		return nil
	})
}

// Back returns to the previous screen, reporting false when there is none.
func (a *App) Back() (bool, error) {
	var moved bool
	err := a.do(func() error {
		target, ok := a.back.Pop()
		if !ok {
			return nil
		}
		if err := a.enter(target); err != nil {
			return err
		}
		a.route = target
		moved = true
		return nil
	})
	return moved, err
}

// enter tears down the current session and builds the one target needs.
func (a *App) enter(target nav.Route) error {
	var next *playback.Controller
	if uri, ok := target.URI.Get(); ok && target.IsPlayer() {
		if a.session != nil && a.session.URI() == uri {
			return nil
		}

		// Release the previous engine before the new one takes the window.
		a.leaveSession()

		session, err := playback.New(a.ctx, uri, a.factory, a.host, a.opts)
		if err != nil {
			return fmt.Errorf("open player: %w", err)
		}
		next = session
	} else {
		a.leaveSession()
	}

	if next != nil {
		a.session = next
		if err := a.coordinator.Handle(pip.Bind{Session: next}); err != nil {
			return err
		}
		if err := next.Play(); err != nil {
			log.Warnf("app: start playback: %v", err)
		}
	}
	return nil
}

func (a *App) leaveSession() {
	if a.session == nil {
		return
	}

	if a.coordinator.State().InPipMode {
		if err := a.host.ExitPip(); err != nil {
			log.Warnf("app: restore window: %v", err)
		}
		if err := a.coordinator.Handle(pip.PipModeChanged{InPip: false}); err != nil {
			log.Warnf("app: leave pip: %v", err)
		}
	}

	if err := a.coordinator.Handle(pip.Unbind{}); err != nil {
		log.Warnf("app: unbind: %v", err)
	}
	if err := a.session.Close(); err != nil {
		log.Warnf("app: close session: %v", err)
	}
	a.host.Detach()
	a.session = nil
}

// WithSession runs fn against the playback session of the player screen.
func (a *App) WithSession(fn func(*playback.Controller) error) error {
	return a.do(func() error {
		if a.session == nil {
			return ErrNoSession
		}
		return fn(a.session)
	})
}

// OnUserLeaveHint reports the user sending the app to the background.
func (a *App) OnUserLeaveHint() error {
	return a.do(func() error {
		return a.coordinator.Handle(pip.UserLeaving{OnPlayerScreen: a.route.IsPlayer()})
	})
}

// OnPipModeChanged reports the window entering or leaving PiP.
func (a *App) OnPipModeChanged(inPip bool) error {
	return a.do(func() error {
		if !inPip && a.coordinator.State().InPipMode {
			if err := a.host.ExitPip(); err != nil {
				log.Warnf("app: restore window: %v", err)
			}
		}
		return a.coordinator.Handle(pip.PipModeChanged{InPip: inPip})
	})
}

// OnNewIntent dispatches the remote action carried by intent, if any.
func (a *App) OnNewIntent(intent remote.Intent) {
	code, ok := remote.CodeFrom(intent)
	if !ok {
		log.Debugf("app: ignoring intent %s without a valid action", intent.Action)
		return
	}

	err := a.do(func() error {
		return a.coordinator.Handle(pip.RemoteAction{Code: code})
	})
	if err != nil {
		log.Warnf("app: remote action %s: %v", code, err)
	}
}

// OnResume reports the app returning to the foreground.
func (a *App) OnResume() error {
	return a.do(func() error {
		return a.coordinator.Handle(pip.Resume{})
	})
}

// OnStop reports the app no longer being visible.
func (a *App) OnStop() error {
	return a.do(func() error {
		return a.coordinator.Handle(pip.Stop{OnPlayerScreen: a.route.IsPlayer()})
	})
}

// OnEngineExited reports engine going away on its own, e.g. its window was
// closed. If it still backs the player screen the app falls back to the
// previous screen; exits of engines already replaced are ignored.
func (a *App) OnEngineExited(engine player.Engine) {
	err := a.do(func() error {
		if a.session == nil || a.session.Engine() != engine {
			return nil
		}
		log.Infof("app: player for %s exited", a.session.URI())

		a.leaveSession()
		target, ok := a.back.Pop()
		if !ok || target.IsPlayer() {
			target = nav.Route{Screen: nav.Library}
		}
		a.route = target
		return nil
	})
	if err != nil && !errors.Is(err, ErrClosed) {
		log.Warnf("app: engine exit: %v", err)
	}
}

// Route returns the current route.
func (a *App) Route() nav.Route {
	var route nav.Route
	_ = a.do(func() error {
		route = a.route
		return nil
	})
	return route
}

// PipState returns the PiP state of the hosting screen.
func (a *App) PipState() pip.State {
	var state pip.State
	_ = a.do(func() error {
		state = a.coordinator.State()
		return nil
	})
	return state
}

// Close stops the loop, releases the session and unregisters the remote receiver.
func (a *App) Close() {
	a.stop.Do(func() {
		close(a.done)
	})
}

func (a *App) shutdown() {
	a.Close()
	a.leaveSession()
	a.unregister()
}

func (a *App) unregister() {
	if err := a.channel.Unregister(a.receiver); err != nil {
		log.Debugf("app: unregister remote receiver: %v", err)
	}
}
