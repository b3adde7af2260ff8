package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidplay-cli/vidplay/nav"
	"github.com/vidplay-cli/vidplay/pip"
	"github.com/vidplay-cli/vidplay/playback"
	"github.com/vidplay-cli/vidplay/player"
	"github.com/vidplay-cli/vidplay/player/playertest"
	"github.com/vidplay-cli/vidplay/remote"
)

type fakeHost struct {
	mu       sync.Mutex
	entered  int
	exited   int
	detached int
	pushed   []pip.Params
}

func (h *fakeHost) SupportsPip() bool { return true }

func (h *fakeHost) EnterPip(pip.Params) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entered++
	return nil
}

func (h *fakeHost) SetPipParams(p pip.Params) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushed = append(h.pushed, p)
	return nil
}

func (h *fakeHost) ExitPip() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exited++
	return nil
}

func (h *fakeHost) Detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detached++
}

func (h *fakeHost) SetBrightness(float64) error { return nil }
func (h *fakeHost) SetImmersive(bool) error     { return nil }

var opts = playback.Options{SeekStep: 10 * time.Second, PollInterval: time.Hour, Volume: 0.5}

const clip = "file:///videos/clip.mp4"

func startApp(factory player.Factory, host *fakeHost, channel *remote.Channel) (*App, func()) {
	a := New(factory, host, channel, opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()
	return a, func() {
		cancel()
		<-done
	}
}

func TestNavigation(t *testing.T) {
	Convey("Given an app on the library screen", t, func() {
		engine := playertest.New(120000)
		host := &fakeHost{}
		a, stop := startApp(engine.Factory(), host, remote.NewChannel())
		defer stop()

		So(a.Route().Screen, ShouldEqual, nav.Library)

		Convey("Opening a player route starts a playing session", func() {
			So(a.Navigate(nav.PlayerRoute(clip)), ShouldBeNil)
			So(a.Route().IsPlayer(), ShouldBeTrue)
			So(a.Route().URI.MustGet(), ShouldEqual, clip)

			var snap playback.Snapshot
			So(a.WithSession(func(c *playback.Controller) error {
				snap = c.Snapshot()
				return nil
			}), ShouldBeNil)
			So(snap.URI, ShouldEqual, clip)
			So(snap.Playing, ShouldBeTrue)

			Convey("Going back releases the engine", func() {
				moved, err := a.Back()
				So(err, ShouldBeNil)
				So(moved, ShouldBeTrue)
				So(a.Route().Screen, ShouldEqual, nav.Library)
				So(engine.Closed(), ShouldEqual, 1)
				So(a.WithSession(func(*playback.Controller) error { return nil }), ShouldEqual, ErrNoSession)

				moved, err = a.Back()
				So(err, ShouldBeNil)
				So(moved, ShouldBeFalse)
			})

			Convey("The player closing on its own returns to the library", func() {
				a.OnEngineExited(engine)
				So(a.Route().Screen, ShouldEqual, nav.Library)
				So(host.detached, ShouldBeGreaterThan, 0)
			})
		})

		Convey("A late exit of a replaced engine leaves the new session alone", func() {
			first, second := playertest.New(120000), playertest.New(120000)
			engines := []*playertest.Engine{first, second}
			factory := func(context.Context, string) (player.Engine, error) {
				next := engines[0]
				engines = engines[1:]
				return next, nil
			}

			b, stopB := startApp(factory, &fakeHost{}, remote.NewChannel())
			defer stopB()

			So(b.Navigate(nav.PlayerRoute(clip)), ShouldBeNil)
			_, err := b.Back()
			So(err, ShouldBeNil)
			So(b.Navigate(nav.PlayerRoute(clip)), ShouldBeNil)

			b.OnEngineExited(first)
			So(b.Route().IsPlayer(), ShouldBeTrue)
			So(second.Closed(), ShouldEqual, 0)

			b.OnEngineExited(second)
			So(b.Route().Screen, ShouldEqual, nav.Library)
			So(second.Closed(), ShouldEqual, 1)
		})

		Convey("A failing engine keeps the app where it was", func() {
			b, stopB := startApp(playertest.FailingFactory(errors.New("no mpv")), host, remote.NewChannel())
			defer stopB()

			So(b.Navigate(nav.PlayerRoute(clip)), ShouldNotBeNil)
			So(b.Route().Screen, ShouldEqual, nav.Library)
		})

		Convey("Malformed routes are rejected", func() {
			So(a.Navigate("player/"), ShouldNotBeNil)
		})
	})
}

func TestLifecycle(t *testing.T) {
	Convey("Given an app playing a paused video", t, func() {
		engine := playertest.New(120000)
		engine.SetPosition(60000)
		host := &fakeHost{}
		channel := remote.NewChannel()
		a, stop := startApp(engine.Factory(), host, channel)
		defer stop()

		So(a.Navigate(nav.PlayerRoute(clip)), ShouldBeNil)
		So(a.WithSession(func(c *playback.Controller) error { return c.TogglePlayPause() }), ShouldBeNil)

		Convey("Leaving the app enters PiP and auto-plays", func() {
			So(a.OnUserLeaveHint(), ShouldBeNil)
			So(a.PipState().InPipMode, ShouldBeTrue)
			So(host.entered, ShouldEqual, 1)
			So(engine.IsPlaying(), ShouldBeTrue)

			Convey("PiP buttons arrive through the remote channel", func() {
				channel.Send(remote.NewIntent(remote.Rewind))
				So(engine.Position(), ShouldEqual, 50000)

				channel.Send(remote.NewIntent(remote.Pause))
				So(engine.IsPlaying(), ShouldBeFalse)
			})

			Convey("Malformed intents are ignored", func() {
				channel.Send(remote.Intent{Action: remote.ActionPipControl})
				So(engine.Position(), ShouldEqual, 60000)
			})

			Convey("Leaving PiP restores the window and pauses again", func() {
				So(a.OnPipModeChanged(false), ShouldBeNil)
				So(a.PipState().InPipMode, ShouldBeFalse)
				So(host.exited, ShouldEqual, 1)
				So(engine.IsPlaying(), ShouldBeFalse)
			})

			Convey("Resuming re-pushes the actions", func() {
				before := len(host.pushed)
				So(a.OnResume(), ShouldBeNil)
				So(len(host.pushed), ShouldEqual, before+1)
			})
		})

		Convey("Leaving from the library does not enter PiP", func() {
			_, err := a.Back()
			So(err, ShouldBeNil)
			So(a.OnUserLeaveHint(), ShouldBeNil)
			So(a.PipState().InPipMode, ShouldBeFalse)
		})

		Convey("Stopping outside PiP clears the playing mirror", func() {
			So(a.OnStop(), ShouldBeNil)
			So(a.PipState().VideoPlaying, ShouldBeFalse)
		})
	})
}

func TestRemoteWithoutSession(t *testing.T) {
	Convey("A rewind press with no session is a safe no-op", t, func() {
		channel := remote.NewChannel()
		a, stop := startApp(playertest.New(1000).Factory(), &fakeHost{}, channel)
		defer stop()

		channel.Send(remote.NewIntent(remote.Rewind))
		So(a.PipState(), ShouldResemble, pip.State{})
	})
}

func TestClose(t *testing.T) {
	Convey("Given a running app with a session", t, func() {
		engine := playertest.New(1000)
		channel := remote.NewChannel()
		a, stop := startApp(engine.Factory(), &fakeHost{}, channel)
		So(a.Navigate(nav.PlayerRoute(clip)), ShouldBeNil)
		So(channel.Len(), ShouldEqual, 1)

		Convey("Stopping releases the session and the receiver", func() {
			stop()
			So(engine.Closed(), ShouldEqual, 1)
			So(channel.Len(), ShouldEqual, 0)

			Convey("A second unregister is tolerated", func() {
				So(channel.Unregister(a.receiver), ShouldEqual, remote.ErrNotRegistered)
				a.unregister()
			})

			Convey("Calls after close fail fast", func() {
				a.Close()
				So(a.OnResume(), ShouldEqual, ErrClosed)
				channel.Send(remote.NewIntent(remote.Play))
			})
		})
	})
}

func TestUpdates(t *testing.T) {
	Convey("The latest state is published after changes", t, func() {
		engine := playertest.New(120000)
		a, stop := startApp(engine.Factory(), &fakeHost{}, remote.NewChannel())
		defer stop()

		So(a.Navigate(nav.PlayerRoute(clip)), ShouldBeNil)

		deadline := time.After(2 * time.Second)
		for {
			select {
			case u := <-a.Updates():
				if u.Active && u.Session.Playing && u.Pip.VideoPlaying {
					So(u.Route.IsPlayer(), ShouldBeTrue)
					return
				}
			case <-deadline:
				So("no update with a playing session", ShouldBeEmpty)
				return
			}
		}
	})
}
