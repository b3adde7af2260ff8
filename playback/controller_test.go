package playback

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidplay-cli/vidplay/player"
	"github.com/vidplay-cli/vidplay/player/playertest"
)

type fakeSurface struct {
	brightness []float64
	immersive  []bool
}

func (s *fakeSurface) SetBrightness(level float64) error {
	s.brightness = append(s.brightness, level)
	return nil
}

func (s *fakeSurface) SetImmersive(on bool) error {
	s.immersive = append(s.immersive, on)
	return nil
}

// quiet keeps the poll loop out of the way of synchronous assertions.
var quiet = Options{SeekStep: 10 * time.Second, PollInterval: time.Hour, Volume: 0.5}

func newSession(engine *playertest.Engine, surface Surface) *Controller {
	c, err := New(context.Background(), "file:///videos/clip.mp4", engine.Factory(), surface, quiet)
	So(err, ShouldBeNil)
	return c
}

func TestNew(t *testing.T) {
	Convey("Given an engine factory", t, func() {
		Convey("A session resolves the title and applies the initial volume", func() {
			engine := playertest.New(120000).WithTitle("Holiday")
			c := newSession(engine, nil)
			defer c.Close()

			snap := c.Snapshot()
			So(snap.Title, ShouldEqual, "Holiday")
			So(snap.Volume, ShouldEqual, 0.5)
			So(snap.Duration, ShouldEqual, 120000)
			So(snap.Playing, ShouldBeFalse)
			So(engine.Volume(), ShouldEqual, 0.5)
		})

		Convey("A failed title lookup falls back to the default title", func() {
			c := newSession(playertest.New(1000).WithTitle(""), nil)
			defer c.Close()
			So(c.Snapshot().Title, ShouldEqual, FallbackTitle)
		})

		Convey("Engine construction failures propagate", func() {
			boom := errors.New("no decoder")
			c, err := New(context.Background(), "file:///x.mp4", playertest.FailingFactory(boom), nil, quiet)
			So(c, ShouldBeNil)
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})
}

func TestPlayPause(t *testing.T) {
	Convey("Given a paused session", t, func() {
		engine := playertest.New(60000)
		c := newSession(engine, nil)
		defer c.Close()

		Convey("Any play/pause sequence ends in the state of its last call", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 200; i++ {
				var want bool
				if rng.Intn(2) == 0 {
					So(c.Play(), ShouldBeNil)
					want = true
				} else {
					So(c.Pause(), ShouldBeNil)
					want = false
				}
				So(c.Snapshot().Playing, ShouldEqual, want)
				So(engine.IsPlaying(), ShouldEqual, want)
			}
		})

		Convey("Play records the intent to keep playing and pause leaves it", func() {
			So(c.Play(), ShouldBeNil)
			So(c.Snapshot().WasPlayingBeforePip, ShouldBeTrue)
			So(c.Pause(), ShouldBeNil)
			So(c.Snapshot().WasPlayingBeforePip, ShouldBeTrue)
		})

		Convey("Toggle flips the state and the recorded intent", func() {
			So(c.TogglePlayPause(), ShouldBeNil)
			So(c.Snapshot().Playing, ShouldBeTrue)
			So(c.Snapshot().WasPlayingBeforePip, ShouldBeTrue)

			So(c.TogglePlayPause(), ShouldBeNil)
			So(c.Snapshot().Playing, ShouldBeFalse)
			So(c.Snapshot().WasPlayingBeforePip, ShouldBeFalse)
		})

		Convey("Play on ended media starts over", func() {
			engine.Finish()
			So(c.Play(), ShouldBeNil)
			So(engine.Position(), ShouldEqual, 0)
			So(c.Snapshot().Position, ShouldEqual, 0)
		})
	})
}

func TestSeeking(t *testing.T) {
	Convey("Given a session at 45s of a 120s video", t, func() {
		engine := playertest.New(120000)
		engine.SetPosition(45000)
		c := newSession(engine, nil)
		defer c.Close()

		Convey("Rewind goes back ten seconds and nine forwards stop at the end", func() {
			So(c.Rewind(), ShouldBeNil)
			So(c.Snapshot().Position, ShouldEqual, 35000)

			for i := 0; i < 9; i++ {
				So(c.Forward(), ShouldBeNil)
			}
			So(c.Snapshot().Position, ShouldEqual, 120000)
		})

		Convey("SeekTo forwards the position to the engine", func() {
			So(c.SeekTo(90000), ShouldBeNil)
			So(c.Snapshot().Position, ShouldEqual, 90000)
		})
	})

	Convey("Rewind and forward stay within [0, duration]", t, func() {
		rng := rand.New(rand.NewSource(11))
		for i := 0; i < 100; i++ {
			duration := rng.Int63n(300000)
			engine := playertest.New(duration)
			engine.SetPosition(rng.Int63n(duration + 1))
			c := newSession(engine, nil)

			So(c.Rewind(), ShouldBeNil)
			So(c.Snapshot().Position, ShouldBeGreaterThanOrEqualTo, 0)

			engine.SetPosition(rng.Int63n(duration + 1))
			So(c.Forward(), ShouldBeNil)
			So(c.Snapshot().Position, ShouldBeLessThanOrEqualTo, duration)

			So(c.Close(), ShouldBeNil)
		}
	})

	Convey("Forward has no upper bound while the duration is unknown", t, func() {
		engine := playertest.New(player.DurationUnknown)
		c := newSession(engine, nil)
		defer c.Close()

		So(c.Forward(), ShouldBeNil)
		So(c.Snapshot().Position, ShouldEqual, 10000)
	})
}

func TestVolume(t *testing.T) {
	Convey("Given a session", t, func() {
		engine := playertest.New(1000)
		c := newSession(engine, nil)
		defer c.Close()

		Convey("Out-of-range levels are clamped", func() {
			So(c.SetVolume(3), ShouldBeNil)
			So(c.Snapshot().Volume, ShouldEqual, 1)
			So(c.SetVolume(-2), ShouldBeNil)
			So(c.Snapshot().Volume, ShouldEqual, 0)
		})

		Convey("Steps move by a tenth", func() {
			So(c.IncreaseVolume(), ShouldBeNil)
			So(c.Snapshot().Volume, ShouldEqual, 0.6)
			So(c.DecreaseVolume(), ShouldBeNil)
			So(c.DecreaseVolume(), ShouldBeNil)
			So(c.Snapshot().Volume, ShouldEqual, 0.4)
			So(engine.Volume(), ShouldEqual, 0.4)
		})

		Convey("A level set directly is kept as given", func() {
			So(c.SetVolume(0.123), ShouldBeNil)
			So(c.Snapshot().Volume, ShouldEqual, 0.123)
			So(engine.Volume(), ShouldEqual, 0.123)
		})

		Convey("Any sequence keeps the volume within [0, 1]", func() {
			rng := rand.New(rand.NewSource(3))
			for i := 0; i < 300; i++ {
				switch rng.Intn(3) {
				case 0:
					So(c.IncreaseVolume(), ShouldBeNil)
				case 1:
					So(c.DecreaseVolume(), ShouldBeNil)
				default:
					So(c.SetVolume(rng.Float64()*4-2), ShouldBeNil)
				}
				v := c.Snapshot().Volume
				So(v, ShouldBeBetweenOrEqual, 0, 1)
			}
		})
	})
}

func TestSurfaceHints(t *testing.T) {
	Convey("Given a session on a surface", t, func() {
		surface := &fakeSurface{}
		c := newSession(playertest.New(1000), surface)
		defer c.Close()

		Convey("Brightness is clamped and applied to the surface", func() {
			So(c.SetBrightness(1.7), ShouldBeNil)
			So(c.Snapshot().Brightness, ShouldEqual, 1)
			So(c.SetBrightness(0.3), ShouldBeNil)
			So(surface.brightness, ShouldResemble, []float64{1, 0.3})
		})

		Convey("Fullscreen toggles immersive mode", func() {
			So(c.ToggleFullscreen(), ShouldBeNil)
			So(c.Snapshot().Fullscreen, ShouldBeTrue)
			So(c.ToggleFullscreen(), ShouldBeNil)
			So(c.Snapshot().Fullscreen, ShouldBeFalse)
			So(surface.immersive, ShouldResemble, []bool{true, false})
		})
	})
}

func TestPipPolicy(t *testing.T) {
	Convey("Given a session in PiP", t, func() {
		surface := &fakeSurface{}
		engine := playertest.New(120000)
		engine.SetPosition(30000)
		c := newSession(engine, surface)
		defer c.Close()

		Convey("Toggling play/pause never changes the state", func() {
			for _, playing := range []bool{true, false} {
				if playing {
					So(c.Play(), ShouldBeNil)
				} else {
					So(c.Pause(), ShouldBeNil)
				}
				So(c.SetInPipMode(true), ShouldBeNil)

				before := c.Snapshot()
				So(c.TogglePlayPause(), ShouldBeNil)
				So(c.Snapshot(), ShouldResemble, before)

				c.mu.Lock()
				c.inPip = false
				c.mu.Unlock()
			}
		})

		Convey("Seek, brightness and fullscreen are refused", func() {
			So(c.SetInPipMode(true), ShouldBeNil)
			before := c.Snapshot()

			So(c.SeekTo(5000), ShouldBeNil)
			So(c.SetBrightness(0.2), ShouldBeNil)
			So(c.ToggleFullscreen(), ShouldBeNil)

			So(c.Snapshot(), ShouldResemble, before)
			So(engine.Position(), ShouldEqual, 30000)
			So(surface.brightness, ShouldBeEmpty)
			So(surface.immersive, ShouldBeEmpty)
		})

		Convey("Rewind and forward stay available", func() {
			So(c.SetInPipMode(true), ShouldBeNil)
			So(c.Forward(), ShouldBeNil)
			So(c.Snapshot().Position, ShouldEqual, 40000)
			So(c.Rewind(), ShouldBeNil)
			So(c.Snapshot().Position, ShouldEqual, 30000)
		})
	})
}

func enterPip(c *Controller) {
	c.SnapshotBeforePip()
	So(c.AutoPlay(), ShouldBeNil)
	So(c.SetInPipMode(true), ShouldBeNil)
}

func TestPipRoundTrip(t *testing.T) {
	Convey("Given a session", t, func() {
		engine := playertest.New(120000)
		c := newSession(engine, nil)
		defer c.Close()

		Convey("PiP auto-play is reverted on exit when playback was paused", func() {
			enterPip(c)
			So(c.Snapshot().Playing, ShouldBeTrue)
			So(c.Snapshot().InPip, ShouldBeTrue)

			So(c.SetInPipMode(false), ShouldBeNil)
			So(c.Snapshot().Playing, ShouldBeFalse)
			So(engine.IsPlaying(), ShouldBeFalse)
			So(c.Snapshot().InPip, ShouldBeFalse)
		})

		Convey("Playback that was running keeps running after exit", func() {
			So(c.Play(), ShouldBeNil)
			enterPip(c)
			So(c.SetInPipMode(false), ShouldBeNil)
			So(c.Snapshot().Playing, ShouldBeTrue)
		})

		Convey("An explicit play inside PiP is kept after exit", func() {
			enterPip(c)
			So(c.Pause(), ShouldBeNil)
			So(c.Play(), ShouldBeNil)
			So(c.SetInPipMode(false), ShouldBeNil)
			So(c.Snapshot().Playing, ShouldBeTrue)
		})

		Convey("The engine confirming the auto-play is not taken as intent", func() {
			enterPip(c)
			c.Apply(player.StateChanged{State: player.StateReady, Playing: true})
			So(c.SetInPipMode(false), ShouldBeNil)
			So(c.Snapshot().Playing, ShouldBeFalse)
		})

		Convey("Finished media restarted by PiP entry is paused again on exit", func() {
			c.Apply(engine.Finish())
			enterPip(c)
			So(c.Snapshot().WasPlayingBeforePip, ShouldBeFalse)

			// Rewinding clears end-of-file while the engine is still paused,
			// then the unpause lands.
			c.Apply(player.StateChanged{State: player.StateReady, Playing: false})
			So(c.Snapshot().Playing, ShouldBeTrue)
			c.Apply(player.StateChanged{State: player.StateReady, Playing: true})
			So(c.Snapshot().WasPlayingBeforePip, ShouldBeFalse)

			So(c.SetInPipMode(false), ShouldBeNil)
			So(c.Snapshot().Playing, ShouldBeFalse)
			So(engine.IsPlaying(), ShouldBeFalse)
		})

		Convey("Replay in PiP stays unintended through the engine's echoes", func() {
			enterPip(c)
			So(c.Replay(), ShouldBeNil)
			c.Apply(player.StateChanged{State: player.StateReady, Playing: false})
			c.Apply(player.StateChanged{State: player.StateReady, Playing: true})
			So(c.Snapshot().WasPlayingBeforePip, ShouldBeFalse)

			So(c.SetInPipMode(false), ShouldBeNil)
			So(c.Snapshot().Playing, ShouldBeFalse)
		})

		Convey("A resume long after the last command counts as intent", func() {
			enterPip(c)
			c.mu.Lock()
			c.expectUntil = time.Now().Add(-time.Second)
			c.playing = false
			c.mu.Unlock()

			c.Apply(player.StateChanged{State: player.StateReady, Playing: true})
			So(c.Snapshot().WasPlayingBeforePip, ShouldBeTrue)

			So(c.SetInPipMode(false), ShouldBeNil)
			So(c.Snapshot().Playing, ShouldBeTrue)
		})
	})
}

func TestEventFold(t *testing.T) {
	Convey("Given a playing session", t, func() {
		engine := playertest.New(120000)
		c := newSession(engine, nil)
		defer c.Close()
		So(c.Play(), ShouldBeNil)
		c.Apply(player.StateChanged{State: player.StateReady, Playing: true})

		Convey("Reaching the end stops and marks the session completed", func() {
			c.Apply(engine.Finish())

			snap := c.Snapshot()
			So(snap.Playing, ShouldBeFalse)
			So(snap.Completed, ShouldBeTrue)
			So(snap.WasPlayingBeforePip, ShouldBeFalse)

			Convey("Toggling then replays from the start", func() {
				So(c.TogglePlayPause(), ShouldBeNil)

				snap := c.Snapshot()
				So(snap.Position, ShouldEqual, 0)
				So(snap.Playing, ShouldBeTrue)
				So(snap.Completed, ShouldBeFalse)
				So(snap.WasPlayingBeforePip, ShouldBeFalse)
			})
		})

		Convey("Position jumps are taken as reported", func() {
			c.Apply(player.PositionChanged{Position: 7000})
			So(c.Snapshot().Position, ShouldEqual, 7000)
		})

		Convey("Cues drive the subtitle line", func() {
			c.Apply(player.CuesChanged{Cues: []string{"Hello", "there"}})
			So(c.Snapshot().HasSubtitles, ShouldBeTrue)
			So(c.Snapshot().Subtitle, ShouldEqual, "Hello")

			c.Apply(player.CuesChanged{})
			So(c.Snapshot().HasSubtitles, ShouldBeFalse)
			So(c.Snapshot().Subtitle, ShouldBeEmpty)
		})

		Convey("A pause from the engine's own controls is mirrored", func() {
			c.Apply(player.StateChanged{State: player.StateReady, Playing: false})
			So(c.Snapshot().Playing, ShouldBeFalse)

			Convey("and so is a resume, which counts as intent", func() {
				So(c.Pause(), ShouldBeNil)
				c.mu.Lock()
				c.wasPlayingBeforePip = false
				c.mu.Unlock()

				c.Apply(player.StateChanged{State: player.StateReady, Playing: true})
				So(c.Snapshot().Playing, ShouldBeTrue)
				So(c.Snapshot().WasPlayingBeforePip, ShouldBeTrue)
			})
		})

		Convey("Events on the feed are folded in the background", func() {
			engine.Emit(player.CuesChanged{Cues: []string{"Async"}})
			So(waitFor(func() bool { return c.Snapshot().Subtitle == "Async" }), ShouldBeTrue)
		})
	})
}

func TestBackgroundLoops(t *testing.T) {
	Convey("Given a session polling every few milliseconds", t, func() {
		engine := playertest.New(120000)
		opts := quiet
		opts.PollInterval = 5 * time.Millisecond
		c, err := New(context.Background(), "file:///clip.mp4", engine.Factory(), nil, opts)
		So(err, ShouldBeNil)

		Convey("The position follows the engine", func() {
			engine.SetPosition(5000)
			So(waitFor(func() bool { return c.Snapshot().Position == 5000 }), ShouldBeTrue)
			So(c.Close(), ShouldBeNil)
		})

		Convey("Updates carry the latest snapshot", func() {
			So(c.SetVolume(0.1), ShouldBeNil)
			So(c.SetVolume(0.9), ShouldBeNil)

			var last Snapshot
			So(waitFor(func() bool {
				select {
				case last = <-c.Updates():
				default:
				}
				return last.Volume == 0.9
			}), ShouldBeTrue)
			So(c.Close(), ShouldBeNil)
		})

		Convey("Close stops polling and releases the engine once", func() {
			So(c.Close(), ShouldBeNil)
			So(c.Close(), ShouldBeNil)
			So(engine.Closed(), ShouldEqual, 1)

			engine.SetPosition(9000)
			time.Sleep(30 * time.Millisecond)
			So(c.Snapshot().Position, ShouldNotEqual, 9000)
		})
	})
}

func TestSnapshotProgress(t *testing.T) {
	Convey("Progress is a bounded fraction", t, func() {
		So(Snapshot{Position: 30, Duration: 120}.Progress(), ShouldEqual, 0.25)
		So(Snapshot{Position: 30, Duration: player.DurationUnknown}.Progress(), ShouldEqual, 0)
		So(Snapshot{Position: 300, Duration: 120}.Progress(), ShouldEqual, 1)
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}
