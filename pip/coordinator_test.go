package pip

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidplay-cli/vidplay/playback"
	"github.com/vidplay-cli/vidplay/player/playertest"
	"github.com/vidplay-cli/vidplay/remote"
)

type fakeHost struct {
	supported bool
	enterErr  error
	entered   []Params
	pushed    []Params
}

func (h *fakeHost) SupportsPip() bool { return h.supported }

func (h *fakeHost) EnterPip(p Params) error {
	if h.enterErr != nil {
		return h.enterErr
	}
	h.entered = append(h.entered, p)
	return nil
}

func (h *fakeHost) SetPipParams(p Params) error {
	h.pushed = append(h.pushed, p)
	return nil
}

func (h *fakeHost) lastMiddle() remote.Code {
	return h.pushed[len(h.pushed)-1].Actions[1].Code
}

func newController(engine *playertest.Engine) *playback.Controller {
	opts := playback.Options{SeekStep: 10 * time.Second, PollInterval: time.Hour, Volume: 0.5}
	c, err := playback.New(context.Background(), "file:///videos/clip.mp4", engine.Factory(), nil, opts)
	So(err, ShouldBeNil)
	return c
}

func codes(actions []Action) []remote.Code {
	out := make([]remote.Code, len(actions))
	for i, a := range actions {
		out[i] = a.Code
	}
	return out
}

func TestBuildActions(t *testing.T) {
	Convey("The action set depends only on completed and playing", t, func() {
		So(codes(BuildActions(true, true)), ShouldResemble, []remote.Code{remote.Rewind, remote.Replay, remote.Forward})
		So(codes(BuildActions(true, false)), ShouldResemble, []remote.Code{remote.Rewind, remote.Replay, remote.Forward})
		So(codes(BuildActions(false, true)), ShouldResemble, []remote.Code{remote.Rewind, remote.Pause, remote.Forward})
		So(codes(BuildActions(false, false)), ShouldResemble, []remote.Code{remote.Rewind, remote.Play, remote.Forward})

		So(BuildActions(false, true), ShouldResemble, BuildActions(false, true))
	})

	Convey("Each action carries a label and its own request identifier", t, func() {
		seen := map[int]bool{}
		for _, code := range remote.Codes() {
			a := NewAction(code)
			So(a.Label, ShouldNotBeEmpty)
			So(seen[a.RequestID], ShouldBeFalse)
			seen[a.RequestID] = true
		}
	})

	Convey("The window asks for a 16:9 shape", t, func() {
		p := BuildParams(false, false)
		So(p.AspectRatio, ShouldResemble, Rational{Num: 16, Den: 9})
		So(p.AspectRatio.Float(), ShouldAlmostEqual, 16.0/9.0)
	})
}

func TestCoordinatorTransitions(t *testing.T) {
	Convey("Given a coordinator bound to a paused session", t, func() {
		host := &fakeHost{supported: true}
		engine := playertest.New(120000)
		session := newController(engine)
		defer session.Close()

		c := NewCoordinator(host)
		So(c.Handle(Bind{Session: session}), ShouldBeNil)

		Convey("Leaving outside the player screen keeps normal mode", func() {
			So(c.Handle(UserLeaving{OnPlayerScreen: false}), ShouldBeNil)
			So(c.State().InPipMode, ShouldBeFalse)
			So(host.entered, ShouldBeEmpty)
		})

		Convey("Leaving on the player screen enters PiP and auto-plays", func() {
			So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)

			So(host.entered, ShouldHaveLength, 1)
			So(c.State(), ShouldResemble, State{InPipMode: true, VideoPlaying: true})
			So(session.Snapshot().Playing, ShouldBeTrue)
			So(session.Snapshot().InPip, ShouldBeTrue)
			So(host.lastMiddle(), ShouldEqual, remote.Pause)
			So(<-c.Events(), ShouldResemble, ModeChanged{InPip: true})

			Convey("Leaving PiP reverts the auto-play", func() {
				So(c.Handle(PipModeChanged{InPip: false}), ShouldBeNil)
				So(c.State().InPipMode, ShouldBeFalse)
				So(session.Snapshot().Playing, ShouldBeFalse)
				So(engine.IsPlaying(), ShouldBeFalse)
			})

			Convey("Leaving again while in PiP changes nothing", func() {
				So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)
				So(host.entered, ShouldHaveLength, 1)
			})
		})

		Convey("Playback running before PiP keeps running after it", func() {
			So(session.Play(), ShouldBeNil)
			So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)
			So(c.Handle(PipModeChanged{InPip: false}), ShouldBeNil)
			So(session.Snapshot().Playing, ShouldBeTrue)
		})

		Convey("Without PiP support entry is skipped silently", func() {
			host.supported = false
			So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)
			So(c.State().InPipMode, ShouldBeFalse)
			So(session.Snapshot().Playing, ShouldBeFalse)
		})

		Convey("A host refusing PiP leaves playback untouched", func() {
			host.enterErr = errors.New("denied")
			So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)
			So(c.State().InPipMode, ShouldBeFalse)
			So(session.Snapshot().Playing, ShouldBeFalse)
		})

		Convey("A refused entry keeps the recorded play intent", func() {
			So(session.Play(), ShouldBeNil)
			So(session.Pause(), ShouldBeNil)
			So(session.Snapshot().WasPlayingBeforePip, ShouldBeTrue)

			host.enterErr = errors.New("denied")
			So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)
			So(session.Snapshot().WasPlayingBeforePip, ShouldBeTrue)
		})

		Convey("The host entering PiP on its own runs the same transition", func() {
			So(c.Handle(PipModeChanged{InPip: true}), ShouldBeNil)
			So(host.entered, ShouldBeEmpty)
			So(c.State().InPipMode, ShouldBeTrue)
			So(session.Snapshot().Playing, ShouldBeTrue)
		})

		Convey("State persists across a full enter/exit cycle", func() {
			So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)
			So(c.Handle(RemoteAction{Code: remote.Replay}), ShouldBeNil)
			So(c.Handle(PipModeChanged{InPip: false}), ShouldBeNil)
			So(c.State().VideoPlaying, ShouldBeFalse)
			So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)
			So(c.State().InPipMode, ShouldBeTrue)
		})
	})
}

func TestCoordinatorDispatch(t *testing.T) {
	Convey("Given a coordinator in PiP", t, func() {
		host := &fakeHost{supported: true}
		engine := playertest.New(120000)
		engine.SetPosition(60000)
		session := newController(engine)
		defer session.Close()

		c := NewCoordinator(host)
		So(c.Handle(Bind{Session: session}), ShouldBeNil)
		So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)
		pushed := len(host.pushed)

		Convey("Pause pauses and shows play", func() {
			So(c.Handle(RemoteAction{Code: remote.Pause}), ShouldBeNil)
			So(session.Snapshot().Playing, ShouldBeFalse)
			So(host.pushed, ShouldHaveLength, pushed+1)
			So(host.lastMiddle(), ShouldEqual, remote.Play)

			Convey("Play resumes and shows pause", func() {
				So(c.Handle(RemoteAction{Code: remote.Play}), ShouldBeNil)
				So(session.Snapshot().Playing, ShouldBeTrue)
				So(host.lastMiddle(), ShouldEqual, remote.Pause)
			})
		})

		Convey("Rewind and forward move without refreshing the buttons", func() {
			So(c.Handle(RemoteAction{Code: remote.Rewind}), ShouldBeNil)
			So(session.Snapshot().Position, ShouldEqual, 50000)
			So(c.Handle(RemoteAction{Code: remote.Forward}), ShouldBeNil)
			So(session.Snapshot().Position, ShouldEqual, 60000)
			So(host.pushed, ShouldHaveLength, pushed)
		})

		Convey("Completion shows replay, and replay restarts", func() {
			session.Apply(engine.Finish())
			snap := session.Snapshot()
			So(c.Handle(PlaybackChanged{Playing: snap.Playing, Completed: snap.Completed}), ShouldBeNil)
			So(host.lastMiddle(), ShouldEqual, remote.Replay)

			So(c.Handle(RemoteAction{Code: remote.Replay}), ShouldBeNil)
			So(session.Snapshot().Position, ShouldEqual, 0)
			So(session.Snapshot().Playing, ShouldBeTrue)
			So(c.State().VideoCompleted, ShouldBeFalse)
			So(host.lastMiddle(), ShouldEqual, remote.Pause)
		})

		Convey("Unknown codes are ignored", func() {
			So(c.Handle(RemoteAction{Code: remote.Code(9)}), ShouldBeNil)
			So(host.pushed, ShouldHaveLength, pushed)
		})

		Convey("Resume re-pushes the current action set", func() {
			So(c.Handle(Resume{}), ShouldBeNil)
			So(host.pushed, ShouldHaveLength, pushed+1)
		})
	})

	Convey("Given a coordinator with no session", t, func() {
		host := &fakeHost{supported: true}
		c := NewCoordinator(host)

		Convey("A rewind press is a safe no-op", func() {
			before := c.State()
			So(c.Handle(RemoteAction{Code: remote.Rewind}), ShouldBeNil)
			So(c.State(), ShouldResemble, before)
			So(host.pushed, ShouldBeEmpty)
		})

		Convey("Leaving the player screen cannot enter PiP", func() {
			So(c.Handle(UserLeaving{OnPlayerScreen: true}), ShouldBeNil)
			So(c.State().InPipMode, ShouldBeFalse)
		})
	})
}

func TestCoordinatorRun(t *testing.T) {
	Convey("Commands sent to Run are handled in order", t, func() {
		host := &fakeHost{supported: true}
		session := newController(playertest.New(120000))
		defer session.Close()

		c := NewCoordinator(host)
		cmds := make(chan Command)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			c.Run(ctx, cmds)
			close(done)
		}()

		cmds <- Bind{Session: session}
		cmds <- UserLeaving{OnPlayerScreen: true}
		cmds <- Stop{OnPlayerScreen: true}
		close(cmds)
		<-done
		cancel()

		So(c.State().InPipMode, ShouldBeTrue)
		So(c.State().VideoPlaying, ShouldBeTrue)
	})

	Convey("Stop outside PiP clears the playing mirror", t, func() {
		c := NewCoordinator(&fakeHost{})
		So(c.Handle(PlaybackChanged{Playing: true}), ShouldBeNil)
		So(c.Handle(Stop{OnPlayerScreen: true}), ShouldBeNil)
		So(c.State().VideoPlaying, ShouldBeFalse)
	})
}
