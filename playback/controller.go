// Package playback implements the playback session: the single source of truth
// for one media item, mediating between user intents and the player engine.
package playback

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/player"
	"github.com/vidplay-cli/vidplay/util"
)

// Surface is the hosting display the session applies presentation hints to.
type Surface interface {
	// SetBrightness applies a brightness hint in [0, 1].
	SetBrightness(level float64) error

	// SetImmersive enters or leaves the immersive (fullscreen) display mode.
	SetImmersive(on bool) error
}

// Controller owns one engine bound to one media URI.
type Controller struct {
	uri     string
	engine  player.Engine
	surface Surface
	opts    Options
	logger  log.Entry

	mu                  sync.Mutex
	title               string
	playing             bool
	position            int64
	duration            int64
	volume              float64
	brightness          float64
	fullscreen          bool
	hasSubtitles        bool
	subtitle            string
	completed           bool
	inPip               bool
	wasPlayingBeforePip bool

	// The playing state last commanded, held until the engine reports it.
	expectPlaying bool
	expectUntil   time.Time

	updates   chan Snapshot
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New builds a session for uri. Engine construction failures are returned
// unrecovered. surface may be nil when there is no display to drive.
func New(ctx context.Context, uri string, factory player.Factory, surface Surface, opts Options) (*Controller, error) {
	engine, err := factory(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("create engine for %s: %w", uri, err)
	}

	opts = opts.normalized()
	c := &Controller{
		uri:        uri,
		engine:     engine,
		surface:    surface,
		opts:       opts,
		logger:     log.For("playback").With("uri", uri),
		duration:   engine.Duration(),
		brightness: 1,
		updates:    make(chan Snapshot, 1),
	}

	c.title = c.resolveTitle()

	if err := engine.SetVolume(opts.Volume); err != nil {
		c.logger.Warnf("apply initial volume: %v", err)
	}
	c.volume = opts.Volume

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(2)
	go c.pollPosition(loopCtx)
	go c.foldEvents(loopCtx)

	c.logger.Infof("session started (%q)", c.title)
	return c, nil
}

func (c *Controller) resolveTitle() string {
	title, err := c.engine.Title()
	if err != nil {
		c.logger.Warnf("resolve title: %v", err)
		return FallbackTitle
	}
	if title = strings.TrimSpace(title); title == "" {
		return FallbackTitle
	}
	return title
}

// URI returns the media URI the session is bound to.
func (c *Controller) URI() string {
	return c.uri
}

// Engine returns the engine the session drives.
func (c *Controller) Engine() player.Engine {
	return c.engine
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Updates delivers the latest snapshot after every change. Intermediate
// snapshots are dropped when the reader falls behind.
func (c *Controller) Updates() <-chan Snapshot {
	return c.updates
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		URI:                 c.uri,
		Title:               c.title,
		Playing:             c.playing,
		Position:            c.position,
		Duration:            c.duration,
		Volume:              c.volume,
		Brightness:          c.brightness,
		Fullscreen:          c.fullscreen,
		HasSubtitles:        c.hasSubtitles,
		Subtitle:            c.subtitle,
		Completed:           c.completed,
		InPip:               c.inPip,
		WasPlayingBeforePip: c.wasPlayingBeforePip,
	}
}

// publishLocked replaces any unread snapshot with the current one.
func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
}

// Play resumes playback and records the intent to keep playing.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playLocked(true)
}

// AutoPlay resumes playback without recording it as the user's intent.
func (c *Controller) AutoPlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playLocked(false)
}

func (c *Controller) playLocked(intended bool) error {
	if c.playing {
		return nil
	}

	if c.engine.State() == player.StateEnded {
		if err := c.engine.Seek(0); err != nil {
			return fmt.Errorf("rewind ended media: %w", err)
		}
		c.position = 0
	}

	if err := c.engine.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	c.expectLocked(true)

	c.playing = true
	c.completed = false
	if intended {
		c.wasPlayingBeforePip = true
	}
	c.publishLocked()
	return nil
}

// Pause suspends playback. The recorded play intent is left untouched.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pauseLocked()
}

func (c *Controller) pauseLocked() error {
	if !c.playing {
		return nil
	}

	if err := c.engine.Pause(); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	c.expectLocked(false)

	c.playing = false
	c.publishLocked()
	return nil
}

// TogglePlayPause flips between playing and paused, or replays finished media.
// It is refused while in PiP.
func (c *Controller) TogglePlayPause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inPip {
		c.logger.Debugf("toggle play/pause refused in pip")
		return nil
	}

	if c.engine.State() == player.StateEnded {
		return c.replayLocked()
	}

	if c.playing {
		if err := c.pauseLocked(); err != nil {
			return err
		}
		c.wasPlayingBeforePip = false
		return nil
	}

	return c.playLocked(true)
}

// Replay restarts the media from the beginning.
func (c *Controller) Replay() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replayLocked()
}

func (c *Controller) replayLocked() error {
	if err := c.engine.Seek(0); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if err := c.engine.Play(); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	c.expectLocked(true)

	c.position = 0
	c.playing = true
	c.completed = false
	c.wasPlayingBeforePip = false
	c.publishLocked()
	return nil
}

// SeekTo jumps to an absolute position. It is refused while in PiP.
func (c *Controller) SeekTo(ms int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inPip {
		c.logger.Debugf("seek refused in pip")
		return nil
	}

	if err := c.engine.Seek(ms); err != nil {
		return fmt.Errorf("seek to %d: %w", ms, err)
	}

	c.position = c.engine.Position()
	c.publishLocked()
	return nil
}

// Rewind moves back by the seek step, never before the start.
func (c *Controller) Rewind() error {
	return c.skip(-c.opts.SeekStep.Milliseconds())
}

// Forward moves ahead by the seek step, never past the end.
func (c *Controller) Forward() error {
	return c.skip(c.opts.SeekStep.Milliseconds())
}

func (c *Controller) skip(delta int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.engine.Position() + delta
	if target < 0 {
		target = 0
	}
	if duration := c.knownDurationLocked(); duration != player.DurationUnknown && target > duration {
		target = duration
	}

	if err := c.engine.Seek(target); err != nil {
		return fmt.Errorf("seek to %d: %w", target, err)
	}

	c.position = target
	c.publishLocked()
	return nil
}

func (c *Controller) knownDurationLocked() int64 {
	if c.duration < 0 {
		c.duration = c.engine.Duration()
	}
	return c.duration
}

// SetVolume applies a volume level, clamped to [0, 1].
func (c *Controller) SetVolume(level float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setVolumeLocked(level)
}

// IncreaseVolume raises the volume by one step.
func (c *Controller) IncreaseVolume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setVolumeLocked(stepped(c.volume + volumeStep))
}

// DecreaseVolume lowers the volume by one step.
func (c *Controller) DecreaseVolume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setVolumeLocked(stepped(c.volume - volumeStep))
}

// stepped drops the float error that repeated 0.1 steps accumulate.
func stepped(level float64) float64 {
	return math.Round(level*100) / 100
}

func (c *Controller) setVolumeLocked(level float64) error {
	if math.IsNaN(level) {
		level = c.volume
	}
	level = util.Clamp(level, 0, 1)

	if err := c.engine.SetVolume(level); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}

	c.volume = level
	c.publishLocked()
	return nil
}

// SetBrightness applies a display brightness hint. It is refused while in PiP.
func (c *Controller) SetBrightness(level float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inPip {
		c.logger.Debugf("brightness change refused in pip")
		return nil
	}
	if math.IsNaN(level) {
		return nil
	}

	level = util.Clamp(level, 0, 1)
	if c.surface != nil {
		if err := c.surface.SetBrightness(level); err != nil {
			return fmt.Errorf("set brightness: %w", err)
		}
	}

	c.brightness = level
	c.publishLocked()
	return nil
}

// ToggleFullscreen enters or leaves the immersive display mode. It is refused while in PiP.
func (c *Controller) ToggleFullscreen() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inPip {
		c.logger.Debugf("fullscreen toggle refused in pip")
		return nil
	}

	next := !c.fullscreen
	if c.surface != nil {
		if err := c.surface.SetImmersive(next); err != nil {
			return fmt.Errorf("toggle fullscreen: %w", err)
		}
	}

	c.fullscreen = next
	c.publishLocked()
	return nil
}

// SnapshotBeforePip records whether playback was running just before PiP entry.
func (c *Controller) SnapshotBeforePip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wasPlayingBeforePip = c.playing
}

// SetInPipMode records a PiP transition. Leaving PiP pauses playback again
// when it only ran because PiP entry started it.
func (c *Controller) SetInPipMode(enter bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enter {
		c.inPip = true
		c.publishLocked()
		return nil
	}

	var err error
	if !c.wasPlayingBeforePip && c.playing {
		err = c.pauseLocked()
	}

	c.inPip = false
	c.publishLocked()
	return err
}

// Apply folds one engine event into the session state.
func (c *Controller) Apply(ev player.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := ev.(type) {
	case player.PositionChanged:
		c.position = ev.Position
	case player.StateChanged:
		c.applyStateLocked(ev)
	case player.CuesChanged:
		c.hasSubtitles = len(ev.Cues) > 0
		c.subtitle = ""
		if c.hasSubtitles {
			c.subtitle = ev.Cues[0]
		}
	default:
		return
	}

	c.publishLocked()
}

func (c *Controller) applyStateLocked(ev player.StateChanged) {
	switch ev.State {
	case player.StateEnded:
		c.playing = false
		c.completed = true
		c.wasPlayingBeforePip = false
		if c.duration >= 0 {
			c.position = c.duration
		}
		c.expectUntil = time.Time{}
		return
	case player.StateReady:
		if d := c.engine.Duration(); d != player.DurationUnknown {
			c.duration = d
		}
	}

	// While a command is in flight the engine is only catching up with it,
	// possibly through intermediate states.
	if time.Now().Before(c.expectUntil) {
		if ev.Playing == c.expectPlaying {
			c.expectUntil = time.Time{}
		}
		return
	}

	// A resume the session did not issue came from the engine's own controls.
	if ev.Playing && !c.playing {
		c.wasPlayingBeforePip = true
		c.completed = false
	}
	c.playing = ev.Playing
}

func (c *Controller) expectLocked(playing bool) {
	c.expectPlaying = playing
	c.expectUntil = time.Now().Add(echoWindow)
}

func (c *Controller) foldEvents(ctx context.Context) {
	defer c.wg.Done()

	events := c.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.Apply(ev)
		}
	}
}

func (c *Controller) pollPosition(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			position := c.engine.Position()

			c.mu.Lock()
			if ctx.Err() == nil && position != c.position {
				c.position = position
				c.publishLocked()
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the background loops and releases the engine. Later calls are no-ops.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.wg.Wait()
		c.closeErr = c.engine.Close()
		c.logger.Infof("session released")
	})
	return c.closeErr
}
