package player

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	eventBufferSize   = 64
	messageBufferSize = 16
)

// MPV implements Engine using mpv's JSON-IPC protocol.
type MPV struct {
	bin        string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	done       chan struct{} // closed by Close
	mu         sync.Mutex    // protects socket writes
	requests   int           // last request_id, guarded by mu
	listener   *EventListener
	closeOnce  sync.Once

	stateMu  sync.RWMutex
	state    State
	paused   bool
	position int64
	duration int64

	events   chan Event
	messages chan []string
}

// NewMPV creates a new MPV engine that launches bin (does not start playback).
func NewMPV(bin string) *MPV {
	if bin == "" {
		bin = "mpv"
	}
	return &MPV{
		bin:      bin,
		exited:   make(chan struct{}),
		done:     make(chan struct{}),
		paused:   true,
		duration: DurationUnknown,
		events:   make(chan Event, eventBufferSize),
		messages: make(chan []string, messageBufferSize),
	}
}

// NewFactory returns a Factory that opens every URI in its own mpv process.
// onOpen, when set, sees each engine once it is running.
func NewFactory(bin string, onOpen func(m *MPV)) Factory {
	return func(ctx context.Context, uri string) (Engine, error) {
		m := NewMPV(bin)
		if err := m.Open(ctx, uri); err != nil {
			return nil, err
		}
		if onOpen != nil {
			onOpen(m)
		}
		return m, nil
	}
}

// Open launches mpv paused on the given media target and subscribes to its events.
func (m *MPV) Open(ctx context.Context, rawURL string) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if m.socketPath == "" {
		dir, err := where.Runtime()
		if err != nil {
			return fmt.Errorf("socket directory: %w", err)
		}
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(dir, fmt.Sprintf("mpv-%x.sock", randomBytes))
	}

	// Only the socket and window behaviour are forced; the user's mpv.conf
	// stays in charge of decoding and output.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--keep-open=yes",
		"--pause=yes",
		"--",
		target,
	}

	m.cmd = exec.Command(m.bin, args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(ctx); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd.Process)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(m.socketPath, m.handleEvent)
	if err := m.listener.Start(); err != nil {
		_ = m.Close()
		return err
	}

	log.Infof("mpv launched on socket %s for %s", m.socketPath, target)
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// handleEvent folds mpv notifications into the cached state and the event feed.
func (m *MPV) handleEvent(name string, data interface{}) {
	switch name {
	case "time-pos":
		if secs, ok := data.(float64); ok {
			m.stateMu.Lock()
			m.position = secondsToMs(secs)
			m.stateMu.Unlock()
		}
	case "duration":
		secs, ok := data.(float64)
		if !ok {
			return
		}
		m.stateMu.Lock()
		m.duration = secondsToMs(secs)
		if m.state == StateIdle {
			m.state = StateReady
		}
		ev := m.stateEventLocked()
		m.stateMu.Unlock()
		m.emit(ev)
	case "pause":
		paused, ok := data.(bool)
		if !ok {
			return
		}
		m.stateMu.Lock()
		m.paused = paused
		ev := m.stateEventLocked()
		m.stateMu.Unlock()
		m.emit(ev)
	case "eof-reached":
		eof, _ := data.(bool)
		m.stateMu.Lock()
		switch {
		case eof:
			m.state = StateEnded
		case m.state == StateEnded:
			m.state = StateReady
		default:
			m.stateMu.Unlock()
			return
		}
		ev := m.stateEventLocked()
		m.stateMu.Unlock()
		m.emit(ev)
	case "paused-for-cache":
		stalled, _ := data.(bool)
		m.stateMu.Lock()
		switch {
		case stalled:
			m.state = StateBuffering
		case m.state == StateBuffering:
			m.state = StateReady
		default:
			m.stateMu.Unlock()
			return
		}
		ev := m.stateEventLocked()
		m.stateMu.Unlock()
		m.emit(ev)
	case "sub-text":
		text, _ := data.(string)
		var cues []string
		if text = strings.TrimSpace(text); text != "" {
			cues = []string{text}
		}
		m.emit(CuesChanged{Cues: cues})
	case "playback-restart":
		m.emit(PositionChanged{Position: m.Position()})
	case "client-message":
		event, _ := data.(map[string]interface{})
		rawArgs, _ := event["args"].([]interface{})
		args := make([]string, 0, len(rawArgs))
		for _, a := range rawArgs {
			args = append(args, fmt.Sprint(a))
		}
		select {
		case m.messages <- args:
		default:
			log.Warnf("mpv client message dropped: %v", args)
		}
	}
}

func (m *MPV) stateEventLocked() StateChanged {
	return StateChanged{
		State:   m.state,
		Playing: !m.paused && m.state != StateEnded,
	}
}

// emit appends ev to the feed, giving up once the engine is closed.
func (m *MPV) emit(ev Event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

// Events returns the engine event feed.
func (m *MPV) Events() <-chan Event {
	return m.events
}

// Messages returns the arguments of script-message commands broadcast by mpv,
// e.g. from key bindings installed on the player window.
func (m *MPV) Messages() <-chan []string {
	return m.messages
}

// Play resumes playback.
func (m *MPV) Play() error {
	return m.Set("pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause() error {
	return m.Set("pause", true)
}

// Seek moves playback to the given absolute position.
func (m *MPV) Seek(ms int64) error {
	_, err := m.sendCommand([]interface{}{"seek", float64(ms) / 1000, "absolute"})
	if err == nil {
		m.stateMu.Lock()
		m.position = ms
		m.stateMu.Unlock()
	}
	return err
}

// SetVolume maps a [0, 1] level onto mpv's 0-100 volume scale.
func (m *MPV) SetVolume(level float64) error {
	return m.Set("volume", level*100)
}

// Position queries the current position, falling back to the last observed value.
func (m *MPV) Position() int64 {
	if secs, err := m.getFloatProperty("time-pos"); err == nil {
		m.stateMu.Lock()
		m.position = secondsToMs(secs)
		m.stateMu.Unlock()
	}

	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.position
}

// Duration returns the media length once mpv reported it.
func (m *MPV) Duration() int64 {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.duration
}

// State returns the cached lifecycle state.
func (m *MPV) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// IsPlaying reports whether mpv is unpaused on unfinished media.
func (m *MPV) IsPlaying() bool {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return !m.paused && m.state != StateEnded
}

// Title returns mpv's media-title, which falls back to the file name.
func (m *MPV) Title() (string, error) {
	data, err := m.sendCommand([]interface{}{"get_property", "media-title"})
	if err != nil {
		return "", err
	}
	title, ok := data.(string)
	if !ok || strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("property media-title: empty response")
	}
	return sanitizeTitle(title), nil
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.sendCommand([]interface{}{"get_property", "pid"})
	return err == nil
}

// Set assigns an mpv property.
func (m *MPV) Set(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// Get reads an mpv property.
func (m *MPV) Get(property string) (interface{}, error) {
	return m.sendCommand([]interface{}{"get_property", property})
}

// Command runs an arbitrary mpv input command.
func (m *MPV) Command(args ...interface{}) error {
	_, err := m.sendCommand(args)
	return err
}

// Close shuts down the mpv process and cleans up resources. It is safe to call more than once.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)

		if m.listener != nil {
			m.listener.Stop()
		}

		if m.cmd == nil {
			return
		}

		_, _ = m.sendCommand([]interface{}{"quit"})

		select {
		case <-m.exited:
		case <-time.After(3 * time.Second):
			_ = killProcess(m.cmd.Process)
		}

		_ = os.Remove(m.socketPath)
	})
	return nil
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

func secondsToMs(secs float64) int64 {
	return int64(secs * 1000)
}

// sanitizeMediaTarget validates that a URI is safe to pass to mpv. file://
// URIs are converted to local paths.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "file":
			return filepath.Clean(u.Path), nil
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle collapses whitespace control characters in a title.
func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
