package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

type ipcCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int           `json:"request_id,omitempty"`
}

// ipcReply is any line mpv writes back. Broadcast events share the
// connection with replies and carry Event instead of RequestID.
type ipcReply struct {
	Event     string      `json:"event"`
	RequestID int         `json:"request_id"`
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`
}

const (
	commandAttempts = 3
	commandBackoff  = 100 * time.Millisecond
	replyTimeout    = time.Second
	readBufSize     = 4096
)

var errRejected = errors.New("mpv rejected the command")

// sendCommand runs command over a fresh IPC connection. Connection failures
// are retried; an mpv-side error is returned at once.
func (m *MPV) sendCommand(command []interface{}) (interface{}, error) {
	select {
	case <-m.exited:
		return nil, ErrNotRunning
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	for attempt := 1; attempt <= commandAttempts; attempt++ {
		m.requests++
		var data interface{}
		data, err = roundTrip(m.socketPath, ipcCommand{Command: command, RequestID: m.requests})
		if err == nil || errors.Is(err, errRejected) {
			return data, err
		}
		if attempt < commandAttempts {
			time.Sleep(commandBackoff)
		}
	}

	return nil, fmt.Errorf("%v failed after %d attempts: %w", command[0], commandAttempts, err)
}

// roundTrip writes one command and waits for the reply with its request id.
func roundTrip(socketPath string, command ipcCommand) (interface{}, error) {
	conn, err := net.DialTimeout("unix", socketPath, replyTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(replyTimeout)); err != nil {
		return nil, err
	}

	if err := json.NewEncoder(conn).Encode(command); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	decoder := json.NewDecoder(conn)
	for {
		var reply ipcReply
		if err := decoder.Decode(&reply); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		if reply.Event != "" || reply.RequestID != command.RequestID {
			continue
		}
		if reply.Error != "" && reply.Error != "success" {
			return nil, fmt.Errorf("%w: %s", errRejected, reply.Error)
		}
		return reply.Data, nil
	}
}
