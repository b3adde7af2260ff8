package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/vidplay-cli/vidplay/log"
)

const (
	readDeadline = 5 * time.Second
	dialTimeout  = 1 * time.Second
)

// reply is the JSON line written back for every intent received.
type reply struct {
	Error string `json:"error"`
}

// Server accepts newline-delimited JSON intents on a private unix socket and
// forwards them to a Channel.
type Server struct {
	socketPath string
	channel    *Channel
	listener   net.Listener
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// Listen binds socketPath and starts serving until ctx is done or Close is called.
// socketPath must sit in a directory only the current user can enter. A stale
// socket left by a crashed process is replaced; any other file is refused.
func Listen(ctx context.Context, socketPath string, channel *Channel) (*Server, error) {
	if info, err := os.Lstat(socketPath); err == nil {
		if info.Mode()&os.ModeSocket == 0 {
			return nil, fmt.Errorf("%s exists and is not a socket", socketPath)
		}
		if conn, err := net.DialTimeout("unix", socketPath, dialTimeout); err == nil {
			conn.Close()
			return nil, fmt.Errorf("another player is already listening on %s", socketPath)
		}
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", socketPath, err)
	}

	if err := os.Chmod(socketPath, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("restrict socket: %w", err)
	}

	s := &Server{
		socketPath: socketPath,
		channel:    channel,
		listener:   listener,
	}

	s.wg.Add(1)
	go s.acceptLoop()

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	log.Infof("remote action server listening on %s", socketPath)
	return s, nil
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.listener.Close()
		s.wg.Wait()
		_ = os.Remove(s.socketPath)
	})
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Warnf("remote accept: %v", err)
			}
			return
		}

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	encoder := json.NewEncoder(conn)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			return
		}
		if !scanner.Scan() {
			return
		}

		var intent Intent
		if err := json.Unmarshal(scanner.Bytes(), &intent); err != nil {
			log.Warnf("remote: malformed intent: %v", err)
			_ = encoder.Encode(reply{Error: "malformed intent"})
			continue
		}

		s.channel.Send(intent)
		_ = encoder.Encode(reply{Error: "success"})
	}
}

// Send delivers one intent to the server listening on socketPath.
func Send(socketPath string, intent Intent) error {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	var resp reply
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("read reply: %w", err)
	}

	if resp.Error != "success" {
		return fmt.Errorf("remote error: %s", resp.Error)
	}
	return nil
}
