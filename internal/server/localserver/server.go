package localserver

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
)

const (
	// maxLine bounds a single command line.
	maxLine = 4096
	// idleTimeout closes connections that send nothing.
	idleTimeout = 5 * time.Minute
)

// Server represents the local management server.
type Server struct {
	path     string
	handler  *Handler
	logger   logger.Logger
	listener net.Listener
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	running  atomic.Bool
	wg       sync.WaitGroup
}

// New creates a new local server.
func New(socketPath string, h *Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		path:    socketPath,
		handler: h,
		logger:  log,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen binds the socket. A stale socket file from a previous run is
// removed first. The socket is only accessible to its owner.
func (s *Server) Listen() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	l, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		l.Close()
		return err
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	return nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// ListenAndServe starts the local server.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Serve accepts connections on the bound socket until Shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.New("localserver: not listening")
	}

	s.running.Store(true)
	s.logger.Info("local admin socket listening", "path", s.path)

	for {
		conn, err := l.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.track(conn, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.handleConnection(conn)
		}()
	}
}

// Shutdown stops accepting connections, closes the idle ones and waits for
// in-flight commands to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	s.mu.Lock()
	var closeErr error
	bound := s.listener != nil
	if bound {
		closeErr = s.listener.Close()
	}
	for c := range s.conns {
		// Unblocks readers waiting for the next command.
		c.SetReadDeadline(time.Now())
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if bound {
			os.Remove(s.path)
		}
		if errors.Is(closeErr, net.ErrClosed) {
			return nil
		}
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) track(c net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 256), maxLine)
	w := bufio.NewWriter(conn)

	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		if !s.running.Load() || !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}

		s.logger.Info("local admin command", "command", fields[0])
		if err := s.handler.Execute(context.Background(), w, fields[0], fields[1:]); err != nil {
			s.logger.Warn("local admin write failed", "error", err)
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}
