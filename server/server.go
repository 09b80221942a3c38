package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/volatixdb/volatix/storage"
)

// idleTimeout bounds how long a connection may sit between frames before
// the handler tears it down. It is generous by design: the suspension
// points named in the concurrency model are socket I/O, the snapshot
// timer, and lock acquisition, not an aggressive keepalive.
const idleTimeout = 10 * time.Minute

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Server accepts TCP connections and runs one Client goroutine per
// connection, all sharing the single storage engine passed to NewServer.
type Server struct {
	engine *storage.Engine
	addr   string
	logger storage.Logger

	listener net.Listener
	clients  sync.Map // map[net.Conn]*Client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	connCount    atomic.Int64
	commandCount atomic.Int64
	errorCount   atomic.Int64
}

// Option configures a Server built by NewServer.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger storage.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a Server bound to addr, dispatching every command
// against engine. The server is not listening until Start is called.
func NewServer(addr string, engine *storage.Engine, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		engine: engine,
		addr:   addr,
		logger: noopLogger{},
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the listening socket and begins accepting connections in the
// background. It returns once the listener is bound, matching the fatal
// startup rule in the spec's exit-code table (port bind failure is fatal to
// the caller, not silently retried).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the server's actual listening address (useful when addr was
// ":0").
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop stops accepting new connections, closes every live connection, and
// waits for their goroutines to exit.
func (s *Server) Stop() error {
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.clients.Range(func(_, value any) bool {
		value.(*Client).close()
		return true
	})
	s.wg.Wait()
	return nil
}

// Stats returns the server-level connection/command/error counters; the
// engine's own Stats are not included.
func (s *Server) Stats() map[string]int64 {
	clientCount := int64(0)
	s.clients.Range(func(_, _ any) bool {
		clientCount++
		return true
	})
	return map[string]int64{
		"connected_clients": clientCount,
		"total_connections": s.connCount.Load(),
		"total_commands":    s.commandCount.Load(),
		"total_errors":      s.errorCount.Load(),
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}
		s.connCount.Add(1)
		s.startClient(conn)
	}
}

func (s *Server) startClient(conn net.Conn) {
	ctx, cancel := context.WithCancel(s.ctx)
	c := newClient(conn, s, ctx, cancel)
	s.clients.Store(conn, c)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		c.run()
	}()
}
