package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/rowdb/rowd/internal/auth"
	"github.com/rowdb/rowd/internal/config"
	"github.com/rowdb/rowd/internal/engine"
)

// Server accepts TCP connections and runs one handler goroutine per
// connection. Handlers share nothing; the only shared state here is the
// connection registry used to force sockets closed on Stop.
type Server struct {
	cfg           config.Config
	logger        *zap.Logger
	authenticator auth.Authenticator
	executor      engine.Executor

	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

func New(cfg config.Config, logger *zap.Logger, authenticator auth.Authenticator, executor engine.Executor) *Server {
	return &Server{
		cfg:           cfg,
		logger:        logger,
		authenticator: authenticator,
		executor:      executor,
		quit:          make(chan struct{}),
		conns:         make(map[net.Conn]struct{}),
	}
}

// Listen binds the configured address. Kept separate from Serve so callers
// (and tests, which bind port 0) know the port before any client dials.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr(), err)
	}
	s.listener = listener
	s.logger.Info("listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve starts the accept loop in its own goroutine and returns. The loop
// only accepts and spawns, it never blocks on connection I/O.
func (s *Server) Serve(ctx context.Context) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.quit:
					return
				default:
					s.logger.Warn("failed to accept incoming connection", zap.Error(err))
					continue
				}
			}

			s.wg.Add(1)
			go func(tcpConn net.Conn) {
				defer s.wg.Done()

				s.track(tcpConn)
				defer s.untrack(tcpConn)

				s.handle(ctx, tcpConn)
			}(conn)
		}
	}()
}

// Stop closes the listener and every live connection, then waits for all
// handlers to finish.
func (s *Server) Stop() {
	close(s.quit)
	s.listener.Close()

	s.connMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
}

func (s *Server) track(conn net.Conn) {
	s.connMu.Lock()
	s.conns[conn] = struct{}{}
	s.connMu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.connMu.Lock()
	delete(s.conns, conn)
	s.connMu.Unlock()
}
