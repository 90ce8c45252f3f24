// Package server owns the TCP listener lifecycle: the accept loop
// spawning one handler goroutine per connection, and the coordinated
// shutdown that notifies and closes every live session.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/yksanjo/chat-app-tcp/internal/chat"
	"github.com/yksanjo/chat-app-tcp/internal/config"
)

const shutdownNotice = "[SYSTEM]: Server is shutting down. Goodbye!"

// Server accepts TCP chat connections and hands each one to the chat
// handler on its own goroutine.
type Server struct {
	cfg      config.Config
	registry *chat.Registry
	handler  *chat.Handler
	log      *zerolog.Logger

	ln       net.Listener
	wg       sync.WaitGroup
	stopping atomic.Bool
	stopOnce sync.Once
}

// New builds a TCP server over the shared registry and handler.
func New(cfg config.Config, registry *chat.Registry, handler *chat.Handler, logger *zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		registry: registry,
		handler:  handler,
		log:      logger,
	}
}

// Start binds the listener and launches the accept loop. It returns
// once the server is accepting connections.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	s.ln = ln
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Int("max_sessions", s.cfg.MaxSessions).
		Msg("tcp chat server listening")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(ln)
	}()
	return nil
}

// Addr returns the bound listener address; useful when ListenAddr
// requested an ephemeral port.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Run starts the server and blocks until ctx is cancelled, then stops.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop drains the registry, notifies every session, closes all
// streams and the listener, and waits (bounded) for handlers to exit.
// Safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.stopping.Store(true)
		s.log.Info().Msg("shutting down tcp server")

		for _, sess := range s.registry.Drain() {
			if err := sess.Send(shutdownNotice); err != nil {
				s.log.Debug().Err(err).Str("user", sess.Name()).Msg("shutdown notice failed")
			}
			_ = sess.Close()
		}

		if s.ln != nil {
			_ = s.ln.Close()
		}

		// Handlers stuck mid-handshake hold no session to close, so
		// bound the wait instead of blocking shutdown on them.
		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(s.cfg.ShutdownTimeout):
			s.log.Warn().Msg("timed out waiting for connection handlers")
		}

		s.log.Info().Msg("tcp server stopped")
	})
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.stopping.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		if s.cfg.MaxSessions > 0 && s.registry.Len() >= s.cfg.MaxSessions {
			s.log.Warn().
				Str("remote", conn.RemoteAddr().String()).
				Msg("rejecting connection, server full")
			_, _ = conn.Write([]byte("[SYSTEM]: Server is full. Try again later.\n"))
			_ = conn.Close()
			continue
		}

		s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("new connection")

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handler.Handle(c, c.RemoteAddr().String())
		}(conn)
	}
}
