package chat

import (
	"io"
	"sync"
)

// Session is one connected chat participant. It wraps the connection's
// byte stream and owns the outbound half: all writes go through Send,
// which serializes them so concurrent routing operations never
// interleave bytes on the wire.
type Session struct {
	id   string // connection id, used in logs before a username exists
	name string // immutable once assigned by the handshake

	conn io.ReadWriteCloser

	writeMu sync.Mutex
	closed  bool

	closeOnce sync.Once
	closeErr  error
}

// NewSession wraps a connection stream. The session has no username
// until the registration handshake assigns one.
func NewSession(id string, conn io.ReadWriteCloser) *Session {
	return &Session{id: id, conn: conn}
}

// ID returns the connection identifier assigned at accept time.
func (s *Session) ID() string { return s.id }

// Name returns the username, or "" before registration completes.
func (s *Session) Name() string { return s.name }

// SetName assigns the username. Called exactly once before Register;
// never changes afterwards.
func (s *Session) SetName(name string) { s.name = name }

// Send writes one logical message as a newline-terminated line.
// Delivery is best effort: a non-nil error means the peer is gone and
// the caller should evict the session.
func (s *Session) Send(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	_, err := io.WriteString(s.conn, line+"\n")
	return err
}

// Close shuts the underlying stream. Safe to call from multiple
// teardown paths; only the first call closes the stream.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.closed = true
		s.writeMu.Unlock()
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
