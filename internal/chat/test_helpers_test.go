package chat

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// fakeConn is an in-memory stream: Read serves scripted input, Write
// captures outbound lines. failSend simulates a broken pipe.
type fakeConn struct {
	mu       sync.Mutex
	out      bytes.Buffer
	in       io.Reader
	closed   bool
	failSend bool
}

func newFakeConn(input string) *fakeConn {
	return &fakeConn{in: strings.NewReader(input)}
}

func (f *fakeConn) Read(p []byte) (int, error) {
	if f.in == nil {
		return 0, io.EOF
	}
	return f.in.Read(p)
}

func (f *fakeConn) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return 0, syscall.EPIPE
	}
	return f.out.Write(p)
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) setFailSend(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSend = fail
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// lines returns every newline-terminated message written so far.
func (f *fakeConn) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw := strings.TrimRight(f.out.String(), "\n")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// contains reports whether any captured output includes substr.
func (f *fakeConn) contains(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Contains(f.out.String(), substr)
}

func newTestRouter(t *testing.T) (*Router, *Registry) {
	t.Helper()

	logger := zerolog.Nop()
	metrics := NewMetrics(prometheus.NewRegistry())
	registry := NewRegistry()
	router := NewRouter(registry, &logger, metrics)
	router.now = func() time.Time {
		return time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)
	}
	return router, registry
}

func newTestHandler(t *testing.T) (*Handler, *Registry) {
	t.Helper()

	logger := zerolog.Nop()
	metrics := NewMetrics(prometheus.NewRegistry())
	registry := NewRegistry()
	router := NewRouter(registry, &logger, metrics)
	return NewHandler(registry, router, &logger, metrics, 1024), registry
}

// addSession registers a named session backed by a fakeConn with no
// scripted input.
func addSession(t *testing.T, registry *Registry, name string) (*Session, *fakeConn) {
	t.Helper()

	fc := newFakeConn("")
	sess := NewSession(name+"-conn", fc)
	sess.SetName(name)
	if err := registry.Register(sess); err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return sess, fc
}
