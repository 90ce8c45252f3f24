package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// connState tracks where a connection is in its lifecycle.
type connState int

const (
	stateConnected connState = iota
	stateAwaitingUsername
	stateActive
	stateClosing
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateConnected:
		return "connected"
	case stateAwaitingUsername:
		return "awaiting_username"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	banner         = "Welcome to the chat server!"
	usernamePrompt = "Enter your username:"

	helpText = `
Available commands:
  /help              - Show this help message
  /users             - List online users
  /whisper <user> <msg> - Send private message to user
  /quit              - Disconnect from server

To send a regular message, just type and press Enter.`
)

// Handler runs the per-connection protocol: registration handshake,
// command dispatch, message loop, teardown. One Handle call serves one
// connection from accept to close, regardless of transport.
type Handler struct {
	registry  *Registry
	router    *Router
	log       *zerolog.Logger
	metrics   *Metrics
	readLimit int
}

// NewHandler builds a connection handler. readLimit caps the length of
// a single inbound line in bytes.
func NewHandler(registry *Registry, router *Router, logger *zerolog.Logger, metrics *Metrics, readLimit int) *Handler {
	if readLimit <= 0 {
		readLimit = bufio.MaxScanTokenSize
	}
	return &Handler{
		registry:  registry,
		router:    router,
		log:       logger,
		metrics:   metrics,
		readLimit: readLimit,
	}
}

// Handle drives one connection through the state machine and blocks
// until the connection is torn down. All I/O errors terminate the
// connection, never the process.
func (h *Handler) Handle(stream io.ReadWriteCloser, remote string) {
	h.metrics.ConnectionsTotal.Inc()

	sess := NewSession(uuid.NewString(), stream)
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, h.readLimit), h.readLimit)

	logger := h.log.With().
		Str("conn_id", sess.ID()).
		Str("remote", remote).
		Logger()

	c := &conn{
		h:       h,
		sess:    sess,
		scanner: scanner,
		log:     logger,
		state:   stateConnected,
	}
	defer c.close()

	c.setState(stateAwaitingUsername)
	if !c.greet() {
		return
	}
	if !c.awaitUsername() {
		return
	}

	c.setState(stateActive)
	c.activeLoop()
}

// conn is the state a handler keeps for a single connection.
type conn struct {
	h       *Handler
	sess    *Session
	scanner *bufio.Scanner
	log     zerolog.Logger

	state      connState
	registered bool
	teardown   sync.Once
}

// greet sends the banner and the username prompt as two separate
// logical messages.
func (c *conn) greet() bool {
	if err := c.sess.Send(banner); err != nil {
		c.log.Debug().Err(err).Msg("failed to send banner")
		return false
	}
	if err := c.sess.Send(usernamePrompt); err != nil {
		c.log.Debug().Err(err).Msg("failed to send username prompt")
		return false
	}
	return true
}

// awaitUsername reads the proposed username and attempts registration.
// Returns false when the connection must close instead of going
// active.
func (c *conn) awaitUsername() bool {
	line, ok := c.readLine()
	if !ok {
		return false
	}

	name := strings.TrimSpace(line)
	if name == "" {
		_ = c.sess.Send("[SYSTEM]: Username cannot be empty. Disconnecting.")
		return false
	}

	c.sess.SetName(name)
	if err := c.h.registry.Register(c.sess); err != nil {
		if errors.Is(err, ErrNameTaken) {
			_ = c.sess.Send(fmt.Sprintf("[SYSTEM]: Username '%s' is already taken. Disconnecting.", name))
		}
		c.log.Info().Err(err).Str("user", name).Msg("registration rejected")
		return false
	}
	c.registered = true
	c.h.metrics.ActiveSessions.Inc()

	c.log = c.log.With().Str("user", name).Logger()
	c.log.Info().Msg("user joined")

	c.h.router.Broadcast(name+" has joined the chat!", "", exclude(name))
	c.h.router.SystemNotice(name, fmt.Sprintf("Welcome, %s! Type /help for available commands.", name))
	return true
}

// activeLoop reads one line at a time until the stream closes, a read
// fails, or the user quits.
func (c *conn) activeLoop() {
	for {
		line, ok := c.readLine()
		if !ok {
			return
		}

		msg := strings.TrimSpace(line)
		if msg == "" {
			continue
		}

		if strings.HasPrefix(msg, "/") {
			if !c.dispatch(msg) {
				return
			}
			continue
		}

		name := c.sess.Name()
		c.h.router.Broadcast(msg, name, exclude(name))
	}
}

// dispatch handles a /-prefixed line. Split policy is "command, arg,
// rest of line" so whisper payloads keep their spaces. Returns false
// when the command ends the connection.
func (c *conn) dispatch(msg string) bool {
	parts := strings.SplitN(msg, " ", 3)
	cmd := strings.ToLower(parts[0])
	name := c.sess.Name()

	switch cmd {
	case "/help":
		c.h.router.SystemNotice(name, helpText)

	case "/users":
		c.h.router.SystemNotice(name, c.h.router.RosterText())

	case "/whisper":
		if len(parts) < 3 {
			c.h.router.SystemNotice(name, "Usage: /whisper <username> <message>")
			return true
		}
		recipient := parts[1]
		if recipient == name {
			c.h.router.SystemNotice(name, "You can't whisper to yourself!")
			return true
		}
		c.h.router.Whisper(name, recipient, parts[2])

	case "/quit":
		c.h.router.SystemNotice(name, "Goodbye!")
		return false

	default:
		c.h.router.SystemNotice(name, fmt.Sprintf("Unknown command: %s. Type /help for help.", cmd))
	}
	return true
}

// readLine blocks for the next inbound line. A closed stream, a read
// error, or an over-long line all end the connection the same way.
func (c *conn) readLine() (string, bool) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			c.log.Debug().Err(err).Msg("read failed")
		}
		return "", false
	}
	return c.scanner.Text(), true
}

// setState records a lifecycle transition.
func (c *conn) setState(next connState) {
	c.log.Debug().
		Stringer("from", c.state).
		Stringer("to", next).
		Msg("state transition")
	c.state = next
}

// close tears the connection down exactly once: deregister, announce
// the departure, and close the stream. Every exit path funnels here.
func (c *conn) close() {
	c.teardown.Do(func() {
		c.setState(stateClosing)

		if c.registered {
			name := c.sess.Name()
			c.h.registry.Remove(name)
			c.h.metrics.ActiveSessions.Dec()
			c.h.router.Broadcast(name+" has left the chat.", "", nil)
			c.log.Info().Msg("user left")
		}
		_ = c.sess.Close()

		c.setState(stateClosed)
	})
}

func exclude(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
