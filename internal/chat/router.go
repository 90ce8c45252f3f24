package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Router delivers formatted lines to sessions found in the registry.
// It holds no state of its own beyond the handles it is constructed
// with; every operation works against a fresh snapshot or lookup.
type Router struct {
	registry *Registry
	log      *zerolog.Logger
	metrics  *Metrics
	now      func() time.Time
}

// NewRouter builds a router over the given registry.
func NewRouter(registry *Registry, logger *zerolog.Logger, metrics *Metrics) *Router {
	return &Router{
		registry: registry,
		log:      logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Broadcast delivers text to every registered session except those in
// exclude. With a sender the line reads "[HH:MM:SS] sender: text";
// without one it is a "***"-bracketed announcement. A recipient whose
// send fails is evicted, and delivery to the rest continues.
func (rt *Router) Broadcast(text, sender string, exclude map[string]struct{}) {
	stamp := rt.timestamp()
	var line string
	if sender != "" {
		line = fmt.Sprintf("[%s] %s: %s", stamp, sender, text)
	} else {
		line = fmt.Sprintf("[%s] *** %s ***", stamp, text)
	}

	for _, sess := range rt.registry.Snapshot() {
		if _, skip := exclude[sess.Name()]; skip {
			continue
		}
		if err := sess.Send(line); err != nil {
			rt.evict(sess, err)
		}
	}
	rt.metrics.MessagesRouted.WithLabelValues("broadcast").Inc()
}

// Whisper delivers a private message. An unknown recipient is a local
// failure: the sender gets a single notice and nothing else happens.
// On success each side's send is independent; one side failing evicts
// that session without suppressing the other.
func (rt *Router) Whisper(sender, recipient, text string) {
	stamp := rt.timestamp()

	target, ok := rt.registry.Lookup(recipient)
	if !ok {
		rt.sendTo(sender, fmt.Sprintf("[%s] *** User '%s' not found or offline ***", stamp, recipient))
		return
	}

	if err := target.Send(fmt.Sprintf("[%s] [WHISPER from %s]: %s", stamp, sender, text)); err != nil {
		rt.evict(target, err)
	}
	rt.sendTo(sender, fmt.Sprintf("[%s] [WHISPER to %s]: %s", stamp, recipient, text))
	rt.metrics.MessagesRouted.WithLabelValues("whisper").Inc()
}

// SystemNotice delivers a server-originated line to one session.
func (rt *Router) SystemNotice(name, text string) {
	rt.sendTo(name, fmt.Sprintf("[%s] [SYSTEM]: %s", rt.timestamp(), text))
	rt.metrics.MessagesRouted.WithLabelValues("system").Inc()
}

// RosterText renders the sorted list of online users for /users.
func (rt *Router) RosterText() string {
	names := rt.registry.Roster()
	if len(names) == 0 {
		return "No users online."
	}
	return fmt.Sprintf("Online users (%d): %s", len(names), strings.Join(names, ", "))
}

func (rt *Router) sendTo(name, line string) {
	sess, ok := rt.registry.Lookup(name)
	if !ok {
		return
	}
	if err := sess.Send(line); err != nil {
		rt.evict(sess, err)
	}
}

// evict removes a session whose stream failed mid-delivery. Runs with
// no registry lock held, after the snapshot that found the session.
func (rt *Router) evict(sess *Session, err error) {
	rt.registry.Remove(sess.Name())
	_ = sess.Close()
	rt.metrics.SendFailures.Inc()
	rt.log.Warn().
		Err(err).
		Str("user", sess.Name()).
		Msg("send failed, session evicted")
}

func (rt *Router) timestamp() string {
	return rt.now().Format("15:04:05")
}
