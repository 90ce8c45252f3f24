package chat

import "errors"

var (
	// ErrNameTaken is returned by Registry.Register when another live
	// session already owns the requested username.
	ErrNameTaken = errors.New("username already taken")
	// ErrRegistryClosed is returned by Registry.Register after the
	// registry has been drained during shutdown.
	ErrRegistryClosed = errors.New("registry closed")
	// ErrSessionClosed is returned by Session.Send after the session's
	// stream has been closed.
	ErrSessionClosed = errors.New("session closed")
)
