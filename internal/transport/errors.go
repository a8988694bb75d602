package transport

import (
	"errors"
	"fmt"
)

// ErrorKind classifies push failures so callers never match on message text.
type ErrorKind string

const (
	// KindForbidden: the platform refused the push for this conversation (blocked bot,
	// or the message was already delivered through another path).
	KindForbidden ErrorKind = "forbidden"
	// KindRejected: the request is permanently invalid (bad handle, unknown chat, bad payload).
	KindRejected ErrorKind = "rejected"
	// KindRateLimited: the platform asked to slow down.
	KindRateLimited ErrorKind = "rate_limited"
	// KindTimeout: the caller's deadline expired before the push completed.
	KindTimeout ErrorKind = "timeout"
	// KindUnavailable: network or platform-side failure; retrying may help.
	KindUnavailable ErrorKind = "unavailable"
)

// Error is a classified transport failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("transport %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether retrying the same push may succeed.
func (e *Error) Temporary() bool {
	switch e.Kind {
	case KindRateLimited, KindTimeout, KindUnavailable:
		return true
	default:
		return false
	}
}

// KindOf returns the kind of a transport error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// IsKind reports whether err carries a transport error of kind k.
func IsKind(err error, k ErrorKind) bool {
	return err != nil && KindOf(err) == k
}
