package client

import (
	"errors"
	"fmt"
)

// ErrorKind buckets gateway failures for the screens: only the bucket
// decides what the user sees, the rest is detail.
type ErrorKind int

const (
	KindUnknown      ErrorKind = iota // anything not covered below
	KindUnauthorized                  // 401; the local session was cleared
	KindNotFound                      // 404
	KindServer                        // 5xx
	KindNetwork                       // no response received (transport error, timeout)
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindServer:
		return "server error"
	case KindNetwork:
		return "network error"
	default:
		return "unknown error"
	}
}

// Error is the classified failure every gateway method returns.
type Error struct {
	Kind    ErrorKind
	Status  int    // HTTP status, 0 when no response arrived
	Op      string // "POST /users/login"
	Message string // response body, if any
	Err     error  // underlying transport error, if any
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s (%d)", e.Op, e.Kind, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func classify(status int) ErrorKind {
	switch {
	case status == 401:
		return KindUnauthorized
	case status == 404:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

func kindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool { return kindOf(err) == KindUnauthorized }

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsNetwork reports whether no response was received at all.
func IsNetwork(err error) bool { return kindOf(err) == KindNetwork }
