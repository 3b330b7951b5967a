package sessioncache

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/sessioncache/internal/wire"
)

var (
	ErrInvalidArgument    = errors.New("sessioncache: invalid argument")
	ErrMalformedRecord    = wire.ErrMalformed
	ErrBackendUnavailable = errors.New("sessioncache: backend unavailable")
	ErrClosed             = errors.New("sessioncache: connection closed")
)

// ArgumentError reports a missing or invalid parameter. It matches ErrInvalidArgument.
type ArgumentError struct {
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("sessioncache: argument %s: %s", e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// MalformedRecordError reports stored bytes that cannot be decoded.
// It is never turned into a miss.
type MalformedRecordError struct {
	Key  string
	Size int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("sessioncache: malformed record at %q (%d bytes): %v", e.Key, e.Size, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// DialError wraps a failed connect attempt. It matches ErrBackendUnavailable
// and the underlying cause.
type DialError struct {
	Err error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("sessioncache: backend unavailable: %v", e.Err)
}

func (e *DialError) Unwrap() []error {
	return []error{ErrBackendUnavailable, e.Err}
}

func argError(arg, reason string) error {
	return &ArgumentError{Arg: arg, Reason: reason}
}
