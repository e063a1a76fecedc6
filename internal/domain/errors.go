package domain

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure so callers do not have to match on message text.
type Kind string

const (
	// KindInvalid is malformed input: a bad body, path id or query parameter.
	KindInvalid Kind = "invalid"
	// KindNotFound means zero rows were returned or affected.
	KindNotFound Kind = "not_found"
	// KindConflict means a conditional write lost to a concurrent writer.
	KindConflict Kind = "conflict"
	// KindTimeout means the request deadline passed before the store answered.
	KindTimeout Kind = "timeout"
	// KindStore is any other store failure, reported verbatim.
	KindStore Kind = "store"
)

// Error is the error type returned by the repository and service layers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Invalidf reports malformed input.
func Invalidf(format string, a ...any) error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, a...)}
}

// NotFoundf reports a missing record.
func NotFoundf(format string, a ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, a...)}
}

// Conflictf reports a lost conditional write.
func Conflictf(format string, a ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, a...)}
}

// StoreErr wraps a store failure, keeping its text as the message. An
// expired deadline becomes KindTimeout.
func StoreErr(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindStore, Message: err.Error(), Err: err}
}

// TodoNotFound is the not-found error for a todo id.
func TodoNotFound(id int64) error {
	return NotFoundf("Todo with ID %d does not exist", id)
}

// KindOf returns the Kind of err. Foreign errors are KindTimeout when they
// wrap an expired deadline and KindStore otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindStore
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
