// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLoop is returned when an operation needs the loop but none exists.
	ErrNoLoop = errors.New("reactor: no loop")

	// ErrLoopClosed is returned when the loop has already been torn down.
	ErrLoopClosed = errors.New("reactor: loop closed")

	// ErrInvalidFD is returned for a negative file descriptor.
	ErrInvalidFD = errors.New("reactor: invalid fd")

	// ErrInvalidEvents is returned for an empty readiness interest mask.
	ErrInvalidEvents = errors.New("reactor: invalid events mask")

	// ErrInvalidEvent is returned when posting a nil event, or to a nil
	// target.
	ErrInvalidEvent = errors.New("reactor: post requires an event and a target")

	// ErrNilCallback is returned when a required callback is nil.
	ErrNilCallback = errors.New("reactor: nil callback")

	// ErrReentrantDispatch is returned when Dispatch is called from inside a
	// callback it is running.
	ErrReentrantDispatch = errors.New("reactor: dispatch called reentrantly")
)

// PanicError wraps a value recovered from a callback.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("reactor: callback panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error, otherwise nil.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
