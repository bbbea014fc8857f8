// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"weak"

	"golang.org/x/sys/unix"
)

// BooleanEventSource is an eventfd backed flag: the loop reports it as ready
// while the state is true. Before the callback runs the state is reset to
// false.
type BooleanEventSource struct {
	Object
	source   *EventSource
	callback func(*BooleanEventSource)
	state    atomic.Bool
}

// NewBooleanEventSource creates a flag in the given initial state. The
// callback may be nil.
func NewBooleanEventSource(enabled bool, cb func(*BooleanEventSource)) (*BooleanEventSource, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("reactor: eventfd: %w", err)
	}
	b := &BooleanEventSource{callback: cb}
	ref := weak.Make(b)
	b.source, err = NewEventSource(fd, EventRead, Owned, func(int, IOEvents) {
		if b := ref.Value(); b != nil {
			b.SetState(false)
			if b.callback != nil {
				b.callback(b)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	b.SetState(enabled)
	return b, nil
}

// State returns the current state.
func (b *BooleanEventSource) State() bool { return b.state.Load() }

// SetState changes the state, making the source ready (true) or not
// (false). It may be called from any goroutine.
//
// Setting always signals the eventfd, and resetting drains it before
// clearing the state, so a set racing a reset is never lost: at worst the
// source reports ready once more, with the state already false.
func (b *BooleanEventSource) SetState(enabled bool) {
	var buf [8]byte
	if enabled {
		b.state.Store(true)
		binary.NativeEndian.PutUint64(buf[:], 1)
		_, _ = unix.Write(b.source.FD(), buf[:])
		return
	}
	// EAGAIN if already drained
	_, _ = unix.Read(b.source.FD(), buf[:])
	b.state.Store(false)
}

// FD returns the underlying eventfd.
func (b *BooleanEventSource) FD() int { return b.source.FD() }

// Close releases the underlying event source.
func (b *BooleanEventSource) Close() { b.source.Close() }

// Destroy closes the source, then destroys it as an Object.
func (b *BooleanEventSource) Destroy() {
	if !b.NotifyDestruction() {
		return
	}
	b.Close()
	b.Object.Destroy()
}
