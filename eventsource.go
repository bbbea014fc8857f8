// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"weak"

	"golang.org/x/sys/unix"
)

// Ownership states whether an [EventSource] closes its fd.
type Ownership int

const (
	// Borrowed fds are closed by the caller, after the source is gone.
	Borrowed Ownership = iota
	// Owned fds are closed once the loop has dropped the source.
	Owned
)

// SourceCallback is invoked from [Loop.Dispatch] with the fd and the
// readiness reported for it.
type SourceCallback func(fd int, events IOEvents)

// EventSource registers an fd with the loop. The registration lives for as
// long as the caller keeps the EventSource: after Close, or once the handle
// becomes unreachable, the callback is never invoked again, and the next
// dispatch removes the fd from epoll (closing it, if owned).
type EventSource struct {
	Object
	entry *sourceEntry
}

// sourceEntry is the loop's side of an EventSource. It deliberately refers
// to the handle only weakly.
type sourceEntry struct {
	handle   weak.Pointer[EventSource]
	callback SourceCallback
	token    uint64
	fd       int
	events   IOEvents
	own      Ownership
	released bool
	// the loop is gone, the fd is no longer registered
	detached bool
}

func (e *sourceEntry) orphaned() bool {
	return e.released || e.handle.Value() == nil
}

// NewEventSource registers fd with the current loop, for the given interest
// mask. The source is visible from the next [Loop.Dispatch].
//
// On failure an owned fd is closed and a nil source is returned.
func NewEventSource(fd int, events IOEvents, own Ownership, cb SourceCallback) (*EventSource, error) {
	fail := func(err error) (*EventSource, error) {
		if own == Owned && fd >= 0 {
			_ = unix.Close(fd)
		}
		return nil, err
	}
	if fd < 0 {
		return nil, ErrInvalidFD
	}
	if events == 0 {
		return fail(ErrInvalidEvents)
	}
	if cb == nil {
		return fail(ErrNilCallback)
	}
	l := Get()
	if l == nil {
		return fail(ErrNoLoop)
	}
	s := new(EventSource)
	entry, err := l.addSource(s, fd, events, own, cb)
	if err != nil {
		return fail(err)
	}
	s.entry = entry
	return s, nil
}

// FD returns the registered file descriptor.
func (s *EventSource) FD() int { return s.entry.fd }

// Events returns the interest mask.
func (s *EventSource) Events() IOEvents { return s.entry.events }

// Ownership returns whether the source owns its fd.
func (s *EventSource) Ownership() Ownership { return s.entry.own }

// Closed reports whether Close has been called.
func (s *EventSource) Closed() bool { return s.entry.released }

// Close drops the caller's interest in the source. The callback will not be
// invoked again. Removal from epoll happens at the next dispatch, or
// immediately if the loop is already gone.
func (s *EventSource) Close() {
	e := s.entry
	if e == nil || e.released {
		return
	}
	e.released = true
	e.callback = nil
	if e.detached && e.own == Owned {
		_ = unix.Close(e.fd)
	}
}

// Destroy closes the source, then destroys it as an Object.
func (s *EventSource) Destroy() {
	if !s.NotifyDestruction() {
		return
	}
	s.Close()
	s.Object.Destroy()
}
