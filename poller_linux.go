// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux

package reactor

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// IOEvents represents the type of I/O events to monitor.
type IOEvents uint32

const (
	// EventRead indicates the file descriptor is ready for reading.
	EventRead IOEvents = 1 << iota
	// EventWrite indicates the file descriptor is ready for writing.
	EventWrite
	// EventError indicates an error condition on the file descriptor.
	EventError
	// EventHangup indicates the peer closed its end of the connection.
	EventHangup
)

func (e IOEvents) String() string {
	if e == 0 {
		return `none`
	}
	var b []byte
	for _, f := range [...]struct {
		bit  IOEvents
		name string
	}{
		{EventRead, `read`},
		{EventWrite, `write`},
		{EventError, `error`},
		{EventHangup, `hangup`},
	} {
		if e&f.bit != 0 {
			if len(b) != 0 {
				b = append(b, '|')
			}
			b = append(b, f.name...)
		}
	}
	return string(b)
}

// poller wraps a single epoll instance. Registrations carry a 64-bit token,
// rather than the fd, so stale readiness for a reused fd number can never be
// attributed to the wrong source.
type poller struct {
	events []unix.EpollEvent
	epfd   int
}

func (p *poller) init() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	p.epfd = epfd
	p.events = make([]unix.EpollEvent, 1)
	return nil
}

func (p *poller) close() error {
	if p.epfd <= 0 {
		return nil
	}
	err := unix.Close(p.epfd)
	p.epfd = -1
	return err
}

func (p *poller) add(fd int, events IOEvents, token uint64) error {
	ev := unix.EpollEvent{Events: eventsToEpoll(events)}
	setToken(&ev, token)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("reactor: epoll add fd %d: %w", fd, err)
	}
	return nil
}

func (p *poller) del(fd int) error {
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.EBADF) {
		// already gone, e.g. the fd was closed
		return nil
	}
	return err
}

// resize ensures the readiness buffer holds at least n entries.
func (p *poller) resize(n int) {
	if cap(p.events) < n {
		p.events = make([]unix.EpollEvent, n)
		return
	}
	p.events = p.events[:n]
}

// wait blocks for up to timeoutMs (negative means indefinitely). An
// interrupted wait reports no events and no error.
func (p *poller) wait(timeoutMs int) (int, error) {
	n, err := unix.EpollWait(p.epfd, p.events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func setToken(ev *unix.EpollEvent, token uint64) {
	ev.Fd = int32(uint32(token))
	ev.Pad = int32(uint32(token >> 32))
}

func tokenOf(ev *unix.EpollEvent) uint64 {
	return uint64(uint32(ev.Fd)) | uint64(uint32(ev.Pad))<<32
}

// eventsToEpoll converts IOEvents to epoll event flags. Error and hangup are
// always reported by epoll.
func eventsToEpoll(events IOEvents) uint32 {
	var epollEvents uint32
	if events&EventRead != 0 {
		epollEvents |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		epollEvents |= unix.EPOLLOUT
	}
	return epollEvents
}

// epollToEvents converts epoll event flags to IOEvents.
func epollToEvents(epollEvents uint32) IOEvents {
	var events IOEvents
	if epollEvents&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if epollEvents&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if epollEvents&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if epollEvents&unix.EPOLLHUP != 0 {
		events |= EventHangup
	}
	return events
}
