// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
	"weak"

	"github.com/joeycumines/go-reactor/internal/lockguard"
	"github.com/joeycumines/logiface"
	"golang.org/x/sys/unix"
)

// Loop is the process-wide reactor. It multiplexes every [EventSource] over
// one epoll instance, and hosts the timer and animation schedulers.
//
// A Loop is driven by repeatedly calling Dispatch (or Run) from a single
// goroutine. Apart from Wake, no method may be called concurrently with
// Dispatch.
type Loop struct {
	// OnKeymapChanged fires after SetKeymap replaces the keymap.
	OnKeymapChanged Signal[Keymap]

	logger *logiface.Logger[logiface.Event]
	now    func() time.Time

	entries map[uint64]*sourceEntry
	// token of the entry currently registered for each fd
	fdOwner map[int]uint64
	current []*sourceEntry
	pending []*sourceEntry

	wake        *BooleanEventSource
	timerSource *EventSource
	animTimer   *Timer
	queue       *eventQueue
	keymap      Keymap

	timers     []registration[Timer]
	animations []registration[Animation]

	poller poller

	wakeMu sync.Mutex

	animInterval time.Duration
	minReady     int
	nextToken    uint64
	refs         int

	timersChanged     bool
	updatingTimers    bool
	animationsChanged bool
	dispatching       bool
	closeRequested    bool
	closed            bool
}

// the singleton, guarded by lockguard
var instance *Loop

// GetOrMake returns the loop, constructing it if necessary, and acquires a
// reference which must be given back with [Loop.Release]. Options only
// apply to construction.
func GetOrMake(opts ...LoopOption) (*Loop, error) {
	g := lockguard.Acquire()
	defer g.Release()

	if l := instance; l != nil {
		l.refs++
		return l, nil
	}

	cfg, err := resolveLoopOptions(opts)
	if err != nil {
		return nil, err
	}

	l := &Loop{
		logger:       cfg.logger,
		now:          time.Now,
		entries:      make(map[uint64]*sourceEntry),
		fdOwner:      make(map[int]uint64),
		queue:        newEventQueue(),
		animInterval: cfg.animationInterval,
		minReady:     cfg.readyBuffer,
		refs:         1,
	}
	if l.logger == nil {
		l.logger = Logger()
	}

	// components created by init look the loop up via Get
	instance = l
	if err := l.init(cfg); err != nil {
		l.teardown()
		return nil, err
	}

	l.logger.Debug().Log(`reactor: loop created`)

	return l, nil
}

// Get returns the loop if one exists, without acquiring a reference.
func Get() *Loop {
	g := lockguard.Acquire()
	defer g.Release()
	return instance
}

func (l *Loop) init(cfg *loopOptions) error {
	if err := l.poller.init(); err != nil {
		return err
	}

	var err error
	if l.wake, err = NewBooleanEventSource(false, nil); err != nil {
		return err
	}

	tfd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return fmt.Errorf("reactor: timerfd_create: %w", err)
	}
	if l.timerSource, err = NewEventSource(tfd, EventRead, Owned, func(int, IOEvents) { l.updateTimers() }); err != nil {
		return err
	}

	l.animTimer = newTimer(l, func(*Timer) { l.UpdateAnimations() }, false)

	if cfg.keymapFactory != nil {
		keymap, err := cfg.keymapFactory()
		if err != nil {
			return fmt.Errorf("reactor: keymap: %w", err)
		}
		l.keymap = keymap
	}

	return nil
}

// Release gives back a reference acquired by [GetOrMake]. Releasing the last
// reference tears the loop down, deferred until Dispatch returns if called
// from a callback.
func (l *Loop) Release() error {
	g := lockguard.Acquire()
	defer g.Release()

	if l.closed || l.refs <= 0 {
		return ErrLoopClosed
	}
	l.refs--
	if l.refs != 0 {
		return nil
	}
	if l.dispatching {
		l.closeRequested = true
		return nil
	}
	l.teardown()
	return nil
}

// teardown destroys the loop's own components, one-shot timers and
// animations first. Sources still held by callers are detached: their fds
// are no longer polled, and owned fds are closed by EventSource.Close.
func (l *Loop) teardown() {
	if l.closed {
		return
	}
	l.closed = true

	for _, r := range slices.Clone(l.timers) {
		if t := r.get(); t != nil && t.oneShot {
			t.Destroy()
		}
	}
	if l.animTimer != nil {
		l.animTimer.Destroy()
	}
	for _, r := range l.timers {
		if t := r.get(); t != nil {
			t.running = false
			t.loop = nil
		}
	}
	l.timers = nil

	for _, r := range slices.Clone(l.animations) {
		if a := r.get(); a != nil && a.oneShot {
			a.Destroy()
		}
	}
	for _, r := range l.animations {
		if a := r.get(); a != nil {
			a.running = false
			a.loop = nil
		}
	}
	l.animations = nil

	if k := l.keymap; k != nil {
		l.keymap = nil
		k.Destroy()
	}
	l.OnKeymapChanged.Close()
	l.queue.clear()

	l.wakeMu.Lock()
	wake := l.wake
	l.wake = nil
	l.wakeMu.Unlock()
	if wake != nil {
		wake.Close()
	}
	if l.timerSource != nil {
		l.timerSource.Close()
	}

	for _, e := range slices.Concat(l.current, l.pending) {
		if e.orphaned() {
			l.unregister(e)
			continue
		}
		if l.fdOwner[e.fd] == e.token {
			_ = l.poller.del(e.fd)
		}
		e.detached = true
	}
	l.current, l.pending = nil, nil
	clear(l.entries)
	clear(l.fdOwner)

	if err := l.poller.close(); err != nil {
		l.logger.Err().Err(err).Log(`reactor: failed to close epoll fd`)
	}

	if instance == l {
		instance = nil
	}

	l.logger.Debug().Log(`reactor: loop destroyed`)
}

// FD returns the epoll fd, e.g. for nesting the loop inside another.
func (l *Loop) FD() int { return l.poller.epfd }

// Closed reports whether the loop has been torn down.
func (l *Loop) Closed() bool { return l.closed }

func (l *Loop) addSource(s *EventSource, fd int, events IOEvents, own Ownership, cb SourceCallback) (*sourceEntry, error) {
	if l.closed {
		return nil, ErrLoopClosed
	}
	l.nextToken++
	e := &sourceEntry{
		handle:   weak.Make(s),
		callback: cb,
		token:    l.nextToken,
		fd:       fd,
		events:   events,
		own:      own,
	}
	if err := l.poller.add(fd, events, e.token); err != nil {
		return nil, err
	}
	l.entries[e.token] = e
	l.fdOwner[fd] = e.token
	l.pending = append(l.pending, e)
	return e, nil
}

// unregister removes e from epoll, and closes its fd if owned.
func (l *Loop) unregister(e *sourceEntry) {
	delete(l.entries, e.token)
	if l.fdOwner[e.fd] == e.token {
		delete(l.fdOwner, e.fd)
		if err := l.poller.del(e.fd); err != nil {
			l.logger.Warning().Err(err).Int(`fd`, e.fd).Log(`reactor: epoll del failed`)
		}
	}
	if e.own == Owned {
		_ = unix.Close(e.fd)
	}
	e.callback = nil
}

// maintain drops orphaned sources, then promotes pending ones.
func (l *Loop) maintain() {
	for i := 0; i < len(l.current); {
		e := l.current[i]
		if !e.orphaned() {
			i++
			continue
		}
		l.unregister(e)
		last := len(l.current) - 1
		l.current[i] = l.current[last]
		l.current[last] = nil
		l.current = l.current[:last]
	}

	for i, e := range l.pending {
		l.pending[i] = nil
		if e.orphaned() {
			l.unregister(e)
			continue
		}
		l.current = append(l.current, e)
	}
	l.pending = l.pending[:0]

	l.poller.resize(max(len(l.current), l.minReady))
}

// SourceCount returns the number of sources, active or pending.
func (l *Loop) SourceCount() int { return len(l.current) + len(l.pending) }

// Dispatch runs one pass of the loop: maintenance, a wait of up to
// timeoutMs (negative waits indefinitely), the callback of every ready
// source, then every posted event. It returns the number of ready sources.
//
// An interrupted wait returns (0, nil). Any other wait error is returned as
// is, without retrying.
func (l *Loop) Dispatch(timeoutMs int) (int, error) {
	if l.closed {
		return 0, ErrLoopClosed
	}
	if l.dispatching {
		return 0, ErrReentrantDispatch
	}
	l.dispatching = true
	defer l.endDispatch()

	l.maintain()

	n, err := l.poller.wait(timeoutMs)
	if err != nil {
		if !throttled(`poll`) {
			l.logger.Err().Err(err).Log(`reactor: epoll_wait failed`)
		}
		return 0, err
	}

	for i := range n {
		e := l.entries[tokenOf(&l.poller.events[i])]
		if e == nil || e.callback == nil || e.orphaned() {
			continue
		}
		l.invoke(e, epollToEvents(l.poller.events[i].Events))
	}

	if l.queue.len() != 0 {
		q := l.queue
		l.queue = newEventQueue()
		q.dispatch(l)
	}

	return n, nil
}

func (l *Loop) endDispatch() {
	l.dispatching = false
	if l.closeRequested {
		l.closeRequested = false
		g := lockguard.Acquire()
		l.teardown()
		g.Release()
	}
}

func (l *Loop) invoke(e *sourceEntry, events IOEvents) {
	defer func() {
		if r := recover(); r != nil && !throttled(`panic`) {
			l.logger.Err().
				Err(PanicError{Value: r}).
				Int(`fd`, e.fd).
				Log(`reactor: source callback panicked`)
		}
	}()
	e.callback(e.fd, events)
}

// Run dispatches until ctx is done, or Dispatch fails.
func (l *Loop) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, l.Wake)
	defer stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := l.Dispatch(-1); err != nil {
			if errors.Is(err, ErrLoopClosed) {
				return nil
			}
			return err
		}
	}
}

// Wake makes a blocked (or the next) Dispatch return. It is safe to call
// from any goroutine.
func (l *Loop) Wake() {
	l.wakeMu.Lock()
	defer l.wakeMu.Unlock()
	if l.wake != nil {
		l.wake.SetState(true)
	}
}

// SendEvent delivers e to target immediately. The event is accepted first.
// A destroy event destroys target. Otherwise the installed filters, most
// recent first, are offered the event until one consumes it, then target
// itself, if it implements [EventHandler].
//
// Filters removed or destroyed by an earlier filter are skipped. Delivery
// stops (reporting true) if target is destroyed by a filter.
func (l *Loop) SendEvent(e *Event, target Handle) bool {
	if e == nil || isNilHandle(target) {
		return false
	}
	base := target.Base()
	if base.destroyed {
		return false
	}

	e.Accept()

	if e.Type() == EventDestroy {
		target.Destroy()
		return true
	}

	for _, monitor := range base.EventFilters() {
		if base.destroyed {
			return true
		}
		m := monitor.Base()
		if m.destroyed || !slices.ContainsFunc(base.filters, func(h Handle) bool { return h.Base() == m }) {
			continue
		}
		if f, ok := monitor.(EventFilterer); ok && f.EventFilter(e, target) {
			return true
		}
	}
	if base.destroyed {
		return true
	}

	if h, ok := target.(EventHandler); ok {
		return h.Event(e)
	}
	return false
}

// PostEvent queues e for delivery to target, via SendEvent, after the
// readiness callbacks of a later Dispatch. Events posted while posted events
// are being delivered wait for the next Dispatch. If target is destroyed
// first, the event is dropped.
func (l *Loop) PostEvent(e *Event, target Handle) error {
	if l.closed {
		return ErrLoopClosed
	}
	if e == nil || isNilHandle(target) {
		return ErrInvalidEvent
	}
	l.queue.push(target, e)
	l.Wake()
	return nil
}

// PendingEvents returns the number of posted, undelivered events.
func (l *Loop) PendingEvents() int { return l.queue.len() }
