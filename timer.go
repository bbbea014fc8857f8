// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"slices"
	"time"
	"weak"

	"golang.org/x/sys/unix"
)

// Timer is a logical countdown. Every timer of a loop shares the loop's
// single timerfd, which is always armed for the earliest deadline.
//
// The loop holds reusable timers weakly: a timer that is no longer
// referenced is cancelled without firing, once collected. One-shot timers
// are held by the loop until they are destroyed.
type Timer struct {
	Object
	loop      *Loop
	callback  func(*Timer)
	begin     time.Time
	timeout   time.Duration
	running   bool
	oneShot   bool
	processed bool
}

// NewTimer returns a stopped, reusable timer. It panics with [ErrNoLoop] if
// there is no loop.
func NewTimer(cb func(*Timer)) *Timer {
	l := Get()
	if l == nil || l.closed {
		panic(ErrNoLoop)
	}
	return newTimer(l, cb, false)
}

func newTimer(l *Loop, cb func(*Timer), oneShot bool) *Timer {
	t := &Timer{loop: l, callback: cb, oneShot: oneShot}
	l.timers = append(l.timers, makeRegistration(t, oneShot))
	l.timersChanged = true
	return t
}

// StartOneShotTimer starts a timer that destroys itself after its callback
// runs, unless the callback restarts it.
func StartOneShotTimer(timeout time.Duration, cb func(*Timer)) error {
	if cb == nil {
		return ErrNilCallback
	}
	l := Get()
	if l == nil || l.closed {
		return ErrNoLoop
	}
	newTimer(l, cb, true).Start(timeout)
	return nil
}

// Start (re)starts the countdown. A zero timeout fires on the next
// dispatch, even if called by a timer callback. Without a callback the timer
// does not run.
func (t *Timer) Start(timeout time.Duration) {
	if t.destroyed {
		return
	}
	l := t.loop
	if l == nil {
		Logger().Err().Log(`reactor: timer started without a loop`)
		return
	}
	t.timeout = max(timeout, 0)
	if t.callback == nil {
		return
	}
	t.running = true
	t.begin = l.now()
	t.processed = l.updatingTimers
	l.scheduleTimer()
}

// Stop cancels the countdown, invoking the callback first if notifyIfRunning
// is set. A stopped one-shot timer destroys itself.
func (t *Timer) Stop(notifyIfRunning bool) {
	if !t.running {
		return
	}
	t.running = false
	l := t.loop

	t.fire(notifyIfRunning)

	if l != nil {
		l.scheduleTimer()
	}
}

// fire invokes the callback (if notify), then destroys a one-shot timer the
// callback neither destroyed nor restarted.
func (t *Timer) fire(notify bool) {
	ref := NewWeak(t)
	defer ref.Clear()
	if notify && t.callback != nil {
		t.callback(t)
	}
	if ref.Alive() && !t.running && t.oneShot {
		t.Destroy()
	}
}

// SetCallback replaces the callback. A nil callback prevents Start.
func (t *Timer) SetCallback(cb func(*Timer)) { t.callback = cb }

func (t *Timer) Callback() func(*Timer) { return t.callback }

// Timeout returns the most recent timeout passed to Start.
func (t *Timer) Timeout() time.Duration { return t.timeout }

func (t *Timer) Running() bool { return t.running }

func (t *Timer) OneShot() bool { return t.oneShot }

// Destroy stops the timer without notifying, and removes it from the loop.
func (t *Timer) Destroy() {
	if !t.NotifyDestruction() {
		return
	}
	wasRunning := t.running
	t.running = false
	if l := t.loop; l != nil {
		t.loop = nil
		if i := slices.IndexFunc(l.timers, func(r registration[Timer]) bool { return r.get() == t }); i >= 0 {
			l.timers = slices.Delete(l.timers, i, i+1)
			l.timersChanged = true
		}
		if wasRunning {
			l.scheduleTimer()
		}
	}
	t.Object.Destroy()
}

// TimerCount returns the number of timers, running or not, that have not
// been collected.
func (l *Loop) TimerCount() int {
	l.pruneTimers()
	return len(l.timers)
}

// pruneTimers drops the registrations of collected timers.
func (l *Loop) pruneTimers() {
	var pruned bool
	if l.timers, pruned = pruneRegistrations(l.timers); pruned {
		l.timersChanged = true
	}
}

// updateTimers runs on timerfd expiry: every due timer is stopped, then
// notified, in registration order. Changes to the timer set made by a
// callback restart the scan, skipping timers already processed. A timer
// started by a callback is not due before the next expiry.
func (l *Loop) updateTimers() {
	var buf [8]byte
	_, _ = unix.Read(l.timerSource.FD(), buf[:])
	l.armTimerfd(0)

	l.pruneTimers()
	for _, r := range l.timers {
		if t := r.get(); t != nil {
			t.processed = false
		}
	}

	l.updatingTimers = true
	defer func() { l.updatingTimers = false }()

	for restart := true; restart; {
		restart = false
		l.timersChanged = false
		now := l.now()
		for i := 0; i < len(l.timers); i++ {
			t := l.timers[i].get()
			if t == nil || t.processed {
				continue
			}
			t.processed = true
			if !t.running || now.Sub(t.begin) < t.timeout {
				continue
			}
			t.running = false
			t.fire(true)
			if l.timersChanged {
				restart = true
				break
			}
		}
	}

	l.scheduleTimer()
}

// scheduleTimer arms the timerfd for the earliest deadline, or disarms it.
func (l *Loop) scheduleTimer() {
	if l.closed || l.timerSource == nil {
		return
	}
	var (
		earliest time.Time
		found    bool
	)
	for _, r := range l.timers {
		t := r.get()
		if t == nil || !t.running {
			continue
		}
		if deadline := t.begin.Add(t.timeout); !found || deadline.Before(earliest) {
			earliest, found = deadline, true
		}
	}
	if !found {
		l.armTimerfd(0)
		return
	}
	// a zero value would disarm
	l.armTimerfd(max(earliest.Sub(l.now()), time.Nanosecond))
}

func (l *Loop) armTimerfd(d time.Duration) {
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(int64(d))}
	if err := unix.TimerfdSettime(l.timerSource.FD(), 0, &spec, nil); err != nil {
		l.logger.Err().Err(err).Log(`reactor: timerfd_settime failed`)
	}
}

// registration is the loop's hold on a timer or animation: strong for
// one-shots, which nothing else references, weak otherwise.
type registration[T any] struct {
	strong *T
	ref    weak.Pointer[T]
}

func makeRegistration[T any](p *T, strong bool) registration[T] {
	r := registration[T]{ref: weak.Make(p)}
	if strong {
		r.strong = p
	}
	return r
}

// get returns the registered value, or nil if it has been collected.
func (r registration[T]) get() *T {
	if r.strong != nil {
		return r.strong
	}
	return r.ref.Value()
}

func pruneRegistrations[T any](s []registration[T]) ([]registration[T], bool) {
	n := len(s)
	s = slices.DeleteFunc(s, func(r registration[T]) bool { return r.get() == nil })
	return s, len(s) != n
}
