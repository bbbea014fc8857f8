// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

// signalSide is the part of a Signal a Listener needs, regardless of T.
type signalSide interface {
	removeListener(l *Listener)
}

// Listener binds a callback to a [Signal] on behalf of an owner [Object].
// It is registered on both sides; removing it from either side removes it
// from both.
type Listener struct {
	owner      *Object
	signal     signalSide
	fn         any
	ownerSlot  int
	signalSlot int
	notified   bool
}

// Remove unsubscribes the listener. It is idempotent, and safe to call from
// within the listener's own callback.
func (l *Listener) Remove() {
	if l == nil || l.signal == nil {
		return
	}

	o := l.owner
	last := len(o.listeners) - 1
	if l.ownerSlot != last {
		moved := o.listeners[last]
		o.listeners[l.ownerSlot] = moved
		moved.ownerSlot = l.ownerSlot
	}
	o.listeners[last] = nil
	o.listeners = o.listeners[:last]

	l.signal.removeListener(l)
	l.signal = nil
	l.fn = nil
}

// Active reports whether the listener is still subscribed.
func (l *Listener) Active() bool { return l != nil && l.signal != nil }

// Owner returns the owning object.
func (l *Listener) Owner() *Object { return l.owner }

// Notified reports whether the listener has run in the current (or most
// recent) emission.
func (l *Listener) Notified() bool { return l.notified }
