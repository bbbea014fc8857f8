// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"github.com/eapache/queue"
)

type queuedEvent struct {
	target *Weak[Handle]
	event  *Event
}

// eventQueue is the FIFO of posted events. Targets are held weakly, so an
// event for a target destroyed while queued is dropped.
type eventQueue struct {
	q *queue.Queue
}

func newEventQueue() *eventQueue {
	return &eventQueue{q: queue.New()}
}

func (x *eventQueue) push(target Handle, e *Event) {
	x.q.Add(queuedEvent{target: NewWeak(target), event: e})
}

func (x *eventQueue) len() int { return x.q.Length() }

// dispatch delivers every queued event in order, via l.SendEvent.
func (x *eventQueue) dispatch(l *Loop) {
	for x.q.Length() != 0 {
		item := x.q.Remove().(queuedEvent)
		target := item.target.Get()
		item.target.Clear()
		if target == nil {
			continue
		}
		l.SendEvent(item.event, target)
	}
}

// clear drops every queued event.
func (x *eventQueue) clear() {
	for x.q.Length() != 0 {
		x.q.Remove().(queuedEvent).target.Clear()
	}
}
