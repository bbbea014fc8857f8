// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"reflect"
	"slices"
)

type (
	// Handle is implemented by every type embedding [Object]. Destroy is
	// expected to be the outermost type's teardown.
	Handle interface {
		Base() *Object
		Destroy()
	}

	// EventHandler may be implemented by a Handle to receive events sent to
	// it. The result reports whether the event was handled.
	EventHandler interface {
		Event(e *Event) bool
	}

	// EventFilterer may be implemented by a Handle installed as an event
	// filter. Returning true consumes the event before it reaches target.
	EventFilterer interface {
		EventFilter(e *Event, target Handle) bool
	}
)

// Object is the base of every participating type. It carries destruction
// notification (OnDestroy, owned listeners, weak references) and the event
// filter relationships. An Object must not be copied after first use.
//
// Embedding types that need their own teardown implement Destroy as:
//
//	func (x *T) Destroy() {
//		if !x.NotifyDestruction() {
//			return
//		}
//		// own teardown
//		x.Object.Destroy()
//	}
type Object struct {
	// OnDestroy fires once, as the first step of destruction.
	OnDestroy Signal[*Object]

	// UserData is never touched by the core.
	UserData any

	listeners  []*Listener
	weakRefs   []weakRef
	filters    []Handle // newest last
	monitoring []*Object
	destroyed  bool
}

var _ Handle = (*Object)(nil)

// Base returns o.
func (o *Object) Base() *Object { return o }

// IsDestroyed reports whether destruction has begun.
func (o *Object) IsDestroyed() bool { return o.destroyed }

// Destroy runs the destruction notification and releases filter
// relationships. It is idempotent.
func (o *Object) Destroy() {
	o.NotifyDestruction()
	o.releaseFilters()
}

// NotifyDestruction runs the destruction notification exactly once: OnDestroy
// fires, then every listener owned by o is removed, then every weak
// reference is cleared (firing its callback). It returns false if the
// notification already ran.
func (o *Object) NotifyDestruction() bool {
	if o.destroyed {
		return false
	}
	o.destroyed = true

	o.OnDestroy.Notify(o)
	o.OnDestroy.Close()

	for len(o.listeners) != 0 {
		o.listeners[len(o.listeners)-1].Remove()
	}

	for len(o.weakRefs) != 0 {
		last := len(o.weakRefs) - 1
		ref := o.weakRefs[last]
		o.weakRefs[last] = nil
		o.weakRefs = o.weakRefs[:last]
		ref.objectDestroyed()
	}

	return true
}

// releaseFilters drops every filter relationship, in both directions.
func (o *Object) releaseFilters() {
	for _, monitor := range o.filters {
		m := monitor.Base()
		m.monitoring = slices.DeleteFunc(m.monitoring, func(t *Object) bool { return t == o })
	}
	o.filters = nil
	for _, target := range o.monitoring {
		target.filters = slices.DeleteFunc(target.filters, func(h Handle) bool { return h.Base() == o })
	}
	o.monitoring = nil
}

// InstallEventFilter makes monitor observe (and possibly consume) events
// sent to o. The most recently installed filter runs first; installing an
// existing filter again moves it to the front.
func (o *Object) InstallEventFilter(monitor Handle) {
	if isNilHandle(monitor) {
		return
	}
	m := monitor.Base()
	if o.destroyed || m.destroyed {
		return
	}
	o.filters = slices.DeleteFunc(o.filters, func(h Handle) bool { return h.Base() == m })
	o.filters = append(o.filters, monitor)
	if !slices.Contains(m.monitoring, o) {
		m.monitoring = append(m.monitoring, o)
	}
}

// RemoveEventFilter undoes InstallEventFilter.
func (o *Object) RemoveEventFilter(monitor Handle) {
	if isNilHandle(monitor) {
		return
	}
	m := monitor.Base()
	o.filters = slices.DeleteFunc(o.filters, func(h Handle) bool { return h.Base() == m })
	m.monitoring = slices.DeleteFunc(m.monitoring, func(t *Object) bool { return t == o })
}

// EventFilters returns the installed filters, most recent first.
func (o *Object) EventFilters() []Handle {
	s := slices.Clone(o.filters)
	slices.Reverse(s)
	return s
}

// ListenerCount returns the number of listeners owned by o.
func (o *Object) ListenerCount() int { return len(o.listeners) }

// DestroyLater posts a destroy event to h, which is destroyed during a later
// [Loop.Dispatch], unless it is destroyed before then.
func DestroyLater(h Handle) error {
	l := Get()
	if l == nil {
		return ErrNoLoop
	}
	return l.PostEvent(NewEvent(EventDestroy, nil), h)
}

func isNilHandle(h Handle) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
