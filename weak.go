// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

// weakRef is the back-reference an Object keeps for each Weak attached to it.
type weakRef interface {
	setSlot(i int)
	objectDestroyed()
}

// Weak is a non-owning reference to at most one live Object. It is cleared
// synchronously by the referenced object's destruction notification.
//
// The zero value references nothing.
type Weak[T Handle] struct {
	obj       T
	base      *Object
	onDestroy func(T)
	slot      int
}

// NewWeak returns a Weak referencing obj. A nil or already destroyed obj
// yields an empty reference.
func NewWeak[T Handle](obj T) *Weak[T] {
	w := new(Weak[T])
	w.Reset(obj)
	return w
}

// Get returns the referenced object, or the zero value of T.
func (w *Weak[T]) Get() T { return w.obj }

// Alive reports whether an object is referenced.
func (w *Weak[T]) Alive() bool { return w.base != nil }

// Reset references obj instead of the current object.
func (w *Weak[T]) Reset(obj T) {
	w.detach()
	if isNilHandle(obj) {
		return
	}
	base := obj.Base()
	if base.destroyed {
		return
	}
	w.obj = obj
	w.base = base
	w.slot = len(base.weakRefs)
	base.weakRefs = append(base.weakRefs, w)
}

// Clear stops referencing the current object, without invoking the
// destruction callback.
func (w *Weak[T]) Clear() { w.detach() }

// Count returns the number of weak references attached to the referenced
// object, including w, or 0 if nothing is referenced.
func (w *Weak[T]) Count() int {
	if w.base == nil {
		return 0
	}
	return len(w.base.weakRefs)
}

// SetOnDestroy sets a callback invoked with the referenced object as part of
// its destruction notification, after which w is empty.
func (w *Weak[T]) SetOnDestroy(fn func(T)) { w.onDestroy = fn }

// Clone returns a new reference to the same object. The destruction callback
// is not copied.
func (w *Weak[T]) Clone() *Weak[T] {
	c := new(Weak[T])
	if w.base != nil {
		c.Reset(w.obj)
	}
	return c
}

func (w *Weak[T]) setSlot(i int) { w.slot = i }

func (w *Weak[T]) objectDestroyed() {
	obj := w.obj
	var zero T
	w.obj = zero
	w.base = nil
	if w.onDestroy != nil {
		w.onDestroy(obj)
	}
}

// detach swap-removes w from the referenced object's slot table.
func (w *Weak[T]) detach() {
	base := w.base
	if base == nil {
		return
	}
	last := len(base.weakRefs) - 1
	if w.slot != last {
		moved := base.weakRefs[last]
		base.weakRefs[w.slot] = moved
		moved.setSlot(w.slot)
	}
	base.weakRefs[last] = nil
	base.weakRefs = base.weakRefs[:last]
	var zero T
	w.obj = zero
	w.base = nil
}
