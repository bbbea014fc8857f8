// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

// Signal is a multicast notification carrying a value of type T. Use a
// struct for several values, or struct{} for none.
//
// The zero value is ready to use. A Signal must not be copied after first
// use.
type Signal[T any] struct {
	listeners []*Listener
	// set whenever the listener set changes, observed by Notify
	changed bool
}

// Subscribe registers cb, owned by owner. The listener is removed when
// either owner or the signal is destroyed, or when it is removed
// explicitly.
//
// A nil owner or callback panics. If owner is already destroyed the
// subscription is refused and nil is returned.
func (s *Signal[T]) Subscribe(owner Handle, cb func(T)) *Listener {
	if isNilHandle(owner) {
		panic("reactor: listener requires an owner")
	}
	if cb == nil {
		panic(ErrNilCallback)
	}
	base := owner.Base()
	if base.destroyed {
		Logger().Warning().Log(`reactor: refused listener for destroyed owner`)
		return nil
	}
	l := &Listener{
		owner:      base,
		signal:     s,
		fn:         cb,
		ownerSlot:  len(base.listeners),
		signalSlot: len(s.listeners),
	}
	base.listeners = append(base.listeners, l)
	s.listeners = append(s.listeners, l)
	s.changed = true
	return l
}

// Notify invokes every listener with v.
//
// Listeners may subscribe or remove listeners (including themselves) and
// destroy objects from within the callback. Each listener present when
// Notify starts runs exactly once, unless it is removed before its turn.
// Listeners added during the emission run once, in the same emission.
func (s *Signal[T]) Notify(v T) {
	for _, l := range s.listeners {
		l.notified = false
	}
	for restart := true; restart; {
		restart = false
		s.changed = false
		for i := 0; i < len(s.listeners); i++ {
			l := s.listeners[i]
			if l.notified {
				continue
			}
			l.notified = true
			l.fn.(func(T))(v)
			if s.changed {
				restart = true
				break
			}
		}
	}
}

// Len returns the number of listeners.
func (s *Signal[T]) Len() int { return len(s.listeners) }

// Close removes every listener.
func (s *Signal[T]) Close() {
	for len(s.listeners) != 0 {
		s.listeners[len(s.listeners)-1].Remove()
	}
}

func (s *Signal[T]) removeListener(l *Listener) {
	last := len(s.listeners) - 1
	if l.signalSlot != last {
		moved := s.listeners[last]
		s.listeners[l.signalSlot] = moved
		moved.signalSlot = l.signalSlot
	}
	s.listeners[last] = nil
	s.listeners = s.listeners[:last]
	s.changed = true
}
