// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

// Keymap is the keyboard-layout object shared by input consumers. The loop
// only stores it; layout and compose handling live elsewhere.
type Keymap interface {
	Handle
}

// Keymap returns the current keymap, which may be nil.
func (l *Loop) Keymap() Keymap { return l.keymap }

// SetKeymap replaces the current keymap, then notifies OnKeymapChanged.
// Setting the current keymap again does nothing. The previous keymap is not
// destroyed.
func (l *Loop) SetKeymap(keymap Keymap) {
	if l.closed || keymap == l.keymap {
		return
	}
	l.keymap = keymap
	l.OnKeymapChanged.Notify(keymap)
}
