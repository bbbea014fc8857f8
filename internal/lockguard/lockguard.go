// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package lockguard implements a process-wide lock that tolerates recursive
// acquisition from the goroutine already holding it.
//
// Lock and Unlock report whether they actually changed the lock state, so
// code reached both directly and from within an already locked section (for
// example, teardown that calls back into accessors) can use the same scoped
// guard without deadlocking.
package lockguard

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

var (
	mu sync.Mutex
	// goroutine id of the holder, 0 if unlocked (ids start at 1)
	holder atomic.Int64
)

// Lock acquires the lock, returning false if the calling goroutine already
// holds it.
func Lock() bool {
	gid := goid.Get()
	if holder.Load() == gid {
		return false
	}
	mu.Lock()
	holder.Store(gid)
	return true
}

// Unlock releases the lock, returning false if the calling goroutine does
// not hold it.
func Unlock() bool {
	if holder.Load() != goid.Get() {
		return false
	}
	holder.Store(0)
	mu.Unlock()
	return true
}

// Held reports whether the calling goroutine holds the lock.
func Held() bool {
	return holder.Load() == goid.Get()
}

// Guard is a scoped acquisition, see Acquire.
type Guard struct {
	locked bool
}

// Acquire locks unless the calling goroutine already holds the lock. The
// returned Guard only unlocks if this call locked.
func Acquire() Guard {
	return Guard{locked: Lock()}
}

// Release undoes the matching Acquire. Calling it more than once is a no-op.
func (g *Guard) Release() {
	if g.locked {
		g.locked = false
		Unlock()
	}
}
