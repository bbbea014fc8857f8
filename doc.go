// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package reactor implements a single-threaded, readiness driven event loop,
// along with the object model built around it.
//
// # Loop
//
// There is at most one [Loop] per process, acquired with [GetOrMake] and
// released with [Loop.Release]. Leaf components use [Get], which never
// constructs. The loop is driven by calling [Loop.Dispatch] (or
// [Loop.Run]) from a single goroutine; only [Loop.Wake] may be called
// concurrently.
//
// Each [EventSource] registers one fd with the loop's epoll instance. A
// source's lifetime is that of the caller's handle: once it is closed, or
// becomes unreachable, its callback is never invoked again, and the next
// dispatch drops the registration (closing the fd, if owned).
//
// # Objects
//
// Types embed [Object] to take part in destruction notification:
// [Object.OnDestroy], [Listener] cleanup, and [Weak] references, which are
// all resolved synchronously when the object is destroyed. Objects may
// also be event filters for one another, see [Object.InstallEventFilter]
// and [Loop.SendEvent].
//
// [Signal] is a multicast notification that tolerates arbitrary mutation
// of its listener set from within its own callbacks.
//
// # Scheduling
//
// Every [Timer] shares one timerfd, armed for the earliest deadline. Every
// running [Animation] is stepped by one repeating timer, see
// [WithAnimationInterval]. Timers and animations may be one-shot, in which
// case they destroy themselves once done.
//
// # Logging
//
// Diagnostics use a logiface logger, configured from the [LogLevelEnv]
// environment variable, or replaced with [SetLogger] or [WithLogger].
//
// This package is Linux only.
package reactor
