// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

var serial atomic.Uint32

// NextSerial returns the next process-wide event serial. Serials wrap but
// are never zero.
func NextSerial() uint32 {
	for {
		if v := serial.Add(1); v != 0 {
			return v
		}
	}
}

// MonotonicNs returns the current CLOCK_MONOTONIC time.
func MonotonicNs() unix.Timespec {
	var ts unix.Timespec
	// only fails for an invalid clock id
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	return ts
}

// MonotonicMs returns CLOCK_MONOTONIC in milliseconds, truncated to 32 bits
// as used for input event timestamps.
func MonotonicMs() uint32 {
	ts := MonotonicNs()
	return uint32(ts.Sec*1000 + ts.Nsec/1_000_000)
}

// MonotonicUs returns CLOCK_MONOTONIC in microseconds.
func MonotonicUs() uint64 {
	ts := MonotonicNs()
	return uint64(ts.Sec)*1_000_000 + uint64(ts.Nsec)/1000
}
