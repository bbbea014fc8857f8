// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	a := NewEvent(EventPointerButton, 7)
	b := NewEvent(EventKeyboardKey, nil)
	assert.NotZero(t, a.Serial())
	assert.Greater(t, b.Serial(), a.Serial())
	assert.Equal(t, EventPointerButton, a.Type())
	assert.Equal(t, 7, a.Payload)
	assert.False(t, a.IsAccepted())

	assert.True(t, a.Is(EventKeyboardKey, EventPointerButton))
	assert.False(t, a.Is())
	assert.False(t, b.Is(EventPointerButton))

	a.Accept()
	c := a.Clone()
	c.Ignore()
	c.SetSerial(1)
	assert.True(t, a.IsAccepted())
	assert.NotEqual(t, uint32(1), a.Serial())
	assert.Equal(t, a.Type(), c.Type())
}

func TestEventType(t *testing.T) {
	assert.Equal(t, `Destroy`, EventDestroy.String())
	assert.Equal(t, `PointerPinchEnd`, EventPointerPinchEnd.String())
	assert.Equal(t, `User+0`, EventUser.String())
	assert.Equal(t, `User+3`, (EventUser + 3).String())
	assert.Equal(t, `EventType(500)`, EventType(500).String())

	assert.True(t, EventPointerMove.IsPointer())
	assert.True(t, EventPointerHoldEnd.IsPointer())
	assert.False(t, EventKeyboardKey.IsPointer())
	assert.False(t, EventDestroy.IsPointer())
}

func TestNextSerial_neverZero(t *testing.T) {
	serial.Store(math.MaxUint32 - 1)
	assert.Equal(t, uint32(math.MaxUint32), NextSerial())
	assert.Equal(t, uint32(1), NextSerial())
}

func TestMonotonic(t *testing.T) {
	us := MonotonicUs()
	ms := MonotonicMs()
	time.Sleep(2 * time.Millisecond)
	assert.Greater(t, MonotonicUs(), us)
	assert.GreaterOrEqual(t, MonotonicUs()-us, uint64(2000))
	assert.InDelta(t, float64(uint32(us/1000)), float64(ms), 5)
	ts := MonotonicNs()
	assert.True(t, ts.Sec > 0 || ts.Nsec > 0)
}

func TestPanicError(t *testing.T) {
	cause := errors.New(`cause`)
	err := error(PanicError{Value: cause})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `cause`)
	assert.NoError(t, PanicError{Value: `text`}.Unwrap())
}
