// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestGetOrMake_refCounted(t *testing.T) {
	require.Nil(t, Get())

	l1, err := GetOrMake()
	require.NoError(t, err)
	l2, err := GetOrMake(WithAnimationInterval(time.Second))
	require.NoError(t, err)
	assert.Same(t, l1, l2)
	assert.Same(t, l1, Get())
	assert.Equal(t, DefaultAnimationInterval, l1.AnimationInterval(), "options only apply to construction")
	assert.Positive(t, l1.FD())

	require.NoError(t, l1.Release())
	assert.False(t, l1.Closed())
	assert.Same(t, l1, Get())

	require.NoError(t, l2.Release())
	assert.True(t, l1.Closed())
	assert.Nil(t, Get())
	assert.ErrorIs(t, l1.Release(), ErrLoopClosed)

	_, err = l1.Dispatch(0)
	assert.ErrorIs(t, err, ErrLoopClosed)
	assert.ErrorIs(t, l1.PostEvent(NewEvent(EventUser, nil), new(Object)), ErrLoopClosed)

	l3, err := GetOrMake()
	require.NoError(t, err)
	assert.NotSame(t, l1, l3)
	require.NoError(t, l3.Release())
}

func TestGetOrMake_optionError(t *testing.T) {
	require.Nil(t, Get())
	_, err := GetOrMake(WithAnimationInterval(-1))
	require.Error(t, err)
	assert.Nil(t, Get())
}

type testKeymap struct {
	Object
	name string
}

func TestGetOrMake_keymap(t *testing.T) {
	t.Run(`factory`, func(t *testing.T) {
		k := &testKeymap{name: `us`}
		l := newTestLoop(t, WithKeymapFactory(func() (Keymap, error) { return k, nil }))
		assert.Same(t, k, l.Keymap())

		var changed []Keymap
		owner := new(Object)
		defer owner.Destroy()
		l.OnKeymapChanged.Subscribe(owner, func(k Keymap) { changed = append(changed, k) })

		de := &testKeymap{name: `de`}
		l.SetKeymap(de)
		l.SetKeymap(de)
		assert.Equal(t, []Keymap{de}, changed)
		assert.False(t, k.IsDestroyed())

		require.NoError(t, l.Release())
		assert.True(t, de.IsDestroyed(), "the current keymap is destroyed with the loop")
	})

	t.Run(`factory error`, func(t *testing.T) {
		require.Nil(t, Get())
		boom := errors.New(`boom`)
		_, err := GetOrMake(WithKeymapFactory(func() (Keymap, error) { return nil, boom }))
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, Get())
	})
}

func TestLoop_Dispatch_timeout(t *testing.T) {
	l := newTestLoop(t)
	start := time.Now()
	n, err := l.Dispatch(30)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestLoop_Dispatch_reentrant(t *testing.T) {
	l := newTestLoop(t)
	r, _ := newPipe(t)
	var nestedErr error
	s, err := NewEventSource(r, EventRead, Owned, func(int, IOEvents) {
		_, nestedErr = l.Dispatch(0)
	})
	require.NoError(t, err)
	defer s.Close()

	_, err = l.Dispatch(1000)
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrReentrantDispatch)
}

func TestLoop_Dispatch_recoversPanics(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLoop(t, WithLogger(NewLogger(&buf, LogError)))
	r1, _ := newPipe(t)
	r2, _ := newPipe(t)

	calls := 0
	s1, err := NewEventSource(r1, EventRead, Owned, func(int, IOEvents) { calls++; panic(`boom`) })
	require.NoError(t, err)
	defer s1.Close()
	s2, err := NewEventSource(r2, EventRead, Owned, func(int, IOEvents) { calls++; panic(`boom`) })
	require.NoError(t, err)
	defer s2.Close()

	n, err := l.Dispatch(1000)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, calls)
	assert.Contains(t, buf.String(), `source callback panicked`)
}

func TestLoop_Release_fromCallback(t *testing.T) {
	require.Nil(t, Get())
	l, err := GetOrMake()
	require.NoError(t, err)

	r, _ := newPipe(t)
	s, err := NewEventSource(r, EventRead, Owned, func(int, IOEvents) {
		require.NoError(t, l.Release())
		assert.False(t, l.Closed(), "teardown waits for dispatch to return")
	})
	require.NoError(t, err)
	defer s.Close()

	_, err = l.Dispatch(1000)
	require.NoError(t, err)
	assert.True(t, l.Closed())
	assert.Nil(t, Get())
}

func TestLoop_Wake(t *testing.T) {
	l := newTestLoop(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		l.Wake()
	}()

	start := time.Now()
	n, err := l.Dispatch(10_000)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, l.wake.State(), "reset by dispatch")

	n, err = l.Dispatch(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoop_Wake_concurrent(t *testing.T) {
	l := newTestLoop(t)

	var (
		stop atomic.Bool
		wg   sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				l.Wake()
			}
		}()
	}
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		_, err := l.Dispatch(0)
		require.NoError(t, err)
	}
	stop.Store(true)
	wg.Wait()

	// settles once the wakers are gone
	for i := 0; ; i++ {
		require.Less(t, i, 10)
		n, err := l.Dispatch(0)
		require.NoError(t, err)
		if n == 0 {
			break
		}
	}
	assert.False(t, l.wake.State())
	assert.False(t, readable(t, l.wake.FD()))

	go l.Wake()
	start := time.Now()
	n, err := l.Dispatch(5000)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestLoop_Run(t *testing.T) {
	l := newTestLoop(t)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	var timer *Timer
	timer = NewTimer(func(*Timer) {
		ticks++
		if ticks == 3 {
			cancel()
			return
		}
		timer.Start(time.Millisecond)
	})
	defer timer.Destroy()
	timer.Start(time.Millisecond)

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, ticks)
}

func TestLoop_Run_cancelledFromOtherGoroutine(t *testing.T) {
	l := newTestLoop(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
}

func TestLoop_SendEvent(t *testing.T) {
	l := newTestLoop(t)

	t.Run(`filters then target`, func(t *testing.T) {
		var (
			target = new(testObject)
			order  []string
			f1     = &testObject{filter: func(*Event, Handle) bool { order = append(order, "f1"); return false }}
			f2     = &testObject{filter: func(e *Event, h Handle) bool {
				order = append(order, "f2")
				assert.Equal(t, Handle(target), h)
				return false
			}}
		)
		target.handle = func(*Event) bool { order = append(order, "target"); return true }
		target.InstallEventFilter(f1)
		target.InstallEventFilter(f2)

		e := NewEvent(EventPointerMove, nil)
		assert.False(t, e.IsAccepted())
		assert.True(t, l.SendEvent(e, target))
		assert.True(t, e.IsAccepted())
		assert.Equal(t, []string{"f2", "f1", "target"}, order)
	})

	t.Run(`filter consumes`, func(t *testing.T) {
		var (
			target = new(testObject)
			f1     = &testObject{filter: func(*Event, Handle) bool { return true }}
			f2     = new(testObject)
		)
		target.InstallEventFilter(f2)
		target.InstallEventFilter(f1)
		assert.True(t, l.SendEvent(NewEvent(EventKeyboardKey, nil), target))
		assert.Empty(t, target.events)
		assert.Empty(t, f2.filtered)
	})

	t.Run(`filter destroys target`, func(t *testing.T) {
		var (
			target = new(testObject)
			second = new(testObject)
			first  = &testObject{filter: func(*Event, Handle) bool { target.Destroy(); return false }}
		)
		target.InstallEventFilter(second)
		target.InstallEventFilter(first)
		assert.True(t, l.SendEvent(NewEvent(EventUser, nil), target))
		assert.Empty(t, second.filtered)
		assert.Empty(t, target.events)
	})

	t.Run(`filter removes a later filter`, func(t *testing.T) {
		var (
			target = new(testObject)
			older  = new(testObject)
			newer  = &testObject{filter: func(*Event, Handle) bool {
				target.RemoveEventFilter(older)
				return false
			}}
		)
		target.InstallEventFilter(older)
		target.InstallEventFilter(newer)
		assert.True(t, l.SendEvent(NewEvent(EventUser, nil), target))
		assert.Len(t, newer.filtered, 1)
		assert.Empty(t, older.filtered)
		assert.Len(t, target.events, 1)
		assert.Equal(t, []Handle{newer}, target.EventFilters())
	})

	t.Run(`destroy event`, func(t *testing.T) {
		var (
			target  = new(destroyOnEvent)
			monitor = &testObject{filter: func(*Event, Handle) bool { return true }}
		)
		target.InstallEventFilter(monitor)
		assert.True(t, l.SendEvent(NewEvent(EventDestroy, nil), target))
		assert.True(t, target.IsDestroyed())
		assert.Equal(t, 1, target.torndown)
		assert.Empty(t, monitor.filtered, "destroy bypasses filters")
	})

	t.Run(`destroyed target`, func(t *testing.T) {
		target := new(testObject)
		target.Destroy()
		assert.False(t, l.SendEvent(NewEvent(EventUser, nil), target))
		assert.False(t, l.SendEvent(nil, new(testObject)))
		assert.False(t, l.SendEvent(NewEvent(EventUser, nil), nil))
	})

	t.Run(`no handler`, func(t *testing.T) {
		assert.False(t, l.SendEvent(NewEvent(EventUser, nil), new(Object)))
	})
}

func TestLoop_PostEvent(t *testing.T) {
	l := newTestLoop(t)

	var (
		a, b   = &testObject{name: "a"}, &testObject{name: "b"}
		gone   = &testObject{name: "gone"}
		passes int
	)
	a.handle = func(e *Event) bool {
		if e.Type() == EventUser {
			// lands in the next pass
			require.NoError(t, l.PostEvent(NewEvent(EventUser+1, passes), a))
		}
		return true
	}

	require.NoError(t, l.PostEvent(NewEvent(EventUser, 1), a))
	require.NoError(t, l.PostEvent(NewEvent(EventUser, 2), gone))
	require.NoError(t, l.PostEvent(NewEvent(EventUser, 3), b))
	require.ErrorIs(t, l.PostEvent(nil, a), ErrInvalidEvent)
	require.ErrorIs(t, l.PostEvent(NewEvent(EventUser, nil), nil), ErrInvalidEvent)
	var nilTarget *testObject
	require.ErrorIs(t, l.PostEvent(NewEvent(EventUser, nil), nilTarget), ErrInvalidEvent)
	gone.Destroy()

	assert.Empty(t, a.events, "never delivered synchronously")

	passes = 1
	_, err := l.Dispatch(0)
	require.NoError(t, err)
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, 1, a.events[0].Payload)
	assert.Equal(t, 3, b.events[0].Payload)
	assert.Empty(t, gone.events)
	assert.Equal(t, 1, l.PendingEvents())

	passes = 2
	_, err = l.Dispatch(1000)
	require.NoError(t, err)
	require.Len(t, a.events, 2)
	assert.Equal(t, EventUser+1, a.events[1].Type())
	assert.Equal(t, 1, a.events[1].Payload)
	assert.Zero(t, l.PendingEvents())
}

func TestLoop_PostEvent_drainedAfterReadiness(t *testing.T) {
	l := newTestLoop(t)
	r, _ := newPipe(t)

	var order []string
	target := &testObject{handle: func(*Event) bool { order = append(order, "event"); return true }}
	s, err := NewEventSource(r, EventRead, Owned, func(fd int, _ IOEvents) {
		var buf [1]byte
		_, _ = unix.Read(fd, buf[:])
		order = append(order, "source")
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, l.PostEvent(NewEvent(EventUser, nil), target))
	_, err = l.Dispatch(1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"source", "event"}, order)
}

func TestLoop_teardownClearsQueue(t *testing.T) {
	require.Nil(t, Get())
	l, err := GetOrMake()
	require.NoError(t, err)
	target := new(testObject)
	require.NoError(t, l.PostEvent(NewEvent(EventUser, nil), target))
	assert.Len(t, target.weakRefs, 1)
	require.NoError(t, l.Release())
	assert.Empty(t, target.weakRefs)
	assert.Empty(t, target.events)
}
