// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLoopOptions(t *testing.T) {
	cfg, err := resolveLoopOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAnimationInterval, cfg.animationInterval)
	assert.Equal(t, 1, cfg.readyBuffer)
	assert.Nil(t, cfg.logger)
	assert.Nil(t, cfg.keymapFactory)

	logger := NewLogger(io.Discard, LogSilent)
	cfg, err = resolveLoopOptions([]LoopOption{
		nil,
		WithAnimationInterval(0),
		WithReadyBuffer(16),
		WithLogger(logger),
	})
	require.NoError(t, err)
	assert.Zero(t, cfg.animationInterval)
	assert.Equal(t, 16, cfg.readyBuffer)
	assert.Same(t, logger, cfg.logger)

	_, err = resolveLoopOptions([]LoopOption{WithReadyBuffer(0)})
	assert.Error(t, err)
	_, err = resolveLoopOptions([]LoopOption{WithAnimationInterval(-time.Millisecond)})
	assert.Error(t, err)
}

func TestWithReadyBuffer(t *testing.T) {
	l := newTestLoop(t, WithReadyBuffer(8))
	assert.Equal(t, 8, l.minReady)
	_, err := l.Dispatch(0)
	require.NoError(t, err)
	assert.Len(t, l.poller.events, 8)
}
