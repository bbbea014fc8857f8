// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"errors"
	"time"

	"github.com/joeycumines/logiface"
)

// DefaultAnimationInterval is the animation tick period used unless
// overridden by [WithAnimationInterval].
const DefaultAnimationInterval = 8 * time.Millisecond

// loopOptions holds configuration options for Loop creation.
type loopOptions struct {
	logger            *logiface.Logger[logiface.Event]
	keymapFactory     func() (Keymap, error)
	animationInterval time.Duration
	readyBuffer       int
}

// --- Loop Options ---

// LoopOption configures a Loop instance. Options only take effect when
// [GetOrMake] actually constructs the loop.
type LoopOption interface {
	applyLoop(*loopOptions) error
}

// loopOptionImpl implements LoopOption.
type loopOptionImpl struct {
	applyLoopFunc func(*loopOptions) error
}

func (l *loopOptionImpl) applyLoop(opts *loopOptions) error {
	return l.applyLoopFunc(opts)
}

// WithAnimationInterval sets the period between automatic animation steps.
// Zero disables automatic stepping, leaving [Loop.UpdateAnimations] to the
// caller.
func WithAnimationInterval(interval time.Duration) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		if interval < 0 {
			return errors.New("reactor: negative animation interval")
		}
		opts.animationInterval = interval
		return nil
	}}
}

// WithLogger sets the logger used by the loop, instead of the package
// logger.
func WithLogger(logger *logiface.Logger[logiface.Event]) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithKeymapFactory provides the default keyboard-layout object, created
// once the loop is otherwise initialized. A factory error aborts loop
// construction.
func WithKeymapFactory(factory func() (Keymap, error)) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.keymapFactory = factory
		return nil
	}}
}

// WithReadyBuffer sets the minimum capacity of the readiness buffer passed to
// epoll_wait. The buffer still grows to match the number of sources.
func WithReadyBuffer(n int) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		if n < 1 {
			return errors.New("reactor: ready buffer must be positive")
		}
		opts.readyBuffer = n
		return nil
	}}
}

// resolveLoopOptions applies LoopOption instances to loopOptions.
func resolveLoopOptions(opts []LoopOption) (*loopOptions, error) {
	cfg := &loopOptions{
		animationInterval: DefaultAnimationInterval,
		readyBuffer:       1,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
