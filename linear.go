// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"time"
)

// LinearAnimation moves its value from 0 to 1 over a fixed duration.
type LinearAnimation struct {
	Animation
	duration time.Duration
}

var _ AnimationStepper = (*LinearAnimation)(nil)

// NewLinearAnimation returns a stopped, reusable linear animation.
func NewLinearAnimation(duration time.Duration, onUpdate, onFinish AnimationCallback) (*LinearAnimation, error) {
	return newLinearAnimation(duration, onUpdate, onFinish, false)
}

// StartOneShotLinearAnimation starts a linear animation that destroys
// itself once finished.
func StartOneShotLinearAnimation(duration time.Duration, onUpdate, onFinish AnimationCallback) error {
	la, err := newLinearAnimation(duration, onUpdate, onFinish, true)
	if err != nil {
		return err
	}
	la.Start()
	return nil
}

func newLinearAnimation(duration time.Duration, onUpdate, onFinish AnimationCallback, oneShot bool) (*LinearAnimation, error) {
	la := &LinearAnimation{duration: max(duration, 0)}
	if err := la.init(la, onUpdate, onFinish, oneShot); err != nil {
		return nil, err
	}
	return la, nil
}

// Duration returns the animation's duration.
func (la *LinearAnimation) Duration() time.Duration { return la.duration }

// SetDuration changes the duration. Ignored while running.
func (la *LinearAnimation) SetDuration(d time.Duration) {
	if !la.running {
		la.duration = max(d, 0)
	}
}

// StartAnimation implements AnimationStepper.
func (la *LinearAnimation) StartAnimation(a *Animation) {
	a.value = 0
}

// StepAnimation implements AnimationStepper.
func (la *LinearAnimation) StepAnimation(a *Animation, elapsed time.Duration) bool {
	if elapsed >= la.duration {
		a.value = 1
		return false
	}
	a.value = float64(elapsed) / float64(la.duration)
	return true
}
