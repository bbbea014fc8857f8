// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"slices"
	"time"
)

// AnimationStepper is the value policy of an [Animation].
type AnimationStepper interface {
	// StartAnimation resets the value, as the animation starts.
	StartAnimation(a *Animation)
	// StepAnimation updates the value for the time elapsed since the
	// animation started, returning false once the animation has finished.
	StepAnimation(a *Animation, elapsed time.Duration) bool
}

// AnimationCallback receives the animation being updated or finished.
type AnimationCallback func(a *Animation)

// Animation produces a value over time. Every running animation of a loop is
// stepped by one shared timer (see [WithAnimationInterval]), or by calling
// [Loop.UpdateAnimations].
//
// Like [Timer], a reusable animation is held weakly by the loop, and stops
// once it is collected.
type Animation struct {
	Object
	stepper        AnimationStepper
	loop           *Loop
	onUpdate       AnimationCallback
	onFinish       AnimationCallback
	start          time.Time
	value          float64
	running        bool
	processed      bool
	pendingDestroy bool
	oneShot        bool
}

// NewAnimation returns a stopped animation using stepper as its value
// policy.
func NewAnimation(stepper AnimationStepper, onUpdate, onFinish AnimationCallback) (*Animation, error) {
	if stepper == nil {
		return nil, ErrNilCallback
	}
	a := new(Animation)
	if err := a.init(stepper, onUpdate, onFinish, false); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Animation) init(stepper AnimationStepper, onUpdate, onFinish AnimationCallback, oneShot bool) error {
	l := Get()
	if l == nil || l.closed {
		return ErrNoLoop
	}
	a.stepper = stepper
	a.onUpdate = onUpdate
	a.onFinish = onFinish
	a.oneShot = oneShot
	a.loop = l
	l.animations = append(l.animations, makeRegistration(a, oneShot))
	l.animationsChanged = true
	return nil
}

// Value returns the current value.
func (a *Animation) Value() float64 { return a.value }

// SetValue overrides the current value.
func (a *Animation) SetValue(v float64) { a.value = v }

func (a *Animation) Running() bool { return a.running }

func (a *Animation) OneShot() bool { return a.oneShot }

// StartTime returns when the animation was last started.
func (a *Animation) StartTime() time.Time { return a.start }

// SetOnUpdate replaces the update callback. Ignored while running.
func (a *Animation) SetOnUpdate(cb AnimationCallback) {
	if !a.running {
		a.onUpdate = cb
	}
}

// SetOnFinish replaces the finish callback. Ignored while running.
func (a *Animation) SetOnFinish(cb AnimationCallback) {
	if !a.running {
		a.onFinish = cb
	}
}

// Start starts the animation, unless it is already running, then invokes
// the update callback with the initial value.
func (a *Animation) Start() {
	if a.running || a.destroyed {
		return
	}
	l := a.loop
	if l == nil {
		Logger().Warning().Log(`reactor: animation started without a loop`)
		return
	}
	a.start = l.now()
	a.running = true
	a.pendingDestroy = false
	a.stepper.StartAnimation(a)

	if l.animInterval > 0 && !l.animTimer.Running() {
		l.animTimer.Start(l.animInterval)
	}

	if a.onUpdate != nil {
		a.onUpdate(a)
	}
}

// Stop stops the animation without invoking the finish callback. A stopped
// one-shot animation is destroyed by the next update.
func (a *Animation) Stop() {
	a.running = false
	a.pendingDestroy = a.oneShot
}

// elapsed returns the time since the animation started.
func (a *Animation) elapsed() time.Duration {
	if a.loop != nil {
		return a.loop.now().Sub(a.start)
	}
	return time.Since(a.start)
}

// Destroy stops the animation, and removes it from the loop.
func (a *Animation) Destroy() {
	if !a.NotifyDestruction() {
		return
	}
	a.running = false
	if l := a.loop; l != nil {
		a.loop = nil
		if i := slices.IndexFunc(l.animations, func(r registration[Animation]) bool { return r.get() == a }); i >= 0 {
			l.animations = slices.Delete(l.animations, i, i+1)
			l.animationsChanged = true
		}
	}
	a.Object.Destroy()
}

// AnimationCount returns the number of animations, running or not, that
// have not been collected.
func (l *Loop) AnimationCount() int {
	l.pruneAnimations()
	return len(l.animations)
}

func (l *Loop) pruneAnimations() {
	var pruned bool
	if l.animations, pruned = pruneRegistrations(l.animations); pruned {
		l.animationsChanged = true
	}
}

// AnimationInterval returns the automatic stepping period, 0 if disabled.
func (l *Loop) AnimationInterval() time.Duration { return l.animInterval }

// SetAnimationInterval changes the automatic stepping period. Zero disables
// automatic stepping.
func (l *Loop) SetAnimationInterval(interval time.Duration) {
	interval = max(interval, 0)
	if interval == l.animInterval || l.closed {
		return
	}
	l.animInterval = interval
	if interval == 0 {
		l.animTimer.Stop(false)
		return
	}
	if slices.ContainsFunc(l.animations, func(r registration[Animation]) bool {
		a := r.get()
		return a != nil && a.running
	}) {
		l.animTimer.Start(interval)
	}
}

// UpdateAnimations steps every running animation once, in registration
// order. An animation that is still running gets its update callback; one
// that just finished is stopped, then gets its finish callback. Finished
// one-shot animations are destroyed, unless restarted by the callback.
//
// Callbacks may start, stop, create or destroy animations: the scan restarts
// on any change to the set, skipping animations already processed.
func (l *Loop) UpdateAnimations() {
	anyRunning := false

	l.pruneAnimations()
	for _, r := range l.animations {
		if a := r.get(); a != nil {
			a.processed = false
		}
	}

	for restart := true; restart; {
		restart = false
		l.animationsChanged = false
		for i := 0; i < len(l.animations); i++ {
			a := l.animations[i].get()
			if a == nil || a.processed {
				continue
			}
			if a.pendingDestroy {
				a.Destroy()
				restart = true
				break
			}
			a.processed = true
			if !a.running {
				continue
			}

			if a.stepper.StepAnimation(a, a.elapsed()) {
				anyRunning = true
				if a.onUpdate != nil {
					a.onUpdate(a)
				}
			} else {
				a.finish()
			}

			if l.animationsChanged {
				restart = true
				break
			}
		}
	}

	if anyRunning && l.animInterval > 0 && !l.closed {
		l.animTimer.Start(l.animInterval)
	}
}

func (a *Animation) finish() {
	a.Stop()
	ref := NewWeak(a)
	defer ref.Clear()
	if a.onFinish != nil {
		a.onFinish(a)
	}
	if ref.Alive() && a.pendingDestroy {
		a.Destroy()
	}
}
