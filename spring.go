// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"time"

	"github.com/joeycumines/go-reactor/internal/spring"
)

// Stiffness presets, from fastest to gentlest.
const (
	StiffnessHigh    = 10000.0
	StiffnessMedium  = 1500.0
	StiffnessLow     = 200.0
	StiffnessVeryLow = 50.0
)

// Damping ratio presets. Ratios below 1 overshoot and oscillate, 1 settles
// fastest without overshoot.
const (
	DampingRatioHighBouncy   = 0.2
	DampingRatioMediumBouncy = 0.5
	DampingRatioLowBouncy    = 0.75
	DampingRatioNoBouncy     = 1.0
)

// SpringConfig holds the initial parameters of a [SpringAnimation]. Zero
// Stiffness or DampingRatio select StiffnessLow and DampingRatioLowBouncy.
type SpringConfig struct {
	From         float64
	To           float64
	Velocity     float64
	Stiffness    float64
	DampingRatio float64
}

// DefaultSpringConfig animates from 0 to 1 with the default constants.
func DefaultSpringConfig() SpringConfig {
	return SpringConfig{To: 1, Stiffness: StiffnessLow, DampingRatio: DampingRatioLowBouncy}
}

// SpringAnimation moves its value towards a target as a damped harmonic
// oscillator, running until it comes to rest. The state is evaluated in
// closed form from the last anchor (the start, or the latest parameter
// change), so it does not depend on how often it is stepped.
type SpringAnimation struct {
	Animation
	params   spring.Params
	from     float64
	to       float64
	velocity float64
	anchor   spring.State
	anchorAt time.Duration
	lastAt   time.Duration
}

var _ AnimationStepper = (*SpringAnimation)(nil)

// NewSpringAnimation returns a stopped, reusable spring animation.
func NewSpringAnimation(cfg SpringConfig, onUpdate, onFinish AnimationCallback) (*SpringAnimation, error) {
	return newSpringAnimation(cfg, onUpdate, onFinish, false)
}

// StartOneShotSpringAnimation starts a spring animation that destroys itself
// once at rest.
func StartOneShotSpringAnimation(cfg SpringConfig, onUpdate, onFinish AnimationCallback) error {
	s, err := newSpringAnimation(cfg, onUpdate, onFinish, true)
	if err != nil {
		return err
	}
	s.Start()
	return nil
}

func newSpringAnimation(cfg SpringConfig, onUpdate, onFinish AnimationCallback, oneShot bool) (*SpringAnimation, error) {
	if cfg.Stiffness == 0 {
		cfg.Stiffness = StiffnessLow
	}
	if cfg.DampingRatio == 0 {
		cfg.DampingRatio = DampingRatioLowBouncy
	}
	s := &SpringAnimation{
		params:   spring.Params{Stiffness: cfg.Stiffness, DampingRatio: cfg.DampingRatio},
		from:     cfg.From,
		to:       cfg.To,
		velocity: cfg.Velocity,
	}
	if err := s.init(s, onUpdate, onFinish, oneShot); err != nil {
		return nil, err
	}
	s.value = cfg.From
	return s, nil
}

func (s *SpringAnimation) From() float64 { return s.from }

func (s *SpringAnimation) To() float64 { return s.to }

// Velocity returns the current velocity, in value units per second.
func (s *SpringAnimation) Velocity() float64 { return s.velocity }

func (s *SpringAnimation) Stiffness() float64 { return s.params.Stiffness }

func (s *SpringAnimation) DampingRatio() float64 { return s.params.DampingRatio }

// SetFrom sets the value the next Start begins at.
func (s *SpringAnimation) SetFrom(v float64) { s.from = v }

// SetTo retargets the animation. While running, the motion continues
// smoothly from the current state towards the new target.
func (s *SpringAnimation) SetTo(v float64) {
	s.reanchor()
	s.to = v
}

// SetValue moves the current value, keeping the current velocity.
func (s *SpringAnimation) SetValue(v float64) {
	s.value = v
	s.reanchor()
}

// SetVelocity replaces the current velocity.
func (s *SpringAnimation) SetVelocity(v float64) {
	s.velocity = v
	s.reanchor()
}

func (s *SpringAnimation) SetStiffness(k float64) {
	s.reanchor()
	s.params.Stiffness = k
}

func (s *SpringAnimation) SetDampingRatio(ratio float64) {
	s.reanchor()
	s.params.DampingRatio = ratio
}

// reanchor restarts the closed form from the most recently computed state.
func (s *SpringAnimation) reanchor() {
	if !s.running {
		return
	}
	s.anchor = spring.State{Position: s.value, Velocity: s.velocity}
	s.anchorAt = s.lastAt
}

// StartAnimation implements AnimationStepper.
func (s *SpringAnimation) StartAnimation(a *Animation) {
	a.value = s.from
	s.anchor = spring.State{Position: s.from, Velocity: s.velocity}
	s.anchorAt = 0
	s.lastAt = 0
}

// StepAnimation implements AnimationStepper.
func (s *SpringAnimation) StepAnimation(a *Animation, elapsed time.Duration) bool {
	state := spring.Evaluate(s.params, s.to, s.anchor, (elapsed - s.anchorAt).Seconds())
	s.lastAt = elapsed
	if spring.AtRest(state, s.to) {
		a.value = s.to
		s.velocity = 0
		return false
	}
	a.value = state.Position
	s.velocity = state.Velocity
	return true
}
