// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package spring evaluates a unit-mass damped harmonic oscillator in closed
// form.
//
// The natural frequency is derived from the stiffness as sqrt(k * 0.01), and
// the damping ratio selects one of the under-damped (< 1), critically damped
// (== 1) or over-damped (> 1) solutions. Evaluation is always relative to a
// fixed anchor state, so results do not drift with the sampling rate.
package spring

import (
	"math"
)

// RestThreshold bounds both |position - target| and |velocity| at rest.
const RestThreshold = 1e-3

// State is a position and its first derivative.
type State struct {
	Position float64
	Velocity float64
}

// Params are the constants of the oscillator.
type Params struct {
	Stiffness    float64
	DampingRatio float64
}

// NaturalFrequency returns the undamped angular frequency for stiffness.
func NaturalFrequency(stiffness float64) float64 {
	if stiffness <= 0 {
		return 0
	}
	return math.Sqrt(stiffness * 0.01)
}

// Evaluate returns the state t seconds after anchor, for an oscillator
// settling on target.
func Evaluate(p Params, target float64, anchor State, t float64) State {
	w := NaturalFrequency(p.Stiffness)
	delta := anchor.Position - target
	if w == 0 {
		return State{Position: anchor.Position + anchor.Velocity*t, Velocity: anchor.Velocity}
	}
	z := p.DampingRatio
	switch {
	case z < 1:
		return underdamped(w, z, delta, anchor.Velocity, target, t)
	case z == 1:
		return critical(w, delta, anchor.Velocity, target, t)
	default:
		return overdamped(w, z, delta, anchor.Velocity, target, t)
	}
}

func underdamped(w, z, delta, v, target, t float64) State {
	wd := w * math.Sqrt(1-z*z)
	a := delta
	b := (v + z*w*delta) / wd
	decay := math.Exp(-z * w * t)
	sin, cos := math.Sincos(wd * t)
	osc := a*cos + b*sin
	return State{
		Position: target + decay*osc,
		Velocity: decay * (-w*z*osc - a*wd*sin + b*wd*cos),
	}
}

func critical(w, delta, v, target, t float64) State {
	a := delta
	b := v + w*delta
	decay := math.Exp(-w * t)
	return State{
		Position: target + decay*(a+b*t),
		Velocity: decay * (b - w*(a+b*t)),
	}
}

func overdamped(w, z, delta, v, target, t float64) State {
	d := math.Sqrt(z*z - 1)
	r1 := -w * (z - d)
	r2 := -w * (z + d)
	a := (v - r2*delta) / (r1 - r2)
	b := delta - a
	e1, e2 := math.Exp(r1*t), math.Exp(r2*t)
	return State{
		Position: target + a*e1 + b*e2,
		Velocity: a*r1*e1 + b*r2*e2,
	}
}

// AtRest reports whether s has settled on target.
func AtRest(s State, target float64) bool {
	return math.Abs(s.Position-target) < RestThreshold && math.Abs(s.Velocity) < RestThreshold
}
