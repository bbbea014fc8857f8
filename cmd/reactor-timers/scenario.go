// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is the set of timers and animations to run. Durations use Go
// syntax, e.g. "500ms".
type Scenario struct {
	Timers     []TimerSpec     `yaml:"timers"`
	Animations []AnimationSpec `yaml:"animations"`
}

type TimerSpec struct {
	Name    string        `yaml:"name"`
	Timeout time.Duration `yaml:"timeout"`
	OneShot bool          `yaml:"oneshot"`
}

const (
	kindLinear = `linear`
	kindSpring = `spring`
)

type AnimationSpec struct {
	Name     string        `yaml:"name"`
	Kind     string        `yaml:"kind"`
	Duration time.Duration `yaml:"duration"`

	// springs only, zero constants select the library defaults
	From      float64 `yaml:"from"`
	To        float64 `yaml:"to"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
}

// DefaultScenario mirrors the classic timer check: one zero timeout, one
// one-shot, and three plain timers, all started together.
func DefaultScenario() *Scenario {
	return &Scenario{Timers: []TimerSpec{
		{Name: `A`, Timeout: time.Second},
		{Name: `B`, Timeout: 0},
		{Name: `C`, Timeout: 500 * time.Millisecond},
		{Name: `D`, Timeout: 2 * time.Second, OneShot: true},
		{Name: `E`, Timeout: 3 * time.Second},
	}}
}

// LoadScenario decodes and validates a YAML scenario. Unknown fields are
// rejected.
func LoadScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New(`empty scenario`)
		}
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Timers)+len(sc.Animations) == 0 {
		return errors.New(`scenario has no timers or animations`)
	}
	names := make(map[string]struct{}, len(sc.Timers)+len(sc.Animations))
	unique := func(name string) error {
		if name == `` {
			return errors.New(`missing name`)
		}
		if _, ok := names[name]; ok {
			return fmt.Errorf("duplicate name %q", name)
		}
		names[name] = struct{}{}
		return nil
	}
	for _, t := range sc.Timers {
		if err := unique(t.Name); err != nil {
			return fmt.Errorf("timer: %w", err)
		}
		if t.Timeout < 0 {
			return fmt.Errorf("timer %q: negative timeout", t.Name)
		}
	}
	for _, a := range sc.Animations {
		if err := unique(a.Name); err != nil {
			return fmt.Errorf("animation: %w", err)
		}
		switch a.Kind {
		case kindLinear:
			if a.Duration <= 0 {
				return fmt.Errorf("animation %q: linear requires a positive duration", a.Name)
			}
		case kindSpring:
			if a.Stiffness < 0 || a.Damping < 0 {
				return fmt.Errorf("animation %q: negative spring constant", a.Name)
			}
		default:
			return fmt.Errorf("animation %q: unknown kind %q", a.Name, a.Kind)
		}
	}
	return nil
}
