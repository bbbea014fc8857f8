// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/joeycumines/go-reactor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction(`github.com/joeycumines/go-catrate.(*Limiter).worker`),
	)
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(`
timers:
  - name: fast
    timeout: 0s
  - name: slow
    timeout: 1.5s
    oneshot: true
animations:
  - name: fade
    kind: linear
    duration: 250ms
  - name: bounce
    kind: spring
    to: 2
    stiffness: 1500
    damping: 0.5
`))
	require.NoError(t, err)
	assert.Equal(t, []TimerSpec{
		{Name: `fast`},
		{Name: `slow`, Timeout: 1500 * time.Millisecond, OneShot: true},
	}, sc.Timers)
	assert.Equal(t, []AnimationSpec{
		{Name: `fade`, Kind: kindLinear, Duration: 250 * time.Millisecond},
		{Name: `bounce`, Kind: kindSpring, To: 2, Stiffness: 1500, Damping: 0.5},
	}, sc.Animations)
}

func TestLoadScenario_invalid(t *testing.T) {
	for name, doc := range map[string]string{
		`empty`:            ``,
		`nothing to run`:   `timers: []`,
		`unknown field`:    "timers:\n  - name: a\n    delay: 1s\n",
		`missing name`:     "timers:\n  - timeout: 1s\n",
		`duplicate name`:   "timers:\n  - name: a\n  - name: a\n",
		`negative timeout`: "timers:\n  - name: a\n    timeout: -1s\n",
		`unknown kind`:     "animations:\n  - name: a\n    kind: bezier\n",
		`linear duration`:  "animations:\n  - name: a\n    kind: linear\n",
		`negative spring`:  "animations:\n  - name: a\n    kind: spring\n    stiffness: -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			sc, err := LoadScenario(strings.NewReader(doc))
			assert.Nil(t, sc)
			assert.Error(t, err)
		})
	}
}

func TestDefaultScenario(t *testing.T) {
	sc := DefaultScenario()
	require.NoError(t, sc.Validate())
	require.Len(t, sc.Timers, 5)
	assert.True(t, sc.Timers[3].OneShot)
}

func TestRunScenario(t *testing.T) {
	var out bytes.Buffer
	logger := reactor.NewLogger(io.Discard, reactor.LogSilent)

	err := runScenario(context.Background(), &out, logger, &Scenario{
		Timers: []TimerSpec{
			{Name: `slow`, Timeout: 40 * time.Millisecond},
			{Name: `zero`},
			{Name: `once`, Timeout: 10 * time.Millisecond, OneShot: true},
		},
		Animations: []AnimationSpec{
			{Name: `fade`, Kind: kindLinear, Duration: 20 * time.Millisecond},
			{Name: `snap`, Kind: kindSpring, To: 1, Stiffness: reactor.StiffnessHigh, Damping: reactor.DampingRatioNoBouncy},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, reactor.Get())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], `timer zero: done at`), lines[0])
	assert.Contains(t, out.String(), `animation snap: done at`)
	assert.Contains(t, out.String(), `(value 1.000)`)

	var slow, once int
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, `timer slow:`):
			slow = i
		case strings.HasPrefix(line, `timer once:`):
			once = i
		}
	}
	assert.Less(t, once, slow)
}

func TestRunScenario_cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := runScenario(ctx, &out, reactor.NewLogger(io.Discard, reactor.LogSilent), &Scenario{
		Timers: []TimerSpec{{Name: `never`, Timeout: time.Hour, OneShot: true}},
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, out.String())
	assert.Nil(t, reactor.Get())
}
