// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Command reactor-timers runs a set of timers (and optionally animations) on
// the reactor loop, printing when each one completes.
//
// Run with: go run ./cmd/reactor-timers/ [-scenario file.yaml] [-log-level debug]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeycumines/go-reactor"
	"github.com/joeycumines/logiface"
)

func main() {
	var (
		scenarioPath string
		logLevel     string
	)
	flag.StringVar(&scenarioPath, `scenario`, ``, `YAML scenario file, defaults to the built-in timer set`)
	flag.StringVar(&logLevel, `log-level`, ``, `log level (0-6 or a name), overrides `+reactor.LogLevelEnv)
	flag.Parse()

	if err := run(scenarioPath, logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "reactor-timers: %v\n", err)
		os.Exit(1)
	}
}

func run(scenarioPath, logLevel string) error {
	logger := reactor.Logger()
	if logLevel != `` {
		level, ok := reactor.ParseLogLevel(logLevel)
		if !ok {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logger = reactor.NewLogger(os.Stderr, level)
		reactor.SetLogger(logger)
	}

	sc := DefaultScenario()
	if scenarioPath != `` {
		f, err := os.Open(scenarioPath)
		if err != nil {
			return err
		}
		sc, err = LoadScenario(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", scenarioPath, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScenario(ctx, os.Stdout, logger, sc)
}

// runScenario starts everything in sc together, then dispatches until all
// of it has completed, or ctx is done.
func runScenario(ctx context.Context, out io.Writer, logger *logiface.Logger[logiface.Event], sc *Scenario) error {
	loop, err := reactor.GetOrMake(reactor.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := loop.Release(); err != nil {
			logger.Err().Err(err).Log(`release failed`)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		start     = time.Now()
		remaining = len(sc.Timers) + len(sc.Animations)
	)
	done := func(kind, name, detail string) {
		fmt.Fprintf(out, "%s %s: done at %v%s\n", kind, name, time.Since(start).Round(time.Millisecond), detail)
		remaining--
		if remaining == 0 {
			cancel()
		}
	}

	var timers []*reactor.Timer
	defer func() {
		for _, t := range timers {
			t.Destroy()
		}
	}()
	for _, spec := range sc.Timers {
		cb := func(*reactor.Timer) { done(`timer`, spec.Name, ``) }
		if spec.OneShot {
			if err := reactor.StartOneShotTimer(spec.Timeout, cb); err != nil {
				return fmt.Errorf("timer %q: %w", spec.Name, err)
			}
			continue
		}
		t := reactor.NewTimer(cb)
		timers = append(timers, t)
		t.Start(spec.Timeout)
	}

	for _, spec := range sc.Animations {
		onFinish := func(a *reactor.Animation) {
			done(`animation`, spec.Name, fmt.Sprintf(" (value %.3f)", a.Value()))
		}
		onUpdate := func(a *reactor.Animation) {
			logger.Trace().Str(`animation`, spec.Name).Float64(`value`, a.Value()).Log(`animation update`)
		}
		var err error
		switch spec.Kind {
		case kindLinear:
			err = reactor.StartOneShotLinearAnimation(spec.Duration, onUpdate, onFinish)
		case kindSpring:
			err = reactor.StartOneShotSpringAnimation(reactor.SpringConfig{
				From:         spec.From,
				To:           spec.To,
				Stiffness:    spec.Stiffness,
				DampingRatio: spec.Damping,
			}, onUpdate, onFinish)
		}
		if err != nil {
			return fmt.Errorf("animation %q: %w", spec.Name, err)
		}
	}

	logger.Info().
		Int(`timers`, len(sc.Timers)).
		Int(`animations`, len(sc.Animations)).
		Log(`scenario started`)

	if err := loop.Run(ctx); err != nil && !(errors.Is(err, context.Canceled) && remaining == 0) {
		return err
	}

	logger.Info().Dur(`elapsed`, time.Since(start)).Log(`scenario complete`)
	return nil
}
