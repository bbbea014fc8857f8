// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// LogLevelEnv is the environment variable consulted (once) for the severity
// of the package's diagnostic channel.
const LogLevelEnv = `REACTOR_LOG_LEVEL`

// LogLevel is the fixed severity enumeration accepted by [LogLevelEnv].
// Higher values are more verbose.
type LogLevel int32

const (
	LogSilent LogLevel = iota
	LogFatal
	LogError
	LogWarning
	LogInfo
	LogDebug
	LogTrace
)

var logLevelNames = [...]string{
	LogSilent:  `silent`,
	LogFatal:   `fatal`,
	LogError:   `error`,
	LogWarning: `warning`,
	LogInfo:    `info`,
	LogDebug:   `debug`,
	LogTrace:   `trace`,
}

// String returns the lowercase name of the level.
func (l LogLevel) String() string {
	if l >= 0 && int(l) < len(logLevelNames) {
		return logLevelNames[l]
	}
	return `LogLevel(` + strconv.Itoa(int(l)) + `)`
}

// Level maps l onto the logiface severity scale.
func (l LogLevel) Level() logiface.Level {
	switch l {
	case LogFatal:
		return logiface.LevelCritical
	case LogError:
		return logiface.LevelError
	case LogWarning:
		return logiface.LevelWarning
	case LogInfo:
		return logiface.LevelInformational
	case LogDebug:
		return logiface.LevelDebug
	case LogTrace:
		return logiface.LevelTrace
	default:
		return logiface.LevelDisabled
	}
}

// ParseLogLevel accepts either the numeric form (0-6) or a level name.
// Anything else is reported as not ok.
func ParseLogLevel(s string) (LogLevel, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(LogSilent) || n > int(LogTrace) {
			return LogSilent, false
		}
		return LogLevel(n), true
	}
	s = strings.ToLower(s)
	for i, name := range logLevelNames {
		if s == name {
			return LogLevel(i), true
		}
	}
	switch s {
	case `warn`:
		return LogWarning, true
	case `err`:
		return LogError, true
	}
	return LogSilent, false
}

// NewLogger builds a JSON logger writing to w, filtered at level.
func NewLogger(w io.Writer, level LogLevel) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level.Level()),
	).Logger()
}

// envLogLevel resolves the level from the environment. Unset or invalid
// values are silent.
func envLogLevel(lookup func(string) (string, bool)) LogLevel {
	v, ok := lookup(LogLevelEnv)
	if !ok {
		return LogSilent
	}
	level, ok := ParseLogLevel(v)
	if !ok {
		return LogSilent
	}
	return level
}

var (
	envLogger = sync.OnceValue(func() *logiface.Logger[logiface.Event] {
		return NewLogger(os.Stderr, envLogLevel(os.LookupEnv))
	})

	globalLogger struct {
		sync.RWMutex
		logger *logiface.Logger[logiface.Event]
	}
)

// SetLogger replaces the package logger. A nil logger restores the one
// configured from [LogLevelEnv].
func SetLogger(logger *logiface.Logger[logiface.Event]) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = logger
}

// Logger returns the package logger.
func Logger() *logiface.Logger[logiface.Event] {
	globalLogger.RLock()
	logger := globalLogger.logger
	globalLogger.RUnlock()
	if logger != nil {
		return logger
	}
	return envLogger()
}

// diagLimiter throttles diagnostics emitted from the dispatch path, where a
// misbehaving source could otherwise log on every pass.
var diagLimiter = sync.OnceValue(func() *catrate.Limiter {
	return catrate.NewLimiter(map[time.Duration]int{
		time.Second: 5,
		time.Minute: 60,
	})
})

// throttled reports whether a diagnostic in category may be emitted now.
func throttled(category string) bool {
	_, ok := diagLimiter().Allow(category)
	return !ok
}
