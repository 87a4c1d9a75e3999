// Package logger writes diagnostic lines to stderr. Everything below
// error level is shown only with --verbose, so a plain run stays quiet
// apart from failures.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var labels = [...]string{
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func Debug(format string, args ...any) { logf(levelDebug, format, args...) }
func Info(format string, args ...any)  { logf(levelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(levelWarn, format, args...) }

// Error is printed even when verbose is off.
func Error(format string, args ...any) { logf(levelError, format, args...) }

// Section starts a titled block of verbose output, one per pipeline stage.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Timed logs how long a step took when the returned func is called:
//
//	defer logger.Timed("embedding query")()
func Timed(step string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", step, time.Since(start).Round(time.Millisecond))
	}
}

// logf holds the write lock so concurrent lines never interleave.
func logf(l level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < levelError && !verbose {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", labels[l], fmt.Sprintf(format, args...))
}
