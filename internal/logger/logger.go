// Package logger provides verbose logging for phyx. Messages are only written
// when verbose mode is on, which the --verbose flag enables, so that document
// recalculation can be traced without cluttering normal output.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	now               = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the writer for verbose logs. The default is os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(tag, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
	}
}

// Debug logs a detail message.
func Debug(format string, args ...any) {
	logf("DEBUG", format, args)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	logf("INFO", format, args)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	logf("WARN", format, args)
}

// Section logs a header separating phases of work.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Timed logs the start of an operation and returns a function that logs its
// duration. Use it as defer logger.Timed("recalculate")().
func Timed(name string) func() {
	if !IsVerbose() {
		return func() {}
	}
	start := now()
	Debug("%s: start", name)
	return func() {
		Debug("%s: done in %v", name, now().Sub(start))
	}
}
