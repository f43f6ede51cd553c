// Package logtest implements support for testing Loggers.
package logtest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/trainyard-games/mexican-train/server/log"
)

// DiscardLogger is a Logger that ignores everything written to it.
var DiscardLogger = new(discardLogger)

type discardLogger struct{}

var _ log.Logger = DiscardLogger

// Printf implements the log.Logger interface.
func (discardLogger) Printf(format string, v ...interface{}) {
	// NOOP
}

// Logger records writes in a buffer so tests can inspect them.
type Logger struct {
	buf bytes.Buffer
	mu  sync.RWMutex
}

var _ log.Logger = new(Logger)

// NewLogger creates a recording Logger.
func NewLogger() *Logger {
	return new(Logger)
}

// Printf implements the log.Logger interface.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(&l.buf, format, v...)
}

// String returns everything recorded so far.
func (l *Logger) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buf.String()
}

// Empty returns whether anything has been recorded.
func (l *Logger) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buf.Len() == 0
}

// Reset clears the recording.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Reset()
}
