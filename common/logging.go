package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is the leveled logger passed through the engine builders.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes "[prefix] LEVEL: msg" lines through the standard log package.
// Debug and info go to the out writer, warnings and errors to the err writer.
type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

var _ Logger = &DefaultLogger{}

// NewDefaultLogger creates a DefaultLogger writing to stdout and stderr.
//
// Parameters:
//   - prefix: tag printed in brackets before every line (empty for none)
//   - debug: whether Debugf output is enabled
//
// Returns:
//   - *DefaultLogger: the logger
func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLogger(prefix, debug, os.Stdout, os.Stderr)
}

// NewLogger creates a DefaultLogger with explicit writers.
//
// Parameters:
//   - prefix: tag printed in brackets before every line (empty for none)
//   - debug: whether Debugf output is enabled
//   - out: destination for debug and info lines
//   - errOut: destination for warning and error lines
//
// Returns:
//   - *DefaultLogger: the logger
func NewLogger(prefix string, debug bool, out, errOut io.Writer) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) prefixf(level string, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.prefixf("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.prefixf("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.prefixf("ERROR", format, args...))
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool {
	return false
}

func (nopLogger) SetDebug(bool) {}

func (nopLogger) Debugf(string, ...any) {}

func (nopLogger) Infof(string, ...any) {}

func (nopLogger) Warnf(string, ...any) {}

func (nopLogger) Errorf(string, ...any) {}
