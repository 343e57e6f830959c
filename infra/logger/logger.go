// Package logger provides the zerolog-backed implementation of the core
// logging interface.
package logger

import corelogger "github.com/medispatch/engine/core/logger"

// Logger aliases the core interface so infra packages only import one
// logging package.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods. Used in tests and as
// the default when no logger is injected.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger for the given component.
func New(component string) Logger {
	return NewZerologLogger(component)
}
