// Package monitoring defines the error-reporting interface used across
// the engine. The concrete reporter lives in infra/monitoring.
package monitoring

import (
	"sync"
	"time"
)

// Monitor reports errors and panics to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards everything. The default until Init is called.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. A nil monitor is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func active() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	active().CaptureException(err, tags)
}

// Recover captures panics in goroutines. Call with defer.
func Recover() {
	active().Recover()
}

// Flush flushes buffered events before shutdown.
func Flush(d time.Duration) {
	active().Flush(d)
}
