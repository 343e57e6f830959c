// Package audit provides audit sink implementations: a rotating JSONL file
// for the immutable local trail and an MQTT publisher for downstream
// consumers.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	coreaudit "github.com/medispatch/engine/core/audit"
)

// FileConfig holds the JSONL sink settings.
type FileConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// RotatingJSONLSink stores audit events in a JSONL file with automatic
// rotation.
type RotatingJSONLSink struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
}

// NewRotatingJSONLSink creates a sink with rotation options in megabytes and days.
func NewRotatingJSONLSink(cfg FileConfig) (*RotatingJSONLSink, error) {
	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   false,
	}
	// ensure directory exists
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &RotatingJSONLSink{logger: lj, path: cfg.Path}, nil
}

// Record writes the event and triggers rotation if needed.
func (s *RotatingJSONLSink) Record(ctx context.Context, ev coreaudit.Event) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.logger)
	return enc.Encode(ev)
}

// Query reads events from all log files including rotated ones. Domain and
// operation narrow the result when set.
type Query struct {
	Domain    string
	Operation string
}

// Query scans the current and rotated files for matching events.
func (s *RotatingJSONLSink) Query(ctx context.Context, q Query) ([]coreaudit.Event, error) {
	_ = ctx
	files, err := filepath.Glob(s.path + "*")
	if err != nil {
		return nil, err
	}
	var res []coreaudit.Event
	for _, f := range files {
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var ev coreaudit.Event
			if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
				continue
			}
			if q.Domain != "" && ev.Domain != q.Domain {
				continue
			}
			if q.Operation != "" && ev.Operation != q.Operation {
				continue
			}
			res = append(res, ev)
		}
		_ = file.Close()
	}
	return res, nil
}

// Close closes the underlying writer.
func (s *RotatingJSONLSink) Close() error {
	return s.logger.Close()
}
