// Package diag provides the diagnostics sink injected into evaluation code,
// so the core has no ambient output dependency and emitted warnings can be
// captured in tests.
package diag

import (
	"fmt"
	"log/slog"
	"sync"
)

// Sink receives non-fatal diagnostics emitted during check evaluation.
type Sink interface {
	// Warnf reports a soft failure, e.g. a missing threshold annotation.
	Warnf(format string, args ...any)
}

// SlogSink forwards diagnostics to a slog.Logger.
type SlogSink struct {
	Logger *slog.Logger
}

var _ Sink = (*SlogSink)(nil)

func (s *SlogSink) Warnf(format string, args ...any) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(fmt.Sprintf(format, args...))
}

// Capture records every warning for later inspection. Safe for concurrent use.
type Capture struct {
	mu       sync.Mutex
	warnings []string
}

var _ Sink = (*Capture)(nil)

func (c *Capture) Warnf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns a copy of the recorded warnings in emission order.
func (c *Capture) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Discard drops all diagnostics.
type Discard struct{}

var _ Sink = (*Discard)(nil)

func (Discard) Warnf(string, ...any) {}
