package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/race-results/internal/common"
)

// DefaultMinCount is the richness a backend must exceed to be accepted
// without trying the rest.
const DefaultMinCount = 25

// Attempt records how one backend did on one document.
type Attempt struct {
	Backend  string        `json:"backend"`
	Count    int           `json:"count"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Selector tries backends in order and keeps the first sufficiently rich
// output, falling back to the richest one seen.
type Selector struct {
	backends []Backend
	minCount int
	logger   *slog.Logger
}

// NewSelector builds a Selector. A negative minCount means DefaultMinCount.
func NewSelector(backends []Backend, minCount int, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	if minCount < 0 {
		minCount = DefaultMinCount
	}
	return &Selector{backends: backends, minCount: minCount, logger: logger}
}

// Backends lists the configured backend names in trial order.
func (s *Selector) Backends() []string {
	names := make([]string, len(s.backends))
	for i, b := range s.backends {
		names[i] = b.Name()
	}
	return names
}

// Select never fails: when every backend errors or yields nothing the
// returned Output is empty and its Backend is "".
func (s *Selector) Select(ctx context.Context, path string) (Output, []Attempt) {
	var (
		best     Output
		bestN    int
		attempts = make([]Attempt, 0, len(s.backends))
	)
	for _, b := range s.backends {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("extract.select.canceled", "path", path, "err", err)
			break
		}
		start := time.Now()
		out, err := s.try(ctx, b, path)
		at := Attempt{Backend: b.Name(), Duration: time.Since(start)}
		if err != nil {
			at.Error = err.Error()
			attempts = append(attempts, at)
			s.logger.Warn("extract.backend.failed", "backend", b.Name(), "path", path, "err", err)
			continue
		}
		out.Backend = b.Name()
		at.Count = out.Count()
		attempts = append(attempts, at)
		s.logger.Debug("extract.backend.done", "backend", b.Name(), "path", path, "count", at.Count, "duration", at.Duration)

		if at.Count > s.minCount {
			return out, attempts
		}
		if at.Count > bestN {
			best, bestN = out, at.Count
		}
	}
	if bestN == 0 {
		s.logger.Warn("extract.select.empty", "path", path, "backends", s.Backends())
		return Output{}, attempts
	}
	s.logger.Info("extract.select.below_threshold", "path", path, "backend", best.Backend, "count", bestN, "min", s.minCount)
	return best, attempts
}

// try shields the selector from a backend that panics on a malformed file.
func (s *Selector) try(ctx context.Context, b Backend, path string) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend %s panicked: %v", b.Name(), r)
		}
	}()
	return b.Extract(ctx, path)
}

// Resolve orders the available backends by name. Unknown names are an error.
func Resolve(names []string, available ...Backend) ([]Backend, error) {
	byName := make(map[string]Backend, len(available))
	for _, b := range available {
		if b != nil {
			byName[b.Name()] = b
		}
	}
	out := make([]Backend, 0, len(names))
	for _, name := range names {
		b, ok := byName[name]
		if !ok {
			return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown extraction backend %q", name), common.ErrInvalidInput)
		}
		out = append(out, b)
	}
	return out, nil
}
