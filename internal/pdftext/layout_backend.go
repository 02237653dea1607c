// Package pdftext holds the embedded-text extraction backends: poppler's
// pdftotext in layout mode, and word boxes read from the PDF content
// streams with ledongthuc/pdf.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/runner"
)

const LayoutBackendName = "pdftotext-layout"

// LayoutBackend runs `pdftotext -layout` and returns the page text with its
// column spacing preserved.
type LayoutBackend struct {
	bin     string
	timeout time.Duration
	runner  runner.Runner
	logger  *slog.Logger
}

// NewLayoutBackend builds the backend. An empty bin means "pdftotext"; a nil
// runner runs commands on the host.
func NewLayoutBackend(bin string, timeout time.Duration, r runner.Runner, logger *slog.Logger) *LayoutBackend {
	if logger == nil {
		logger = slog.Default()
	}
	if bin == "" {
		bin = "pdftotext"
	}
	if r == nil {
		r = runner.New(logger)
	}
	return &LayoutBackend{bin: bin, timeout: timeout, runner: r, logger: logger}
}

func (b *LayoutBackend) Name() string { return LayoutBackendName }

func (b *LayoutBackend) Extract(ctx context.Context, path string) (extract.Output, error) {
	start := time.Now()
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := b.runner.Run(ctx, b.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return extract.Output{}, fmt.Errorf("pdftotext: %w: %s", err, runner.Truncate(strings.TrimSpace(string(errb)), 512))
	}
	text := NormalizeLayout(string(out))
	// A form-feed \f is used as page separator by default
	pages := 1 + strings.Count(strings.TrimRight(text, "\f\n"), "\f")
	b.logger.Debug("pdftext.layout.ok", "path", path, "pages", pages, "bytes", len(text))
	return extract.Output{Text: text, Pages: pages, Duration: time.Since(start)}, nil
}
