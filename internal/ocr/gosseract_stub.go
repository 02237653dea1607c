//go:build !gosseract

package ocr

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/runner"
)

// GosseractAvailable reports whether the in-process tesseract binding was
// compiled in. Build with -tags gosseract to enable it.
const GosseractAvailable = false

// ErrGosseractDisabled is returned when the binary was built without the
// gosseract tag.
var ErrGosseractDisabled = errors.New("gosseract support not compiled in (build with -tags gosseract)")

type GosseractBackend struct{}

func NewGosseractBackend(Config, runner.Runner, *slog.Logger) (*GosseractBackend, error) {
	return nil, ErrGosseractDisabled
}

func (b *GosseractBackend) Name() string { return BackendName }

func (b *GosseractBackend) Extract(context.Context, string) (extract.Output, error) {
	return extract.Output{}, ErrGosseractDisabled
}
