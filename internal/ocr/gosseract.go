//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/pdftext"
	"github.com/joseph-ayodele/race-results/internal/runner"
)

// GosseractAvailable reports whether the in-process tesseract binding was
// compiled in.
const GosseractAvailable = true

// GosseractBackend reads rendered pages through the tesseract C API instead
// of the tesseract CLI.
type GosseractBackend struct {
	cfg        Config
	rasterizer *Rasterizer
	logger     *slog.Logger
}

func NewGosseractBackend(cfg Config, r runner.Runner, logger *slog.Logger) (*GosseractBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = runner.New(logger)
	}
	cfg = cfg.withDefaults()
	return &GosseractBackend{
		cfg:        cfg,
		rasterizer: NewRasterizer(cfg.Pdftoppm, cfg.DPI, cfg.MaxPages, r, logger),
		logger:     logger,
	}, nil
}

func (b *GosseractBackend) Name() string { return BackendName }

func (b *GosseractBackend) Extract(ctx context.Context, path string) (extract.Output, error) {
	start := time.Now()
	pages, cleanup, err := b.rasterizer.Rasterize(ctx, path)
	defer cleanup()
	if err != nil {
		return extract.Output{}, err
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()
	if err := client.SetLanguage(strings.Split(b.cfg.TesseractLang, "+")...); err != nil {
		return extract.Output{}, fmt.Errorf("gosseract language: %w", err)
	}
	if b.cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(b.cfg.PSM)); err != nil {
			return extract.Output{}, fmt.Errorf("gosseract psm: %w", err)
		}
	}

	out := extract.Output{Pages: len(pages)}
	scale := PointsPerPixel(b.cfg.DPI)
	for i, img := range pages {
		if err := ctx.Err(); err != nil {
			return extract.Output{}, err
		}
		if err := client.SetImage(img); err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			b.logger.Warn("ocr.page.failed", "path", path, "page", i+1, "err", err)
			continue
		}
		for _, bb := range boxes {
			text := pdftext.NormalizeWord(bb.Word)
			if text == "" || bb.Confidence < b.cfg.MinConfidence {
				continue
			}
			out.Tokens = append(out.Tokens, extract.PositionedToken{
				Value:  text,
				Page:   i + 1,
				X:      float64(bb.Box.Min.X) * scale,
				Y:      float64(bb.Box.Max.Y) * scale,
				Width:  float64(bb.Box.Dx()) * scale,
				Height: float64(bb.Box.Dy()) * scale,
			})
		}
	}
	out.Duration = time.Since(start)
	b.logger.Info("ocr.done", "path", path, "pages", out.Pages, "tokens", len(out.Tokens), "engine", "gosseract")
	return out, nil
}
