// Package ocr is the last-resort extraction backend for PDFs without an
// embedded text layer: pages are rasterized with pdftoppm and read with
// tesseract, keeping each word's box.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/runner"
)

const BackendName = "ocr-tesseract"

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "spa+eng"
	DPI           int    // rasterization DPI, default 300
	MaxPages      int    // 0 = no limit
	TessdataDir   string

	PSM int // 6 = assume a uniform block of text, good for tables

	// MinConfidence drops words tesseract is less sure of (0..100).
	MinConfidence float64
	// Timeout bounds the whole document; 0 means no limit.
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.TesseractLang == "" {
		c.TesseractLang = "spa+eng"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	return c
}

// Backend runs pdftoppm + tesseract through a Runner.
type Backend struct {
	cfg        Config
	runner     runner.Runner
	rasterizer *Rasterizer
	logger     *slog.Logger
}

func NewBackend(cfg Config, r runner.Runner, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = runner.New(logger)
	}
	cfg = cfg.withDefaults()
	return &Backend{
		cfg:        cfg,
		runner:     r,
		rasterizer: NewRasterizer(cfg.Pdftoppm, cfg.DPI, cfg.MaxPages, r, logger),
		logger:     logger,
	}
}

func (b *Backend) Name() string { return BackendName }

// Extract fails only when no page could be rendered. Pages tesseract cannot
// read are skipped with a warning.
func (b *Backend) Extract(ctx context.Context, path string) (extract.Output, error) {
	start := time.Now()
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}
	b.logger.Debug("starting ocr extraction", "path", path, "dpi", b.cfg.DPI, "lang", b.cfg.TesseractLang)

	pages, cleanup, err := b.rasterizer.Rasterize(ctx, path)
	defer cleanup()
	if err != nil {
		return extract.Output{}, err
	}

	out := extract.Output{Pages: len(pages)}
	scale := PointsPerPixel(b.cfg.DPI)
	for i, img := range pages {
		words, err := b.tesseractWords(ctx, img, i+1, scale)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			b.logger.Warn("ocr.page.failed", "path", path, "page", i+1, "err", err)
			continue
		}
		for _, w := range words {
			out.Tokens = append(out.Tokens, w)
		}
	}
	out.Duration = time.Since(start)
	b.logger.Info("ocr.done", "path", path, "pages", out.Pages, "tokens", len(out.Tokens), "duration_ms", out.Duration.Milliseconds())
	return out, nil
}

func (b *Backend) tesseractWords(ctx context.Context, img string, page int, scale float64) ([]extract.PositionedToken, error) {
	args := []string{img, "stdout", "-l", b.cfg.TesseractLang}
	if b.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", b.cfg.PSM))
	}
	if b.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", b.cfg.TessdataDir)
	}
	// TSV output
	args = append(args, "tsv")

	out, errb, err := b.runner.Run(ctx, b.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract TSV page %d: %w: %s", page, err, runner.Truncate(string(errb), 512))
	}
	return ParseTSV(string(out), page, scale, b.cfg.MinConfidence), nil
}

// PointsPerPixel converts raster pixels back to PDF points.
func PointsPerPixel(dpi int) float64 {
	if dpi <= 0 {
		return 1
	}
	return 72.0 / float64(dpi)
}
