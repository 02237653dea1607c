package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/ocr"
	"github.com/joseph-ayodele/race-results/internal/pdftext"
	"github.com/joseph-ayodele/race-results/internal/runner"
)

// Selectors holds one backend chain per document kind.
type Selectors struct {
	Race      *extract.Selector
	Standings *extract.Selector
}

// BuildSelectors wires the extraction backends named in the configuration.
// The in-process OCR engine replaces the tesseract command when compiled in.
func BuildSelectors(cfg common.ExtractConfig, logger *slog.Logger) (Selectors, error) {
	if logger == nil {
		logger = slog.Default()
	}
	run := runner.New(logger)
	ocrCfg := ocr.Config{
		Pdftoppm:      cfg.Pdftoppm,
		Tesseract:     cfg.Tesseract,
		TesseractLang: cfg.TesseractLang,
		DPI:           cfg.DPI,
		MaxPages:      cfg.MaxPages,
		TessdataDir:   cfg.TessdataDir,
		PSM:           cfg.TesseractPSM,
		Timeout:       cfg.CommandTimeout,
	}

	var ocrBackend extract.Backend = ocr.NewBackend(ocrCfg, run, logger)
	if ocr.GosseractAvailable {
		if b, err := ocr.NewGosseractBackend(ocrCfg, run, logger); err == nil {
			ocrBackend = b
		} else {
			logger.Warn("ocr.gosseract.unavailable", "err", err)
		}
	}
	available := []extract.Backend{
		pdftext.NewLayoutBackend(cfg.Pdftotext, cfg.CommandTimeout, run, logger),
		pdftext.NewWordsBackend(cfg.WordGap, logger),
		ocrBackend,
	}

	race, err := extract.Resolve(cfg.RaceBackends, available...)
	if err != nil {
		return Selectors{}, err
	}
	standings, err := extract.Resolve(cfg.StandingsBackends, available...)
	if err != nil {
		return Selectors{}, err
	}
	return Selectors{
		Race:      extract.NewSelector(race, cfg.MinTokens, logger),
		Standings: extract.NewSelector(standings, cfg.MinTokens, logger),
	}, nil
}
