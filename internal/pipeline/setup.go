package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/export"
	"github.com/joseph-ayodele/race-results/internal/ingest"
	"github.com/joseph-ayodele/race-results/internal/layout"
	"github.com/joseph-ayodele/race-results/internal/manifest"
	"github.com/joseph-ayodele/race-results/internal/raceresult"
	"github.com/joseph-ayodele/race-results/internal/repository"
)

// ConfigFrom maps the loaded configuration onto the processor settings.
func ConfigFrom(cfg *common.Config) Config {
	race := raceresult.DefaultConfig()
	race.PenaltySecondsMax = cfg.Parse.PenaltySecondsMax
	return Config{
		Parse: ParseConfig{
			Layout: layout.Config{LineTolerance: cfg.Parse.LineTolerance, ColumnGap: cfg.Parse.ColumnGap},
			Race:   race,
		},
		DebugDir:     cfg.Paths.DebugDir,
		PreviewLines: cfg.Parse.PreviewLines,
	}
}

// Setup builds a processor writing below cfg.Paths.OutputDir. The caller
// closes the repository when it is not nil.
func Setup(ctx context.Context, cfg *common.Config, pcfg Config, logger *slog.Logger) (*Processor, *manifest.Manager, repository.DocumentRepository, error) {
	sel, err := BuildSelectors(cfg.Extract, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build extraction backends: %w", err)
	}
	man, err := manifest.NewManager(cfg.Paths.OutputDir, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open manifests: %w", err)
	}
	repo, err := repository.New(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return NewProcessor(logger, pcfg, sel, man, repo, export.NewService(logger)), man, repo, nil
}

// Inspection is the intermediate text of a run, for command-line dumps.
type Inspection struct {
	Text       string // reading-order text the reconstructor saw
	Candidates []string
}

// Inspect processes a job like Process and also returns the intermediate
// text. Nothing is written.
func (p *Processor) Inspect(ctx context.Context, job ingest.Job) (*entity.Document, Inspection, error) {
	doc, tr, err := p.process(ctx, job)
	if err != nil {
		return nil, Inspection{}, err
	}
	in := Inspection{Text: tr.parsed.text, Candidates: tr.parsed.candidates}
	if in.Text == "" {
		in.Text = layout.Preview(tr.parsed.lines, 0)
	}
	return doc, in, nil
}
