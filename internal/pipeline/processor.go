package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/export"
	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/ingest"
	"github.com/joseph-ayodele/race-results/internal/manifest"
	"github.com/joseph-ayodele/race-results/internal/repository"
	"github.com/joseph-ayodele/race-results/internal/validate"
)

// Config holds the output behavior of the processor.
type Config struct {
	Parse        ParseConfig
	DebugDir     string // debug artifacts are written when set
	PreviewLines int
	WriteXLSX    bool // also write a workbook next to each JSON file
}

// Processor coordinates extraction, table reconstruction and output.
type Processor struct {
	logger   *slog.Logger
	cfg      Config
	extract  *ExtractStage
	parse    *ParseStage
	manifest *manifest.Manager
	repo     repository.DocumentRepository // optional
	exporter *export.Service
	now      func() time.Time
}

func NewProcessor(
	logger *slog.Logger,
	cfg Config,
	sel Selectors,
	man *manifest.Manager,
	repo repository.DocumentRepository,
	exporter *export.Service,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PreviewLines <= 0 {
		cfg.PreviewLines = 40
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	return &Processor{
		logger:   logger,
		cfg:      cfg,
		extract:  NewExtractStage(sel, logger),
		parse:    NewParseStage(cfg.Parse, logger),
		manifest: man,
		repo:     repo,
		exporter: exporter,
		now:      time.Now,
	}
}

// trace is what a run leaves behind for the debug artifacts.
type trace struct {
	attempts   []extract.Attempt
	parsed     parsed
	outputPath string
}

// Process extracts and parses one PDF. Documents with nothing extractable
// or no recognisable table come back with zero rows and a warning; only an
// invalid job or a canceled context is an error.
func (p *Processor) Process(ctx context.Context, job ingest.Job) (*entity.Document, error) {
	doc, _, err := p.process(ctx, job)
	return doc, err
}

func (p *Processor) process(ctx context.Context, job ingest.Job) (*entity.Document, trace, error) {
	var tr trace
	if err := checkJob(job); err != nil {
		return nil, tr, err
	}
	start := time.Now()
	now := p.now()
	sourcePDF := filepath.Base(job.Path)
	doc := &entity.Document{
		ID:          uuid.New(),
		Kind:        job.Kind,
		Fecha:       job.Fecha,
		Race:        job.Race,
		SourcePDF:   sourcePDF,
		ExtractedAt: now.UTC(),
	}
	if job.Kind == constants.KindStandings {
		doc.Race = job.Stem()
	}

	out, attempts, err := p.extract.Run(ctx, job.Kind, job.Path)
	tr.attempts = attempts
	switch {
	case errors.Is(err, common.ErrNoContent):
		p.logger.Warn("pipeline.extract.empty", "path", job.Path, "attempts", len(attempts))
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("%s: every backend came back empty", err))
	case err != nil:
		return nil, tr, err
	}
	doc.Backend = out.Backend
	doc.TokenCount = out.Count()
	doc.Warnings = append(doc.Warnings, out.Warnings...)

	tr.parsed = p.parse.Run(job.Kind, out, sourcePDF, now)
	doc.Standings = tr.parsed.standings
	doc.Result = tr.parsed.result
	doc.RowCount = tr.parsed.rows
	doc.Warnings = append(doc.Warnings, tr.parsed.warnings...)
	doc.Status = constants.JobStatusOK
	if doc.RowCount == 0 {
		doc.Status = constants.JobStatusEmpty
	}

	data, err := doc.EncodePayload(true)
	if err != nil {
		return nil, tr, fmt.Errorf("encode %s: %w", sourcePDF, err)
	}
	if err := validate.Document(job.Kind, data); err != nil {
		p.logger.Warn("pipeline.validate.failed", "path", job.Path, "err", err)
		doc.Warnings = append(doc.Warnings, err.Error())
	}

	p.logger.Info("pipeline.process.ok",
		"path", job.Path,
		"kind", job.Kind,
		"backend", doc.Backend,
		"tokens", doc.TokenCount,
		"rows", doc.RowCount,
		"status", doc.Status,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, tr, nil
}

// ProcessAndStore processes a job and writes everything it produces: the
// JSON record, the manifests, the store row, an optional workbook and the
// debug artifacts.
func (p *Processor) ProcessAndStore(ctx context.Context, job ingest.Job) (*entity.Document, error) {
	doc, tr, err := p.process(ctx, job)
	if err != nil {
		p.logger.Error("pipeline.process.failed", "path", job.Path, "err", err)
		return nil, err
	}

	tr.outputPath = p.OutputPath(job)
	if err := p.writeRecord(doc, tr.outputPath); err != nil {
		return doc, err
	}
	if doc.Kind == constants.KindRace {
		if _, err := p.manifest.Update(doc.Fecha, doc.Race); err != nil {
			return doc, fmt.Errorf("update manifest: %w", err)
		}
	} else if promoted, err := p.manifest.PromoteStandings(doc.Standings); err != nil {
		return doc, fmt.Errorf("promote standings: %w", err)
	} else if promoted {
		p.logger.Info("pipeline.standings.promoted", "path", job.Path, "output", p.manifest.LatestStandingsPath())
	}

	if p.cfg.WriteXLSX {
		if err := p.writeWorkbook(doc, tr.outputPath); err != nil {
			p.logger.Warn("pipeline.xlsx.failed", "path", job.Path, "err", err)
		}
	}
	if p.cfg.DebugDir != "" {
		if err := p.writeDebug(job, doc, tr); err != nil {
			p.logger.Warn("pipeline.debug.failed", "path", job.Path, "err", err)
		}
	}
	if p.repo != nil {
		if err := p.repo.Save(ctx, doc); err != nil {
			return doc, fmt.Errorf("store document: %w", err)
		}
	}
	return doc, nil
}

// OutputPath is where the JSON record of a job is written.
func (p *Processor) OutputPath(job ingest.Job) string {
	if job.Kind == constants.KindStandings {
		return p.manifest.StandingsPath(job.Stem())
	}
	return p.manifest.RacePath(job.Fecha, job.Race)
}

func checkJob(job ingest.Job) error {
	v := common.NewValidator().Field("path", job.Path, common.Required)
	switch job.Kind {
	case constants.KindRace:
		v.Field("fecha", job.Fecha, common.Required).
			Field("race", job.Race, common.Required, common.NoPathSeparators)
	case constants.KindStandings:
	default:
		return common.NewAppError("INVALID_JOB", fmt.Sprintf("unknown document kind %q", job.Kind), common.ErrInvalidInput)
	}
	return common.ValidateAndReturnError(v)
}
