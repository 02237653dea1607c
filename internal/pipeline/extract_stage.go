package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/extract"
)

type ExtractStage struct {
	Selectors Selectors
	Logger    *slog.Logger
}

func NewExtractStage(sel Selectors, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Selectors: sel, Logger: logger}
}

// Run picks the backend chain for the kind and extracts path. An empty
// result is reported as ErrNoContent alongside the attempts made.
func (s *ExtractStage) Run(ctx context.Context, kind constants.DocumentKind, path string) (extract.Output, []extract.Attempt, error) {
	sel := s.Selectors.Race
	if kind == constants.KindStandings {
		sel = s.Selectors.Standings
	}
	if sel == nil {
		return extract.Output{}, nil, fmt.Errorf("%w: no backends for %s documents", common.ErrInvalidInput, kind)
	}
	out, attempts := sel.Select(ctx, path)
	if out.Empty() {
		if err := ctx.Err(); err != nil {
			return out, attempts, err
		}
		return out, attempts, common.ErrNoContent
	}
	s.Logger.Debug("pipeline.extract.ok", "path", path, "backend", out.Backend, "tokens", out.Count(), "pages", out.Pages)
	return out, attempts, nil
}
