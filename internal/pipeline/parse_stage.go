package pipeline

import (
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/layout"
	"github.com/joseph-ayodele/race-results/internal/raceresult"
	"github.com/joseph-ayodele/race-results/internal/standings"
)

// ParseConfig holds the layout and race-row tolerances.
type ParseConfig struct {
	Layout layout.Config
	Race   raceresult.Config
}

type ParseStage struct {
	Cfg    ParseConfig
	Logger *slog.Logger
}

func NewParseStage(cfg ParseConfig, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{Cfg: cfg, Logger: logger}
}

// parsed carries the record plus what the debug artifacts show.
type parsed struct {
	standings  *entity.StandingsReport
	result     *entity.RaceResult
	rows       int
	lines      []layout.Line
	candidates []string
	warnings   []string
	text       string
}

// Run reconstructs the table of an extraction in the mode of kind.
func (s *ParseStage) Run(kind constants.DocumentKind, out extract.Output, sourcePDF string, now time.Time) parsed {
	lines := layout.Lines(out, s.Cfg.Layout)
	if kind == constants.KindStandings {
		text := layout.Text(out, s.Cfg.Layout)
		res := standings.Parse(text)
		s.Logger.Debug("pipeline.parse.standings", "source", sourcePDF, "blocks", res.Blocks,
			"candidates", len(res.Candidates), "rows", len(res.Rows))
		if errors.Is(res.Err, common.ErrNoSection) {
			s.Logger.Warn("pipeline.parse.no_section", "source", sourcePDF, "err", res.Err)
		}
		return parsed{
			standings:  standings.Report(res, sourcePDF, out.Backend, now),
			rows:       len(res.Rows),
			lines:      lines,
			candidates: res.Candidates,
			warnings:   res.Warnings,
			text:       text,
		}
	}

	res := raceresult.Parse(lines, s.Cfg.Race)
	s.Logger.Debug("pipeline.parse.race", "source", sourcePDF, "lines", res.Lines,
		"rejected", res.Rejected, "rows", len(res.Rows))
	p := parsed{
		result: raceresult.Report(res, sourcePDF, out.Backend, now),
		rows:   len(res.Rows),
		lines:  lines,
	}
	if len(res.Rows) == 0 && len(lines) > 0 {
		p.warnings = append(p.warnings, "no result rows recognised")
	}
	return p
}
