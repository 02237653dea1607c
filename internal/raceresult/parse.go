// Package raceresult reconstructs race-result rows from grouped lines:
// position, number, name, reference and final times, penalties, laps and a
// trailing note.
package raceresult

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/layout"
)

const (
	DefaultPenaltySecondsMax = 10
	DefaultLeadLines         = 10
	minTokens                = 4
)

// Config holds the race-result heuristics.
type Config struct {
	// PenaltySecondsMax is the largest whole number read as penalty seconds;
	// larger whole numbers are a penalty count.
	PenaltySecondsMax float64
	// LeadLines bounds the date/time search when no row was accepted.
	LeadLines int
}

// DefaultConfig returns the default heuristics.
func DefaultConfig() Config {
	return Config{PenaltySecondsMax: DefaultPenaltySecondsMax, LeadLines: DefaultLeadLines}
}

func (c Config) withDefaults() Config {
	if c.PenaltySecondsMax <= 0 {
		c.PenaltySecondsMax = DefaultPenaltySecondsMax
	}
	if c.LeadLines <= 0 {
		c.LeadLines = DefaultLeadLines
	}
	return c
}

// ParseTokens reconstructs one row from a line's token texts. Times must
// already be merged.
func ParseTokens(toks []string, cfg Config) (entity.ResultRow, bool) {
	cfg = cfg.withDefaults()
	if len(toks) < minTokens {
		return entity.ResultRow{}, false
	}
	posIdx, numIdx, ok := positionAndNumber(toks)
	if !ok {
		return entity.ResultRow{}, false
	}
	refIdx, finIdx, ok := times(toks, 0)
	if !ok || numIdx > refIdx {
		return entity.ResultRow{}, false
	}
	lapIdx, ok := laps(toks, finIdx)
	if !ok {
		return entity.ResultRow{}, false
	}

	pos, err1 := strconv.Atoi(toks[posIdx])
	num, err2 := strconv.Atoi(toks[numIdx])
	nlaps, err3 := strconv.Atoi(toks[lapIdx])
	if err1 != nil || err2 != nil || err3 != nil {
		return entity.ResultRow{}, false
	}

	ref, fin := toks[refIdx], toks[finIdx]
	row := entity.ResultRow{
		Position:    pos,
		Number:      num,
		Name:        strings.Join(toks[numIdx+1:refIdx], " "),
		RecStr:      &ref,
		TFinal:      &fin,
		Laps:        nlaps,
		PenaltyNote: note(toks[lapIdx+1:]),
	}
	seconds, count := penalties(toks[finIdx+1:lapIdx], cfg.PenaltySecondsMax)
	if seconds != nil {
		row.Rec = *seconds
	}
	row.Penalty = count
	return row, true
}

// ParseLine merges split times on the line and reconstructs its row.
func ParseLine(l layout.Line, cfg Config) (entity.ResultRow, bool) {
	return ParseTokens(extract.Texts(layout.MergeTimes(l.Tokens)), cfg)
}

// Result is the outcome of parsing one document's lines.
type Result struct {
	Rows     []entity.ResultRow
	Date     *string
	Time     *string
	Lines    int
	Rejected int
}

// Parse reconstructs every line in scan order. Rows are not deduplicated.
// The date and time are looked up in the lines before the first accepted
// row, or in the first LeadLines lines when no row was accepted.
func Parse(lines []layout.Line, cfg Config) Result {
	cfg = cfg.withDefaults()
	res := Result{Rows: []entity.ResultRow{}, Lines: len(lines)}
	firstRow := -1
	for i, l := range lines {
		row, ok := ParseLine(l, cfg)
		if !ok {
			res.Rejected++
			continue
		}
		if firstRow < 0 {
			firstRow = i
		}
		res.Rows = append(res.Rows, row)
	}

	lead := firstRow
	if lead < 0 {
		lead = min(cfg.LeadLines, len(lines))
	}
	res.Date, res.Time = dateTime(lines[:lead])
	return res
}

var (
	numericDateRe = regexp.MustCompile(`(?:^|[^\d])(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})(?:[^\d]|$)`)
	spokenDateRe  = regexp.MustCompile(`(?i)(\d{1,2}\s+de\s+[a-záéíóúñ]+(?:\s+(?:de(?:l)?\s+)?\d{4})?)`)
	clockRe       = regexp.MustCompile(`(?:^|[^\d:.,])(\d{1,2}:\d{2}(?::\d{2})?)(?:[^\d.,:]|$)`)
)

// dateTime finds the first date and the first clock time in the lines.
func dateTime(lines []layout.Line) (date, clock *string) {
	for _, l := range lines {
		s := l.String()
		if date == nil {
			if m := numericDateRe.FindStringSubmatch(s); m != nil {
				date = &m[1]
			} else if m := spokenDateRe.FindStringSubmatch(s); m != nil {
				date = &m[1]
			}
		}
		if clock == nil {
			if m := clockRe.FindStringSubmatch(s); m != nil {
				clock = &m[1]
			}
		}
		if date != nil && clock != nil {
			break
		}
	}
	return date, clock
}

// Report wraps a parse result with its run metadata.
func Report(res Result, sourcePDF, backend string, generatedAt time.Time) *entity.RaceResult {
	rows := res.Rows
	if rows == nil {
		rows = []entity.ResultRow{}
	}
	return &entity.RaceResult{
		Date:        res.Date,
		Time:        res.Time,
		Results:     rows,
		SourcePDF:   sourcePDF,
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Backend:     backend,
	}
}
