package standings

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/layout"
)

var (
	rowCandidateRe = regexp.MustCompile(`^\s*(\d{1,3})\s+(\d{1,3})\s+(.+)$`)
	columnHeaderRe = regexp.MustCompile(`(?i)^\s*pos\.?\s+n(?:ro|º|°|o)?(?:[.\s]|$)`)
	separatorRe    = regexp.MustCompile(`^[-–_]{3,}$`)
	numberRe       = regexp.MustCompile(`^(?:\d+(?:[.,]\d+)?|\d{1,3}(?:\.\d{3})+,\d+)$`)
	smallIntRe     = regexp.MustCompile(`^\d{1,2}$`)
	trailingIntRe  = regexp.MustCompile(`(?:^|[^\d.,])(\d{1,2})\s*$`)
)

// IsCandidate reports whether a line looks like "pos nro rest".
func IsCandidate(line string) bool { return rowCandidateRe.MatchString(line) }

// IsColumnHeader reports whether a line is the "Pos Nro ..." column header.
func IsColumnHeader(line string) bool { return columnHeaderRe.MatchString(line) }

// IsNumber reports whether a token is a standings score: an integer, a decimal
// with '.' or ',' or a grouped value like "1.234,5".
func IsNumber(tok string) bool { return numberRe.MatchString(tok) }

// ToFloat parses a score token. "1.234,5" is read as 1234.5 and "12,5" as 12.5.
func ToFloat(tok string) (float64, bool) {
	s := strings.TrimSpace(tok)
	if s == "" {
		return 0, false
	}
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseRow reconstructs one standings row from a candidate line.
//
// The remainder after pos and nro is split into columns. The name runs up to
// the first score token that follows a word; leading scores directly followed
// by a word belong to the name. Every later score goes into the numeric tail
// and is assigned from the end: total, final, prefinal, semif, serie,
// anterior. Non-score leftovers are kept in ExtrasRaw.
func ParseRow(line string) (entity.StandingsRow, bool) {
	m := rowCandidateRe.FindStringSubmatch(line)
	if m == nil {
		return entity.StandingsRow{}, false
	}
	pos, err1 := strconv.Atoi(m[1])
	nro, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return entity.StandingsRow{}, false
	}
	row := entity.StandingsRow{Pos: pos, Nro: nro}

	cols := layout.SplitFields(strings.TrimRight(m[3], " \t\r\f"))
	end := nameEnd(cols)
	row.Nombre = strings.Join(cols[:end], " ")

	var (
		nums []float64
		rest []string
	)
	for _, c := range cols[end:] {
		if IsNumber(c) {
			if v, ok := ToFloat(c); ok {
				nums = append(nums, v)
				continue
			}
		}
		rest = append(rest, c)
	}

	Backfill(&row, nums)
	row.Fin = findFin(rest, line)
	if len(rest) > 0 {
		extras := strings.Join(rest, " ")
		row.ExtrasRaw = &extras
	}
	return row, true
}

// nameEnd returns the index of the first column after the name.
func nameEnd(cols []string) int {
	i := 0
	for i < len(cols) && IsNumber(cols[i]) {
		i++
	}
	if i == len(cols) {
		// nothing but numbers: there is no name
		return 0
	}
	for i < len(cols) && !IsNumber(cols[i]) {
		i++
	}
	return i
}

// Backfill assigns the numeric tail right to left. With k values only the k
// right-most named fields are set; values beyond the sixth from the end are
// dropped.
func Backfill(row *entity.StandingsRow, nums []float64) {
	fields := []**float64{&row.Total, &row.Final, &row.Prefinal, &row.Semif, &row.Serie, &row.Anterior}
	for i, f := range fields {
		if i >= len(nums) {
			break
		}
		v := nums[len(nums)-1-i]
		*f = &v
	}
}

// findFin looks for a bare 1-2 digit integer among the leftover words and
// otherwise takes a trailing 1-2 digit integer of the raw line.
func findFin(rest []string, line string) *int {
	for _, tok := range rest {
		for _, w := range strings.Fields(tok) {
			if smallIntRe.MatchString(w) {
				n, _ := strconv.Atoi(w)
				return &n
			}
		}
	}
	if m := trailingIntRe.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		return &n
	}
	return nil
}

// ScanBlock returns the rows of one block plus every candidate line seen.
// Scanning starts at the column header or the first row-shaped line, skips
// repeated column headers and separator rules, and stops at "Detalle de
// puntos".
func ScanBlock(text string) (rows []entity.StandingsRow, candidates []string) {
	inTable := false
	for _, raw := range strings.Split(text, "\n") {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if detailRe.MatchString(s) {
			break
		}
		if !inTable {
			if !IsColumnHeader(s) && !IsCandidate(s) {
				continue
			}
			inTable = true
		}
		if IsColumnHeader(s) || separatorRe.MatchString(s) {
			continue
		}
		if IsCandidate(s) {
			candidates = append(candidates, strings.TrimRight(raw, "\r"))
			if row, ok := ParseRow(s); ok {
				rows = append(rows, row)
			}
		}
	}
	return rows, candidates
}
