package standings

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
)

// ErrNoHeader is reported when a document has no standings header.
var ErrNoHeader = fmt.Errorf("%w: no 'cumplidas N fechas' header found", common.ErrNoSection)

// Result is the outcome of parsing one document's text.
type Result struct {
	Rows       []entity.StandingsRow
	Candidates []string
	Rounds     *int
	Detected   []int
	Blocks     int
	Warnings   []string
	Err        error // ErrNoHeader when no block was found
}

type rowKey struct {
	pos, nro int
	nombre   string
}

// Parse segments text into blocks, scans the rows of each block and
// assembles them: rows are deduplicated on (pos, nro, lowercased nombre)
// keeping the first occurrence, then stably ordered by pos. The rounds
// completed is the largest count declared by any header.
func Parse(text string) Result {
	blocks := Segment(text)
	res := Result{Rows: []entity.StandingsRow{}, Detected: []int{}, Blocks: len(blocks)}
	if len(blocks) == 0 {
		res.Err = ErrNoHeader
		res.Warnings = append(res.Warnings, ErrNoHeader.Error())
		return res
	}

	lower := cases.Lower(language.Spanish)
	seen := make(map[rowKey]struct{})
	rounds := make(map[int]struct{})
	for _, b := range blocks {
		rounds[b.Rounds] = struct{}{}
		rows, candidates := ScanBlock(b.Text)
		res.Candidates = append(res.Candidates, candidates...)
		for _, r := range rows {
			k := rowKey{pos: r.Pos, nro: r.Nro, nombre: lower.String(r.Nombre)}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			res.Rows = append(res.Rows, r)
		}
	}
	sort.SliceStable(res.Rows, func(i, j int) bool { return res.Rows[i].Pos < res.Rows[j].Pos })

	for n := range rounds {
		res.Detected = append(res.Detected, n)
	}
	sort.Ints(res.Detected)
	maxRounds := res.Detected[len(res.Detected)-1]
	res.Rounds = &maxRounds

	if len(res.Rows) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d standings block(s) found but no rows recognised", len(blocks)))
	}
	return res
}

// Report wraps a parse result with its run metadata.
func Report(res Result, sourcePDF, backend string, extractedAt time.Time) *entity.StandingsReport {
	rows := res.Rows
	if rows == nil {
		rows = []entity.StandingsRow{}
	}
	detected := res.Detected
	if detected == nil {
		detected = []int{}
	}
	return &entity.StandingsReport{
		Meta: entity.StandingsMeta{
			SourcePDF:        sourcePDF,
			ExtractedAtUTC:   extractedAt.UTC().Format(time.RFC3339),
			FechasCumplidas:  res.Rounds,
			FechasDetectadas: detected,
			Backend:          backend,
		},
		Standings: rows,
	}
}

// Dump renders candidate lines for the --dump-candidates artifact.
func Dump(candidates []string) string {
	return strings.Join(candidates, "\n")
}
