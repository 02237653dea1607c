// Package layout turns backend output into ordered table lines: coordinate
// tokens are clustered by vertical position, plain text is split into
// column fragments, and clock times broken apart by a backend are repaired.
package layout

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/race-results/internal/extract"
)

// Default heuristics, in PDF user-space units.
const (
	DefaultLineTolerance = 5.5
	DefaultColumnGap     = 8.0
)

// Config holds the layout tolerances.
type Config struct {
	// LineTolerance is the largest distance between a token's Y and the
	// running average Y of the line it joins.
	LineTolerance float64
	// ColumnGap is the horizontal gap above which two tokens on a line are
	// treated as separate columns when rendering text.
	ColumnGap float64
}

// DefaultConfig returns the default tolerances.
func DefaultConfig() Config {
	return Config{LineTolerance: DefaultLineTolerance, ColumnGap: DefaultColumnGap}
}

func (c Config) withDefaults() Config {
	if c.LineTolerance <= 0 {
		c.LineTolerance = DefaultLineTolerance
	}
	if c.ColumnGap <= 0 {
		c.ColumnGap = DefaultColumnGap
	}
	return c
}

// Line is a run of tokens believed to share one printed table row, ordered
// left to right.
type Line struct {
	Page   int
	Y      float64
	Tokens []extract.Token
}

// Texts returns the text of each token on the line.
func (l Line) Texts() []string { return extract.Texts(l.Tokens) }

// String joins the token texts with single spaces.
func (l Line) String() string { return strings.Join(l.Texts(), " ") }

// Lines groups an Output into lines, choosing the strategy by the shape of
// the output: coordinate tokens are clustered, text is split.
func Lines(out extract.Output, cfg Config) []Line {
	cfg = cfg.withDefaults()
	if out.Positioned() {
		positioned := make([]extract.PositionedToken, 0, len(out.Tokens))
		var plain []extract.Token
		for _, t := range out.Tokens {
			if p, ok := extract.Position(t); ok {
				positioned = append(positioned, p)
			} else {
				plain = append(plain, t)
			}
		}
		lines := GroupTokens(positioned, cfg.LineTolerance)
		if len(plain) > 0 {
			lines = append(lines, Line{Tokens: plain})
		}
		return lines
	}
	return SplitText(out.Text)
}

// Text renders an Output as layout text for text-driven parsers.
func Text(out extract.Output, cfg Config) string {
	if !out.Positioned() {
		return out.Text
	}
	cfg = cfg.withDefaults()
	return RenderText(Lines(out, cfg), cfg.ColumnGap)
}

// Preview renders the first n lines for humans, one per row, with the page
// and vertical position when known.
func Preview(lines []Line, n int) string {
	if n <= 0 || n > len(lines) {
		n = len(lines)
	}
	var b strings.Builder
	for i, l := range lines[:n] {
		if l.Page > 0 {
			fmt.Fprintf(&b, "%03d p%d y=%.1f | %s\n", i+1, l.Page, l.Y, strings.Join(l.Texts(), " | "))
			continue
		}
		fmt.Fprintf(&b, "%03d | %s\n", i+1, strings.Join(l.Texts(), " | "))
	}
	return b.String()
}
