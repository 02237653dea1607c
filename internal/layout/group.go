package layout

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/race-results/internal/extract"
)

// GroupTokens clusters positioned tokens into lines. Tokens are visited in
// (page, y, x) order; a token joins the open line when it is on the same page
// and within tolerance of the line's running average Y, otherwise the line
// is closed and a new one starts.
func GroupTokens(tokens []extract.PositionedToken, tolerance float64) []Line {
	if len(tokens) == 0 {
		return nil
	}
	sorted := make([]extract.PositionedToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	var (
		lines   []Line
		current []extract.PositionedToken
		page    int
		sumY    float64
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool { return current[i].X < current[j].X })
		line := Line{Page: page, Y: sumY / float64(len(current)), Tokens: make([]extract.Token, len(current))}
		for i, t := range current {
			line.Tokens[i] = t
		}
		lines = append(lines, line)
		current = nil
		sumY = 0
	}

	for _, t := range sorted {
		if len(current) > 0 {
			avg := sumY / float64(len(current))
			if t.Page == page && math.Abs(t.Y-avg) <= tolerance {
				current = append(current, t)
				sumY += t.Y
				continue
			}
			flush()
		}
		page = t.Page
		current = append(current, t)
		sumY = t.Y
	}
	flush()
	return lines
}

var columnSplitRe = regexp.MustCompile(`\s{2,}`)

// SplitFields splits one physical text line into column fragments on runs of
// two or more whitespace characters. When that yields two fragments or fewer
// the line is split on single whitespace instead, which tolerates tables
// whose columns are not aligned.
func SplitFields(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := columnSplitRe.Split(line, -1)
	if len(parts) <= 2 {
		parts = strings.Fields(line)
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitText turns layout text into one Line per non-blank physical line.
// Form feeds advance the page counter; Y is the line's index on its page.
func SplitText(text string) []Line {
	var lines []Line
	page := 1
	for _, pageText := range strings.Split(text, "\f") {
		for i, raw := range strings.Split(pageText, "\n") {
			fields := SplitFields(raw)
			if len(fields) == 0 {
				continue
			}
			line := Line{Page: page, Y: float64(i), Tokens: make([]extract.Token, len(fields))}
			for j, f := range fields {
				line.Tokens[j] = extract.PlainToken{Value: f}
			}
			lines = append(lines, line)
		}
		page++
	}
	return lines
}
