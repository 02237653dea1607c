package layout

import (
	"math"
	"regexp"

	"github.com/joseph-ayodele/race-results/internal/extract"
)

var (
	partialTimeRe = regexp.MustCompile(`^\d{1,2}[:.]\d{2}$`)
	fractionRe    = regexp.MustCompile(`^\d{2,3}$`)
)

func isTimeSeparator(s string) bool {
	return s == ":" || s == "." || s == ","
}

// MergeTimes repairs clock times a backend split into three tokens, such as
// "1:21" "." "416", into a single token "1:21.416". Positioned tokens merge
// into the union of their boxes. The input is not modified and applying
// MergeTimes to its own output changes nothing.
func MergeTimes(tokens []extract.Token) []extract.Token {
	out := make([]extract.Token, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if i+2 < len(tokens) &&
			partialTimeRe.MatchString(tokens[i].Text()) &&
			isTimeSeparator(tokens[i+1].Text()) &&
			fractionRe.MatchString(tokens[i+2].Text()) {
			out = append(out, mergeTokens(tokens[i], tokens[i+1], tokens[i+2]))
			i += 3
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

// MergeLine applies MergeTimes to a line's tokens.
func MergeLine(l Line) Line {
	l.Tokens = MergeTimes(l.Tokens)
	return l
}

func mergeTokens(parts ...extract.Token) extract.Token {
	text := ""
	for _, p := range parts {
		text += p.Text()
	}
	first, ok := extract.Position(parts[0])
	if !ok {
		return extract.PlainToken{Value: text}
	}
	minX, minY := first.X, first.Y
	maxX, maxY := first.Right(), first.Y+first.Height
	for _, p := range parts[1:] {
		pt, ok := extract.Position(p)
		if !ok {
			return extract.PlainToken{Value: text}
		}
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.Right())
		maxY = math.Max(maxY, pt.Y+pt.Height)
	}
	return extract.PositionedToken{
		Value:  text,
		Page:   first.Page,
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}
