package layout

import (
	"strings"

	"github.com/joseph-ayodele/race-results/internal/extract"
)

// RenderText turns grouped lines back into layout text: tokens further apart
// than columnGap are joined with two spaces, closer ones with one, and a form
// feed separates pages. The result splits back into the same columns with
// SplitFields.
func RenderText(lines []Line, columnGap float64) string {
	var b strings.Builder
	page := 0
	for i, l := range lines {
		if i > 0 {
			if l.Page != page {
				b.WriteString("\n\f")
			} else {
				b.WriteByte('\n')
			}
		}
		page = l.Page
		var prev extract.Token
		for j, t := range l.Tokens {
			if j > 0 {
				b.WriteString(separator(prev, t, columnGap))
			}
			b.WriteString(t.Text())
			prev = t
		}
	}
	if len(lines) > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

func separator(prev, next extract.Token, columnGap float64) string {
	p, ok1 := extract.Position(prev)
	n, ok2 := extract.Position(next)
	if !ok1 || !ok2 {
		return "  "
	}
	if n.X-p.Right() > columnGap {
		return "  "
	}
	return " "
}
