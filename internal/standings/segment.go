// Package standings reconstructs championship standings tables from layout
// text. Only rows inside a "cumplidas N fechas" block are trusted.
package standings

import (
	"regexp"
	"strconv"
)

var (
	// headerRe matches "Posiciones en el campeonato cumplidas N fechas" with
	// or without the leading phrase, singular or plural, accented or not.
	headerRe = regexp.MustCompile(`(?i)(?:posici[oó]nes\s+en\s+el\s+campeonato[\s,:.\-]*)?cumplid[aá]s?\s+(\d+)\s+fech[aá]s?`)

	// detailRe matches the "Detalle de puntos" section that follows the table.
	detailRe = regexp.MustCompile(`(?im)^[ \t\f]*detalle\s+de\s+puntos`)
)

// Block is the text between one standings header and the next boundary.
// Start and End are byte offsets into the segmented text, End exclusive.
type Block struct {
	Rounds int
	Start  int
	End    int
	Text   string
}

// Segment finds every standings header in text. Each block runs from the end
// of its header to the first of: the next header, a "Detalle de puntos"
// line, the end of the text.
func Segment(text string) []Block {
	headers := headerRe.FindAllStringSubmatchIndex(text, -1)
	if len(headers) == 0 {
		return nil
	}
	details := detailRe.FindAllStringIndex(text, -1)

	blocks := make([]Block, 0, len(headers))
	for i, h := range headers {
		rounds, err := strconv.Atoi(text[h[2]:h[3]])
		if err != nil {
			continue
		}
		start := h[1]
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		for _, d := range details {
			if d[0] >= start && d[0] < end {
				end = d[0]
				break
			}
		}
		blocks = append(blocks, Block{Rounds: rounds, Start: start, End: end, Text: text[start:end]})
	}
	return blocks
}
