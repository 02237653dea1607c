package ocr

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/race-results/internal/extract"
	"github.com/joseph-ayodele/race-results/internal/pdftext"
)

// TSV columns: level page_num block_num par_num line_num word_num left top
// width height conf text
const (
	colLevel = 0
	colLeft  = 6
	colTop   = 7
	colWidth = 8
	colHgt   = 9
	colConf  = 10
	colText  = 11

	levelWord = "5"
)

// ParseTSV turns tesseract TSV output into positioned words. Pixel
// coordinates are multiplied by scale; words below minConf are dropped.
func ParseTSV(tsv string, page int, scale, minConf float64) []extract.PositionedToken {
	var out []extract.PositionedToken
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		} // skip header
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < 12 {
			continue
		}
		if cols[colLevel] != levelWord {
			continue
		}
		text := pdftext.NormalizeWord(strings.Join(cols[colText:], " "))
		if text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[colConf], 64)
		if err != nil || conf < 0 || conf < minConf {
			continue
		}
		left, err1 := strconv.ParseFloat(cols[colLeft], 64)
		top, err2 := strconv.ParseFloat(cols[colTop], 64)
		width, err3 := strconv.ParseFloat(cols[colWidth], 64)
		height, err4 := strconv.ParseFloat(cols[colHgt], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		out = append(out, extract.PositionedToken{
			Value:  text,
			Page:   page,
			X:      left * scale,
			Y:      (top + height) * scale, // baseline, like the embedded-text backends
			Width:  width * scale,
			Height: height * scale,
		})
	}
	return out
}
