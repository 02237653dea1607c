package pdftext

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reNBSP       = strings.NewReplacer("\u00a0", " ", "\u2007", " ", "\u202f", " ")
)

// NormalizeLayout cleans layout text without touching the column spacing:
// line endings become \n, accents are composed (NFC), tabs and non-breaking
// spaces become spaces, trailing spaces are trimmed and long runs of blank
// lines collapse to one. Form feeds are kept as page separators.
func NormalizeLayout(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, "    ")
	s = reNBSP.Replace(s)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	return reMultiBlank.ReplaceAllString(s, "\n\n")
}

// NormalizeWord composes accents and trims a single word.
func NormalizeWord(s string) string {
	return strings.TrimSpace(reNBSP.Replace(norm.NFC.String(s)))
}
