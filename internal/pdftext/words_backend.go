package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/race-results/internal/extract"
)

const WordsBackendName = "pdf-words"

// defaultRowTolerance groups glyphs whose baselines differ by at most this
// many points into the same row before words are cut.
const defaultRowTolerance = 2.0

// WordsBackend reads glyph runs from the PDF content streams and assembles
// them into positioned words. Y is measured from the top of the page.
type WordsBackend struct {
	wordGap float64
	logger  *slog.Logger
}

// NewWordsBackend builds the backend. wordGap is the horizontal gap, in
// points, that splits two glyphs into separate words.
func NewWordsBackend(wordGap float64, logger *slog.Logger) *WordsBackend {
	if logger == nil {
		logger = slog.Default()
	}
	if wordGap <= 0 {
		wordGap = 1.5
	}
	return &WordsBackend{wordGap: wordGap, logger: logger}
}

func (b *WordsBackend) Name() string { return WordsBackendName }

func (b *WordsBackend) Extract(ctx context.Context, path string) (extract.Output, error) {
	start := time.Now()
	f, r, err := pdf.Open(path)
	if err != nil {
		return extract.Output{}, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	out := extract.Output{Pages: r.NumPage()}
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return extract.Output{}, err
		}
		words, err := b.pageWords(r, i)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			b.logger.Warn("pdftext.words.page_failed", "path", path, "page", i, "err", err)
			continue
		}
		for _, w := range words {
			out.Tokens = append(out.Tokens, w)
		}
	}
	out.Duration = time.Since(start)
	b.logger.Debug("pdftext.words.ok", "path", path, "pages", out.Pages, "tokens", len(out.Tokens))
	return out, nil
}

// pageWords recovers from panics raised by malformed content streams.
func (b *WordsBackend) pageWords(r *pdf.Reader, n int) (words []extract.PositionedToken, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			words, err = nil, fmt.Errorf("page %d: malformed content: %v", n, rec)
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing", n)
	}
	content := page.Content()
	return Words(content.Text, n, pageHeight(page, content.Text), b.wordGap), nil
}

// pageHeight reads the MediaBox height, falling back to the highest glyph.
func pageHeight(page pdf.Page, texts []pdf.Text) float64 {
	box := page.V.Key("MediaBox")
	if box.Kind() == pdf.Array && box.Len() == 4 {
		if h := box.Index(3).Float64() - box.Index(1).Float64(); h > 0 {
			return h
		}
	}
	h := 0.0
	for _, t := range texts {
		h = math.Max(h, t.Y+t.FontSize)
	}
	return h
}

type glyph struct {
	s    string
	x, y float64
	w    float64
	size float64
}

// Words assembles glyph runs into words. Glyphs are bucketed into rows by
// baseline, ordered by X, and cut into words on whitespace or on a gap wider
// than wordGap. The returned Y is the baseline distance from the page top.
func Words(texts []pdf.Text, page int, height, wordGap float64) []extract.PositionedToken {
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, glyph{s: t.S, x: t.X, y: t.Y, w: t.W, size: t.FontSize})
	}
	// PDF space grows upward: highest baseline first.
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].y != glyphs[j].y {
			return glyphs[i].y > glyphs[j].y
		}
		return glyphs[i].x < glyphs[j].x
	})

	var (
		rows [][]glyph
		cur  []glyph
		rowY float64
	)
	for _, g := range glyphs {
		if len(cur) > 0 && math.Abs(g.y-rowY) > defaultRowTolerance {
			rows = append(rows, cur)
			cur = nil
		}
		if len(cur) == 0 {
			rowY = g.y
		}
		cur = append(cur, g)
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
	}

	var words []extract.PositionedToken
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })
		words = append(words, rowWords(row, page, height, wordGap)...)
	}
	return words
}

func rowWords(row []glyph, page int, height, wordGap float64) []extract.PositionedToken {
	var (
		out   []extract.PositionedToken
		sb    strings.Builder
		first glyph
		end   float64
		size  float64
		base  float64
	)
	flush := func() {
		text := NormalizeWord(sb.String())
		if text != "" {
			out = append(out, extract.PositionedToken{
				Value:  text,
				Page:   page,
				X:      first.x,
				Y:      height - base,
				Width:  end - first.x,
				Height: size,
			})
		}
		sb.Reset()
	}
	for _, g := range row {
		blank := strings.TrimFunc(g.s, unicode.IsSpace) == ""
		if sb.Len() > 0 && (blank || g.x-end > wordGap) {
			flush()
		}
		if blank {
			continue
		}
		if sb.Len() == 0 {
			first, size, base = g, g.size, g.y
		}
		sb.WriteString(g.s)
		end = g.x + g.w
		size = math.Max(size, g.size)
	}
	if sb.Len() > 0 {
		flush()
	}
	return out
}
