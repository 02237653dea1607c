package extract

import (
	"context"
	"strings"
	"time"
)

// Backend turns a document into either layout text or positioned tokens.
type Backend interface {
	Name() string
	Extract(ctx context.Context, path string) (Output, error)
}

// Token is one lexical unit recovered from a document. It is either a
// PlainToken (text backends) or a PositionedToken (coordinate backends).
type Token interface {
	Text() string
	token()
}

// PlainToken carries text only.
type PlainToken struct {
	Value string
}

func (t PlainToken) Text() string { return t.Value }
func (PlainToken) token()         {}

// PositionedToken carries text plus its box on the page. Y grows downward
// from the top of the page; Page starts at 1.
type PositionedToken struct {
	Value  string
	Page   int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (t PositionedToken) Text() string { return t.Value }
func (PositionedToken) token()         {}

// Right is the horizontal end of the token box.
func (t PositionedToken) Right() float64 { return t.X + t.Width }

// Position returns the positioned form of t, if it has one.
func Position(t Token) (PositionedToken, bool) {
	switch v := t.(type) {
	case PositionedToken:
		return v, true
	case *PositionedToken:
		if v != nil {
			return *v, true
		}
	}
	return PositionedToken{}, false
}

// Texts returns the text of every token.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text()
	}
	return out
}

// Output is what one backend recovered from one document. Text backends fill
// Text; coordinate and OCR backends fill Tokens.
type Output struct {
	Backend  string
	Text     string
	Tokens   []Token
	Pages    int
	Duration time.Duration
	Warnings []string
}

// Count is the richness measure used to compare backends: the number of
// tokens, or the number of non-blank lines for text output.
func (o Output) Count() int {
	if len(o.Tokens) > 0 {
		return len(o.Tokens)
	}
	n := 0
	for _, line := range strings.Split(o.Text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// Empty reports whether nothing usable was recovered.
func (o Output) Empty() bool { return o.Count() == 0 }

// Positioned reports whether the output carries coordinate tokens.
func (o Output) Positioned() bool { return len(o.Tokens) > 0 }
