package standings

import (
	"strings"
	"testing"
)

func TestSegmentBoundaries(t *testing.T) {
	h1 := "Posiciones en el campeonato cumplidas 3 fechas"
	h2 := "Posiciones en el campeonato cumplidas 4 fechas"
	text := "Club Midget\n" + h1 + "\n1  7  Ana  10\n" + h2 + "\n1  7  Ana  22\n"

	blocks := Segment(text)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	p1End := strings.Index(text, h1) + len(h1)
	p2Start := strings.Index(text, h2)
	if blocks[0].Start != p1End || blocks[0].End != p2Start {
		t.Errorf("first block = [%d,%d), want [%d,%d)", blocks[0].Start, blocks[0].End, p1End, p2Start)
	}
	if blocks[0].Text != text[p1End:p2Start] {
		t.Errorf("first block text = %q", blocks[0].Text)
	}
	if blocks[0].Rounds != 3 || blocks[1].Rounds != 4 {
		t.Errorf("rounds = %d, %d; want 3, 4", blocks[0].Rounds, blocks[1].Rounds)
	}
	if blocks[1].End != len(text) {
		t.Errorf("last block should run to the end of the text, ends at %d of %d", blocks[1].End, len(text))
	}
}

func TestSegmentDetailTerminator(t *testing.T) {
	text := "cumplidas 5 fechas\n1  7  Ana  10\n  Detalle de puntos\n1  7  Ana  99\n"
	blocks := Segment(text)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if strings.Contains(blocks[0].Text, "99") || strings.Contains(blocks[0].Text, "Detalle") {
		t.Errorf("block leaked past the detail marker: %q", blocks[0].Text)
	}
}

func TestSegmentHeaderVariants(t *testing.T) {
	tests := []struct {
		text   string
		rounds int
	}{
		{"POSICIONES EN EL CAMPEONATO CUMPLIDAS 12 FECHAS", 12},
		{"Posiciones en el campeonato cumplida 1 fecha", 1},
		{"Posiciónes en el campeonato, cumplidas 6 fechás", 6},
		{"cumplidas 5 fechas", 5},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			blocks := Segment(tt.text + "\n")
			if len(blocks) != 1 || blocks[0].Rounds != tt.rounds {
				t.Fatalf("Segment(%q) = %+v, want one block with %d rounds", tt.text, blocks, tt.rounds)
			}
		})
	}
}

func TestSegmentNoHeader(t *testing.T) {
	if blocks := Segment("Programa de la fecha\n1  7  Ana  10\n"); blocks != nil {
		t.Errorf("expected no blocks, got %+v", blocks)
	}
}
