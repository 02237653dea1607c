package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/race-results/internal/extract"
)

func plain(texts ...string) []extract.Token {
	out := make([]extract.Token, len(texts))
	for i, s := range texts {
		out[i] = extract.PlainToken{Value: s}
	}
	return out
}

func TestMergeTimes(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"split decimal", []string{"1", "5", "1:21", ".", "416", "3"}, []string{"1", "5", "1:21.416", "3"}},
		{"comma separator", []string{"1:02", ",", "30"}, []string{"1:02,30"}},
		{"colon separator", []string{"12.05", ":", "123"}, []string{"12.05:123"}},
		{"two splits on one line", []string{"1:02", ".", "300", "1:01", ".", "900"}, []string{"1:02.300", "1:01.900"}},
		{"fraction too long", []string{"1:21", ".", "4160"}, []string{"1:21", ".", "4160"}},
		{"not a time", []string{"121", ".", "416"}, []string{"121", ".", "416"}},
		{"separator missing", []string{"1:21", "416"}, []string{"1:21", "416"}},
		{"truncated at end", []string{"1:21", "."}, []string{"1:21", "."}},
		{"already whole", []string{"1:21.416", ".", "300"}, []string{"1:21.416", ".", "300"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extract.Texts(MergeTimes(plain(tt.in...)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MergeTimes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeTimesIdempotent(t *testing.T) {
	inputs := [][]string{
		{"1", "5", "Juan", "1:02", ".", "300", "1:01", ".", "900", "2"},
		{"1:21", ".", "416", ".", "300"},
		{"1:21", ".", "41", ":", "20"},
		{"9.59", ",", "12", ",", "123"},
	}
	for _, in := range inputs {
		once := MergeTimes(plain(in...))
		twice := MergeTimes(once)
		if diff := cmp.Diff(extract.Texts(once), extract.Texts(twice)); diff != "" {
			t.Errorf("MergeTimes not idempotent for %v (-once +twice):\n%s", in, diff)
		}
	}
}

func TestMergeTimesPositionedUnion(t *testing.T) {
	in := []extract.Token{
		extract.PositionedToken{Value: "1:21", Page: 3, X: 100, Y: 50, Width: 16, Height: 8},
		extract.PositionedToken{Value: ".", Page: 3, X: 118, Y: 51, Width: 2, Height: 8},
		extract.PositionedToken{Value: "416", Page: 3, X: 122, Y: 49, Width: 12, Height: 8},
	}
	got := MergeTimes(in)
	if len(got) != 1 {
		t.Fatalf("got %d tokens, want 1", len(got))
	}
	p, ok := extract.Position(got[0])
	if !ok {
		t.Fatal("merged token lost its position")
	}
	want := extract.PositionedToken{Value: "1:21.416", Page: 3, X: 100, Y: 49, Width: 34, Height: 10}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("merged token mismatch (-want +got):\n%s", diff)
	}
	if in[0].Text() != "1:21" {
		t.Error("input was modified")
	}
}
