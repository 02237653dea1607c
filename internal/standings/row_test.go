package standings

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/race-results/internal/entity"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }
func s(v string) *string   { return &v }

func TestBackfill(t *testing.T) {
	tail := []float64{1, 2, 3, 4, 5, 6}
	for k := 0; k <= 6; k++ {
		var row entity.StandingsRow
		Backfill(&row, tail[len(tail)-k:])
		fields := []*float64{row.Total, row.Final, row.Prefinal, row.Semif, row.Serie, row.Anterior}
		for idx, fld := range fields {
			if idx < k && fld == nil {
				t.Errorf("k=%d: field %d unset", k, idx)
			}
			if idx >= k && fld != nil {
				t.Errorf("k=%d: field %d set to %v", k, idx, *fld)
			}
		}
	}

	var row entity.StandingsRow
	Backfill(&row, []float64{12.0, 8.5, 3.0})
	want := entity.StandingsRow{Total: f(3.0), Final: f(8.5), Prefinal: f(12.0)}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("Backfill mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name string
		line string
		want entity.StandingsRow
		ok   bool
	}{
		{
			name: "leading number joins the name",
			line: "1  2  3  Juan Perez  10  20  30",
			want: entity.StandingsRow{
				Pos: 1, Nro: 2, Nombre: "3 Juan Perez",
				Prefinal: f(10), Final: f(20), Total: f(30), Fin: i(30),
			},
			ok: true,
		},
		{
			name: "full table row with decimals",
			line: "4   18   Carlos Gómez   12,5   8   6   4   10   40,5",
			want: entity.StandingsRow{
				Pos: 4, Nro: 18, Nombre: "Carlos Gómez",
				Anterior: f(12.5), Serie: f(8), Semif: f(6), Prefinal: f(4), Final: f(10), Total: f(40.5),
			},
			ok: true,
		},
		{
			name: "more than six numbers keeps the right-most",
			line: "2  9  Ana  1  2  3  4  5  6  7",
			want: entity.StandingsRow{
				Pos: 2, Nro: 9, Nombre: "Ana",
				Anterior: f(2), Serie: f(3), Semif: f(4), Prefinal: f(5), Final: f(6), Total: f(7), Fin: i(7),
			},
			ok: true,
		},
		{
			name: "leftover words are extras and carry fin",
			line: "3  11  Luis Diaz  20  Fin 4  35",
			want: entity.StandingsRow{
				Pos: 3, Nro: 11, Nombre: "Luis Diaz",
				Final: f(20), Total: f(35), Fin: i(4), ExtrasRaw: s("Fin 4"),
			},
			ok: true,
		},
		{
			name: "grouped thousands",
			line: "1  5  Pedro  1.234,5",
			want: entity.StandingsRow{Pos: 1, Nro: 5, Nombre: "Pedro", Total: f(1234.5)},
			ok:   true,
		},
		{
			name: "not a row",
			line: "Pos  Nro  Nombre  Total",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRow(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseRow mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToFloat(t *testing.T) {
	tests := map[string]float64{"12": 12, "12,5": 12.5, "12.5": 12.5, "1.234,5": 1234.5}
	for in, want := range tests {
		got, ok := ToFloat(in)
		if !ok || got != want {
			t.Errorf("ToFloat(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ToFloat("abc"); ok {
		t.Error("ToFloat(abc) should fail")
	}
}

func TestScanBlock(t *testing.T) {
	block := `
Campeonato 2025 - 8 fechas programadas
Pos  Nro  Nombre           Ant  Serie  Final  Total
---------------------------------------------------
1    12   Juan Perez       10   5      20     35
2    7    Ana Lopez        8    4      18     30
Pos  Nro  Nombre           Ant  Serie  Final  Total
3    4    Luis Diaz        6    3      15     24
Detalle de puntos
4    9    Nadie            1    1      1      3
`
	rows, candidates := ScanBlock(block)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if len(candidates) != 3 {
		t.Errorf("got %d candidates, want 3", len(candidates))
	}
	if rows[2].Nombre != "Luis Diaz" || *rows[2].Total != 24 {
		t.Errorf("third row = %+v", rows[2])
	}
}

func TestScanBlockActivation(t *testing.T) {
	// Text before the first row shape is ignored.
	block := "Organiza ACM\nTemporada\n5  21  Pedro  9\n"
	rows, _ := ScanBlock(block)
	if len(rows) != 1 || rows[0].Nro != 21 {
		t.Fatalf("rows = %+v", rows)
	}
}
