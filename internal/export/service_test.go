package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func fPtr(f float64) *float64 { return &f }

func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", sheet, err)
	}
	return rows
}

func TestRaceResultXLSX(t *testing.T) {
	res := &entity.RaceResult{
		Date: strPtr("12/05/2024"),
		Results: []entity.ResultRow{
			{Position: 1, Number: 12, Name: "Juan Pérez", Rec: 0, RecStr: strPtr("1:02.345"), TFinal: strPtr("15:40.210"), Laps: 15},
			{Position: 2, Number: 7, Name: "Ana López", Rec: 5, RecStr: strPtr("1:03.001"), TFinal: strPtr("15:48.900"), Laps: 15, Penalty: intPtr(1), PenaltyNote: strPtr("Largada")},
		},
		SourcePDF: "Serie 1.pdf",
	}
	data, err := NewService(nil).RaceResultXLSX(res)
	if err != nil {
		t.Fatalf("RaceResultXLSX: %v", err)
	}

	want := [][]string{
		{"Pos", "Nro", "Piloto", "Rec", "Rec (texto)", "T. Final", "Vueltas", "Penalización", "Nota"},
		{"1", "12", "Juan Pérez", "0", "1:02.345", "15:40.210", "15"},
		{"2", "7", "Ana López", "5", "1:03.001", "15:48.900", "15", "1", "Largada"},
	}
	if diff := cmp.Diff(want, readRows(t, data, ResultsSheet)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	info := readRows(t, data, "Info")
	if len(info) == 0 || info[0][0] != "Fuente" || info[0][1] != "Serie 1.pdf" {
		t.Errorf("info = %v", info)
	}
}

func TestStandingsXLSX(t *testing.T) {
	rounds := 5
	rep := &entity.StandingsReport{
		Meta: entity.StandingsMeta{SourcePDF: "Fecha 5.pdf", FechasCumplidas: &rounds},
		Standings: []entity.StandingsRow{
			{Pos: 1, Nro: 12, Nombre: "Juan Perez", Prefinal: fPtr(10), Final: fPtr(20.5), Total: fPtr(30.5), Fin: intPtr(3)},
		},
	}
	data, err := NewService(nil).DocumentXLSX(&entity.Document{Kind: constants.KindStandings, Standings: rep})
	if err != nil {
		t.Fatalf("DocumentXLSX: %v", err)
	}
	rows := readRows(t, data, StandingsSheet)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	want := []string{"1", "12", "Juan Perez", "", "", "", "10", "20.5", "30.5", "3"}
	if diff := cmp.Diff(want, rows[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentXLSXWithoutRecord(t *testing.T) {
	_, err := NewService(nil).DocumentXLSX(&entity.Document{Kind: constants.KindRace})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
