package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/raceresult"
	"github.com/joseph-ayodele/race-results/internal/standings"
)

func TestDocumentStandings(t *testing.T) {
	res := standings.Parse("cumplidas 5 fechas\n1  2  Juan Perez  10  20  30\n")
	rep := standings.Report(res, "FECHA5.pdf", "pdftotext-layout", time.Now())
	data, err := entity.EncodeJSON(rep, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := Document(constants.KindStandings, data); err != nil {
		t.Errorf("valid report rejected: %v", err)
	}

	empty := standings.Report(standings.Parse("nothing here"), "x.pdf", "", time.Now())
	data, _ = entity.EncodeJSON(empty, true)
	if err := Document(constants.KindStandings, data); err != nil {
		t.Errorf("empty report rejected: %v", err)
	}
}

func TestDocumentRace(t *testing.T) {
	note := "DSQ"
	rep := raceresult.Report(raceresult.Result{Rows: []entity.ResultRow{{Position: 1, Number: 5, Name: "Juan", Laps: 2, PenaltyNote: &note}}}, "serie1.pdf", "pdf-words", time.Now())
	data, err := entity.EncodeJSON(rep, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := Document(constants.KindRace, data); err != nil {
		t.Errorf("valid result rejected: %v", err)
	}
}

func TestDocumentRejects(t *testing.T) {
	tests := []struct {
		name string
		kind constants.DocumentKind
		data string
	}{
		{"missing standings", constants.KindStandings, `{"meta":{"source_pdf":"a","extracted_at_utc":"2025-01-01T00:00:00Z","fechas_cumplidas":null,"fechas_detectadas":[]}}`},
		{"bad timestamp", constants.KindStandings, `{"meta":{"source_pdf":"a","extracted_at_utc":"yesterday","fechas_cumplidas":null,"fechas_detectadas":[]},"standings":[]}`},
		{"laps as string", constants.KindRace, `{"date":null,"time":null,"results":[{"position":1,"number":2,"name":"x","rec":0,"laps":"3"}]}`},
		{"not json", constants.KindRace, `{`},
		{"unknown kind", constants.DocumentKind("other"), `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Document(tt.kind, []byte(tt.data)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestManifestSchema(t *testing.T) {
	schema, err := Compile("fechas.json", ManifestSchema("fechas"))
	if err != nil {
		t.Fatal(err)
	}
	if err := JSON(schema, []byte(`{"fechas":["Fecha 1","Fecha 2"]}`)); err != nil {
		t.Errorf("valid manifest rejected: %v", err)
	}
	err = JSON(schema, []byte(`{"fechas":["Fecha 1","Fecha 1"]}`))
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Errorf("duplicate fechas accepted: %v", err)
	}
}
