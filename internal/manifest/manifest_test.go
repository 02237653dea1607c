package manifest

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/race-results/internal/entity"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestUpdate(t *testing.T) {
	m := newManager(t)

	steps := []struct{ fecha, race string }{
		{"fecha 10", "final"},
		{"Fecha 2", "serie2"},
		{"Fecha 2", "serie1"},
		{"Fecha 2", "prefinal"},
		{"Fecha 2", "repechaje1"},
		{"Fecha 2", "serie1"},
		{"Fecha 3", "unknown"},
	}
	for _, s := range steps {
		if _, err := m.Update(s.fecha, s.race); err != nil {
			t.Fatalf("Update(%q, %q): %v", s.fecha, s.race, err)
		}
	}

	var fechas Fechas
	readJSON(t, filepath.Join(m.Dir(), "fechas.json"), &fechas)
	if diff := cmp.Diff([]string{"Fecha 2", "Fecha 3", "Fecha 10"}, fechas.Fechas); diff != "" {
		t.Errorf("fechas mismatch (-want +got):\n%s", diff)
	}

	var idx Index
	readJSON(t, filepath.Join(m.Dir(), "Fecha 2", "index.json"), &idx)
	if diff := cmp.Diff([]string{"serie1", "serie2", "repechaje1", "prefinal"}, idx.Races); diff != "" {
		t.Errorf("races mismatch (-want +got):\n%s", diff)
	}

	if _, err := os.Stat(filepath.Join(m.Dir(), "Fecha 3", "index.json")); !os.IsNotExist(err) {
		t.Errorf("unknown race must not create an index, stat err = %v", err)
	}
}

func TestUpdateReportsChange(t *testing.T) {
	m := newManager(t)
	changed, err := m.Update("Fecha 1", "final")
	if err != nil || !changed {
		t.Fatalf("first Update = %v, %v; want true", changed, err)
	}
	changed, err = m.Update("Fecha 1", "final")
	if err != nil || changed {
		t.Fatalf("second Update = %v, %v; want false", changed, err)
	}
}

func TestUpdateReplacesCorruptManifest(t *testing.T) {
	m := newManager(t)
	path := filepath.Join(m.Dir(), "fechas.json")
	if err := os.WriteFile(path, []byte(`{"fechas": "nope"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Update("Fecha 4", "serie1"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff([]string{"Fecha 4"}, m.Fechas()); diff != "" {
		t.Errorf("fechas mismatch (-want +got):\n%s", diff)
	}
}

func TestRebuild(t *testing.T) {
	m := newManager(t)
	files := []string{
		"Fecha 1/final.json",
		"Fecha 1/serie1.json",
		"Fecha 1/index.json",
		"Fecha 11/semifinal2.json",
		"Fecha 11/semifinal1.json",
		"Fecha 5/notes.txt",
		"Posiciones/posiciones.json",
	}
	for _, f := range files {
		p := filepath.Join(m.Dir(), f)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if diff := cmp.Diff([]string{"Fecha 1", "Fecha 11"}, got.Fechas); diff != "" {
		t.Errorf("fechas mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"serie1", "final"}, m.Races("fecha 1")); diff != "" {
		t.Errorf("Fecha 1 races mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"semifinal1", "semifinal2"}, m.Races("Fecha 11")); diff != "" {
		t.Errorf("Fecha 11 races mismatch (-want +got):\n%s", diff)
	}
}

func TestRebuildNormalisesFolders(t *testing.T) {
	m := newManager(t)
	for _, f := range []string{"fecha 03/serie1.json", "fecha 03/index.json", "Fecha 3/final.json"} {
		p := filepath.Join(m.Dir(), f)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if diff := cmp.Diff([]string{"Fecha 3"}, got.Fechas); diff != "" {
		t.Errorf("fechas mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"serie1", "final"}, m.Races("Fecha 3")); diff != "" {
		t.Errorf("races mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(m.RacePath("Fecha 3", "serie1")); err != nil {
		t.Errorf("race file not moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(m.Dir(), "fecha 03")); !os.IsNotExist(err) {
		t.Errorf("old folder still present: %v", err)
	}
}

func TestRebuildEmptyDir(t *testing.T) {
	m := newManager(t)
	got, err := m.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if got.Fechas == nil || len(got.Fechas) != 0 {
		t.Errorf("fechas = %#v, want empty", got.Fechas)
	}
}

func TestPromoteStandings(t *testing.T) {
	m := newManager(t)
	report := func(n int) *entity.StandingsReport {
		return &entity.StandingsReport{
			Meta:      entity.StandingsMeta{SourcePDF: "p.pdf", FechasCumplidas: &n, FechasDetectadas: []int{n}},
			Standings: []entity.StandingsRow{},
		}
	}

	for _, tc := range []struct {
		rounds int
		want   bool
	}{
		{5, true},
		{4, false},
		{5, true},
		{6, true},
	} {
		wrote, err := m.PromoteStandings(report(tc.rounds))
		if err != nil {
			t.Fatalf("PromoteStandings(%d): %v", tc.rounds, err)
		}
		if wrote != tc.want {
			t.Errorf("PromoteStandings(%d) = %v, want %v", tc.rounds, wrote, tc.want)
		}
	}

	var latest entity.StandingsReport
	readJSON(t, m.LatestStandingsPath(), &latest)
	if latest.Meta.FechasCumplidas == nil || *latest.Meta.FechasCumplidas != 6 {
		t.Errorf("latest rounds = %v, want 6", latest.Meta.FechasCumplidas)
	}
}

func TestPaths(t *testing.T) {
	m := &Manager{dir: "out"}
	if got, want := m.RacePath("fecha 03", "serie1"), filepath.Join("out", "Fecha 3", "serie1.json"); got != want {
		t.Errorf("RacePath = %q, want %q", got, want)
	}
	if got, want := m.StandingsPath("Fecha 5"), filepath.Join("out", "Posiciones", "Fecha 5.json"); got != want {
		t.Errorf("StandingsPath = %q, want %q", got, want)
	}
}
