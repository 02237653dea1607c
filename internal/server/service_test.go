package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/async"
	"github.com/joseph-ayodele/race-results/internal/entity"
	"github.com/joseph-ayodele/race-results/internal/manifest"
	"github.com/joseph-ayodele/race-results/internal/repository"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func sp(s string) *string { return &s }

func sampleResult() *entity.RaceResult {
	return &entity.RaceResult{
		Date: sp("12/05/2024"),
		Results: []entity.ResultRow{
			{Position: 1, Number: 12, Name: "Juan Pérez", RecStr: sp("1:02.345"), TFinal: sp("15:40.210"), Laps: 15},
		},
		SourcePDF: "Serie 1.pdf",
	}
}

func fileSource(t *testing.T) FileSource {
	t.Helper()
	man, err := manifest.NewManager(t.TempDir(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	data, err := entity.EncodeJSON(sampleResult(), true)
	if err != nil {
		t.Fatal(err)
	}
	if err := manifest.WriteFile(man.RacePath("Fecha 3", "serie1"), data); err != nil {
		t.Fatal(err)
	}
	if _, err := man.Update("Fecha 3", "serie1"); err != nil {
		t.Fatal(err)
	}
	return FileSource{Manifest: man}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutesFromFiles(t *testing.T) {
	h := NewResultsService(fileSource(t), nil, nil, quiet()).Routes()

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"health", "/health", http.StatusOK, `{"ok":true,"service":"race-results"}`},
		{"fechas", "/fechas", http.StatusOK, `{"fechas":["Fecha 3"]}`},
		{"races", "/fechas/Fecha%203", http.StatusOK, `{"races":["serie1"]}`},
		{"races lowercase fecha", "/fechas/fecha%2003", http.StatusOK, `{"races":["serie1"]}`},
		{"unknown fecha", "/fechas/Fecha%209", http.StatusNotFound, ""},
		{"unknown race", "/fechas/Fecha%203/final", http.StatusNotFound, ""},
		{"no standings yet", "/posiciones", http.StatusNotFound, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, h, tc.path)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.status, rec.Body)
			}
			if tc.body != "" && strings.TrimSpace(rec.Body.String()) != tc.body {
				t.Errorf("body = %s, want %s", rec.Body, tc.body)
			}
		})
	}
}

func TestGetRaceJSONAndXLSX(t *testing.T) {
	h := NewResultsService(fileSource(t), nil, nil, quiet()).Routes()

	rec := get(t, h, "/fechas/Fecha%203/serie1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got entity.RaceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(*sampleResult(), got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(rec.Body.String(), "Juan Pérez") {
		t.Error("names must not be escaped")
	}

	rec = get(t, h, "/fechas/Fecha%203/serie1.xlsx")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("xlsx status = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Resultados")
	if err != nil || len(rows) != 2 || rows[1][2] != "Juan Pérez" {
		t.Errorf("rows = %v, err = %v", rows, err)
	}
}

func TestGetRaceRejectsPathTricks(t *testing.T) {
	h := NewResultsService(fileSource(t), nil, nil, quiet()).Routes()
	rec := get(t, h, "/fechas/Fecha%203/..%5Cserie1")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRoutesFromRepository(t *testing.T) {
	repo, err := repository.OpenSQLite(context.Background(), ":memory:", quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	rounds := 6
	docs := []*entity.Document{
		{Kind: constants.KindRace, Fecha: "Fecha 3", Race: "final", SourcePDF: "Final.pdf", Status: constants.JobStatusOK, ExtractedAt: time.Now(), Result: sampleResult()},
		{Kind: constants.KindRace, Fecha: "Fecha 3", Race: "serie1", SourcePDF: "Serie 1.pdf", Status: constants.JobStatusOK, ExtractedAt: time.Now(), Result: sampleResult()},
		{Kind: constants.KindStandings, Race: "Fecha 6", SourcePDF: "Fecha 6.pdf", Status: constants.JobStatusOK, ExtractedAt: time.Now(),
			Standings: &entity.StandingsReport{Meta: entity.StandingsMeta{SourcePDF: "Fecha 6.pdf", FechasCumplidas: &rounds, FechasDetectadas: []int{6}}, Standings: []entity.StandingsRow{}}},
	}
	for _, d := range docs {
		if err := repo.Save(context.Background(), d); err != nil {
			t.Fatal(err)
		}
	}
	h := NewResultsService(RepoSource{Repo: repo}, nil, nil, quiet()).Routes()

	if rec := get(t, h, "/fechas/Fecha%203"); strings.TrimSpace(rec.Body.String()) != `{"races":["serie1","final"]}` {
		t.Errorf("races body = %s", rec.Body)
	}
	rec := get(t, h, "/posiciones")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"fechas_cumplidas":6`) {
		t.Errorf("standings = %d %s", rec.Code, rec.Body)
	}
	if rec := get(t, h, "/posiciones.xlsx"); rec.Code != http.StatusOK {
		t.Errorf("standings xlsx status = %d", rec.Code)
	}
}

type recordingQueue struct{ jobs []async.Job }

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func TestSubmitJob(t *testing.T) {
	root := t.TempDir()
	pdf := filepath.Join(root, "Fecha 2", "Serie 3.pdf")
	if err := os.MkdirAll(filepath.Dir(pdf), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pdf, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	q := &recordingQueue{}
	h := NewResultsService(fileSource(t), nil, NewIngestionService(root, q, quiet()), quiet()).Routes()

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"path": "Fecha 2/Serie 3.pdf", "force": true}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var resp submitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Race != "serie3" || resp.Fecha != "Fecha 2" || len(q.jobs) != 1 || !q.jobs[0].Force {
		t.Errorf("resp = %+v jobs = %+v", resp, q.jobs)
	}

	for body, want := range map[string]int{
		`not json`:                              http.StatusBadRequest,
		`{"path": "../etc/passwd.pdf"}`:         http.StatusBadRequest,
		`{"path": "Fecha 2/Final.pdf"}`:         http.StatusNotFound,
		`{"path": "notes/Fecha 2/Serie 3.pdf"}`: http.StatusBadRequest,
	} {
		if rec := post(body); rec.Code != want {
			t.Errorf("%s: status = %d, want %d", body, rec.Code, want)
		}
	}
}
