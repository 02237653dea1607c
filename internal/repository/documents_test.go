package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
)

func openTestRepo(t *testing.T) DocumentRepository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), ":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(repo.Close)
	return repo
}

func strPtr(s string) *string { return &s }

func raceDoc(fecha, race string, at time.Time) *entity.Document {
	return &entity.Document{
		Kind:        constants.KindRace,
		Fecha:       fecha,
		Race:        race,
		SourcePDF:   race + ".pdf",
		Backend:     "pdf-words",
		TokenCount:  120,
		RowCount:    1,
		Status:      constants.JobStatusOK,
		ExtractedAt: at,
		Result: &entity.RaceResult{
			Date: strPtr("12/05/2024"),
			Results: []entity.ResultRow{
				{Position: 1, Number: 7, Name: "Ana Lopez", Rec: 0, RecStr: strPtr("1:02.500"), TFinal: strPtr("15:40.210"), Laps: 15},
			},
			SourcePDF: race + ".pdf",
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 12, 15, 4, 5, 123000000, time.UTC)

	doc := raceDoc("Fecha 3", "serie1", at)
	doc.Warnings = []string{"low token count"}
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if doc.ID == uuid.Nil {
		t.Fatal("Save did not assign an ID")
	}

	got, err := repo.Get(ctx, constants.KindRace, "Fecha 3", "serie1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveUpsertsKeepingID(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 12, 15, 0, 0, 0, time.UTC)

	first := raceDoc("Fecha 3", "final", at)
	if err := repo.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := raceDoc("Fecha 3", "final", at.Add(time.Hour))
	second.Backend = "ocr-tesseract"
	if err := repo.Save(ctx, second); err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert changed id: %s -> %s", first.ID, second.ID)
	}
	got, err := repo.Get(ctx, constants.KindRace, "Fecha 3", "final")
	if err != nil {
		t.Fatal(err)
	}
	if got.Backend != "ocr-tesseract" {
		t.Errorf("backend = %q, want replaced value", got.Backend)
	}
}

func TestGetNotFound(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.Get(context.Background(), constants.KindRace, "Fecha 1", "serie1")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := repo.Latest(context.Background(), constants.KindStandings); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Latest err = %v, want ErrNotFound", err)
	}
}

func TestListings(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 12, 15, 0, 0, 0, time.UTC)
	for _, d := range []struct{ fecha, race string }{
		{"Fecha 10", "final"},
		{"Fecha 2", "final"},
		{"Fecha 2", "serie2"},
		{"Fecha 2", "unknown"},
		{"Fecha 2", "semifinal1"},
		{"Fecha 2", "serie1"},
	} {
		if err := repo.Save(ctx, raceDoc(d.fecha, d.race, at)); err != nil {
			t.Fatal(err)
		}
	}

	fechas, err := repo.ListFechas(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Fecha 2", "Fecha 10"}, fechas); diff != "" {
		t.Errorf("fechas mismatch (-want +got):\n%s", diff)
	}

	races, err := repo.ListRaces(ctx, "fecha 2")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"serie1", "serie2", "semifinal1", "final"}, races); diff != "" {
		t.Errorf("races mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestStandings(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 12, 15, 0, 0, 0, time.UTC)
	rounds := 4

	for i, stem := range []string{"Fecha 4", "Fecha 3"} {
		doc := &entity.Document{
			Kind:        constants.KindStandings,
			Race:        stem,
			SourcePDF:   stem + ".pdf",
			Status:      constants.JobStatusOK,
			ExtractedAt: base.Add(time.Duration(i) * time.Second),
			Standings: &entity.StandingsReport{
				Meta:      entity.StandingsMeta{SourcePDF: stem + ".pdf", FechasCumplidas: &rounds, FechasDetectadas: []int{4}},
				Standings: []entity.StandingsRow{},
			},
		}
		if err := repo.Save(ctx, doc); err != nil {
			t.Fatal(err)
		}
	}
	got, err := repo.Latest(ctx, constants.KindStandings)
	if err != nil {
		t.Fatal(err)
	}
	if got.SourcePDF != "Fecha 3.pdf" || got.Standings == nil || *got.Standings.Meta.FechasCumplidas != 4 {
		t.Errorf("latest = %+v", got)
	}
}

func TestSaveRejectsEmptyDocument(t *testing.T) {
	repo := openTestRepo(t)
	err := repo.Save(context.Background(), &entity.Document{Kind: constants.KindRace})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestNewSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.db")
	repo, err := New(context.Background(), common.DatabaseConfig{Driver: "sqlite", SQLitePath: path}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()
	if err := repo.Save(context.Background(), raceDoc("Fecha 1", "serie1", time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}

	none, err := New(context.Background(), common.DatabaseConfig{Driver: "none"}, nil)
	if err != nil || none != nil {
		t.Errorf("none driver = %v, %v; want nil, nil", none, err)
	}
	if _, err := New(context.Background(), common.DatabaseConfig{Driver: "mongo"}, nil); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("unknown driver err = %v", err)
	}
}

type closeCounter struct{ closed int }

func (c *closeCounter) Close() { c.closed++ }

func TestCloseOnError(t *testing.T) {
	c := &closeCounter{}
	repo, err := closeOnError(c)(nil, fmt.Errorf("%w: migrate: denied", common.ErrDatabase))
	if repo != nil || !errors.Is(err, common.ErrDatabase) || c.closed != 1 {
		t.Errorf("failed open: repo = %v err = %v closed = %d", repo, err, c.closed)
	}

	ok := openTestRepo(t)
	repo, err = closeOnError(c)(ok, nil)
	if err != nil || repo != ok || c.closed != 1 {
		t.Errorf("good open: repo = %v err = %v closed = %d", repo, err, c.closed)
	}
}
