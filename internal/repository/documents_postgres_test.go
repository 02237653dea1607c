package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
)

// Runs against a real server only when TEST_DB_URL is set.
func TestPostgresSaveAndGet(t *testing.T) {
	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set")
	}
	ctx := context.Background()
	repo, err := New(ctx, common.DatabaseConfig{Driver: "postgres", DSN: dsn, DialTimeout: 5 * time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(repo.Close)

	fecha := fmt.Sprintf("Fecha %d", 1000+time.Now().UnixNano()%100000)
	doc := raceDoc(fecha, "final", time.Now().UTC().Truncate(time.Microsecond))
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Get(ctx, constants.KindRace, fecha, "final")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("id = %v, want %v", got.ID, doc.ID)
	}
	if diff := cmp.Diff(doc.Result, got.Result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	races, err := repo.ListRaces(ctx, fecha)
	if err != nil {
		t.Fatalf("ListRaces: %v", err)
	}
	if diff := cmp.Diff([]string{"final"}, races); diff != "" {
		t.Errorf("races mismatch (-want +got):\n%s", diff)
	}
}
