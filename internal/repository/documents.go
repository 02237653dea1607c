package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/entity"
)

// DocumentRepository stores processed documents, one per (kind, fecha, race).
type DocumentRepository interface {
	// Save inserts or replaces the document with the same kind, fecha and
	// race. doc.ID is set to the stored ID.
	Save(ctx context.Context, doc *entity.Document) error
	Get(ctx context.Context, kind constants.DocumentKind, fecha, race string) (*entity.Document, error)
	// ListFechas returns the fechas with at least one race, by number.
	ListFechas(ctx context.Context) ([]string, error)
	// ListRaces returns the known races of a fecha in race order.
	ListRaces(ctx context.Context, fecha string) ([]string, error)
	// Latest returns the most recently extracted document of a kind.
	Latest(ctx context.Context, kind constants.DocumentKind) (*entity.Document, error)
	Close()
}

// record is the column form of a document shared by both drivers.
type record struct {
	ID          string
	Kind        string
	Fecha       string
	Race        string
	SourcePDF   string
	Backend     string
	TokenCount  int
	RowCount    int
	Status      string
	Warnings    []byte
	ExtractedAt time.Time
	Payload     []byte
}

func toRecord(doc *entity.Document) (record, error) {
	if doc == nil || doc.Payload() == nil {
		return record{}, fmt.Errorf("document has no payload")
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	payload, err := json.Marshal(doc.Payload())
	if err != nil {
		return record{}, fmt.Errorf("marshal payload: %w", err)
	}
	warnings := doc.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	w, err := json.Marshal(warnings)
	if err != nil {
		return record{}, fmt.Errorf("marshal warnings: %w", err)
	}
	extracted := doc.ExtractedAt
	if extracted.IsZero() {
		extracted = time.Now()
	}
	return record{
		ID:          doc.ID.String(),
		Kind:        string(doc.Kind),
		Fecha:       doc.Fecha,
		Race:        doc.Race,
		SourcePDF:   doc.SourcePDF,
		Backend:     doc.Backend,
		TokenCount:  doc.TokenCount,
		RowCount:    doc.RowCount,
		Status:      string(doc.Status),
		Warnings:    w,
		ExtractedAt: extracted.UTC(),
		Payload:     payload,
	}, nil
}

func (r record) document() (*entity.Document, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	doc := &entity.Document{
		ID:          id,
		Kind:        constants.DocumentKind(r.Kind),
		Fecha:       r.Fecha,
		Race:        r.Race,
		SourcePDF:   r.SourcePDF,
		Backend:     r.Backend,
		TokenCount:  r.TokenCount,
		RowCount:    r.RowCount,
		Status:      constants.JobStatus(r.Status),
		ExtractedAt: r.ExtractedAt.UTC(),
	}
	if len(r.Warnings) > 0 {
		if err := json.Unmarshal(r.Warnings, &doc.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal warnings: %w", err)
		}
		if len(doc.Warnings) == 0 {
			doc.Warnings = nil
		}
	}
	switch doc.Kind {
	case constants.KindStandings:
		doc.Standings = &entity.StandingsReport{}
		err = json.Unmarshal(r.Payload, doc.Standings)
	case constants.KindRace:
		doc.Result = &entity.RaceResult{}
		err = json.Unmarshal(r.Payload, doc.Result)
	default:
		err = fmt.Errorf("unknown document kind %q", r.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return doc, nil
}

func sortFechas(fechas []string) []string {
	sort.SliceStable(fechas, func(i, j int) bool {
		return constants.FechaNumber(fechas[i]) < constants.FechaNumber(fechas[j])
	})
	return fechas
}

func sortRaces(races []string) []string {
	sort.SliceStable(races, func(i, j int) bool { return constants.LessRace(races[i], races[j]) })
	return races
}
