package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id           UUID PRIMARY KEY,
	kind         TEXT NOT NULL,
	fecha        TEXT NOT NULL DEFAULT '',
	race         TEXT NOT NULL DEFAULT '',
	source_pdf   TEXT NOT NULL,
	backend      TEXT NOT NULL DEFAULT '',
	token_count  INTEGER NOT NULL DEFAULT 0,
	row_count    INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	warnings     JSONB NOT NULL DEFAULT '[]',
	extracted_at TIMESTAMPTZ NOT NULL,
	payload      JSONB NOT NULL,
	UNIQUE (kind, fecha, race)
);
CREATE INDEX IF NOT EXISTS documents_kind_extracted_at ON documents (kind, extracted_at DESC);
`

const documentColumns = `id::text, kind, fecha, race, source_pdf, backend, token_count, row_count, status, warnings, extracted_at, payload`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRepository creates the documents table when missing and returns
// a repository over pool. Close closes the pool.
func NewPostgresRepository(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (DocumentRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		logger.Error("db.migrate.failed", "err", err)
		return nil, fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
	}
	return &postgresRepo{pool: pool, logger: logger}, nil
}

func (r *postgresRepo) Save(ctx context.Context, doc *entity.Document) error {
	rec, err := toRecord(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	var id string
	err = r.pool.QueryRow(ctx, `
		INSERT INTO documents (id, kind, fecha, race, source_pdf, backend, token_count, row_count, status, warnings, extracted_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11, $12::jsonb)
		ON CONFLICT (kind, fecha, race) DO UPDATE SET
			source_pdf = EXCLUDED.source_pdf,
			backend = EXCLUDED.backend,
			token_count = EXCLUDED.token_count,
			row_count = EXCLUDED.row_count,
			status = EXCLUDED.status,
			warnings = EXCLUDED.warnings,
			extracted_at = EXCLUDED.extracted_at,
			payload = EXCLUDED.payload
		RETURNING id::text`,
		rec.ID, rec.Kind, rec.Fecha, rec.Race, rec.SourcePDF, rec.Backend, rec.TokenCount, rec.RowCount,
		rec.Status, string(rec.Warnings), rec.ExtractedAt, string(rec.Payload),
	).Scan(&id)
	if err != nil {
		r.logger.Error("failed to save document", "kind", rec.Kind, "fecha", rec.Fecha, "race", rec.Race, "error", err)
		return fmt.Errorf("%w: save document: %v", common.ErrDatabase, err)
	}
	return setID(doc, id)
}

func (r *postgresRepo) Get(ctx context.Context, kind constants.DocumentKind, fecha, race string) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE kind = $1 AND fecha = $2 AND race = $3`,
		string(kind), fecha, race)
	return r.scanOne(row)
}

func (r *postgresRepo) Latest(ctx context.Context, kind constants.DocumentKind) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE kind = $1 ORDER BY extracted_at DESC LIMIT 1`,
		string(kind))
	return r.scanOne(row)
}

func (r *postgresRepo) ListFechas(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT fecha FROM documents WHERE kind = $1 AND fecha <> ''`, string(constants.KindRace))
	if err != nil {
		return nil, fmt.Errorf("%w: list fechas: %v", common.ErrDatabase, err)
	}
	fechas, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%w: list fechas: %v", common.ErrDatabase, err)
	}
	return sortFechas(fechas), nil
}

func (r *postgresRepo) ListRaces(ctx context.Context, fecha string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT race FROM documents WHERE kind = $1 AND fecha = $2 AND race <> $3`,
		string(constants.KindRace), constants.NormalizeFecha(fecha), constants.UnknownRace)
	if err != nil {
		return nil, fmt.Errorf("%w: list races: %v", common.ErrDatabase, err)
	}
	races, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%w: list races: %v", common.ErrDatabase, err)
	}
	return sortRaces(races), nil
}

func (r *postgresRepo) Close() {
	r.logger.Info("db.closing")
	r.pool.Close()
}

func (r *postgresRepo) scanOne(row pgx.Row) (*entity.Document, error) {
	var rec record
	err := row.Scan(&rec.ID, &rec.Kind, &rec.Fecha, &rec.Race, &rec.SourcePDF, &rec.Backend,
		&rec.TokenCount, &rec.RowCount, &rec.Status, &rec.Warnings, &rec.ExtractedAt, &rec.Payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan document: %v", common.ErrDatabase, err)
	}
	return rec.document()
}
