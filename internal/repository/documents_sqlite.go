package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/race-results/constants"
	"github.com/joseph-ayodele/race-results/internal/common"
	"github.com/joseph-ayodele/race-results/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	fecha        TEXT NOT NULL DEFAULT '',
	race         TEXT NOT NULL DEFAULT '',
	source_pdf   TEXT NOT NULL,
	backend      TEXT NOT NULL DEFAULT '',
	token_count  INTEGER NOT NULL DEFAULT 0,
	row_count    INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	warnings     TEXT NOT NULL DEFAULT '[]',
	extracted_at TEXT NOT NULL,
	payload      TEXT NOT NULL,
	UNIQUE (kind, fecha, race)
);
CREATE INDEX IF NOT EXISTS documents_kind_extracted_at ON documents (kind, extracted_at);
`

// sqliteTime sorts lexically in time order for UTC values.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteColumns = `id, kind, fecha, race, source_pdf, backend, token_count, row_count, status, warnings, extracted_at, payload`

type sqliteRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating when needed) a SQLite database at path. ":memory:"
// gives a private in-memory store.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (DocumentRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db folder: %v", common.ErrDatabase, err)
		}
	}
	logger.Info("db.connecting", "driver", "sqlite", "path", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", common.ErrDatabase, err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{`PRAGMA journal_mode = WAL`, `PRAGMA busy_timeout = 5000`, sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			logger.Error("db.migrate.failed", "err", err)
			return nil, fmt.Errorf("%w: migrate sqlite: %v", common.ErrDatabase, err)
		}
	}
	return &sqliteRepo{db: db, logger: logger}, nil
}

func (r *sqliteRepo) Save(ctx context.Context, doc *entity.Document) error {
	rec, err := toRecord(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	var id string
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, kind, fecha, race, source_pdf, backend, token_count, row_count, status, warnings, extracted_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, fecha, race) DO UPDATE SET
			source_pdf = excluded.source_pdf,
			backend = excluded.backend,
			token_count = excluded.token_count,
			row_count = excluded.row_count,
			status = excluded.status,
			warnings = excluded.warnings,
			extracted_at = excluded.extracted_at,
			payload = excluded.payload
		RETURNING id`,
		rec.ID, rec.Kind, rec.Fecha, rec.Race, rec.SourcePDF, rec.Backend, rec.TokenCount, rec.RowCount,
		rec.Status, string(rec.Warnings), rec.ExtractedAt.Format(sqliteTime), string(rec.Payload),
	).Scan(&id)
	if err != nil {
		r.logger.Error("failed to save document", "kind", rec.Kind, "fecha", rec.Fecha, "race", rec.Race, "error", err)
		return fmt.Errorf("%w: save document: %v", common.ErrDatabase, err)
	}
	return setID(doc, id)
}

func (r *sqliteRepo) Get(ctx context.Context, kind constants.DocumentKind, fecha, race string) (*entity.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM documents WHERE kind = ? AND fecha = ? AND race = ?`,
		string(kind), fecha, race)
	return scanSQLite(row)
}

func (r *sqliteRepo) Latest(ctx context.Context, kind constants.DocumentKind) (*entity.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM documents WHERE kind = ? ORDER BY extracted_at DESC LIMIT 1`,
		string(kind))
	return scanSQLite(row)
}

func (r *sqliteRepo) ListFechas(ctx context.Context) ([]string, error) {
	fechas, err := r.strings(ctx,
		`SELECT DISTINCT fecha FROM documents WHERE kind = ? AND fecha <> ''`, string(constants.KindRace))
	if err != nil {
		return nil, fmt.Errorf("%w: list fechas: %v", common.ErrDatabase, err)
	}
	return sortFechas(fechas), nil
}

func (r *sqliteRepo) ListRaces(ctx context.Context, fecha string) ([]string, error) {
	races, err := r.strings(ctx,
		`SELECT race FROM documents WHERE kind = ? AND fecha = ? AND race <> ?`,
		string(constants.KindRace), constants.NormalizeFecha(fecha), constants.UnknownRace)
	if err != nil {
		return nil, fmt.Errorf("%w: list races: %v", common.ErrDatabase, err)
	}
	return sortRaces(races), nil
}

func (r *sqliteRepo) Close() {
	r.logger.Info("db.closing")
	if err := r.db.Close(); err != nil {
		r.logger.Error("db.close.failed", "err", err)
	}
}

func (r *sqliteRepo) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSQLite(row *sql.Row) (*entity.Document, error) {
	var rec record
	var warnings, payload, extractedAt string
	err := row.Scan(&rec.ID, &rec.Kind, &rec.Fecha, &rec.Race, &rec.SourcePDF, &rec.Backend,
		&rec.TokenCount, &rec.RowCount, &rec.Status, &warnings, &extractedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan document: %v", common.ErrDatabase, err)
	}
	rec.Warnings = []byte(warnings)
	rec.Payload = []byte(payload)
	if rec.ExtractedAt, err = time.Parse(sqliteTime, extractedAt); err != nil {
		return nil, fmt.Errorf("%w: parse extracted_at: %v", common.ErrDatabase, err)
	}
	return rec.document()
}

func setID(doc *entity.Document, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: stored id: %v", common.ErrDatabase, err)
	}
	doc.ID = parsed
	return nil
}
