package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/race-results/internal/common"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// Open creates a pgx pool.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("db.connecting", "driver", "postgres")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("db.config.invalid", "err", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "race-results"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	ctx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("db.connect.failed", "err", err)
		return nil, err
	}
	logger.Info("db.connected")
	return pool, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("db.ping")
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	return pool.Ping(ctx)
}

// New opens the store selected by the database configuration. The "none"
// driver returns a nil repository.
func New(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (DocumentRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "none":
		return nil, nil
	case "postgres":
		pool, err := Open(ctx, Config{
			DSN:              cfg.DSN,
			MaxConns:         cfg.MaxConns,
			MinConns:         cfg.MinConns,
			MaxConnLifetime:  cfg.MaxConnLifetime,
			MaxConnIdleTime:  cfg.MaxConnIdleTime,
			DialTimeout:      cfg.DialTimeout,
			StatementTimeout: cfg.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "open postgres", fmt.Errorf("%w: %v", common.ErrDatabase, err))
		}
		if err := HealthCheck(ctx, pool, cfg.DialTimeout, logger); err != nil {
			pool.Close()
			return nil, common.NewAppError("DB_ERROR", "ping postgres", fmt.Errorf("%w: %v", common.ErrDatabase, err))
		}
		return closeOnError(pool)(NewPostgresRepository(ctx, pool, logger))
	case "", "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath, logger)
	}
	return nil, common.NewAppError("CONFIG_ERROR", "unknown database driver "+cfg.Driver, common.ErrInvalidInput)
}

// closeOnError closes c when opening a repository over it failed.
func closeOnError(c interface{ Close() }) func(DocumentRepository, error) (DocumentRepository, error) {
	return func(repo DocumentRepository, err error) (DocumentRepository, error) {
		if err != nil {
			c.Close()
			return nil, err
		}
		return repo, nil
	}
}
