package results

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/smokebench/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS smoke_runs (
	run_id      UUID        NOT NULL,
	suite       TEXT        NOT NULL,
	base_url    TEXT        NOT NULL,
	outcome     TEXT        NOT NULL,
	exit_code   INTEGER     NOT NULL,
	warnings    INTEGER     NOT NULL,
	message     TEXT        NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT      NOT NULL,
	PRIMARY KEY (run_id, suite)
);
CREATE INDEX IF NOT EXISTS smoke_runs_suite_started_idx ON smoke_runs (suite, started_at DESC);
`

const insertRun = `
	INSERT INTO smoke_runs (run_id, suite, base_url, outcome, exit_code, warnings, message, started_at, duration_ms)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (run_id, suite) DO NOTHING
`

// Store writes runs to the smoke_runs table.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.ResultsConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Open connects and makes sure the schema exists.
func Open(ctx context.Context, cfg config.ResultsConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Store{db: pool, logger: logger}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates smoke_runs if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Record inserts runs in one batch. Rows already present for the same run
// id and suite are left untouched.
func (s *Store) Record(ctx context.Context, runs []Run) error {
	if len(runs) == 0 {
		return nil
	}

	batch := queueRuns(runs)
	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range runs {
		ct, err := results.Exec()
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		inserted += int(ct.RowsAffected())
	}

	s.logger.Debug("recorded runs", "count", len(runs), "inserted", inserted, "run_id", runs[0].RunID)
	return nil
}

func queueRuns(runs []Run) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, r := range runs {
		batch.Queue(insertRun,
			r.RunID, r.Suite, r.BaseURL, r.Outcome(), r.ExitCode, r.Warnings, r.Message,
			r.StartedAt, r.Duration.Milliseconds())
	}
	return batch
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
