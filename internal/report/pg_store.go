package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS merge_results (
	run_id      UUID        NOT NULL,
	kit         TEXT        NOT NULL,
	doc_id      INTEGER     NOT NULL,
	document    TEXT        NOT NULL,
	output      TEXT        NOT NULL,
	errors      INTEGER     NOT NULL,
	warnings    INTEGER     NOT NULL,
	failed      TEXT        NOT NULL DEFAULT '',
	duration_ms BIGINT      NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, doc_id)
)`

const insertResult = `
INSERT INTO merge_results (run_id, kit, doc_id, document, output, errors, warnings, failed, duration_ms, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (run_id, doc_id) DO UPDATE SET
	output = EXCLUDED.output,
	errors = EXCLUDED.errors,
	warnings = EXCLUDED.warnings,
	failed = EXCLUDED.failed,
	duration_ms = EXCLUDED.duration_ms,
	finished_at = EXCLUDED.finished_at`

const selectResults = `
SELECT run_id, kit, doc_id, document, output, errors, warnings, failed, duration_ms, finished_at
FROM merge_results
ORDER BY finished_at, run_id, doc_id`

// PGStore handles persistence of merge results in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a new PostgreSQL-backed store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the results table when missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create merge_results table: %w", err)
	}
	return nil
}

// Save upserts entries in one batch.
func (s *PGStore) Save(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(insertResult,
			e.RunID, e.Kit, e.DocID, e.Document, e.Output,
			e.Errors, e.Warnings, e.Failed, e.Duration.Milliseconds(), e.FinishedAt)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save merge results: %w", err)
	}

	log.Info().Int("entries", len(entries)).Msg("Stored merge results")
	return nil
}

// All retrieves every stored entry, oldest first.
func (s *PGStore) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, selectResults)
	if err != nil {
		return nil, fmt.Errorf("query merge results: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		var ms int64
		err := row.Scan(&e.RunID, &e.Kit, &e.DocID, &e.Document, &e.Output,
			&e.Errors, &e.Warnings, &e.Failed, &ms, &e.FinishedAt)
		e.Duration = time.Duration(ms) * time.Millisecond
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan merge results: %w", err)
	}
	return entries, nil
}
