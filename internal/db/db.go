// Package db provides PostgreSQL storage for the extraction audit log.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultListLimit = 50
	// MaxListLimit is the largest page ListRunsFiltered returns
	MaxListLimit = 500
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS extraction_runs (
	id            UUID PRIMARY KEY,
	filename      TEXT NOT NULL DEFAULT '',
	source        TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	error_kind    TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	model         TEXT NOT NULL DEFAULT '',
	text_length   INTEGER NOT NULL DEFAULT 0,
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS extraction_runs_created_at_idx ON extraction_runs (created_at DESC);
`

const runColumns = `id, filename, source, status, error_kind, error_message, model, text_length, duration_ms, created_at`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the audit table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordRun inserts an audit record. A zero ID or CreatedAt is filled in.
func (db *DB) RecordRun(ctx context.Context, run *ExtractionRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO extraction_runs (`+runColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.Filename, run.Source, run.Status, run.ErrorKind, run.ErrorMessage,
		run.Model, run.TextLength, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, returning nil when it does not exist
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*ExtractionRun, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM extraction_runs WHERE id = $1`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRunsFiltered retrieves runs with optional filters, newest first
func (db *DB) ListRunsFiltered(ctx context.Context, filters RunFilters) ([]ExtractionRun, error) {
	query, args := buildListQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []ExtractionRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// DeleteRunsBefore removes runs older than cutoff and returns how many were deleted
func (db *DB) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM extraction_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	return result.RowsAffected(), nil
}

func buildListQuery(filters RunFilters) (string, []any) {
	query := `SELECT ` + runColumns + ` FROM extraction_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}
	if filters.ErrorKind != "" {
		query += fmt.Sprintf(" AND error_kind = $%d", argNum)
		args = append(args, filters.ErrorKind)
		argNum++
	}
	if filters.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argNum)
		args = append(args, *filters.Since)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, ClampLimit(filters.Limit))

	return query, args
}

// ClampLimit applies the default and maximum page size
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func scanRun(row pgx.Row) (*ExtractionRun, error) {
	var run ExtractionRun
	err := row.Scan(&run.ID, &run.Filename, &run.Source, &run.Status, &run.ErrorKind,
		&run.ErrorMessage, &run.Model, &run.TextLength, &run.DurationMs, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
