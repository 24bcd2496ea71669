package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

// runQueries holds the dialect specific statements of a raw SQL run store.
type runQueries struct {
	schema string
	upsert string
	get    string
	list   string
	delete string
}

// sqlRunRepository implements RunRepository on database/sql.
type sqlRunRepository struct {
	db *sql.DB
	q  runQueries
}

// EnsureSchema creates the simulation_runs table when it is missing.
func (r *sqlRunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.q.schema); err != nil {
		return fmt.Errorf("failed to create simulation_runs: %w", err)
	}
	return nil
}

// SaveRun inserts cmp, replacing any row with the same run id.
func (r *sqlRunRepository) SaveRun(ctx context.Context, cmp *model.Comparison) error {
	row, err := NewSimulationRun(cmp)
	if err != nil {
		return fmt.Errorf("failed to marshal run results: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.q.upsert,
		row.RunID, row.ScenarioName, row.HeapSize, row.Operations, row.Agree, []byte(row.Results), row.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to save run", err)
	}
	return nil
}

// GetRun retrieves a run by its id.
func (r *sqlRunRepository) GetRun(ctx context.Context, runID string) (*model.Comparison, error) {
	var row SimulationRun
	err := r.db.QueryRowContext(ctx, r.q.get, runID).Scan(
		&row.ID, &row.RunID, &row.ScenarioName, &row.HeapSize, &row.Operations, &row.Agree, &row.Results, &row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "run not found: %s", runID)
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to get run", err)
	}
	return row.ToModel()
}

// ListRuns returns the most recent runs, newest first.
func (r *sqlRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.Comparison, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list, listLimit(limit))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to list runs", err)
	}
	defer rows.Close()

	var out []*model.Comparison
	for rows.Next() {
		var row SimulationRun
		if err := rows.Scan(
			&row.ID, &row.RunID, &row.ScenarioName, &row.HeapSize, &row.Operations, &row.Agree, &row.Results, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		cmp, err := row.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to decode run %s: %w", row.RunID, err)
		}
		out = append(out, cmp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return out, nil
}

// DeleteRun removes a run.
func (r *sqlRunRepository) DeleteRun(ctx context.Context, runID string) error {
	res, err := r.db.ExecContext(ctx, r.q.delete, runID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to delete run", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.Newf(apperrors.CodeNotFound, "run not found: %s", runID)
	}
	return nil
}

// PostgresRunRepository implements RunRepository for PostgreSQL without GORM.
type PostgresRunRepository struct {
	sqlRunRepository
}

// NewPostgresRunRepository creates a new PostgresRunRepository.
func NewPostgresRunRepository(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{sqlRunRepository{db: db, q: runQueries{
		schema: `
		CREATE TABLE IF NOT EXISTS simulation_runs (
			id BIGSERIAL PRIMARY KEY,
			run_id VARCHAR(64) NOT NULL UNIQUE,
			scenario_name VARCHAR(256),
			heap_size BIGINT,
			operations INTEGER,
			agree BOOLEAN,
			results JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		upsert: `
		INSERT INTO simulation_runs (run_id, scenario_name, heap_size, operations, agree, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			scenario_name = EXCLUDED.scenario_name,
			heap_size = EXCLUDED.heap_size,
			operations = EXCLUDED.operations,
			agree = EXCLUDED.agree,
			results = EXCLUDED.results,
			created_at = EXCLUDED.created_at`,
		get: `
		SELECT id, run_id, COALESCE(scenario_name, ''), heap_size, operations, agree, results, created_at
		FROM simulation_runs
		WHERE run_id = $1`,
		list: `
		SELECT id, run_id, COALESCE(scenario_name, ''), heap_size, operations, agree, results, created_at
		FROM simulation_runs
		ORDER BY created_at DESC, id DESC
		LIMIT $1`,
		delete: `DELETE FROM simulation_runs WHERE run_id = $1`,
	}}}
}
