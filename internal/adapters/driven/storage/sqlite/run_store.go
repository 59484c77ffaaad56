package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// RunStore returns a RunStore backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// Save inserts or replaces a run record by ID.
func (r *runStore) Save(ctx context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run record requires an ID")
	}

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, batch_id, batch_name, state, keyword_count, location_count,
			cluster_count, warning_count, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			batch_id = excluded.batch_id,
			batch_name = excluded.batch_name,
			state = excluded.state,
			keyword_count = excluded.keyword_count,
			location_count = excluded.location_count,
			cluster_count = excluded.cluster_count,
			warning_count = excluded.warning_count,
			error = excluded.error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, run.ID, run.BatchID, run.BatchName, string(run.State), run.KeywordCount,
		run.LocationCount, run.ClusterCount, run.WarningCount, run.Error,
		run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
// Returns nil and no error if the run does not exist.
func (r *runStore) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, batch_id, batch_name, state, keyword_count, location_count,
			cluster_count, warning_count, error, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, newest first. limit <= 0 means no limit.
func (r *runStore) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	query := `
		SELECT id, batch_id, batch_name, state, keyword_count, location_count,
			cluster_count, warning_count, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

// Close closes the underlying store.
func (r *runStore) Close() error {
	return r.store.Close()
}

// scanRun scans one run row using the given scan function.
func scanRun(scan func(...any) error) (*domain.RunRecord, error) {
	var run domain.RunRecord
	var state string
	var startedAt, finishedAt time.Time

	err := scan(&run.ID, &run.BatchID, &run.BatchName, &state, &run.KeywordCount,
		&run.LocationCount, &run.ClusterCount, &run.WarningCount, &run.Error,
		&startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	run.State = domain.RunState(state)
	run.StartedAt = startedAt
	run.FinishedAt = finishedAt
	return &run, nil
}
