package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// SettingRepository stores world-scoped boolean settings.
type SettingRepository struct {
	db *pgxpool.Pool
}

// NewSettingRepository creates a SettingRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the value of module/key, false when unset.
func (r *SettingRepository) Get(ctx context.Context, module, key string) (bool, error) {
	var v bool
	err := r.db.QueryRow(ctx,
		`SELECT value FROM settings WHERE module = $1 AND key = $2`,
		module, key,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("querying setting: %w", err)
	}
	return v, nil
}

// Set upserts module/key.
func (r *SettingRepository) Set(ctx context.Context, module, key string, value bool) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (module, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (module, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		module, key, value,
	)
	if err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}
	return nil
}

// RunRepository stores the import run log.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts run and its records in one transaction and returns the run id.
//
// Postcondition: Returns the new run id, or an error with nothing stored.
func (r *RunRepository) Record(ctx context.Context, run world.Run) (int64, error) {
	var id int64
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO import_runs (module, started_at, finished_at, status, problems)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			run.Module, run.StartedAt, run.FinishedAt, run.Status, run.Problems,
		).Scan(&id); err != nil {
			return fmt.Errorf("inserting import run: %w", err)
		}
		if len(run.Records) == 0 {
			return nil
		}
		rows := make([][]any, 0, len(run.Records))
		for _, rec := range run.Records {
			rows = append(rows, []any{id, string(rec.Type), rec.Name, rec.DocumentID, rec.Digest})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"import_records"},
			[]string{"run_id", "type", "name", "document_id", "digest"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copying import records: %w", err)
		}
		return nil
	})
	return id, err
}

// CountRecords returns how many records a run holds.
func (r *RunRepository) CountRecords(ctx context.Context, runID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM import_records WHERE run_id = $1`, runID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting import records: %w", err)
	}
	return n, nil
}
