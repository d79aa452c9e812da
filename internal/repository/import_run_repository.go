package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// ImportRunRepository keeps the parse outcome of the latest import per source.
type ImportRunRepository struct {
	db *sqlx.DB
}

// NewImportRunRepository constructs an ImportRunRepository.
func NewImportRunRepository(db *sqlx.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

// Record stores run, replacing the previous run of the same source.
func (r *ImportRunRepository) Record(ctx context.Context, run models.ImportRun) error {
	query := r.db.Rebind(`INSERT INTO import_runs (source, files, rows_read, accepted, malformed_date, identifier_type_mismatch, unresolvable_identity, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source) DO UPDATE SET
			files = excluded.files,
			rows_read = excluded.rows_read,
			accepted = excluded.accepted,
			malformed_date = excluded.malformed_date,
			identifier_type_mismatch = excluded.identifier_type_mismatch,
			unresolvable_identity = excluded.unresolvable_identity,
			imported_at = excluded.imported_at`)
	if _, err := r.db.ExecContext(ctx, query,
		run.Source, run.Files, run.Rows, run.Accepted,
		run.MalformedDates, run.IdentifierMismatches, run.UnresolvableIdentities, run.ImportedAt,
	); err != nil {
		return fmt.Errorf("record %s import: %w", run.Source, err)
	}
	return nil
}

// List returns the latest run of every source ordered by source.
func (r *ImportRunRepository) List(ctx context.Context) ([]models.ImportRun, error) {
	const query = `SELECT source, files, rows_read, accepted, malformed_date, identifier_type_mismatch, unresolvable_identity, imported_at
		FROM import_runs ORDER BY source`
	runs := make([]models.ImportRun, 0)
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return runs, nil
}
