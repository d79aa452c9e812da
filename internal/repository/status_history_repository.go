package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// StatusHistoryRepository persists employment status changes.
type StatusHistoryRepository struct {
	db *sqlx.DB
}

// NewStatusHistoryRepository constructs a StatusHistoryRepository.
func NewStatusHistoryRepository(db *sqlx.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

// List returns every status change ordered by employee and effective date.
func (r *StatusHistoryRepository) List(ctx context.Context) ([]models.StatusChange, error) {
	const query = `SELECT employee_id, effective_date, status_label FROM status_history ORDER BY employee_id, effective_date`
	changes := make([]models.StatusChange, 0)
	if err := r.db.SelectContext(ctx, &changes, query); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return changes, nil
}

// ReplaceAll swaps the stored history for the given entries in one transaction.
func (r *StatusHistoryRepository) ReplaceAll(ctx context.Context, changes []models.StatusChange) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status history replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM status_history`); err != nil {
		return fmt.Errorf("clear status history: %w", err)
	}

	query := tx.Rebind(`INSERT INTO status_history (employee_id, effective_date, status_label) VALUES (?, ?, ?)
		ON CONFLICT (employee_id, effective_date, status_label) DO NOTHING`)
	for _, c := range changes {
		if _, err := tx.ExecContext(ctx, query, c.EmployeeID, c.EffectiveDate, c.StatusLabel); err != nil {
			return fmt.Errorf("insert status change for %d: %w", c.EmployeeID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status history replace: %w", err)
	}
	return nil
}
