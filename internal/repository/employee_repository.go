package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

const employeeColumns = "id, name, location, work_style, division, hire_date, original_hire_date, status, status_change_date"

// EmployeeRepository persists the roster.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// List returns the whole roster ordered by employee number.
func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees ORDER BY id", employeeColumns)
	employees := make([]models.Employee, 0)
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// UpsertMany inserts or refreshes roster rows keyed by employee number.
func (r *EmployeeRepository) UpsertMany(ctx context.Context, employees []models.Employee) (int, error) {
	if len(employees) == 0 {
		return 0, nil
	}

	const query = `INSERT INTO employees (id, name, location, work_style, division, hire_date, original_hire_date, status, status_change_date)
		VALUES (:id, :name, :location, :work_style, :division, :hire_date, :original_hire_date, :status, :status_change_date)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, location = excluded.location, work_style = excluded.work_style,
		division = excluded.division, hire_date = excluded.hire_date, original_hire_date = excluded.original_hire_date,
		status = excluded.status, status_change_date = excluded.status_change_date, updated_at = CURRENT_TIMESTAMP`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin employee upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range employees {
		if _, err := tx.NamedExecContext(ctx, query, &employees[i]); err != nil {
			return 0, fmt.Errorf("upsert employee %d: %w", employees[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit employee upsert: %w", err)
	}
	return len(employees), nil
}
