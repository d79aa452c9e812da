package models

// StatusChange is one entry of an employee's status history.
type StatusChange struct {
	EmployeeID    int    `db:"employee_id" json:"employee_id"`
	EffectiveDate Date   `db:"effective_date" json:"effective_date"`
	StatusLabel   string `db:"status_label" json:"status_label"`
}
