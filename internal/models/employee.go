package models

import "strings"

// WorkStyle classifies an employee's work arrangement.
type WorkStyle string

const (
	WorkStyleHybrid WorkStyle = "Hybrid"
	WorkStyleRemote WorkStyle = "Remote"
	WorkStyleOffice WorkStyle = "Office"
)

// EmployeeStatus is the roster lifecycle status.
type EmployeeStatus string

const (
	StatusActive   EmployeeStatus = "Active"
	StatusInactive EmployeeStatus = "Inactive"
	StatusUpcoming EmployeeStatus = "Upcoming"
)

// ParseEmployeeStatus maps roster spellings onto the canonical statuses.
func ParseEmployeeStatus(raw string) (EmployeeStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return StatusActive, true
	case "inactive", "terminated", "leaver":
		return StatusInactive, true
	case "upcoming", "pending", "future":
		return StatusUpcoming, true
	default:
		return "", false
	}
}

// Degraded-mode reasons recorded on derived employee timelines and on the run audit.
const (
	DegradedNoOriginalHireDate = "no_original_hire_date"
	DegradedNoStatusHistory    = "no_status_history"
	DegradedNoDepartureDate    = "no_departure_date"
)

// Employee is a roster entry plus the timeline fields derived once per dataset load.
type Employee struct {
	ID               int            `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Location         string         `db:"location" json:"location"`
	WorkStyle        WorkStyle      `db:"work_style" json:"work_style"`
	Division         string         `db:"division" json:"division"`
	HireDate         Date           `db:"hire_date" json:"hire_date"`
	OriginalHireDate Date           `db:"original_hire_date" json:"original_hire_date"`
	Status           EmployeeStatus `db:"status" json:"status"`
	StatusChangeDate Date           `db:"status_change_date" json:"status_change_date"`

	CombinedHireDate    Date     `db:"-" json:"combined_hire_date"`
	MostRecentDayWorked Date     `db:"-" json:"most_recent_day_worked"`
	Degraded            bool     `db:"-" json:"degraded,omitempty"`
	DegradedReasons     []string `db:"-" json:"degraded_reasons,omitempty"`
}

// Window returns the closed employment interval and whether it is defined.
func (e Employee) Window() (DateRange, bool) {
	if e.CombinedHireDate.IsZero() || e.MostRecentDayWorked.IsZero() {
		return DateRange{}, false
	}
	w := DateRange{Start: e.CombinedHireDate, End: e.MostRecentDayWorked}
	return w, w.Valid()
}

// EmployedOn reports whether d lies inside the employee's window.
func (e Employee) EmployedOn(d Date) bool {
	w, ok := e.Window()
	return ok && w.Contains(d)
}
