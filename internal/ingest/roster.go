package ingest

import (
	"strings"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// Roster column names, first match wins.
var (
	colEmployeeNumber   = []string{"Employee #", "Employee ID", "employee_number", "id"}
	colEmployeeName     = []string{"Last name, First name", "Employee Name", "name"}
	colLocation         = []string{"Location", "location"}
	colWorkStyle        = []string{"Working Status", "Work Style", "work_style"}
	colDivision         = []string{"Division", "division"}
	colHireDate         = []string{"Hire Date", "hire_date"}
	colOriginalHireDate = []string{"Original Hire Date", "original_hire_date"}
	colStatus           = []string{"Status", "Employment Status", "status"}
	colStatusChangeDate = []string{"Status Change Date", "status_change_date", "Last Day", "Resignation Date", "Employment Status: Date"}
)

// ParseRoster converts roster rows into employees. Rows without a usable
// employee number are dropped; unparsable dates leave the field unset.
func ParseRoster(t *Table) ([]models.Employee, Stats) {
	stats := Stats{}
	out := make([]models.Employee, 0, len(t.Rows))
	for _, row := range t.Rows {
		stats.Rows++
		id, ok := parseID(t.Value(row, colEmployeeNumber...), &stats)
		if !ok {
			continue
		}

		e := models.Employee{
			ID:        id,
			Name:      t.Value(row, colEmployeeName...),
			Location:  t.Value(row, colLocation...),
			WorkStyle: parseWorkStyle(t.Value(row, colWorkStyle...)),
			Division:  t.Value(row, colDivision...),
		}
		e.HireDate = rosterDate(t.Value(row, colHireDate...), &stats)
		e.OriginalHireDate = rosterDate(t.Value(row, colOriginalHireDate...), &stats)
		e.StatusChangeDate = firstDate(t, row, colStatusChangeDate, &stats)

		status, known := models.ParseEmployeeStatus(t.Value(row, colStatus...))
		if !known {
			status = models.StatusActive
			if !e.StatusChangeDate.IsZero() {
				status = models.StatusInactive
			}
		}
		e.Status = status

		out = append(out, e)
		stats.Accepted++
	}
	return out, stats
}

func rosterDate(raw string, stats *Stats) models.Date {
	d, _, malformed := ParseDate(raw)
	if malformed {
		stats.add(models.ErrorMalformedDate)
	}
	return d
}

// firstDate returns the first non-blank date among the candidate columns.
func firstDate(t *Table, row []string, names []string, stats *Stats) models.Date {
	for _, name := range names {
		if !t.Has(name) {
			continue
		}
		raw := t.Value(row, name)
		if raw == "" {
			continue
		}
		return rosterDate(raw, stats)
	}
	return models.Date{}
}

func parseWorkStyle(raw string) models.WorkStyle {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hybrid":
		return models.WorkStyleHybrid
	case "remote":
		return models.WorkStyleRemote
	case "office", "on-site", "onsite", "in office":
		return models.WorkStyleOffice
	default:
		return models.WorkStyle(strings.TrimSpace(raw))
	}
}
