package ingest

import (
	"strings"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/attendance"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

var (
	colHistoryEmployee = []string{"employee_name_or_id", "Employee", "Employee ID", "Employee #", "Employee Name", "Last name, First name"}
	colHistoryDate     = []string{"effective_date", "Effective Date", "Date", "Employment Status: Date"}
	colHistoryLabel    = []string{"status_label", "Employment Status", "Status"}
)

// ParseStatusHistory converts status history rows. Employees are referenced
// either by number or by the roster name; rows matching neither are dropped.
func ParseStatusHistory(t *Table, roster []models.Employee) ([]models.StatusChange, Stats) {
	byName := make(map[string]int, len(roster))
	for _, e := range roster {
		if key := nameKey(e.Name); key != "" {
			byName[key] = e.ID
		}
	}

	stats := Stats{}
	out := make([]models.StatusChange, 0, len(t.Rows))
	for _, row := range t.Rows {
		stats.Rows++
		ref := t.Value(row, colHistoryEmployee...)
		id, ok := historyEmployee(ref, byName, &stats)
		if !ok {
			continue
		}

		d, present, malformed := ParseDate(t.Value(row, colHistoryDate...))
		if !present || malformed {
			stats.add(models.ErrorMalformedDate)
			continue
		}

		out = append(out, models.StatusChange{
			EmployeeID:    id,
			EffectiveDate: d,
			StatusLabel:   t.Value(row, colHistoryLabel...),
		})
		stats.Accepted++
	}
	return out, stats
}

func historyEmployee(ref string, byName map[string]int, stats *Stats) (int, bool) {
	if id, state := attendance.NormalizeID(ref); state != attendance.IDInvalid {
		if state == attendance.IDCoerced {
			stats.add(models.ErrorIdentifierTypeMismatch)
		}
		return id, true
	}
	if id, ok := byName[nameKey(ref)]; ok {
		return id, true
	}
	stats.add(models.ErrorUnresolvableIdentity)
	return 0, false
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
