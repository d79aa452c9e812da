package attendance

import (
	"strings"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// IsEligible reports whether e was employed on d.
func (ds *Dataset) IsEligible(e models.Employee, d models.Date) bool {
	return e.EmployedOn(d)
}

// Matches reports whether e satisfies the classification filter on d. The
// full-time predicate is evaluated against the status in force on d.
func (ds *Dataset) Matches(e models.Employee, d models.Date, f models.AttendanceFilter) bool {
	if f.Location != "" && !sameLabel(e.Location, f.Location) {
		return false
	}
	if f.WorkStyle != "" && !sameLabel(string(e.WorkStyle), f.WorkStyle) {
		return false
	}
	if f.RequireFullTime && !ds.status.FullTimeAt(e.ID, d) {
		return false
	}
	return true
}

// InTargetGroup reports whether e is both eligible and matching on d.
func (ds *Dataset) InTargetGroup(e models.Employee, d models.Date, f models.AttendanceFilter) bool {
	return ds.IsEligible(e, d) && ds.Matches(e, d, f)
}

// Eligible returns every employee eligible on d, ordered by id.
func (ds *Dataset) Eligible(d models.Date) []models.Employee {
	out := make([]models.Employee, 0)
	for _, e := range ds.employees {
		if ds.IsEligible(e, d) {
			out = append(out, e)
		}
	}
	return out
}

// TargetGroup returns the employees eligible on d that match f, ordered by id.
func (ds *Dataset) TargetGroup(d models.Date, f models.AttendanceFilter) []models.Employee {
	out := make([]models.Employee, 0)
	for _, e := range ds.employees {
		if ds.InTargetGroup(e, d, f) {
			out = append(out, e)
		}
	}
	return out
}

// EligibleCount is the size of the target group on d, the denominator for d.
func (ds *Dataset) EligibleCount(d models.Date, f models.AttendanceFilter) int {
	n := 0
	for _, e := range ds.employees {
		if ds.InTargetGroup(e, d, f) {
			n++
		}
	}
	return n
}

// overlapping returns employees whose window intersects rng, ordered by id.
func (ds *Dataset) overlapping(rng models.DateRange) []models.Employee {
	out := make([]models.Employee, 0)
	for _, e := range ds.employees {
		w, ok := e.Window()
		if !ok {
			continue
		}
		if _, overlap := w.Intersect(rng); overlap {
			out = append(out, e)
		}
	}
	return out
}

func sameLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
