package attendance

import "github.com/rhindhaugh/Attendance-Dashboard/internal/models"

// BuildTimeline returns e with its derived employment window populated.
//
// The window starts at the earlier of the hire and original hire dates. It ends
// at the departure date for inactive employees and at mostRecentDataDate for
// everyone else. When the resulting window would be empty the end is left unset
// so the employee is never eligible.
func BuildTimeline(e models.Employee, mostRecentDataDate models.Date) models.Employee {
	out := e
	out.DegradedReasons = nil
	out.Degraded = false

	switch {
	case e.HireDate.IsZero():
		out.CombinedHireDate = e.OriginalHireDate
	case e.OriginalHireDate.IsZero():
		out.CombinedHireDate = e.HireDate
		out.DegradedReasons = append(out.DegradedReasons, models.DegradedNoOriginalHireDate)
	default:
		out.CombinedHireDate = models.MinDate(e.HireDate, e.OriginalHireDate)
	}

	if e.Status == models.StatusInactive {
		if e.StatusChangeDate.IsZero() {
			out.MostRecentDayWorked = mostRecentDataDate
			out.DegradedReasons = append(out.DegradedReasons, models.DegradedNoDepartureDate)
		} else {
			out.MostRecentDayWorked = e.StatusChangeDate
		}
	} else {
		out.MostRecentDayWorked = mostRecentDataDate
	}

	if !out.CombinedHireDate.IsZero() && !out.MostRecentDayWorked.IsZero() &&
		out.CombinedHireDate.After(out.MostRecentDayWorked) {
		out.MostRecentDayWorked = models.Date{}
	}

	out.Degraded = len(out.DegradedReasons) > 0
	return out
}
