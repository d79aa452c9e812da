package attendance

import (
	"sort"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// Employees summarises each employee of the presence signal. Rate and arrival
// figures are only computed for employees in the target group on at least one
// date of the range.
func (c *Calculator) Employees() []models.EmployeeSummary {
	days := c.presence.days
	out := make([]models.EmployeeSummary, 0, len(c.presence.Employees))
	for i, e := range c.presence.Employees {
		summary := models.EmployeeSummary{
			EmployeeID:       e.ID,
			Name:             e.Name,
			Division:         e.Division,
			ExcludedOutliers: []models.ClockTime{},
		}

		var arrivals []models.ClockTime
		for j := 0; j < days; j++ {
			k := i*days + j
			rec := c.presence.Records[k]
			cl := c.cells[k]
			summary.VisitCount += rec.Visits
			if rec.Present {
				summary.DaysAttended++
			}
			if cl.target {
				summary.IsTargetGroup = true
			}
			if !cl.eligible || !IsCoreDay(rec.Date) {
				continue
			}
			summary.CoreDaysPossible++
			if rec.Present {
				summary.CoreDaysAttended++
				arrivals = append(arrivals, models.ClockTimeOf(c.presence.first[k]))
			}
		}

		if summary.IsTargetGroup {
			summary.AttendanceRate = c.pct(summary.CoreDaysAttended, summary.CoreDaysPossible)
			arrival := RobustMeanArrival(arrivals, c.ds.OutlierThreshold())
			summary.MeanArrival = arrival.Mean
			summary.MedianArrival = arrival.Median
			summary.ExcludedOutliers = arrival.Excluded
		}
		out = append(out, summary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsTargetGroup != b.IsTargetGroup {
			return a.IsTargetGroup
		}
		if (a.AttendanceRate == nil) != (b.AttendanceRate == nil) {
			return a.AttendanceRate != nil
		}
		if a.AttendanceRate != nil && *a.AttendanceRate != *b.AttendanceRate {
			return *a.AttendanceRate > *b.AttendanceRate
		}
		return a.EmployeeID < b.EmployeeID
	})
	return out
}

// Report computes every view and folds the computation's own counters into the
// dataset audit.
func (c *Calculator) Report() models.AttendanceReport {
	report := models.AttendanceReport{
		Range:            c.presence.Range,
		Filter:           c.filter,
		Daily:            c.Daily(),
		DailyCore:        c.DailyCore(),
		Weekly:           c.Weekly(),
		Weekdays:         c.Weekdays(),
		Divisions:        c.Divisions(),
		DivisionsCore:    c.DivisionsCore(),
		DivisionPresence: c.DivisionPresence(),
		TimeOfDay:        c.TimeOfDay(),
		Employees:        c.Employees(),
	}
	audit := c.ds.Audit()
	audit.Add(models.ErrorUndefinedDenominator, c.undefined)
	report.Audit = audit
	return report
}
