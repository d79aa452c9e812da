package attendance

import (
	"sort"
	"time"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// IsCoreDay reports whether d is a Tuesday, Wednesday or Thursday.
func IsCoreDay(d models.Date) bool {
	switch d.Weekday() {
	case time.Tuesday, time.Wednesday, time.Thursday:
		return true
	default:
		return false
	}
}

var workweek = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

type cell struct {
	eligible bool
	target   bool
	present  bool
}

// Calculator derives every metric view for one range and filter. The
// target-group membership of each employee/date pair is evaluated once.
type Calculator struct {
	ds       *Dataset
	filter   models.AttendanceFilter
	presence *Presence
	cells    []cell

	undefined int
}

// NewCalculator prepares metrics for rng under filter f.
func NewCalculator(ds *Dataset, rng models.DateRange, f models.AttendanceFilter) *Calculator {
	p := ds.Presence(rng)
	c := &Calculator{ds: ds, filter: f, presence: p, cells: make([]cell, len(p.Records))}
	for i, e := range p.Employees {
		for j := 0; j < p.days; j++ {
			k := i*p.days + j
			d := p.Records[k].Date
			eligible := ds.IsEligible(e, d)
			c.cells[k] = cell{
				eligible: eligible,
				target:   eligible && ds.Matches(e, d, f),
				present:  p.Records[k].Present,
			}
		}
	}
	return c
}

// Presence exposes the presence signal the calculator was built on.
func (c *Calculator) Presence() *Presence {
	return c.presence
}

// UndefinedDenominators counts percentages reported as undefined so far.
func (c *Calculator) UndefinedDenominators() int {
	return c.undefined
}

func (c *Calculator) pct(part, whole int) *float64 {
	v := Percentage(part, whole)
	if v == nil {
		c.undefined++
	}
	return v
}

func (c *Calculator) column(j int) (eligible, present, other int) {
	days := c.presence.days
	for i := range c.presence.Employees {
		cl := c.cells[i*days+j]
		switch {
		case cl.target:
			eligible++
			if cl.present {
				present++
			}
		case cl.eligible && cl.present:
			other++
		}
	}
	return eligible, present, other
}

// Daily returns one metric per date of the range.
func (c *Calculator) Daily() []models.DailyMetric {
	return c.daily(false)
}

// DailyCore returns the daily metrics restricted to core days.
func (c *Calculator) DailyCore() []models.DailyMetric {
	return c.daily(true)
}

func (c *Calculator) daily(coreOnly bool) []models.DailyMetric {
	out := make([]models.DailyMetric, 0, c.presence.days)
	for j := 0; j < c.presence.days; j++ {
		d := c.presence.Range.Start.AddDays(j)
		if coreOnly && !IsCoreDay(d) {
			continue
		}
		eligible, present, other := c.column(j)
		out = append(out, models.DailyMetric{
			Date:              d,
			Weekday:           d.Weekday().String(),
			EligibleCount:     eligible,
			PresentCount:      present,
			OtherPresentCount: other,
			Percentage:        c.pct(present, eligible),
		})
	}
	return out
}

// Weekly aggregates core days per week. The possible employee-days of a week is
// the sum of each core day's own eligible count.
func (c *Calculator) Weekly() []models.WeeklyMetric {
	byWeek := make(map[models.Date]*models.WeeklyMetric)
	order := make([]models.Date, 0)
	for j := 0; j < c.presence.days; j++ {
		d := c.presence.Range.Start.AddDays(j)
		if !IsCoreDay(d) {
			continue
		}
		week := d.WeekStart()
		m, ok := byWeek[week]
		if !ok {
			m = &models.WeeklyMetric{WeekStart: week}
			byWeek[week] = m
			order = append(order, week)
		}
		eligible, present, _ := c.column(j)
		m.Attended += present
		m.Possible += eligible
	}

	out := make([]models.WeeklyMetric, 0, len(order))
	for _, week := range order {
		m := *byWeek[week]
		m.Percentage = c.pct(m.Attended, m.Possible)
		out = append(out, m)
	}
	return out
}

// Weekdays breaks presence down by weekday, Monday to Friday.
func (c *Calculator) Weekdays() []models.WeekdayMetric {
	totals := make(map[time.Weekday]*models.WeekdayMetric, len(workweek))
	for _, wd := range workweek {
		totals[wd] = &models.WeekdayMetric{Weekday: wd.String()}
	}
	for j := 0; j < c.presence.days; j++ {
		d := c.presence.Range.Start.AddDays(j)
		m, ok := totals[d.Weekday()]
		if !ok {
			continue
		}
		eligible, present, other := c.column(j)
		m.TargetCount += present
		m.OtherCount += other
		m.Possible += eligible
	}

	out := make([]models.WeekdayMetric, 0, len(workweek))
	for _, wd := range workweek {
		m := *totals[wd]
		m.Percentage = c.pct(m.TargetCount, m.Possible)
		out = append(out, m)
	}
	return out
}

// Divisions aggregates target-group attendance per division over the range.
// Employees without a division are left out.
func (c *Calculator) Divisions() []models.DivisionMetric {
	return c.divisions(false)
}

// DivisionsCore is Divisions restricted to core days.
func (c *Calculator) DivisionsCore() []models.DivisionMetric {
	return c.divisions(true)
}

func (c *Calculator) divisions(coreOnly bool) []models.DivisionMetric {
	days := c.presence.days
	totals := make(map[string]*models.DivisionMetric)
	for i, e := range c.presence.Employees {
		if e.Division == "" {
			continue
		}
		for j := 0; j < days; j++ {
			cl := c.cells[i*days+j]
			if !cl.target {
				continue
			}
			if coreOnly && !IsCoreDay(c.presence.Range.Start.AddDays(j)) {
				continue
			}
			m, ok := totals[e.Division]
			if !ok {
				m = &models.DivisionMetric{Division: e.Division}
				totals[e.Division] = m
			}
			m.Possible++
			if cl.present {
				m.Attended++
			}
		}
	}

	out := make([]models.DivisionMetric, 0, len(totals))
	for _, m := range totals {
		row := *m
		row.Percentage = c.pct(row.Attended, row.Possible)
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Division < out[j].Division })
	return out
}

// DivisionPresence reports the average daily head count per division, split
// into target-group members and other eligible employees. The average is taken
// over the dates on which at least one member of the division was present.
func (c *Calculator) DivisionPresence() []models.DivisionPresenceMetric {
	days := c.presence.days
	rows := make(map[string]*models.DivisionPresenceMetric)
	seen := make(map[string][]bool)
	for i, e := range c.presence.Employees {
		if e.Division == "" {
			continue
		}
		m, ok := rows[e.Division]
		for j := 0; j < days; j++ {
			cl := c.cells[i*days+j]
			if !cl.eligible {
				continue
			}
			if !ok {
				m = &models.DivisionPresenceMetric{Division: e.Division}
				rows[e.Division] = m
				seen[e.Division] = make([]bool, days)
				ok = true
			}
			if !cl.present {
				continue
			}
			if cl.target {
				m.TargetPresent++
			} else {
				m.OtherPresent++
			}
			if !seen[e.Division][j] {
				seen[e.Division][j] = true
				m.Days++
			}
		}
	}

	out := make([]models.DivisionPresenceMetric, 0, len(rows))
	for _, m := range rows {
		row := *m
		row.TargetAverage = Average(row.TargetPresent, row.Days)
		row.OtherAverage = Average(row.OtherPresent, row.Days)
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Division < out[j].Division })
	return out
}

// TimeOfDay buckets every first arrival of eligible employees by period.
func (c *Calculator) TimeOfDay() []models.TimeOfDayMetric {
	counts := make(map[string]*models.TimeOfDayMetric, len(timePeriods))
	for _, period := range timePeriods {
		counts[period] = &models.TimeOfDayMetric{Period: period}
	}
	days := c.presence.days
	for i := range c.presence.Employees {
		for j := 0; j < days; j++ {
			k := i*days + j
			cl := c.cells[k]
			if !cl.present || !cl.eligible {
				continue
			}
			m := counts[TimePeriod(c.presence.first[k])]
			if cl.target {
				m.TargetCount++
			} else {
				m.OtherCount++
			}
		}
	}

	out := make([]models.TimeOfDayMetric, 0, len(timePeriods))
	for _, period := range timePeriods {
		out = append(out, *counts[period])
	}
	return out
}
