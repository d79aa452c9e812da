package attendance

import (
	"time"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// Presence is the employee x date presence signal for one range. It covers only
// employees eligible on at least one date of the range.
type Presence struct {
	Range     models.DateRange
	Employees []models.Employee
	Records   []models.PresenceRecord

	days    int
	offsets map[int]int
	first   []time.Time
}

// Presence builds the presence signal for rng. A scan outside the employee's
// employment window keeps its visit count but does not make the row present.
// An invalid range yields an empty result.
func (ds *Dataset) Presence(rng models.DateRange) *Presence {
	p := &Presence{Range: rng, offsets: map[int]int{}}
	if !rng.Valid() {
		return p
	}

	p.days = rng.Days()
	p.Employees = ds.overlapping(rng)
	p.Records = make([]models.PresenceRecord, 0, len(p.Employees)*p.days)
	p.first = make([]time.Time, 0, len(p.Employees)*p.days)

	for i, e := range p.Employees {
		p.offsets[e.ID] = i * p.days
		for j := 0; j < p.days; j++ {
			d := rng.Start.AddDays(j)
			visits, first := ds.visitsOn(e.ID, d)
			p.Records = append(p.Records, models.PresenceRecord{
				EmployeeID: e.ID,
				Date:       d,
				Present:    visits > 0 && e.EmployedOn(d),
				Visits:     visits,
			})
			p.first = append(p.first, first)
		}
	}
	return p
}

// Record returns the presence record of an employee on d.
func (p *Presence) Record(employeeID int, d models.Date) (models.PresenceRecord, bool) {
	i, ok := p.position(employeeID, d)
	if !ok {
		return models.PresenceRecord{}, false
	}
	return p.Records[i], true
}

// IsPresent reports whether the employee was employed and scanned at least once on d.
func (p *Presence) IsPresent(employeeID int, d models.Date) bool {
	rec, ok := p.Record(employeeID, d)
	return ok && rec.Present
}

// FirstArrival returns the earliest scan of the employee on d.
func (p *Presence) FirstArrival(employeeID int, d models.Date) (time.Time, bool) {
	i, ok := p.position(employeeID, d)
	if !ok || !p.Records[i].Present {
		return time.Time{}, false
	}
	return p.first[i], true
}

// DaysAttended counts present dates per employee over the range.
func (p *Presence) DaysAttended() map[int]int {
	out := make(map[int]int, len(p.Employees))
	for _, rec := range p.Records {
		if _, ok := out[rec.EmployeeID]; !ok {
			out[rec.EmployeeID] = 0
		}
		if rec.Present {
			out[rec.EmployeeID]++
		}
	}
	return out
}

// Visits sums raw scan counts per employee over the range.
func (p *Presence) Visits() map[int]int {
	out := make(map[int]int, len(p.Employees))
	for _, rec := range p.Records {
		out[rec.EmployeeID] += rec.Visits
	}
	return out
}

func (p *Presence) position(employeeID int, d models.Date) (int, bool) {
	base, ok := p.offsets[employeeID]
	if !ok || !p.Range.Contains(d) {
		return 0, false
	}
	return base + p.Range.Start.DaysUntil(d), true
}
