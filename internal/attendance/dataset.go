package attendance

import (
	"sort"
	"time"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// DefaultOutlierThreshold is the maximum distance from the median arrival
// before an arrival is excluded from the mean.
const DefaultOutlierThreshold = 120 * time.Minute

// Options configures how a dataset is interpreted.
type Options struct {
	Overrides        map[string]int
	Status           StatusPolicy
	OutlierThreshold time.Duration
}

// Input is everything loaded from the outside world for one run. A nil
// StatusHistory means no history collaborator was available. IngestCounts are
// the rows dropped or coerced when the inputs were imported; they are added to
// the audit as they are.
type Input struct {
	Roster        []models.Employee
	Scans         []models.RawScan
	StatusHistory []models.StatusChange
	IngestCounts  map[models.ErrorKind]int
}

type dayScans struct {
	visits int
	first  time.Time
}

// Dataset is the immutable per-run context shared by every computation. It is
// safe for concurrent use once constructed.
type Dataset struct {
	employees []models.Employee
	index     map[int]int
	scans     map[int]map[models.Date]*dayScans
	status    *StatusIndex
	horizon   models.Date
	threshold time.Duration
	audit     models.RunAudit
}

// NewDataset resolves scans, derives employee timelines and builds the lookup
// indexes. Bad records are skipped and counted in Audit.
func NewDataset(in Input, opts Options) *Dataset {
	threshold := opts.OutlierThreshold
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}

	ds := &Dataset{
		index:     make(map[int]int, len(in.Roster)),
		scans:     make(map[int]map[models.Date]*dayScans),
		status:    NewStatusIndex(in.StatusHistory, opts.Status),
		threshold: threshold,
	}

	for _, raw := range in.Scans {
		if raw.Timestamp.IsZero() {
			continue
		}
		if d := models.DateOf(raw.Timestamp); d.After(ds.horizon) {
			ds.horizon = d
		}
	}

	ds.audit.AddCounts(in.IngestCounts)

	events, stats := NewResolver(opts.Overrides).ResolveScans(in.Scans)
	ds.audit.ScansTotal = stats.Total
	ds.audit.ScansResolved = stats.Resolved
	ds.audit.ResolutionRate = stats.Rate()
	ds.audit.Add(models.ErrorUnresolvableIdentity, stats.Unresolved)
	ds.audit.Add(models.ErrorMalformedDate, stats.Malformed)

	roster := make([]models.Employee, 0, len(in.Roster))
	seen := make(map[int]struct{}, len(in.Roster))
	for _, e := range in.Roster {
		if e.ID <= 0 {
			ds.audit.Add(models.ErrorUnresolvableIdentity, 1)
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		if e.HireDate.IsZero() && e.OriginalHireDate.IsZero() {
			ds.audit.Add(models.ErrorMalformedDate, 1)
		}
		derived := BuildTimeline(e, ds.horizon)
		ds.audit.Add(models.ErrorMissingOptionalField, len(derived.DegradedReasons))
		for _, reason := range derived.DegradedReasons {
			ds.audit.MarkDegraded(reason)
		}
		roster = append(roster, derived)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	ds.employees = roster
	for i, e := range roster {
		ds.index[e.ID] = i
	}

	if !ds.status.Supplied() {
		ds.audit.Add(models.ErrorMissingOptionalField, 1)
		ds.audit.MarkDegraded(models.DegradedNoStatusHistory)
	}

	for _, ev := range events {
		if _, ok := ds.index[ev.EmployeeID]; !ok {
			ds.audit.UnknownEmployeeScans++
			continue
		}
		byDay, ok := ds.scans[ev.EmployeeID]
		if !ok {
			byDay = make(map[models.Date]*dayScans)
			ds.scans[ev.EmployeeID] = byDay
		}
		entry, ok := byDay[ev.Date]
		if !ok {
			byDay[ev.Date] = &dayScans{visits: 1, first: ev.Timestamp}
			continue
		}
		entry.visits++
		if ev.Timestamp.Before(entry.first) {
			entry.first = ev.Timestamp
		}
	}

	return ds
}

// Employees returns the roster with derived timelines, ordered by id.
func (ds *Dataset) Employees() []models.Employee {
	out := make([]models.Employee, len(ds.employees))
	copy(out, ds.employees)
	return out
}

// Employee looks up one employee by id.
func (ds *Dataset) Employee(id int) (models.Employee, bool) {
	i, ok := ds.index[id]
	if !ok {
		return models.Employee{}, false
	}
	return ds.employees[i], true
}

// Horizon is the latest date observed across all scan events.
func (ds *Dataset) Horizon() models.Date {
	return ds.horizon
}

// Status exposes the point-in-time status index.
func (ds *Dataset) Status() *StatusIndex {
	return ds.status
}

// Audit returns the skip-and-count totals gathered while loading.
func (ds *Dataset) Audit() models.RunAudit {
	return ds.audit.Clone()
}

// OutlierThreshold is the arrival outlier cut-off applied by this dataset.
func (ds *Dataset) OutlierThreshold() time.Duration {
	return ds.threshold
}

// visitsOn returns the scan count and earliest scan for an employee on d.
func (ds *Dataset) visitsOn(id int, d models.Date) (int, time.Time) {
	entry, ok := ds.scans[id][d]
	if !ok {
		return 0, time.Time{}
	}
	return entry.visits, entry.first
}
