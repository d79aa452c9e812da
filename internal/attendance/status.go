package attendance

import (
	"sort"
	"strings"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// StatusDefault is the full-time answer used when no history entry covers a date.
type StatusDefault int

const (
	// DefaultNotFullTime is the strict default.
	DefaultNotFullTime StatusDefault = iota
	// DefaultFullTime keeps the legacy assumption that unknown employees are full-time.
	DefaultFullTime
)

// StatusPolicy controls how status labels are interpreted.
type StatusPolicy struct {
	FullTimeLabels []string
	Default        StatusDefault
}

// DefaultFullTimeLabel is used when a policy lists no labels.
const DefaultFullTimeLabel = "Full-Time"

// StatusIndex answers "latest status at or before d" per employee by binary
// search over entries sorted by effective date.
type StatusIndex struct {
	entries  map[int][]models.StatusChange
	fullTime map[string]struct{}
	def      StatusDefault
}

// NewStatusIndex indexes the given history. Entries without an effective date
// are ignored. A nil or empty history yields an index that always answers with
// the policy default.
func NewStatusIndex(changes []models.StatusChange, policy StatusPolicy) *StatusIndex {
	labels := policy.FullTimeLabels
	if len(labels) == 0 {
		labels = []string{DefaultFullTimeLabel}
	}
	fullTime := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		fullTime[normalizeLabel(label)] = struct{}{}
	}

	entries := make(map[int][]models.StatusChange)
	for _, change := range changes {
		if change.EffectiveDate.IsZero() {
			continue
		}
		entries[change.EmployeeID] = append(entries[change.EmployeeID], change)
	}
	for id := range entries {
		list := entries[id]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].EffectiveDate.Before(list[j].EffectiveDate)
		})
	}

	return &StatusIndex{entries: entries, fullTime: fullTime, def: policy.Default}
}

// Supplied reports whether any history was indexed.
func (ix *StatusIndex) Supplied() bool {
	return ix != nil && len(ix.entries) > 0
}

// Has reports whether the employee has at least one history entry.
func (ix *StatusIndex) Has(employeeID int) bool {
	if ix == nil {
		return false
	}
	return len(ix.entries[employeeID]) > 0
}

// LabelAt returns the label of the entry with the greatest effective date <= d.
func (ix *StatusIndex) LabelAt(employeeID int, d models.Date) (string, bool) {
	if ix == nil {
		return "", false
	}
	list := ix.entries[employeeID]
	// first entry strictly after d
	i := sort.Search(len(list), func(i int) bool { return list[i].EffectiveDate.After(d) })
	if i == 0 {
		return "", false
	}
	return list[i-1].StatusLabel, true
}

// FullTimeAt reports whether the employee counts as full-time on d.
func (ix *StatusIndex) FullTimeAt(employeeID int, d models.Date) bool {
	label, ok := ix.LabelAt(employeeID, d)
	if !ok {
		return ix.defaultFullTime()
	}
	_, full := ix.fullTime[normalizeLabel(label)]
	return full
}

func (ix *StatusIndex) defaultFullTime() bool {
	return ix != nil && ix.def == DefaultFullTime
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
