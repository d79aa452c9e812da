package models

import "sort"

// ErrorKind names a skip-and-count failure class.
type ErrorKind string

const (
	ErrorUnresolvableIdentity   ErrorKind = "unresolvable_identity"
	ErrorMissingOptionalField   ErrorKind = "missing_optional_field"
	ErrorUndefinedDenominator   ErrorKind = "undefined_denominator"
	ErrorMalformedDate          ErrorKind = "malformed_date"
	ErrorIdentifierTypeMismatch ErrorKind = "identifier_type_mismatch"
)

// ErrorKinds lists every kind in reporting order.
var ErrorKinds = []ErrorKind{
	ErrorUnresolvableIdentity,
	ErrorMissingOptionalField,
	ErrorUndefinedDenominator,
	ErrorMalformedDate,
	ErrorIdentifierTypeMismatch,
}

// RunAudit surfaces the skip-and-count totals of a dataset load and computation.
type RunAudit struct {
	Counts               map[ErrorKind]int `json:"counts"`
	ScansTotal           int               `json:"scans_total"`
	ScansResolved        int               `json:"scans_resolved"`
	UnknownEmployeeScans int               `json:"unknown_employee_scans"`
	ResolutionRate       *float64          `json:"resolution_rate"`
	Degraded             bool              `json:"degraded"`
	DegradedReasons      []string          `json:"degraded_reasons,omitempty"`
}

// MarkDegraded flags the run as degraded and records reason once. Reasons stay
// sorted.
func (a *RunAudit) MarkDegraded(reason string) {
	a.Degraded = true
	i := sort.SearchStrings(a.DegradedReasons, reason)
	if i < len(a.DegradedReasons) && a.DegradedReasons[i] == reason {
		return
	}
	a.DegradedReasons = append(a.DegradedReasons, "")
	copy(a.DegradedReasons[i+1:], a.DegradedReasons[i:])
	a.DegradedReasons[i] = reason
}

// Add increments the counter for kind by n.
func (a *RunAudit) Add(kind ErrorKind, n int) {
	if n == 0 {
		return
	}
	if a.Counts == nil {
		a.Counts = make(map[ErrorKind]int, len(ErrorKinds))
	}
	a.Counts[kind] += n
}

// Count returns the counter for kind.
func (a RunAudit) Count(kind ErrorKind) int {
	return a.Counts[kind]
}

// AddCounts folds another set of counters into a.
func (a *RunAudit) AddCounts(counts map[ErrorKind]int) {
	for kind, n := range counts {
		a.Add(kind, n)
	}
}

// Clone returns a deep copy.
func (a RunAudit) Clone() RunAudit {
	out := a
	out.Counts = nil
	out.AddCounts(a.Counts)
	if a.DegradedReasons != nil {
		out.DegradedReasons = append([]string(nil), a.DegradedReasons...)
	}
	if a.ResolutionRate != nil {
		rate := *a.ResolutionRate
		out.ResolutionRate = &rate
	}
	return out
}
