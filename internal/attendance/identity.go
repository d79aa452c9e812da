package attendance

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

var leadingNumber = regexp.MustCompile(`^\s*(\d+)\b`)

// ResolutionSource records which rule resolved an identifier.
type ResolutionSource string

const (
	SourceOverride ResolutionSource = "override"
	SourcePattern  ResolutionSource = "pattern"
)

// Resolution is the outcome of resolving one raw identifier.
type Resolution struct {
	EmployeeID int
	Source     ResolutionSource
}

// ResolutionStats counts the outcome of resolving a batch of scans.
type ResolutionStats struct {
	Total      int
	Resolved   int
	Unresolved int
	Malformed  int
}

// Rate is Resolved/Total, undefined for an empty batch.
func (s ResolutionStats) Rate() *float64 {
	if s.Total == 0 {
		return nil
	}
	rate := float64(s.Resolved) / float64(s.Total)
	return &rate
}

// Resolver maps free-text badge identifiers onto employee ids.
type Resolver struct {
	overrides map[string]int
}

// NewResolver builds a resolver over the given full-name override table.
func NewResolver(overrides map[string]int) *Resolver {
	normalized := make(map[string]int, len(overrides))
	for name, id := range overrides {
		key := overrideKey(name)
		if key == "" {
			continue
		}
		normalized[key] = id
	}
	return &Resolver{overrides: normalized}
}

// Resolve returns the canonical id for raw. Explicit overrides win over the
// leading-number rule.
func (r *Resolver) Resolve(raw string) (Resolution, bool) {
	if r != nil {
		if id, ok := r.overrides[overrideKey(raw)]; ok {
			return Resolution{EmployeeID: id, Source: SourceOverride}, true
		}
	}

	match := leadingNumber.FindStringSubmatch(raw)
	if match == nil {
		return Resolution{}, false
	}
	id, err := strconv.Atoi(match[1])
	if err != nil || id <= 0 {
		return Resolution{}, false
	}
	return Resolution{EmployeeID: id, Source: SourcePattern}, true
}

// ResolveScans resolves a batch of raw scans. Rows without a timestamp or an
// identifiable employee are dropped and counted.
func (r *Resolver) ResolveScans(rows []models.RawScan) ([]models.ScanEvent, ResolutionStats) {
	stats := ResolutionStats{}
	events := make([]models.ScanEvent, 0, len(rows))
	for _, row := range rows {
		if row.Timestamp.IsZero() {
			stats.Malformed++
			continue
		}
		stats.Total++
		res, ok := r.Resolve(row.RawIdentifier)
		if !ok {
			stats.Unresolved++
			continue
		}
		stats.Resolved++
		events = append(events, models.NewScanEvent(res.EmployeeID, row.Timestamp, row.AccessPoint))
	}
	return events, stats
}

func overrideKey(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// Normalization describes how an identifier value reached canonical form.
type Normalization int

const (
	// IDCanonical means the value was already a plain integer.
	IDCanonical Normalization = iota
	// IDCoerced means the value had to be converted, e.g. "761.0" or 761.0.
	IDCoerced
	// IDInvalid means no integer could be recovered.
	IDInvalid
)

// NormalizeID converts an employee identifier of any source representation into
// the canonical integer form.
func NormalizeID(v interface{}) (int, Normalization) {
	switch t := v.(type) {
	case int:
		return positive(t, IDCanonical)
	case int32:
		return positive(int(t), IDCanonical)
	case int64:
		return positive(int(t), IDCanonical)
	case float32:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case []byte:
		return NormalizeID(string(t))
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, IDInvalid
		}
		if id, err := strconv.Atoi(trimmed); err == nil {
			state := IDCanonical
			if trimmed != t {
				state = IDCoerced
			}
			return positive(id, state)
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return fromFloat(f)
		}
		return 0, IDInvalid
	default:
		return 0, IDInvalid
	}
}

func fromFloat(f float64) (int, Normalization) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, IDInvalid
	}
	return positive(int(f), IDCoerced)
}

func positive(id int, state Normalization) (int, Normalization) {
	if id <= 0 {
		return 0, IDInvalid
	}
	return id, state
}
