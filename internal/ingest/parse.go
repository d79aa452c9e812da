package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/attendance"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// Day-first layouts are tried before ISO ones; access-control and HR exports
// both write dates as DD/MM/YYYY.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
	"02/01/06",
	"2 Jan 2006",
	"02 January 2006",
}

var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Stats counts what happened to the rows of one input.
type Stats struct {
	Rows     int                      `json:"rows"`
	Accepted int                      `json:"accepted"`
	Counts   map[models.ErrorKind]int `json:"counts,omitempty"`
}

func (s *Stats) add(kind models.ErrorKind) {
	if s.Counts == nil {
		s.Counts = make(map[models.ErrorKind]int)
	}
	s.Counts[kind]++
}

// Merge folds other into s.
func (s *Stats) Merge(other Stats) {
	s.Rows += other.Rows
	s.Accepted += other.Accepted
	for kind, n := range other.Counts {
		if n == 0 {
			continue
		}
		if s.Counts == nil {
			s.Counts = make(map[models.ErrorKind]int)
		}
		s.Counts[kind] += n
	}
}

// ImportRun describes s as the latest import of source.
func (s Stats) ImportRun(source string, files []string, at time.Time) models.ImportRun {
	return models.ImportRun{
		Source:                 source,
		Files:                  strings.Join(files, ","),
		Rows:                   s.Rows,
		Accepted:               s.Accepted,
		MalformedDates:         s.Counts[models.ErrorMalformedDate],
		IdentifierMismatches:   s.Counts[models.ErrorIdentifierTypeMismatch],
		UnresolvableIdentities: s.Counts[models.ErrorUnresolvableIdentity],
		ImportedAt:             at.UTC(),
	}
}

// ParseDate parses a calendar day. present is false for blank cells and
// malformed is true when a non-blank value could not be parsed.
func ParseDate(raw string) (d models.Date, present bool, malformed bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nat") || strings.EqualFold(raw, "nan") {
		return models.Date{}, false, false
	}
	if len(raw) > 10 {
		if ts, ok := ParseTimestamp(raw); ok {
			return models.DateOf(ts), true, false
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.DateOf(t), true, false
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return models.DateOf(t), true, false
		}
	}
	return models.Date{}, true, true
}

// ParseTimestamp parses a badge timestamp, day first.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseID normalises an identifier cell and records type mismatches.
func parseID(raw string, stats *Stats) (int, bool) {
	id, state := attendance.NormalizeID(raw)
	switch state {
	case attendance.IDCanonical:
		return id, true
	case attendance.IDCoerced:
		stats.add(models.ErrorIdentifierTypeMismatch)
		return id, true
	default:
		stats.add(models.ErrorUnresolvableIdentity)
		return 0, false
	}
}
