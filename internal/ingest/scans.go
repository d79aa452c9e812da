package ingest

import (
	"sort"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

var (
	colScanTime        = []string{"Date/time", "timestamp", "Date Time"}
	colScanUser        = []string{"User", "raw_identifier", "Name"}
	colScanAccessPoint = []string{"Where", "access_point", "Door"}
)

// ParseScans converts access-control rows into raw scans. Rows whose timestamp
// cannot be parsed are dropped.
func ParseScans(t *Table) ([]models.RawScan, Stats) {
	stats := Stats{}
	out := make([]models.RawScan, 0, len(t.Rows))
	for _, row := range t.Rows {
		stats.Rows++
		ts, ok := ParseTimestamp(t.Value(row, colScanTime...))
		if !ok {
			stats.add(models.ErrorMalformedDate)
			continue
		}
		out = append(out, models.RawScan{
			RawIdentifier: t.Value(row, colScanUser...),
			Timestamp:     ts,
			AccessPoint:   t.Value(row, colScanAccessPoint...),
		})
		stats.Accepted++
	}
	return out, stats
}

type scanKey struct {
	raw   string
	unix  int64
	point string
}

// MergeScans combines scan batches, dropping exact duplicates, ordered by
// timestamp.
func MergeScans(batches ...[]models.RawScan) []models.RawScan {
	seen := make(map[scanKey]struct{})
	out := make([]models.RawScan, 0)
	for _, batch := range batches {
		for _, s := range batch {
			key := scanKey{raw: s.RawIdentifier, unix: s.Timestamp.UnixNano(), point: s.AccessPoint}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
