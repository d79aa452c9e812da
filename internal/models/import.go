package models

import "time"

// Import sources recorded in import_runs.
const (
	ImportSourceRoster        = "roster"
	ImportSourceScans         = "scans"
	ImportSourceStatusHistory = "status_history"
)

// ImportRun is the ingest-time outcome of the latest import of one source.
// Counts cover rows the parser skipped or coerced before anything reached the
// database.
type ImportRun struct {
	Source                 string    `db:"source" json:"source"`
	Files                  string    `db:"files" json:"files"`
	Rows                   int       `db:"rows_read" json:"rows"`
	Accepted               int       `db:"accepted" json:"accepted"`
	MalformedDates         int       `db:"malformed_date" json:"malformed_date"`
	IdentifierMismatches   int       `db:"identifier_type_mismatch" json:"identifier_type_mismatch"`
	UnresolvableIdentities int       `db:"unresolvable_identity" json:"unresolvable_identity"`
	ImportedAt             time.Time `db:"imported_at" json:"imported_at"`
}

// Counts returns the run's skip-and-count totals keyed by kind.
func (r ImportRun) Counts() map[ErrorKind]int {
	return map[ErrorKind]int{
		ErrorMalformedDate:          r.MalformedDates,
		ErrorIdentifierTypeMismatch: r.IdentifierMismatches,
		ErrorUnresolvableIdentity:   r.UnresolvableIdentities,
	}
}
