package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// ScanFilter bounds scan queries. Nil bounds are open.
type ScanFilter struct {
	From *time.Time
	To   *time.Time
}

// ScanRepository persists raw badge reads.
type ScanRepository struct {
	db *sqlx.DB
}

// NewScanRepository constructs a ScanRepository.
func NewScanRepository(db *sqlx.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// List returns scans ordered by time.
func (r *ScanRepository) List(ctx context.Context, filter ScanFilter) ([]models.RawScan, error) {
	var b strings.Builder
	b.WriteString("SELECT raw_identifier, scanned_at, access_point FROM scan_events WHERE 1=1")
	var args []interface{}
	if filter.From != nil {
		b.WriteString(" AND scanned_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		b.WriteString(" AND scanned_at < ?")
		args = append(args, *filter.To)
	}
	b.WriteString(" ORDER BY scanned_at")

	scans := make([]models.RawScan, 0)
	if err := r.db.SelectContext(ctx, &scans, r.db.Rebind(b.String()), args...); err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return scans, nil
}

// ImportMany stores scans, silently skipping rows already present. It returns
// the number of new rows.
func (r *ScanRepository) ImportMany(ctx context.Context, scans []models.RawScan) (int, error) {
	if len(scans) == 0 {
		return 0, nil
	}

	query := r.db.Rebind(`INSERT INTO scan_events (raw_identifier, scanned_at, access_point) VALUES (?, ?, ?)
		ON CONFLICT (raw_identifier, scanned_at, access_point) DO NOTHING`)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin scan import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, s := range scans {
		res, err := tx.ExecContext(ctx, query, s.RawIdentifier, s.Timestamp, s.AccessPoint)
		if err != nil {
			return 0, fmt.Errorf("import scan %q at %s: %w", s.RawIdentifier, s.Timestamp.Format(time.RFC3339), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit scan import: %w", err)
	}
	return inserted, nil
}

// LatestScan returns the most recent scan time, or nil when no scans are stored.
func (r *ScanRepository) LatestScan(ctx context.Context) (*time.Time, error) {
	var latest []time.Time
	if err := r.db.SelectContext(ctx, &latest, `SELECT scanned_at FROM scan_events ORDER BY scanned_at DESC LIMIT 1`); err != nil {
		return nil, fmt.Errorf("latest scan: %w", err)
	}
	if len(latest) == 0 {
		return nil, nil
	}
	return &latest[0], nil
}
