package models

import "time"

// RawScan is one badge read as received from the access-control export.
type RawScan struct {
	RawIdentifier string    `db:"raw_identifier" json:"raw_identifier"`
	Timestamp     time.Time `db:"scanned_at" json:"timestamp"`
	AccessPoint   string    `db:"access_point" json:"access_point"`
}

// ScanEvent is a badge read whose identifier has been resolved.
type ScanEvent struct {
	EmployeeID  int          `json:"employee_id"`
	Timestamp   time.Time    `json:"timestamp"`
	AccessPoint string       `json:"access_point"`
	Date        Date         `json:"date"`
	Weekday     time.Weekday `json:"weekday"`
}

// NewScanEvent derives the calendar fields from the timestamp.
func NewScanEvent(employeeID int, ts time.Time, accessPoint string) ScanEvent {
	d := DateOf(ts)
	return ScanEvent{
		EmployeeID:  employeeID,
		Timestamp:   ts,
		AccessPoint: accessPoint,
		Date:        d,
		Weekday:     d.Weekday(),
	}
}
