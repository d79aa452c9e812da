package attendance

import (
	"time"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

func day(y int, m time.Month, d int) models.Date {
	return models.NewDate(y, m, d)
}

func at(y int, m time.Month, d, hour, minute int) time.Time {
	return time.Date(y, m, d, hour, minute, 0, 0, time.UTC)
}

func scan(raw string, ts time.Time) models.RawScan {
	return models.RawScan{RawIdentifier: raw, Timestamp: ts, AccessPoint: "Main Entrance"}
}

func londonHybrid(id int, name string, hired models.Date) models.Employee {
	return models.Employee{
		ID:        id,
		Name:      name,
		Location:  "London UK",
		WorkStyle: models.WorkStyleHybrid,
		Division:  "Engineering",
		HireDate:  hired,
		Status:    models.StatusActive,
	}
}

var targetFilter = models.AttendanceFilter{Location: "London UK", WorkStyle: "Hybrid"}

func ptr(f float64) *float64 { return &f }
