package models

import "time"

// AttendanceFilter selects the target group. Empty fields match any value.
type AttendanceFilter struct {
	Location        string `json:"location"`
	WorkStyle       string `json:"work_style"`
	RequireFullTime bool   `json:"require_full_time"`
}

// PresenceRecord is the presence signal for one employee on one date.
type PresenceRecord struct {
	EmployeeID int  `json:"employee_id"`
	Date       Date `json:"date"`
	Present    bool `json:"present"`
	Visits     int  `json:"visits"`
}

// DailyMetric is the attendance of the target group on a single date.
type DailyMetric struct {
	Date              Date     `json:"date"`
	Weekday           string   `json:"weekday"`
	EligibleCount     int      `json:"eligible_count"`
	PresentCount      int      `json:"present_count"`
	OtherPresentCount int      `json:"other_present_count"`
	Percentage        *float64 `json:"percentage"`
}

// WeeklyMetric aggregates core-day attendance for the week beginning WeekStart (a Monday).
type WeeklyMetric struct {
	WeekStart  Date     `json:"week_start"`
	Attended   int      `json:"attended"`
	Possible   int      `json:"possible"`
	Percentage *float64 `json:"percentage"`
}

// WeekdayMetric counts presence per weekday across the whole range.
type WeekdayMetric struct {
	Weekday     string   `json:"weekday"`
	TargetCount int      `json:"target_count"`
	OtherCount  int      `json:"other_count"`
	Possible    int      `json:"possible"`
	Percentage  *float64 `json:"percentage"`
}

// DivisionMetric aggregates target-group attendance per division.
type DivisionMetric struct {
	Division   string   `json:"division"`
	Attended   int      `json:"attended"`
	Possible   int      `json:"possible"`
	Percentage *float64 `json:"percentage"`
}

// DivisionPresenceMetric is the average daily number of employees present per
// division. Days counts the dates with at least one member present.
type DivisionPresenceMetric struct {
	Division      string   `json:"division"`
	Days          int      `json:"days"`
	TargetPresent int      `json:"target_present"`
	OtherPresent  int      `json:"other_present"`
	TargetAverage *float64 `json:"target_average"`
	OtherAverage  *float64 `json:"other_average"`
}

// TimeOfDayMetric counts first arrivals per time-of-day period.
type TimeOfDayMetric struct {
	Period      string `json:"period"`
	TargetCount int    `json:"target_count"`
	OtherCount  int    `json:"other_count"`
}

// EmployeeSummary is the per-employee view. Rate and arrival figures are only
// defined for target-group members.
type EmployeeSummary struct {
	EmployeeID       int         `json:"employee_id"`
	Name             string      `json:"name"`
	Division         string      `json:"division,omitempty"`
	IsTargetGroup    bool        `json:"is_target_group"`
	DaysAttended     int         `json:"days_attended"`
	VisitCount       int         `json:"visit_count"`
	CoreDaysAttended int         `json:"core_days_attended"`
	CoreDaysPossible int         `json:"core_days_possible"`
	AttendanceRate   *float64    `json:"attendance_rate"`
	MeanArrival      *ClockTime  `json:"mean_arrival"`
	MedianArrival    *ClockTime  `json:"median_arrival"`
	ExcludedOutliers []ClockTime `json:"excluded_outliers"`
}

// AttendanceReport bundles every metric view computed for one range and filter.
type AttendanceReport struct {
	Range            DateRange                `json:"range"`
	Filter           AttendanceFilter         `json:"filter"`
	Version          string                   `json:"data_version"`
	Daily            []DailyMetric            `json:"daily"`
	DailyCore        []DailyMetric            `json:"daily_core"`
	Weekly           []WeeklyMetric           `json:"weekly"`
	Weekdays         []WeekdayMetric          `json:"weekdays"`
	Divisions        []DivisionMetric         `json:"divisions"`
	DivisionsCore    []DivisionMetric         `json:"divisions_core"`
	DivisionPresence []DivisionPresenceMetric `json:"division_presence"`
	TimeOfDay        []TimeOfDayMetric        `json:"time_of_day"`
	Employees        []EmployeeSummary        `json:"employees"`
	Audit            RunAudit                 `json:"audit"`
	GeneratedAt      time.Time                `json:"generated_at"`
}
