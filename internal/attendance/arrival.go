package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

// ArrivalSummary is the robust arrival figure for one employee over a period.
// Mean and Median are nil when there were no arrivals.
type ArrivalSummary struct {
	Mean     *models.ClockTime
	Median   *models.ClockTime
	Excluded []models.ClockTime
}

// FirstArrival returns the earliest timestamp of one day's scans.
func FirstArrival(timestamps []time.Time) (time.Time, bool) {
	var first time.Time
	for _, ts := range timestamps {
		if ts.IsZero() {
			continue
		}
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
	}
	return first, !first.IsZero()
}

// RobustMeanArrival averages daily arrivals after dropping any arrival further
// than threshold from the median.
func RobustMeanArrival(arrivals []models.ClockTime, threshold time.Duration) ArrivalSummary {
	summary := ArrivalSummary{Excluded: []models.ClockTime{}}
	if len(arrivals) == 0 {
		return summary
	}
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}

	sorted := make([]int, len(arrivals))
	for i, a := range arrivals {
		sorted[i] = int(a)
	}
	sort.Ints(sorted)

	median := medianOf(sorted)
	medianClock := models.ClockTime(math.Round(median))
	summary.Median = &medianClock

	limit := threshold.Minutes()
	var sum float64
	var kept int
	for _, a := range arrivals {
		if math.Abs(float64(a)-median) > limit {
			summary.Excluded = append(summary.Excluded, a)
			continue
		}
		sum += float64(a)
		kept++
	}
	if kept == 0 {
		return summary
	}
	mean := models.ClockTime(math.Round(sum / float64(kept)))
	summary.Mean = &mean
	return summary
}

func medianOf(sorted []int) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// TimePeriod buckets an arrival hour.
func TimePeriod(t time.Time) string {
	switch h := t.Hour(); {
	case h <= 9:
		return PeriodEarlyMorning
	case h <= 12:
		return PeriodMorning
	case h <= 14:
		return PeriodLunch
	case h <= 17:
		return PeriodAfternoon
	default:
		return PeriodEvening
	}
}

// Arrival periods in display order.
const (
	PeriodEarlyMorning = "Early Morning"
	PeriodMorning      = "Morning"
	PeriodLunch        = "Lunch"
	PeriodAfternoon    = "Afternoon"
	PeriodEvening      = "Evening"
)

var timePeriods = []string{PeriodEarlyMorning, PeriodMorning, PeriodLunch, PeriodAfternoon, PeriodEvening}
