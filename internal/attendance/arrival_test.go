package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

func TestRobustMeanArrivalExcludesOutliers(t *testing.T) {
	arrivals := []models.ClockTime{
		models.NewClockTime(9, 0),
		models.NewClockTime(9, 5),
		models.NewClockTime(9, 10),
		models.NewClockTime(23, 50),
	}

	got := RobustMeanArrival(arrivals, 120*time.Minute)

	require.NotNil(t, got.Mean)
	assert.Equal(t, "09:05", got.Mean.String())
	require.NotNil(t, got.Median)
	assert.Equal(t, 9, got.Median.Hour())
	assert.InDelta(t, 7, got.Median.Minute(), 1)
	assert.Equal(t, []models.ClockTime{models.NewClockTime(23, 50)}, got.Excluded)
}

func TestRobustMeanArrivalEmptyIsUndefined(t *testing.T) {
	got := RobustMeanArrival(nil, 0)

	assert.Nil(t, got.Mean)
	assert.Nil(t, got.Median)
	assert.Empty(t, got.Excluded)
}

func TestRobustMeanArrivalKeepsBoundary(t *testing.T) {
	arrivals := []models.ClockTime{models.NewClockTime(9, 0), models.NewClockTime(11, 0), models.NewClockTime(10, 0)}

	got := RobustMeanArrival(arrivals, 60*time.Minute)

	require.NotNil(t, got.Mean)
	assert.Equal(t, "10:00", got.Mean.String())
	assert.Empty(t, got.Excluded)
}

func TestFirstArrival(t *testing.T) {
	first, ok := FirstArrival([]time.Time{
		at(2024, time.January, 2, 10, 15),
		at(2024, time.January, 2, 8, 45),
		{},
	})
	require.True(t, ok)
	assert.Equal(t, at(2024, time.January, 2, 8, 45), first)

	_, ok = FirstArrival(nil)
	assert.False(t, ok)
}

func TestTimePeriod(t *testing.T) {
	assert.Equal(t, PeriodEarlyMorning, TimePeriod(at(2024, time.January, 2, 9, 59)))
	assert.Equal(t, PeriodMorning, TimePeriod(at(2024, time.January, 2, 12, 30)))
	assert.Equal(t, PeriodLunch, TimePeriod(at(2024, time.January, 2, 13, 0)))
	assert.Equal(t, PeriodAfternoon, TimePeriod(at(2024, time.January, 2, 17, 45)))
	assert.Equal(t, PeriodEvening, TimePeriod(at(2024, time.January, 2, 18, 0)))
}

func TestPercentage(t *testing.T) {
	assert.Nil(t, Percentage(0, 0))
	assert.Equal(t, ptr(50), Percentage(1, 2))
	assert.Equal(t, ptr(33.3), Percentage(1, 3))
	assert.Equal(t, ptr(66.7), Percentage(2, 3))
	assert.Equal(t, ptr(0), Percentage(0, 4))
}
