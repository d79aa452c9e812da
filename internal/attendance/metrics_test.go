package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

func scenarioA() (*Dataset, models.DateRange) {
	x := londonHybrid(10, "Employee X", day(2024, time.January, 1))
	x.Status = models.StatusInactive
	x.StatusChangeDate = day(2024, time.January, 10)

	ds := NewDataset(Input{
		Roster: []models.Employee{x},
		Scans: []models.RawScan{
			scan("10 X, Employee", at(2024, time.January, 3, 9, 0)),
			scan("10 X, Employee", at(2024, time.January, 3, 13, 0)),
			scan("10 X, Employee", at(2024, time.January, 5, 8, 30)),
		},
	}, Options{})
	return ds, models.DateRange{Start: day(2024, time.January, 1), End: day(2024, time.January, 10)}
}

func TestScenarioAJoinerLeaverWindow(t *testing.T) {
	ds, rng := scenarioA()
	calc := NewCalculator(ds, rng, targetFilter)

	daily := calc.Daily()
	require.Len(t, daily, 10)
	present := 0
	for _, m := range daily {
		assert.Equal(t, 1, m.EligibleCount, m.Date.String())
		present += m.PresentCount
	}
	assert.Equal(t, 2, present)

	p := calc.Presence()
	assert.Len(t, p.Records, 10)
	assert.Equal(t, map[int]int{10: 2}, p.DaysAttended())
	assert.Equal(t, map[int]int{10: 3}, p.Visits())

	summaries := calc.Employees()
	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.True(t, s.IsTargetGroup)
	assert.Equal(t, 2, s.DaysAttended)
	assert.Equal(t, 3, s.VisitCount)
	assert.Equal(t, 1, s.CoreDaysAttended)
	assert.Equal(t, 5, s.CoreDaysPossible)
	assert.Equal(t, ptr(20), s.AttendanceRate)
	require.NotNil(t, s.MeanArrival)
	assert.Equal(t, "09:00", s.MeanArrival.String())
}

func TestScenarioBTwoEligibleOnePresent(t *testing.T) {
	tuesday := day(2024, time.February, 6)
	ds := NewDataset(Input{
		Roster: []models.Employee{
			londonHybrid(1, "One", day(2023, time.January, 2)),
			londonHybrid(2, "Two", day(2023, time.January, 2)),
		},
		Scans: []models.RawScan{scan("1 One", at(2024, time.February, 6, 9, 15))},
	}, Options{})

	daily := NewCalculator(ds, models.DateRange{Start: tuesday, End: tuesday}, targetFilter).Daily()

	require.Len(t, daily, 1)
	assert.Equal(t, 2, daily[0].EligibleCount)
	assert.Equal(t, 1, daily[0].PresentCount)
	assert.Equal(t, ptr(50), daily[0].Percentage)
	assert.Equal(t, "Tuesday", daily[0].Weekday)
}

func TestScenarioCOverrideResolution(t *testing.T) {
	ds := NewDataset(Input{
		Roster: []models.Employee{londonHybrid(378, "Arorra, Aakash", day(2023, time.January, 2))},
		Scans:  []models.RawScan{scan("378 Arorra, Aakash", at(2024, time.February, 6, 9, 15))},
	}, Options{Overrides: map[string]int{"378 Arorra, Aakash": 378}})

	rng := models.DateRange{Start: day(2024, time.February, 6), End: day(2024, time.February, 6)}
	assert.True(t, ds.Presence(rng).IsPresent(378, day(2024, time.February, 6)))
	assert.Equal(t, 0, ds.Audit().Count(models.ErrorUnresolvableIdentity))
}

func TestScenarioDStatusDefault(t *testing.T) {
	tuesday := day(2024, time.February, 6)
	input := Input{
		Roster: []models.Employee{londonHybrid(1, "One", day(2023, time.January, 2))},
		Scans:  []models.RawScan{scan("1 One", at(2024, time.February, 6, 9, 15))},
	}
	filter := targetFilter
	filter.RequireFullTime = true
	rng := models.DateRange{Start: tuesday, End: tuesday}

	strict := NewDataset(input, Options{Status: StatusPolicy{Default: DefaultNotFullTime}})
	assert.Equal(t, 0, strict.EligibleCount(tuesday, filter))
	assert.Nil(t, NewCalculator(strict, rng, filter).Daily()[0].Percentage)

	legacy := NewDataset(input, Options{Status: StatusPolicy{Default: DefaultFullTime}})
	assert.Equal(t, 1, legacy.EligibleCount(tuesday, filter))
	assert.Equal(t, ptr(100), NewCalculator(legacy, rng, filter).Daily()[0].Percentage)
}

func TestFullTimeFilterFollowsStatusHistory(t *testing.T) {
	ds := NewDataset(Input{
		Roster: []models.Employee{londonHybrid(1, "One", day(2023, time.January, 2))},
		Scans:  []models.RawScan{scan("1 One", at(2024, time.February, 9, 9, 0))},
		StatusHistory: []models.StatusChange{
			{EmployeeID: 1, EffectiveDate: day(2023, time.January, 2), StatusLabel: "Full-Time"},
			{EmployeeID: 1, EffectiveDate: day(2024, time.February, 7), StatusLabel: "Temp"},
		},
	}, Options{})
	filter := targetFilter
	filter.RequireFullTime = true

	assert.Equal(t, 1, ds.EligibleCount(day(2024, time.February, 6), filter))
	assert.Equal(t, 0, ds.EligibleCount(day(2024, time.February, 7), filter))
	assert.Len(t, ds.Eligible(day(2024, time.February, 7)), 1)
	assert.Empty(t, ds.TargetGroup(day(2024, time.February, 7), filter))
	assert.NotContains(t, ds.Audit().DegradedReasons, models.DegradedNoStatusHistory)
}

func weekFixture() *Dataset {
	veteran := londonHybrid(1, "Veteran", day(2023, time.January, 2))
	joiner := londonHybrid(2, "Joiner", day(2024, time.February, 7))
	leaver := londonHybrid(3, "Leaver", day(2023, time.January, 2))
	leaver.Status = models.StatusInactive
	leaver.StatusChangeDate = day(2024, time.February, 6)
	remote := londonHybrid(4, "Remote", day(2023, time.January, 2))
	remote.WorkStyle = models.WorkStyleRemote
	remote.Division = "Sales"
	nodivision := londonHybrid(5, "Unassigned", day(2023, time.January, 2))
	nodivision.Division = ""

	return NewDataset(Input{
		Roster: []models.Employee{veteran, joiner, leaver, remote, nodivision},
		Scans: []models.RawScan{
			scan("1 Veteran", at(2024, time.February, 6, 9, 0)),
			scan("1 Veteran", at(2024, time.February, 8, 9, 10)),
			scan("2 Joiner", at(2024, time.February, 7, 10, 0)),
			scan("3 Leaver", at(2024, time.February, 6, 8, 0)),
			scan("4 Remote", at(2024, time.February, 7, 14, 0)),
			scan("5 Unassigned", at(2024, time.February, 12, 18, 30)),
			scan("999 Stranger", at(2024, time.February, 9, 9, 0)),
			scan("Visitor", at(2024, time.February, 9, 9, 0)),
		},
	}, Options{})
}

var weekRange = models.DateRange{Start: day(2024, time.February, 5), End: day(2024, time.February, 16)}

func TestWeeklyPossibleIsSumOfDailyEligible(t *testing.T) {
	calc := NewCalculator(weekFixture(), weekRange, targetFilter)

	weekly := calc.Weekly()

	require.Len(t, weekly, 2)
	first := weekly[0]
	assert.Equal(t, day(2024, time.February, 5), first.WeekStart)
	// Tue: veteran, leaver, unassigned. Wed and Thu: veteran, joiner, unassigned.
	assert.Equal(t, 9, first.Possible)
	assert.Equal(t, 4, first.Attended)
	assert.Equal(t, ptr(44.4), first.Percentage)

	// Nobody is employed past the latest scan date, Monday 12th.
	second := weekly[1]
	assert.Equal(t, day(2024, time.February, 12), second.WeekStart)
	assert.Equal(t, 0, second.Possible)
	assert.Nil(t, second.Percentage)
}

func departedScanFixture() (*Dataset, models.DateRange) {
	x := londonHybrid(20, "Departed", day(2024, time.January, 1))
	x.Status = models.StatusInactive
	x.StatusChangeDate = day(2024, time.January, 10)

	ds := NewDataset(Input{
		Roster: []models.Employee{x},
		Scans: []models.RawScan{
			scan("20 Departed", at(2024, time.January, 3, 9, 0)),
			scan("20 Departed", at(2024, time.January, 11, 9, 0)),
		},
	}, Options{})
	return ds, models.DateRange{Start: day(2024, time.January, 1), End: day(2024, time.January, 14)}
}

func TestWeeklyMatchesCorePresence(t *testing.T) {
	fixtures := map[string]func() (*Dataset, models.DateRange){
		"scan after departure": departedScanFixture,
		"joiner and leaver":    scenarioA,
	}

	for name, build := range fixtures {
		t.Run(name, func(t *testing.T) {
			ds, rng := build()
			calc := NewCalculator(ds, rng, targetFilter)

			weeklyTotal := 0
			for _, w := range calc.Weekly() {
				weeklyTotal += w.Attended
			}

			corePresent := 0
			for _, rec := range calc.Presence().Records {
				if rec.Present && IsCoreDay(rec.Date) {
					corePresent++
				}
			}
			assert.Equal(t, corePresent, weeklyTotal)

			coreAttended := 0
			for _, s := range calc.Employees() {
				coreAttended += s.CoreDaysAttended
			}
			assert.Equal(t, corePresent, coreAttended)
		})
	}
}

func TestScanAfterDepartureIsNotPresence(t *testing.T) {
	ds, rng := departedScanFixture()
	calc := NewCalculator(ds, rng, targetFilter)

	p := calc.Presence()
	assert.False(t, p.IsPresent(20, day(2024, time.January, 11)))
	assert.True(t, p.IsPresent(20, day(2024, time.January, 3)))
	assert.Equal(t, map[int]int{20: 1}, p.DaysAttended())
	assert.Equal(t, map[int]int{20: 2}, p.Visits())

	summaries := calc.Employees()
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].DaysAttended)
	assert.Equal(t, 2, summaries[0].VisitCount)
	assert.Equal(t, 1, summaries[0].CoreDaysAttended)

	weeklyTotal := 0
	for _, w := range calc.Weekly() {
		weeklyTotal += w.Attended
	}
	assert.Equal(t, 1, weeklyTotal)
}

func TestPresentNeverExceedsEligible(t *testing.T) {
	calc := NewCalculator(weekFixture(), weekRange, targetFilter)
	ds := weekFixture()

	for _, m := range calc.Daily() {
		assert.LessOrEqual(t, m.PresentCount, m.EligibleCount)
		assert.Equal(t, ds.EligibleCount(m.Date, targetFilter), m.EligibleCount)
	}
}

func TestDailyOtherPresentAndCoreView(t *testing.T) {
	calc := NewCalculator(weekFixture(), weekRange, targetFilter)

	daily := calc.Daily()
	require.Len(t, daily, 12)
	wednesday := daily[2]
	assert.Equal(t, day(2024, time.February, 7), wednesday.Date)
	assert.Equal(t, 1, wednesday.PresentCount)
	assert.Equal(t, 1, wednesday.OtherPresentCount)

	core := calc.DailyCore()
	require.Len(t, core, 6)
	for _, m := range core {
		assert.True(t, IsCoreDay(m.Date))
	}
}

func TestWeekdaysOrderedMondayToFriday(t *testing.T) {
	weekdays := NewCalculator(weekFixture(), weekRange, targetFilter).Weekdays()

	require.Len(t, weekdays, 5)
	names := make([]string, 0, 5)
	for _, w := range weekdays {
		names = append(names, w.Weekday)
	}
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, names)
	assert.Equal(t, 2, weekdays[1].TargetCount)
	assert.Equal(t, 1, weekdays[0].TargetCount)
	assert.Equal(t, 1, weekdays[2].OtherCount)
}

func TestDivisionsExcludeMissingDivision(t *testing.T) {
	divisions := NewCalculator(weekFixture(), weekRange, targetFilter).Divisions()

	require.Len(t, divisions, 1)
	assert.Equal(t, "Engineering", divisions[0].Division)
	assert.Equal(t, 4, divisions[0].Attended)
	require.NotNil(t, divisions[0].Percentage)
}

func TestDivisionsCoreCountsOnlyCoreDays(t *testing.T) {
	calc := NewCalculator(weekFixture(), weekRange, targetFilter)

	core := calc.DivisionsCore()
	require.Len(t, core, 1)
	// Tue: veteran, leaver. Wed and Thu: veteran, joiner.
	assert.Equal(t, "Engineering", core[0].Division)
	assert.Equal(t, 6, core[0].Possible)
	assert.Equal(t, 4, core[0].Attended)
	assert.Equal(t, ptr(66.7), core[0].Percentage)

	all := calc.Divisions()
	require.Len(t, all, 1)
	assert.Greater(t, all[0].Possible, core[0].Possible)
	assert.Equal(t, core[0].Attended, all[0].Attended)
}

func TestDivisionPresenceSplitsTargetAndOthers(t *testing.T) {
	rows := NewCalculator(weekFixture(), weekRange, targetFilter).DivisionPresence()

	require.Len(t, rows, 2)
	eng := rows[0]
	assert.Equal(t, "Engineering", eng.Division)
	// Present on the 6th (veteran, leaver), 7th (joiner) and 8th (veteran).
	assert.Equal(t, 3, eng.Days)
	assert.Equal(t, 4, eng.TargetPresent)
	assert.Equal(t, 0, eng.OtherPresent)
	assert.Equal(t, ptr(1.3), eng.TargetAverage)
	assert.Equal(t, ptr(0), eng.OtherAverage)

	sales := rows[1]
	assert.Equal(t, "Sales", sales.Division)
	assert.Equal(t, 1, sales.Days)
	assert.Equal(t, ptr(0), sales.TargetAverage)
	assert.Equal(t, ptr(1), sales.OtherAverage)
}

func TestDivisionPresenceWithoutAttendanceIsUndefined(t *testing.T) {
	ds := NewDataset(Input{
		Roster: []models.Employee{londonHybrid(1, "Absent", day(2023, time.January, 2))},
		Scans:  []models.RawScan{scan("999 Stranger", at(2024, time.February, 9, 9, 0))},
	}, Options{})

	rows := NewCalculator(ds, weekRange, targetFilter).DivisionPresence()

	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Days)
	assert.Nil(t, rows[0].TargetAverage)
	assert.Nil(t, rows[0].OtherAverage)
}

func TestEmployeesSortedTargetFirstByRate(t *testing.T) {
	summaries := NewCalculator(weekFixture(), weekRange, targetFilter).Employees()

	require.Len(t, summaries, 5)
	ids := make([]int, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.EmployeeID)
	}
	// leaver 1/1, veteran 2/3, joiner 1/2, unassigned 0/3, remote last.
	assert.Equal(t, []int{3, 1, 2, 5, 4}, ids)

	remote := summaries[4]
	assert.False(t, remote.IsTargetGroup)
	assert.Equal(t, 1, remote.DaysAttended)
	assert.Nil(t, remote.AttendanceRate)
	assert.Nil(t, remote.MeanArrival)
	assert.Empty(t, remote.ExcludedOutliers)
}

func TestTimeOfDayBuckets(t *testing.T) {
	buckets := NewCalculator(weekFixture(), weekRange, targetFilter).TimeOfDay()

	require.Len(t, buckets, 5)
	assert.Equal(t, PeriodEarlyMorning, buckets[0].Period)
	assert.Equal(t, 3, buckets[0].TargetCount)
	assert.Equal(t, 1, buckets[1].TargetCount)
	assert.Equal(t, 1, buckets[2].OtherCount)
	assert.Equal(t, 1, buckets[4].TargetCount)
}

func TestReportIsDeterministicAndAudited(t *testing.T) {
	first := NewCalculator(weekFixture(), weekRange, targetFilter).Report()
	second := NewCalculator(weekFixture(), weekRange, targetFilter).Report()

	assert.Equal(t, first, second)
	assert.Equal(t, 1, first.Audit.Count(models.ErrorUnresolvableIdentity))
	assert.Equal(t, 1, first.Audit.UnknownEmployeeScans)
	assert.True(t, first.Audit.Degraded)
	assert.Equal(t, []string{models.DegradedNoOriginalHireDate, models.DegradedNoStatusHistory}, first.Audit.DegradedReasons)
	require.NotNil(t, first.Audit.ResolutionRate)
	assert.InDelta(t, 7.0/8.0, *first.Audit.ResolutionRate, 1e-9)
}

func TestIngestCountsReachTheAudit(t *testing.T) {
	ds := NewDataset(Input{
		Roster: []models.Employee{londonHybrid(1, "One", day(2023, time.January, 2))},
		Scans:  []models.RawScan{scan("1 One", at(2024, time.February, 6, 9, 0))},
		IngestCounts: map[models.ErrorKind]int{
			models.ErrorIdentifierTypeMismatch: 2,
			models.ErrorMalformedDate:          1,
		},
	}, Options{})

	audit := ds.Audit()
	assert.Equal(t, 2, audit.Count(models.ErrorIdentifierTypeMismatch))
	assert.Equal(t, 1, audit.Count(models.ErrorMalformedDate))
}

func TestPresenceSkipsEmployeesOutsideRange(t *testing.T) {
	ds := weekFixture()
	p := ds.Presence(models.DateRange{Start: day(2022, time.January, 3), End: day(2022, time.January, 7)})

	assert.Empty(t, p.Records)
	assert.Empty(t, NewCalculator(ds, p.Range, targetFilter).Employees())
}

func TestUndefinedDenominatorsAreCounted(t *testing.T) {
	ds := weekFixture()
	empty := models.AttendanceFilter{Location: "Paris FR"}
	calc := NewCalculator(ds, weekRange, empty)

	for _, m := range calc.Daily() {
		assert.Nil(t, m.Percentage)
	}
	assert.Equal(t, 12, calc.UndefinedDenominators())
}
