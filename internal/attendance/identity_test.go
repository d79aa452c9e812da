package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

func TestResolverLeadingNumber(t *testing.T) {
	r := NewResolver(nil)

	res, ok := r.Resolve("761 Clark Hemmings, Andre")
	require.True(t, ok)
	assert.Equal(t, 761, res.EmployeeID)
	assert.Equal(t, SourcePattern, res.Source)

	_, ok = r.Resolve("Visitor Pass")
	assert.False(t, ok)

	_, ok = r.Resolve("761A Smith")
	assert.False(t, ok)
}

func TestResolverOverrideTable(t *testing.T) {
	r := NewResolver(map[string]int{
		"378 Arorra, Aakash": 378,
		"Hindhaugh, Robert":  849,
	})

	res, ok := r.Resolve("378 Arorra, Aakash")
	require.True(t, ok)
	assert.Equal(t, 378, res.EmployeeID)
	assert.Equal(t, SourceOverride, res.Source)

	res, ok = r.Resolve("  hindhaugh,   Robert ")
	require.True(t, ok)
	assert.Equal(t, 849, res.EmployeeID)
}

func TestResolveScansCountsOutcomes(t *testing.T) {
	r := NewResolver(map[string]int{"Hindhaugh, Robert": 849})
	rows := []models.RawScan{
		scan("761 Clark Hemmings, Andre", at(2024, time.January, 2, 9, 0)),
		scan("Hindhaugh, Robert", at(2024, time.January, 2, 9, 30)),
		scan("Contractor", at(2024, time.January, 2, 10, 0)),
		{RawIdentifier: "762 Nobody"},
	}

	events, stats := r.ResolveScans(rows)

	require.Len(t, events, 2)
	assert.Equal(t, 761, events[0].EmployeeID)
	assert.Equal(t, day(2024, time.January, 2), events[0].Date)
	assert.Equal(t, time.Tuesday, events[0].Weekday)
	assert.Equal(t, ResolutionStats{Total: 3, Resolved: 2, Unresolved: 1, Malformed: 1}, stats)
	require.NotNil(t, stats.Rate())
	assert.InDelta(t, 2.0/3.0, *stats.Rate(), 1e-9)
	assert.Nil(t, ResolutionStats{}.Rate())
}

func TestNormalizeID(t *testing.T) {
	cases := []struct {
		name  string
		in    interface{}
		id    int
		state Normalization
	}{
		{"int", 761, 761, IDCanonical},
		{"int64", int64(12), 12, IDCanonical},
		{"string", "761", 761, IDCanonical},
		{"padded string", " 761 ", 761, IDCoerced},
		{"float string", "761.0", 761, IDCoerced},
		{"float", 761.0, 761, IDCoerced},
		{"fractional", 761.5, 0, IDInvalid},
		{"text", "abc", 0, IDInvalid},
		{"empty", "", 0, IDInvalid},
		{"zero", 0, 0, IDInvalid},
		{"nil", nil, 0, IDInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, state := NormalizeID(tc.in)
			assert.Equal(t, tc.id, id)
			assert.Equal(t, tc.state, state)
		})
	}
}
