package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
)

func scrape(m *MetricsService) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestMetricsServiceRecordsDatasetLoad(t *testing.T) {
	m := NewMetricsService()
	rate := 0.75
	m.RecordDatasetLoad(models.RunAudit{
		ResolutionRate: &rate,
		Counts: map[models.ErrorKind]int{
			models.ErrorUnresolvableIdentity: 4,
			models.ErrorMalformedDate:        0,
		},
	}, 12)
	m.RecordAuditCounts(map[models.ErrorKind]int{models.ErrorUndefinedDenominator: 2})
	m.ObserveEngineRun("load", 20*time.Millisecond)
	m.ObserveDBQuery("scans.list", 10*time.Millisecond)

	body := scrape(m)
	assert.Contains(t, body, "attendance_dataset_loads_total 1")
	assert.Contains(t, body, "attendance_roster_employees 12")
	assert.Contains(t, body, "attendance_identity_resolution_ratio 0.75")
	assert.Contains(t, body, `attendance_audit_errors_total{kind="unresolvable_identity"} 4`)
	assert.Contains(t, body, `attendance_audit_errors_total{kind="undefined_denominator"} 2`)
	assert.NotContains(t, body, `kind="malformed_date"`)
	assert.Contains(t, body, `attendance_engine_duration_seconds_count{stage="load"} 1`)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.DatasetLoads)
	assert.Equal(t, uint64(1), snap.EngineRuns)
	assert.InDelta(t, 20.0, snap.AverageEngineRunMs, 0.001)
	assert.InDelta(t, 10.0, snap.AverageDBQueryDurationMs, 0.001)
}

func TestMetricsServiceNilIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveEngineRun("report", time.Millisecond)
	m.RecordDatasetLoad(models.RunAudit{}, 0)
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
