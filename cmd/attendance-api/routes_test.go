package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/handler"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/repository"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/service"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/config"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/database"
)

type testServer struct {
	router   *gin.Engine
	datasets *service.DatasetService
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbCfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "api.db")}
	m, err := database.NewMigrator(dbCfg)
	require.NoError(t, err)
	_, err = database.RunMigration(m, "up")
	require.NoError(t, err)
	_, _ = m.Close()

	db, err := database.Open(dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	employees := repository.NewEmployeeRepository(db)
	scans := repository.NewScanRepository(db)
	_, err = employees.UpsertMany(ctx, []models.Employee{{
		ID: 1, Name: "Alpha, Ann", Location: "London UK", WorkStyle: models.WorkStyleHybrid,
		Division: "Product", HireDate: models.NewDate(2024, time.January, 1), Status: models.StatusActive,
	}})
	require.NoError(t, err)
	_, err = scans.ImportMany(ctx, []models.RawScan{
		{RawIdentifier: "1 Ann Alpha", Timestamp: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), AccessPoint: "Main Door"},
		{RawIdentifier: "1 Ann Alpha", Timestamp: time.Date(2024, 1, 4, 9, 30, 0, 0, time.UTC), AccessPoint: "Main Door"},
	})
	require.NoError(t, err)

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(nil, zap.NewNop()), metrics, time.Minute, zap.NewNop(), false)
	opts, err := service.DatasetOptions(config.AttendanceConfig{OutlierThresholdMinutes: 120})
	require.NoError(t, err)
	datasets := service.NewDatasetService(employees, scans, repository.NewStatusHistoryRepository(db), opts, cacheSvc, metrics, zap.NewNop())
	attendanceSvc := service.NewAttendanceService(datasets, cacheSvc, metrics, service.AttendanceDefaults{
		Filter:       models.AttendanceFilter{Location: "London UK", WorkStyle: "Hybrid"},
		LookbackDays: 7,
	}, validator.New(), zap.NewNop())

	reloads := service.NewReloadService(datasets, time.Millisecond, zap.NewNop())
	reloads.Start(context.Background())
	t.Cleanup(reloads.Stop)

	router := newRouter(routerDeps{
		Logger:     zap.NewNop(),
		Metrics:    metrics,
		Attendance: handler.NewAttendanceHandler(attendanceSvc, service.NewExportService(attendanceSvc, nil, zap.NewNop(), nil, nil), datasets).WithReloads(reloads),
		System:     handler.NewMetricsHandler(metrics, datasets),
		APIPrefix:  "/api/v1",
	})
	return testServer{router: router, datasets: datasets}
}

func (s testServer) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouterServesAttendanceOnceLoaded(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = srv.do(http.MethodGet, "/api/v1/attendance/daily")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = srv.do(http.MethodPost, "/api/v1/attendance/reload")
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = srv.do(http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/attendance/daily?start=2024-01-02&end=2024-01-04")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body struct {
		Data []models.DailyMetric   `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	require.NotNil(t, body.Data[0].Percentage)
	assert.Equal(t, 100.0, *body.Data[0].Percentage)
	assert.Equal(t, 0, body.Data[1].PresentCount)
	assert.Equal(t, false, body.Meta["cache_hit"])

	rec = srv.do(http.MethodGet, "/api/v1/attendance/export?section=weekly&format=csv&start=2024-01-01&end=2024-01-07")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Week Start,Attended,Possible,Attendance (%)"))

	rec = srv.do(http.MethodGet, "/api/v1/attendance/divisions/presence?start=2024-01-01&end=2024-01-07")
	require.Equal(t, http.StatusOK, rec.Code)
	var presence struct {
		Data []models.DivisionPresenceMetric `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &presence))
	assert.NotNil(t, presence.Data)

	rec = srv.do(http.MethodGet, "/api/v1/attendance/daily?start=0001-01-01&end=2024-01-07")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "attendance_dataset_loads_total 1")
}

func TestRouterRejectsInvertedRange(t *testing.T) {
	srv := newTestServer(t)
	_, err := srv.datasets.Load(context.Background())
	require.NoError(t, err)

	rec := srv.do(http.MethodGet, "/api/v1/attendance/report?start=2024-01-05&end=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_RANGE")
}

func TestRouterQueuesBackgroundReload(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/v1/attendance/reload?async=true")
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		rec := srv.do(http.MethodGet, "/api/v1/attendance/reload")
		return rec.Code == http.StatusOK && strings.Contains(rec.Body.String(), service.ReloadSucceeded)
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/ready").Code)
}
