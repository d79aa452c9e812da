package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/repository"
	appErrors "github.com/rhindhaugh/Attendance-Dashboard/pkg/errors"
)

type fakeEmployeeRepo struct {
	employees []models.Employee
	err       error
}

func (f *fakeEmployeeRepo) List(context.Context) ([]models.Employee, error) {
	return f.employees, f.err
}

type fakeScanRepo struct {
	scans []models.RawScan
	err   error
}

func (f *fakeScanRepo) List(context.Context, repository.ScanFilter) ([]models.RawScan, error) {
	return f.scans, f.err
}

type fakeHistoryRepo struct {
	changes []models.StatusChange
	err     error
}

func (f *fakeHistoryRepo) List(context.Context) ([]models.StatusChange, error) {
	return f.changes, f.err
}

type fakeImportRunRepo struct {
	runs []models.ImportRun
	err  error
}

func (f *fakeImportRunRepo) List(context.Context) ([]models.ImportRun, error) {
	return f.runs, f.err
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func at(y int, m time.Month, d, hour, minute int) time.Time {
	return time.Date(y, m, d, hour, minute, 0, 0, time.UTC)
}

func employee(id int, name, workStyle, division string) models.Employee {
	return models.Employee{
		ID:        id,
		Name:      name,
		Location:  "London UK",
		WorkStyle: models.WorkStyle(workStyle),
		Division:  division,
		HireDate:  models.NewDate(2024, time.January, 1),
		Status:    models.StatusActive,
	}
}

// Week of Mon 1 Jan 2024. Alpha is the only London hybrid employee; the
// last scan on Friday 5 Jan sets the horizon.
func fixtureRepos() (*fakeEmployeeRepo, *fakeScanRepo, *fakeHistoryRepo) {
	employees := &fakeEmployeeRepo{employees: []models.Employee{
		employee(1, "Alpha, Ann", "Hybrid", "Product"),
		employee(2, "Beta, Bob", "Remote", "Data"),
	}}
	scans := &fakeScanRepo{scans: []models.RawScan{
		{RawIdentifier: "1 Ann Alpha", Timestamp: at(2024, time.January, 2, 9, 0), AccessPoint: "Main Door"},
		{RawIdentifier: "2 Bob Beta", Timestamp: at(2024, time.January, 3, 9, 30), AccessPoint: "Main Door"},
		{RawIdentifier: "1 Ann Alpha", Timestamp: at(2024, time.January, 4, 10, 0), AccessPoint: "Main Door"},
		{RawIdentifier: "Visitor", Timestamp: at(2024, time.January, 5, 8, 0), AccessPoint: "Main Door"},
	}}
	history := &fakeHistoryRepo{}
	return employees, scans, history
}

func fixtureDefaults() AttendanceDefaults {
	return AttendanceDefaults{
		Filter:       models.AttendanceFilter{Location: "London UK", WorkStyle: "Hybrid"},
		LookbackDays: 7,
		CacheTTL:     time.Minute,
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
