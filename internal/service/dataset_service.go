package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/attendance"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/ingest"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/repository"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/config"
	appErrors "github.com/rhindhaugh/Attendance-Dashboard/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context) ([]models.Employee, error)
}

type scanRepository interface {
	List(ctx context.Context, filter repository.ScanFilter) ([]models.RawScan, error)
}

type statusHistoryRepository interface {
	List(ctx context.Context) ([]models.StatusChange, error)
}

type importRunRepository interface {
	List(ctx context.Context) ([]models.ImportRun, error)
}

// DatasetSnapshot is one loaded dataset together with its version id.
type DatasetSnapshot struct {
	Dataset  *attendance.Dataset
	Version  string
	LoadedAt time.Time
}

// DatasetService loads roster, scans and status history and publishes them as
// an immutable attendance dataset. Readers never block a reload.
type DatasetService struct {
	employees employeeRepository
	scans     scanRepository
	history   statusHistoryRepository
	imports   importRunRepository
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	opts      attendance.Options

	current atomic.Pointer[DatasetSnapshot]
}

// NewDatasetService constructs a DatasetService.
func NewDatasetService(employees employeeRepository, scans scanRepository, history statusHistoryRepository, opts attendance.Options, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *DatasetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetService{
		employees: employees,
		scans:     scans,
		history:   history,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
	}
}

// WithImportRuns makes Load fold the counts of the latest imports into the
// dataset audit.
func (s *DatasetService) WithImportRuns(imports importRunRepository) *DatasetService {
	s.imports = imports
	return s
}

// DatasetOptions translates the analysis configuration into engine options.
// The overrides file, when configured, is merged under the inline table.
func DatasetOptions(cfg config.AttendanceConfig) (attendance.Options, error) {
	var fromFile map[string]int
	if strings.TrimSpace(cfg.OverridesFile) != "" {
		loaded, err := ingest.LoadOverrides(cfg.OverridesFile)
		if err != nil {
			return attendance.Options{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid identity overrides file")
		}
		fromFile = loaded
	}

	def := attendance.DefaultNotFullTime
	if cfg.StatusDefault == config.StatusDefaultFullTime {
		def = attendance.DefaultFullTime
	}

	return attendance.Options{
		Overrides: ingest.MergeOverrides(fromFile, cfg.Overrides),
		Status: attendance.StatusPolicy{
			FullTimeLabels: cfg.FullTimeLabels,
			Default:        def,
		},
		OutlierThreshold: time.Duration(cfg.OutlierThresholdMinutes) * time.Minute,
	}, nil
}

// Load reads every input, builds a new dataset and swaps it in.
func (s *DatasetService) Load(ctx context.Context) (*DatasetSnapshot, error) {
	var roster []models.Employee
	if err := s.timed("employees.list", func() (err error) {
		roster, err = s.employees.List(ctx)
		return err
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	var scans []models.RawScan
	if err := s.timed("scans.list", func() (err error) {
		scans, err = s.scans.List(ctx, repository.ScanFilter{})
		return err
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scans")
	}

	var history []models.StatusChange
	if s.history != nil {
		if err := s.timed("status_history.list", func() (err error) {
			history, err = s.history.List(ctx)
			return err
		}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status history")
		}
	}

	var ingestCounts map[models.ErrorKind]int
	if s.imports != nil {
		var runs []models.ImportRun
		if err := s.timed("import_runs.list", func() (err error) {
			runs, err = s.imports.List(ctx)
			return err
		}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import runs")
		}
		ingestCounts = make(map[models.ErrorKind]int)
		for _, run := range runs {
			for kind, n := range run.Counts() {
				ingestCounts[kind] += n
			}
		}
	}

	start := time.Now()
	ds := attendance.NewDataset(attendance.Input{
		Roster:        roster,
		Scans:         scans,
		StatusHistory: history,
		IngestCounts:  ingestCounts,
	}, s.opts)
	s.metrics.ObserveEngineRun("load", time.Since(start))

	snapshot := &DatasetSnapshot{Dataset: ds, Version: uuid.NewString(), LoadedAt: time.Now().UTC()}
	previous := s.current.Swap(snapshot)

	audit := ds.Audit()
	s.metrics.RecordDatasetLoad(audit, len(ds.Employees()))
	s.logAudit(snapshot, audit)

	if previous != nil {
		if err := s.cache.Invalidate(ctx, "attendance:"+previous.Version+":*"); err != nil {
			s.logger.Warn("invalidate attendance cache", zap.String("version", previous.Version), zap.Error(err))
		}
	}

	return snapshot, nil
}

// Current returns the published dataset.
func (s *DatasetService) Current() (*DatasetSnapshot, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, appErrors.ErrDatasetNotLoaded
	}
	return snapshot, nil
}

// Ready reports whether a dataset has been published.
func (s *DatasetService) Ready() bool {
	return s.current.Load() != nil
}

func (s *DatasetService) timed(label string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveDBQuery(label, time.Since(start))
	return err
}

func (s *DatasetService) logAudit(snapshot *DatasetSnapshot, audit models.RunAudit) {
	fields := []zap.Field{
		zap.String("version", snapshot.Version),
		zap.Int("employees", len(snapshot.Dataset.Employees())),
		zap.String("horizon", snapshot.Dataset.Horizon().String()),
		zap.Int("scans_total", audit.ScansTotal),
		zap.Int("scans_resolved", audit.ScansResolved),
		zap.Int("unknown_employee_scans", audit.UnknownEmployeeScans),
		zap.Bool("degraded", audit.Degraded),
		zap.Strings("degraded_reasons", audit.DegradedReasons),
	}
	if audit.ResolutionRate != nil {
		fields = append(fields, zap.Float64("resolution_rate", *audit.ResolutionRate))
	}
	for _, kind := range models.ErrorKinds {
		if n := audit.Count(kind); n > 0 {
			fields = append(fields, zap.Int(string(kind), n))
		}
	}
	if audit.Degraded {
		s.logger.Warn("attendance dataset loaded in degraded mode", fields...)
		return
	}
	s.logger.Info("attendance dataset loaded", fields...)
}
