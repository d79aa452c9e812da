package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/attendance"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/config"
	appErrors "github.com/rhindhaugh/Attendance-Dashboard/pkg/errors"
)

type datasetSource interface {
	Current() (*DatasetSnapshot, error)
}

// AttendanceDefaults fill in whatever a request leaves out.
type AttendanceDefaults struct {
	Filter       models.AttendanceFilter
	LookbackDays int
	MaxRangeDays int
	CacheTTL     time.Duration
}

// AttendanceDefaultsFromConfig builds request defaults from configuration.
func AttendanceDefaultsFromConfig(cfg *config.Config) AttendanceDefaults {
	return AttendanceDefaults{
		Filter: models.AttendanceFilter{
			Location:        cfg.Attendance.TargetLocation,
			WorkStyle:       cfg.Attendance.TargetWorkStyle,
			RequireFullTime: cfg.Attendance.RequireFullTime,
		},
		LookbackDays: cfg.Attendance.DefaultLookbackDays,
		MaxRangeDays: cfg.Attendance.MaxRangeDays,
		CacheTTL:     cfg.Cache.TTL,
	}
}

// ReportRequest describes the range and filter of an attendance query. Nil
// filter fields fall back to the configured defaults; an empty string clears
// that filter.
type ReportRequest struct {
	Start           string  `form:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End             string  `form:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
	Location        *string `form:"location" json:"location"`
	WorkStyle       *string `form:"work_style" json:"work_style" validate:"omitempty,work_style"`
	RequireFullTime *bool   `form:"require_full_time" json:"require_full_time"`
}

// DatasetInfo describes the currently published dataset.
type DatasetInfo struct {
	Version   string          `json:"data_version"`
	LoadedAt  time.Time       `json:"loaded_at"`
	Horizon   models.Date     `json:"horizon"`
	Employees int             `json:"employees"`
	Audit     models.RunAudit `json:"audit"`
}

// AttendanceService answers attendance queries against the current dataset.
type AttendanceService struct {
	datasets  datasetSource
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	defaults  AttendanceDefaults
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(datasets datasetSource, cache *CacheService, metrics *MetricsService, defaults AttendanceDefaults, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.LookbackDays <= 0 {
		defaults.LookbackDays = 365
	}
	if defaults.MaxRangeDays <= 0 {
		defaults.MaxRangeDays = config.DefaultMaxRangeDays
	}
	if defaults.MaxRangeDays < defaults.LookbackDays {
		defaults.MaxRangeDays = defaults.LookbackDays
	}
	svc := &AttendanceService{
		datasets:  datasets,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		defaults:  defaults,
		now:       time.Now,
	}
	svc.validator.RegisterValidation("work_style", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
		case "", "hybrid", "remote", "office":
			return true
		default:
			return false
		}
	})
	svc.validator.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(ReportRequest)
		if req.Start == "" || req.End == "" {
			return
		}
		start, errStart := models.ParseDate(req.Start)
		end, errEnd := models.ParseDate(req.End)
		if errStart == nil && errEnd == nil && start.After(end) {
			sl.ReportError(req.End, "End", "end", "date_range", "")
		}
	}, ReportRequest{})
	return svc
}

// Report computes every attendance view for the request. The boolean reports
// whether the result came from cache.
func (s *AttendanceService) Report(ctx context.Context, req ReportRequest) (*models.AttendanceReport, bool, error) {
	snapshot, err := s.datasets.Current()
	if err != nil {
		return nil, false, err
	}
	rng, filter, err := s.resolve(req, snapshot.Dataset.Horizon())
	if err != nil {
		return nil, false, err
	}

	key := reportCacheKey(snapshot.Version, rng, filter)
	report, hit, err := Remember(ctx, s.cache, key, s.defaults.CacheTTL, func() (models.AttendanceReport, error) {
		start := time.Now()
		calc := attendance.NewCalculator(snapshot.Dataset, rng, filter)
		report := calc.Report()
		s.metrics.ObserveEngineRun("report", time.Since(start))
		s.metrics.RecordAuditCounts(map[models.ErrorKind]int{models.ErrorUndefinedDenominator: calc.UndefinedDenominators()})

		report.Version = snapshot.Version
		report.GeneratedAt = s.now().UTC()

		s.logger.Debug("attendance report computed",
			zap.String("version", snapshot.Version),
			zap.String("start", rng.Start.String()),
			zap.String("end", rng.End.String()),
			zap.Int("employees", len(report.Employees)),
			zap.Duration("duration", time.Since(start)),
		)
		return report, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &report, hit, nil
}

// Audit describes the published dataset and its load-time counters.
func (s *AttendanceService) Audit() (*DatasetInfo, error) {
	snapshot, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	return &DatasetInfo{
		Version:   snapshot.Version,
		LoadedAt:  snapshot.LoadedAt,
		Horizon:   snapshot.Dataset.Horizon(),
		Employees: len(snapshot.Dataset.Employees()),
		Audit:     snapshot.Dataset.Audit(),
	}, nil
}

func (s *AttendanceService) resolve(req ReportRequest, horizon models.Date) (models.DateRange, models.AttendanceFilter, error) {
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "date_range" {
					return models.DateRange{}, models.AttendanceFilter{}, appErrors.ErrInvalidRange
				}
			}
		}
		return models.DateRange{}, models.AttendanceFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report parameters")
	}

	end := horizon
	if end.IsZero() {
		end = models.DateOf(s.now().UTC())
	}
	if req.End != "" {
		end, _ = models.ParseDate(req.End)
	}
	start := end.AddDays(-(s.defaults.LookbackDays - 1))
	if req.Start != "" {
		start, _ = models.ParseDate(req.Start)
	}
	rng := models.DateRange{Start: start, End: end}
	if !rng.Valid() {
		return models.DateRange{}, models.AttendanceFilter{}, appErrors.ErrInvalidRange
	}
	if rng.Days() > s.defaults.MaxRangeDays {
		return models.DateRange{}, models.AttendanceFilter{}, appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("date range spans more than %d days", s.defaults.MaxRangeDays))
	}

	filter := s.defaults.Filter
	if req.Location != nil {
		filter.Location = strings.TrimSpace(*req.Location)
	}
	if req.WorkStyle != nil {
		filter.WorkStyle = canonicalWorkStyle(*req.WorkStyle)
	}
	if req.RequireFullTime != nil {
		filter.RequireFullTime = *req.RequireFullTime
	}
	return rng, filter, nil
}

func canonicalWorkStyle(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hybrid":
		return string(models.WorkStyleHybrid)
	case "remote":
		return string(models.WorkStyleRemote)
	case "office":
		return string(models.WorkStyleOffice)
	default:
		return ""
	}
}

func reportCacheKey(version string, rng models.DateRange, f models.AttendanceFilter) string {
	return fmt.Sprintf("attendance:%s:%s_%s:%s|%s|%t", version, rng.Start, rng.End, strings.ToLower(f.Location), strings.ToLower(f.WorkStyle), f.RequireFullTime)
}
