package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/middleware"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/service"
	appErrors "github.com/rhindhaugh/Attendance-Dashboard/pkg/errors"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/response"
)

type attendanceReader interface {
	Report(ctx context.Context, req service.ReportRequest) (*models.AttendanceReport, bool, error)
	Audit() (*service.DatasetInfo, error)
}

type attendanceExporter interface {
	Render(ctx context.Context, req service.ReportRequest, section string, format service.ExportFormat) (*service.ExportFile, error)
}

type datasetLoader interface {
	Load(ctx context.Context) (*service.DatasetSnapshot, error)
}

type reloadQueue interface {
	Trigger(reason string) (string, error)
	Status() *service.ReloadStatus
}

// AttendanceHandler exposes attendance metrics over HTTP.
type AttendanceHandler struct {
	attendance attendanceReader
	exports    attendanceExporter
	datasets   datasetLoader
	reloads    reloadQueue
}

// NewAttendanceHandler constructs the attendance handler.
func NewAttendanceHandler(attendance attendanceReader, exports attendanceExporter, datasets datasetLoader) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, exports: exports, datasets: datasets}
}

// WithReloads enables background reloads via POST /attendance/reload?async=true.
func (h *AttendanceHandler) WithReloads(reloads reloadQueue) *AttendanceHandler {
	h.reloads = reloads
	return h
}

// Report godoc
// @Summary Full attendance report
// @Tags Attendance
// @Produce json
// @Param start query string false "Range start (YYYY-MM-DD)"
// @Param end query string false "Range end (YYYY-MM-DD), defaults to the latest scan date"
// @Param location query string false "Target location"
// @Param work_style query string false "Target work style"
// @Param require_full_time query bool false "Require full-time status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /attendance/report [get]
func (h *AttendanceHandler) Report(c *gin.Context) {
	h.section(c, func(r *models.AttendanceReport) interface{} { return r })
}

// Daily returns the per-date view. core_only=true restricts it to Tuesday to Thursday.
// @Summary Daily attendance
// @Tags Attendance
// @Produce json
// @Param core_only query bool false "Only core days"
// @Success 200 {object} response.Envelope
// @Router /attendance/daily [get]
func (h *AttendanceHandler) Daily(c *gin.Context) {
	coreOnly := c.Query("core_only") == "true"
	h.section(c, func(r *models.AttendanceReport) interface{} {
		if coreOnly {
			return r.DailyCore
		}
		return r.Daily
	})
}

// Weekly returns the core-day weekly view.
// @Summary Weekly core-day attendance
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/weekly [get]
func (h *AttendanceHandler) Weekly(c *gin.Context) {
	h.section(c, func(r *models.AttendanceReport) interface{} { return r.Weekly })
}

// Weekdays returns the Monday to Friday breakdown.
// @Summary Weekday breakdown
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/weekdays [get]
func (h *AttendanceHandler) Weekdays(c *gin.Context) {
	h.section(c, func(r *models.AttendanceReport) interface{} { return r.Weekdays })
}

// Divisions returns the per-division view. core_only=true restricts it to Tuesday to Thursday.
// @Summary Division attendance
// @Tags Attendance
// @Produce json
// @Param core_only query bool false "Only core days"
// @Success 200 {object} response.Envelope
// @Router /attendance/divisions [get]
func (h *AttendanceHandler) Divisions(c *gin.Context) {
	coreOnly := c.Query("core_only") == "true"
	h.section(c, func(r *models.AttendanceReport) interface{} {
		if coreOnly {
			return r.DivisionsCore
		}
		return r.Divisions
	})
}

// DivisionPresence returns the average daily head count per division.
// @Summary Division head count
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/divisions/presence [get]
func (h *AttendanceHandler) DivisionPresence(c *gin.Context) {
	h.section(c, func(r *models.AttendanceReport) interface{} { return r.DivisionPresence })
}

// TimeOfDay returns the first-arrival distribution.
// @Summary Arrival time-of-day distribution
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/time-of-day [get]
func (h *AttendanceHandler) TimeOfDay(c *gin.Context) {
	h.section(c, func(r *models.AttendanceReport) interface{} { return r.TimeOfDay })
}

// Employees returns the individual summaries.
// @Summary Individual attendance
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/employees [get]
func (h *AttendanceHandler) Employees(c *gin.Context) {
	h.section(c, func(r *models.AttendanceReport) interface{} { return r.Employees })
}

// Audit returns the loaded dataset's version and skip-and-count totals.
// @Summary Dataset audit
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/audit [get]
func (h *AttendanceHandler) Audit(c *gin.Context) {
	info, err := h.attendance.Audit()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, middleware.ExtractMeta(c))
}

// Export streams one report section as CSV or PDF.
// @Summary Export a report section
// @Tags Attendance
// @Produce text/csv,application/pdf
// @Param section query string true "daily|daily_core|weekly|weekdays|divisions|divisions_core|division_presence|time_of_day|employees"
// @Param format query string false "csv|pdf"
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := bindReportRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	section := c.DefaultQuery("section", service.SectionDaily)
	file, err := h.exports.Render(c.Request.Context(), req, section, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Reload rebuilds the dataset from storage. With async=true the rebuild is
// queued and the job id returned immediately.
// @Summary Reload attendance data
// @Tags Attendance
// @Produce json
// @Param async query bool false "Queue the reload in the background"
// @Success 202 {object} response.Envelope
// @Router /attendance/reload [post]
func (h *AttendanceHandler) Reload(c *gin.Context) {
	if c.Query("async") == "true" && h.reloads != nil {
		jobID, err := h.reloads.Trigger("api")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "reload queue unavailable"))
			return
		}
		response.Accepted(c, gin.H{"job_id": jobID, "state": service.ReloadQueued})
		return
	}
	if h.datasets == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	snapshot, err := h.datasets.Load(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{
		"data_version": snapshot.Version,
		"loaded_at":    snapshot.LoadedAt,
		"horizon":      snapshot.Dataset.Horizon(),
		"audit":        snapshot.Dataset.Audit(),
	}, middleware.ExtractMeta(c))
}

// ReloadStatus reports the most recent background reload.
// @Summary Background reload status
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/reload [get]
func (h *AttendanceHandler) ReloadStatus(c *gin.Context) {
	var status *service.ReloadStatus
	if h.reloads != nil {
		status = h.reloads.Status()
	}
	if status == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no background reload has run"))
		return
	}
	response.JSON(c, http.StatusOK, status)
}

func (h *AttendanceHandler) section(c *gin.Context, pick func(*models.AttendanceReport) interface{}) {
	if h.attendance == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := bindReportRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, cacheHit, err := h.attendance.Report(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetMeta(c, "data_version", report.Version)
	middleware.SetMeta(c, "range", report.Range)
	response.JSON(c, http.StatusOK, pick(report), middleware.ExtractMeta(c))
}

func bindReportRequest(c *gin.Context) (service.ReportRequest, error) {
	var req service.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
	}
	return req, nil
}
