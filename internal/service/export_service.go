package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
	appErrors "github.com/rhindhaugh/Attendance-Dashboard/pkg/errors"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/export"
)

// ExportFormat is the rendering of an exported section.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Report sections that can be exported.
const (
	SectionDaily            = "daily"
	SectionDailyCore        = "daily_core"
	SectionWeekly           = "weekly"
	SectionWeekdays         = "weekdays"
	SectionDivisions        = "divisions"
	SectionDivisionsCore    = "divisions_core"
	SectionDivisionPresence = "division_presence"
	SectionTimeOfDay        = "time_of_day"
	SectionEmployees        = "employees"
)

type reportSource interface {
	Report(ctx context.Context, req ReportRequest) (*models.AttendanceReport, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to be served or stored.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders report sections as CSV or PDF.
type ExportService struct {
	reports reportSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService. storage may be nil when files
// are only streamed back to HTTP clients.
func NewExportService(reports reportSource, storage fileStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		reports: reports,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		logger:  logger,
	}
}

// ParseExportFormat validates a requested format.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// Render computes the report and renders one section of it.
func (s *ExportService) Render(ctx context.Context, req ReportRequest, section string, format ExportFormat) (*ExportFile, error) {
	report, _, err := s.reports.Report(ctx, req)
	if err != nil {
		return nil, err
	}
	dataset, title, err := SectionDataset(report, section)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.ErrUnsupportedFormat
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    buildFilename(section, report.Range, format),
		ContentType: format.ContentType(),
		Data:        payload,
	}, nil
}

// Save renders a section and writes it to storage, returning the stored path.
func (s *ExportService) Save(ctx context.Context, req ReportRequest, section string, format ExportFormat, filename string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("export storage not configured")
	}
	file, err := s.Render(ctx, req, section, format)
	if err != nil {
		return "", err
	}
	if filename == "" {
		filename = file.Filename
	}
	path, err := s.storage.Save(filename, file.Data)
	if err != nil {
		return "", err
	}
	s.logger.Info("attendance export saved", zap.String("section", section), zap.String("format", string(format)), zap.String("path", path))
	return path, nil
}

// SectionDataset flattens one report section into export rows.
func SectionDataset(report *models.AttendanceReport, section string) (export.Dataset, string, error) {
	title := fmt.Sprintf("Attendance %s %s to %s", strings.ReplaceAll(section, "_", " "), report.Range.Start, report.Range.End)
	switch section {
	case SectionDaily:
		return dailyDataset(report.Daily), title, nil
	case SectionDailyCore:
		return dailyDataset(report.DailyCore), title, nil
	case SectionWeekly:
		rows := make([]map[string]string, 0, len(report.Weekly))
		for _, w := range report.Weekly {
			rows = append(rows, map[string]string{
				"Week Start":     w.WeekStart.String(),
				"Attended":       strconv.Itoa(w.Attended),
				"Possible":       strconv.Itoa(w.Possible),
				"Attendance (%)": formatPercent(w.Percentage),
			})
		}
		return export.Dataset{Headers: []string{"Week Start", "Attended", "Possible", "Attendance (%)"}, Rows: rows}, title, nil
	case SectionWeekdays:
		rows := make([]map[string]string, 0, len(report.Weekdays))
		for _, w := range report.Weekdays {
			rows = append(rows, map[string]string{
				"Weekday":        w.Weekday,
				"Target":         strconv.Itoa(w.TargetCount),
				"Other":          strconv.Itoa(w.OtherCount),
				"Possible":       strconv.Itoa(w.Possible),
				"Attendance (%)": formatPercent(w.Percentage),
			})
		}
		return export.Dataset{Headers: []string{"Weekday", "Target", "Other", "Possible", "Attendance (%)"}, Rows: rows}, title, nil
	case SectionDivisions:
		return divisionDataset(report.Divisions), title, nil
	case SectionDivisionsCore:
		return divisionDataset(report.DivisionsCore), title, nil
	case SectionDivisionPresence:
		rows := make([]map[string]string, 0, len(report.DivisionPresence))
		for _, d := range report.DivisionPresence {
			rows = append(rows, map[string]string{
				"Division":       d.Division,
				"Days":           strconv.Itoa(d.Days),
				"Target Average": formatPercent(d.TargetAverage),
				"Other Average":  formatPercent(d.OtherAverage),
			})
		}
		return export.Dataset{Headers: []string{"Division", "Days", "Target Average", "Other Average"}, Rows: rows}, title, nil
	case SectionTimeOfDay:
		rows := make([]map[string]string, 0, len(report.TimeOfDay))
		for _, p := range report.TimeOfDay {
			rows = append(rows, map[string]string{
				"Period": p.Period,
				"Target": strconv.Itoa(p.TargetCount),
				"Other":  strconv.Itoa(p.OtherCount),
			})
		}
		return export.Dataset{Headers: []string{"Period", "Target", "Other"}, Rows: rows}, title, nil
	case SectionEmployees:
		rows := make([]map[string]string, 0, len(report.Employees))
		for _, e := range report.Employees {
			rows = append(rows, map[string]string{
				"Employee #":        strconv.Itoa(e.EmployeeID),
				"Name":              e.Name,
				"Division":          e.Division,
				"Target Group":      strconv.FormatBool(e.IsTargetGroup),
				"Days Attended":     strconv.Itoa(e.DaysAttended),
				"Core Days":         fmt.Sprintf("%d/%d", e.CoreDaysAttended, e.CoreDaysPossible),
				"Attendance (%)":    formatPercent(e.AttendanceRate),
				"Mean Arrival":      formatClock(e.MeanArrival),
				"Median Arrival":    formatClock(e.MedianArrival),
				"Excluded Arrivals": strconv.Itoa(len(e.ExcludedOutliers)),
			})
		}
		return export.Dataset{
			Headers: []string{"Employee #", "Name", "Division", "Target Group", "Days Attended", "Core Days", "Attendance (%)", "Mean Arrival", "Median Arrival", "Excluded Arrivals"},
			Rows:    rows,
		}, title, nil
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report section %q", section))
	}
}

func dailyDataset(days []models.DailyMetric) export.Dataset {
	rows := make([]map[string]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, map[string]string{
			"Date":           d.Date.String(),
			"Weekday":        d.Weekday,
			"Eligible":       strconv.Itoa(d.EligibleCount),
			"Present":        strconv.Itoa(d.PresentCount),
			"Other Present":  strconv.Itoa(d.OtherPresentCount),
			"Attendance (%)": formatPercent(d.Percentage),
		})
	}
	return export.Dataset{Headers: []string{"Date", "Weekday", "Eligible", "Present", "Other Present", "Attendance (%)"}, Rows: rows}
}

func divisionDataset(divisions []models.DivisionMetric) export.Dataset {
	rows := make([]map[string]string, 0, len(divisions))
	for _, d := range divisions {
		rows = append(rows, map[string]string{
			"Division":       d.Division,
			"Attended":       strconv.Itoa(d.Attended),
			"Possible":       strconv.Itoa(d.Possible),
			"Attendance (%)": formatPercent(d.Percentage),
		})
	}
	return export.Dataset{Headers: []string{"Division", "Attended", "Possible", "Attendance (%)"}, Rows: rows}
}

func formatPercent(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 1, 64)
}

func formatClock(c *models.ClockTime) string {
	if c == nil {
		return ""
	}
	return c.String()
}

func buildFilename(section string, rng models.DateRange, format ExportFormat) string {
	return fmt.Sprintf("attendance_%s_%s_%s.%s", sanitizeFilename(section), rng.Start, rng.End, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
