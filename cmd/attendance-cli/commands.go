package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/ingest"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/models"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/repository"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/service"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/config"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/storage"
)

var errUsage = errors.New("invalid usage")

type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	out       io.Writer
	employees *repository.EmployeeRepository
	scans     *repository.ScanRepository
	history   *repository.StatusHistoryRepository
	imports   *repository.ImportRunRepository
	now       func() time.Time
}

func newApp(cfg *config.Config, db *sqlx.DB, logger *zap.Logger, out io.Writer) *app {
	return &app{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		employees: repository.NewEmployeeRepository(db),
		scans:     repository.NewScanRepository(db),
		history:   repository.NewStatusHistoryRepository(db),
		imports:   repository.NewImportRunRepository(db),
		now:       time.Now,
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "import-roster":
		return a.importRoster(ctx, args[1:])
	case "import-scans":
		return a.importScans(ctx, args[1:])
	case "import-status":
		return a.importStatus(ctx, args[1:])
	case "report":
		return a.report(ctx, args[1:])
	case "exports":
		return a.exports(args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func (a *app) importRoster(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import-roster <file>", errUsage)
	}
	table, err := readTable(args[0])
	if err != nil {
		return err
	}
	employees, stats := ingest.ParseRoster(table)
	n, err := a.employees.UpsertMany(ctx, employees)
	if err != nil {
		return fmt.Errorf("store roster: %w", err)
	}
	a.logStats("roster imported", args[0], stats)
	if err := a.recordRun(ctx, stats.ImportRun(models.ImportSourceRoster, args, a.now())); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "roster: %d rows read, %d employees stored\n", stats.Rows, n)
	return nil
}

func (a *app) importScans(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: import-scans <file>...", errUsage)
	}
	batches := make([][]models.RawScan, 0, len(args))
	var total ingest.Stats
	for _, path := range args {
		table, err := readTable(path)
		if err != nil {
			return err
		}
		scans, stats := ingest.ParseScans(table)
		a.logStats("scan file parsed", path, stats)
		total.Merge(stats)
		batches = append(batches, scans)
	}
	merged := ingest.MergeScans(batches...)
	inserted, err := a.scans.ImportMany(ctx, merged)
	if err != nil {
		return fmt.Errorf("store scans: %w", err)
	}
	if err := a.recordRun(ctx, total.ImportRun(models.ImportSourceScans, args, a.now())); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "scans: %d rows read, %d unique, %d new\n", total.Rows, len(merged), inserted)
	return nil
}

func (a *app) importStatus(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import-status <file>", errUsage)
	}
	table, err := readTable(args[0])
	if err != nil {
		return err
	}
	roster, err := a.employees.List(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	changes, stats := ingest.ParseStatusHistory(table, roster)
	if err := a.history.ReplaceAll(ctx, changes); err != nil {
		return fmt.Errorf("store status history: %w", err)
	}
	a.logStats("status history imported", args[0], stats)
	if err := a.recordRun(ctx, stats.ImportRun(models.ImportSourceStatusHistory, args, a.now())); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "status history: %d rows read, %d changes stored\n", stats.Rows, len(changes))
	return nil
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(a.out)
	from := fs.String("from", "", "range start (YYYY-MM-DD)")
	to := fs.String("to", "", "range end (YYYY-MM-DD), defaults to the latest scan date")
	section := fs.String("section", service.SectionDaily, "report section")
	format := fs.String("format", string(service.ExportFormatCSV), "csv or pdf")
	out := fs.String("out", "", "file name under the exports directory")
	location := fs.String("location", "", "target location, overrides configuration")
	workStyle := fs.String("work-style", "", "target work style, overrides configuration")
	fullTime := fs.String("full-time", "", "true or false, overrides configuration")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	exportFormat, err := service.ParseExportFormat(*format)
	if err != nil {
		return err
	}

	req := service.ReportRequest{Start: *from, End: *to}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "location":
			req.Location = location
		case "work-style":
			req.WorkStyle = workStyle
		}
	})
	if *fullTime != "" {
		v := strings.EqualFold(*fullTime, "true")
		req.RequireFullTime = &v
	}

	store, err := storage.NewLocalStorage(a.cfg.Reports.StorageDir)
	if err != nil {
		return err
	}

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(nil, metrics, 0, a.logger, false)
	opts, err := service.DatasetOptions(a.cfg.Attendance)
	if err != nil {
		return err
	}
	datasets := service.NewDatasetService(a.employees, a.scans, a.history, opts, cacheSvc, metrics, a.logger).WithImportRuns(a.imports)
	if _, err := datasets.Load(ctx); err != nil {
		return err
	}
	reports := service.NewAttendanceService(datasets, cacheSvc, metrics, service.AttendanceDefaultsFromConfig(a.cfg), validator.New(), a.logger)
	exports := service.NewExportService(reports, store, a.logger, nil, nil)

	path, err := exports.Save(ctx, req, *section, exportFormat, *out)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, path)
	return nil
}

func (a *app) exports(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: exports list|prune", errUsage)
	}
	store, err := storage.NewLocalStorage(a.cfg.Reports.StorageDir)
	if err != nil {
		return err
	}
	switch args[0] {
	case "list":
		names, err := store.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(a.out, name)
		}
		return nil
	case "prune":
		fs := flag.NewFlagSet("prune", flag.ContinueOnError)
		fs.SetOutput(a.out)
		olderThan := fs.Duration("older-than", 30*24*time.Hour, "age after which exports are removed")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		deleted, err := store.CleanupOlderThan(*olderThan)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "removed %d exports\n", len(deleted))
		return nil
	default:
		return fmt.Errorf("%w: unknown exports command %q", errUsage, args[0])
	}
}

func (a *app) recordRun(ctx context.Context, run models.ImportRun) error {
	if err := a.imports.Record(ctx, run); err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}

func (a *app) logStats(msg, path string, stats ingest.Stats) {
	fields := []zap.Field{zap.String("file", path), zap.Int("rows", stats.Rows), zap.Int("accepted", stats.Accepted)}
	kinds := make([]string, 0, len(stats.Counts))
	for kind := range stats.Counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fields = append(fields, zap.Int(kind, stats.Counts[models.ErrorKind(kind)]))
	}
	a.logger.Info(msg, fields...)
}

func readTable(path string) (*ingest.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck
	table, err := ingest.ReadFile(path, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return table, nil
}
