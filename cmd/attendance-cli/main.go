package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rhindhaugh/Attendance-Dashboard/pkg/config"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/database"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/logger"
)

const usage = `usage: attendance-cli <command> [flags]

commands:
  import-roster <file>         upsert employees from a roster CSV/XLSX
  import-scans <file>...       import key-card scans, skipping duplicates
  import-status <file>         replace the employment status history
  report [flags]               render a report section to the exports directory
  exports list                 list stored exports
  exports prune -older-than D  delete exports older than duration D
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(cfg, db, logr, os.Stdout)
	if err := app.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "attendance-cli: %v\n", err)
		os.Exit(1)
	}
}
