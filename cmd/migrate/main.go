package main

import (
	"flag"
	"log"

	"github.com/rhindhaugh/Attendance-Dashboard/pkg/config"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/database"
)

func main() {
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := database.NewMigrator(cfg.Database)
	if err != nil {
		log.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close() //nolint:errcheck

	state, err := database.RunMigration(m, action)
	if err != nil {
		log.Fatalf("migration %s failed: %v", action, err)
	}
	log.Printf("migration %s completed (%s) on %s", action, state, cfg.Database.Driver)
}
