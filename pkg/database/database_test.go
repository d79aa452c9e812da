package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhindhaugh/Attendance-Dashboard/pkg/config"
)

func TestConnectionStrings(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: config.DriverPostgres, Host: "db", Port: 5432, User: "u", Password: "p", Name: "attendance", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=attendance sslmode=disable", PostgresDSN(cfg))

	url, err := MigrateURL(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/attendance?sslmode=disable", url)

	url, err = MigrateURL(config.DatabaseConfig{Driver: config.DriverSQLite, Path: "/tmp/a.db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite3:///tmp/a.db?_foreign_keys=on", url)

	pgx := config.DatabaseConfig{Driver: config.DriverPgx, Host: "db", Port: 5432, User: "report", Password: "p@ss/word", Name: "attendance", SSLMode: "require"}
	url, err = MigrateURL(pgx)
	require.NoError(t, err)
	assert.Equal(t, "postgres://report:p%40ss%2Fword@db:5432/attendance?sslmode=require", url)

	_, err = MigrateURL(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
	_, err = Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSQLiteMigrateUpAndDown(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "attendance.db")}

	m, err := NewMigrator(cfg)
	require.NoError(t, err)
	defer m.Close() //nolint:errcheck

	status, err := RunMigration(m, "up")
	require.NoError(t, err)
	assert.Equal(t, "version=4 dirty=false", status)

	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()
	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'schema_%' ORDER BY name`))
	assert.Equal(t, []string{"employees", "import_runs", "scan_events", "status_history"}, tables)

	status, err = RunMigration(m, "down")
	require.NoError(t, err)
	assert.Equal(t, "no migration applied", status)

	_, err = RunMigration(m, "sideways")
	assert.Error(t, err)
}
