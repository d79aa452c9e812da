package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Database drivers understood by pkg/database.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite3"
)

// Status default modes applied when no status history entry covers a date.
const (
	StatusDefaultStrict   = "strict"
	StatusDefaultFullTime = "full_time"
)

// DefaultMaxRangeDays caps the span of a single attendance query.
const DefaultMaxRangeDays = 3660

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Cache      CacheConfig
	Attendance AttendanceConfig
	Reports    ReportsConfig
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	Path         string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs caching of computed attendance reports.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// AttendanceConfig holds the analysis defaults used when a request does not override them.
type AttendanceConfig struct {
	TargetLocation          string
	TargetWorkStyle         string
	RequireFullTime         bool
	FullTimeLabels          []string
	StatusDefault           string
	OutlierThresholdMinutes int
	DefaultLookbackDays     int
	MaxRangeDays            int
	OverridesFile           string
	Overrides               map[string]int
	ReloadInterval          time.Duration
}

// ReportsConfig configures where CLI generated exports are written.
type ReportsConfig struct {
	StorageDir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       normalizeDriver(v.GetString("DB_DRIVER")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		Path:         v.GetString("DB_PATH"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("ATTENDANCE_CACHE_TTL"), 15*time.Minute),
	}

	threshold := v.GetInt("OUTLIER_THRESHOLD_MINUTES")
	if threshold <= 0 {
		threshold = 120
	}
	lookback := v.GetInt("DEFAULT_LOOKBACK_DAYS")
	if lookback <= 0 {
		lookback = 365
	}
	maxRange := v.GetInt("MAX_RANGE_DAYS")
	if maxRange <= 0 {
		maxRange = DefaultMaxRangeDays
	}
	cfg.Attendance = AttendanceConfig{
		TargetLocation:          v.GetString("TARGET_LOCATION"),
		TargetWorkStyle:         v.GetString("TARGET_WORK_STYLE"),
		RequireFullTime:         v.GetBool("REQUIRE_FULL_TIME"),
		FullTimeLabels:          splitAndTrim(v.GetString("FULL_TIME_LABELS")),
		StatusDefault:           normalizeStatusDefault(v.GetString("STATUS_DEFAULT")),
		OutlierThresholdMinutes: threshold,
		DefaultLookbackDays:     lookback,
		MaxRangeDays:            maxRange,
		OverridesFile:           v.GetString("IDENTITY_OVERRIDES_FILE"),
		Overrides:               parseOverrides(v.GetString("IDENTITY_OVERRIDES")),
		ReloadInterval:          parseDuration(v.GetString("DATASET_RELOAD_INTERVAL"), 0),
	}

	cfg.Reports = ReportsConfig{
		StorageDir: v.GetString("REPORTS_STORAGE_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "attendance_dashboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_PATH", "./attendance.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("ATTENDANCE_CACHE_TTL", "15m")

	v.SetDefault("TARGET_LOCATION", "London UK")
	v.SetDefault("TARGET_WORK_STYLE", "Hybrid")
	v.SetDefault("REQUIRE_FULL_TIME", true)
	v.SetDefault("FULL_TIME_LABELS", "Full-Time")
	v.SetDefault("STATUS_DEFAULT", StatusDefaultStrict)
	v.SetDefault("OUTLIER_THRESHOLD_MINUTES", 120)
	v.SetDefault("DEFAULT_LOOKBACK_DAYS", 365)
	v.SetDefault("MAX_RANGE_DAYS", DefaultMaxRangeDays)
	v.SetDefault("IDENTITY_OVERRIDES_FILE", "")
	v.SetDefault("IDENTITY_OVERRIDES", "")
	v.SetDefault("DATASET_RELOAD_INTERVAL", "0s")

	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func normalizeDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sqlite", DriverSQLite:
		return DriverSQLite
	case DriverPgx, "pgx5":
		return DriverPgx
	default:
		return DriverPostgres
	}
}

func normalizeStatusDefault(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StatusDefaultFullTime, "full-time", "legacy":
		return StatusDefaultFullTime
	default:
		return StatusDefaultStrict
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// parseOverrides reads "Hindhaugh, Robert=849;Pepe, Bhavik=867". Names contain commas so
// entries are separated by semicolons.
func parseOverrides(raw string) map[string]int {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	result := make(map[string]int)
	for _, entry := range strings.Split(raw, ";") {
		name, id, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		parsed, err := strconv.Atoi(strings.TrimSpace(id))
		if name == "" || err != nil {
			continue
		}
		result[name] = parsed
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
