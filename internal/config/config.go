package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"shipment-allocation-service/internal/platform/db"
	"shipment-allocation-service/internal/platform/obs"

	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment.
type Config struct {
	Port string

	// DBDriver is "sqlite" (DBPath) or "pgx" (DatabaseURL).
	DBDriver    string
	DBPath      string
	DatabaseURL string
	SeedPath    string

	// RedisAddr enables the Redis plan cache; empty falls back to the SQL cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	MaxWarehouses    int
	BatchConcurrency int

	LogLevel  string
	LogFormat string
	// LogFile enables a rotated JSON log file next to stderr output.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load(files ...string) (Config, bool, error) {
	found := godotenv.Load(files...) == nil

	var errs []error

	cfg := Config{
		Port:          Get("PORT", "8080"),
		DBDriver:      Get("DB_DRIVER", "sqlite"),
		DBPath:        Get("DB_PATH", "data/app.db"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SeedPath:      Get("SEED_PATH", "data/seeds/warehouses.json"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogLevel:      Get("LOG_LEVEL", "info"),
		LogFormat:     Get("LOG_FORMAT", "json"),
		LogFile:       os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.RedisDB, err = GetInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.CacheTTL, err = GetDuration("CACHE_TTL", 10*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxWarehouses, err = GetInt("MAX_WAREHOUSES", 20); err != nil {
		errs = append(errs, err)
	}
	if cfg.BatchConcurrency, err = GetInt("BATCH_CONCURRENCY", 4); err != nil {
		errs = append(errs, err)
	}

	if cfg.LogMaxSizeMB, err = GetInt("LOG_MAX_SIZE_MB", 100); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogMaxBackups, err = GetInt("LOG_MAX_BACKUPS", 3); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogMaxAgeDays, err = GetInt("LOG_MAX_AGE_DAYS", 28); err != nil {
		errs = append(errs, err)
	}

	dialect, err := db.DialectFor(cfg.DBDriver)
	if err != nil {
		errs = append(errs, fmt.Errorf("DB_DRIVER: %w", err))
	} else if dialect == db.Postgres && strings.TrimSpace(cfg.DatabaseURL) == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=%s", cfg.DBDriver))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, found, fmt.Errorf("load config: %w", err)
	}

	return cfg, found, nil
}

// Logging returns the logger settings, overriding the format when format is non-empty.
func (c Config) Logging(format string) obs.LogConfig {
	if format == "" {
		format = c.LogFormat
	}
	return obs.LogConfig{
		Level:      c.LogLevel,
		Format:     format,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
	}
}

// Get returns the value of key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	return d, nil
}
