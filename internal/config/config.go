package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL string
	ServerAddr  string

	SepayBaseURL string
	SepayTimeout time.Duration
	// SepayTxLimit bounds how many recent ledger entries one reconciliation
	// pass scans.
	SepayTxLimit int

	// DepositWindow is how long a tenant has to wire the deposit after
	// signing.
	DepositWindow time.Duration
	// StaleAfter is when an untouched negotiation gets cancelled.
	StaleAfter time.Duration

	PendingSweepInterval time.Duration
	DailySweepInterval   time.Duration
	SweepBatchLimit      int
	SweepConcurrency     int

	MigrationsDir string
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "leasehub")
		pass := getenv("POSTGRES_PASSWORD", "leasehub_pass")
		db := getenv("POSTGRES_DB", "leasehub")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}

	return &Config{
		DatabaseURL:          dsn,
		ServerAddr:           getenv("SERVER_ADDR", "0.0.0.0:8080"),
		SepayBaseURL:         getenv("SEPAY_BASE_URL", "https://my.sepay.vn/userapi"),
		SepayTimeout:         parseDuration(getenv("SEPAY_TIMEOUT", "10s"), 10*time.Second),
		SepayTxLimit:         parseInt(getenv("SEPAY_TX_LIMIT", "50"), 50),
		DepositWindow:        parseDuration(getenv("DEPOSIT_WINDOW", "24h"), 24*time.Hour),
		StaleAfter:           parseDuration(getenv("NEGOTIATION_STALE_AFTER", "168h"), 7*24*time.Hour),
		PendingSweepInterval: parseDuration(getenv("PENDING_SWEEP_INTERVAL", "5m"), 5*time.Minute),
		DailySweepInterval:   parseDuration(getenv("DAILY_SWEEP_INTERVAL", "24h"), 24*time.Hour),
		SweepBatchLimit:      parseInt(getenv("SWEEP_BATCH_LIMIT", "200"), 200),
		SweepConcurrency:     parseInt(getenv("SWEEP_CONCURRENCY", "4"), 4),
		MigrationsDir:        getenv("MIGRATIONS_DIR", "internal/migrations"),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}
