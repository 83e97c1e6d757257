package config

import (
	"os"
	"strconv"
	"time"

	"isitdown/internal/domain"
)

type Config struct {
	Addr                string        // API bind address
	LogDir              string        // logs directory
	LogConsole          bool          // mirror logs to stderr
	DatabaseURL         string        // postgres DSN; empty means sqlite
	SQLitePath          string        // sqlite file path
	CheckInterval       time.Duration // startup default; settings override
	ProbeTimeout        time.Duration // per-probe HTTP timeout
	MaxConcurrentChecks int           // probe fan-out cap per cycle
	RetryAttempts       int           // probe retries before reporting down
	RetryBackoff        time.Duration // backoff between retries
	SlackWebhook        string        // optional alert channel
}

func FromEnv() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "isitdown.db"
	}

	interval := domain.DefaultCheckInterval
	if v := os.Getenv("CHECK_INTERVAL_S"); v != "" {
		if sec, err := strconv.ParseFloat(v, 64); err == nil && sec > 0 {
			interval = domain.ClampInterval(time.Duration(sec * float64(time.Second)))
		}
	}

	timeout := 10 * time.Second
	if v := os.Getenv("PROBE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	}

	maxChecks := 16
	if v := os.Getenv("MAX_CONCURRENT_CHECKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxChecks = n
		}
	}

	retryAttempts := 1
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retryAttempts = n
		}
	}

	retryBackoff := 300 * time.Millisecond
	if v := os.Getenv("RETRY_BACKOFF_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			retryBackoff = time.Duration(ms) * time.Millisecond
		}
	}

	return Config{
		Addr:                addr,
		LogDir:              logDir,
		LogConsole:          os.Getenv("LOG_CONSOLE") == "true",
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SQLitePath:          sqlitePath,
		CheckInterval:       interval,
		ProbeTimeout:        timeout,
		MaxConcurrentChecks: maxChecks,
		RetryAttempts:       retryAttempts,
		RetryBackoff:        retryBackoff,
		SlackWebhook:        os.Getenv("SLACK_WEBHOOK_URL"),
	}
}
