// Package config loads server settings from flags, the environment and an
// optional .env file.
//
// Precedence: command-line flag > environment variable > .env > default.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything cmd/server needs to start.
type Config struct {
	Port        int
	DBPath      string
	UploadDir   string
	LogLevel    string
	LogFormat   string
	LogFile     string
	CORSOrigins []string
	Location    *time.Location

	// ReminderInterval is how often the reminder digest runs. Off (0) unless set.
	ReminderInterval time.Duration
}

// Load reads .env (if present), the environment, then args as flags.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnvInt("PORT", 8080),
		DBPath:      getEnv("DATABASE_PATH", "records.db"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LogFile:     getEnv("LOG_FILE", ""),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "Directory for uploaded documents")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	interval := getEnv("REMINDER_INTERVAL", "0")
	d, err := time.ParseDuration(interval)
	if err != nil {
		return cfg, fmt.Errorf("invalid REMINDER_INTERVAL %q: %w", interval, err)
	}
	cfg.ReminderInterval = d

	tz := getEnv("OFFICE_TZ", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return cfg, fmt.Errorf("invalid OFFICE_TZ %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
