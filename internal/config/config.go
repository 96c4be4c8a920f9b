// Package config reads the bot settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Europe/Moscow on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the bot
type Config struct {
	TelegramToken     string
	AdminUserIDs      []int64
	DBType            string // sqlite or postgres
	DBPath            string // SQLite file
	DatabaseURL       string // PostgreSQL DSN
	WordsPerTraining  int
	MasteryThreshold  int
	NotificationHours []int
	Location          *time.Location
	SchedulerEnabled  bool
}

// Defaults
const (
	DefaultDBType            = "sqlite"
	DefaultDBPath            = "data/orfobot.db"
	DefaultWordsPerTraining  = 25
	DefaultMasteryThreshold  = 10
	DefaultNotificationHours = "9,14,19"
	DefaultTimezone          = "Europe/Moscow"
)

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the config from an arbitrary variable source
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		TelegramToken: get("TELEGRAM_BOT_TOKEN", ""),
		DBType:        strings.ToLower(get("DB_TYPE", DefaultDBType)),
		DBPath:        get("DB_PATH", DefaultDBPath),
		DatabaseURL:   get("DATABASE_URL", ""),
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	switch cfg.DBType {
	case "sqlite", "sqlite3":
		cfg.DBType = "sqlite"
	case "postgres", "postgresql":
		cfg.DBType = "postgres"
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE is %s", cfg.DBType)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}

	var err error
	if cfg.AdminUserIDs, err = parseIDs(get("ADMIN_USER_IDS", "")); err != nil {
		return nil, err
	}
	if cfg.WordsPerTraining, err = positiveInt("WORDS_PER_TRAINING", get("WORDS_PER_TRAINING", ""), DefaultWordsPerTraining); err != nil {
		return nil, err
	}
	if cfg.MasteryThreshold, err = positiveInt("MASTERY_THRESHOLD", get("MASTERY_THRESHOLD", ""), DefaultMasteryThreshold); err != nil {
		return nil, err
	}
	if cfg.NotificationHours, err = parseHours(get("NOTIFICATION_HOURS", DefaultNotificationHours)); err != nil {
		return nil, err
	}

	tz := get("TIMEZONE", DefaultTimezone)
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}

	cfg.SchedulerEnabled = true
	if v := get("ENABLE_SCHEDULER", ""); v != "" {
		if cfg.SchedulerEnabled, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid ENABLE_SCHEDULER %q: %w", v, err)
		}
	}

	return cfg, nil
}

// DSN returns the connection string for the configured database type
func (c *Config) DSN() string {
	if c.DBType == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin user ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func positiveInt(key, s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, s)
	}
	return n, nil
}

func parseHours(s string) ([]int, error) {
	var hours []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		h, err := strconv.Atoi(part)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("invalid notification hour %q", part)
		}
		hours = append(hours, h)
	}
	if len(hours) == 0 {
		return nil, fmt.Errorf("NOTIFICATION_HOURS must list at least one hour")
	}
	return hours, nil
}
