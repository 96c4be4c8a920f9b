package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported values of DB_TYPE
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open establishes a connection to the database and initializes the schema.
// For SQLite the dsn is a file path (or ":memory:").
func Open(driver, dsn string) (*Store, error) {
	if driver == DriverSQLite && dsn != ":memory:" {
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return NewStore(db), nil
}

// DriverFor maps the DB_TYPE setting to a database/sql driver name.
func DriverFor(dbType string) (string, error) {
	switch strings.ToLower(dbType) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql":
		return DriverPostgres, nil
	}
	return "", fmt.Errorf("unsupported DB_TYPE %q", dbType)
}

var schema = []struct {
	table string
	ddl   string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			experience INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			current_streak INTEGER NOT NULL DEFAULT 0,
			best_streak INTEGER NOT NULL DEFAULT 0,
			last_practice_date {{timestamp}},
			created_at {{timestamp}} NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"words", `
		CREATE TABLE IF NOT EXISTS words (
			id {{serial}},
			form TEXT NOT NULL,
			form_key TEXT NOT NULL UNIQUE, -- lower-cased form; SQLite LOWER() only folds ASCII
			definition TEXT NOT NULL DEFAULT '',
			explanation TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			difficulty INTEGER NOT NULL DEFAULT 1,
			pattern TEXT NOT NULL,
			hidden_letters TEXT NOT NULL DEFAULT '',
			created_at {{timestamp}} NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"user_progress", `
		CREATE TABLE IF NOT EXISTS user_progress (
			id {{serial}},
			user_id BIGINT NOT NULL REFERENCES users(id),
			word_id BIGINT NOT NULL REFERENCES words(id),
			mistake_count INTEGER NOT NULL DEFAULT 0,
			correct_count INTEGER NOT NULL DEFAULT 0,
			interval_position INTEGER NOT NULL DEFAULT 0,
			next_due {{timestamp}} NOT NULL,
			mastered BOOLEAN NOT NULL DEFAULT FALSE,
			last_reviewed {{timestamp}},
			created_at {{timestamp}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, word_id)
		)`},
	{"training_sessions", `
		CREATE TABLE IF NOT EXISTS training_sessions (
			id {{serial}},
			user_id BIGINT NOT NULL REFERENCES users(id),
			category TEXT NOT NULL,
			mode TEXT NOT NULL DEFAULT 'regular',
			total INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			incorrect INTEGER NOT NULL DEFAULT 0,
			started_at {{timestamp}} NOT NULL,
			completed_at {{timestamp}}
		)`},
	{"training_answers", `
		CREATE TABLE IF NOT EXISTS training_answers (
			id {{serial}},
			session_id BIGINT NOT NULL REFERENCES training_sessions(id),
			word_id BIGINT NOT NULL REFERENCES words(id),
			raw_answer TEXT NOT NULL,
			correct BOOLEAN NOT NULL,
			answered_at {{timestamp}} NOT NULL
		)`},
	{"user_progress_due index", `
		CREATE INDEX IF NOT EXISTS idx_user_progress_due ON user_progress(user_id, mastered, next_due)`},
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	serial, timestamp := "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	if db.DriverName() == DriverPostgres {
		serial, timestamp = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	}
	replacer := strings.NewReplacer("{{serial}}", serial, "{{timestamp}}", timestamp)

	for _, stmt := range schema {
		if _, err := db.Exec(replacer.Replace(stmt.ddl)); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.table, err)
		}
	}
	return nil
}
