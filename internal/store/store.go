// Package store persists postings behind the dedup/merge contract: one row
// per natural key, fill-only field merges, operator state never clobbered.
package store

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver, the default backend
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_title TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	role_category TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	published_date TIMESTAMP,
	location TEXT NOT NULL DEFAULT '',
	url TEXT UNIQUE,
	snippet TEXT NOT NULL DEFAULT '',
	detected_keywords TEXT NOT NULL DEFAULT '',
	applied BOOLEAN NOT NULL DEFAULT 0,
	scraped_at TIMESTAMP NOT NULL
);`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id BIGSERIAL PRIMARY KEY,
	job_title TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	role_category TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	published_date TIMESTAMP,
	location TEXT NOT NULL DEFAULT '',
	url TEXT UNIQUE,
	snippet TEXT NOT NULL DEFAULT '',
	detected_keywords TEXT NOT NULL DEFAULT '',
	applied BOOLEAN NOT NULL DEFAULT FALSE,
	scraped_at TIMESTAMP NOT NULL
);`

// Store wraps the jobs table. SQLite (a file path or :memory:) is the
// default backend; a postgres:// DSN switches to lib/pq.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database named by dsn and ensures the schema exists.
func Open(dsn string) (*Store, error) {
	driver := "sqlite3"
	schema := sqliteSchema
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		driver = "postgres"
		schema = postgresSchema
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
