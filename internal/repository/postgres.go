package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore is the shared-deployment job store backend.
type PostgresStore struct {
	sqlStore
}

var _ JobStore = (*PostgresStore)(nil)

// NewPostgresStore wraps an existing connection pool. The schema is
// created when missing.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := createJobsSchema(db); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PostgresStore{sqlStore: sqlStore{db: db, d: dialectPostgres}}, nil
}

// NewPostgresStoreFromURL opens a pooled connection to databaseURL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
