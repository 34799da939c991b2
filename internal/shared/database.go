package shared

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const memoryDSN = ":memory:"

// NewDatabase opens the SQLite file backing local storage, creating its directory first.
// ":memory:" opens a throwaway database pinned to a single connection.
func NewDatabase(path string) (*sql.DB, error) {
	dsn := memoryDSN
	if path != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dsn == memoryDSN {
		ConfigureDatabase(db, 1, 1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}
	return db, nil
}

// ConfigureDatabase sets connection pool limits.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
