package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/shelf/internal/shared"
)

// SQLiteStorage implements [Storage] on the local_storage table.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new [SQLiteStorage] with the given database connection. Migrations must already be applied.
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// Get retrieves the value stored under key
func (s *SQLiteStorage) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query key %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value stored under key
func (s *SQLiteStorage) Set(key, value string) error {
	now := time.Now()
	query := `
		INSERT INTO local_storage (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := s.db.Exec(query, key, value, now, now); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (s *SQLiteStorage) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM local_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion reports the newest applied migration.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	return shared.SchemaVersion(s.db)
}
