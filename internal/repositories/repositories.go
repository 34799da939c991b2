// package repositories provides durable key-value storage implementations.
package repositories

import (
	"fmt"

	"github.com/desertthunder/shelf/internal/shared"
)

// Storage keys holding the session.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage is a durable string key-value store.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set inserts or replaces the value for key.
	Set(key, value string) error
	// Remove deletes key; removing a missing key is not an error.
	Remove(key string) error
	// Close releases the underlying resources.
	Close() error
}

// Open creates the [Storage] selected by cfg.Driver, running migrations for SQLite.
func Open(cfg shared.StorageConfig) (Storage, error) {
	path := shared.ExpandPath(cfg.Path)

	switch cfg.Driver {
	case "", "sqlite":
		db, err := shared.NewDatabase(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: failed to run migrations: %v", shared.ErrStorage, err)
		}
		return NewSQLiteStorage(db), nil
	case "bolt":
		return OpenBoltStorage(path, cfg.BoltBucket)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}
