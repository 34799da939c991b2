package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/desertthunder/shelf/internal/shared"
)

const defaultBoltBucket = "local_storage"

// BoltStorage implements [Storage] on a single BoltDB bucket.
type BoltStorage struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBoltStorage opens (or creates) the BoltDB file at path and ensures the bucket exists.
func OpenBoltStorage(path, bucket string) (*BoltStorage, error) {
	if bucket == "" {
		bucket = defaultBoltBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create storage directory: %v", shared.ErrStorage, err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open the database: %v", shared.ErrStorage, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(bucket)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %w", bucket, errB)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to set up bucket: %v", shared.ErrStorage, err)
	}

	return &BoltStorage{db: db, bucket: []byte(bucket)}, nil
}

// Get retrieves the value stored under key
func (s *BoltStorage) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw != nil {
			// bytes returned by Get are only valid for the life of the transaction
			value, found = string(raw), true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, found, nil
}

// Set stores value under key
func (s *BoltStorage) Set(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (s *BoltStorage) Remove(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// Close closes the BoltDB file
func (s *BoltStorage) Close() error {
	return s.db.Close()
}
