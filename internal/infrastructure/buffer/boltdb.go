package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store wraps BoltDB to persist deferred hype increments while the primary
// store is unavailable.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "hype"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Enqueue stores a deferred increment under a time-ordered key.
func (s *Store) Enqueue(inc Increment) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	inc.normalize()
	inc.bucketKey = []byte(buildKey(inc))

	payload, err := json.Marshal(inc)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(inc.bucketKey, payload)
	})
}

// GetBatch returns up to limit increments without removing them.
func (s *Store) GetBatch(limit int) ([]Increment, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var incs []Increment
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(incs) < limit; k, v = c.Next() {
			var inc Increment
			if err := json.Unmarshal(v, &inc); err != nil {
				continue
			}
			inc.bucketKey = append([]byte(nil), k...)
			incs = append(incs, inc)
		}
		return nil
	})
	return incs, err
}

// Remove deletes the provided increment from the buffer.
func (s *Store) Remove(inc Increment) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if len(inc.bucketKey) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(inc.bucketKey)
	})
}

// Requeue re-inserts an increment after bumping its timestamp.
func (s *Store) Requeue(inc Increment) error {
	inc.bucketKey = nil
	inc.Timestamp = time.Now()
	return s.Enqueue(inc)
}

// Size returns the number of buffered increments.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes increments older than the provided timestamp.
func (s *Store) Cleanup(olderThan time.Time) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var inc Increment
			if err := json.Unmarshal(v, &inc); err != nil {
				continue
			}
			if inc.Timestamp.Before(olderThan) {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildKey(inc Increment) string {
	return fmt.Sprintf("%020d_%s", inc.Timestamp.UnixNano(), inc.ID)
}
