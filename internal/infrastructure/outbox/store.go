package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	jobsBucket   = []byte("jobs")
	claimsBucket = []byte("dispatch_claims")
)

// Store persists pending jobs in BoltDB so they survive a restart between the
// response and their execution. It also keeps the fallback dispatch ledger.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures the buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{jobsBucket, claimsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Enqueue stores a job using a priority-aware key.
func (s *Store) Enqueue(job Job) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	job.normalize()
	job.bucketKey = []byte(buildKey(job))

	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).Put(job.bucketKey, payload)
	})
}

// GetBatch returns up to limit jobs in key order without removing them.
func (s *Store) GetBatch(limit int) ([]Job, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var jobs []Job
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(jobsBucket).Cursor()
		for k, v := c.First(); k != nil && len(jobs) < limit; k, v = c.Next() {
			var job Job
			if err := json.Unmarshal(v, &job); err != nil {
				continue
			}
			job.bucketKey = append([]byte(nil), k...)
			jobs = append(jobs, job)
		}
		return nil
	})
	return jobs, err
}

// Take removes up to limit jobs in key order and returns them. Removal and
// read share one transaction, so a job is handed out at most once even when
// drains overlap; a process crash after Take loses the job.
func (s *Store) Take(limit int) ([]Job, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var jobs []Job
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(jobsBucket).Cursor()
		for k, v := c.First(); k != nil && len(jobs) < limit; k, v = c.Next() {
			var job Job
			if err := json.Unmarshal(v, &job); err == nil {
				job.bucketKey = append([]byte(nil), k...)
				jobs = append(jobs, job)
			}
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Remove deletes the job from the queue.
func (s *Store) Remove(job Job) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if len(job.bucketKey) == 0 {
		return s.deleteByID(job.ID)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).Delete(job.bucketKey)
	})
}

// Requeue moves a job to the back of its priority lane with one more attempt recorded.
func (s *Store) Requeue(job Job) error {
	if err := s.Remove(job); err != nil {
		return err
	}
	job.bucketKey = nil
	job.Attempts++
	job.Timestamp = time.Now()
	return s.Enqueue(job)
}

// Size returns the number of pending jobs.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(jobsBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Ping reports whether the database file is open.
func (s *Store) Ping() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(jobsBucket) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

// Claim implements the dispatch ledger on top of Bolt for deployments without Redis.
// An expired claim may be taken again.
func (s *Store) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if s == nil || s.db == nil {
		return false, bolt.ErrDatabaseNotOpen
	}

	now := time.Now()
	claimed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(claimsBucket)
		if raw := b.Get([]byte(key)); raw != nil {
			var until time.Time
			if err := until.UnmarshalText(raw); err == nil && now.Before(until) {
				return nil
			}
		}
		until, err := now.Add(ttl).UTC().MarshalText()
		if err != nil {
			return err
		}
		claimed = true
		return b.Put([]byte(key), until)
	})
	return claimed, err
}

// Cleanup drops jobs enqueued before olderThan and expired claims.
func (s *Store) Cleanup(olderThan time.Time) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	now := time.Now()
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(jobsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var job Job
			if err := json.Unmarshal(v, &job); err != nil {
				continue
			}
			if job.Timestamp.Before(olderThan) {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}

		cc := tx.Bucket(claimsBucket).Cursor()
		for k, v := cc.First(); k != nil; k, v = cc.Next() {
			var until time.Time
			if err := until.UnmarshalText(v); err != nil || until.Before(now) {
				if err := cc.Delete(); err != nil {
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

// Stats exposes Bolt statistics for the health endpoint.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

func (s *Store) deleteByID(id string) error {
	if id == "" {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(jobsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var job Job
			if err := json.Unmarshal(v, &job); err != nil {
				continue
			}
			if job.ID == id {
				return c.Delete()
			}
		}
		return nil
	})
}

func buildKey(job Job) string {
	return fmt.Sprintf("%d_%020d_%s", job.Priority, job.Timestamp.UnixNano(), job.ID)
}
