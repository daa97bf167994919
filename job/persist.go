package job

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var jobsBucket = []byte("jobs")

// Store optionally mirrors completed job records into bbolt so job history
// survives a process restart. The in-memory Registry stays authoritative
// for the current process — the job guarantees hold against it, not this
// sidecar — and Store is additive durability: Registry.AttachStore wires a
// Store in, reloading its records into the registry's history and mirroring
// every job that reaches a terminal state back out. Grounded on
// cmd/crisk-check-server/main.go's bolt.Open(path, 0600, nil) usage, the
// pack's only embedded-KV consumer.
type Store struct {
	db *bolt.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("job: open bbolt store at %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(jobsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("job: create jobs bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save mirrors one job record, keyed by its id.
func (s *Store) Save(j Job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("job: marshal record %s: %w", j.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).Put([]byte(j.ID), data)
	})
}

// Load reads back every mirrored job record, for restoring a Registry's
// history on startup.
func (s *Store) Load() (map[string]Job, error) {
	out := make(map[string]Job)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).ForEach(func(k, v []byte) error {
			var j Job
			if err := json.Unmarshal(v, &j); err != nil {
				return fmt.Errorf("job: unmarshal record %s: %w", k, err)
			}
			out[j.ID] = j
			return nil
		})
	})
	return out, err
}
