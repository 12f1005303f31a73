package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samvad-hq/jsonfetch/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	exampleBucket = "examples"
	idKeyBytes    = 8
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(exampleBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db, now: time.Now}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// List returns every example ordered by id.
func (b *boltStore) List() ([]domain.Example, error) {
	out := []domain.Example{}
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := examples(tx)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(_, v []byte) error {
			var ex domain.Example
			if err := json.Unmarshal(v, &ex); err != nil {
				return fmt.Errorf("decode example: %w", err)
			}
			out = append(out, ex)
			return nil
		})
	})
	return out, err
}

// Get returns the example stored under id.
func (b *boltStore) Get(id uint64) (domain.Example, error) {
	var ex domain.Example
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := examples(tx)
		if err != nil {
			return err
		}
		return load(bucket, id, &ex)
	})
	return ex, err
}

// Create stores a new example under the bucket's next sequence number.
func (b *boltStore) Create(ex domain.Example) (domain.Example, error) {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := examples(tx)
		if err != nil {
			return err
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		now := b.now().UTC()
		ex.ID = seq
		ex.CreatedAt = now
		ex.UpdatedAt = now
		return save(bucket, ex)
	})
	if err != nil {
		return domain.Example{}, err
	}
	return ex, nil
}

// Update rewrites name and description of an existing example.
func (b *boltStore) Update(id uint64, name, description string) (domain.Example, error) {
	var ex domain.Example
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := examples(tx)
		if err != nil {
			return err
		}
		if err := load(bucket, id, &ex); err != nil {
			return err
		}
		ex.Name = name
		ex.Description = description
		ex.UpdatedAt = b.now().UTC()
		return save(bucket, ex)
	})
	if err != nil {
		return domain.Example{}, err
	}
	return ex, nil
}

// Delete removes the example stored under id.
func (b *boltStore) Delete(id uint64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := examples(tx)
		if err != nil {
			return err
		}
		key := encodeID(id)
		if bucket.Get(key) == nil {
			return ErrNotFound
		}
		return bucket.Delete(key)
	})
}

// Count returns the number of stored examples.
func (b *boltStore) Count() (int, error) {
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := examples(tx)
		if err != nil {
			return err
		}
		c := bucket.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func examples(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(exampleBucket))
	if bucket == nil {
		return nil, fmt.Errorf("example bucket missing")
	}
	return bucket, nil
}

func load(bucket *bolt.Bucket, id uint64, ex *domain.Example) error {
	raw := bucket.Get(encodeID(id))
	if raw == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, ex); err != nil {
		return fmt.Errorf("decode example %d: %w", id, err)
	}
	return nil
}

func save(bucket *bolt.Bucket, ex domain.Example) error {
	raw, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encode example %d: %w", ex.ID, err)
	}
	return bucket.Put(encodeID(ex.ID), raw)
}

// encodeID keys examples big-endian so cursor order matches id order.
func encodeID(id uint64) []byte {
	buf := make([]byte, idKeyBytes)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}
