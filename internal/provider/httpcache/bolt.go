package httpcache

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	dbDirMode  = 0755
	dbFileMode = 0600
)

var responsesBucket = []byte("responses")

// BoltStore persists responses in a bbolt database. Each value is prefixed
// with its expiry as unix nanoseconds.
type BoltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// NewBoltStore opens (or creates) the database at path and drops expired entries.
func NewBoltStore(path string, ttl time.Duration) (*BoltStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(filepath.Dir(path), dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	db, err := bolt.Open(path, dbFileMode, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	s := &BoltStore{db: db, ttl: ttl, now: time.Now}
	if err := s.purge(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) Get(key string) ([]byte, bool) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(responsesBucket)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(key))
		if len(raw) < 8 {
			return nil
		}
		expires := int64(binary.BigEndian.Uint64(raw[:8]))
		if s.now().UnixNano() > expires {
			return nil
		}
		// raw is only valid inside the transaction.
		value = append([]byte(nil), raw[8:]...)
		return nil
	})
	if err != nil || value == nil {
		return nil, false
	}
	return value, true
}

func (s *BoltStore) Set(key string, value []byte) {
	raw := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(raw[:8], uint64(s.now().Add(s.ttl).UnixNano()))
	copy(raw[8:], value)
	_ = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(responsesBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), raw)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// purge removes expired entries.
func (s *BoltStore) purge() error {
	now := s.now().UnixNano()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(responsesBucket)
		if err != nil {
			return err
		}
		var expired [][]byte
		err = b.ForEach(func(k, v []byte) error {
			if len(v) < 8 || int64(binary.BigEndian.Uint64(v[:8])) < now {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge expired responses: %w", err)
	}
	return nil
}
