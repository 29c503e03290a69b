package httpcache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps responses in process memory, optionally persisted to a
// gob snapshot that is loaded on open and written on Close.
type MemoryStore struct {
	cache *cache.Cache
	path  string
}

// NewMemoryStore creates a store with the given ttl. When path is non-empty a
// previous snapshot is loaded from it.
func NewMemoryStore(ttl time.Duration, path string) (*MemoryStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		cache: cache.New(ttl, 10*time.Minute),
		path:  path,
	}
	if path == "" {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		// A corrupt snapshot only costs a cold cache.
		_ = s.cache.LoadFile(path)
		s.cache.DeleteExpired()
	}
	return s, nil
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

func (s *MemoryStore) Set(key string, value []byte) {
	s.cache.SetDefault(key, value)
}

// Close writes the snapshot when the store was opened with a path.
func (s *MemoryStore) Close() error {
	if s.path == "" {
		return nil
	}
	s.cache.DeleteExpired()
	if err := s.cache.SaveFile(s.path); err != nil {
		return fmt.Errorf("failed to save cache snapshot: %w", err)
	}
	return nil
}
