package httpcache

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Options configures a Session.
type Options struct {
	Backend string
	Path    string
	TTL     time.Duration
	Timeout time.Duration
	Base    http.RoundTripper
	Logger  zerolog.Logger
}

// Limit is a per-provider request budget.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Session owns the response store shared by every provider client. Open it
// once per process and Close it at shutdown.
type Session struct {
	store   Store
	base    http.RoundTripper
	timeout time.Duration
	logger  zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// Open creates the store named by opts.Backend.
func Open(opts Options) (*Session, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var store Store
	var err error
	switch opts.Backend {
	case "", BackendBolt:
		if opts.Path == "" {
			return nil, fmt.Errorf("bolt cache requires a path")
		}
		store, err = NewBoltStore(opts.Path, ttl)
	case BackendMemory:
		store, err = NewMemoryStore(ttl, opts.Path)
	case BackendNone:
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewSession(store, opts.Base, timeout, opts.Logger), nil
}

// NewSession wraps an existing store. A nil store disables caching.
func NewSession(store Store, base http.RoundTripper, timeout time.Duration, logger zerolog.Logger) *Session {
	return &Session{
		store:   store,
		base:    base,
		timeout: timeout,
		logger:  logger.With().Str("component", "httpcache").Logger(),
	}
}

// Client returns an http.Client whose responses are cached under namespace
// and rate limited by limit.
func (s *Session) Client(namespace string, limit Limit) *http.Client {
	return &http.Client{
		Timeout: s.timeout,
		Transport: &Transport{
			Base:      s.base,
			Store:     s.store,
			Namespace: namespace,
			Limiter:   NewRateLimiter(limit.Requests, limit.Window),
			Logger:    s.logger.With().Str("namespace", namespace).Logger(),
		},
	}
}

// Close flushes and closes the store. Calling Close twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.store == nil {
		s.closed = true
		return nil
	}
	s.closed = true
	return s.store.Close()
}
