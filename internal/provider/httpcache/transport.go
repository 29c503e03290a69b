package httpcache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// FromCacheHeader is set on responses served from the store.
const FromCacheHeader = "X-From-Cache"

// secretParams never take part in cache keys.
var secretParams = []string{"apikey", "api_key", "client_key"}

// Transport is an http.RoundTripper that serves successful GET responses from
// a Store. Keys are prefixed with Namespace so each provider owns its keyspace.
type Transport struct {
	Base      http.RoundTripper
	Store     Store
	Namespace string
	Limiter   *RateLimiter
	Logger    zerolog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	cacheable := t.Store != nil && req.Method == http.MethodGet
	key := ""
	if cacheable {
		key = CacheKey(t.Namespace, req)
		if data, ok := t.Store.Get(key); ok {
			resp, err := decodeEntry(data, req)
			if err == nil {
				t.Logger.Trace().Str("key", key).Msg("cache hit")
				return resp, nil
			}
			t.Logger.Debug().Err(err).Str("key", key).Msg("dropping unreadable cache entry")
		}
	}

	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if !cacheable || resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if data, err := encodeEntry(resp, body); err == nil {
		t.Store.Set(key, data)
	}
	return resp, nil
}

// CacheKey identifies a request within a namespace. Secret query parameters
// are dropped and the remaining ones sorted.
func CacheKey(namespace string, req *http.Request) string {
	u := *req.URL
	q := u.Query()
	for _, p := range secretParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	u.User = nil
	u.Fragment = ""
	var b strings.Builder
	b.WriteString(namespace)
	b.WriteByte(':')
	b.WriteString(req.Method)
	b.WriteByte(':')
	b.WriteString(canonicalURL(&u))
	return b.String()
}

func canonicalURL(u *url.URL) string {
	s := u.String()
	return strings.TrimSuffix(s, "?")
}
