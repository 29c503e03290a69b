package httpcache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTTL is how long a cached response stays fresh.
const DefaultTTL = 30 * 24 * time.Hour

// Store is a keyed byte store with expiry. Implementations must be safe for
// concurrent use; concurrent Sets of the same key may both win.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Close() error
}

// entry is the serialized form of a cached response.
type entry struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func encodeEntry(resp *http.Response, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	e := entry{StatusCode: resp.StatusCode, Header: resp.Header.Clone(), Body: body}
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, fmt.Errorf("failed to encode cached response: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeEntry(data []byte, req *http.Request) (*http.Response, error) {
	var e entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to decode cached response: %w", err)
	}
	header := e.Header
	if header == nil {
		header = make(http.Header)
	}
	header.Set(FromCacheHeader, "1")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode)),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}, nil
}
