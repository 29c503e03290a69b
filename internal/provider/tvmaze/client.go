package tvmaze

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/Digital-Shane/title-match/internal/provider/httpcache"
	"github.com/rs/zerolog"
)

const (
	providerName   = "tvmaze"
	defaultBaseURL = "https://api.tvmaze.com/"
)

// RateLimit follows the public API allowance of 20 calls every 10 seconds.
var RateLimit = httpcache.Limit{Requests: 20, Window: 10 * time.Second}

// Config configures the TVmaze client. The public API needs no key.
type Config struct {
	BaseURL string
}

// Client searches TVmaze.
type Client struct {
	http    *http.Client
	baseURL string
	logger  zerolog.Logger
}

var _ provider.Provider = (*Client)(nil)

// New returns a TVmaze client.
func New(cfg Config, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		logger:  logger.With().Str("component", providerName).Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + strings.TrimPrefix(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return provider.TransportError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.StatusError(providerName, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tvmaze: failed to decode %s: %w", endpoint, err)
	}
	return nil
}
