// Package fanart fetches artwork from fanart.tv and files it under the
// canonical artwork types.
package fanart

import (
	"context"
	"encoding/json"
	"errors"
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
	providerName   = "fanarttv"
	defaultBaseURL = "https://webservice.fanart.tv/v3/"
)

// RateLimit keeps artwork lookups polite; fanart.tv does not publish a limit.
var RateLimit = httpcache.Limit{Requests: 10, Window: time.Second}

// Config configures the fanart.tv client.
type Config struct {
	ProjectKeyFile string // required project api_key
	ClientKeyFile  string // optional personal client_key
	BaseURL        string
}

// Client fetches series and movie artwork.
type Client struct {
	http       *http.Client
	projectKey string
	clientKey  string
	baseURL    string
	logger     zerolog.Logger
}

// New loads the project key, and the client key when one is configured.
func New(cfg Config, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	projectKey, err := provider.LoadCredential(cfg.ProjectKeyFile)
	if err != nil {
		return nil, fmt.Errorf("fanart.tv: %w", err)
	}
	var clientKey string
	if cfg.ClientKeyFile != "" {
		clientKey, err = provider.LoadCredential(cfg.ClientKeyFile)
		if err != nil && !errors.Is(err, provider.ErrMissingCredential) {
			return nil, fmt.Errorf("fanart.tv: %w", err)
		}
	}
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
		http:       httpClient,
		projectKey: projectKey,
		clientKey:  clientKey,
		baseURL:    baseURL,
		logger:     logger.With().Str("component", providerName).Logger(),
	}, nil
}

// Name returns the id key used on fetched artwork.
func (c *Client) Name() string {
	return providerName
}

// get decodes endpoint into out. A 404 leaves out untouched and returns nil.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	params := url.Values{"api_key": {c.projectKey}}
	if c.clientKey != "" {
		params.Set("client_key", c.clientKey)
	}
	u := c.baseURL + strings.TrimPrefix(endpoint, "/") + "?" + params.Encode()
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

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode != http.StatusOK:
		return provider.StatusError(providerName, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fanart.tv: failed to decode %s: %w", endpoint, err)
	}
	return nil
}
