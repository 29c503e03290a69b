package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/Digital-Shane/title-match/internal/provider/httpcache"
	"github.com/rs/zerolog"
)

const (
	providerName      = "tvdb"
	defaultBaseURL    = "https://api4.thetvdb.com/v4/"
	defaultLanguage   = "eng"
	defaultSeasonType = "official"
	tokenLifetime     = 24 * time.Hour
)

// RateLimit is a conservative budget; TVDB does not publish a hard ceiling.
var RateLimit = httpcache.Limit{Requests: 20, Window: time.Second}

// Config configures the TVDB client.
type Config struct {
	KeyFile    string
	Language   string // three letter code, e.g. eng
	SeasonType string // official, dvd, absolute, alternate, regional
	BaseURL    string
}

// Client searches TVDB v4. The bearer token is obtained lazily and
// refreshed after tokenLifetime.
type Client struct {
	http       *http.Client
	apiKey     string
	baseURL    string
	language   string
	seasonType string
	logger     zerolog.Logger
	now        func() time.Time

	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

var _ provider.Provider = (*Client)(nil)

// New loads the API key from cfg.KeyFile. No request is made until the first search.
func New(cfg Config, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	apiKey, err := provider.LoadCredential(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("tvdb: %w", err)
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
	c := &Client{
		http:       httpClient,
		apiKey:     apiKey,
		baseURL:    baseURL,
		language:   cfg.Language,
		seasonType: cfg.SeasonType,
		logger:     logger.With().Str("component", providerName).Logger(),
		now:        time.Now,
	}
	if c.language == "" {
		c.language = defaultLanguage
	}
	if c.seasonType == "" {
		c.seasonType = defaultSeasonType
	}
	return c, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// authenticate gets or refreshes the bearer token.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		token := c.token
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have logged in while we waited for the write lock.
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(loginRequest{APIKey: c.apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", provider.TransportError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Msg("authentication failed")
		return "", provider.StatusError(providerName, resp)
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return "", fmt.Errorf("tvdb: failed to decode login response: %w", err)
	}
	if login.Data.Token == "" {
		return "", &provider.ProviderError{Provider: providerName, Code: provider.CodeAuthFailed, Message: "login returned no token"}
	}

	c.token = login.Data.Token
	c.tokenExpiry = c.now().Add(tokenLifetime)
	c.logger.Debug().Msg("authentication successful")
	return c.token, nil
}

// get issues an authenticated GET and decodes the response envelope into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	token, err := c.authenticate(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + strings.TrimPrefix(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return provider.TransportError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
	}
	if resp.StatusCode != http.StatusOK {
		return provider.StatusError(providerName, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tvdb: failed to decode %s: %w", endpoint, err)
	}
	return nil
}
