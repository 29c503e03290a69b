package tmdb

import (
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
	providerName   = "tmdb"
	defaultBaseURL = "https://api.themoviedb.org/3/"
)

// RateLimit keeps requests under TMDB's documented ceiling.
var RateLimit = httpcache.Limit{Requests: 38, Window: 10 * time.Second}

// Config configures the TMDB client.
type Config struct {
	KeyFile      string // file holding the v4 read access token
	Language     string // e.g. en-US
	IncludeAdult bool
	BaseURL      string
}

// Client searches TMDB and normalizes results into media entities.
type Client struct {
	http         *http.Client
	token        string
	baseURL      string
	language     string
	includeAdult bool
	logger       zerolog.Logger

	genresMu sync.Mutex
	genres   map[string]map[int]string // "tv"/"movie" -> id -> name
}

var _ provider.Provider = (*Client)(nil)

// New loads the bearer token from cfg.KeyFile and returns a ready client.
func New(cfg Config, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	token, err := provider.LoadCredential(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("tmdb: %w", err)
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
	language := cfg.Language
	if language == "" {
		language = "en-US"
	}
	return &Client{
		http:         httpClient,
		token:        token,
		baseURL:      baseURL,
		language:     language,
		includeAdult: cfg.IncludeAdult,
		logger:       logger.With().Str("component", providerName).Logger(),
		genres:       make(map[string]map[int]string),
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// get issues an authenticated GET and decodes the JSON body into out.
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
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return provider.TransportError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.StatusError(providerName, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: failed to decode %s: %w", endpoint, err)
	}
	return nil
}

// genreNames resolves genre ids through genre/{kind}/list, fetched once per client.
func (c *Client) genreNames(ctx context.Context, kind string, ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	c.genresMu.Lock()
	table, ok := c.genres[kind]
	c.genresMu.Unlock()

	if !ok {
		var resp genreListResponse
		params := url.Values{"language": {c.language}}
		if err := c.get(ctx, "genre/"+kind+"/list", params, &resp); err != nil {
			c.logger.Debug().Err(err).Str("kind", kind).Msg("genre list unavailable")
			return nil
		}
		table = make(map[int]string, len(resp.Genres))
		for _, g := range resp.Genres {
			table[g.ID] = g.Name
		}
		c.genresMu.Lock()
		c.genres[kind] = table
		c.genresMu.Unlock()
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := table[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
