package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/omdb"
	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/Digital-Shane/title-match/internal/provider/httpcache"
	"github.com/rs/zerolog"
)

const providerName = "omdb"

// RateLimit spreads the fan-out of season and episode lookups.
var RateLimit = httpcache.Limit{Requests: 10, Window: time.Second}

// Config configures the OMDb client.
type Config struct {
	KeyFile string
	// AllowMissingEpisodes keeps seasons whose fetched episode count is
	// below the highest episode number OMDb lists for them.
	AllowMissingEpisodes bool
}

// Client searches OMDb through the omdb library. The library always talks
// to omdb.DefaultURL with the short plot and takes no context, so ctx is
// checked before every request.
type Client struct {
	client       *omdb.Client
	allowMissing bool
	logger       zerolog.Logger
}

var _ provider.Provider = (*Client)(nil)

// New loads the API key and builds the client.
func New(cfg Config, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	apiKey, err := provider.LoadCredential(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("omdb: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		client:       omdb.NewClient(apiKey, httpClient),
		allowMissing: cfg.AllowMissingEpisodes,
		logger:       logger.With().Str("component", providerName).Logger(),
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// statusPrefix is how the omdb library reports a non-200 response.
const statusPrefix = "http Status = "

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return provider.TransportError(providerName, err)
	}

	msg := err.Error()
	if code, ok := strings.CutPrefix(msg, statusPrefix); ok {
		if status, convErr := strconv.Atoi(code); convErr == nil {
			pe := provider.StatusCodeError(providerName, status, "OMDb returned status "+code)
			pe.Err = err
			return pe
		}
	}
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "no api key"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "OMDb authentication failed: " + msg,
			Err:      err,
		}
	case strings.Contains(lower, "not found"), strings.Contains(lower, "incorrect imdb id"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  msg,
			Err:      err,
		}
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    msg,
			Retry:      true,
			RetryAfter: 5,
			Err:        err,
		}
	case strings.Contains(lower, "too many results"), strings.Contains(lower, "should be"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  msg,
			Err:      err,
		}
	default:
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeUnknown,
			Message:  msg,
			Err:      err,
		}
	}
}

// parseRuntime converts runtime strings such as "136 min" to seconds.
func parseRuntime(value string) int {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return media.UnknownRuntime
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil {
		return media.UnknownRuntime
	}
	return media.MinutesToSeconds(minutes)
}

// isoDate turns OMDb's "02 Jan 2006" release format into 2006-01-02.
func isoDate(released string) string {
	t, err := time.Parse("02 Jan 2006", strings.TrimSpace(released))
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func plot(value string) string {
	return strings.ReplaceAll(value, `\'`, "'")
}
