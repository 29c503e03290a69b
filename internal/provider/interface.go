package provider

import (
	"context"

	"github.com/Digital-Shane/title-match/internal/media"
)

// DefaultLimit caps how many search hits a provider expands into full entities.
const DefaultLimit = 5

// Mode selects which catalog search a query runs against.
type Mode string

const (
	ModeSeries Mode = "series"
	ModeMovie  Mode = "movie"
)

// Provider is the contract every catalog client implements. Providers that
// have no movie catalog return an empty slice from SearchMovies.
type Provider interface {
	// Name is the catalog tag used for ids and Source fields.
	Name() string

	// SearchSeries returns fully populated, valid series in catalog order.
	SearchSeries(ctx context.Context, req SearchRequest) ([]*media.Series, error)

	// SearchMovies returns fully populated, valid movies in catalog order.
	SearchMovies(ctx context.Context, req SearchRequest) ([]*media.Movie, error)
}

// SearchRequest is one user query.
type SearchRequest struct {
	Query string
	Year  int // 0 means any year
	Limit int // <= 0 means DefaultLimit
}

// EffectiveLimit returns the limit to apply before detail expansion.
func (r SearchRequest) EffectiveLimit() int {
	if r.Limit <= 0 {
		return DefaultLimit
	}
	return r.Limit
}

// Truncate returns at most limit leading items of items.
func Truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
