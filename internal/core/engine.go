package core

import (
	"context"
	"sync"

	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/mhmtszr/concurrent-swiss-map"
	"github.com/rs/zerolog"
)

// ProviderFailure records a provider whose search did not complete. The
// other providers' results are still returned.
type ProviderFailure struct {
	Provider string
	Err      error
}

// SearchResult is the aggregated outcome of one query across all providers.
type SearchResult struct {
	Mode     provider.Mode
	Request  provider.SearchRequest
	Series   []*media.Series
	Movies   []*media.Movie
	Failures []ProviderFailure
}

// Len returns the number of candidates for the result's mode.
func (r SearchResult) Len() int {
	if r.Mode == provider.ModeMovie {
		return len(r.Movies)
	}
	return len(r.Series)
}

type providerResult struct {
	series []*media.Series
	movies []*media.Movie
	err    error
}

// SearchEngine fans a query out to every provider concurrently and
// concatenates the results in provider declaration order.
type SearchEngine struct {
	providers []provider.Provider
	logger    zerolog.Logger
}

// NewSearchEngine keeps providers in the order given.
func NewSearchEngine(providers []provider.Provider, logger zerolog.Logger) *SearchEngine {
	return &SearchEngine{
		providers: providers,
		logger:    logger.With().Str("component", "search").Logger(),
	}
}

// Providers returns provider names in declaration order.
func (e *SearchEngine) Providers() []string {
	names := make([]string, 0, len(e.providers))
	for _, p := range e.providers {
		names = append(names, p.Name())
	}
	return names
}

// Search runs req against every provider. Results are not interleaved or
// deduplicated across providers.
func (e *SearchEngine) Search(ctx context.Context, mode provider.Mode, req provider.SearchRequest) SearchResult {
	results := csmap.Create[string, providerResult]()

	var wg sync.WaitGroup
	for _, p := range e.providers {
		wg.Add(1)
		go func(p provider.Provider) {
			defer wg.Done()
			results.Store(p.Name(), e.searchOne(ctx, p, mode, req))
		}(p)
	}
	wg.Wait()

	out := SearchResult{
		Mode:    mode,
		Request: req,
		Series:  []*media.Series{},
		Movies:  []*media.Movie{},
	}
	for _, p := range e.providers {
		res, ok := results.Load(p.Name())
		if !ok {
			continue
		}
		if res.err != nil {
			e.logger.Warn().Err(res.err).Str("provider", p.Name()).Str("query", req.Query).Msg("provider search failed")
			out.Failures = append(out.Failures, ProviderFailure{Provider: p.Name(), Err: res.err})
			continue
		}
		out.Series = append(out.Series, res.series...)
		out.Movies = append(out.Movies, res.movies...)
	}

	e.logger.Debug().
		Str("mode", string(mode)).
		Str("query", req.Query).
		Int("candidates", out.Len()).
		Int("failures", len(out.Failures)).
		Msg("search complete")
	return out
}

func (e *SearchEngine) searchOne(ctx context.Context, p provider.Provider, mode provider.Mode, req provider.SearchRequest) providerResult {
	var res providerResult
	switch mode {
	case provider.ModeMovie:
		res.movies, res.err = p.SearchMovies(ctx, req)
	default:
		res.series, res.err = p.SearchSeries(ctx, req)
	}
	return res
}
