package omdb

import (
	"context"
	"strconv"

	"github.com/Digital-Shane/omdb"
	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
)

// SearchSeries runs an s= search restricted to series and expands each hit
// with its details, seasons and episodes.
func (c *Client) SearchSeries(ctx context.Context, req provider.SearchRequest) ([]*media.Series, error) {
	hits, err := c.search(ctx, "series", req)
	if err != nil {
		return nil, err
	}

	out := make([]*media.Series, 0, len(hits))
	for _, hit := range hits {
		imdbID := media.Present(hit.ImdbID)
		if imdbID == "" {
			continue
		}
		details, err := c.fetchSeries(ctx, imdbID)
		if err != nil {
			return out, err
		}

		series := media.NewSeries(media.SourceOMDb)
		series.IDs["imdb"] = imdbID
		if details != nil {
			titleFields{details.Title, details.Plot, details.Poster, details.Genre}.
				apply(&series.Name, &series.Overview, &series.PosterPath, series.AddGenre)
			series.SetAirDate(isoDate(details.Released))
			if year := firstYear(details.Year); year > 0 {
				series.Year = year
			}
			if err := c.addSeasons(ctx, series, details.TotalSeasons); err != nil {
				return out, err
			}
		}

		series.PruneEmptySeasons()
		if !series.Valid() {
			c.logger.Debug().Str("imdb", imdbID).Str("title", hit.Title).Msg("dropping incomplete series")
			continue
		}
		out = append(out, series)
	}
	return out, nil
}

// SearchMovies runs an s= search restricted to movies and expands each hit.
func (c *Client) SearchMovies(ctx context.Context, req provider.SearchRequest) ([]*media.Movie, error) {
	hits, err := c.search(ctx, "movie", req)
	if err != nil {
		return nil, err
	}

	out := make([]*media.Movie, 0, len(hits))
	for _, hit := range hits {
		imdbID := media.Present(hit.ImdbID)
		if imdbID == "" {
			continue
		}
		details, err := c.fetchMovie(ctx, imdbID)
		if err != nil {
			return out, err
		}

		movie := media.NewMovie(media.SourceOMDb)
		movie.IDs["imdb"] = imdbID
		if details != nil {
			titleFields{details.Title, details.Plot, details.Poster, details.Genre}.
				apply(&movie.Name, &movie.Overview, &movie.PosterPath, movie.AddGenre)
			movie.SetReleaseDate(isoDate(details.Released))
			if year := firstYear(details.Year); year > 0 {
				movie.Year = year
			}
			movie.Runtime = parseRuntime(media.Present(details.Runtime))
		}

		if !movie.Valid() {
			c.logger.Debug().Str("imdb", imdbID).Str("title", hit.Title).Msg("dropping incomplete movie")
			continue
		}
		out = append(out, movie)
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, kind string, req provider.SearchRequest) ([]omdb.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := omdb.QueryData{Title: req.Query, SearchType: kind}
	if req.Year > 0 {
		query.Year = strconv.Itoa(req.Year)
	}
	resp, err := c.client.SearchByText(query)
	if err != nil {
		err = mapError(err)
		if provider.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return provider.Truncate(resp.Search, req.EffectiveLimit()), nil
}
