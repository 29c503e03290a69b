package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
)

// SearchSeries runs search/tv and expands each hit with its details and seasons.
func (c *Client) SearchSeries(ctx context.Context, req provider.SearchRequest) ([]*media.Series, error) {
	params := url.Values{
		"query":    {req.Query},
		"language": {c.language},
	}
	if req.Year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(req.Year))
	}
	if c.includeAdult {
		params.Set("include_adult", "true")
	}

	var resp tvSearchResponse
	if err := c.get(ctx, "search/tv", params, &resp); err != nil {
		return nil, err
	}

	hits := provider.Truncate(resp.Results, req.EffectiveLimit())
	out := make([]*media.Series, 0, len(hits))
	for _, hit := range hits {
		if hit.ID == 0 {
			continue
		}
		series := c.seriesFromSearch(ctx, hit)
		if err := c.expandSeries(ctx, hit.ID, series); err != nil {
			return out, err
		}
		series.PruneEmptySeasons()
		if !series.Valid() {
			c.logger.Debug().Int("id", hit.ID).Str("name", hit.Name).Msg("dropping incomplete series")
			continue
		}
		out = append(out, series)
	}
	return out, nil
}

func (c *Client) seriesFromSearch(ctx context.Context, hit tvSearchResult) *media.Series {
	series := media.NewSeries(media.SourceTMDB)
	series.IDs[providerName] = strconv.Itoa(hit.ID)
	series.Name = hit.Name
	series.OriginalName = hit.OriginalName
	series.Overview = hit.Overview
	series.SetAirDate(hit.FirstAirDate)
	series.PosterPath = hit.PosterPath
	series.BackdropPath = hit.BackdropPath
	for _, name := range c.genreNames(ctx, "tv", hit.GenreIDs) {
		series.AddGenre(name)
	}
	return series
}

// expandSeries fills networks, external ids and every season. A missing
// details or season payload leaves the corresponding fields unset.
func (c *Client) expandSeries(ctx context.Context, id int, series *media.Series) error {
	var details tvDetails
	params := url.Values{"language": {c.language}, "append_to_response": {"external_ids"}}
	if err := c.get(ctx, "tv/"+strconv.Itoa(id), params, &details); err != nil {
		if provider.IsNotFound(err) {
			return nil
		}
		return err
	}
	applyDetails(series, details)

	for _, summary := range details.Seasons {
		if summary.SeasonNumber == nil {
			continue
		}
		var season seasonDetails
		endpoint := fmt.Sprintf("tv/%d/season/%d", id, *summary.SeasonNumber)
		if err := c.get(ctx, endpoint, url.Values{"language": {c.language}}, &season); err != nil {
			if provider.IsNotFound(err) {
				continue
			}
			return err
		}
		applySeason(series, *summary.SeasonNumber, season)
	}
	return nil
}

func applyDetails(series *media.Series, details tvDetails) {
	if details.BackdropPath != "" {
		series.BackdropPath = details.BackdropPath
	}
	for _, g := range details.Genres {
		series.AddGenre(g.Name)
	}
	for _, n := range details.Networks {
		series.Networks = append(series.Networks, media.Network{
			ID:            idString(n.ID),
			LogoPath:      n.LogoPath,
			Name:          n.Name,
			OriginCountry: n.OriginCountry,
		})
	}
	if details.ExternalIDs.IMDbID != "" {
		series.IDs["imdb"] = details.ExternalIDs.IMDbID
	}
	if details.ExternalIDs.TVDBID > 0 {
		series.IDs["tvdb"] = strconv.Itoa(details.ExternalIDs.TVDBID)
	}
	for _, summary := range details.Seasons {
		if summary.SeasonNumber == nil {
			continue
		}
		n := *summary.SeasonNumber
		if _, exists := series.Seasons[n]; !exists {
			season := media.NewSeason(n)
			season.SeriesName = series.Name
			series.Seasons[n] = season
		}
	}
}

func applySeason(series *media.Series, number int, details seasonDetails) {
	season := series.Seasons[number]
	if season == nil {
		season = media.NewSeason(number)
		season.SeriesName = series.Name
		series.Seasons[number] = season
	}
	if details.ID != 0 {
		season.IDs[providerName] = strconv.Itoa(details.ID)
	}
	season.Name = details.Name
	season.Overview = details.Overview
	season.PosterPath = details.PosterPath

	for _, raw := range details.Episodes {
		ep := media.NewEpisode()
		ep.SeriesName = series.Name
		ep.Number = raw.EpisodeNumber
		ep.SeasonNumber = number
		if raw.SeasonNumber != nil {
			ep.SeasonNumber = *raw.SeasonNumber
		}
		if raw.ID != 0 {
			ep.IDs[providerName] = strconv.Itoa(raw.ID)
		}
		ep.Name = raw.Name
		ep.Overview = raw.Overview
		ep.Type = raw.EpisodeType
		ep.StillPath = raw.StillPath
		if raw.Runtime != nil {
			ep.Runtime = media.MinutesToSeconds(*raw.Runtime)
		}
		switch {
		case raw.SeriesID != 0:
			ep.SeriesID = strconv.Itoa(raw.SeriesID)
		case raw.ShowID != 0:
			ep.SeriesID = strconv.Itoa(raw.ShowID)
		default:
			ep.SeriesID = series.IDs[providerName]
		}
		// Episodes listed under the wrong season are ignored.
		if ep.Valid() {
			_ = season.AddEpisode(ep)
		}
	}
}

// SearchMovies runs search/movie and expands each hit with its details.
func (c *Client) SearchMovies(ctx context.Context, req provider.SearchRequest) ([]*media.Movie, error) {
	params := url.Values{
		"query":    {req.Query},
		"language": {c.language},
	}
	if req.Year > 0 {
		params.Set("year", strconv.Itoa(req.Year))
	}
	if c.includeAdult {
		params.Set("include_adult", "true")
	}

	var resp movieSearchResponse
	if err := c.get(ctx, "search/movie", params, &resp); err != nil {
		return nil, err
	}

	hits := provider.Truncate(resp.Results, req.EffectiveLimit())
	out := make([]*media.Movie, 0, len(hits))
	for _, hit := range hits {
		if hit.ID == 0 {
			continue
		}
		movie := media.NewMovie(media.SourceTMDB)
		movie.IDs[providerName] = strconv.Itoa(hit.ID)
		movie.Name = hit.Title
		movie.OriginalName = hit.OriginalTitle
		movie.Overview = hit.Overview
		movie.SetReleaseDate(hit.ReleaseDate)
		movie.PosterPath = hit.PosterPath
		movie.BackdropPath = hit.BackdropPath
		for _, name := range c.genreNames(ctx, "movie", hit.GenreIDs) {
			movie.AddGenre(name)
		}

		var details movieDetails
		params := url.Values{"language": {c.language}, "append_to_response": {"external_ids"}}
		err := c.get(ctx, "movie/"+strconv.Itoa(hit.ID), params, &details)
		switch {
		case err == nil:
			applyMovieDetails(movie, details)
		case !provider.IsNotFound(err):
			return out, err
		}

		if !movie.Valid() {
			c.logger.Debug().Int("id", hit.ID).Str("title", hit.Title).Msg("dropping incomplete movie")
			continue
		}
		out = append(out, movie)
	}
	return out, nil
}

func applyMovieDetails(movie *media.Movie, details movieDetails) {
	imdb := details.IMDbID
	if imdb == "" {
		imdb = details.ExternalIDs.IMDbID
	}
	if imdb != "" {
		movie.IDs["imdb"] = imdb
	}
	if details.Runtime != nil {
		movie.Runtime = media.MinutesToSeconds(*details.Runtime)
	}
	for _, g := range details.Genres {
		movie.AddGenre(g.Name)
	}
	if details.BackdropPath != "" {
		movie.BackdropPath = details.BackdropPath
	}
	if col := details.BelongsToCollection; col != nil {
		if col.ID != 0 {
			movie.CollectionIDs[providerName] = strconv.Itoa(col.ID)
		}
		movie.CollectionName = col.Name
		movie.CollectionBackdropPath = col.BackdropPath
	}
}

func idString(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}
