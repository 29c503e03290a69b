package tvdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
)

// Artwork type ids in series/{id}/extended.
const (
	artworkBanner = 1
	artworkPoster = 2
)

// maxEpisodePages bounds pagination of the episodes endpoint.
const maxEpisodePages = 20

// SearchSeries searches TVDB and expands every hit with extended details,
// translations and episodes of the configured season type.
func (c *Client) SearchSeries(ctx context.Context, req provider.SearchRequest) ([]*media.Series, error) {
	limit := req.EffectiveLimit()
	params := url.Values{
		"query":    {req.Query},
		"type":     {"series"},
		"language": {c.language},
		"limit":    {strconv.Itoa(limit)},
	}
	if req.Year > 0 {
		params.Set("year", strconv.Itoa(req.Year))
	}

	var resp searchResponse
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil, err
	}

	hits := provider.Truncate(resp.Data, limit)
	out := make([]*media.Series, 0, len(hits))
	for _, hit := range hits {
		if hit.TVDBID == "" {
			continue
		}
		series, err := c.expandSeries(ctx, hit)
		if err != nil {
			return out, err
		}
		series.PruneEmptySeasons()
		if !series.Valid() {
			c.logger.Debug().Str("id", hit.TVDBID).Str("name", hit.Name).Msg("dropping incomplete series")
			continue
		}
		out = append(out, series)
	}
	return out, nil
}

// SearchMovies is unsupported; TVDB is used for series only.
func (c *Client) SearchMovies(ctx context.Context, req provider.SearchRequest) ([]*media.Movie, error) {
	return []*media.Movie{}, nil
}

func (c *Client) expandSeries(ctx context.Context, hit searchResult) (*media.Series, error) {
	series := media.NewSeries(media.SourceTVDB)
	series.IDs[providerName] = hit.TVDBID
	series.OriginalName = hit.Name
	series.SetAirDate(hit.FirstAirTime)
	if year, err := strconv.Atoi(hit.Year); err == nil && year > 0 {
		series.Year = year
	}
	if hit.Network != "" {
		series.Networks = append(series.Networks, media.Network{Name: hit.Network})
	}

	var translation translationResponse
	endpoint := fmt.Sprintf("series/%s/translations/%s", hit.TVDBID, c.language)
	if err := c.get(ctx, endpoint, nil, &translation); err != nil && !provider.IsNotFound(err) {
		return nil, err
	}
	series.Name = translation.Data.Name
	if series.Name == "" {
		series.Name = hit.Name
	}
	series.Overview = translation.Data.Overview

	var extended extendedResponse
	err := c.get(ctx, "series/"+hit.TVDBID+"/extended", nil, &extended)
	switch {
	case provider.IsNotFound(err):
		return series, nil
	case err != nil:
		return nil, err
	}
	c.applyExtended(series, extended.Data)

	if err := c.addEpisodes(ctx, series); err != nil {
		return nil, err
	}
	return series, nil
}

func (c *Client) applyExtended(series *media.Series, ext seriesExtended) {
	for _, art := range ext.Artworks {
		switch art.Type {
		case artworkBanner:
			if series.BackdropPath == "" {
				series.BackdropPath = art.Image
			}
		case artworkPoster:
			if series.PosterPath == "" {
				series.PosterPath = art.Image
			}
		}
	}
	for _, g := range ext.Genres {
		series.AddGenre(g.Name)
	}
	if imdb := findRemoteID(ext.RemoteIDs, "imdb"); imdb != "" {
		series.IDs["imdb"] = imdb
	}
	if tmdb := findRemoteID(ext.RemoteIDs, "themoviedb"); tmdb != "" {
		series.IDs["tmdb"] = tmdb
	}

	for _, s := range ext.Seasons {
		if s.Number == nil || s.Type.Type != c.seasonType {
			continue
		}
		if _, exists := series.Seasons[*s.Number]; exists {
			continue
		}
		season := media.NewSeason(*s.Number)
		if s.ID != 0 {
			season.IDs[providerName] = strconv.Itoa(s.ID)
		}
		season.PosterPath = s.Image
		season.SeriesName = series.Name
		series.Seasons[season.Number] = season
	}
}

// addEpisodes pages through series/{id}/episodes/{type}/{lang} and files each
// valid episode under its already known season.
func (c *Client) addEpisodes(ctx context.Context, series *media.Series) error {
	id := series.IDs[providerName]
	endpoint := fmt.Sprintf("series/%s/episodes/%s/%s", id, c.seasonType, c.language)

	for page := 0; page < maxEpisodePages; page++ {
		var resp episodesResponse
		params := url.Values{"page": {strconv.Itoa(page)}}
		if err := c.get(ctx, endpoint, params, &resp); err != nil {
			if provider.IsNotFound(err) {
				return nil
			}
			return err
		}
		for _, raw := range resp.Data.Episodes {
			addEpisode(series, raw)
		}
		if !resp.hasNext() {
			return nil
		}
	}
	c.logger.Warn().Str("id", id).Int("pages", maxEpisodePages).Msg("episode listing truncated")
	return nil
}

func addEpisode(series *media.Series, raw episode) {
	if raw.SeasonNumber == nil || raw.Number == nil {
		return
	}
	season := series.Season(*raw.SeasonNumber)
	if season == nil || season.Episode(*raw.Number) != nil {
		return
	}

	ep := media.NewEpisode()
	if raw.ID != 0 {
		ep.IDs[providerName] = strconv.Itoa(raw.ID)
	}
	ep.SeriesName = series.Name
	ep.Name = raw.Name
	ep.Number = *raw.Number
	ep.SeasonNumber = *raw.SeasonNumber
	ep.Overview = raw.Overview
	if raw.Runtime != nil {
		ep.Runtime = media.MinutesToSeconds(*raw.Runtime)
	}
	if raw.SeriesID != 0 {
		ep.SeriesID = strconv.Itoa(raw.SeriesID)
	}
	ep.StillPath = raw.Image
	ep.Type = raw.FinaleType

	if ep.Valid() {
		_ = season.AddEpisode(ep)
	}
}

func findRemoteID(ids []remoteID, source string) string {
	for _, id := range ids {
		if strings.Contains(strings.ToLower(id.SourceName), source) && id.ID != "" {
			return id.ID
		}
	}
	return ""
}
