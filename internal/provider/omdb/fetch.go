package omdb

import (
	"context"
	"strconv"
	"strings"

	"github.com/Digital-Shane/omdb"
	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
)

// lookup runs an imdb id query. A not found answer is (nil, nil).
func (c *Client) lookup(ctx context.Context, query omdb.QueryData) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := c.client.SearchByImdbID(query)
	if err != nil {
		err = mapError(err)
		if provider.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

func (c *Client) fetchSeries(ctx context.Context, imdbID string) (*omdb.SeriesResult, error) {
	result, err := c.lookup(ctx, omdb.QueryData{ImdbID: imdbID})
	if err != nil {
		return nil, err
	}
	switch series := result.(type) {
	case omdb.SeriesResult:
		return &series, nil
	case *omdb.SeriesResult:
		return series, nil
	default:
		return nil, nil
	}
}

func (c *Client) fetchMovie(ctx context.Context, imdbID string) (*omdb.MovieResult, error) {
	result, err := c.lookup(ctx, omdb.QueryData{ImdbID: imdbID})
	if err != nil {
		return nil, err
	}
	switch movie := result.(type) {
	case omdb.MovieResult:
		return &movie, nil
	case *omdb.MovieResult:
		return movie, nil
	default:
		return nil, nil
	}
}

func (c *Client) fetchSeason(ctx context.Context, imdbID string, number int) (*omdb.SeasonResult, error) {
	result, err := c.lookup(ctx, omdb.QueryData{ImdbID: imdbID, Season: strconv.Itoa(number)})
	if err != nil {
		return nil, err
	}
	switch season := result.(type) {
	case omdb.SeasonResult:
		return &season, nil
	case *omdb.SeasonResult:
		return season, nil
	default:
		return nil, nil
	}
}

func (c *Client) fetchEpisode(ctx context.Context, imdbID string, season, episode int) (*omdb.EpisodeResult, error) {
	result, err := c.lookup(ctx, omdb.QueryData{
		ImdbID:  imdbID,
		Season:  strconv.Itoa(season),
		Episode: strconv.Itoa(episode),
	})
	if err != nil {
		return nil, err
	}
	switch ep := result.(type) {
	case omdb.EpisodeResult:
		return &ep, nil
	case *omdb.EpisodeResult:
		return ep, nil
	default:
		return nil, nil
	}
}

// addSeasons loads seasons 1..totalSeasons and their episodes. Seasons that
// fail the completeness gate are skipped unless missing episodes are allowed.
func (c *Client) addSeasons(ctx context.Context, series *media.Series, totalSeasons string) error {
	total, err := strconv.Atoi(media.Present(totalSeasons))
	if err != nil || total <= 0 {
		return nil
	}
	imdbID := series.IDs["imdb"]

	for n := 1; n <= total; n++ {
		listing, err := c.fetchSeason(ctx, imdbID, n)
		if err != nil {
			return err
		}
		if listing == nil {
			continue
		}
		number, err := strconv.Atoi(media.Present(listing.Season))
		if err != nil {
			continue
		}

		season := media.NewSeason(number)
		season.SeriesName = series.Name
		// OMDb has no season ids; the series id stands in so the season validates.
		season.IDs[providerName] = imdbID

		maxListed := 0
		for _, item := range listing.Episodes {
			epNumber, err := strconv.Atoi(media.Present(item.Episode))
			if err != nil || epNumber <= 0 {
				continue
			}
			maxListed = max(maxListed, epNumber)

			ep, err := c.episode(ctx, series, number, epNumber)
			if err != nil {
				return err
			}
			if ep.Valid() {
				_ = season.AddEpisode(ep)
			}
		}

		if !c.allowMissing && len(season.Episodes) < maxListed {
			c.logger.Debug().
				Str("imdb", imdbID).
				Int("season", number).
				Int("episodes", len(season.Episodes)).
				Int("listed", maxListed).
				Msg("skipping incomplete season")
			continue
		}
		if season.Valid() {
			series.Seasons[number] = season
		}
	}
	return nil
}

func (c *Client) episode(ctx context.Context, series *media.Series, season, number int) (*media.Episode, error) {
	ep := media.NewEpisode()
	ep.SeriesName = series.Name
	ep.SeriesID = series.IDs["imdb"]
	ep.SeasonNumber = season
	ep.Number = number

	result, err := c.fetchEpisode(ctx, series.IDs["imdb"], season, number)
	if err != nil || result == nil {
		return ep, err
	}

	ep.Name = media.Present(result.Title)
	if id := media.Present(result.ImdbID); id != "" {
		ep.IDs["imdb"] = id
	}
	if id := media.Present(result.SeriesID); id != "" {
		ep.SeriesID = id
	}
	ep.Overview = plot(media.Present(result.Plot))
	ep.Runtime = parseRuntime(media.Present(result.Runtime))
	return ep, nil
}

// titleFields are the parts of a series or movie lookup both entities share.
type titleFields struct {
	title, plot, poster, genre string
}

func (t titleFields) apply(name, overview, poster *string, addGenre func(string)) {
	*name = media.Present(t.title)
	*overview = plot(media.Present(t.plot))
	*poster = media.Present(t.poster)
	for _, g := range omdb.SplitAndTrim(media.Present(t.genre)) {
		addGenre(g)
	}
}

// firstYear reads the leading year of values like "2011–2019".
func firstYear(value string) int {
	year, err := strconv.Atoi(strings.TrimSpace(omdb.FirstYear(media.Present(value))))
	if err != nil {
		return 0
	}
	return year
}
