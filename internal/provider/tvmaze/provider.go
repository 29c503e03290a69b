package tvmaze

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/PuerkitoBio/goquery"
)

// SearchSeries queries search/shows and loads each hit with its seasons,
// episodes and images embedded in a single request. TVmaze ignores the year.
func (c *Client) SearchSeries(ctx context.Context, req provider.SearchRequest) ([]*media.Series, error) {
	var hits []searchHit
	if err := c.get(ctx, "search/shows", url.Values{"q": {req.Query}}, &hits); err != nil {
		return nil, err
	}

	hits = provider.Truncate(hits, req.EffectiveLimit())
	out := make([]*media.Series, 0, len(hits))
	for _, hit := range hits {
		if hit.Show.ID == 0 {
			continue
		}
		details, err := c.show(ctx, hit.Show.ID)
		if err != nil {
			if provider.IsNotFound(err) {
				continue
			}
			return out, err
		}
		series := normalizeShow(details)
		series.PruneEmptySeasons()
		if !series.Valid() {
			c.logger.Debug().Int("id", hit.Show.ID).Str("name", hit.Show.Name).Msg("dropping incomplete series")
			continue
		}
		out = append(out, series)
	}
	return out, nil
}

// SearchMovies is unsupported; TVmaze has no movie catalog.
func (c *Client) SearchMovies(ctx context.Context, req provider.SearchRequest) ([]*media.Movie, error) {
	return []*media.Movie{}, nil
}

func (c *Client) show(ctx context.Context, id int) (show, error) {
	var s show
	params := url.Values{
		"embed[]":  {"episodes", "images", "seasons"},
		"specials": {"1"},
	}
	err := c.get(ctx, "shows/"+strconv.Itoa(id), params, &s)
	return s, err
}

func normalizeShow(s show) *media.Series {
	series := media.NewSeries(media.SourceTVmaze)
	series.IDs[providerName] = strconv.Itoa(s.ID)
	for k, v := range externalIDs(s.Externals) {
		series.IDs[k] = v
	}
	series.Name = s.Name
	series.Overview = htmlText(s.Summary)
	series.SetAirDate(s.Premiered)
	for _, g := range s.Genres {
		series.AddGenre(g)
	}
	for _, n := range []*network{s.Network, s.WebChannel} {
		if n != nil {
			series.Networks = append(series.Networks, normalizeNetwork(n))
		}
	}
	series.PosterPath = imageURL(s.Image)

	for _, raw := range s.Embedded.Seasons {
		if raw.Number == nil {
			continue
		}
		if _, exists := series.Seasons[*raw.Number]; exists {
			continue
		}
		season := media.NewSeason(*raw.Number)
		if raw.ID != 0 {
			season.IDs[providerName] = strconv.Itoa(raw.ID)
		}
		season.Name = raw.Name
		season.SeriesName = series.Name
		season.Overview = htmlText(raw.Summary)
		season.PosterPath = imageURL(raw.Image)
		series.Seasons[season.Number] = season
	}

	for _, raw := range s.Embedded.Episodes {
		if raw.Season == nil || raw.Number == nil {
			continue
		}
		season := series.Season(*raw.Season)
		if season == nil {
			continue
		}
		ep := media.NewEpisode()
		if raw.ID != 0 {
			ep.IDs[providerName] = strconv.Itoa(raw.ID)
		}
		ep.SeriesID = series.IDs[providerName]
		ep.SeriesName = series.Name
		ep.Name = raw.Name
		ep.SeasonNumber = *raw.Season
		ep.Number = *raw.Number
		ep.Overview = htmlText(raw.Summary)
		if raw.Runtime != nil {
			ep.Runtime = media.MinutesToSeconds(*raw.Runtime)
		}
		ep.Type = raw.Type
		ep.StillPath = imageURL(raw.Image)
		if ep.Valid() {
			_ = season.AddEpisode(ep)
		}
	}
	return series
}

func externalIDs(ext externals) map[string]string {
	ids := make(map[string]string)
	if ext.IMDb != "" {
		ids["imdb"] = ext.IMDb
	}
	if ext.TheTVDB > 0 {
		ids["tvdb"] = strconv.Itoa(ext.TheTVDB)
	}
	if ext.TVRage > 0 {
		ids["tvrage"] = strconv.Itoa(ext.TVRage)
	}
	return ids
}

func normalizeNetwork(n *network) media.Network {
	out := media.Network{Name: n.Name}
	if n.ID != 0 {
		out.ID = strconv.Itoa(n.ID)
	}
	if n.Country != nil {
		out.OriginCountry = n.Country.Name
	}
	return out
}

// imageURL prefers the original rendition over the medium one.
func imageURL(img *image) string {
	if img == nil {
		return ""
	}
	if img.Original != "" {
		return img.Original
	}
	return img.Medium
}

// htmlText strips markup from TVmaze summaries.
func htmlText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(doc.Text())
}
