package fanart

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Digital-Shane/title-match/internal/media"
)

// Keys read from v3/tv and v3/movies payloads, in the order they are filed.
var (
	seriesKeys = []string{
		"hdtvlogo", "hdclearart", "clearlogo", "clearart", "showbackground",
		"tvposter", "tvbanner", "tvthumb", "seasonposter", "seasonbanner",
		"seasonthumb", "characterart",
	}
	movieKeys = []string{
		"hdmovielogo", "movielogo", "hdmovieclearart", "movieart", "moviedisc",
		"moviebackground", "movieposter", "moviebanner", "moviethumb",
	}
)

var typeTable = map[string]string{
	"hdtvlogo":        media.ArtClearLogo,
	"hdmovielogo":     media.ArtClearLogo,
	"movielogo":       media.ArtClearLogo,
	"hdclearart":      media.ArtClearArt,
	"hdmovieclearart": media.ArtClearArt,
	"movieart":        media.ArtClearArt,
	"moviedisc":       media.ArtDiscArt,
	"showbackground":  media.ArtFanart,
	"moviebackground": media.ArtFanart,
	"tvposter":        media.ArtPoster,
	"seasonposter":    media.ArtPoster,
	"movieposter":     media.ArtPoster,
	"tvbanner":        media.ArtBanner,
	"seasonbanner":    media.ArtBanner,
	"moviebanner":     media.ArtBanner,
	"tvthumb":         media.ArtLandscape,
	"seasonthumb":     media.ArtLandscape,
	"moviethumb":      media.ArtLandscape,
}

// NormalizeType maps a fanart.tv category to its canonical artwork type.
// Unknown categories are returned unchanged.
func NormalizeType(kind string) string {
	if canonical, ok := typeTable[kind]; ok {
		return canonical
	}
	return kind
}

type item struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Lang   string `json:"lang"`
	Season string `json:"season"`
}

// payload keeps the raw per-category arrays next to the id fields.
type payload map[string]json.RawMessage

func (p payload) str(key string) string {
	raw, ok := p[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Some ids are sent as numbers.
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (p payload) items(key string) []item {
	raw, ok := p[key]
	if !ok {
		return nil
	}
	var items []item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func toArtwork(kind string, it item) media.Artwork {
	return media.Artwork{
		IDs:      map[string]string{providerName: it.ID},
		URL:      it.URL,
		Language: it.Lang,
		Type:     NormalizeType(kind),
	}
}

// SeasonScope interprets the season field of a fanart.tv item. seasonal is
// false for series-wide art ("all" or missing) and specials map to season 0.
// ok is false when the field cannot be read.
func SeasonScope(season string) (number int, seasonal bool, ok bool) {
	season = strings.TrimSpace(strings.ToLower(season))
	switch {
	case season == "" || season == "all":
		return 0, false, true
	case strings.Contains(season, "special"):
		return 0, true, true
	}
	n, err := strconv.Atoi(season)
	if err != nil || n < 0 {
		return 0, false, false
	}
	return n, true, true
}

// SeriesArtwork fetches v3/tv/{tvdbID}. Season scoped items go to the season table.
func (c *Client) SeriesArtwork(ctx context.Context, tvdbID string) (*media.SeriesArtwork, error) {
	var p payload
	if err := c.get(ctx, "tv/"+tvdbID, &p); err != nil {
		return nil, err
	}

	art := media.NewSeriesArtwork()
	if id := p.str("thetvdb_id"); id != "" {
		art.IDs["tvdb"] = id
	}
	for _, kind := range seriesKeys {
		for _, it := range p.items(kind) {
			a := toArtwork(kind, it)
			if !a.Valid() {
				continue
			}
			n, seasonal, ok := SeasonScope(it.Season)
			switch {
			case !ok:
				c.logger.Debug().Str("season", it.Season).Str("url", it.URL).Msg("skipping artwork with unreadable season")
			case seasonal:
				art.AddSeasonArt(n, a)
			default:
				art.Add(a)
			}
		}
	}
	return art, nil
}

// MovieArtwork fetches v3/movies/{id}; id may be a TMDB or IMDb id.
func (c *Client) MovieArtwork(ctx context.Context, id string) (*media.MovieArtwork, error) {
	var p payload
	if err := c.get(ctx, "movies/"+id, &p); err != nil {
		return nil, err
	}

	art := media.NewMovieArtwork()
	if tmdb := p.str("tmdb_id"); tmdb != "" {
		art.IDs["tmdb"] = tmdb
	}
	if imdb := p.str("imdb_id"); imdb != "" {
		art.IDs["imdb"] = imdb
	}
	for _, kind := range movieKeys {
		for _, it := range p.items(kind) {
			if a := toArtwork(kind, it); a.Valid() {
				art.Add(a)
			}
		}
	}
	return art, nil
}
