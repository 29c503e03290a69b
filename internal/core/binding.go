package core

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/Digital-Shane/title-match/internal/media"
)

// ErrNoSuchEpisode is returned when a season/episode pair is not in the series.
var ErrNoSuchEpisode = errors.New("no such episode")

// Fields are the flat, user editable values a rename is composed from.
// RangeEnd and Part only ever come from the user.
type Fields struct {
	Name        string
	Year        string
	Season      string
	Episode     string
	Title       string
	Description string
	RangeEnd    string
	Part        string
}

// BindEpisode fills Fields from one episode of series. Season and episode
// are zero padded to two digits.
func BindEpisode(series *media.Series, season, episode int) (Fields, error) {
	ep := series.Episode(season, episode)
	if ep == nil {
		return Fields{}, fmt.Errorf("S%02dE%02d: %w", season, episode, ErrNoSuchEpisode)
	}
	name := ep.SeriesName
	if name == "" {
		name = series.Name
	}
	return Fields{
		Name:        name,
		Year:        yearString(series.Year),
		Season:      fmt.Sprintf("%02d", ep.SeasonNumber),
		Episode:     fmt.Sprintf("%02d", ep.Number),
		Title:       ep.Name,
		Description: ep.Overview,
	}, nil
}

// BindMovie fills Fields from a movie. The title tag is the movie name.
func BindMovie(movie *media.Movie) Fields {
	return Fields{
		Name:        movie.Name,
		Year:        yearString(movie.Year),
		Title:       movie.Name,
		Description: movie.Overview,
	}
}

// NextEpisode returns the episode after season/episode: the next number in
// the same season, else the first episode of the following season.
func NextEpisode(series *media.Series, season, episode int) (int, int, bool) {
	if s := series.Season(season); s != nil {
		nums := s.EpisodeNumbers()
		if i := slices.IndexFunc(nums, func(n int) bool { return n > episode }); i >= 0 {
			return season, nums[i], true
		}
	}
	for _, n := range series.SeasonNumbers() {
		if n <= season {
			continue
		}
		if nums := series.Season(n).EpisodeNumbers(); len(nums) > 0 {
			return n, nums[0], true
		}
	}
	return 0, 0, false
}

// FirstEpisode returns the starting selection for a series: season 1 when
// present, else the lowest season.
func FirstEpisode(series *media.Series) (int, int, bool) {
	seasons := series.SeasonNumbers()
	if len(seasons) == 0 {
		return 0, 0, false
	}
	season := seasons[0]
	if slices.Contains(seasons, 1) {
		season = 1
	}
	nums := series.Season(season).EpisodeNumbers()
	if len(nums) == 0 {
		return 0, 0, false
	}
	return season, nums[0], true
}

func yearString(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}
