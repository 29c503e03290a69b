package media

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Source tags identifying the catalog a Series or Movie came from.
const (
	SourceTMDB   = "tmdb"
	SourceTVDB   = "tvdb"
	SourceTVmaze = "tvmaze"
	SourceOMDb   = "omdb"
)

// Unset markers for numeric fields where zero is a legal value.
const (
	UnsetNumber    = -1
	UnknownRuntime = -1
)

// Network is a broadcaster attached to a Series.
type Network struct {
	ID            string
	LogoPath      string
	Name          string
	OriginCountry string
}

// Episode is a single episode of a season.
type Episode struct {
	IDs          map[string]string
	SeriesID     string
	Number       int
	SeasonNumber int
	Name         string
	Overview     string
	Runtime      int // seconds
	Type         string
	StillPath    string
	SeriesName   string
}

// NewEpisode returns an episode with all numeric fields unset.
func NewEpisode() *Episode {
	return &Episode{
		IDs:          make(map[string]string),
		Number:       UnsetNumber,
		SeasonNumber: UnsetNumber,
		Runtime:      UnknownRuntime,
	}
}

// Valid reports whether the episode carries enough data to be shown.
func (e *Episode) Valid() bool {
	if e == nil {
		return false
	}
	return len(e.IDs) > 0 &&
		e.SeriesID != "" &&
		e.Number > 0 &&
		e.SeasonNumber >= 0 &&
		e.Name != "" &&
		e.SeriesName != ""
}

// Season groups episodes under a season number. Season 0 holds specials.
type Season struct {
	IDs        map[string]string
	Number     int
	Episodes   map[int]*Episode
	Name       string
	SeriesName string
	Overview   string
	PosterPath string
}

// NewSeason returns an empty season with the given number.
func NewSeason(number int) *Season {
	return &Season{
		IDs:      make(map[string]string),
		Number:   number,
		Episodes: make(map[int]*Episode),
	}
}

// Valid reports whether the season has ids, a number, a series name and episodes.
func (s *Season) Valid() bool {
	if s == nil {
		return false
	}
	return len(s.IDs) > 0 && s.Number >= 0 && len(s.Episodes) > 0 && s.SeriesName != ""
}

// AddEpisode stores ep keyed by its number. The episode must belong to this season.
func (s *Season) AddEpisode(ep *Episode) error {
	if ep == nil {
		return fmt.Errorf("nil episode")
	}
	if ep.SeasonNumber != s.Number {
		return fmt.Errorf("episode %d belongs to season %d, not %d", ep.Number, ep.SeasonNumber, s.Number)
	}
	if s.Episodes == nil {
		s.Episodes = make(map[int]*Episode)
	}
	s.Episodes[ep.Number] = ep
	return nil
}

// Episode returns episode n or nil.
func (s *Season) Episode(n int) *Episode {
	if s == nil {
		return nil
	}
	return s.Episodes[n]
}

// EpisodeNumbers returns the episode numbers in ascending order.
func (s *Season) EpisodeNumbers() []int {
	if s == nil {
		return nil
	}
	return sortedKeys(s.Episodes)
}

// MaxEpisodeNumber returns the highest episode number or 0 for an empty season.
func (s *Season) MaxEpisodeNumber() int {
	nums := s.EpisodeNumbers()
	if len(nums) == 0 {
		return 0
	}
	return nums[len(nums)-1]
}

// Series is a TV show as described by one catalog.
type Series struct {
	IDs          map[string]string
	Seasons      map[int]*Season
	Name         string
	OriginalName string
	Overview     string
	AirDate      string
	Year         int
	Genres       []string
	Networks     []Network
	PosterPath   string
	BackdropPath string
	Source       string
}

// NewSeries returns an empty series tagged with its source catalog.
func NewSeries(source string) *Series {
	return &Series{
		IDs:     make(map[string]string),
		Seasons: make(map[int]*Season),
		Source:  source,
	}
}

// Valid reports whether the series can be offered as a candidate.
func (s *Series) Valid() bool {
	if s == nil {
		return false
	}
	return len(s.IDs) > 0 && len(s.Seasons) > 0 && s.Name != "" && s.Year > 0 && s.Source != ""
}

// SetAirDate stores the date and derives Year from its first four characters.
func (s *Series) SetAirDate(date string) {
	s.AirDate = date
	s.Year = YearFromDate(date)
}

// AddGenre adds a genre unless it is empty or already present.
func (s *Series) AddGenre(genre string) {
	s.Genres = addGenre(s.Genres, genre)
}

// Season returns season n or nil.
func (s *Series) Season(n int) *Season {
	if s == nil {
		return nil
	}
	return s.Seasons[n]
}

// Episode returns the episode at season/episode or nil.
func (s *Series) Episode(season, episode int) *Episode {
	return s.Season(season).Episode(episode)
}

// SeasonNumbers returns season numbers in ascending order.
func (s *Series) SeasonNumbers() []int {
	if s == nil {
		return nil
	}
	return sortedKeys(s.Seasons)
}

// PruneEmptySeasons drops seasons without episodes.
func (s *Series) PruneEmptySeasons() {
	for n, season := range s.Seasons {
		if season == nil || len(season.Episodes) == 0 {
			delete(s.Seasons, n)
		}
	}
}

// Movie is a feature film as described by one catalog.
type Movie struct {
	IDs                    map[string]string
	Name                   string
	OriginalName           string
	Overview               string
	ReleaseDate            string
	Year                   int
	Genres                 []string
	Runtime                int // seconds
	PosterPath             string
	BackdropPath           string
	CollectionIDs          map[string]string
	CollectionName         string
	CollectionBackdropPath string
	Source                 string
}

// NewMovie returns an empty movie tagged with its source catalog.
func NewMovie(source string) *Movie {
	return &Movie{
		IDs:           make(map[string]string),
		CollectionIDs: make(map[string]string),
		Runtime:       UnknownRuntime,
		Source:        source,
	}
}

// Valid reports whether the movie can be offered as a candidate.
func (m *Movie) Valid() bool {
	if m == nil {
		return false
	}
	return len(m.IDs) > 0 && m.Name != "" && m.Year > 0 && m.Source != ""
}

// SetReleaseDate stores the date and derives Year from it.
func (m *Movie) SetReleaseDate(date string) {
	m.ReleaseDate = date
	m.Year = YearFromDate(date)
}

// AddGenre adds a genre unless it is empty or already present.
func (m *Movie) AddGenre(genre string) {
	m.Genres = addGenre(m.Genres, genre)
}

// YearFromDate parses the leading four digit year of an ISO-ish date.
// Returns 0 when the date is too short or not numeric.
func YearFromDate(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// MinutesToSeconds converts a catalog runtime in minutes. Non-positive input is unknown.
func MinutesToSeconds(minutes int) int {
	if minutes <= 0 {
		return UnknownRuntime
	}
	return minutes * 60
}

// Present returns "" for the "N/A" sentinel and trims surrounding space.
func Present(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func addGenre(genres []string, genre string) []string {
	genre = strings.TrimSpace(genre)
	if genre == "" || slices.Contains(genres, genre) {
		return genres
	}
	return append(genres, genre)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
