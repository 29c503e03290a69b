package media

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validEpisode() *Episode {
	ep := NewEpisode()
	ep.IDs["tmdb"] = "62085"
	ep.SeriesID = "1396"
	ep.Number = 1
	ep.SeasonNumber = 1
	ep.Name = "Pilot"
	ep.SeriesName = "Breaking Bad"
	return ep
}

func TestEpisodeValid(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		mutate func(*Episode)
		want   bool
	}{
		"complete":          {func(*Episode) {}, true},
		"no ids":            {func(e *Episode) { e.IDs = map[string]string{} }, false},
		"no series id":      {func(e *Episode) { e.SeriesID = "" }, false},
		"zero number":       {func(e *Episode) { e.Number = 0 }, false},
		"unset season":      {func(e *Episode) { e.SeasonNumber = UnsetNumber }, false},
		"specials season":   {func(e *Episode) { e.SeasonNumber = 0 }, true},
		"no name":           {func(e *Episode) { e.Name = "" }, false},
		"no series name":    {func(e *Episode) { e.SeriesName = "" }, false},
		"unknown runtime ok": {func(e *Episode) { e.Runtime = UnknownRuntime }, true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ep := validEpisode()
			tc.mutate(ep)
			if got := ep.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}

	var nilEp *Episode
	if nilEp.Valid() {
		t.Error("nil episode should not be valid")
	}
}

func TestSeasonAddEpisodeRejectsMismatch(t *testing.T) {
	t.Parallel()
	season := NewSeason(2)
	ep := validEpisode()
	if err := season.AddEpisode(ep); err == nil {
		t.Fatal("AddEpisode() expected error for season mismatch")
	}
	ep.SeasonNumber = 2
	if err := season.AddEpisode(ep); err != nil {
		t.Fatalf("AddEpisode() error = %v", err)
	}
	if season.Episode(1) != ep {
		t.Error("Episode(1) did not return the added episode")
	}
}

func TestSeasonValid(t *testing.T) {
	t.Parallel()
	season := NewSeason(0)
	season.IDs["tvdb"] = "1"
	season.SeriesName = "Show"
	if season.Valid() {
		t.Error("season without episodes should not be valid")
	}
	ep := validEpisode()
	ep.SeasonNumber = 0
	_ = season.AddEpisode(ep)
	if !season.Valid() {
		t.Error("season 0 with episodes should be valid")
	}
	season.Number = UnsetNumber
	if season.Valid() {
		t.Error("season with unset number should not be valid")
	}
}

func TestSeriesPruneAndValid(t *testing.T) {
	t.Parallel()
	series := NewSeries(SourceTMDB)
	series.IDs["tmdb"] = "1396"
	series.Name = "Breaking Bad"
	series.SetAirDate("2008-01-20")

	full := NewSeason(1)
	_ = full.AddEpisode(validEpisode())
	series.Seasons[1] = full
	series.Seasons[2] = NewSeason(2)
	series.Seasons[3] = nil

	series.PruneEmptySeasons()

	if diff := cmp.Diff([]int{1}, series.SeasonNumbers()); diff != "" {
		t.Errorf("SeasonNumbers() mismatch (-want +got):\n%s", diff)
	}
	if series.Year != 2008 {
		t.Errorf("Year = %d, want 2008", series.Year)
	}
	if !series.Valid() {
		t.Error("series should be valid after pruning")
	}
	if got := series.Episode(1, 1); got == nil || got.Name != "Pilot" {
		t.Errorf("Episode(1, 1) = %v, want Pilot", got)
	}
	if series.Episode(9, 1) != nil {
		t.Error("Episode on missing season should be nil")
	}

	series.Seasons = map[int]*Season{}
	if series.Valid() {
		t.Error("series without seasons should not be valid")
	}
}

func TestSeriesGenresAreASet(t *testing.T) {
	t.Parallel()
	series := NewSeries(SourceTVDB)
	for _, g := range []string{"Drama", "Crime", "Drama", "", " Crime "} {
		series.AddGenre(g)
	}
	if diff := cmp.Diff([]string{"Drama", "Crime"}, series.Genres); diff != "" {
		t.Errorf("Genres mismatch (-want +got):\n%s", diff)
	}
}

func TestMovieValid(t *testing.T) {
	t.Parallel()
	movie := NewMovie(SourceOMDb)
	movie.IDs["imdb"] = "tt0816692"
	movie.Name = "Interstellar"
	if movie.Valid() {
		t.Error("movie without year should not be valid")
	}
	movie.SetReleaseDate("2014-11-07")
	if !movie.Valid() {
		t.Error("movie should be valid")
	}
	movie.Source = ""
	if movie.Valid() {
		t.Error("movie without source should not be valid")
	}
}

func TestYearFromDate(t *testing.T) {
	t.Parallel()
	tests := map[string]int{
		"2020-01-02": 2020,
		"2020":       2020,
		"202":        0,
		"":           0,
		"N/A":        0,
		"abcd-01-01": 0,
	}
	for in, want := range tests {
		if got := YearFromDate(in); got != want {
			t.Errorf("YearFromDate(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestMinutesToSecondsAndPresent(t *testing.T) {
	t.Parallel()
	if got := MinutesToSeconds(45); got != 2700 {
		t.Errorf("MinutesToSeconds(45) = %d, want 2700", got)
	}
	if got := MinutesToSeconds(0); got != UnknownRuntime {
		t.Errorf("MinutesToSeconds(0) = %d, want %d", got, UnknownRuntime)
	}
	if got := Present("N/A"); got != "" {
		t.Errorf("Present(N/A) = %q, want empty", got)
	}
	if got := Present(" Drama "); got != "Drama" {
		t.Errorf("Present = %q, want Drama", got)
	}
}
