package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/rs/zerolog"
)

var (
	ErrSearchInProgress = errors.New("search already in progress")
	ErrRenameInProgress = errors.New("rename already in progress")
	ErrNoCandidate      = errors.New("no such candidate")

	// ErrNoNextEpisode is the skip reason once a rename used the last
	// episode of the selected series.
	ErrNoNextEpisode = errors.New("no episode left in the selected series")
)

// Session holds the state of one interactive matching session: the last
// search result, the chosen candidate and the editable Fields.
type Session struct {
	engine   *SearchEngine
	executor *Executor
	logger   zerolog.Logger

	mu        sync.Mutex
	searching bool
	renaming  bool
	mode      provider.Mode
	result    SearchResult
	series    *media.Series
	movie     *media.Movie
	season    int
	episode   int
	fields    Fields
	exhausted bool
}

// NewSession wires a session to its search engine and executor.
func NewSession(engine *SearchEngine, executor *Executor, logger zerolog.Logger) *Session {
	return &Session{
		engine:   engine,
		executor: executor,
		logger:   logger.With().Str("component", "session").Logger(),
		mode:     provider.ModeSeries,
	}
}

// StartSearch runs a search in the background. The returned channel receives
// exactly one SearchResult and is then closed. Only one search may be
// outstanding at a time.
func (s *Session) StartSearch(ctx context.Context, mode provider.Mode, req provider.SearchRequest) (<-chan SearchResult, error) {
	s.mu.Lock()
	if s.searching {
		s.mu.Unlock()
		return nil, ErrSearchInProgress
	}
	s.searching = true
	s.mu.Unlock()

	out := make(chan SearchResult, 1)
	go func() {
		defer close(out)
		res := s.engine.Search(ctx, mode, req)

		s.mu.Lock()
		s.searching = false
		s.mode = mode
		s.result = res
		s.series, s.movie = nil, nil
		s.fields = Fields{}
		s.exhausted = false
		s.mu.Unlock()

		out <- res
	}()
	return out, nil
}

// Result returns the last completed search.
func (s *Session) Result() SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SelectSeries chooses series candidate i and binds its first episode.
func (s *Session) SelectSeries(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.result.Series) {
		return fmt.Errorf("series %d: %w", i, ErrNoCandidate)
	}
	series := s.result.Series[i]
	season, episode, ok := FirstEpisode(series)
	if !ok {
		return fmt.Errorf("%s has no episodes: %w", series.Name, ErrNoSuchEpisode)
	}
	fields, err := BindEpisode(series, season, episode)
	if err != nil {
		return err
	}
	s.mode = provider.ModeSeries
	s.series, s.movie = series, nil
	s.season, s.episode = season, episode
	s.fields = fields
	s.exhausted = false
	return nil
}

// SelectEpisode binds another episode of the selected series.
func (s *Session) SelectEpisode(season, episode int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series == nil {
		return ErrNoCandidate
	}
	fields, err := BindEpisode(s.series, season, episode)
	if err != nil {
		return err
	}
	s.season, s.episode = season, episode
	s.fields = fields
	s.exhausted = false
	return nil
}

// SelectMovie chooses movie candidate i.
func (s *Session) SelectMovie(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.result.Movies) {
		return fmt.Errorf("movie %d: %w", i, ErrNoCandidate)
	}
	s.mode = provider.ModeMovie
	s.movie, s.series = s.result.Movies[i], nil
	s.fields = BindMovie(s.movie)
	s.exhausted = false
	return nil
}

// Selection returns the selected series and episode position, if any.
func (s *Session) Selection() (*media.Series, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.series, s.season, s.episode
}

// Movie returns the selected movie, if any.
func (s *Session) Movie() *media.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.movie
}

// Exhausted reports whether the last rename used the final episode of the
// selected series. Renames are skipped until another episode is selected.
func (s *Session) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}

// Fields returns the current display fields.
func (s *Session) Fields() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields
}

// EditFields applies user edits to the display fields.
func (s *Session) EditFields(edit func(*Fields)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edit(&s.fields)
}

// StartRename renames path using the current Fields in the background. The
// channel receives one Result. On DONE the range end and part are cleared
// and, in series mode, the next episode is selected. After the last episode
// further renames end SKIPPED with ErrNoNextEpisode.
func (s *Session) StartRename(ctx context.Context, path string, dryRun bool) (<-chan Result, error) {
	s.mu.Lock()
	if s.renaming {
		s.mu.Unlock()
		return nil, ErrRenameInProgress
	}
	s.renaming = true
	req := RenameRequest{
		Path:     path,
		Mode:     s.mode,
		Fields:   s.fields,
		Selected: s.series != nil || s.movie != nil,
		DryRun:   dryRun,
	}
	exhausted := s.exhausted
	s.mu.Unlock()

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		var res Result
		if exhausted {
			res = skipped(path, ErrNoNextEpisode)
		} else {
			res = s.executor.Run(ctx, req)
		}

		s.mu.Lock()
		s.renaming = false
		if res.State == StateDone && !dryRun {
			s.afterDone()
		}
		s.mu.Unlock()

		out <- res
	}()
	return out, nil
}

// afterDone assumes s.mu is held.
func (s *Session) afterDone() {
	s.fields.RangeEnd = ""
	s.fields.Part = ""
	if s.mode != provider.ModeSeries || s.series == nil {
		return
	}
	season, episode, ok := NextEpisode(s.series, s.season, s.episode)
	if !ok {
		s.exhausted = true
		s.logger.Debug().
			Int("season", s.season).
			Int("episode", s.episode).
			Msg("no episode after the renamed one")
		return
	}
	fields, err := BindEpisode(s.series, season, episode)
	if err != nil {
		return
	}
	s.season, s.episode = season, episode
	s.fields = fields
	s.logger.Debug().
		Int("season", season).
		Int("episode", episode).
		Msg("advanced to next episode")
}

func skipped(path string, reason error) Result {
	res := Result{OldPath: path, Path: path}
	res.enter(StateIdle)
	res.enter(StateValidating)
	res.enter(StateSkipped)
	res.Err = fmt.Errorf("%w: %w", ErrSkipped, reason)
	return res
}
