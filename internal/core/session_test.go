package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/rs/zerolog"
)

func TestStartSearchBusyFlag(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	engine := NewSearchEngine([]provider.Provider{&stubProvider{name: "x", release: release}}, zerolog.Nop())
	session := NewSession(engine, NewExecutor(nil, zerolog.Nop()), zerolog.Nop())

	ch, err := session.StartSearch(context.Background(), provider.ModeSeries, provider.SearchRequest{Query: "q"})
	if err != nil {
		t.Fatalf("StartSearch() error = %v", err)
	}
	if _, err := session.StartSearch(context.Background(), provider.ModeSeries, provider.SearchRequest{Query: "q"}); !errors.Is(err, ErrSearchInProgress) {
		t.Fatalf("second StartSearch() error = %v, want ErrSearchInProgress", err)
	}
	close(release)

	res, ok := <-ch
	if !ok || len(res.Series) != 1 {
		t.Fatalf("result = %+v, %v", res, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after one result")
	}

	ch, err = session.StartSearch(context.Background(), provider.ModeSeries, provider.SearchRequest{Query: "q"})
	if err != nil {
		t.Fatalf("StartSearch() after completion error = %v", err)
	}
	<-ch
}

func searchedSession(t *testing.T, tagger *fakeTagger, mode provider.Mode) *Session {
	t.Helper()
	engine := NewSearchEngine([]provider.Provider{&stubProvider{name: "x"}}, zerolog.Nop())
	session := NewSession(engine, NewExecutor(tagger, zerolog.Nop()), zerolog.Nop())
	ch, err := session.StartSearch(context.Background(), mode, provider.SearchRequest{Query: "q"})
	if err != nil {
		t.Fatal(err)
	}
	<-ch
	return session
}

func TestSessionRenameAdvancesToNextEpisode(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mkv")
	writeFile(t, src)
	session := searchedSession(t, newFakeTagger(), provider.ModeSeries)

	if err := session.SelectSeries(0); err != nil {
		t.Fatalf("SelectSeries() error = %v", err)
	}
	if err := session.SelectEpisode(1, 2); err != nil {
		t.Fatalf("SelectEpisode() error = %v", err)
	}
	session.EditFields(func(f *Fields) {
		f.RangeEnd = "3"
		f.Part = "1"
	})

	ch, err := session.StartRename(context.Background(), src, false)
	if err != nil {
		t.Fatalf("StartRename() error = %v", err)
	}
	res := <-ch
	if res.State != StateDone || filepath.Base(res.Path) != "x (2020) S01E02-E03 Part 01.mkv" {
		t.Fatalf("result = %+v", res)
	}

	_, season, episode := session.Selection()
	if season != 3 || episode != 1 {
		t.Errorf("selection = S%dE%d, want S3E1", season, episode)
	}
	f := session.Fields()
	if f.RangeEnd != "" || f.Part != "" || f.Season != "03" || f.Episode != "01" {
		t.Errorf("fields after rename = %+v", f)
	}
}

func TestSessionRenameWithoutCandidateIsSkipped(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mkv")
	writeFile(t, src)
	session := searchedSession(t, newFakeTagger(), provider.ModeSeries)

	ch, err := session.StartRename(context.Background(), src, false)
	if err != nil {
		t.Fatal(err)
	}
	if res := <-ch; res.State != StateSkipped {
		t.Errorf("State = %s, want skipped", res.State)
	}
}

func TestSessionSelectMovie(t *testing.T) {
	t.Parallel()
	session := searchedSession(t, newFakeTagger(), provider.ModeMovie)

	if err := session.SelectMovie(3); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("SelectMovie(3) error = %v, want ErrNoCandidate", err)
	}
	if err := session.SelectMovie(0); err != nil {
		t.Fatalf("SelectMovie(0) error = %v", err)
	}
	if f := session.Fields(); f.Title != "x movie" || f.Year != "1999" {
		t.Errorf("fields = %+v", f)
	}
	if err := session.SelectEpisode(1, 1); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("SelectEpisode on a movie session error = %v", err)
	}
}

func TestSessionRenameAfterLastEpisodeIsSkipped(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := filepath.Join(dir, "a.mkv")
	second := filepath.Join(dir, "b.mkv")
	writeFile(t, first)
	writeFile(t, second)
	tagger := newFakeTagger()
	session := searchedSession(t, tagger, provider.ModeSeries)

	if err := session.SelectSeries(0); err != nil {
		t.Fatalf("SelectSeries() error = %v", err)
	}
	if err := session.SelectEpisode(3, 1); err != nil {
		t.Fatalf("SelectEpisode() error = %v", err)
	}

	ch, err := session.StartRename(context.Background(), first, false)
	if err != nil {
		t.Fatal(err)
	}
	if res := <-ch; res.State != StateDone || filepath.Base(res.Path) != "x (2020) S03E01.mkv" {
		t.Fatalf("first rename = %+v", res)
	}
	if !session.Exhausted() {
		t.Fatal("Exhausted() = false after the last episode")
	}

	ch, err = session.StartRename(context.Background(), second, false)
	if err != nil {
		t.Fatal(err)
	}
	res := <-ch
	if res.State != StateSkipped || !errors.Is(res.Err, ErrNoNextEpisode) || !errors.Is(res.Err, ErrSkipped) {
		t.Fatalf("second rename = %+v, want skipped with ErrNoNextEpisode", res)
	}
	if res.Path != second || res.Renamed || res.TitleWritten {
		t.Errorf("second file touched: %+v", res)
	}
	if title, ok := tagger.titles[second]; ok {
		t.Errorf("second file tagged %q", title)
	}

	if err := session.SelectEpisode(1, 1); err != nil {
		t.Fatalf("SelectEpisode() error = %v", err)
	}
	if session.Exhausted() {
		t.Error("selecting an episode should clear Exhausted")
	}
}
