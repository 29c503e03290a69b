package tvdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"application/json"}},
	}
}

func keyFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "TVDB_API_KEY")
	if err := os.WriteFile(path, []byte("secret\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeTVDB struct {
	t      *testing.T
	logins int32
	bodies map[string]string // path?page -> body
	seen   []string
}

func (f *fakeTVDB) RoundTrip(req *http.Request) (*http.Response, error) {
	path := strings.TrimPrefix(req.URL.Path, "/v4/")
	if path == "login" {
		if req.Method != http.MethodPost {
			f.t.Errorf("login method = %s", req.Method)
		}
		atomic.AddInt32(&f.logins, 1)
		return jsonResponse(200, `{"status":"success","data":{"token":"tok"}}`), nil
	}
	if got := req.Header.Get("Authorization"); got != "Bearer tok" {
		f.t.Errorf("Authorization = %q", got)
	}
	key := path
	if page := req.URL.Query().Get("page"); page != "" {
		key += "?page=" + page
	}
	f.seen = append(f.seen, key)
	if body, ok := f.bodies[key]; ok {
		return jsonResponse(200, body), nil
	}
	return jsonResponse(404, `{"status":"failure","data":null}`), nil
}

func expanseFake(t *testing.T) *fakeTVDB {
	return &fakeTVDB{t: t, bodies: map[string]string{
		"search": `{"data":[
			{"tvdb_id":"280619","name":"The Expanse","year":"2015","first_air_time":"2015-12-14","network":"Syfy","type":"series"},
			{"tvdb_id":"","name":"broken"}
		]}`,
		"series/280619/translations/eng": `{"data":{"name":"The Expanse","overview":"Humanity has colonized."}}`,
		"series/280619/extended": `{"data":{"id":280619,
			"artworks":[{"image":"banner.jpg","type":1},{"image":"poster.jpg","type":2},{"image":"poster2.jpg","type":2}],
			"genres":[{"name":"Drama"},{"name":"Science Fiction"},{"name":"Drama"}],
			"remoteIds":[{"id":"tt3230854","sourceName":"IMDB"},{"id":"63639","sourceName":"TheMovieDB.com"}],
			"seasons":[
				{"id":1,"number":0,"type":{"type":"official"}},
				{"id":2,"number":1,"image":"s1.jpg","type":{"type":"official"}},
				{"id":3,"number":2,"type":{"type":"official"}},
				{"id":9,"number":1,"type":{"type":"dvd"}}
			]}}`,
		"series/280619/episodes/official/eng?page=0": `{"data":{"episodes":[
			{"id":5,"seriesId":280619,"name":"Dulcinea","number":1,"seasonNumber":1,"runtime":44,"finaleType":null},
			{"id":6,"seriesId":280619,"name":"The Big Empty","number":2,"seasonNumber":1,"runtime":null}
		]},"links":{"next":"https://api4.thetvdb.com/v4/series/280619/episodes/official/eng?page=1"}}`,
		"series/280619/episodes/official/eng?page=1": `{"data":{"episodes":[
			{"id":7,"seriesId":280619,"name":"Safe","number":1,"seasonNumber":2,"runtime":43,"finaleType":"season"},
			{"id":8,"seriesId":280619,"name":"","number":2,"seasonNumber":2},
			{"id":10,"seriesId":280619,"name":"Orphan","number":1,"seasonNumber":7}
		]},"links":{"next":null}}`,
	}}
}

func TestSearchSeries(t *testing.T) {
	fake := expanseFake(t)
	client, err := New(Config{KeyFile: keyFile(t)}, &http.Client{Transport: fake}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	results, err := client.SearchSeries(context.Background(), provider.SearchRequest{Query: "The Expanse", Year: 2015})
	if err != nil {
		t.Fatalf("SearchSeries() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	s := results[0]
	if s.Name != "The Expanse" || s.Year != 2015 || s.Source != media.SourceTVDB {
		t.Errorf("series = %q %d %s", s.Name, s.Year, s.Source)
	}
	if s.BackdropPath != "banner.jpg" || s.PosterPath != "poster.jpg" {
		t.Errorf("artwork = %q %q", s.BackdropPath, s.PosterPath)
	}
	wantIDs := map[string]string{"tvdb": "280619", "imdb": "tt3230854", "tmdb": "63639"}
	if diff := cmp.Diff(wantIDs, s.IDs); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Drama", "Science Fiction"}, s.Genres); diff != "" {
		t.Errorf("Genres mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, s.SeasonNumbers()); diff != "" {
		t.Errorf("SeasonNumbers mismatch (-want +got):\n%s", diff)
	}
	if got := s.Season(1).IDs["tvdb"]; got != "2" {
		t.Errorf("season 1 should come from the official order, id = %q", got)
	}
	if got := s.Episode(1, 1).Runtime; got != 44*60 {
		t.Errorf("Runtime = %d", got)
	}
	if s.Episode(2, 2) != nil {
		t.Error("nameless episode should be rejected")
	}
	if got := s.Episode(2, 1).Type; got != "season" {
		t.Errorf("Type = %q", got)
	}
	if fake.logins != 1 {
		t.Errorf("logins = %d, want 1", fake.logins)
	}
}

func TestTokenRefresh(t *testing.T) {
	fake := expanseFake(t)
	client, err := New(Config{KeyFile: keyFile(t)}, &http.Client{Transport: fake}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	now := time.Now()
	client.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if _, err := client.authenticate(context.Background()); err != nil {
			t.Fatalf("authenticate() error = %v", err)
		}
	}
	if fake.logins != 1 {
		t.Fatalf("logins = %d, want 1 while token is fresh", fake.logins)
	}

	client.now = func() time.Time { return now.Add(25 * time.Hour) }
	if _, err := client.authenticate(context.Background()); err != nil {
		t.Fatalf("authenticate() error = %v", err)
	}
	if fake.logins != 2 {
		t.Errorf("logins = %d, want 2 after expiry", fake.logins)
	}
}

func TestLoginFailure(t *testing.T) {
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(401, `{"status":"failure"}`), nil
	})
	client, err := New(Config{KeyFile: keyFile(t)}, &http.Client{Transport: transport}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = client.SearchSeries(context.Background(), provider.SearchRequest{Query: "x"})
	var pe *provider.ProviderError
	if !errors.As(err, &pe) || pe.Code != provider.CodeAuthFailed {
		t.Fatalf("error = %v, want AUTH_FAILED", err)
	}
}

func TestSearchMoviesIsEmpty(t *testing.T) {
	client, err := New(Config{KeyFile: keyFile(t)}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	movies, err := client.SearchMovies(context.Background(), provider.SearchRequest{Query: "x"})
	if err != nil || movies == nil || len(movies) != 0 {
		t.Errorf("SearchMovies() = %v, %v; want empty non-nil slice", movies, err)
	}
}

func TestNewRequiresCredential(t *testing.T) {
	_, err := New(Config{KeyFile: filepath.Join(t.TempDir(), "TVDB_API_KEY")}, nil, zerolog.Nop())
	if !errors.Is(err, provider.ErrMissingCredential) {
		t.Fatalf("New() error = %v, want ErrMissingCredential", err)
	}
}
