package fanart

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Digital-Shane/title-match/internal/media"
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

func writeKey(t *testing.T, dir, name, value string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newClient(t *testing.T, fn roundTripFunc) *Client {
	t.Helper()
	dir := t.TempDir()
	client, err := New(Config{
		ProjectKeyFile: writeKey(t, dir, "FANARTTV_PROJECT_API_KEY", "project"),
		ClientKeyFile:  writeKey(t, dir, "FANARTTV_API_KEY", "personal"),
	}, &http.Client{Transport: fn}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNormalizeType(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"hdmovielogo":    media.ArtClearLogo,
		"hdtvlogo":       media.ArtClearLogo,
		"movieart":       media.ArtClearArt,
		"showbackground": media.ArtFanart,
		"seasonthumb":    media.ArtLandscape,
		"moviedisc":      media.ArtDiscArt,
		"characterart":   "characterart",
		"mysterytype":    "mysterytype",
	}
	for in, want := range tests {
		if got := NormalizeType(in); got != want {
			t.Errorf("NormalizeType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeasonScope(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		number   int
		seasonal bool
		ok       bool
	}{
		{"all", 0, false, true},
		{"", 0, false, true},
		{"3", 3, true, true},
		{"0", 0, true, true},
		{"specials", 0, true, true},
		{"Special", 0, true, true},
		{"abc", 0, false, false},
	}
	for _, tt := range tests {
		n, seasonal, ok := SeasonScope(tt.in)
		if n != tt.number || seasonal != tt.seasonal || ok != tt.ok {
			t.Errorf("SeasonScope(%q) = %d, %v, %v; want %d, %v, %v", tt.in, n, seasonal, ok, tt.number, tt.seasonal, tt.ok)
		}
	}
}

func TestSeriesArtwork(t *testing.T) {
	client := newClient(t, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("api_key") != "project" || q.Get("client_key") != "personal" {
			t.Errorf("keys = %v", q)
		}
		if req.URL.Path != "/v3/tv/121361" {
			t.Errorf("path = %s", req.URL.Path)
		}
		return jsonResponse(200, `{
			"name":"Game of Thrones","thetvdb_id":"121361",
			"hdtvlogo":[{"id":"1","url":"https://a/logo.png","lang":"en","likes":"3"},
			            {"id":"1","url":"https://a/logo-dup.png","lang":"en"}],
			"tvposter":[{"id":"2","url":"","lang":"en"}],
			"seasonposter":[
				{"id":"3","url":"https://a/s1.jpg","lang":"en","season":"1"},
				{"id":"4","url":"https://a/all.jpg","lang":"en","season":"all"},
				{"id":"5","url":"https://a/sp.jpg","lang":"en","season":"specials"}
			],
			"seasonthumb":[{"id":"6","url":"https://a/t.jpg","lang":"en","season":"x"}]
		}`), nil
	})

	art, err := client.SeriesArtwork(context.Background(), "121361")
	if err != nil {
		t.Fatalf("SeriesArtwork() error = %v", err)
	}
	if art.IDs["tvdb"] != "121361" || art.MediaType != media.ArtworkSeries {
		t.Errorf("group = %v %s", art.IDs, art.MediaType)
	}
	logos := art.Get(media.ArtClearLogo)
	if len(logos) != 1 || logos[0].URL != "https://a/logo.png" {
		t.Errorf("clearlogo = %+v, want one deduplicated logo", logos)
	}
	if got := art.Get(media.ArtPoster); len(got) != 1 || got[0].URL != "https://a/all.jpg" {
		t.Errorf("series posters = %+v, want only the season=all item", got)
	}
	if diff := cmp.Diff([]int{0, 1}, art.SeasonNumbers()); diff != "" {
		t.Errorf("SeasonNumbers mismatch (-want +got):\n%s", diff)
	}
	if got := art.SeasonArt(0, media.ArtPoster); len(got) != 1 || got[0].URL != "https://a/sp.jpg" {
		t.Errorf("specials poster = %+v", got)
	}
	if got := art.SeasonArt(1, media.ArtPoster); len(got) != 1 || got[0].Language != "en" {
		t.Errorf("season 1 poster = %+v", got)
	}
}

func TestMovieArtwork(t *testing.T) {
	client := newClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{
			"name":"The Matrix","tmdb_id":"603","imdb_id":"tt0133093",
			"hdmovielogo":[{"id":"10","url":"https://a/l.png","lang":"en"}],
			"moviedisc":[{"id":"11","url":"https://a/d.png","lang":"en","disc":"1","disc_type":"bluray"}],
			"movieposter":[{"id":"12","url":"https://a/p.jpg","lang":"de"}]
		}`), nil
	})

	art, err := client.MovieArtwork(context.Background(), "603")
	if err != nil {
		t.Fatalf("MovieArtwork() error = %v", err)
	}
	wantIDs := map[string]string{"tmdb": "603", "imdb": "tt0133093"}
	if diff := cmp.Diff(wantIDs, art.IDs); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{media.ArtClearLogo, media.ArtDiscArt, media.ArtPoster}, art.Types()); diff != "" {
		t.Errorf("Types mismatch (-want +got):\n%s", diff)
	}
	if art.Len() != 3 {
		t.Errorf("Len() = %d, want 3", art.Len())
	}
}

func TestArtworkNotFound(t *testing.T) {
	client := newClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(404, `{"status":"error","error message":"Not found"}`), nil
	})
	art, err := client.MovieArtwork(context.Background(), "0")
	if err != nil {
		t.Fatalf("MovieArtwork() error = %v", err)
	}
	if art.Len() != 0 {
		t.Errorf("Len() = %d, want 0", art.Len())
	}
}

func TestClientKeyIsOptional(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Config{
		ProjectKeyFile: writeKey(t, dir, "FANARTTV_PROJECT_API_KEY", "project"),
		ClientKeyFile:  filepath.Join(dir, "FANARTTV_API_KEY"),
	}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v, client key should be optional", err)
	}
}
