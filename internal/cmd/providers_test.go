package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Digital-Shane/title-match/internal/config"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/Digital-Shane/title-match/internal/provider/httpcache"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func openNoCache(t *testing.T) *httpcache.Session {
	t.Helper()
	cache, err := httpcache.Open(httpcache.Options{Backend: httpcache.BackendNone, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func writeKey(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("secret\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildRegistrySkipsMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Providers = []string{"omdb", "tmdb", "tvdb", "tvmaze"}
	cfg.Keys.TMDB = writeKey(t, dir, "tmdb")
	cfg.Keys.OMDb = writeKey(t, dir, "omdb")
	cfg.Keys.TVDB = filepath.Join(dir, "missing")

	registry, err := buildRegistry(cfg, openNoCache(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("buildRegistry() error = %v", err)
	}
	if diff := cmp.Diff([]string{"omdb", "tmdb", "tvmaze"}, registry.List()); diff != "" {
		t.Errorf("registry order mismatch (-want +got):\n%s", diff)
	}
	if got := len(registry.Enabled()); got != 3 {
		t.Errorf("Enabled() = %d providers, want 3", got)
	}
}

func TestBuildRegistryNoUsableProvider(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Providers = []string{"tmdb"}
	cfg.Keys.TMDB = filepath.Join(dir, "missing")

	_, err := buildRegistry(cfg, openNoCache(t), zerolog.Nop())
	if !errors.Is(err, errNoProviders) {
		t.Errorf("buildRegistry() error = %v, want errNoProviders", err)
	}
}

func TestNewArtworkClientNeedsProjectKey(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Keys.FanartProject = filepath.Join(dir, "missing")
	cfg.Keys.FanartClient = filepath.Join(dir, "also-missing")

	if _, err := newArtworkClient(cfg, openNoCache(t), zerolog.Nop()); err == nil {
		t.Fatal("want error without a project key")
	}

	cfg.Keys.FanartProject = writeKey(t, dir, "project")
	client, err := newArtworkClient(cfg, openNoCache(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("newArtworkClient() error = %v", err)
	}
	if client.Name() != "fanarttv" {
		t.Errorf("Name() = %s", client.Name())
	}
}

func TestSelectProviders(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		only    []string
		skip    []string
		want    []string
		wantErr bool
	}{
		{name: "all", want: []string{"tmdb", "tvdb", "tvmaze"}},
		{name: "only keeps config order", only: []string{"tvmaze", "tmdb"}, want: []string{"tmdb", "tvmaze"}},
		{name: "skip", skip: []string{"tvdb"}, want: []string{"tmdb", "tvmaze"}},
		{name: "only and skip", only: []string{"tmdb", "tvdb"}, skip: []string{"tmdb"}, want: []string{"tvdb"}},
		{name: "unconfigured", only: []string{"omdb"}, wantErr: true},
		{name: "unknown skip", skip: []string{"imdb"}, wantErr: true},
		{name: "nothing left", skip: []string{"tmdb", "tvdb", "tvmaze"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := provider.NewRegistry()
			for _, name := range []string{"tmdb", "tvdb", "tvmaze"} {
				if err := registry.Register(stubProvider{name: name}); err != nil {
					t.Fatal(err)
				}
			}
			err := selectProviders(registry, tt.only, tt.skip)
			if (err != nil) != tt.wantErr {
				t.Fatalf("selectProviders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			var got []string
			for _, p := range registry.Enabled() {
				got = append(got, p.Name())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Enabled() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
