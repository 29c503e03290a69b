package cmd

import (
	"errors"
	"fmt"

	"github.com/Digital-Shane/title-match/internal/config"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/Digital-Shane/title-match/internal/provider/fanart"
	"github.com/Digital-Shane/title-match/internal/provider/httpcache"
	"github.com/Digital-Shane/title-match/internal/provider/omdb"
	"github.com/Digital-Shane/title-match/internal/provider/tmdb"
	"github.com/Digital-Shane/title-match/internal/provider/tvdb"
	"github.com/Digital-Shane/title-match/internal/provider/tvmaze"
	"github.com/rs/zerolog"
)

var (
	errNoProviders     = errors.New("no catalog provider is usable; add an API key file to ~/.title-match")
	errAllProvidersOff = errors.New("every usable provider is excluded by --providers or --skip-providers")
)

// buildRegistry constructs the configured providers in configuration order.
// Providers without a credential are skipped with a warning.
func buildRegistry(cfg *config.Config, cache *httpcache.Session, logger zerolog.Logger) (*provider.Registry, error) {
	registry := provider.NewRegistry()
	for _, name := range cfg.Providers {
		p, err := newProvider(name, cfg, cache, logger)
		if err != nil {
			if errors.Is(err, provider.ErrMissingCredential) {
				logger.Warn().Err(err).Str("provider", name).Msg("provider skipped")
				continue
			}
			return nil, err
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	if len(registry.List()) == 0 {
		return nil, errNoProviders
	}
	return registry, nil
}

// selectProviders narrows the registry to the --providers and
// --skip-providers flags. Configuration order is kept either way.
func selectProviders(registry *provider.Registry, only, skip []string) error {
	if len(only) > 0 {
		if err := registry.Only(only...); err != nil {
			return fmt.Errorf("--providers: %w", err)
		}
	}
	for _, name := range skip {
		if err := registry.Disable(name); err != nil {
			return fmt.Errorf("--skip-providers: %w", err)
		}
	}
	if len(registry.Enabled()) == 0 {
		return errAllProvidersOff
	}
	return nil
}

func newProvider(name string, cfg *config.Config, cache *httpcache.Session, logger zerolog.Logger) (provider.Provider, error) {
	switch name {
	case "tmdb":
		keyFile, err := config.Resolve(cfg.Keys.TMDB)
		if err != nil {
			return nil, err
		}
		return tmdb.New(tmdb.Config{
			KeyFile:      keyFile,
			Language:     cfg.Language,
			IncludeAdult: cfg.IncludeAdult,
		}, cache.Client(name, tmdb.RateLimit), logger)
	case "tvdb":
		keyFile, err := config.Resolve(cfg.Keys.TVDB)
		if err != nil {
			return nil, err
		}
		return tvdb.New(tvdb.Config{
			KeyFile:    keyFile,
			Language:   cfg.TVDBLanguage,
			SeasonType: cfg.TVDBSeasonType,
		}, cache.Client(name, tvdb.RateLimit), logger)
	case "tvmaze":
		return tvmaze.New(tvmaze.Config{}, cache.Client(name, tvmaze.RateLimit), logger), nil
	case "omdb":
		keyFile, err := config.Resolve(cfg.Keys.OMDb)
		if err != nil {
			return nil, err
		}
		return omdb.New(omdb.Config{
			KeyFile:              keyFile,
			AllowMissingEpisodes: cfg.OMDbAllowMissingEpisodes,
		}, cache.Client(name, omdb.RateLimit), logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// newArtworkClient builds the fanart.tv client from the configured key files.
func newArtworkClient(cfg *config.Config, cache *httpcache.Session, logger zerolog.Logger) (*fanart.Client, error) {
	projectKey, err := config.Resolve(cfg.Keys.FanartProject)
	if err != nil {
		return nil, err
	}
	clientKey, err := config.Resolve(cfg.Keys.FanartClient)
	if err != nil {
		return nil, err
	}
	return fanart.New(fanart.Config{
		ProjectKeyFile: projectKey,
		ClientKeyFile:  clientKey,
	}, cache.Client("fanarttv", fanart.RateLimit), logger)
}
