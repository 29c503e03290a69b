package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Digital-Shane/title-match/internal/config"
	"github.com/Digital-Shane/title-match/internal/core"
	"github.com/Digital-Shane/title-match/internal/log"
	"github.com/Digital-Shane/title-match/internal/logger"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/Digital-Shane/title-match/internal/provider/httpcache"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "title-match",
	Short: "Match media files against online catalogs and rename them",
	Long: `title-match searches TMDB, TVDB, TVmaze and OMDb for a series or movie,
binds the chosen episode to a file and renames it to "Name (Year) SxxEyy.ext",
writing the episode title into the container's title tag.

Catalog responses are cached on disk so repeated lookups stay fast and polite.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var (
	logLevel             string
	providerNames        []string
	skipProviders        []string
	language             string
	allowMissingEpisodes bool
	cacheBackend         string
	useASCII             bool
)

func init() {
	// Global flags for all commands
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, off")
	rootCmd.PersistentFlags().StringSliceVar(&providerNames, "providers", nil, "Only search these configured providers, e.g. tmdb,tvmaze")
	rootCmd.PersistentFlags().StringSliceVar(&skipProviders, "skip-providers", nil, "Do not search these configured providers")
	rootCmd.PersistentFlags().StringVar(&language, "language", "", "Metadata language for TMDB, e.g. en-US")
	rootCmd.PersistentFlags().BoolVar(&allowMissingEpisodes, "allow-missing-episodes", false, "Keep OMDb seasons whose episode list has gaps")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache", "", "Response cache backend: bolt, memory or none")
	rootCmd.PersistentFlags().BoolVar(&useASCII, "ascii", false, "Use ASCII icons instead of emoji")
}

// app is everything a command needs for one invocation.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	cache    *httpcache.Session
	registry *provider.Registry
	engine   *core.SearchEngine
	styles   styles
}

// setup loads the configuration, applies flag overrides and opens the
// shared response cache and provider clients.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	logDir, err := config.Resolve(cfg.LogPath)
	if err != nil {
		return nil, err
	}
	lg := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Path:   logDir,
	})
	log.Initialize(cfg.EnableLogging, cfg.LogRetentionDays, lg.WithComponent("journal"))

	cachePath, err := cfg.CacheFile()
	if err != nil {
		lg.Close()
		return nil, err
	}
	cache, err := httpcache.Open(httpcache.Options{
		Backend: cfg.CacheBackend,
		Path:    cachePath,
		TTL:     cfg.CacheTTL(),
		Timeout: cfg.HTTPTimeout(),
		Logger:  lg.WithComponent("httpcache"),
	})
	if err != nil {
		lg.Close()
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}

	registry, err := buildRegistry(cfg, cache, lg.Logger)
	if err == nil {
		err = selectProviders(registry, providerNames, skipProviders)
	}
	if err != nil {
		cache.Close()
		lg.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      lg,
		cache:    cache,
		registry: registry,
		engine:   core.NewSearchEngine(registry.Enabled(), lg.Logger),
		styles:   newStyles(useASCII || limitedTerminal()),
	}, nil
}

// Close flushes the cache and log file.
func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close response cache")
	}
	a.log.Close()
}

// applyFlags overrides cfg with the persistent flags the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("language") {
		cfg.Language = language
	}
	if flags.Changed("allow-missing-episodes") {
		cfg.OMDbAllowMissingEpisodes = allowMissingEpisodes
	}
	if flags.Changed("cache") {
		cfg.CacheBackend = cacheBackend
	}
	return cfg.Validate()
}
