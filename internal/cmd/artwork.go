package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"

	"github.com/Digital-Shane/title-match/internal/core"
	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/Digital-Shane/title-match/internal/provider/fanart"
	"github.com/spf13/cobra"
)

var (
	artworkMovie    bool
	artworkSeason   int
	artworkTypes    []string
	artworkDownload string
)

var artworkCmd = &cobra.Command{
	Use:   "artwork <id>",
	Short: "List or download fanart.tv artwork for a series or movie",
	Long: `Fetch artwork from fanart.tv. Series are looked up by TVDB id, movies by TMDB
or IMDb id. Artwork types are normalized, e.g. hdtvlogo and hdmovielogo are
listed as clearlogo.

With --download every listed image is saved to the directory under its own
file name; files already present are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runArtworkCommand,
}

// artworkSection is one table of the output: series wide, a season or a movie.
type artworkSection struct {
	label string
	group *media.ArtworkGroup
}

func runArtworkCommand(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := newArtworkClient(a.cfg, a.cache, a.log.Logger)
	if err != nil {
		if errors.Is(err, provider.ErrMissingCredential) {
			return fmt.Errorf("fanart.tv needs a project key in %s: %w", a.cfg.Keys.FanartProject, err)
		}
		return err
	}

	sections, err := fetchArtwork(cmd, client, args[0])
	if err != nil {
		return err
	}

	types := make([]string, 0, len(artworkTypes))
	for _, t := range artworkTypes {
		types = append(types, fanart.NormalizeType(t))
	}
	sections = filterSections(sections, types)

	out := cmd.OutOrStdout()
	if len(sections) == 0 {
		fmt.Fprintln(out, a.styles.muted.Render("No artwork found."))
		return nil
	}
	for _, s := range sections {
		fmt.Fprint(out, artworkTable(s.group, s.label).render(a.styles))
	}

	if artworkDownload == "" {
		return nil
	}
	if err := os.MkdirAll(artworkDownload, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", artworkDownload, err)
	}
	images := &http.Client{Timeout: a.cfg.HTTPTimeout()}
	var failed int
	for _, s := range sections {
		for _, kind := range s.group.Types() {
			for _, art := range s.group.Get(kind) {
				path, err := core.DownloadImage(cmd.Context(), images, art.URL, artworkDownload)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s %s\n", a.styles.icon("error"), a.styles.failure.Render(err.Error()))
					continue
				}
				fmt.Fprintf(out, "%s %s\n", a.styles.icon("art"), path)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d image download%s failed", failed, plural(failed))
	}
	return nil
}

func fetchArtwork(cmd *cobra.Command, client *fanart.Client, id string) ([]artworkSection, error) {
	ctx := cmd.Context()
	if artworkMovie {
		art, err := client.MovieArtwork(ctx, id)
		if err != nil {
			return nil, err
		}
		return []artworkSection{{label: "-", group: &art.ArtworkGroup}}, nil
	}

	art, err := client.SeriesArtwork(ctx, id)
	if err != nil {
		return nil, err
	}
	return seriesSections(art, artworkSeason), nil
}

// seriesSections splits series artwork into the series wide group followed by
// each season in order. A season >= 0 keeps only that season.
func seriesSections(art *media.SeriesArtwork, season int) []artworkSection {
	var sections []artworkSection
	if season < 0 {
		sections = append(sections, artworkSection{label: "all", group: &art.ArtworkGroup})
	}
	for _, n := range art.SeasonNumbers() {
		if season >= 0 && n != season {
			continue
		}
		sections = append(sections, artworkSection{label: fmt.Sprint(n), group: art.Seasons[n]})
	}
	return sections
}

// filterSections keeps only the requested types and drops empty groups.
func filterSections(sections []artworkSection, types []string) []artworkSection {
	out := make([]artworkSection, 0, len(sections))
	for _, s := range sections {
		group := s.group
		if len(types) > 0 {
			group = media.NewArtworkGroup(s.group.MediaType)
			for _, kind := range s.group.Types() {
				if !slices.Contains(types, kind) {
					continue
				}
				for _, art := range s.group.Get(kind) {
					group.Add(art)
				}
			}
		}
		if group.Len() > 0 {
			out = append(out, artworkSection{label: s.label, group: group})
		}
	}
	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func init() {
	artworkCmd.Flags().BoolVarP(&artworkMovie, "movie", "m", false, "Look up a movie (TMDB or IMDb id) instead of a series (TVDB id)")
	artworkCmd.Flags().IntVarP(&artworkSeason, "season", "s", -1, "Only list artwork for this season (0 for specials)")
	artworkCmd.Flags().StringSliceVarP(&artworkTypes, "type", "t", nil, "Only list these artwork types, e.g. poster,clearlogo")
	artworkCmd.Flags().StringVarP(&artworkDownload, "download", "d", "", "Save the listed images to this directory")
	rootCmd.AddCommand(artworkCmd)
}
