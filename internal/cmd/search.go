package cmd

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/spf13/cobra"
)

var (
	searchYear   int
	searchMovie  bool
	searchLimit  int
	searchSeason int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalogs for a series or movie",
	Long: `Search every enabled catalog provider concurrently and list the candidates
in provider order. A provider that fails is reported and the others still answer.

Pass --season to list the episodes of the first series candidate.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCommand,
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	mode := provider.ModeSeries
	if searchMovie {
		mode = provider.ModeMovie
	}
	req := provider.SearchRequest{
		Query: strings.Join(args, " "),
		Year:  searchYear,
		Limit: limitOr(searchLimit, a.cfg.SearchLimit),
	}

	res := a.engine.Search(cmd.Context(), mode, req)
	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderSearch(res, a.styles))

	if searchSeason >= 0 && len(res.Series) > 0 {
		series := res.Series[0]
		season := series.Season(searchSeason)
		if season == nil {
			return fmt.Errorf("%s has no season %d", series.Name, searchSeason)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, a.styles.title.Render(fmt.Sprintf("%s season %d", series.Name, searchSeason)))
		fmt.Fprint(out, episodeTable(season).render(a.styles))
	}
	return nil
}

func limitOr(flag, configured int) int {
	if flag > 0 {
		return flag
	}
	return configured
}

func init() {
	searchCmd.Flags().IntVarP(&searchYear, "year", "y", 0, "Restrict results to this release year")
	searchCmd.Flags().BoolVarP(&searchMovie, "movie", "m", false, "Search movies instead of series")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Candidates to expand per provider (default from config)")
	searchCmd.Flags().IntVarP(&searchSeason, "season", "s", -1, "List the episodes of this season of the first series")
	rootCmd.AddCommand(searchCmd)
}
