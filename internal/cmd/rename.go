package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Digital-Shane/title-match/internal/core"
	"github.com/Digital-Shane/title-match/internal/log"
	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/Digital-Shane/title-match/internal/tag"
	"github.com/spf13/cobra"
)

// renameOptions are the rename flags. Numbers left at media.UnsetNumber
// fall back to what the first filename says.
type renameOptions struct {
	Query    string
	Year     int
	Movie    bool
	Provider string
	Index    int
	Season   int
	Episode  int
	RangeEnd int
	Part     int
	DryRun   bool
}

var renameOpts = renameOptions{
	Season:   media.UnsetNumber,
	Episode:  media.UnsetNumber,
	RangeEnd: media.UnsetNumber,
	Part:     media.UnsetNumber,
}

var renameCmd = &cobra.Command{
	Use:   "rename <file> [file...]",
	Short: "Rename media files to a catalog match and tag their titles",
	Long: `Search the catalogs using the first file's name (or --query), pick candidate
--index and rename the file to "Name (Year) SxxEyy.ext" or "Name (Year).ext".

Several files are renamed in order: after each success the next episode of the
series is selected for the following file. The episode title is written into
the container title tag when mkvpropedit is available.

Renames are journaled and can be reverted with "title-match undo".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRenameCommand,
}

// renamePlan is what a rename run searches for and binds.
type renamePlan struct {
	Mode     provider.Mode
	Request  provider.SearchRequest
	Season   int
	Episode  int
	RangeEnd string
	Part     string
}

// planRename merges the flags with the hints parsed from path. Without an
// episode marker or --season/--episode the file is treated as a movie.
func planRename(path string, opts renameOptions, limit int) (renamePlan, error) {
	hints := media.ParseFilename(path)

	plan := renamePlan{
		Mode:    provider.ModeSeries,
		Season:  pick(opts.Season, hints.Season),
		Episode: pick(opts.Episode, hints.Episode),
		Request: provider.SearchRequest{
			Query: opts.Query,
			Year:  opts.Year,
			Limit: limit,
		},
	}
	if plan.Request.Query == "" {
		plan.Request.Query = hints.Query
	}
	if plan.Request.Query == "" {
		return renamePlan{}, fmt.Errorf("cannot guess a title from %q, pass --query", path)
	}
	if plan.Request.Year == 0 {
		plan.Request.Year = hints.Year
	}
	if opts.Movie || (plan.Season == media.UnsetNumber && plan.Episode == media.UnsetNumber) {
		plan.Mode = provider.ModeMovie
		return plan, nil
	}
	if n := pick(opts.RangeEnd, hints.RangeEnd); n != media.UnsetNumber {
		plan.RangeEnd = fmt.Sprintf("%02d", n)
	}
	if n := pick(opts.Part, hints.Part); n != media.UnsetNumber {
		plan.Part = fmt.Sprintf("%02d", n)
	}
	return plan, nil
}

func pick(flag, hint int) int {
	if flag != media.UnsetNumber {
		return flag
	}
	return hint
}

// candidateIndex maps the index-th candidate of one provider to its position
// in the merged list. An empty name indexes the merged list directly.
func candidateIndex(sources []string, name string, index int) (int, error) {
	if name == "" {
		if index < 0 || index >= len(sources) {
			return -1, fmt.Errorf("candidate %d: %w (%d found)", index, core.ErrNoCandidate, len(sources))
		}
		return index, nil
	}
	n := 0
	for i, src := range sources {
		if src != name {
			continue
		}
		if n == index {
			return i, nil
		}
		n++
	}
	return -1, fmt.Errorf("%s candidate %d: %w", name, index, core.ErrNoCandidate)
}

func runRenameCommand(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := planRename(args[0], renameOpts, a.cfg.SearchLimit)
	if err != nil {
		return err
	}

	if renameOpts.Provider != "" {
		if _, ok := a.registry.Get(renameOpts.Provider); !ok {
			return fmt.Errorf("--provider %s: not configured (have %s)", renameOpts.Provider, strings.Join(a.registry.List(), ", "))
		}
	}

	ctx := cmd.Context()
	logger := a.log.Logger
	session := core.NewSession(a.engine, core.NewExecutor(tag.NewMKVTool(logger), logger), logger)

	searches, err := session.StartSearch(ctx, plan.Mode, plan.Request)
	if err != nil {
		return err
	}
	res := <-searches
	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderFailures(res.Failures, a.styles))
	if res.Len() == 0 {
		return fmt.Errorf("no %s matches %q", plan.Mode, plan.Request.Query)
	}

	if err := selectCandidate(session, res, plan, renameOpts); err != nil {
		return err
	}

	if !renameOpts.DryRun {
		if err := log.StartSession("rename", args); err != nil {
			logger.Warn().Err(err).Msg("journal unavailable")
		}
		defer func() {
			if err := log.EndSession(); err != nil {
				logger.Warn().Err(err).Msg("failed to write journal")
			}
		}()
	}

	for i, path := range args {
		if i > 0 {
			hints := media.ParseFilename(path)
			session.EditFields(func(f *core.Fields) {
				f.RangeEnd = optional(hints.RangeEnd)
				f.Part = optional(hints.Part)
			})
		}
		renames, err := session.StartRename(ctx, path, renameOpts.DryRun)
		if err != nil {
			return err
		}
		r := <-renames
		fmt.Fprint(out, renderResult(r, renameOpts.DryRun, a.styles))
		if r.State != core.StateDone {
			return r.Err
		}
		rest := args[i+1:]
		if len(rest) == 0 || plan.Mode != provider.ModeSeries {
			continue
		}
		if renameOpts.DryRun {
			// Dry runs leave the session on the same episode.
			series, season, episode := session.Selection()
			s, e, ok := core.NextEpisode(series, season, episode)
			if !ok {
				return outOfEpisodes(out, rest, a.styles)
			}
			if err := session.SelectEpisode(s, e); err != nil {
				return err
			}
		} else if session.Exhausted() {
			return outOfEpisodes(out, rest, a.styles)
		}
	}
	return nil
}

// outOfEpisodes reports the files left over once the series has no episode
// after the last one renamed.
func outOfEpisodes(out io.Writer, rest []string, s styles) error {
	for _, path := range rest {
		fmt.Fprintf(out, "%s %s\n", s.icon("warning"), s.muted.Render(path+": not renamed"))
	}
	return fmt.Errorf("%d file%s left over: %w", len(rest), plural(len(rest)), core.ErrNoNextEpisode)
}

// selectCandidate chooses the candidate named by the flags and binds the
// planned episode and extras.
func selectCandidate(session *core.Session, res core.SearchResult, plan renamePlan, opts renameOptions) error {
	if plan.Mode == provider.ModeMovie {
		sources := make([]string, len(res.Movies))
		for i, m := range res.Movies {
			sources[i] = m.Source
		}
		i, err := candidateIndex(sources, opts.Provider, opts.Index)
		if err != nil {
			return err
		}
		return session.SelectMovie(i)
	}

	sources := make([]string, len(res.Series))
	for i, s := range res.Series {
		sources[i] = s.Source
	}
	i, err := candidateIndex(sources, opts.Provider, opts.Index)
	if err != nil {
		return err
	}
	if err := session.SelectSeries(i); err != nil {
		return err
	}
	if plan.Season != media.UnsetNumber || plan.Episode != media.UnsetNumber {
		_, season, episode := session.Selection()
		if plan.Season != media.UnsetNumber {
			season = plan.Season
		}
		if plan.Episode != media.UnsetNumber {
			episode = plan.Episode
		}
		if err := session.SelectEpisode(season, episode); err != nil {
			if errors.Is(err, core.ErrNoSuchEpisode) {
				return fmt.Errorf("%s: %w", res.Series[i].Name, err)
			}
			return err
		}
	}
	session.EditFields(func(f *core.Fields) {
		f.RangeEnd = plan.RangeEnd
		f.Part = plan.Part
	})
	return nil
}

func optional(n int) string {
	if n == media.UnsetNumber {
		return ""
	}
	return strconv.Itoa(n)
}

func init() {
	f := renameCmd.Flags()
	f.StringVarP(&renameOpts.Query, "query", "q", "", "Search text (default guessed from the filename)")
	f.IntVarP(&renameOpts.Year, "year", "y", 0, "Release year to search for")
	f.BoolVarP(&renameOpts.Movie, "movie", "m", false, "Treat the file as a movie")
	f.StringVarP(&renameOpts.Provider, "provider", "p", "", "Pick --index among this provider's candidates")
	f.IntVarP(&renameOpts.Index, "index", "i", 0, "Candidate to use")
	f.IntVarP(&renameOpts.Season, "season", "s", media.UnsetNumber, "Season number (default from the filename)")
	f.IntVarP(&renameOpts.Episode, "episode", "e", media.UnsetNumber, "Episode number (default from the filename)")
	f.IntVar(&renameOpts.RangeEnd, "range-end", media.UnsetNumber, "Last episode of a multi-episode file")
	f.IntVar(&renameOpts.Part, "part", media.UnsetNumber, "Part number of a split episode")
	f.BoolVarP(&renameOpts.DryRun, "dry-run", "n", false, "Show the new names without renaming")
	rootCmd.AddCommand(renameCmd)
}
