package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Digital-Shane/title-match/internal/config"
	"github.com/Digital-Shane/title-match/internal/log"
	"github.com/Digital-Shane/title-match/internal/logger"
	"github.com/Digital-Shane/title-match/internal/tag"
	"github.com/spf13/cobra"
)

var (
	undoList    bool
	undoSession string
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo recent rename operations",
	Long: `Revert the most recent journaled rename session, or the one named by --session.

Operations are undone newest first: title tags get their previous value back,
then files are moved back to their original names. A file is never moved over
an existing one. Use --list to see the journaled sessions.`,
	Args: cobra.NoArgs,
	RunE: runUndoCommand,
}

func runUndoCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer lg.Close()
	log.Initialize(cfg.EnableLogging, cfg.LogRetentionDays, lg.WithComponent("journal"))

	st := newStyles(useASCII || limitedTerminal())
	out := cmd.OutOrStdout()

	summaries, err := log.GetSessionSummaries()
	if err != nil {
		return fmt.Errorf("failed to read log sessions: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No operation sessions found to undo.")
		return nil
	}

	if undoList {
		fmt.Fprint(out, sessionTable(summaries).render(st))
		return nil
	}

	var session *log.LogSession
	var file string
	if undoSession == "" {
		session, file, err = log.FindLatestSession()
		if err != nil {
			return err
		}
	} else {
		for _, s := range summaries {
			if s.Session.Metadata.SessionID == undoSession {
				session, file = s.Session, s.FilePath
				break
			}
		}
		if session == nil {
			return fmt.Errorf("session %s: %w", undoSession, log.ErrNoSessions)
		}
	}

	meta := session.Metadata
	fmt.Fprintf(out, "Undoing %s (%s, %d ops)\n", strings.Join(meta.CommandArgs, " "), meta.Timestamp.Format("Jan 2 15:04"), meta.TotalOps)

	successful, failed, errs := log.UndoSession(cmd.Context(), session, tag.NewMKVTool(lg.Logger))
	for _, err := range errs {
		fmt.Fprintf(out, "%s %s\n", st.icon("error"), st.failure.Render(err.Error()))
	}
	fmt.Fprintf(out, "%s %d undone, %d failed\n", st.icon("success"), successful, failed)

	if failed > 0 {
		return fmt.Errorf("%d operation%s could not be undone", failed, plural(failed))
	}
	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		lg.Warn().Err(err).Str("path", file).Msg("failed to remove undone session")
	}
	return nil
}

func sessionTable(summaries []log.SessionSummary) *table {
	t := newTable("", "SESSION", "WHEN", "COMMAND", "OPS", "FAILED").limit(3, 50)
	for _, s := range summaries {
		meta := s.Session.Metadata
		t.add(
			s.Icon,
			meta.SessionID,
			s.RelativeTime,
			strings.Join(meta.CommandArgs, " "),
			fmt.Sprint(meta.TotalOps),
			fmt.Sprint(meta.FailedOps),
		)
	}
	return t
}

func init() {
	undoCmd.Flags().BoolVarP(&undoList, "list", "l", false, "List journaled sessions instead of undoing")
	undoCmd.Flags().StringVar(&undoSession, "session", "", "Undo this session id instead of the latest")
	rootCmd.AddCommand(undoCmd)
}
