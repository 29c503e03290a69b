package log

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// TitleWriter restores embedded titles when a tag operation is undone.
type TitleWriter interface {
	WriteTitle(ctx context.Context, path, title string) error
}

type UndoResult struct {
	Operation OperationLog
	Success   bool
	Error     error
}

// UndoOperation reverses a single journaled operation. Tag operations need a
// TitleWriter; with a nil writer they fail.
func UndoOperation(ctx context.Context, op OperationLog, titles TitleWriter) UndoResult {
	result := UndoResult{Operation: op}

	switch op.Type {
	case OpRename:
		if op.DestPath == "" {
			result.Error = fmt.Errorf("cannot undo rename: destination path missing")
			return result
		}
		if _, err := os.Stat(op.DestPath); os.IsNotExist(err) {
			result.Error = fmt.Errorf("cannot undo rename: file %s not found", op.DestPath)
			return result
		}
		// Never overwrite whatever now sits at the original path.
		if _, err := os.Stat(op.SourcePath); err == nil {
			result.Error = fmt.Errorf("cannot undo rename: original path %s already exists", op.SourcePath)
			return result
		}
		if err := os.Rename(op.DestPath, op.SourcePath); err != nil {
			result.Error = fmt.Errorf("failed to rename %s back to %s: %w", op.DestPath, op.SourcePath, err)
			return result
		}
		result.Success = true

	case OpTag:
		if op.SourcePath == "" {
			result.Error = fmt.Errorf("cannot undo tag: path missing")
			return result
		}
		if titles == nil {
			result.Error = fmt.Errorf("cannot undo tag on %s: no title writer", op.SourcePath)
			return result
		}
		if _, err := os.Stat(op.SourcePath); os.IsNotExist(err) {
			result.Error = fmt.Errorf("cannot undo tag: file %s not found", op.SourcePath)
			return result
		}
		if err := titles.WriteTitle(ctx, op.SourcePath, op.PrevTitle); err != nil {
			result.Error = fmt.Errorf("failed to restore title of %s: %w", op.SourcePath, err)
			return result
		}
		result.Success = true

	default:
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return result
}

// UndoSession reverses the successful operations of a session, newest first,
// so a title written after a rename is restored before the rename is reverted.
func UndoSession(ctx context.Context, session *LogSession, titles TitleWriter) (successful int, failed int, errs []error) {
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]
		if !op.Success {
			continue
		}

		result := UndoOperation(ctx, op, titles)
		if result.Success {
			successful++
			continue
		}
		failed++
		if result.Error != nil {
			errs = append(errs, result.Error)
		}
	}
	return successful, failed, errs
}

// ErrNoSessions is returned when the journal holds nothing to undo.
var ErrNoSessions = errors.New("no sessions found")

// FindLatestSession returns the newest journaled session and its file.
func FindLatestSession() (*LogSession, string, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sessions: %w", err)
	}
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		return session, file, nil
	}
	return nil, "", ErrNoSessions
}

type SessionSummary struct {
	Session      *LogSession
	FilePath     string
	RelativeTime string
	Icon         string
}

// GetSessionSummaries lists journaled sessions newest first.
func GetSessionSummaries() ([]SessionSummary, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		summaries = append(summaries, SessionSummary{
			Session:      session,
			FilePath:     file,
			RelativeTime: formatRelativeTime(session.Metadata.Timestamp),
			Icon:         getCommandIcon(session.Metadata.CommandArgs),
		})
	}
	return summaries, nil
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func getCommandIcon(args []string) string {
	if len(args) == 0 {
		return "❓"
	}
	switch args[0] {
	case "rename":
		return "🎬"
	case "undo":
		return "↩️"
	default:
		return "📝"
	}
}
