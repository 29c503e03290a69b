// Package tag reads and writes the embedded title of video files.
package tag

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/vansante/go-ffprobe.v2"
)

var (
	// ErrToolUnavailable is returned when a required executable is not on PATH.
	ErrToolUnavailable = errors.New("tag tool unavailable")
	// ErrTagRejected is returned when the tool ran but refused the edit.
	ErrTagRejected = errors.New("title edit rejected")
)

// Tagger reads and writes the container title of a media file.
type Tagger interface {
	// ReadTitle returns the current title, or "" when unset or unreadable.
	ReadTitle(ctx context.Context, path string) string
	// WriteTitle sets the title. A missing tool yields ErrToolUnavailable,
	// a refused edit ErrTagRejected.
	WriteTitle(ctx context.Context, path, title string) error
}

// readFunc defines the function signature used to execute ffprobe.
type readFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

// runFunc runs an external command and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

const (
	readBinary = "ffprobe"
	editBinary = "mkvpropedit"
)

// MKVTool reads titles with ffprobe and writes them with mkvpropedit.
type MKVTool struct {
	read     readFunc
	run      runFunc
	lookPath func(string) (string, error)
	logger   zerolog.Logger
}

var _ Tagger = (*MKVTool)(nil)

// NewMKVTool returns a tagger backed by the ffprobe and mkvpropedit executables.
func NewMKVTool(logger zerolog.Logger) *MKVTool {
	return &MKVTool{
		read:     ffprobe.ProbeURL,
		run:      runCommand,
		lookPath: exec.LookPath,
		logger:   logger.With().Str("component", "tag").Logger(),
	}
}

// ReadTitle returns the container title reported by ffprobe.
func (m *MKVTool) ReadTitle(ctx context.Context, path string) string {
	if _, err := m.lookPath(readBinary); err != nil {
		m.logger.Debug().Err(err).Msg("ffprobe not found")
		return ""
	}
	data, err := m.read(ctx, path)
	if err != nil {
		m.logger.Debug().Err(err).Str("path", path).Msg("ffprobe failed")
		return ""
	}
	return titleFrom(data)
}

// WriteTitle sets the segment title with mkvpropedit.
func (m *MKVTool) WriteTitle(ctx context.Context, path, title string) error {
	bin, err := m.lookPath(editBinary)
	if err != nil {
		return fmt.Errorf("%s: %w", editBinary, ErrToolUnavailable)
	}
	title = strings.TrimSpace(title)
	out, err := m.run(ctx, bin, path, "--edit", "info", "--set", "title="+title)
	if err != nil {
		output := strings.TrimSpace(string(out))
		m.logger.Warn().
			Err(err).
			Str("path", path).
			Str("output", output).
			Msg("title edit rejected")
		if output == "" {
			output = err.Error()
		}
		return fmt.Errorf("%s: %w: %s", editBinary, ErrTagRejected, output)
	}
	return nil
}

func titleFrom(data *ffprobe.ProbeData) string {
	if data == nil || data.Format == nil {
		return ""
	}
	for _, key := range []string{"title", "TITLE", "Title"} {
		if title, err := data.Format.TagList.GetString(key); err == nil {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
