package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/title-match/internal/log"
	"github.com/Digital-Shane/title-match/internal/provider"
	"github.com/Digital-Shane/title-match/internal/tag"
	"github.com/rs/zerolog"
)

// State is a step of the rename/tag sequence.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateRenaming
	StateTagging
	StateDone
	StateSkipped
	StateFailed
)

var stateNames = [...]string{"idle", "validating", "renaming", "tagging", "done", "skipped", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// ErrSkipped wraps the reason a request failed validation.
var ErrSkipped = errors.New("rename skipped")

// RenameError is returned when the filesystem rename fails.
type RenameError struct {
	Old string
	New string
	Err error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s -> %s: %v", e.Old, e.New, e.Err)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// RenameRequest is one rename of a media file to the names in Fields.
type RenameRequest struct {
	Path     string
	Mode     provider.Mode
	Fields   Fields
	Selected bool // a catalog candidate backs Fields
	DryRun   bool
}

// Result reports how far a request got. Path is where the file lives after
// the run; TagErr is set when the title could not be written even though the
// rename succeeded.
type Result struct {
	State        State
	Trace        []State
	OldPath      string
	Path         string
	Planned      string
	Renamed      bool
	TitleWritten bool
	Err          error
	TagErr       error
}

func (r *Result) enter(s State) {
	r.State = s
	r.Trace = append(r.Trace, s)
}

// Executor validates, renames and tags one file at a time.
type Executor struct {
	tagger tag.Tagger
	logger zerolog.Logger
	rename func(oldpath, newpath string) error
}

// NewExecutor returns an executor that tags through tagger. A nil tagger
// disables tagging.
func NewExecutor(tagger tag.Tagger, logger zerolog.Logger) *Executor {
	return &Executor{
		tagger: tagger,
		logger: logger.With().Str("component", "rename").Logger(),
		rename: os.Rename,
	}
}

// Run drives req through VALIDATING, RENAMING and TAGGING.
func (x *Executor) Run(ctx context.Context, req RenameRequest) Result {
	res := Result{OldPath: req.Path, Path: req.Path}
	res.enter(StateIdle)

	res.enter(StateValidating)
	if reason := validate(req); reason != "" {
		res.enter(StateSkipped)
		res.Err = fmt.Errorf("%w: %s", ErrSkipped, reason)
		x.logger.Debug().Str("path", req.Path).Str("reason", reason).Msg("rename skipped")
		return res
	}

	newName, err := ComposeFilename(req.Mode, req.Fields, filepath.Ext(req.Path))
	if err != nil {
		res.enter(StateSkipped)
		res.Err = fmt.Errorf("%w: %v", ErrSkipped, err)
		return res
	}
	newPath := filepath.Join(filepath.Dir(req.Path), newName)
	res.Planned = newPath
	if req.DryRun {
		res.enter(StateDone)
		return res
	}

	res.enter(StateRenaming)
	switch _, statErr := os.Stat(newPath); {
	case newPath == req.Path:
	case statErr == nil:
		x.logger.Info().Str("path", req.Path).Str("dest", newPath).Msg("destination exists, keeping current name")
	default:
		if err := x.rename(req.Path, newPath); err != nil {
			log.LogRename(req.Path, newPath, false, err)
			res.enter(StateFailed)
			res.Err = &RenameError{Old: req.Path, New: newPath, Err: err}
			x.logger.Error().Err(err).Str("path", req.Path).Str("dest", newPath).Msg("rename failed")
			return res
		}
		log.LogRename(req.Path, newPath, true, nil)
		res.Path = newPath
		res.Renamed = true
	}

	res.enter(StateTagging)
	res.TitleWritten, res.TagErr = x.tag(ctx, res.Path, req.Fields.Title)

	res.enter(StateDone)
	return res
}

// tag writes title unless the file already carries it.
func (x *Executor) tag(ctx context.Context, path, title string) (bool, error) {
	title = strings.TrimSpace(title)
	if x.tagger == nil || title == "" {
		return false, nil
	}
	current := x.tagger.ReadTitle(ctx, path)
	if current == title {
		return false, nil
	}
	if err := x.tagger.WriteTitle(ctx, path, title); err != nil {
		log.LogTag(path, current, title, false, err)
		x.logger.Warn().Err(err).Str("path", path).Msg("title not written")
		return false, err
	}
	log.LogTag(path, current, title, true, nil)
	return true, nil
}

func validate(req RenameRequest) string {
	if req.Path == "" {
		return "no file selected"
	}
	if !req.Selected {
		return "no candidate selected"
	}
	if info, err := os.Stat(req.Path); err != nil || info.IsDir() {
		return "file does not exist"
	}
	f := req.Fields
	if strings.TrimSpace(f.Name) == "" {
		return "name is empty"
	}
	if len(f.Year) != 4 || !isDecimal(f.Year) {
		return "year must be four digits"
	}
	if req.Mode != provider.ModeMovie && (!isDecimal(f.Season) || !isDecimal(f.Episode)) {
		return "season and episode must be numeric"
	}
	return ""
}

// ComposeFilename builds "{name} ({year})" plus the episode marker in series
// mode, then ext. Characters invalid in file names are replaced.
func ComposeFilename(mode provider.Mode, f Fields, ext string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", strings.TrimSpace(f.Name), f.Year)
	if mode != provider.ModeMovie {
		fmt.Fprintf(&b, " S%sE%s", pad2(f.Season), pad2(f.Episode))
		if isDecimal(f.RangeEnd) {
			b.WriteString("-E" + pad2(f.RangeEnd))
		}
		if isDecimal(f.Part) {
			b.WriteString(" Part " + pad2(f.Part))
		}
	}
	name, err := sanitizeFilename(b.String())
	if err != nil {
		return "", err
	}
	return name + ext, nil
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pad2(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}
