package cmd

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/Digital-Shane/title-match/internal/core"
	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func init() {
	runewidth.DefaultCondition.EastAsianWidth = false
	runewidth.DefaultCondition.StrictEmojiNeutral = true
}

// palette is the shared color set for command output.
type palette struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
}

var defaultPalette = palette{
	Primary: lipgloss.Color("#3a6b4a"),
	Accent:  lipgloss.Color("#8fc279"),
	Muted:   lipgloss.Color("#9ba8c0"),
	Success: lipgloss.Color("#5dc796"),
	Error:   lipgloss.Color("#f04c56"),
}

// styles bundles the lipgloss styles and icons used by every command.
type styles struct {
	header  lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	panel   lipgloss.Style
	icons   map[string]string
}

func newStyles(ascii bool) styles {
	p := defaultPalette
	icons := emojiIcons
	if ascii {
		icons = asciiIcons
	}
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		title:   lipgloss.NewStyle().Bold(true).Underline(true),
		muted:   lipgloss.NewStyle().Foreground(p.Muted),
		success: lipgloss.NewStyle().Bold(true).Foreground(p.Success),
		failure: lipgloss.NewStyle().Bold(true).Foreground(p.Error),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(0, 1),
		icons: icons,
	}
}

// icon returns the named icon or an empty string.
func (s styles) icon(name string) string {
	return s.icons[name]
}

// limitedTerminal reports environments where emoji render poorly.
func limitedTerminal() bool {
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "" {
		return true
	}
	return runtime.GOOS == "windows"
}

var emojiIcons = map[string]string{
	"series":  "📺",
	"movie":   "🎬",
	"success": "✅",
	"error":   "❌",
	"warning": "⚠️",
	"skipped": "⏭",
	"art":     "🖼",
	"folder":  "📁",
}

var asciiIcons = map[string]string{
	"series":  "[TV]",
	"movie":   "[M]",
	"success": "[v]",
	"error":   "[!]",
	"warning": "[?]",
	"skipped": "[-]",
	"art":     "[A]",
	"folder":  "[D]",
}

// table is a fixed column text table. A zero max width leaves the column
// unbounded.
type table struct {
	headers []string
	max     []int
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers, max: make([]int, len(headers))}
}

// limit caps the display width of column col.
func (t *table) limit(col, width int) *table {
	t.max[col] = width
	return t
}

func (t *table) add(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// render lays the table out with two spaces between columns. Widths are
// measured on plain text so the header style never skews alignment.
func (t *table) render(s styles) string {
	widths := make([]int, len(t.headers))
	cells := make([][]string, len(t.rows))
	for c, h := range t.headers {
		widths[c] = runewidth.StringWidth(h)
	}
	for r, row := range t.rows {
		cells[r] = make([]string, len(row))
		for c, cell := range row {
			cell = truncate(oneLine(cell), t.max[c])
			cells[r][c] = cell
			if w := runewidth.StringWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}

	var b strings.Builder
	header := make([]string, len(t.headers))
	for c, h := range t.headers {
		header[c] = runewidth.FillRight(h, widths[c])
	}
	b.WriteString(s.header.Render(strings.TrimRight(strings.Join(header, "  "), " ")))
	b.WriteByte('\n')
	for _, row := range cells {
		line := make([]string, len(row))
		for c, cell := range row {
			line[c] = runewidth.FillRight(cell, widths[c])
		}
		b.WriteString(strings.TrimRight(strings.Join(line, "  "), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// truncate shortens s to width display cells, marking the cut with an
// ellipsis. Width <= 0 disables truncation.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func seriesTable(series []*media.Series) *table {
	t := newTable("#", "SOURCE", "NAME", "YEAR", "SEASONS", "EPISODES", "ID").limit(2, 40)
	for i, s := range series {
		episodes := 0
		for _, n := range s.SeasonNumbers() {
			episodes += len(s.Season(n).Episodes)
		}
		t.add(
			fmt.Sprint(i),
			s.Source,
			s.Name,
			yearCell(s.Year),
			fmt.Sprint(len(s.Seasons)),
			fmt.Sprint(episodes),
			s.IDs[s.Source],
		)
	}
	return t
}

func movieTable(movies []*media.Movie) *table {
	t := newTable("#", "SOURCE", "NAME", "YEAR", "RUNTIME", "COLLECTION", "ID").limit(2, 40).limit(5, 30)
	for i, m := range movies {
		length := "-"
		if m.Runtime > 0 {
			length = fmt.Sprintf("%dm", m.Runtime/60)
		}
		t.add(
			fmt.Sprint(i),
			m.Source,
			m.Name,
			yearCell(m.Year),
			length,
			m.CollectionName,
			m.IDs[m.Source],
		)
	}
	return t
}

func episodeTable(season *media.Season) *table {
	t := newTable("EP", "TITLE", "TYPE", "OVERVIEW").limit(1, 40).limit(3, 60)
	for _, n := range season.EpisodeNumbers() {
		ep := season.Episode(n)
		t.add(fmt.Sprintf("%02d", n), ep.Name, ep.Type, ep.Overview)
	}
	return t
}

func yearCell(year int) string {
	if year <= 0 {
		return "-"
	}
	return fmt.Sprint(year)
}

// renderSearch prints the candidate table followed by any provider failures.
func renderSearch(res core.SearchResult, s styles) string {
	var b strings.Builder
	switch {
	case len(res.Series) > 0:
		b.WriteString(seriesTable(res.Series).render(s))
	case len(res.Movies) > 0:
		b.WriteString(movieTable(res.Movies).render(s))
	default:
		b.WriteString(s.muted.Render("No matches found."))
		b.WriteByte('\n')
	}
	b.WriteString(renderFailures(res.Failures, s))
	return b.String()
}

func renderFailures(failures []core.ProviderFailure, s styles) string {
	var b strings.Builder
	for _, f := range failures {
		fmt.Fprintf(&b, "%s %s\n", s.icon("warning"), s.failure.Render(fmt.Sprintf("%s: %v", f.Provider, f.Err)))
	}
	return b.String()
}

// renderResult describes one rename outcome.
func renderResult(r core.Result, dryRun bool, s styles) string {
	var b strings.Builder
	switch r.State {
	case core.StateDone:
		switch {
		case dryRun:
			fmt.Fprintf(&b, "%s %s -> %s\n", s.icon("skipped"), r.OldPath, s.success.Render(r.Planned))
		case r.Renamed:
			fmt.Fprintf(&b, "%s %s -> %s\n", s.icon("success"), r.OldPath, s.success.Render(r.Path))
		case r.Planned != r.OldPath:
			fmt.Fprintf(&b, "%s %s\n", s.icon("warning"), s.muted.Render(r.Planned+" exists, kept "+r.OldPath))
		default:
			fmt.Fprintf(&b, "%s %s\n", s.icon("success"), s.success.Render(r.Path))
		}
		if r.TitleWritten {
			fmt.Fprintf(&b, "   %s\n", s.muted.Render("title tag updated"))
		}
	case core.StateSkipped:
		fmt.Fprintf(&b, "%s %s\n", s.icon("skipped"), s.muted.Render(r.Err.Error()))
	case core.StateFailed:
		fmt.Fprintf(&b, "%s %s\n", s.icon("error"), s.failure.Render(r.Err.Error()))
	}
	if r.TagErr != nil {
		fmt.Fprintf(&b, "%s %s\n", s.icon("warning"), s.failure.Render("title not written: "+r.TagErr.Error()))
	}
	return b.String()
}

func artworkTable(group *media.ArtworkGroup, season string) *table {
	t := newTable("SEASON", "TYPE", "LANG", "URL").limit(3, 80)
	for _, kind := range group.Types() {
		for _, art := range sortedArtwork(group.Get(kind)) {
			lang := art.Language
			if lang == "" {
				lang = "-"
			}
			t.add(season, kind, lang, art.URL)
		}
	}
	return t
}

// sortedArtwork returns art ordered by id.
func sortedArtwork(art []media.Artwork) []media.Artwork {
	out := slices.Clone(art)
	slices.SortStableFunc(out, func(a, b media.Artwork) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return out
}
