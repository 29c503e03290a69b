package media

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Filename hints.
//
// A local video name usually carries enough to pre-fill a catalog search: the
// title in front, a year, and for episodes an SxxExx marker. Parsing is
// tolerant and best effort; callers always let the user override the guess.
var (
	// seasonEpisodeRe matches combined season/episode forms: S01E02, 1x02, s1e2.
	seasonEpisodeRe = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])s?(\d{1,2})[ex](\d{1,3})(?:[^0-9]|$)`)

	// rangeEndRe matches a trailing episode in multi-episode files: S01E02-E03, S01E02E03.
	rangeEndRe = regexp.MustCompile(`(?i)[sx]?\d{1,2}[ex]\d{1,3}-?e(\d{1,3})\b`)

	// partRe matches "Part 2", "pt.2", "part02".
	partRe = regexp.MustCompile(`(?i)\b(?:part|pt)[\s\._-]*(\d{1,2})\b`)

	// videoRe matches video file extensions.
	videoRe = regexp.MustCompile(`(?i)\.(mp4|mkv|avi|mov|wmv|flv|webm|mpeg|mpg|m4v|3gp|vob|ts|mts|m2ts|rmvb|divx)$`)

	// yearRe extracts a release year; only the first year of a range is used.
	yearRe = regexp.MustCompile(`(?:^|[^a-zA-Z0-9])((?:19|20)\d{2})(?:[\s\-–]+(?:19|20)\d{2})?(?:[^0-9]|$)`)

	// encodingTagsRe removes codec/resolution/source tags to isolate the title.
	encodingTagsRe = regexp.MustCompile(`(?i)\b(?:HDR|DV|x265|x264|H\.?264|H\.?265|HEVC|AVC|AAC|AC3|DTS|FLAC|WEB-?DL|WEBRip|BluRay|BDRip|DVDRip|HDTV|720p|1080p|2160p|4K|UHD|10bit|PROPER|REPACK|EXTENDED|UNRATED|REMASTERED)\b`)
)

// FileHints holds what could be guessed from a video filename.
// Season and Episode are UnsetNumber when no episode marker was found.
type FileHints struct {
	Query    string
	Year     int
	Season   int
	Episode  int
	RangeEnd int
	Part     int
}

// IsEpisode reports whether an episode marker was found.
func (h FileHints) IsEpisode() bool {
	return h.Season != UnsetNumber && h.Episode != UnsetNumber
}

// IsVideo reports whether filename has a recognized video extension.
func IsVideo(filename string) bool {
	return videoRe.MatchString(filename)
}

// ParseFilename guesses a search query and numbering from a video path.
func ParseFilename(path string) FileHints {
	hints := FileHints{Season: UnsetNumber, Episode: UnsetNumber, RangeEnd: UnsetNumber, Part: UnsetNumber}

	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	title := name
	if loc := seasonEpisodeRe.FindStringSubmatchIndex(name); loc != nil {
		hints.Season, _ = strconv.Atoi(name[loc[2]:loc[3]])
		hints.Episode, _ = strconv.Atoi(name[loc[4]:loc[5]])
		title = name[:loc[0]]
	}
	if m := rangeEndRe.FindStringSubmatch(name); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil && n > hints.Episode {
			hints.RangeEnd = n
		}
	}
	if m := partRe.FindStringSubmatch(name); len(m) == 2 {
		hints.Part, _ = strconv.Atoi(m[1])
	}

	if loc := yearRe.FindStringSubmatchIndex(title); loc != nil {
		hints.Year, _ = strconv.Atoi(title[loc[2]:loc[3]])
		title = title[:loc[0]]
	} else if loc := yearRe.FindStringSubmatchIndex(name); loc != nil {
		hints.Year, _ = strconv.Atoi(name[loc[2]:loc[3]])
	}

	hints.Query = cleanTitle(title)
	return hints
}

func cleanTitle(title string) string {
	title = partRe.ReplaceAllString(title, " ")
	title = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(title)
	title = encodingTagsRe.ReplaceAllString(title, "")
	title = strings.Trim(title, " ([{")
	return strings.Join(strings.Fields(title), " ")
}
