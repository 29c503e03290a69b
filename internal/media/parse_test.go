package media

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsVideo(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"movie.mkv", true},
		{"clip.MP4", true},
		{"trailer.webm", true},
		{"notes.txt", false},
		{"archive.zip", false},
	}
	for _, tc := range tests {
		if got := IsVideo(tc.in); got != tc.want {
			t.Errorf("IsVideo(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseFilename(t *testing.T) {
	t.Parallel()
	tests := map[string]FileHints{
		"/tv/The.Expanse.S01E02.1080p.WEB-DL.mkv": {
			Query: "The Expanse", Season: 1, Episode: 2, RangeEnd: UnsetNumber, Part: UnsetNumber,
		},
		"Show (2020) S01E02-E03 Part 01.mkv": {
			Query: "Show", Year: 2020, Season: 1, Episode: 2, RangeEnd: 3, Part: 1,
		},
		"Doctor_Who_2005_3x07.avi": {
			Query: "Doctor Who", Year: 2005, Season: 3, Episode: 7, RangeEnd: UnsetNumber, Part: UnsetNumber,
		},
		"Interstellar.2014.2160p.UHD.BluRay.x265.mkv": {
			Query: "Interstellar", Year: 2014, Season: UnsetNumber, Episode: UnsetNumber, RangeEnd: UnsetNumber, Part: UnsetNumber,
		},
		"Kill Bill Part 2.mp4": {
			Query: "Kill Bill", Season: UnsetNumber, Episode: UnsetNumber, RangeEnd: UnsetNumber, Part: 2,
		},
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got := ParseFilename(in)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ParseFilename(%q) mismatch (-want +got):\n%s", in, diff)
			}
		})
	}
}

func TestFileHintsIsEpisode(t *testing.T) {
	t.Parallel()
	if ParseFilename("Movie (1999).mkv").IsEpisode() {
		t.Error("movie should not parse as episode")
	}
	if !ParseFilename("Show S02E10.mkv").IsEpisode() {
		t.Error("SxxExx should parse as episode")
	}
}
