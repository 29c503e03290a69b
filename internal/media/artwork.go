package media

import (
	"slices"
	"strings"
)

// Canonical artwork types.
const (
	ArtPoster         = "poster"
	ArtFanart         = "fanart"
	ArtBanner         = "banner"
	ArtClearLogo      = "clearlogo"
	ArtClearArt       = "clearart"
	ArtLandscape      = "landscape"
	ArtCharacterArt   = "characterart"
	ArtDiscArt        = "discart"
	ArtKeyArt         = "keyart"
	ArtThumb          = "thumb"
	ArtBackdrop       = "backdrop"
	ArtLogo           = "logo"
	ArtIcon           = "icon"
	ArtStill          = "still"
	ArtSquare         = "square"
	ArtAnimatedPoster = "animatedposter"
	ArtAnimatedFanart = "animatedfanart"
	ArtBoxset         = "boxset"
)

// ArtworkTypes lists every canonical artwork type.
var ArtworkTypes = []string{
	ArtPoster, ArtFanart, ArtBanner, ArtClearLogo, ArtClearArt, ArtLandscape,
	ArtCharacterArt, ArtDiscArt, ArtKeyArt, ArtThumb, ArtBackdrop, ArtLogo,
	ArtIcon, ArtStill, ArtSquare, ArtAnimatedPoster, ArtAnimatedFanart, ArtBoxset,
}

// Artwork media type tags.
const (
	ArtworkSeries  = "series"
	ArtworkMovie   = "movie"
	ArtworkSeason  = "season"
	ArtworkEpisode = "episode"
)

// IsArtworkType reports whether t is a canonical artwork type.
func IsArtworkType(t string) bool {
	return slices.Contains(ArtworkTypes, t)
}

// Artwork is a single image. Two artworks are the same image when they
// agree on the first id key they share.
type Artwork struct {
	IDs      map[string]string
	URL      string
	Language string
	Type     string
}

// Valid reports whether the artwork has an id, a URL and a canonical type.
func (a Artwork) Valid() bool {
	return len(a.IDs) > 0 && a.URL != "" && IsArtworkType(a.Type)
}

// sharedKey returns the first id key, in sorted order, present on both sides.
func (a Artwork) sharedKey(other Artwork) (string, bool) {
	keys := make([]string, 0, len(a.IDs))
	for k := range a.IDs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := other.IDs[k]; ok {
			return k, true
		}
	}
	return "", false
}

// Equal compares a and other by their first shared id.
func (a Artwork) Equal(other Artwork) bool {
	k, ok := a.sharedKey(other)
	if !ok {
		return false
	}
	return a.IDs[k] == other.IDs[k]
}

// Less orders a before other by their first shared id.
func (a Artwork) Less(other Artwork) bool {
	k, ok := a.sharedKey(other)
	if !ok {
		return false
	}
	return strings.Compare(a.IDs[k], other.IDs[k]) < 0
}

// ArtworkGroup collects distinct artwork by type for one media item.
type ArtworkGroup struct {
	IDs       map[string]string
	MediaType string
	Art       map[string][]Artwork
}

// NewArtworkGroup returns an empty group for mediaType.
func NewArtworkGroup(mediaType string) *ArtworkGroup {
	return &ArtworkGroup{
		IDs:       make(map[string]string),
		MediaType: mediaType,
		Art:       make(map[string][]Artwork),
	}
}

// Add stores a under its type. Invalid or already present artwork is ignored.
// Returns true when a was added.
func (g *ArtworkGroup) Add(a Artwork) bool {
	if !a.Valid() {
		return false
	}
	if g.Art == nil {
		g.Art = make(map[string][]Artwork)
	}
	for _, existing := range g.Art[a.Type] {
		if existing.Equal(a) {
			return false
		}
	}
	g.Art[a.Type] = append(g.Art[a.Type], a)
	return true
}

// Get returns the artwork of type t.
func (g *ArtworkGroup) Get(t string) []Artwork {
	if g == nil {
		return nil
	}
	return g.Art[t]
}

// Types returns the artwork types present, sorted.
func (g *ArtworkGroup) Types() []string {
	if g == nil {
		return nil
	}
	types := make([]string, 0, len(g.Art))
	for t, items := range g.Art {
		if len(items) > 0 {
			types = append(types, t)
		}
	}
	slices.Sort(types)
	return types
}

// Len counts all artwork in the group.
func (g *ArtworkGroup) Len() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, items := range g.Art {
		n += len(items)
	}
	return n
}

// SeriesArtwork holds series-wide art plus per-season groups.
type SeriesArtwork struct {
	ArtworkGroup
	Seasons map[int]*ArtworkGroup
}

// NewSeriesArtwork returns an empty series artwork set.
func NewSeriesArtwork() *SeriesArtwork {
	return &SeriesArtwork{
		ArtworkGroup: *NewArtworkGroup(ArtworkSeries),
		Seasons:      make(map[int]*ArtworkGroup),
	}
}

// AddSeasonArt stores a in the group for season n.
func (s *SeriesArtwork) AddSeasonArt(n int, a Artwork) bool {
	group, ok := s.Seasons[n]
	if !ok {
		group = NewArtworkGroup(ArtworkSeason)
		s.Seasons[n] = group
	}
	return group.Add(a)
}

// SeasonArt returns the artwork of type t for season n.
func (s *SeriesArtwork) SeasonArt(n int, t string) []Artwork {
	if s == nil {
		return nil
	}
	return s.Seasons[n].Get(t)
}

// SeasonNumbers returns the seasons that carry artwork, sorted.
func (s *SeriesArtwork) SeasonNumbers() []int {
	if s == nil {
		return nil
	}
	return sortedKeys(s.Seasons)
}

// MovieArtwork is the flat artwork set of a movie.
type MovieArtwork struct {
	ArtworkGroup
}

// NewMovieArtwork returns an empty movie artwork set.
func NewMovieArtwork() *MovieArtwork {
	return &MovieArtwork{ArtworkGroup: *NewArtworkGroup(ArtworkMovie)}
}
