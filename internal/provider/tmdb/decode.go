package tmdb

// Partial response shapes. Every field may be missing in a TMDB payload;
// zero values stand for absent data.

type genreListResponse struct {
	Genres []genre `json:"genres"`
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type tvSearchResponse struct {
	Results []tvSearchResult `json:"results"`
}

type tvSearchResult struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	FirstAirDate string `json:"first_air_date"`
	Overview     string `json:"overview"`
	GenreIDs     []int  `json:"genre_ids"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

type tvDetails struct {
	BackdropPath string          `json:"backdrop_path"`
	Genres       []genre         `json:"genres"`
	Networks     []network       `json:"networks"`
	Seasons      []seasonSummary `json:"seasons"`
	ExternalIDs  externalIDs     `json:"external_ids"`
}

type network struct {
	ID            int    `json:"id"`
	LogoPath      string `json:"logo_path"`
	Name          string `json:"name"`
	OriginCountry string `json:"origin_country"`
}

type seasonSummary struct {
	// SeasonNumber is a pointer so season 0 (specials) is distinguishable from absent.
	SeasonNumber *int `json:"season_number"`
}

type externalIDs struct {
	IMDbID string `json:"imdb_id"`
	TVDBID int    `json:"tvdb_id"`
}

type seasonDetails struct {
	ID           int              `json:"id"`
	SeasonNumber *int             `json:"season_number"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview"`
	PosterPath   string           `json:"poster_path"`
	Episodes     []episodeDetails `json:"episodes"`
}

type episodeDetails struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	EpisodeNumber int    `json:"episode_number"`
	EpisodeType   string `json:"episode_type"`
	SeasonNumber  *int   `json:"season_number"`
	Runtime       *int   `json:"runtime"`
	StillPath     string `json:"still_path"`
	ShowID        int    `json:"show_id"`
	SeriesID      int    `json:"series_id"`
}

type movieSearchResponse struct {
	Results []movieSearchResult `json:"results"`
}

type movieSearchResult struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	ReleaseDate   string `json:"release_date"`
	Overview      string `json:"overview"`
	GenreIDs      []int  `json:"genre_ids"`
	PosterPath    string `json:"poster_path"`
	BackdropPath  string `json:"backdrop_path"`
}

type movieDetails struct {
	IMDbID              string      `json:"imdb_id"`
	Runtime             *int        `json:"runtime"`
	Genres              []genre     `json:"genres"`
	BackdropPath        string      `json:"backdrop_path"`
	BelongsToCollection *collection `json:"belongs_to_collection"`
	ExternalIDs         externalIDs `json:"external_ids"`
}

type collection struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	BackdropPath string `json:"backdrop_path"`
}
