package tvmaze

type searchHit struct {
	Show struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"show"`
}

type show struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Summary    string    `json:"summary"`
	Premiered  string    `json:"premiered"`
	Genres     []string  `json:"genres"`
	Network    *network  `json:"network"`
	WebChannel *network  `json:"webChannel"`
	Image      *image    `json:"image"`
	Externals  externals `json:"externals"`
	Embedded   struct {
		Seasons  []season  `json:"seasons"`
		Episodes []episode `json:"episodes"`
	} `json:"_embedded"`
}

type network struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country *struct {
		Name string `json:"name"`
	} `json:"country"`
}

type image struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

// Externals ids are numbers except imdb.
type externals struct {
	IMDb    string `json:"imdb"`
	TheTVDB int    `json:"thetvdb"`
	TVRage  int    `json:"tvrage"`
}

type season struct {
	ID      int    `json:"id"`
	Number  *int   `json:"number"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Image   *image `json:"image"`
}

type episode struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Season  *int   `json:"season"`
	Number  *int   `json:"number"`
	Summary string `json:"summary"`
	Runtime *int   `json:"runtime"`
	Type    string `json:"type"`
	Image   *image `json:"image"`
}
