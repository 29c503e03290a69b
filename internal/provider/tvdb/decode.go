package tvdb

import "encoding/json"

type loginRequest struct {
	APIKey string `json:"apikey"`
}

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// Every TVDB payload is wrapped in {"status", "data", "links"}.

type searchResponse struct {
	Data []searchResult `json:"data"`
}

type searchResult struct {
	TVDBID       string `json:"tvdb_id"`
	Name         string `json:"name"`
	Year         string `json:"year"`
	FirstAirTime string `json:"first_air_time"`
	Network      string `json:"network"`
	Type         string `json:"type"`
}

type extendedResponse struct {
	Data seriesExtended `json:"data"`
}

type seriesExtended struct {
	ID        int        `json:"id"`
	Artworks  []artwork  `json:"artworks"`
	Genres    []genre    `json:"genres"`
	Seasons   []season   `json:"seasons"`
	RemoteIDs []remoteID `json:"remoteIds"`
}

type artwork struct {
	Image string `json:"image"`
	Type  int    `json:"type"`
}

type genre struct {
	Name string `json:"name"`
}

type season struct {
	ID     int    `json:"id"`
	Number *int   `json:"number"`
	Image  string `json:"image"`
	Type   struct {
		Type string `json:"type"`
	} `json:"type"`
}

type remoteID struct {
	ID         string `json:"id"`
	SourceName string `json:"sourceName"`
}

type translationResponse struct {
	Data struct {
		Name     string `json:"name"`
		Overview string `json:"overview"`
	} `json:"data"`
}

type episodesResponse struct {
	Data struct {
		Episodes []episode `json:"episodes"`
	} `json:"data"`
	Links struct {
		// Next is null on the last page.
		Next json.RawMessage `json:"next"`
	} `json:"links"`
}

type episode struct {
	ID           int    `json:"id"`
	SeriesID     int    `json:"seriesId"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	Number       *int   `json:"number"`
	SeasonNumber *int   `json:"seasonNumber"`
	Runtime      *int   `json:"runtime"`
	Image        string `json:"image"`
	FinaleType   string `json:"finaleType"`
}

func (r episodesResponse) hasNext() bool {
	next := string(r.Links.Next)
	return next != "" && next != "null" && next != `""`
}
