package episodate

// ShowDetailsResponse is the response from the show-details endpoint.
// A miss is signalled by an absent tvShow field, not by an HTTP error.
type ShowDetailsResponse struct {
	TVShow *Show `json:"tvShow"`
}

// Show is the episode payload for one show. It is stored verbatim in the
// show cache and replaced wholesale on every refresh.
type Show struct {
	ID       int       `json:"id,omitempty"`
	Name     string    `json:"name"`
	Episodes []Episode `json:"episodes"`
}

// Episode is a single episode of a show. AirDate is the provider's raw
// string and may be empty; callers decide whether it resolves to a date.
type Episode struct {
	Season  int    `json:"season,omitempty"`
	Episode int    `json:"episode,omitempty"`
	Name    string `json:"name"`
	AirDate string `json:"air_date,omitempty"`
}
