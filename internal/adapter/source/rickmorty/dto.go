package rickmorty

// pageInfo is the pagination envelope attached to list responses
type pageInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// episodePage is the response body of GET /episode?page=N
type episodePage struct {
	Info    pageInfo     `json:"info"`
	Results []episodeDTO `json:"results"`
}

type episodeDTO struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	AirDate    string   `json:"air_date"`
	Episode    string   `json:"episode"`
	Characters []string `json:"characters"`
	URL        string   `json:"url"`
	Created    string   `json:"created"`
}

type locationDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type characterDTO struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Status   string      `json:"status"`
	Species  string      `json:"species"`
	Type     string      `json:"type"`
	Gender   string      `json:"gender"`
	Origin   locationDTO `json:"origin"`
	Location locationDTO `json:"location"`
	Image    string      `json:"image"`
	Episode  []string    `json:"episode"`
	URL      string      `json:"url"`
	Created  string      `json:"created"`
}

// errorBody is returned alongside non-2xx statuses, e.g. {"error":"There is nothing here"}
type errorBody struct {
	Error string `json:"error"`
}
