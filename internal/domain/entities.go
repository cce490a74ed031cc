package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Episode is a single catalog entry. Episodes are immutable once fetched.
type Episode struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Code       string   `json:"episode"`    // Season/episode code, e.g. "S01E02"
	AirDate    string   `json:"air_date"`   // Human air date as served, e.g. "December 2, 2013"
	Created    string   `json:"created"`    // RFC3339 creation timestamp
	Characters []string `json:"characters"` // Character resource URLs
}

var (
	episodeCodePattern  = regexp.MustCompile(`S(\d+)E(\d+)`)
	characterRefPattern = regexp.MustCompile(`/(\d+)$`)
)

// Season returns the season number encoded in Code (1 if unparsable).
func (e Episode) Season() int {
	season, _ := e.parseCode()
	return season
}

// Number returns the episode number within its season (1 if unparsable).
func (e Episode) Number() int {
	_, number := e.parseCode()
	return number
}

func (e Episode) parseCode() (int, int) {
	m := episodeCodePattern.FindStringSubmatch(e.Code)
	if m == nil {
		return 1, 1
	}
	season, err1 := strconv.Atoi(m[1])
	number, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 1, 1
	}
	return season, number
}

// CodeLabel renders the zero-padded season/episode pair for display.
func (e Episode) CodeLabel() string {
	season, number := e.parseCode()
	return fmt.Sprintf("Season %02d · Episode %02d", season, number)
}

// CreatedAt parses the creation timestamp.
func (e Episode) CreatedAt() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, e.Created)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CreatedLabel formats the creation date as "January 02, 2006",
// falling back to the raw value.
func (e Episode) CreatedLabel() string {
	if t, ok := e.CreatedAt(); ok {
		return t.Format("January 02, 2006")
	}
	return e.Created
}

// CharacterIDs extracts the trailing numeric ids from the character
// references, deduplicated in first-seen order. Unparsable references are skipped.
func (e Episode) CharacterIDs() []int {
	seen := make(map[int]bool, len(e.Characters))
	ids := make([]int, 0, len(e.Characters))
	for _, ref := range e.Characters {
		m := characterRefPattern.FindStringSubmatch(ref)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Location is a named place reference attached to a character.
type Location struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is a remote character record referenced by episodes.
type Character struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"` // "Alive", "Dead", "unknown"
	Species  string   `json:"species"`
	Type     string   `json:"type"`
	Gender   string   `json:"gender"`
	Origin   Location `json:"origin"`
	Location Location `json:"location"`
	Image    string   `json:"image"`
	Episodes []string `json:"episode"`
	Created  string   `json:"created"`
}

// CatalogPage is one page of the remote catalog.
// Next is nil when pagination is exhausted.
type CatalogPage struct {
	Number   int
	Episodes []Episode
	Next     *int
}

// HasNext reports whether the page carries a next-page cursor.
func (p CatalogPage) HasNext() bool {
	return p.Next != nil
}

// CatalogState is a read-only snapshot of the accumulated catalog.
type CatalogState struct {
	Pages      []CatalogPage
	Episodes   []Episode // Flattened, deduplicated by ID, first occurrence wins
	Loading    bool
	Refreshing bool
	Err        error
}
