package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseCursor extracts the next page number from the absolute "next" URL
// returned by the catalog service. A missing, malformed, non-positive, or
// non-advancing page parameter yields nil, which ends pagination instead
// of looping.
func ParseCursor(rawURL string, current int) *int {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil
	}

	page, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || page <= 0 || page <= current {
		return nil
	}
	return &page
}
