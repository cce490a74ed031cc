// Package search projects queryable views over the episode catalog.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/mmcdole/wubba/internal/domain"
)

// Apply returns the episodes whose name contains the trimmed query,
// ignoring case. An empty or whitespace-only query returns the input
// unchanged. Apply is pure and keeps no state between calls.
func Apply(episodes []domain.Episode, query string) []domain.Episode {
	query = strings.TrimSpace(query)
	if query == "" {
		return episodes
	}

	caser := cases.Fold()
	needle := caser.String(query)

	out := make([]domain.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if strings.Contains(caser.String(ep.Name), needle) {
			out = append(out, ep)
		}
	}
	return out
}

// Matches reports whether name matches query under the same rules as Apply.
func Matches(name, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	caser := cases.Fold()
	return strings.Contains(caser.String(name), caser.String(query))
}

// MatchRange locates the first case-insensitive occurrence of query in
// name, in rune offsets [start, end), for highlighting.
func MatchRange(name, query string) (start, end int, ok bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, 0, false
	}

	caser := cases.Fold()
	needle := caser.String(query)
	runes := []rune(name)

	for i := range runes {
		// Folding may change length, so grow the window until it matches or overshoots.
		for j := i + 1; j <= len(runes); j++ {
			folded := caser.String(string(runes[i:j]))
			if folded == needle {
				return i, j, true
			}
			if len(folded) >= len(needle) || !strings.HasPrefix(needle, folded) {
				break
			}
		}
	}
	return 0, 0, false
}
