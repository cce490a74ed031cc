package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/wubba/internal/domain"
)

const defaultSuggestions = 3

// Suggest offers "did you mean" candidates for a query that matched
// nothing. Names containing the query's characters in order rank first
// (closest first); if there are none, names with a word within a small
// edit distance of the query are offered.
func Suggest(episodes []domain.Episode, query string, limit int) []domain.Episode {
	query = strings.TrimSpace(query)
	if query == "" || len(episodes) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = defaultSuggestions
	}

	names := make([]string, len(episodes))
	for i, ep := range episodes {
		names[i] = ep.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		out := make([]domain.Episode, 0, min(limit, len(ranks)))
		for _, r := range ranks {
			if len(out) == limit {
				break
			}
			out = append(out, episodes[r.OriginalIndex])
		}
		return out
	}

	return nearestByWord(episodes, strings.ToLower(query), limit)
}

type scored struct {
	idx  int
	dist int
}

// nearestByWord ranks episodes by the smallest Levenshtein distance
// between the query and any word of the name.
func nearestByWord(episodes []domain.Episode, query string, limit int) []domain.Episode {
	maxDist := max(1, len([]rune(query))/2)

	var hits []scored
	for i, ep := range episodes {
		best := -1
		for _, word := range strings.Fields(strings.ToLower(ep.Name)) {
			d := fuzzy.LevenshteinDistance(query, word)
			if best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 && best <= maxDist {
			hits = append(hits, scored{idx: i, dist: best})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].dist < hits[b].dist })

	out := make([]domain.Episode, 0, min(limit, len(hits)))
	for _, h := range hits {
		if len(out) == limit {
			break
		}
		out = append(out, episodes[h.idx])
	}
	return out
}
