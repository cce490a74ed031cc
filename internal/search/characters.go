package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/wubba/internal/domain"
)

// CharacterMatch is a character filter hit with the matched byte
// positions of its name, for highlighting.
type CharacterMatch struct {
	Character      domain.Character
	MatchedIndexes []int
}

// characterIndex implements sahilm/fuzzy.Source over character names.
type characterIndex struct {
	characters []domain.Character
	lowerNames []string
}

func (idx characterIndex) String(i int) string { return idx.lowerNames[i] }

func (idx characterIndex) Len() int { return len(idx.characters) }

// FilterCharacters fuzzy-filters characters by name, best match first.
// An empty query returns every character in its original order.
func FilterCharacters(characters []domain.Character, query string) []CharacterMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]CharacterMatch, len(characters))
		for i, c := range characters {
			out[i] = CharacterMatch{Character: c}
		}
		return out
	}

	idx := characterIndex{
		characters: characters,
		lowerNames: make([]string, len(characters)),
	}
	for i, c := range characters {
		idx.lowerNames[i] = strings.ToLower(c.Name)
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), idx)
	out := make([]CharacterMatch, len(matches))
	for i, m := range matches {
		out[i] = CharacterMatch{
			Character:      characters[m.Index],
			MatchedIndexes: m.MatchedIndexes,
		}
	}
	return out
}
