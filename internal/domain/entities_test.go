package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEpisodeCode(t *testing.T) {
	tests := []struct {
		code   string
		season int
		number int
		label  string
	}{
		{"S01E02", 1, 2, "Season 01 · Episode 02"},
		{"S03E10", 3, 10, "Season 03 · Episode 10"},
		{"", 1, 1, "Season 01 · Episode 01"},
		{"pilot", 1, 1, "Season 01 · Episode 01"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ep := Episode{Code: tt.code}
			assert.Equal(t, tt.season, ep.Season())
			assert.Equal(t, tt.number, ep.Number())
			assert.Equal(t, tt.label, ep.CodeLabel())
		})
	}
}

func TestEpisodeCreatedLabel(t *testing.T) {
	ep := Episode{Created: "2017-11-10T12:56:33.798Z"}
	assert.Equal(t, "November 10, 2017", ep.CreatedLabel())

	ep = Episode{Created: "yesterday"}
	assert.Equal(t, "yesterday", ep.CreatedLabel())
	_, ok := ep.CreatedAt()
	assert.False(t, ok)
}

func TestEpisodeCharacterIDs(t *testing.T) {
	ep := Episode{Characters: []string{
		"https://rickandmortyapi.com/api/character/1",
		"https://rickandmortyapi.com/api/character/2",
		"https://rickandmortyapi.com/api/character/1",
		"https://rickandmortyapi.com/api/character/",
		"not a url",
		"https://rickandmortyapi.com/api/character/35",
	}}

	assert.Equal(t, []int{1, 2, 35}, ep.CharacterIDs())
	assert.Empty(t, Episode{}.CharacterIDs())
}

func TestFreshnessNotice(t *testing.T) {
	title, body := FreshnessNewContent.Notice()
	assert.Equal(t, "Updated", title)
	assert.Equal(t, "New episodes loaded!", body)

	title, _ = FreshnessRefused.Notice()
	assert.Equal(t, "No connection", title)

	assert.Equal(t, "no_new_content", FreshnessNoNewContent.String())
}
