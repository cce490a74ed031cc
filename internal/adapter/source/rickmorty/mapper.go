package rickmorty

import (
	"github.com/mmcdole/wubba/internal/catalog"
	"github.com/mmcdole/wubba/internal/domain"
)

// MapEpisodePage converts a decoded page into a domain page. The next
// cursor is parsed from the absolute "next" URL.
func MapEpisodePage(number int, p episodePage) domain.CatalogPage {
	page := domain.CatalogPage{
		Number:   number,
		Episodes: MapEpisodes(p.Results),
	}
	if p.Info.Next != nil {
		page.Next = catalog.ParseCursor(*p.Info.Next, number)
	}
	return page
}

// MapEpisodes converts episode DTOs, skipping records without an id
func MapEpisodes(dtos []episodeDTO) []domain.Episode {
	episodes := make([]domain.Episode, 0, len(dtos))
	for _, d := range dtos {
		if d.ID <= 0 {
			continue
		}
		episodes = append(episodes, domain.Episode{
			ID:         d.ID,
			Name:       d.Name,
			Code:       d.Episode,
			AirDate:    d.AirDate,
			Created:    d.Created,
			Characters: append([]string(nil), d.Characters...),
		})
	}
	return episodes
}

// MapCharacters converts character DTOs, skipping records without an id
func MapCharacters(dtos []characterDTO) []domain.Character {
	chars := make([]domain.Character, 0, len(dtos))
	for _, d := range dtos {
		if d.ID <= 0 {
			continue
		}
		chars = append(chars, domain.Character{
			ID:       d.ID,
			Name:     d.Name,
			Status:   d.Status,
			Species:  d.Species,
			Type:     d.Type,
			Gender:   d.Gender,
			Origin:   domain.Location{Name: d.Origin.Name, URL: d.Origin.URL},
			Location: domain.Location{Name: d.Location.Name, URL: d.Location.URL},
			Image:    d.Image,
			Episodes: append([]string(nil), d.Episode...),
			Created:  d.Created,
		})
	}
	return chars
}
