// Package catalog accumulates fetched catalog pages into a single
// deduplicated episode collection and tracks the pagination cursor.
package catalog

import (
	"fmt"
	"slices"

	"github.com/mmcdole/wubba/internal/domain"
)

// Cache holds the pages fetched so far, in ascending page order with no
// gaps. The flattened collection is always rebuilt from the pages and is
// never mutated independently.
//
// Cache is not safe for concurrent use; callers drive it from a single
// event loop.
type Cache struct {
	pages    []domain.CatalogPage
	episodes []domain.Episode
	index    map[int]int // episode ID -> position in episodes
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{index: make(map[int]int)}
}

// AppendPage adds the next page. Re-appending the last page with identical
// content is a no-op. Any other number, or the last number with different
// content, fails with ErrOutOfOrderPage and leaves the cache unchanged.
func (c *Cache) AppendPage(page domain.CatalogPage) error {
	last := c.LastPage()
	switch {
	case page.Number == last+1:
		c.pages = append(c.pages, clonePage(page))
		c.rebuild()
		return nil
	case last > 0 && page.Number == last:
		if samePage(c.pages[last-1], page) {
			return nil
		}
		return fmt.Errorf("%w: page %d re-sent with different content", domain.ErrOutOfOrderPage, page.Number)
	default:
		return fmt.Errorf("%w: got page %d, expected %d", domain.ErrOutOfOrderPage, page.Number, last+1)
	}
}

// Reset clears all pages. Only used as the first step of a refresh.
func (c *Cache) Reset() {
	c.pages = nil
	c.episodes = nil
	c.index = make(map[int]int)
}

// HasMore reports whether the last appended page carried a next cursor.
func (c *Cache) HasMore() bool {
	if len(c.pages) == 0 {
		return false
	}
	return c.pages[len(c.pages)-1].HasNext()
}

// NextCursor returns the page number to request next.
func (c *Cache) NextCursor() (int, error) {
	if !c.HasMore() {
		return 0, domain.ErrExhausted
	}
	return *c.pages[len(c.pages)-1].Next, nil
}

// LastPage returns the highest page number held, 0 when empty.
func (c *Cache) LastPage() int {
	return len(c.pages)
}

// Len returns the number of distinct episodes.
func (c *Cache) Len() int {
	return len(c.episodes)
}

// Empty reports whether no pages are held.
func (c *Cache) Empty() bool {
	return len(c.pages) == 0
}

// Episodes returns a copy of the flattened collection.
func (c *Cache) Episodes() []domain.Episode {
	return slices.Clone(c.episodes)
}

// Pages returns a copy of the page sequence.
func (c *Cache) Pages() []domain.CatalogPage {
	out := make([]domain.CatalogPage, len(c.pages))
	for i, p := range c.pages {
		out[i] = clonePage(p)
	}
	return out
}

// Lookup finds an episode by ID.
func (c *Cache) Lookup(id int) (domain.Episode, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Episode{}, false
	}
	return c.episodes[i], true
}

// rebuild recomputes the flattened collection: pages concatenated in
// order, first occurrence of each ID wins.
func (c *Cache) rebuild() {
	total := 0
	for _, p := range c.pages {
		total += len(p.Episodes)
	}

	episodes := make([]domain.Episode, 0, total)
	index := make(map[int]int, total)
	for _, p := range c.pages {
		for _, ep := range p.Episodes {
			if _, dup := index[ep.ID]; dup {
				continue
			}
			index[ep.ID] = len(episodes)
			episodes = append(episodes, ep)
		}
	}

	c.episodes = episodes
	c.index = index
}

func clonePage(p domain.CatalogPage) domain.CatalogPage {
	out := domain.CatalogPage{
		Number:   p.Number,
		Episodes: slices.Clone(p.Episodes),
	}
	if p.Next != nil {
		next := *p.Next
		out.Next = &next
	}
	return out
}

func samePage(a, b domain.CatalogPage) bool {
	if a.Number != b.Number || (a.Next == nil) != (b.Next == nil) {
		return false
	}
	if a.Next != nil && *a.Next != *b.Next {
		return false
	}
	return slices.EqualFunc(a.Episodes, b.Episodes, func(x, y domain.Episode) bool {
		return x.ID == y.ID && x.Name == y.Name && x.Code == y.Code &&
			x.AirDate == y.AirDate && x.Created == y.Created &&
			slices.Equal(x.Characters, y.Characters)
	})
}
