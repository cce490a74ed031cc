package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/mmcdole/wubba/internal/domain"
)

const (
	characterChunkSize    = 50 // ids per request
	characterConcurrency  = 4
	defaultCharactersPage = 4
)

// CharacterService resolves character ids to records, memoising every
// record it has seen. Safe for concurrent use.
type CharacterService struct {
	client domain.CharacterClient
	logger *slog.Logger

	cache   map[int]domain.Character
	cacheMu sync.RWMutex
}

// NewCharacterService creates a new character service
func NewCharacterService(client domain.CharacterClient, logger *slog.Logger) *CharacterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CharacterService{
		client: client,
		logger: logger,
		cache:  make(map[int]domain.Character),
	}
}

// FetchCharacters returns the characters for ids in request order,
// duplicates removed. Ids the service does not know are omitted. An empty
// id list returns immediately without a request.
func (s *CharacterService) FetchCharacters(ctx context.Context, ids []int) ([]domain.Character, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	missing := s.missing(ids)
	if len(missing) > 0 {
		if err := s.fetchMissing(ctx, missing); err != nil {
			return nil, err
		}
	}

	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	out := make([]domain.Character, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.cache[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// ForEpisode returns the characters appearing in ep
func (s *CharacterService) ForEpisode(ctx context.Context, ep domain.Episode) ([]domain.Character, error) {
	return s.FetchCharacters(ctx, ep.CharacterIDs())
}

func (s *CharacterService) missing(ids []int) []int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	var out []int
	for _, id := range ids {
		if _, ok := s.cache[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// fetchMissing requests ids in chunks, concurrently, and caches the results
func (s *CharacterService) fetchMissing(ctx context.Context, ids []int) error {
	p := pool.NewWithResults[[]domain.Character]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(characterConcurrency)

	for _, chunk := range chunkIDs(ids, characterChunkSize) {
		p.Go(func(ctx context.Context) ([]domain.Character, error) {
			return s.client.FetchCharacters(ctx, chunk)
		})
	}

	batches, err := p.Wait()
	if err != nil {
		s.logger.Error("failed to fetch characters", "count", len(ids), "error", err)
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	fetched := 0
	for _, batch := range batches {
		for _, c := range batch {
			s.cache[c.ID] = c
			fetched++
		}
	}
	s.logger.Debug("fetched characters", "requested", len(ids), "received", fetched)
	return nil
}

func dedupeIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func chunkIDs(ids []int, size int) [][]int {
	var chunks [][]int
	for len(ids) > size {
		chunks = append(chunks, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// CharacterPager reveals a character list a few at a time, the way the
// episode detail screen offers "load more".
type CharacterPager struct {
	characters []domain.Character
	pageSize   int
	shown      int
}

// NewCharacterPager creates a pager showing the first page of characters
func NewCharacterPager(characters []domain.Character, pageSize int) *CharacterPager {
	if pageSize <= 0 {
		pageSize = defaultCharactersPage
	}
	return &CharacterPager{
		characters: characters,
		pageSize:   pageSize,
		shown:      min(pageSize, len(characters)),
	}
}

// Visible returns the characters revealed so far
func (p *CharacterPager) Visible() []domain.Character {
	return p.characters[:p.shown]
}

// HasMore reports whether LoadMore would reveal anything
func (p *CharacterPager) HasMore() bool {
	return p.shown < len(p.characters)
}

// LoadMore reveals the next page and reports whether anything changed
func (p *CharacterPager) LoadMore() bool {
	if !p.HasMore() {
		return false
	}
	p.shown = min(p.shown+p.pageSize, len(p.characters))
	return true
}

// All returns every character, revealed or not
func (p *CharacterPager) All() []domain.Character {
	return p.characters
}

// Remaining returns how many characters are still hidden
func (p *CharacterPager) Remaining() int {
	return len(p.characters) - p.shown
}

// Total returns the number of characters
func (p *CharacterPager) Total() int {
	return len(p.characters)
}
