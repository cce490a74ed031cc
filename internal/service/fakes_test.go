package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/wubba/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(n int) *int { return &n }

func episodeRange(from, to int) []domain.Episode {
	var eps []domain.Episode
	for id := from; id <= to; id++ {
		eps = append(eps, domain.Episode{ID: id, Name: fmt.Sprintf("Episode %d", id)})
	}
	return eps
}

// fakeCatalog serves canned pages. Pages may be replaced between calls to
// simulate server-side changes.
type fakeCatalog struct {
	mu    sync.Mutex
	pages map[int]domain.CatalogPage
	errs  map[int]error
	calls []int
}

func newFakeCatalog(pages ...domain.CatalogPage) *fakeCatalog {
	f := &fakeCatalog{pages: make(map[int]domain.CatalogPage), errs: make(map[int]error)}
	for _, p := range pages {
		f.pages[p.Number] = p
	}
	return f
}

func (f *fakeCatalog) FetchPage(_ context.Context, page int) (domain.CatalogPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	if err := f.errs[page]; err != nil {
		return domain.CatalogPage{}, err
	}
	p, ok := f.pages[page]
	if !ok {
		return domain.CatalogPage{Number: page}, nil
	}
	return p, nil
}

func (f *fakeCatalog) set(p domain.CatalogPage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[p.Number] = p
}

func (f *fakeCatalog) fail(page int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, page)
		return
	}
	f.errs[page] = err
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeCharacters answers any id with a synthetic character, except ids in
// missing.
type fakeCharacters struct {
	mu      sync.Mutex
	batches [][]int
	missing map[int]bool
	err     error
}

func (f *fakeCharacters) FetchCharacters(_ context.Context, ids []int) ([]domain.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, slices.Clone(ids))
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Character
	// Reverse order to prove the service restores request order.
	for i := len(ids) - 1; i >= 0; i-- {
		if f.missing[ids[i]] {
			continue
		}
		out = append(out, domain.Character{ID: ids[i], Name: fmt.Sprintf("Character %d", ids[i])})
	}
	return out, nil
}

func (f *fakeCharacters) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}
