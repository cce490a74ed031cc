package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/wubba/internal/catalog"
	"github.com/mmcdole/wubba/internal/domain"
)

// PageRequest describes one catalog fetch. It is produced by BeginNextPage
// or BeginRefresh on the event loop and carried through Fetch unchanged.
type PageRequest struct {
	Page       int
	Generation uint64
	Refresh    bool
	Before     domain.FreshnessMark // High-water mark captured when a refresh began
}

// PageResult is the outcome of Fetch, to be handed back to ApplyPage.
type PageResult struct {
	Request PageRequest
	Page    domain.CatalogPage
	Err     error
}

// CatalogService drives pagination and refresh of the episode catalog.
//
// Mutating methods must be called from a single goroutine (the UI event
// loop). Only Fetch performs I/O and may run elsewhere.
type CatalogService struct {
	client domain.CatalogClient
	conn   domain.ConnectivityChecker
	logger *slog.Logger

	cache      *catalog.Cache
	generation uint64
	loading    bool
	refreshing bool
	broken     bool // An out-of-order page was seen; paging stops until refresh
	err        error
}

// NewCatalogService creates a new catalog service. A nil checker treats
// the network as always reachable.
func NewCatalogService(client domain.CatalogClient, conn domain.ConnectivityChecker, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		client: client,
		conn:   conn,
		logger: logger,
		cache:  catalog.NewCache(),
	}
}

// BeginNextPage reserves the next page fetch. It refuses while a fetch or
// refresh is outstanding, after an out-of-order page, and once pagination
// is exhausted.
func (s *CatalogService) BeginNextPage() (PageRequest, bool) {
	if s.loading || s.refreshing || s.broken {
		return PageRequest{}, false
	}

	page := 1
	if !s.cache.Empty() {
		next, err := s.cache.NextCursor()
		if err != nil {
			return PageRequest{}, false
		}
		page = next
	}

	s.loading = true
	return PageRequest{Page: page, Generation: s.generation}, true
}

// BeginRefresh starts a user-initiated refresh of page 1. When the network
// is unreachable it returns ErrOffline and leaves all state untouched.
// Otherwise any in-flight page fetch is superseded; the current episodes
// stay visible until the refresh result is applied.
func (s *CatalogService) BeginRefresh(ctx context.Context) (PageRequest, error) {
	return s.BeginRefreshWith(s.CheckConnectivity(ctx))
}

// CheckConnectivity consults the connectivity checker. It performs I/O but
// touches no service state, so the UI runs it off the event loop and hands
// the answer to BeginRefreshWith.
func (s *CatalogService) CheckConnectivity(ctx context.Context) bool {
	if s.conn == nil {
		return true
	}
	return s.conn.IsConnected(ctx)
}

// BeginRefreshWith is BeginRefresh with the connectivity answer supplied.
func (s *CatalogService) BeginRefreshWith(online bool) (PageRequest, error) {
	if !online {
		s.logger.Info("refresh refused, offline")
		return PageRequest{}, domain.ErrOffline
	}

	s.generation++
	s.loading = false
	s.refreshing = true

	req := PageRequest{
		Page:       1,
		Generation: s.generation,
		Refresh:    true,
		Before:     catalog.Mark(s.cache.Episodes()),
	}
	s.logger.Debug("refresh started", "generation", req.Generation)
	return req, nil
}

// Fetch performs the network call for req. It touches no service state.
func (s *CatalogService) Fetch(ctx context.Context, req PageRequest) PageResult {
	page, err := s.client.FetchPage(ctx, req.Page)
	if err == nil && page.Number == 0 {
		page.Number = req.Page
	}
	return PageResult{Request: req, Page: page, Err: err}
}

// ApplyPage folds a fetch result into the catalog. Results from a
// superseded generation are dropped with ErrStale.
//
// For refresh results the returned Freshness classifies the outcome; a
// failed refresh keeps the previous catalog. For page results it is
// always FreshnessNoNewContent.
func (s *CatalogService) ApplyPage(res PageResult) (domain.Freshness, error) {
	if res.Request.Generation != s.generation {
		s.logger.Debug("discarding stale page",
			"page", res.Request.Page,
			"generation", res.Request.Generation,
			"current", s.generation)
		return domain.FreshnessNoNewContent, domain.ErrStale
	}

	if res.Request.Refresh {
		return s.applyRefresh(res)
	}

	s.loading = false
	if res.Err != nil {
		s.err = res.Err
		s.logger.Error("failed to load page", "page", res.Request.Page, "error", res.Err)
		return domain.FreshnessNoNewContent, res.Err
	}

	if err := s.cache.AppendPage(res.Page); err != nil {
		s.broken = true
		s.err = err
		s.logger.Error("rejected catalog page", "page", res.Page.Number, "error", err)
		return domain.FreshnessNoNewContent, err
	}

	s.err = nil
	s.logger.Info("loaded page", "page", res.Page.Number, "episodes", s.cache.Len(), "hasMore", s.cache.HasMore())
	return domain.FreshnessNoNewContent, nil
}

func (s *CatalogService) applyRefresh(res PageResult) (domain.Freshness, error) {
	s.refreshing = false
	if res.Err != nil {
		s.err = res.Err
		s.logger.Error("refresh failed", "error", res.Err)
		return catalog.Classify(res.Request.Before, domain.FreshnessMark{}, res.Err), res.Err
	}

	// Build the replacement first so a rejected page leaves the old catalog intact.
	fresh := catalog.NewCache()
	if err := fresh.AppendPage(res.Page); err != nil {
		s.err = err
		s.logger.Error("rejected refresh page", "page", res.Page.Number, "error", err)
		return domain.FreshnessFailed, err
	}

	s.cache = fresh
	s.broken = false
	s.err = nil

	outcome := catalog.Classify(res.Request.Before, catalog.Mark(s.cache.Episodes()), nil)
	s.logger.Info("refresh complete", "outcome", outcome.String(), "episodes", s.cache.Len())
	return outcome, nil
}

// LoadNextPage fetches and applies the next page synchronously. It
// returns ErrExhausted when there is nothing left to load.
func (s *CatalogService) LoadNextPage(ctx context.Context) error {
	req, ok := s.BeginNextPage()
	if !ok {
		if s.broken {
			return fmt.Errorf("%w: paging stopped", domain.ErrOutOfOrderPage)
		}
		if s.loading || s.refreshing {
			return fmt.Errorf("fetch already in progress")
		}
		return domain.ErrExhausted
	}
	_, err := s.ApplyPage(s.Fetch(ctx, req))
	return err
}

// LoadAll pages through the whole catalog synchronously.
func (s *CatalogService) LoadAll(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.LoadNextPage(ctx)
		if errors.Is(err, domain.ErrExhausted) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Refresh performs a complete refresh synchronously. An offline refusal
// is reported as FreshnessRefused with ErrOffline.
func (s *CatalogService) Refresh(ctx context.Context) (domain.Freshness, error) {
	req, err := s.BeginRefresh(ctx)
	if err != nil {
		return domain.FreshnessRefused, err
	}
	return s.ApplyPage(s.Fetch(ctx, req))
}

// State returns a snapshot of the catalog.
func (s *CatalogService) State() domain.CatalogState {
	return domain.CatalogState{
		Pages:      s.cache.Pages(),
		Episodes:   s.cache.Episodes(),
		Loading:    s.loading,
		Refreshing: s.refreshing,
		Err:        s.err,
	}
}

// Episodes returns the flattened, deduplicated catalog.
func (s *CatalogService) Episodes() []domain.Episode { return s.cache.Episodes() }

// Lookup finds a loaded episode by ID.
func (s *CatalogService) Lookup(id int) (domain.Episode, bool) { return s.cache.Lookup(id) }

// HasMore reports whether another page can be requested. Before the first
// page is loaded it is true.
func (s *CatalogService) HasMore() bool {
	if s.broken {
		return false
	}
	return s.cache.Empty() || s.cache.HasMore()
}

// Exhausted reports whether the last page has been loaded.
func (s *CatalogService) Exhausted() bool {
	return !s.cache.Empty() && !s.cache.HasMore()
}

func (s *CatalogService) Loading() bool      { return s.loading }
func (s *CatalogService) Refreshing() bool   { return s.refreshing }
func (s *CatalogService) Broken() bool       { return s.broken }
func (s *CatalogService) Err() error         { return s.err }
func (s *CatalogService) Generation() uint64 { return s.generation }
