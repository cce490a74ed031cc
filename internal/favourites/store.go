// Package favourites owns the persisted favourite-episode membership set
// and the transient pending-removal state used by the favourites view.
package favourites

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mmcdole/wubba/internal/domain"
)

// StorageKey is the fixed key the membership set is persisted under.
const StorageKey = "favourite_episodes"

// Store is the single source of truth for favourite membership. It holds
// identifiers only. Membership changes are visible immediately; durable
// writes happen in the background and are flushed on Close.
//
// Store is driven from one event loop and is not safe for concurrent use.
type Store struct {
	kv     domain.KVStore
	logger *slog.Logger
	ids    map[int]struct{}
	writer *persister
}

// NewStore creates a store over kv. Call Load before use and Close before exit.
func NewStore(kv domain.KVStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     kv,
		logger: logger,
		ids:    make(map[int]struct{}),
		writer: newPersister(kv, StorageKey, logger),
	}
}

// Load reads the persisted set. Missing or corrupt data yields an empty
// set; Load never fails.
func (s *Store) Load() {
	ids, err := s.read()
	if err != nil {
		s.logger.Warn("favourites unreadable, starting empty", "error", err)
	}
	s.ids = ids
	s.logger.Debug("loaded favourites", "count", len(ids))
}

// Reload re-reads persisted state, overwriting memory. Used when a view
// becomes active again. Pending writes are flushed first so a reload never
// observes a state older than the last toggle.
func (s *Store) Reload() {
	s.writer.flush()
	s.Load()
}

// Toggle flips membership of id and returns the new membership.
func (s *Store) Toggle(id int) bool {
	_, had := s.ids[id]
	if had {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	s.persist()
	return !had
}

// Set forces membership of id, persisting only on change.
func (s *Store) Set(id int, favourite bool) {
	if s.IsFavourite(id) == favourite {
		return
	}
	s.Toggle(id)
}

// IsFavourite reports membership of id.
func (s *Store) IsFavourite(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the members in ascending order.
func (s *Store) IDs() []int {
	ids := make([]int, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of favourites.
func (s *Store) Len() int {
	return len(s.ids)
}

// Flush blocks until every write queued so far has completed.
func (s *Store) Flush() {
	s.writer.flush()
}

// Close flushes pending writes and stops the background writer.
func (s *Store) Close() {
	s.writer.close()
}

func (s *Store) read() (map[int]struct{}, error) {
	ids := make(map[int]struct{})

	data, ok, err := s.kv.Read(StorageKey)
	if err != nil {
		return ids, fmt.Errorf("%w: %w", domain.ErrStorageRead, err)
	}
	if !ok {
		return ids, nil
	}

	var stored []int
	if err := json.Unmarshal(data, &stored); err != nil {
		return ids, fmt.Errorf("%w: %w", domain.ErrStorageRead, err)
	}
	for _, id := range stored {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// persist queues the full membership collection; no incremental diffs.
func (s *Store) persist() {
	data, err := json.Marshal(s.IDs())
	if err != nil {
		s.logger.Error("failed to encode favourites", "error", err)
		return
	}
	s.writer.enqueue(data)
}
