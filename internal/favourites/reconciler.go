package favourites

import (
	"log/slog"

	"github.com/mmcdole/wubba/internal/domain"
)

// RemovalState is the per-episode state seen by a favourites-scoped view.
type RemovalState int

const (
	// StateGone means the episode is neither favourite nor pending.
	StateGone RemovalState = iota
	StateFavourited
	// StatePendingRemoval means the episode was unfavourited while visible
	// and must stay rendered until its exit transition completes.
	StatePendingRemoval
)

func (s RemovalState) String() string {
	switch s {
	case StateFavourited:
		return "favourited"
	case StatePendingRemoval:
		return "pending_removal"
	default:
		return "gone"
	}
}

// Token identifies one exit transition. A completion signal carrying a
// superseded token is ignored.
type Token uint64

// FavouriteRow is one rendered row of the favourites view.
type FavouriteRow struct {
	Episode   domain.Episode
	Favourite bool  // false while exiting
	Exiting   bool  // an exit transition is outstanding
	Token     Token // valid when Exiting
}

// Reconciler layers transient pending-removal membership over a Store so
// an unfavourited episode can animate out before it disappears.
//
// Pending entries are never persisted. Reconciler shares the Store's
// single-event-loop contract.
type Reconciler struct {
	store   *Store
	logger  *slog.Logger
	pending map[int]Token
	seq     Token
}

// NewReconciler creates a reconciler over store.
func NewReconciler(store *Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:   store,
		logger:  logger,
		pending: make(map[int]Token),
	}
}

// Toggle flips membership of id. Unfavouriting an episode that is visible
// in the favourites view starts an exit transition and returns its token.
// Favouriting an episode that is mid-exit cancels the pending removal
// immediately, whatever the state of its animation.
func (r *Reconciler) Toggle(id int, visible bool) (favourite bool, token Token) {
	favourite = r.store.Toggle(id)

	if favourite {
		if _, ok := r.pending[id]; ok {
			delete(r.pending, id)
			r.logger.Debug("cancelled pending removal", "episodeID", id)
		}
		return true, 0
	}

	if !visible {
		return false, 0
	}

	r.seq++
	r.pending[id] = r.seq
	r.logger.Debug("pending removal", "episodeID", id, "token", r.seq)
	return false, r.seq
}

// Complete handles the exit-transition completion signal. It is the only
// way out of StatePendingRemoval and reports whether it removed anything.
func (r *Reconciler) Complete(id int, token Token) bool {
	current, ok := r.pending[id]
	if !ok || current != token {
		return false
	}
	delete(r.pending, id)
	r.logger.Debug("removal complete", "episodeID", id)
	return true
}

// State returns the current state of id.
func (r *Reconciler) State(id int) RemovalState {
	if r.store.IsFavourite(id) {
		return StateFavourited
	}
	if _, ok := r.pending[id]; ok {
		return StatePendingRemoval
	}
	return StateGone
}

// IsPending reports whether id is mid-exit.
func (r *Reconciler) IsPending(id int) bool {
	_, ok := r.pending[id]
	return ok
}

// PendingToken returns the token of id's outstanding exit transition.
func (r *Reconciler) PendingToken(id int) (Token, bool) {
	token, ok := r.pending[id]
	return token, ok
}

// PendingCount returns the number of outstanding exit transitions.
func (r *Reconciler) PendingCount() int {
	return len(r.pending)
}

// Visible returns the rows the favourites view renders: episodes whose ID
// is a favourite or pending removal, in catalog order. Favourites missing
// from the catalog are not rendered.
func (r *Reconciler) Visible(episodes []domain.Episode) []FavouriteRow {
	var rows []FavouriteRow
	for _, ep := range episodes {
		if r.store.IsFavourite(ep.ID) {
			rows = append(rows, FavouriteRow{Episode: ep, Favourite: true})
			continue
		}
		if token, ok := r.pending[ep.ID]; ok {
			rows = append(rows, FavouriteRow{Episode: ep, Exiting: true, Token: token})
		}
	}
	return rows
}

// Reset drops every pending removal, e.g. when the view is deactivated
// and no completion signal will arrive.
func (r *Reconciler) Reset() {
	if len(r.pending) > 0 {
		r.logger.Debug("dropping pending removals", "count", len(r.pending))
	}
	r.pending = make(map[int]Token)
}

// Store returns the underlying membership store.
func (r *Reconciler) Store() *Store {
	return r.store
}
