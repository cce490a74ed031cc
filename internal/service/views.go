package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/favourites"
	"github.com/mmcdole/wubba/internal/search"
)

const defaultSuggestions = 3

// View identifies a top-level screen
type View int

const (
	ViewEpisodes View = iota
	ViewFavourites
)

func (v View) String() string {
	if v == ViewFavourites {
		return "favourites"
	}
	return "episodes"
}

// EpisodeRow is one rendered row of the episodes view
type EpisodeRow struct {
	Episode   domain.Episode
	Favourite bool
	// MatchStart and MatchEnd are rune offsets of the query in the name,
	// valid when Matched.
	MatchStart int
	MatchEnd   int
	Matched    bool
}

// Views composes the catalog, favourites and search query into the rows
// each screen renders. Like CatalogService it is driven from one goroutine.
type Views struct {
	catalog *CatalogService
	favs    *favourites.Reconciler
	logger  *slog.Logger

	query  string
	active View
}

// NewViews creates the view projections
func NewViews(catalog *CatalogService, favs *favourites.Reconciler, logger *slog.Logger) *Views {
	if logger == nil {
		logger = slog.Default()
	}
	return &Views{
		catalog: catalog,
		favs:    favs,
		logger:  logger,
	}
}

// SetSearchQuery replaces the search query. Both views filter by it.
func (v *Views) SetSearchQuery(text string) {
	v.query = text
}

// Query returns the current search query
func (v *Views) Query() string {
	return v.query
}

// Active returns the screen last passed to Activate
func (v *Views) Active() View {
	return v.active
}

// AllEpisodes returns the filtered catalog with favourite flags
func (v *Views) AllEpisodes() []EpisodeRow {
	episodes := search.Apply(v.catalog.Episodes(), v.query)
	store := v.favs.Store()

	rows := make([]EpisodeRow, len(episodes))
	for i, ep := range episodes {
		rows[i] = EpisodeRow{Episode: ep, Favourite: store.IsFavourite(ep.ID)}
		if strings.TrimSpace(v.query) != "" {
			rows[i].MatchStart, rows[i].MatchEnd, rows[i].Matched = search.MatchRange(ep.Name, v.query)
		}
	}
	return rows
}

// Favourites returns the favourites rows, including episodes that are
// animating out, filtered by the search query.
func (v *Views) Favourites() []favourites.FavouriteRow {
	rows := v.favs.Visible(v.catalog.Episodes())
	if strings.TrimSpace(v.query) == "" {
		return rows
	}

	filtered := rows[:0:0]
	for _, row := range rows {
		if search.Matches(row.Episode.Name, v.query) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// FavouritesCount is the number of favourites rows before filtering
func (v *Views) FavouritesCount() int {
	return len(v.favs.Visible(v.catalog.Episodes()))
}

// FavouritesLabel renders the count as "N episode" or "N episodes"
func (v *Views) FavouritesLabel() string {
	return episodeCountLabel(v.FavouritesCount())
}

func episodeCountLabel(n int) string {
	if n == 1 {
		return "1 episode"
	}
	return fmt.Sprintf("%d episodes", n)
}

// Suggestions offers near matches when the query filters out every
// episode. It is empty otherwise.
func (v *Views) Suggestions() []domain.Episode {
	if strings.TrimSpace(v.query) == "" {
		return nil
	}
	episodes := v.catalog.Episodes()
	if len(search.Apply(episodes, v.query)) > 0 {
		return nil
	}
	return search.Suggest(episodes, v.query, defaultSuggestions)
}

// ToggleFavourite flips membership of id. When toggled off from the
// favourites view the returned token identifies the exit transition that
// must later be passed to CompleteRemoval.
func (v *Views) ToggleFavourite(id int, fromFavouritesView bool) (bool, favourites.Token) {
	favourite, token := v.favs.Toggle(id, fromFavouritesView)
	v.logger.Info("toggled favourite", "episodeID", id, "favourite", favourite, "view", v.active.String())
	return favourite, token
}

// CompleteRemoval ends an exit transition. Stale tokens are ignored.
func (v *Views) CompleteRemoval(id int, token favourites.Token) bool {
	return v.favs.Complete(id, token)
}

// ExitPending reports whether the exit transition identified by token is
// still outstanding for id. A re-favourite or leaving the favourites view
// cancels it.
func (v *Views) ExitPending(id int, token favourites.Token) bool {
	current, ok := v.favs.PendingToken(id)
	return ok && current == token
}

// Activate is called when a screen becomes visible. Favourites are re-read
// from storage. Outstanding exit transitions are dropped only when the
// favourites view is being left.
func (v *Views) Activate(view View) {
	if v.active == ViewFavourites && view != ViewFavourites {
		v.favs.Reset()
	}
	v.active = view
	v.favs.Store().Reload()
	v.logger.Debug("view activated", "view", view.String(), "favourites", v.favs.Store().Len())
}

// IsFavourite reports whether id is a favourite
func (v *Views) IsFavourite(id int) bool {
	return v.favs.Store().IsFavourite(id)
}
