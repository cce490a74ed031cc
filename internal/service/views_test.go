package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/favourites"
	"github.com/mmcdole/wubba/internal/store"
)

func newTestViews(t *testing.T) (*Views, *favourites.Store) {
	t.Helper()
	client := newFakeCatalog(domain.CatalogPage{Number: 1, Episodes: []domain.Episode{
		{ID: 1, Name: "Pilot"},
		{ID: 2, Name: "Lawnmower Dog"},
		{ID: 3, Name: "Anatomy Park"},
		{ID: 4, Name: "M. Night Shaym-Aliens!"},
	}})
	svc := NewCatalogService(client, nil, quietLogger())
	require.NoError(t, svc.LoadNextPage(context.Background()))

	kv, err := store.NewBoltKV("")
	require.NoError(t, err)
	favs := favourites.NewStore(kv, quietLogger())
	t.Cleanup(favs.Close)
	favs.Load()

	return NewViews(svc, favourites.NewReconciler(favs, quietLogger()), quietLogger()), favs
}

func rowIDs(rows []EpisodeRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Episode.ID
	}
	return out
}

func favouriteIDs(rows []favourites.FavouriteRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Episode.ID
	}
	return out
}

func TestAllEpisodesFilter(t *testing.T) {
	v, _ := newTestViews(t)

	assert.Equal(t, []int{1, 2, 3, 4}, rowIDs(v.AllEpisodes()))

	v.SetSearchQuery("  DOG ")
	rows := v.AllEpisodes()
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Episode.ID)
	assert.True(t, rows[0].Matched)
	assert.Equal(t, 10, rows[0].MatchStart)
	assert.Equal(t, 13, rows[0].MatchEnd)

	v.SetSearchQuery("   ")
	assert.Len(t, v.AllEpisodes(), 4)
}

func TestAllEpisodesFavouriteFlag(t *testing.T) {
	v, _ := newTestViews(t)

	favourite, token := v.ToggleFavourite(3, false)
	assert.True(t, favourite)
	assert.Zero(t, token)

	rows := v.AllEpisodes()
	assert.False(t, rows[0].Favourite)
	assert.True(t, rows[2].Favourite)
	assert.True(t, v.IsFavourite(3))
}

func TestFavouritesExitTransition(t *testing.T) {
	v, favs := newTestViews(t)
	v.Activate(ViewFavourites)
	v.ToggleFavourite(1, false)
	v.ToggleFavourite(3, false)
	assert.Equal(t, "2 episodes", v.FavouritesLabel())

	favourite, token := v.ToggleFavourite(1, true)
	assert.False(t, favourite)
	assert.NotZero(t, token)
	assert.False(t, favs.IsFavourite(1))

	// Still rendered while exiting, and still counted.
	rows := v.Favourites()
	assert.Equal(t, []int{1, 3}, favouriteIDs(rows))
	assert.True(t, rows[0].Exiting)
	assert.Equal(t, 2, v.FavouritesCount())

	assert.False(t, v.CompleteRemoval(1, token+1))
	assert.True(t, v.CompleteRemoval(1, token))
	assert.Equal(t, []int{3}, favouriteIDs(v.Favourites()))
	assert.Equal(t, "1 episode", v.FavouritesLabel())
}

func TestFavouritesFilterDoesNotChangeCount(t *testing.T) {
	v, _ := newTestViews(t)
	v.ToggleFavourite(1, false)
	v.ToggleFavourite(2, false)

	v.SetSearchQuery("pilot")
	assert.Equal(t, []int{1}, favouriteIDs(v.Favourites()))
	assert.Equal(t, 2, v.FavouritesCount())
}

func TestActivateDropsPendingAndReloads(t *testing.T) {
	v, favs := newTestViews(t)
	v.Activate(ViewFavourites)
	v.ToggleFavourite(2, false)
	_, token := v.ToggleFavourite(2, true)
	require.NotZero(t, token)

	v.Activate(ViewEpisodes)
	assert.Equal(t, ViewEpisodes, v.Active())
	assert.Empty(t, v.Favourites())
	assert.False(t, v.CompleteRemoval(2, token))
	assert.Zero(t, favs.Len())
	assert.Equal(t, "0 episodes", v.FavouritesLabel())
}

func TestActivateKeepsPendingUnlessLeavingFavourites(t *testing.T) {
	v, _ := newTestViews(t)
	v.Activate(ViewFavourites)
	v.ToggleFavourite(2, false)
	_, token := v.ToggleFavourite(2, true)
	require.NotZero(t, token)

	t.Run("re-activating favourites", func(t *testing.T) {
		v.Activate(ViewFavourites)
		assert.True(t, v.ExitPending(2, token))
		assert.Equal(t, []int{2}, favouriteIDs(v.Favourites()))
	})

	t.Run("leaving favourites", func(t *testing.T) {
		v.Activate(ViewEpisodes)
		assert.False(t, v.ExitPending(2, token))
		assert.Empty(t, v.Favourites())
	})

	t.Run("re-activating episodes", func(t *testing.T) {
		v.ToggleFavourite(3, false)
		_, token := v.ToggleFavourite(3, true)
		require.NotZero(t, token)

		v.Activate(ViewEpisodes)
		assert.True(t, v.ExitPending(3, token))
	})
}

func TestSuggestions(t *testing.T) {
	v, _ := newTestViews(t)

	assert.Empty(t, v.Suggestions())

	v.SetSearchQuery("park")
	assert.Empty(t, v.Suggestions(), "query has matches")

	v.SetSearchQuery("pliot")
	require.Empty(t, v.AllEpisodes())
	suggestions := v.Suggestions()
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "Pilot", suggestions[0].Name)
}
