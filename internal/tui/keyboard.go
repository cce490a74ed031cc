package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/wubba/internal/service"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Typing into a search bar swallows everything but ctrl+c
	if msg.String() != "ctrl+c" {
		if m.Screen == ScreenBrowse && m.Search.Focused() {
			return m.updateSearch(msg)
		}
		if m.Screen == ScreenDetail && m.CharacterSearch.Focused() {
			return m.updateCharacterSearch(msg)
		}
	}

	// Handle screen-specific keys
	switch m.Screen {
	case ScreenHelp:
		if key.Matches(msg, Keys.Back, Keys.Help, Keys.Quit) {
			m.Screen = ScreenBrowse
		}
		return m, nil

	case ScreenDetail:
		return m.handleDetailKey(msg)

	case ScreenCharacter:
		return m.handleCharacterKey(msg)
	}

	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cursor := m.cursors[m.Tab]
	count := m.rowCount()

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.Screen = ScreenHelp
		return m, nil

	case key.Matches(msg, Keys.Filter):
		cmd := m.Search.Focus()
		return m, cmd

	case key.Matches(msg, Keys.Back):
		if m.Search.Value() != "" {
			m.Search.Clear()
			m.Views.SetSearchQuery("")
			m.clampCursors()
		}
		return m, nil

	case key.Matches(msg, Keys.NextTab, Keys.PrevTab):
		if m.Tab == service.ViewEpisodes {
			m.switchTab(service.ViewFavourites)
		} else {
			m.switchTab(service.ViewEpisodes)
		}
		return m, m.loadAhead()

	case key.Matches(msg, Keys.Up):
		cursor.Move(-1, count)
		return m, nil

	case key.Matches(msg, Keys.Down):
		cursor.Move(1, count)
		return m, m.loadAhead()

	case key.Matches(msg, Keys.HalfUp):
		cursor.Page(-1, count)
		return m, nil

	case key.Matches(msg, Keys.HalfDown):
		cursor.Page(1, count)
		return m, m.loadAhead()

	case key.Matches(msg, Keys.Home):
		cursor.Top()
		return m, nil

	case key.Matches(msg, Keys.End):
		cursor.Bottom(count)
		return m, m.loadAhead()

	case key.Matches(msg, Keys.NextPage):
		if m.Tab == service.ViewEpisodes {
			return m, m.requestNextPage()
		}
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		return m, CheckConnectivityCmd(m.Catalog)

	case key.Matches(msg, Keys.Retry):
		if m.Catalog.Err() == nil {
			return m, nil
		}
		if m.Catalog.Broken() {
			return m, CheckConnectivityCmd(m.Catalog)
		}
		return m, m.requestNextPage()

	case key.Matches(msg, Keys.Favourite):
		return m.toggleSelected()

	case key.Matches(msg, Keys.Enter):
		return m.openDetail()
	}

	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Back):
		if m.CharacterSearch.Value() != "" {
			m.CharacterSearch.Clear()
			m.Detail.SetFilter("")
			return m, nil
		}
		m.Screen = ScreenBrowse
		m.clampCursors()
		return m, nil

	case key.Matches(msg, Keys.Filter):
		cmd := m.CharacterSearch.Focus()
		return m, cmd

	case key.Matches(msg, Keys.Up):
		m.Detail.MoveSelection(-1)
		return m, nil

	case key.Matches(msg, Keys.Down):
		m.Detail.MoveSelection(1)
		return m, nil

	case key.Matches(msg, Keys.Enter):
		if ch, ok := m.Detail.SelectedCharacter(); ok {
			m.Card.SetCharacter(ch)
			m.Screen = ScreenCharacter
		}
		return m, nil

	case key.Matches(msg, Keys.LoadMore):
		m.Detail.LoadMore()
		return m, nil

	case key.Matches(msg, Keys.Favourite):
		favourite, _ := m.Views.ToggleFavourite(m.Detail.EpisodeID(), false)
		m.Detail.SetFavourite(favourite)
		return m, nil

	case key.Matches(msg, Keys.Help):
		m.Screen = ScreenHelp
		return m, nil
	}

	return m, nil
}

func (m Model) handleCharacterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Back):
		m.Screen = ScreenDetail
		return m, nil

	case key.Matches(msg, Keys.Open):
		ch := m.Card.Character()
		if m.opener == nil || ch.Image == "" {
			return m, nil
		}
		return m, OpenURLCmd(m.opener, ch)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var changed bool
	m.Search, cmd, changed = m.Search.Update(msg)
	if changed {
		m.Views.SetSearchQuery(m.Search.Value())
		m.cursors[m.Tab].Top()
		m.clampCursors()
	}
	return m, tea.Batch(cmd, m.loadAhead())
}

func (m Model) updateCharacterSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var changed bool
	m.CharacterSearch, cmd, changed = m.CharacterSearch.Update(msg)
	if changed {
		m.Detail.SetFilter(m.CharacterSearch.Value())
	}
	return m, cmd
}

// toggleSelected flips the favourite under the cursor. Unfavouriting from
// the favourites tab starts the exit transition.
func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	ep, ok := m.selectedEpisode()
	if !ok {
		return m, nil
	}

	fromFavourites := m.Tab == service.ViewFavourites
	favourite, token := m.Views.ToggleFavourite(ep.ID, fromFavourites)
	if favourite {
		delete(m.exiting, ep.ID)
		cmd := m.setStatus("Added to favourites: "+episodeTitle(ep), false)
		return m, cmd
	}
	status := m.setStatus("Removed from favourites: "+episodeTitle(ep), false)
	if fromFavourites && token != 0 {
		m.exiting[ep.ID] = 0
		return m, tea.Batch(status, ExitTickCmd(ep.ID, token, 1, m.exitStep))
	}
	return m, status
}

func (m Model) openDetail() (tea.Model, tea.Cmd) {
	ep, ok := m.selectedEpisode()
	if !ok {
		return m, nil
	}

	m.Screen = ScreenDetail
	m.CharacterSearch.Clear()
	m.Detail.SetEpisode(ep, m.Views.IsFavourite(ep.ID))
	if len(ep.Characters) == 0 {
		m.Detail.SetCharacters(nil, nil)
		return m, nil
	}
	return m, LoadCharactersCmd(m.Characters, ep)
}

func (m Model) rowCount() int {
	if m.Tab == service.ViewFavourites {
		return len(m.Views.Favourites())
	}
	return len(m.Views.AllEpisodes())
}
