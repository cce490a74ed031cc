package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/favourites"
	"github.com/mmcdole/wubba/internal/service"
	"github.com/mmcdole/wubba/internal/tui/components"
	"github.com/mmcdole/wubba/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	var body string
	switch m.Screen {
	case ScreenHelp:
		m.help.ShowAll = true
		body = styles.DetailStyle.Render(m.help.View(Keys))
	case ScreenDetail:
		body = m.Detail.View(m.SpinnerFrame)
		if bar := m.CharacterSearch.View(); bar != "" {
			body = bar + "\n" + body
		}
	case ScreenCharacter:
		body = m.Card.View()
	default:
		body = m.renderBrowse()
	}

	bodyHeight := max(m.Height-2, 1)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		body,
		m.renderStatusBar(),
	)
}

func (m Model) renderTabs() string {
	tab := func(label string, active bool) string {
		if active {
			return styles.ActiveTabStyle.Render(label)
		}
		return styles.InactiveTabStyle.Render(label)
	}
	favLabel := fmt.Sprintf("Favourites (%d)", m.Views.FavouritesCount())
	return lipgloss.JoinHorizontal(lipgloss.Top,
		tab("Episodes", m.Tab == service.ViewEpisodes),
		" ",
		tab(favLabel, m.Tab == service.ViewFavourites),
	)
}

func (m Model) renderBrowse() string {
	var lines []string

	if m.Tab == service.ViewFavourites {
		lines = append(lines, styles.SubtitleStyle.Render(m.Views.FavouritesLabel()))
	} else {
		lines = append(lines, styles.SubtitleStyle.Render(m.catalogSummary()))
	}

	lines = append(lines, m.Search.View())

	if m.Tab == service.ViewFavourites {
		lines = append(lines, m.renderFavourites()...)
	} else {
		lines = append(lines, m.renderEpisodes()...)
	}

	return styles.BrowserStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) catalogSummary() string {
	n := len(m.Catalog.Episodes())
	if n == 1 {
		return "1 episode loaded"
	}
	return fmt.Sprintf("%d episodes loaded", n)
}

func (m Model) renderEpisodes() []string {
	rows := m.Views.AllEpisodes()
	width := m.Width - 2
	var lines []string

	if len(rows) == 0 {
		lines = append(lines, m.renderEmptyEpisodes()...)
	}

	cursor := m.cursors[service.ViewEpisodes]
	start, end := cursor.Window(len(rows))
	for i := start; i < end; i++ {
		lines = append(lines, renderEpisodeRow(rows[i], i == cursor.Index(), width))
	}

	lines = append(lines, m.renderEpisodesFooter())
	return lines
}

func (m Model) renderEmptyEpisodes() []string {
	if m.Catalog.Loading() && len(m.Catalog.Episodes()) == 0 {
		return nil
	}
	query := strings.TrimSpace(m.Views.Query())
	if query == "" {
		return []string{styles.DimStyle.Render("No episodes")}
	}

	lines := []string{styles.DimStyle.Render(fmt.Sprintf("No episodes match %q", query))}
	if suggestions := m.Views.Suggestions(); len(suggestions) > 0 {
		names := make([]string, len(suggestions))
		for i, ep := range suggestions {
			names[i] = ep.Name
		}
		lines = append(lines, styles.DimStyle.Render("Did you mean: ")+styles.AccentStyle.Render(strings.Join(names, ", "))+"?")
	}
	return lines
}

func (m Model) renderEpisodesFooter() string {
	spinner := styles.SpinnerStyle.Render(components.SpinnerFrame(m.SpinnerFrame))
	switch {
	case m.Catalog.Refreshing():
		return spinner + styles.DimStyle.Render(" Refreshing...")
	case m.Catalog.Loading():
		return spinner + styles.DimStyle.Render(" Loading more episodes...")
	case m.Catalog.Err() != nil:
		return styles.ErrorStyle.Render("Failed to load episodes") + styles.DimStyle.Render("  R: retry")
	case m.Catalog.Exhausted():
		return styles.DimStyle.Render("No more episodes")
	case m.Catalog.HasMore():
		return styles.DimStyle.Render("n: load more")
	}
	return ""
}

func (m Model) renderFavourites() []string {
	rows := m.Views.Favourites()
	width := m.Width - 2

	if len(rows) == 0 {
		if m.Views.FavouritesCount() > 0 {
			return []string{styles.DimStyle.Render(fmt.Sprintf("No favourites match %q", strings.TrimSpace(m.Views.Query())))}
		}
		return []string{
			styles.TitleStyle.Render("No favourites yet."),
			styles.DimStyle.Render("Press f on an episode to add it."),
		}
	}

	cursor := m.cursors[service.ViewFavourites]
	start, end := cursor.Window(len(rows))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderFavouriteRow(rows[i], i == cursor.Index(), width))
	}
	return lines
}

func renderEpisodeRow(row service.EpisodeRow, selected bool, width int) string {
	ep := row.Episode
	star := styles.NotFavouriteChar
	starColor := styles.DimGray
	if row.Favourite {
		star = styles.FavouriteChar
		starColor = styles.MortyYellow
	}
	codeColor := styles.PortalGreen

	parts := []styles.RowPart{
		{Text: star + " ", Foreground: &starColor},
		{Text: fmt.Sprintf("%-7s", ep.Code), Foreground: &codeColor},
	}
	parts = append(parts, nameParts(ep.Name, row, width-30)...)
	if ep.AirDate != "" {
		dim := styles.DimGray
		parts = append(parts, styles.RowPart{Text: "  " + ep.AirDate, Foreground: &dim})
	}
	return styles.RenderListRow(parts, selected, width)
}

// nameParts splits the name around the search match so it can be highlighted
func nameParts(name string, row service.EpisodeRow, width int) []styles.RowPart {
	runes := []rune(styles.Truncate(name, max(width, 10)))
	if !row.Matched || row.MatchEnd > len(runes) {
		return []styles.RowPart{{Text: string(runes)}}
	}
	highlight := styles.MortyYellow
	return []styles.RowPart{
		{Text: string(runes[:row.MatchStart])},
		{Text: string(runes[row.MatchStart:row.MatchEnd]), Foreground: &highlight, Bold: true},
		{Text: string(runes[row.MatchEnd:])},
	}
}

// renderFavouriteRow renders a favourites row. Exiting rows slide out: the
// visible text shrinks with every frame of the transition.
func (m Model) renderFavouriteRow(row favourites.FavouriteRow, selected bool, width int) string {
	ep := row.Episode
	text := fmt.Sprintf("%s %-7s %s", styles.FavouriteChar, ep.Code, ep.Name)

	if row.Exiting {
		frame := m.exiting[ep.ID]
		remaining := 1 - float64(frame)/float64(m.exitFrames)
		keep := int(float64(len([]rune(text))) * remaining)
		dim := styles.DimGray
		return styles.RenderListRow([]styles.RowPart{
			{Text: styles.Truncate(text, keep), Foreground: &dim},
		}, selected, width)
	}

	return renderEpisodeRow(service.EpisodeRow{Episode: ep, Favourite: row.Favourite}, selected, width)
}

func (m Model) renderStatusBar() string {
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.ToastErrorStyle.Render(m.StatusMsg)
		}
		return styles.ToastStyle.Render(m.StatusMsg)
	}
	m.help.ShowAll = false
	return m.help.View(Keys)
}

// episodeTitle is the short form used in status messages
func episodeTitle(ep domain.Episode) string {
	return fmt.Sprintf("%s · %s", ep.Code, ep.Name)
}
