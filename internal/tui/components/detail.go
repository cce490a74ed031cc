package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/search"
	"github.com/mmcdole/wubba/internal/service"
	"github.com/mmcdole/wubba/internal/tui/styles"
)

// Detail displays one episode with its characters, revealed a page at a time
type Detail struct {
	episode   domain.Episode
	favourite bool
	pager     *service.CharacterPager
	pageSize  int
	filter    string
	selected  int
	loading   bool
	err       error
	width     int
	height    int
}

// NewDetail creates a detail view revealing pageSize characters per step
func NewDetail(pageSize int) Detail {
	return Detail{pageSize: pageSize}
}

// SetEpisode shows ep and marks its characters as loading
func (d *Detail) SetEpisode(ep domain.Episode, favourite bool) {
	d.episode = ep
	d.favourite = favourite
	d.pager = nil
	d.filter = ""
	d.selected = 0
	d.err = nil
	d.loading = len(ep.Characters) > 0
}

// EpisodeID returns the displayed episode
func (d Detail) EpisodeID() int {
	return d.episode.ID
}

// SetFavourite updates the favourite indicator
func (d *Detail) SetFavourite(favourite bool) {
	d.favourite = favourite
}

// SetCharacters finishes loading with the resolved characters or an error
func (d *Detail) SetCharacters(chars []domain.Character, err error) {
	d.loading = false
	d.err = err
	if err == nil {
		d.pager = service.NewCharacterPager(chars, d.pageSize)
	}
}

// SetFilter narrows the character list by fuzzy name match
func (d *Detail) SetFilter(query string) {
	d.filter = strings.TrimSpace(query)
	d.selected = 0
}

// MoveSelection moves the character highlight by delta, clamped to the
// characters currently shown
func (d *Detail) MoveSelection(delta int) {
	n := len(d.shown())
	if n == 0 {
		d.selected = 0
		return
	}
	d.selected = min(max(d.selected+delta, 0), n-1)
}

// SelectedCharacter returns the highlighted character, if any is shown
func (d Detail) SelectedCharacter() (domain.Character, bool) {
	shown := d.shown()
	if d.selected < 0 || d.selected >= len(shown) {
		return domain.Character{}, false
	}
	return shown[d.selected].Character, true
}

// shown returns the characters the list currently displays: every match
// while filtering, otherwise the revealed page.
func (d Detail) shown() []search.CharacterMatch {
	if d.pager == nil || d.loading || d.err != nil {
		return nil
	}
	if d.filter != "" {
		return search.FilterCharacters(d.pager.All(), d.filter)
	}
	visible := d.pager.Visible()
	out := make([]search.CharacterMatch, len(visible))
	for i, c := range visible {
		out[i] = search.CharacterMatch{Character: c}
	}
	return out
}

// LoadMore reveals the next page of characters
func (d *Detail) LoadMore() bool {
	return d.pager != nil && d.pager.LoadMore()
}

// SetSize updates the component dimensions
func (d *Detail) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the component
func (d Detail) View(spinnerFrame int) string {
	contentWidth := max(d.width-6, 20)
	ep := d.episode

	star := styles.NotFavouriteStar + styles.DimStyle.Render(" not a favourite")
	if d.favourite {
		star = styles.FavouriteStar + styles.SubtitleStyle.Render(" favourite")
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(ep.Name, contentWidth)))
	b.WriteString("\n")
	b.WriteString(styles.AccentStyle.Render(ep.CodeLabel()))
	b.WriteString("\n\n")
	b.WriteString(renderField("Air date", ep.AirDate))
	b.WriteString(renderField("Created", ep.CreatedLabel()))
	b.WriteString(star)
	b.WriteString("\n\n")

	b.WriteString(styles.AccentStyle.Render(fmt.Sprintf("Characters (%d)", len(ep.CharacterIDs()))))
	b.WriteString("\n")

	switch {
	case d.loading:
		frame := spinnerFrames[spinnerFrame%len(spinnerFrames)]
		b.WriteString(styles.DimStyle.Render(frame + " Loading characters..."))
	case d.err != nil:
		b.WriteString(styles.ErrorStyle.Render("Failed to load characters"))
	case d.pager == nil || d.pager.Total() == 0:
		b.WriteString(styles.DimStyle.Render("No characters"))
	default:
		shown := d.shown()
		if len(shown) == 0 {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("No characters match %q", d.filter)))
		}
		for i, m := range shown {
			marker := "  "
			if i == d.selected {
				marker = styles.AccentStyle.Render("▸ ")
			}
			b.WriteString(marker)
			b.WriteString(renderCharacterMatch(m, contentWidth))
			b.WriteString("\n")
		}
		if d.filter == "" && d.pager.HasMore() {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("m: load more (%d remaining)", d.pager.Remaining())))
		}
	}

	return styles.DetailStyle.Width(d.width).Render(b.String())
}

func renderField(label, value string) string {
	if value == "" {
		value = "unknown"
	}
	return styles.DimStyle.Render(label+": ") + styles.SubtitleStyle.Render(value) + "\n"
}

// renderCharacterMatch renders a character row with matched name
// characters highlighted
func renderCharacterMatch(m search.CharacterMatch, width int) string {
	matched := make(map[int]bool, len(m.MatchedIndexes))
	for _, i := range m.MatchedIndexes {
		matched[i] = true
	}

	var name strings.Builder
	if len(matched) == 0 {
		name.WriteString(styles.TitleStyle.Render(styles.Truncate(m.Character.Name, width/2)))
	} else {
		for i, r := range m.Character.Name {
			if matched[i] {
				name.WriteString(styles.MatchHighlightStyle.Render(string(r)))
			} else {
				name.WriteString(styles.TitleStyle.Render(string(r)))
			}
		}
	}

	c := m.Character
	status := lipgloss.NewStyle().Foreground(statusColor(c.Status)).Render("●")
	meta := fmt.Sprintf("%s · %s", c.Status, c.Species)
	if c.Origin.Name != "" {
		meta += " · " + c.Origin.Name
	}
	meta = styles.Truncate(meta, width/2)
	return fmt.Sprintf("%s %s  %s", status, name.String(), styles.DimStyle.Render(meta))
}

func statusColor(status string) lipgloss.Color {
	switch strings.ToLower(status) {
	case "alive":
		return styles.PortalGreen
	case "dead":
		return styles.Red
	default:
		return styles.DimGray
	}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerFrame returns the spinner glyph for frame
func SpinnerFrame(frame int) string {
	return spinnerFrames[frame%len(spinnerFrames)]
}
