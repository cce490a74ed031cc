package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/tui/styles"
)

// CharacterCard shows one character's profile
type CharacterCard struct {
	character domain.Character
	width     int
}

// SetCharacter replaces the displayed character
func (c *CharacterCard) SetCharacter(ch domain.Character) {
	c.character = ch
}

// Character returns the displayed character
func (c CharacterCard) Character() domain.Character {
	return c.character
}

// SetWidth updates the card width
func (c *CharacterCard) SetWidth(width int) {
	c.width = width
}

// View renders the card
func (c CharacterCard) View() string {
	ch := c.character
	contentWidth := max(c.width-6, 20)

	badge := lipgloss.NewStyle().
		Foreground(styles.SlateDark).
		Background(statusColor(ch.Status)).
		Padding(0, 1).
		Render(StatusLabel(ch.Status))

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(ch.Name, contentWidth)))
	b.WriteString("  ")
	b.WriteString(badge)
	b.WriteString("\n\n")

	b.WriteString(renderCardField("SPECIES", ch.Species))
	b.WriteString(renderCardField("GENDER", ch.Gender))
	if ch.Origin.Name != "" {
		b.WriteString(renderCardField("ORIGIN", ch.Origin.Name))
	}
	if ch.Location.Name != "" {
		b.WriteString(renderCardField("LOCATION", ch.Location.Name))
	}
	if strings.TrimSpace(ch.Type) != "" {
		b.WriteString(renderCardField("TYPE", ch.Type))
	}
	b.WriteString(renderCardField("EPISODES", AppearanceLabel(len(ch.Episodes))))

	if ch.Image != "" {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("o: open portrait"))
	}

	return styles.DetailStyle.Width(c.width).Render(b.String())
}

func renderCardField(label, value string) string {
	if value == "" {
		value = "unknown"
	}
	return styles.AccentStyle.Render(label) + "\n" + styles.SubtitleStyle.Render(value) + "\n\n"
}

// StatusLabel capitalises a status such as "alive" or "unknown"
func StatusLabel(status string) string {
	if status == "" {
		return "Unknown"
	}
	lower := strings.ToLower(status)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// AppearanceLabel describes how many episodes a character appears in
func AppearanceLabel(n int) string {
	switch {
	case n <= 0:
		return "No episodes data available"
	case n == 1:
		return "Appears in 1 episode"
	default:
		return fmt.Sprintf("Appears in %d episodes", n)
	}
}
