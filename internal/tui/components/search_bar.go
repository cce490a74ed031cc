package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/wubba/internal/tui/styles"
)

// SearchBar is the single-line episode name filter shared by both tabs
type SearchBar struct {
	input textinput.Model
}

// NewSearchBar creates a new search bar
func NewSearchBar() SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search episodes..."
	ti.CharLimit = 80
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SearchBar{input: ti}
}

// Focus starts accepting keystrokes
func (s *SearchBar) Focus() tea.Cmd {
	return s.input.Focus()
}

// Blur stops accepting keystrokes, keeping the query
func (s *SearchBar) Blur() {
	s.input.Blur()
}

// Clear empties and blurs the search bar
func (s *SearchBar) Clear() {
	s.input.SetValue("")
	s.input.Blur()
}

// Focused reports whether the search bar is capturing keys
func (s SearchBar) Focused() bool {
	return s.input.Focused()
}

// Value returns the current query
func (s SearchBar) Value() string {
	return s.input.Value()
}

// SetWidth sets the visible input width
func (s *SearchBar) SetWidth(width int) {
	s.input.Width = max(width-4, 10)
}

// Update handles input events, returns (bar, cmd, changed)
func (s SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd, bool) {
	if !s.input.Focused() {
		return s, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			s.input.Blur()
			return s, nil, false
		case "esc":
			changed := s.input.Value() != ""
			s.Clear()
			return s, nil, changed
		}
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd, s.input.Value() != before
}

// View renders the search bar; empty when unfocused with no query
func (s SearchBar) View() string {
	if !s.input.Focused() && s.input.Value() == "" {
		return ""
	}
	return s.input.View()
}
