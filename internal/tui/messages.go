package tui

import (
	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/favourites"
	"github.com/mmcdole/wubba/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg carries a catalog fetch result back to the event loop
type PageLoadedMsg struct {
	Result service.PageResult
}

// ConnectivityMsg carries the pre-refresh connectivity check result
type ConnectivityMsg struct {
	Online bool
}

// CharactersLoadedMsg signals that an episode's characters have been resolved
type CharactersLoadedMsg struct {
	EpisodeID  int
	Characters []domain.Character
	Err        error
}

// ExitTickMsg advances one favourites exit transition
type ExitTickMsg struct {
	EpisodeID int
	Token     favourites.Token
	Frame     int
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message if it is still the one
// identified by Seq
type ClearStatusMsg struct {
	Seq int
}

// OpenedMsg reports that a portrait URL was handed to the desktop
type OpenedMsg struct {
	Name string
}
