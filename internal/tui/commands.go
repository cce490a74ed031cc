package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/favourites"
	"github.com/mmcdole/wubba/internal/service"
)

// Command factories for async operations. Each runs only the I/O half of
// an operation; state changes happen when the resulting message is handled.

const (
	pageTimeout         = 60 * time.Second
	connectivityTimeout = 10 * time.Second
	charactersTimeout   = 30 * time.Second
)

// FetchPageCmd performs the network call for a reserved page request
func FetchPageCmd(svc *service.CatalogService, req service.PageRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		return PageLoadedMsg{Result: svc.Fetch(ctx, req)}
	}
}

// CheckConnectivityCmd checks the network before a refresh
func CheckConnectivityCmd(svc *service.CatalogService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectivityTimeout)
		defer cancel()

		return ConnectivityMsg{Online: svc.CheckConnectivity(ctx)}
	}
}

// LoadCharactersCmd resolves the characters appearing in an episode
func LoadCharactersCmd(svc *service.CharacterService, ep domain.Episode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), charactersTimeout)
		defer cancel()

		chars, err := svc.ForEpisode(ctx, ep)
		return CharactersLoadedMsg{EpisodeID: ep.ID, Characters: chars, Err: err}
	}
}

// ExitTickCmd schedules the next frame of an exit transition
func ExitTickCmd(id int, token favourites.Token, frame int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ExitTickMsg{EpisodeID: id, Token: token, Frame: frame}
	})
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// OpenURLCmd opens a character portrait outside the terminal
func OpenURLCmd(opener URLOpener, ch domain.Character) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(ch.Image); err != nil {
			return ErrMsg{Err: err, Context: "Could not open portrait of " + ch.Name}
		}
		return OpenedMsg{Name: ch.Name}
	}
}
