package tui

import (
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/wubba/internal/domain"
	"github.com/mmcdole/wubba/internal/service"
	"github.com/mmcdole/wubba/internal/tui/components"
)

// Screen is what occupies the main area
type Screen int

const (
	ScreenBrowse Screen = iota
	ScreenDetail
	ScreenCharacter
	ScreenHelp
)

const (
	spinnerInterval = 100 * time.Millisecond
	statusDuration  = 3 * time.Second

	// Rows from the bottom at which the next page is requested
	loadAheadMargin = 3

	// Vertical chrome: tab bar, header, search line, status line
	ChromeHeight = 4
)

// URLOpener hands a URL to a program outside the terminal
type URLOpener interface {
	Open(url string) error
}

// Options tunes presentation behaviour
type Options struct {
	ExitDuration      time.Duration // Length of the favourites exit transition
	ExitFrames        int
	CharactersPerPage int
	Opener            URLOpener // nil disables opening portraits
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	Screen Screen
	Tab    service.View
	Ready  bool

	// Services
	Catalog    *service.CatalogService
	Views      *service.Views
	Characters *service.CharacterService
	opener     URLOpener
	logger     *slog.Logger

	// UI Components
	Search          components.SearchBar
	CharacterSearch components.SearchBar
	Detail          components.Detail
	Card            components.CharacterCard
	help            help.Model
	cursors         map[service.View]*components.Cursor

	// Exit transitions: episode ID -> frames elapsed
	exiting    map[int]int
	exitFrames int
	exitStep   time.Duration

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	statusSeq    int
	SpinnerFrame int
}

// NewModel creates a new application model
func NewModel(
	catalog *service.CatalogService,
	views *service.Views,
	characters *service.CharacterService,
	opts Options,
	logger *slog.Logger,
) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ExitFrames <= 0 {
		opts.ExitFrames = 1
	}

	views.Activate(service.ViewEpisodes)

	return Model{
		Screen:          ScreenBrowse,
		Tab:             service.ViewEpisodes,
		Catalog:         catalog,
		Views:           views,
		Characters:      characters,
		opener:          opts.Opener,
		logger:          logger,
		Search:          components.NewSearchBar(),
		CharacterSearch: components.NewSearchBar(),
		Detail:          components.NewDetail(opts.CharactersPerPage),
		help:            help.New(),
		cursors: map[service.View]*components.Cursor{
			service.ViewEpisodes:   {},
			service.ViewFavourites: {},
		},
		exiting:    make(map[int]int),
		exitFrames: opts.ExitFrames,
		exitStep:   opts.ExitDuration / time.Duration(opts.ExitFrames),
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{TickCmd(spinnerInterval)}
	if req, ok := m.Catalog.BeginNextPage(); ok {
		cmds = append(cmds, FetchPageCmd(m.Catalog, req))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(spinnerInterval)

	case PageLoadedMsg:
		return m.handlePageLoaded(msg)

	case ConnectivityMsg:
		return m.handleConnectivity(msg)

	case CharactersLoadedMsg:
		if m.Screen == ScreenDetail && m.Detail.EpisodeID() == msg.EpisodeID {
			m.Detail.SetCharacters(msg.Characters, msg.Err)
		}
		if msg.Err != nil {
			return m.handleErr(ErrMsg{Err: msg.Err, Context: "Failed to load characters"})
		}
		return m, nil

	case ExitTickMsg:
		return m.handleExitTick(msg)

	case OpenedMsg:
		cmd := m.setStatus("Opened portrait of "+msg.Name, false)
		return m, cmd

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil

	case ErrMsg:
		return m.handleErr(msg)
	}

	return m, nil
}

// handleErr logs a failed command and shows its context in the status bar
func (m Model) handleErr(msg ErrMsg) (tea.Model, tea.Cmd) {
	m.logger.Error("command failed", "error", msg.Error())
	text := msg.Context
	if text == "" {
		text = msg.Err.Error()
	}
	cmd := m.setStatus(text, true)
	return m, cmd
}

func (m Model) handlePageLoaded(msg PageLoadedMsg) (tea.Model, tea.Cmd) {
	freshness, err := m.Catalog.ApplyPage(msg.Result)
	if errors.Is(err, domain.ErrStale) {
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case msg.Result.Request.Refresh:
		title, body := freshness.Notice()
		cmd = m.setStatus(title+": "+body, freshness == domain.FreshnessFailed)
		m.clampCursors()
	case errors.Is(err, domain.ErrOutOfOrderPage):
		cmd = m.setStatus("Episodes arrived out of order. Press r to refresh.", true)
	case err != nil:
		cmd = m.setStatus("Failed to load episodes. Press R to retry.", true)
	}

	return m, tea.Batch(cmd, m.loadAhead())
}

func (m Model) handleConnectivity(msg ConnectivityMsg) (tea.Model, tea.Cmd) {
	req, err := m.Catalog.BeginRefreshWith(msg.Online)
	if err != nil {
		title, body := domain.FreshnessRefused.Notice()
		cmd := m.setStatus(title+": "+body, true)
		return m, cmd
	}
	return m, FetchPageCmd(m.Catalog, req)
}

// handleExitTick advances an exit transition, completing the removal on
// the last frame. Transitions cancelled by a re-favourite stop ticking.
func (m Model) handleExitTick(msg ExitTickMsg) (tea.Model, tea.Cmd) {
	if !m.Views.ExitPending(msg.EpisodeID, msg.Token) {
		delete(m.exiting, msg.EpisodeID)
		return m, nil
	}

	if msg.Frame >= m.exitFrames {
		m.Views.CompleteRemoval(msg.EpisodeID, msg.Token)
		delete(m.exiting, msg.EpisodeID)
		m.clampCursors()
		return m, nil
	}

	m.exiting[msg.EpisodeID] = msg.Frame
	return m, ExitTickCmd(msg.EpisodeID, msg.Token, msg.Frame+1, m.exitStep)
}

// loadAhead requests the next page when the episodes cursor nears the end
// of what is loaded. Filtering hides rows, so an empty filtered list near
// the end also triggers a load.
func (m Model) loadAhead() tea.Cmd {
	if m.Tab != service.ViewEpisodes || m.Screen != ScreenBrowse {
		return nil
	}
	cursor := m.cursors[service.ViewEpisodes]
	if !cursor.NearEnd(len(m.Views.AllEpisodes()), loadAheadMargin) {
		return nil
	}
	return m.requestNextPage()
}

func (m Model) requestNextPage() tea.Cmd {
	req, ok := m.Catalog.BeginNextPage()
	if !ok {
		return nil
	}
	return FetchPageCmd(m.Catalog, req)
}

// setStatus shows a transient status line message
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.statusSeq, statusDuration)
}

func (m *Model) switchTab(tab service.View) {
	if tab == m.Tab {
		return
	}
	m.Tab = tab
	m.exiting = make(map[int]int)
	m.Views.Activate(tab)
	m.clampCursors()
}

func (m *Model) clampCursors() {
	m.cursors[service.ViewEpisodes].Clamp(len(m.Views.AllEpisodes()))
	m.cursors[service.ViewFavourites].Clamp(len(m.Views.Favourites()))
}

func (m *Model) updateLayout() {
	listHeight := m.Height - ChromeHeight
	for _, c := range m.cursors {
		c.SetVisible(listHeight)
	}
	m.Search.SetWidth(m.Width)
	m.CharacterSearch.SetWidth(m.Width)
	m.Detail.SetSize(m.Width, m.Height-ChromeHeight)
	m.Card.SetWidth(m.Width)
	m.help.Width = m.Width
}

// selectedEpisode returns the episode under the cursor of the active tab
func (m Model) selectedEpisode() (domain.Episode, bool) {
	idx := m.cursors[m.Tab].Index()
	if m.Tab == service.ViewFavourites {
		rows := m.Views.Favourites()
		if idx < len(rows) {
			return rows[idx].Episode, true
		}
		return domain.Episode{}, false
	}
	rows := m.Views.AllEpisodes()
	if idx < len(rows) {
		return rows[idx].Episode, true
	}
	return domain.Episode{}, false
}
