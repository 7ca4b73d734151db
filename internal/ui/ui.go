package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Hamster45105/tunify/internal/game"
	"github.com/Hamster45105/tunify/internal/services"
	"github.com/Hamster45105/tunify/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DeviceView ViewState = iota
	PlaylistView
	RoundView
	RevealView
	StatsView
)

const searchPageSize = 10

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	spotify services.Service
	engine  *game.Game
	sess    *game.Session
	conf    *shared.Config

	width  int
	height int

	deviceList list.Model
	deviceID   string

	linkInput textinput.Model
	playlist  *game.PlaylistSummary

	searchInput  textinput.Model
	resultList   list.Model
	focusResults bool
	playing      bool

	guessResult *game.GuessResult
	skipResult  *game.SkipResult

	err  error
	help help.Model
	keys keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	refresh key.Binding
	play    key.Binding
	skip    key.Binding
	focus   key.Binding
	next    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		play: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "play snippet"),
		),
		skip: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "skip song"),
		),
		focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle focus"),
		),
		next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next song"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// deviceItem wraps [services.Device] to implement list.Item.
type deviceItem struct {
	device services.Device
}

func (i deviceItem) FilterValue() string { return i.device.Name }
func (i deviceItem) Title() string       { return i.device.Name }
func (i deviceItem) Description() string {
	desc := i.device.Type
	if i.device.IsActive {
		desc = fmt.Sprintf("%s • active", desc)
	}
	return desc
}

// trackItem wraps [services.Track] to implement list.Item.
type trackItem struct {
	track services.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string { return i.track.Artist }

type devicesFetchedMsg struct {
	devices []services.Device
	err     error
}

type playlistLoadedMsg struct {
	playlist *game.PlaylistSummary
	err      error
}

type songPickedMsg struct {
	err error
}

type snippetDoneMsg struct {
	err error
}

type searchDoneMsg struct {
	tracks []services.Track
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, spotify services.Service, conf *shared.Config) *Model {
	link := textinput.New()
	link.Placeholder = "https://open.spotify.com/playlist/..."
	link.CharLimit = 256
	link.Width = 60

	search := textinput.New()
	search.Placeholder = "Search for the song..."
	search.CharLimit = 128
	search.Width = 60

	return &Model{
		ctx:         ctx,
		view:        DeviceView,
		spotify:     spotify,
		engine:      game.New(spotify),
		sess:        game.NewSession(shared.GenerateID()),
		conf:        conf,
		linkInput:   link,
		searchInput: search,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by fetching playback devices.
func (m *Model) Init() tea.Cmd {
	return m.fetchDevices()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.deviceList.Width() == 0 {
			m.deviceList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.resultList.Width() == 0 {
			m.resultList.SetSize(msg.Width-4, msg.Height-12)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			if m.view == StatsView {
				return m, tea.Quit
			}
			m.view = StatsView
			return m, nil
		}
		switch m.view {
		case DeviceView:
			return m.handleDeviceKeys(msg)
		case PlaylistView:
			return m.handlePlaylistKeys(msg)
		case RoundView:
			return m.handleRoundKeys(msg)
		case RevealView:
			return m.handleRevealKeys(msg)
		case StatsView:
			return m, tea.Quit
		}

	case devicesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = deviceItem{device: d}
		}
		m.deviceList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.deviceList.Title = "Playback Devices"
		m.deviceList.SetSize(m.width-4, m.height-8)
		return m, nil

	case playlistLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.playlist = msg.playlist
		return m, m.pickSong()

	case songPickedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistView
			return m, nil
		}
		m.err = nil
		m.view = RoundView
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.focusResults = false
		m.resultList = list.New(nil, list.NewDefaultDelegate(), m.width-4, m.height-12)
		m.resultList.Title = "Search Results"
		return m, m.playSnippet()

	case snippetDoneMsg:
		m.playing = false
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case searchDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(msg.tracks))
		for i, t := range msg.tracks {
			items[i] = trackItem{track: t}
		}
		m.resultList.SetItems(items)
		m.focusResults = len(items) > 0
		if m.focusResults {
			m.searchInput.Blur()
		}
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DeviceView:
		return m.renderDevices()
	case PlaylistView:
		return m.renderPlaylist()
	case RoundView:
		return m.renderRound()
	case RevealView:
		return m.renderReveal()
	case StatsView:
		return m.renderStats()
	default:
		return ""
	}
}

func (m *Model) handleDeviceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchDevices()
	case key.Matches(msg, m.keys.enter):
		if selected := m.deviceList.SelectedItem(); selected != nil {
			if d, ok := selected.(deviceItem); ok {
				m.deviceID = d.device.ID
				m.view = PlaylistView
				m.linkInput.Focus()
				return m, textinput.Blink
			}
		}
	}

	var cmd tea.Cmd
	m.deviceList, cmd = m.deviceList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.enter) {
		link := m.linkInput.Value()
		if link != "" {
			return m, m.loadPlaylist(link)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.linkInput, cmd = m.linkInput.Update(msg)
	return m, cmd
}

func (m *Model) handleRoundKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.play):
		if !m.playing {
			return m, m.playSnippet()
		}
		return m, nil

	case key.Matches(msg, m.keys.skip):
		skip, err := game.SkipRound(m.sess)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.skipResult = skip
		m.guessResult = nil
		m.view = RevealView
		return m, nil

	case key.Matches(msg, m.keys.focus):
		if m.focusResults {
			m.focusResults = false
			m.searchInput.Focus()
		} else if len(m.resultList.Items()) > 0 {
			m.focusResults = true
			m.searchInput.Blur()
		}
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if m.focusResults {
			return m.submitSelected()
		}
		query := m.searchInput.Value()
		if query != "" {
			return m, m.search(query)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusResults {
		m.resultList, cmd = m.resultList.Update(msg)
	} else {
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) submitSelected() (tea.Model, tea.Cmd) {
	selected := m.resultList.SelectedItem()
	if selected == nil {
		return m, nil
	}
	track, ok := selected.(trackItem)
	if !ok {
		return m, nil
	}

	result, err := game.SubmitGuess(m.sess, track.track.Name, track.track.Artist)
	if err != nil {
		m.err = err
		return m, nil
	}

	if result.Correct {
		game.EndRound(m.sess)
		m.guessResult = result
		m.skipResult = nil
		m.view = RevealView
		return m, nil
	}

	if m.sess.CurrentGuess > game.MaxGuesses {
		skip, err := game.SkipRound(m.sess)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.skipResult = skip
		m.guessResult = nil
		m.view = RevealView
		return m, nil
	}

	m.err = fmt.Errorf("wrong guess, %d left", result.GuessesLeft)
	m.focusResults = false
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.resultList.SetItems(nil)
	return m, nil
}

func (m *Model) handleRevealKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.next):
		m.err = nil
		return m, m.pickSong()
	}
	return m, nil
}

func (m *Model) fetchDevices() tea.Cmd {
	return func() tea.Msg {
		devices, err := m.spotify.Devices(m.ctx)
		return devicesFetchedMsg{devices: devices, err: err}
	}
}

func (m *Model) loadPlaylist(link string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.engine.LoadPlaylist(m.ctx, m.sess, link)
		return playlistLoadedMsg{playlist: playlist, err: err}
	}
}

func (m *Model) pickSong() tea.Cmd {
	return func() tea.Msg {
		return songPickedMsg{err: m.engine.PickRandomSong(m.ctx, m.sess)}
	}
}

// playSnippet starts playback on the chosen device, waits out the snippet
// window for the current guess, then pauses.
func (m *Model) playSnippet() tea.Cmd {
	m.playing = true
	duration := m.conf.Game.SnippetDuration(m.sess.CurrentGuess)

	return func() tea.Msg {
		if err := m.engine.PlayCurrent(m.ctx, m.sess, m.deviceID); err != nil {
			return snippetDoneMsg{err: err}
		}

		select {
		case <-m.ctx.Done():
			return snippetDoneMsg{err: m.ctx.Err()}
		case <-time.After(duration):
		}

		return snippetDoneMsg{err: m.spotify.Pause(m.ctx)}
	}
}

func (m *Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.spotify.Search(m.ctx, query, 0, searchPageSize)
		return searchDoneMsg{tracks: tracks, err: err}
	}
}

func (m *Model) renderDevices() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) +
			"\n\n" + styles.help.Render("press r to retry, ctrl+c to quit")
	}
	if len(m.deviceList.Items()) == 0 {
		return styles.title.Render("Playback Devices") +
			"\nNo devices found. Open Spotify on a device first.\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit})
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.deviceList.View(), helpView)
}

func (m *Model) renderPlaylist() string {
	title := styles.title.Render("Pick a Playlist")
	var errView string
	if m.err != nil {
		errView = "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, m.linkInput.View(), errView, helpView)
}

func (m *Model) renderRound() string {
	title := styles.title.Render(fmt.Sprintf("Guess %d/%d", m.sess.CurrentGuess, game.MaxGuesses))

	var playlistInfo string
	if m.playlist != nil {
		playlistInfo = styles.help.Render(fmt.Sprintf("%s (%d songs)", m.playlist.Name, m.playlist.SongCount))
	}

	var status string
	switch {
	case m.playing:
		status = styles.warn.Render(fmt.Sprintf("Playing %s snippet...", m.conf.Game.SnippetDuration(m.sess.CurrentGuess)))
	case m.err != nil:
		status = styles.err.Render(m.err.Error())
	}

	var results string
	if len(m.resultList.Items()) > 0 {
		results = "\n" + m.resultList.View()
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.play, m.keys.enter, m.keys.focus, m.keys.skip, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s\n%s%s\n\n%s", title, playlistInfo, m.searchInput.View(), status, results, helpView)
}

func (m *Model) renderReveal() string {
	var body string
	if m.guessResult != nil {
		title := styles.ok.Render("✓ Correct!")
		body = fmt.Sprintf("%s\n\n%s by %s\nGuessed in %d, earned %d points",
			title, m.guessResult.SongName, m.guessResult.Artist,
			m.guessResult.Guesses, m.guessResult.PointsEarned)
	} else if m.skipResult != nil {
		title := styles.warn.Render("Skipped")
		body = fmt.Sprintf("%s\n\nThe song was %s by %s", title, m.skipResult.SongName, m.skipResult.Artist)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) renderStats() string {
	stats := game.SessionStats(m.sess)
	title := styles.title.Render("Session Stats")
	body := fmt.Sprintf(
		"Games: %d\nWins: %d\nPoints: %d\nWin rate: %.1f%%\nPoints rate: %.1f%%",
		stats.Games, stats.Wins, stats.Points, stats.WinPercentage, stats.PointsPercentage,
	)
	return fmt.Sprintf("%s\n%s\n\n%s", title, body, styles.help.Render("press ctrl+c to exit"))
}
