package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/review"
	"github.com/desertthunder/refinery/internal/services"
	"github.com/desertthunder/refinery/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	GroupReviewView
	YearReviewView
	ConfirmView
	SubmitView
	ResultView
)

// Model represents the TUI application state: pick a playlist, walk its
// duplicate groups, walk its flagged years, confirm, submit.
type Model struct {
	ctx     context.Context
	view    ViewState
	service services.Service
	cutoff  int

	width  int
	height int

	playlistList list.Model
	playlists    []models.Playlist
	snapshot     *models.Snapshot

	groups   []review.Group
	groupIdx int
	flagged  []models.Track
	cursor   int
	// marked holds playlist positions selected for removal.
	marked map[int]bool

	removed int
	err     error
	help    help.Model
	keys    keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	toggle key.Binding
	enter  key.Binding
	back   key.Binding
	yes    key.Binding
	no     key.Binding
	reload key.Binding
	quit   key.Binding
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
		toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "mark for removal"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "review another"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle},
		{k.enter, k.back},
		{k.yes, k.no, k.quit},
	}
}

// playlistItem wraps [models.Playlist] to implement list.Item.
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d tracks • %s", i.playlist.TrackCount, shared.VisibilityString(i.playlist.Public))
}

type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

type snapshotFetchedMsg struct {
	snapshot *models.Snapshot
	err      error
}

type removalsSubmittedMsg struct {
	removed int
	err     error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, service services.Service, cutoff int) *Model {
	if cutoff <= 0 {
		cutoff = review.DefaultCutoffYear
	}
	return &Model{
		ctx:     ctx,
		view:    PlaylistListView,
		service: service,
		cutoff:  cutoff,
		marked:  make(map[int]bool),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching playlists from Spotify.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case GroupReviewView:
			return m.handleGroupReviewKeys(msg)
		case YearReviewView:
			return m.handleYearReviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Spotify Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case snapshotFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.startReview(msg.snapshot)
		return m, nil

	case removalsSubmittedMsg:
		m.removed = msg.removed
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	if m.view == PlaylistListView {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// startReview seeds the review state from a fresh snapshot, skipping the
// duplicate pass when there is nothing to group.
func (m *Model) startReview(snapshot *models.Snapshot) {
	m.snapshot = snapshot
	m.groups = review.GroupDuplicates(snapshot.Tracks)
	m.flagged = review.FilterByYear(snapshot.Tracks, m.cutoff)
	m.groupIdx = 0
	m.cursor = 0
	m.marked = make(map[int]bool)
	m.err = nil

	if len(m.groups) > 0 {
		m.view = GroupReviewView
	} else if len(m.flagged) > 0 {
		m.view = YearReviewView
	} else {
		m.removed = 0
		m.view = ResultView
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView && m.view != PlaylistListView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case GroupReviewView:
		return m.renderGroupReview()
	case YearReviewView:
		return m.renderYearReview()
	case ConfirmView:
		return m.renderConfirm()
	case SubmitView:
		return styles.title.Render("Removing tracks...")
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				return m, m.fetchSnapshot(pl.playlist.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) currentGroup() review.Group {
	return m.groups[m.groupIdx]
}

func (m *Model) handleGroupReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	group := m.currentGroup()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(group.Tracks)-1 {
			m.cursor++
		}
	case " ", "x":
		position := group.Tracks[m.cursor].Position
		m.marked[position] = !m.marked[position]
	case "esc":
		if m.groupIdx > 0 {
			m.groupIdx--
			m.cursor = 0
		}
	case "enter":
		if m.groupIdx < len(m.groups)-1 {
			m.groupIdx++
			m.cursor = 0
		} else if len(m.flagged) > 0 {
			m.cursor = 0
			m.view = YearReviewView
		} else {
			m.view = ConfirmView
		}
	}
	return m, nil
}

func (m *Model) handleYearReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.flagged)-1 {
			m.cursor++
		}
	case " ", "x":
		position := m.flagged[m.cursor].Position
		m.marked[position] = !m.marked[position]
	case "esc":
		if len(m.groups) > 0 {
			m.cursor = 0
			m.view = GroupReviewView
		}
	case "enter":
		m.view = ConfirmView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		// Back out to the last review pass rather than deleting anything.
		m.cursor = 0
		if len(m.flagged) > 0 {
			m.view = YearReviewView
		} else if len(m.groups) > 0 {
			m.view = GroupReviewView
		} else {
			m.view = PlaylistListView
		}
	case "y":
		if len(m.marked) == 0 {
			m.removed = 0
			m.view = ResultView
			return m, nil
		}
		m.view = SubmitView
		return m, m.submitRemovals()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.snapshot = nil
		m.groups = nil
		m.flagged = nil
		m.marked = make(map[int]bool)
		m.removed = 0
		m.err = nil
		return m, m.fetchPlaylists()
	}
	return m, nil
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.service.GetPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchSnapshot(playlistID string) tea.Cmd {
	return func() tea.Msg {
		snapshot, err := m.service.GetPlaylistSnapshot(m.ctx, playlistID)
		return snapshotFetchedMsg{snapshot: snapshot, err: err}
	}
}

func (m *Model) submitRemovals() tea.Cmd {
	set := review.NewRemovalSet()
	for _, track := range m.snapshot.Tracks {
		if m.marked[track.Position] {
			set.Add(track)
		}
	}

	playlistID := m.snapshot.Playlist.ID
	return func() tea.Msg {
		if set.Empty() {
			return removalsSubmittedMsg{removed: 0}
		}
		if err := m.service.RemoveTracks(m.ctx, playlistID, set.Items()); err != nil {
			return removalsSubmittedMsg{err: err}
		}
		return removalsSubmittedMsg{removed: set.Len()}
	}
}

func (m *Model) renderTrackLine(track models.Track, selected bool) string {
	line := fmt.Sprintf("%s - %s", track.PrimaryArtist(), track.Title)
	if track.Album != "" {
		line = fmt.Sprintf("%s (%s, %d)", line, track.Album, track.AlbumYear)
	}
	line = fmt.Sprintf("%s [%s]", line, shared.FormatDuration(track.DurationMS))

	prefix := "  "
	if m.marked[track.Position] {
		line = styles.marked.Render(line)
		prefix = styles.err.Render("✗ ")
	}
	if selected {
		return styles.cursor.Render("> ") + line
	}
	return prefix + line
}

func (m *Model) renderPlaylistList() string {
	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)), m.playlistList.View())
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderGroupReview() string {
	group := m.currentGroup()

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Possible duplicates (%d/%d)", m.groupIdx+1, len(m.groups))))
	b.WriteString("\n")
	b.WriteString(styles.help.Render(fmt.Sprintf("matched on %q by %q", group.Key.Title, group.Key.Artist)))
	b.WriteString("\n\n")

	for i, track := range group.Tracks {
		b.WriteString(m.renderTrackLine(track, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.enter, m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderYearReview() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Tracks released after %d", m.cutoff)))
	b.WriteString("\n\n")

	for i, track := range m.flagged {
		b.WriteString(m.renderTrackLine(track, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.enter, m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderConfirm() string {
	count := 0
	for _, marked := range m.marked {
		if marked {
			count++
		}
	}

	title := styles.title.Render(fmt.Sprintf("Remove %d track(s) from '%s'?", count, m.snapshot.Playlist.Name))
	warning := styles.warn.Render("This permanently removes the marked occurrences from the playlist.")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n\n%s", title, warning, helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Removal failed: %v\n\nPress r to start over, q to quit", m.err))
	}

	var title string
	if m.removed == 0 {
		title = styles.ok.Render("✓ Nothing removed, playlist untouched")
	} else {
		title = styles.ok.Render(fmt.Sprintf("✓ Removed %d track(s)", m.removed))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}
