// Package tui provides a Bubble Tea terminal user interface for cat-gallery.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/cat-gallery/internal/config"
	"github.com/handiism/cat-gallery/internal/gallery"
	"github.com/handiism/cat-gallery/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	fallbackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6C757D"))

	selectedCellStyle = cellStyle.
				BorderForeground(lipgloss.Color("#FF6B6B"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4ECDC4")).
			Padding(0, 2)

	busyButtonStyle = buttonStyle.
			Foreground(lipgloss.Color("#ADB5BD")).
			Background(lipgloss.Color("#495057"))

	refreshButtonStyle = buttonStyle.
				Background(lipgloss.Color("#E74C3C"))
)

const (
	headerHeight   = 3
	footerHeight   = 6
	maxLogs        = 3
	scrollDebounce = 100 * time.Millisecond
)

// State represents the current UI state.
type State int

const (
	StateGallery State = iota
	StateLightbox
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   gallery.ProgressLevel
}

// Deps holds what the TUI needs from the rest of the application.
type Deps struct {
	Settings  *config.Settings
	Searcher  gallery.Searcher
	Preloader gallery.Preloader
	Logger    *slog.Logger
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	settings *config.Settings

	loader  *gallery.Loader
	board   *gallery.Board
	changes <-chan struct{}
	events  <-chan gallery.ProgressEvent

	ctx    context.Context
	cancel context.CancelFunc

	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model

	snap       gallery.Snapshot
	cell       cellSize
	columns    int
	selected   int
	refreshing bool
	logs       []LogEntry
	scrollSeq  int

	width  int
	height int
	ready  bool
}

// NewModel creates a new TUI model with its own board and loader.
func NewModel(deps Deps) Model {
	settings := deps.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}

	changes := make(chan struct{}, 1)
	events := make(chan gallery.ProgressEvent, 32)

	board := gallery.NewBoard(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	loader := gallery.NewLoader(deps.Searcher, deps.Preloader, board, gallery.Options{
		BatchSize:          settings.BatchSize,
		MaxConcurrentLoads: settings.MaxConcurrentLoads,
		FallbackBaseURL:    settings.FallbackBaseURL,
		Logger:             deps.Logger,
		OnProgress: func(event gallery.ProgressEvent) {
			select {
			case events <- event:
			default:
			}
		},
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateGallery,
		settings: settings,
		loader:   loader,
		board:    board,
		changes:  changes,
		events:   events,
		ctx:      ctx,
		cancel:   cancel,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		viewport: viewport.New(80, 20),
		cell:     newCellSize(settings.ThumbnailWidth, settings.ThumbnailHeight),
		columns:  1,
	}
}

// Init loads the first batch and starts listening for board changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForChange(m.changes),
		waitForEvent(m.events),
		m.loadMore(),
	)
}

// Message types
type (
	// boardChangedMsg is sent whenever the board is mutated.
	boardChangedMsg struct{}

	// progressMsg carries a loader progress event.
	progressMsg struct {
		Event gallery.ProgressEvent
	}

	// batchDoneMsg is sent when a RequestBatch or Reset call returns.
	batchDoneMsg struct {
		Batch gallery.Batch
		Ran   bool
		Reset bool
	}

	// scrollCheckMsg fires after the scroll debounce interval.
	scrollCheckMsg struct {
		Seq int
	}
)

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return boardChangedMsg{}
	}
}

func waitForEvent(ch <-chan gallery.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg{Event: event}
	}
}

// loadMore requests one default-sized batch in the background.
func (m Model) loadMore() tea.Cmd {
	loader, ctx := m.loader, m.ctx
	return func() tea.Msg {
		batch, ok := loader.RequestBatch(ctx, 0)
		return batchDoneMsg{Batch: batch, Ran: ok}
	}
}

// refresh clears the gallery and loads a fresh batch in the background.
func (m Model) refresh() tea.Cmd {
	loader, ctx := m.loader, m.ctx
	return func() tea.Msg {
		batch, ok := loader.Reset(ctx)
		return batchDoneMsg{Batch: batch, Ran: ok, Reset: true}
	}
}

// scheduleScrollCheck debounces scroll-triggered loading.
func (m *Model) scheduleScrollCheck() tea.Cmd {
	if !m.settings.InfiniteScroll {
		return nil
	}
	m.scrollSeq++
	seq := m.scrollSeq
	return tea.Tick(scrollDebounce, func(time.Time) tea.Msg {
		return scrollCheckMsg{Seq: seq}
	})
}

// nearBottom reports whether the viewport is within the scroll threshold of
// the end of the grid.
func (m Model) nearBottom() bool {
	return m.viewport.YOffset+m.viewport.Height >= m.viewport.TotalLineCount()-m.settings.ScrollThreshold
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.columns = columnsFor(msg.Width, m.cell)
		m.ready = true
		m.syncContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd, m.scheduleScrollCheck())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case boardChangedMsg:
		m.snap = m.board.Snapshot()
		if m.selected >= len(m.snap.Entries) {
			m.selected = max(len(m.snap.Entries)-1, 0)
		}
		if len(m.snap.Entries) == 0 && m.state == StateLightbox {
			m.state = StateGallery
		}
		m.syncContent()
		cmds = append(cmds, waitForChange(m.changes))

	case progressMsg:
		// Per-image failures go to the log file only
		if msg.Event.Level != gallery.LevelVerbose {
			m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
			if len(m.logs) > maxLogs {
				m.logs = m.logs[len(m.logs)-maxLogs:]
			}
		}
		cmds = append(cmds, waitForEvent(m.events))

	case batchDoneMsg:
		if msg.Reset {
			m.refreshing = false
		}

	case scrollCheckMsg:
		if msg.Seq == m.scrollSeq && m.nearBottom() && m.loader.Count() > 0 && !m.loader.IsLoading() {
			cmds = append(cmds, m.loadMore())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		return m, tea.Quit
	}

	if m.state == StateLightbox {
		if key.Matches(msg, m.keys.Close) || key.Matches(msg, m.keys.Open) {
			m.state = StateGallery
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.LoadMore):
		if m.loader.IsLoading() {
			return m, nil
		}
		return m, m.loadMore()

	case key.Matches(msg, m.keys.Refresh):
		if m.loader.IsLoading() {
			return m, nil
		}
		m.refreshing = true
		m.selected = 0
		m.viewport.GotoTop()
		return m, m.refresh()

	case key.Matches(msg, m.keys.Open):
		if m.selected < len(m.snap.Entries) {
			m.state = StateLightbox
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Left):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-m.columns)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(m.columns)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height)
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
	default:
		return m, nil
	}

	return m, m.scheduleScrollCheck()
}

func (m *Model) moveSelection(delta int) {
	n := len(m.snap.Entries)
	if n == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), n-1)
	m.syncContent()

	// Keep the selected row on screen
	rh := rowHeight(m.cell)
	top := (m.selected / max(m.columns, 1)) * rh
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if top+rh > m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(top + rh - m.viewport.Height)
	}
}

// syncContent re-renders the grid into the viewport.
func (m *Model) syncContent() {
	offset := m.viewport.YOffset
	m.viewport.SetContent(renderGrid(m.snap.Entries, m.cell, m.columns, m.selected))
	m.viewport.SetYOffset(offset)
}

// View renders the UI.
func (m Model) View() string {
	if !m.ready {
		return m.spinner.View() + " " + subtitleStyle.Render("Initializing cat gallery...")
	}

	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🐱 Cat Gallery"))
	b.WriteString("  ")
	b.WriteString(m.renderRefreshButton())
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Cats displayed: %d", m.snap.Count)))
	b.WriteString("\n\n")

	if m.state == StateLightbox {
		b.WriteString(m.viewLightbox())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	// Footer
	b.WriteString(m.renderLoadMoreButton())
	b.WriteString("\n")
	b.WriteString(m.renderLogs())
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) renderRefreshButton() string {
	if m.refreshing {
		return busyButtonStyle.Render("Refreshing...")
	}
	return refreshButtonStyle.Render("🔄 Refresh Gallery")
}

func (m Model) renderLoadMoreButton() string {
	if m.snap.Busy {
		return busyButtonStyle.Render("Loading...") + " " + m.spinner.View()
	}
	return buttonStyle.Render("View More Cats 🐱")
}

func (m Model) viewLightbox() string {
	if m.selected >= len(m.snap.Entries) {
		return ""
	}
	entry := m.snap.Entries[m.selected]

	var body string
	if entry.Status == model.StatusLoaded && entry.Thumbnail != nil {
		body = renderImage(entry.Thumbnail, m.cell)
	} else {
		body = fallbackStyle.Render("=^.^=")
	}

	details := fmt.Sprintf("%s\n%s\n%s",
		infoStyle.Render(entry.Alt),
		dimStyle.Render(entry.SourceURL),
		dimStyle.Render("esc: close"),
	)
	box := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, body, "", details))

	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case gallery.LevelError:
			style = errorStyle
			prefix = "✗"
		case gallery.LevelWarning:
			style = warningStyle
			prefix = "!"
		case gallery.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case gallery.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

// Run starts the TUI application.
func Run(deps Deps) error {
	m := NewModel(deps)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
