package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/aircare/internal/model"
	"github.com/manav03panchal/aircare/internal/notify"
	"github.com/manav03panchal/aircare/internal/scheduler"
	"github.com/manav03panchal/aircare/internal/store"
)

// tickMsg is sent once a second to refresh relative times.
type tickMsg time.Time

// changeMsg is sent when the store changes.
type changeMsg store.Change

// notifyMsg carries a raised notification into the view.
type notifyMsg struct {
	n *model.Notification
}

// ackMsg is sent when a notification was acknowledged; the view opens the
// event.
type ackMsg struct {
	eventID string
}

// detailMsg carries a fetched event detail.
type detailMsg struct {
	detail *model.EventDetail
	err    error
}

// errMsg is sent when a background command fails.
type errMsg struct {
	err error
}

// WatchModel is the bubbletea model for the watch view.
type WatchModel struct {
	store *store.Store
	ack   func(eventID string) error
	now   func() time.Time

	entries []model.CalendarEntry
	cursor  int
	banners []*model.Notification
	detail  *model.EventDetail
	loading string

	width      int
	height     int
	err        error
	message    string
	messageExp time.Time
}

// WatchConfig configures the watch view.
type WatchConfig struct {
	Store *store.Store
	// NewNotifier builds the event notifier around the view's sink.
	NewNotifier     func(sink notify.Notifier) *scheduler.EventNotifier
	CheckInterval   time.Duration
	RefreshInterval time.Duration
	Now             func() time.Time
}

// NewWatchModel creates the model. Acknowledgment is wired by Run.
func NewWatchModel(cfg WatchConfig) *WatchModel {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	m := &WatchModel{store: cfg.Store, now: now}
	m.entries = m.store.ListUpcoming()
	return m
}

// Init initializes the model.
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.refreshCmd())
}

// Update handles messages and updates the model.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.messageExp.IsZero() && m.now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		return m, tickCmd()

	case changeMsg:
		m.reload()
		return m, nil

	case notifyMsg:
		m.banners = append(m.banners, msg.n)
		return m, nil

	case ackMsg:
		m.dropBanner(msg.eventID)
		return m, m.openCmd(msg.eventID)

	case detailMsg:
		m.loading = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.detail = msg.detail
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *WatchModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		if len(m.banners) > 0 {
			return m, m.acknowledgeCmd(m.banners[0].EventID)
		}
		if m.detail == nil && m.cursor < len(m.entries) {
			return m, m.openCmd(m.entries[m.cursor].ID)
		}
		return m, nil

	case "x":
		if len(m.banners) > 0 {
			m.banners = m.banners[1:]
		}
		return m, nil

	case "esc", "backspace":
		m.detail = nil
		m.err = nil
		return m, nil

	case "r":
		m.setMessage("Refreshing…", time.Second)
		return m, m.refreshCmd()
	}

	return m, nil
}

// View renders the watch view.
func (m *WatchModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{m.renderHeader()}

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}
	if len(m.banners) > 0 {
		sections = append(sections, BannerView(m.banners[0], m.width))
	}

	switch {
	case m.loading != "":
		sections = append(sections, StyleMuted.Render("Loading "+m.loading+"…"))
	case m.detail != nil:
		sections = append(sections, DetailPane{Detail: m.detail, Units: m.store.Units(), Width: m.width}.View())
		sections = append(sections, HelpBar(helpKey{"esc", "back"}, helpKey{"r", "refresh"}, helpKey{"q", "quit"}))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	default:
		sections = append(sections, UpcomingPane{Entries: m.entries, Cursor: m.cursor, Width: m.width, Now: m.now()}.View())
	}

	sections = append(sections, HelpBar(
		helpKey{"↑/↓", "move"},
		helpKey{"enter", "open"},
		helpKey{"x", "dismiss"},
		helpKey{"r", "refresh"},
		helpKey{"q", "quit"},
	))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title and clock.
func (m *WatchModel) renderHeader() string {
	title := StyleTitle.Render("aircare")
	clock := StyleMuted.Render(m.now().Format("Mon Jan 2, 15:04:05"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", clock) + "\n"
}

// reload re-reads the upcoming list, keeping the cursor on the same event.
func (m *WatchModel) reload() {
	selected := ""
	if m.cursor < len(m.entries) {
		selected = m.entries[m.cursor].ID
	}

	m.entries = m.store.ListUpcoming()
	m.cursor = 0
	for i, e := range m.entries {
		if e.ID == selected {
			m.cursor = i
			break
		}
	}
}

func (m *WatchModel) dropBanner(eventID string) {
	kept := m.banners[:0]
	for _, b := range m.banners {
		if b.EventID != eventID {
			kept = append(kept, b)
		}
	}
	m.banners = kept
}

// setMessage sets a temporary message.
func (m *WatchModel) setMessage(msg string, d time.Duration) {
	m.message = msg
	m.messageExp = m.now().Add(d)
}

// openCmd fetches the detail pane for id.
func (m *WatchModel) openCmd(id string) tea.Cmd {
	m.loading = id
	s := m.store
	return func() tea.Msg {
		detail, err := s.GetDetailWithHistory(context.Background(), id)
		return detailMsg{detail: detail, err: err}
	}
}

// acknowledgeCmd records the acknowledgment off the update loop, since
// acknowledgment callbacks send messages back into the program.
func (m *WatchModel) acknowledgeCmd(id string) tea.Cmd {
	ack := m.ack
	if ack == nil {
		m.dropBanner(id)
		return m.openCmd(id)
	}
	return func() tea.Msg {
		if err := ack(id); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *WatchModel) refreshCmd() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.Refresh(context.Background()); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// tickCmd returns a command that sends a tick message.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// programSink delivers raised notifications to a running program.
type programSink struct {
	p *tea.Program
}

func (s programSink) Notify(_ context.Context, n *model.Notification) error {
	s.p.Send(notifyMsg{n: n})
	return nil
}

// Run starts the watch view and blocks until the user quits. The
// notification check and periodic refresh run on the scheduler while the
// view is open.
func Run(ctx context.Context, cfg WatchConfig) error {
	m := NewWatchModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	notifier := cfg.NewNotifier(programSink{p: p})
	notifier.OnAcknowledge(func(id string) { p.Send(ackMsg{eventID: id}) })
	m.ack = notifier.Acknowledge

	unsubscribe := cfg.Store.Subscribe(func(c store.Change) { p.Send(changeMsg(c)) })
	defer unsubscribe()

	sched, err := scheduler.StartWatch(ctx, scheduler.WatchOptions{
		Notifier:        notifier,
		Refresh:         cfg.Store.Refresh,
		CheckInterval:   cfg.CheckInterval,
		RefreshInterval: cfg.RefreshInterval,
	})
	if err != nil {
		return err
	}
	defer sched.Stop()

	_, err = p.Run()
	notifier.Wait()
	return err
}
