// internal/tui/app.go
// Terminal client. The bubbletea loop is the single event loop that drives
// the engine; components are shared with the background poll and guard
// their own state.

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/imadgeboyega/gravelmatch/internal/discovery"
	"github.com/imadgeboyega/gravelmatch/internal/matches"
	"github.com/imadgeboyega/gravelmatch/internal/messaging"
	"github.com/imadgeboyega/gravelmatch/internal/notification"
	"github.com/imadgeboyega/gravelmatch/internal/session"
)

type screen int

const (
	screenLogin screen = iota
	screenDiscover
	screenFilters
	screenMatches
	screenChat
	screenNotifications
)

// Deps are the engine components the UI drives
type Deps struct {
	Session       *session.Session
	Filters       *discovery.FilterStore
	Queue         *discovery.CandidateQueue
	Engine        *discovery.SwipeEngine
	Matches       *matches.Service
	Notifications *notification.Coordinator
	Transcript    *messaging.Transcript
	Log           zerolog.Logger
}

type Model struct {
	ctx  context.Context
	deps Deps

	// sessionCtx ends with the logged-in session; waits started for it stop there
	sessionCtx context.Context
	endSession context.CancelFunc

	screen    screen
	width     int
	now       time.Time
	status    string
	lastErr   error
	loading   bool
	pending      int // swipes awaiting the server
	celebrations []*discovery.MatchEvent

	login   loginForm
	filters filterForm

	matchList     []matches.Match
	matchSelected int
	chatReturn    screen

	notifSelected int
	toast         string
}

var _ tea.Model = (*Model)(nil)

func New(ctx context.Context, deps Deps) *Model {
	m := &Model{
		ctx:        ctx,
		deps:       deps,
		sessionCtx: ctx,
		endSession: func() {},
		screen:     screenLogin,
		now:        time.Now(),
		login:      newLoginForm(),
	}
	if deps.Session.Authenticated() {
		m.screen = screenDiscover
		m.loading = true
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.screen != screenLogin {
		cmds = append(cmds, m.sessionStartedCmds()...)
	}
	return tea.Batch(cmds...)
}

// sessionStartedCmds loads the first batch and starts the notification poll
func (m *Model) sessionStartedCmds() []tea.Cmd {
	m.endSession()
	m.sessionCtx, m.endSession = context.WithCancel(m.ctx)
	return []tea.Cmd{
		m.resetFiltersCmd(),
		m.startNotificationsCmd(),
		m.waitForEventCmd(),
		m.waitForSessionEndCmd(),
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		return m, nil

	case tickMsg:
		m.now = typed.now
		return m, tickCmd()

	case loginDoneMsg:
		m.login.submitting = false
		if typed.err != nil {
			m.login.err = typed.err
			return m, nil
		}
		m.login = newLoginForm()
		m.screen = screenDiscover
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.sessionStartedCmds()...)

	case sessionEndedMsg:
		m.endSession()
		m.deps.Notifications.Reset()
		m.deps.Queue.Clear()
		m.deps.Transcript.Close()
		m.screen = screenLogin
		m.celebrations = nil
		m.matchList = nil
		m.pending = 0
		m.toast = ""
		m.status = "Sessione terminata, accedi di nuovo"
		return m, nil

	case batchLoadedMsg:
		m.loading = false
		m.setErr(typed.err)
		return m, nil

	case swipeDoneMsg:
		m.pending = max(0, m.pending-1)
		if typed.err != nil {
			m.setErr(typed.err)
			return m, nil
		}
		if typed.outcome.Event != nil {
			m.celebrations = append(m.celebrations, typed.outcome.Event)
		}
		return m, nil

	case matchesLoadedMsg:
		m.loading = false
		if typed.err != nil {
			m.setErr(typed.err)
			return m, nil
		}
		m.matchList = typed.list
		m.matchSelected = clamp(m.matchSelected, 0, len(m.matchList)-1)
		return m, nil

	case chatOpenedMsg:
		m.loading = false
		if typed.err != nil {
			m.setErr(typed.err)
			m.screen = m.chatReturn
			return m, nil
		}
		return m, nil

	case chatSentMsg, chatRefreshedMsg, icebreakerMsg:
		m.setErr(errorOf(typed))
		return m, nil

	case notificationsLoadedMsg:
		if typed.err != nil && !errors.Is(typed.err, session.ErrNotAuthenticated) {
			m.setErr(typed.err)
		}
		return m, nil

	case notificationEventMsg:
		m.toast = toastFor(typed.event)
		return m, m.waitForEventCmd()

	case notificationOpenedMsg:
		m.setErr(typed.err)
		if typed.route.HasChat() {
			return m, m.enterChat(typed.route.MatchID, screenNotifications)
		}
		return m, nil

	case ackMsg:
		m.setErr(typed.err)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(typed)
	}
	return m, nil
}

func errorOf(msg tea.Msg) error {
	switch typed := msg.(type) {
	case chatSentMsg:
		return typed.err
	case chatRefreshedMsg:
		return typed.err
	case icebreakerMsg:
		return typed.err
	}
	return nil
}

func (m *Model) setErr(err error) {
	m.lastErr = err
	if err != nil {
		m.deps.Log.Warn().Err(err).Msg("ui action failed")
	}
}

func toastFor(ev notification.Event) string {
	switch ev.Kind {
	case notification.EventMatch:
		return "🎉 Nuovo match!"
	case notification.EventMessage:
		return "💬 " + ev.Notification.Title
	case notification.EventUnread:
		return fmt.Sprintf("🔔 %d notifiche non lette", ev.Unread)
	default:
		if ev.Notification != nil {
			return ev.Notification.Title
		}
		return ""
	}
}

// celebration is the match event on screen, nil when none is pending
func (m *Model) celebration() *discovery.MatchEvent {
	if len(m.celebrations) == 0 {
		return nil
	}
	return m.celebrations[0]
}

// TakeMatchEvent consumes the oldest pending celebration. Events queue up in
// arrival order, so each one is shown exactly once.
func (m *Model) TakeMatchEvent() *discovery.MatchEvent {
	ev := m.celebration()
	if ev != nil {
		m.celebrations = m.celebrations[1:]
	}
	return ev
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	m.toast = ""

	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenFilters:
		return m.updateFilters(msg)
	case screenChat:
		return m.updateChat(msg)
	}

	if m.celebration() != nil {
		return m.updateCelebration(msg)
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "d":
		m.screen = screenDiscover
		return nil
	case "f":
		m.filters = newFilterForm(m.deps.Filters.Active())
		m.screen = screenFilters
		return nil
	case "m":
		m.screen = screenMatches
		m.loading = true
		return m.loadMatchesCmd()
	case "n":
		m.screen = screenNotifications
		m.notifSelected = 0
		return m.refreshNotificationsCmd()
	case "L":
		m.deps.Session.Logout()
		return nil
	}

	switch m.screen {
	case screenDiscover:
		return m.updateDiscover(msg)
	case screenMatches:
		return m.updateMatches(msg)
	case screenNotifications:
		return m.updateNotifications(msg)
	}
	return nil
}

func (m *Model) enterChat(matchID string, from screen) tea.Cmd {
	m.chatReturn = from
	m.screen = screenChat
	m.loading = true
	return m.openChatCmd(matchID)
}

func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenDiscover:
		body = m.viewDiscover()
	case screenFilters:
		body = m.viewFilters()
	case screenMatches:
		body = m.viewMatches()
	case screenChat:
		body = m.viewChat()
	case screenNotifications:
		body = m.viewNotifications()
	}

	parts := []string{m.viewHeader(), body}
	if m.toast != "" {
		parts = append(parts, successStyle.Render(m.toast))
	}
	if m.lastErr != nil {
		parts = append(parts, errorStyle.Render("⚠ "+m.lastErr.Error()))
	}
	if m.status != "" {
		parts = append(parts, mutedStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m *Model) viewHeader() string {
	title := titleStyle.Render("GravelMatch")
	if m.screen == screenLogin {
		return title + "\n"
	}

	bell := "🔔"
	if badge := m.deps.Notifications.Badge(); badge != "" {
		bell += " " + badgeStyle.Render(badge)
	}
	nav := mutedStyle.Render("[d]iscover [m]atch [n]otifiche [f]iltri [L]ogout [q]uit")
	user := mutedStyle.Render(m.deps.Session.User().Name)
	return strings.Join([]string{title, user, bell, nav}, "  ") + "\n"
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
