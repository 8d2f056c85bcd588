// internal/tui/messages.go
// tea messages and the commands that produce them. Every network call runs
// inside a tea.Cmd and reports back through one of these.

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imadgeboyega/gravelmatch/internal/discovery"
	"github.com/imadgeboyega/gravelmatch/internal/matches"
	"github.com/imadgeboyega/gravelmatch/internal/notification"
)

const tickInterval = time.Second

type tickMsg struct {
	now time.Time
}

type loginDoneMsg struct {
	err error
}

type sessionEndedMsg struct{}

type batchLoadedMsg struct {
	err error
}

type swipeDoneMsg struct {
	outcome discovery.SwipeOutcome
	err     error
}

type matchesLoadedMsg struct {
	list []matches.Match
	err  error
}

type chatOpenedMsg struct {
	matchID string
	err     error
}

type chatSentMsg struct {
	err error
}

type chatRefreshedMsg struct {
	err error
}

type icebreakerMsg struct {
	err error
}

type notificationsLoadedMsg struct {
	err error
}

type notificationEventMsg struct {
	event notification.Event
}

type notificationOpenedMsg struct {
	route notification.Route
	err   error
}

type ackMsg struct {
	err error
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg{now: t}
	})
}

func (m *Model) loginCmd(email, password string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loginDoneMsg{err: m.deps.Session.Login(ctx, email, password)}
	}
}

func (m *Model) waitForSessionEndCmd() tea.Cmd {
	done := m.deps.Session.Done()
	ctx := m.sessionCtx
	return func() tea.Msg {
		select {
		case <-done:
			return sessionEndedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) startNotificationsCmd() tea.Cmd {
	ctx := m.sessionCtx
	return func() tea.Msg {
		return notificationsLoadedMsg{err: m.deps.Notifications.Start(ctx)}
	}
}

func (m *Model) refreshNotificationsCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return notificationsLoadedMsg{err: m.deps.Notifications.Refresh(ctx)}
	}
}

func (m *Model) waitForEventCmd() tea.Cmd {
	events := m.deps.Notifications.Events()
	ctx := m.sessionCtx
	return func() tea.Msg {
		select {
		case ev := <-events:
			return notificationEventMsg{event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) applyFiltersCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return batchLoadedMsg{err: m.deps.Filters.Apply(ctx)}
	}
}

func (m *Model) resetFiltersCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return batchLoadedMsg{err: m.deps.Filters.Reset(ctx)}
	}
}

func (m *Model) refreshQueueCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return batchLoadedMsg{err: m.deps.Queue.Refresh(ctx)}
	}
}

func (m *Model) submitSwipeCmd(d *discovery.Decision) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		out, err := d.Submit(ctx)
		return swipeDoneMsg{outcome: out, err: err}
	}
}

func (m *Model) loadMatchesCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		list, err := m.deps.Matches.List(ctx)
		return matchesLoadedMsg{list: list, err: err}
	}
}

func (m *Model) openChatCmd(matchID string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return chatOpenedMsg{matchID: matchID, err: m.deps.Transcript.Open(ctx, matchID)}
	}
}

func (m *Model) sendChatCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		_, err := m.deps.Transcript.SendDraft(ctx)
		return chatSentMsg{err: err}
	}
}

func (m *Model) refreshChatCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return chatRefreshedMsg{err: m.deps.Transcript.Refresh(ctx)}
	}
}

func (m *Model) icebreakerCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		_, err := m.deps.Transcript.Icebreaker(ctx)
		return icebreakerMsg{err: err}
	}
}

func (m *Model) openNotificationCmd(id string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		route, err := m.deps.Notifications.Open(ctx, id)
		return notificationOpenedMsg{route: route, err: err}
	}
}

func (m *Model) markAllReadCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return ackMsg{err: m.deps.Notifications.MarkAllRead(ctx)}
	}
}
