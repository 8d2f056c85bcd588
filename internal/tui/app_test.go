// internal/tui/app_test.go

package tui

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/imadgeboyega/gravelmatch/internal/devserver"
	"github.com/imadgeboyega/gravelmatch/internal/discovery"
	"github.com/imadgeboyega/gravelmatch/internal/matches"
	"github.com/imadgeboyega/gravelmatch/internal/messaging"
	"github.com/imadgeboyega/gravelmatch/internal/notification"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
	"github.com/imadgeboyega/gravelmatch/internal/session"
	"github.com/imadgeboyega/gravelmatch/internal/tips"
)

func newDeps(t *testing.T) Deps {
	t.Helper()
	router, _, err := devserver.NewRouter(devserver.Options{
		JWTSecret:  "test-secret",
		BCryptCost: bcrypt.MinCost,
		Seed:       devserver.DefaultSeed(),
	}, zerolog.Nop())
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	log := zerolog.Nop()
	sess := session.New(srv.URL, 5*time.Second, session.NewMemoryTokenStore(), log)

	filters := discovery.NewFilterStore()
	discoveryRepo := discovery.NewRepository(sess)
	queue := discovery.NewCandidateQueue(discoveryRepo, log)
	queue.Bind(filters)
	matchService := matches.NewService(sess)
	coordinator := notification.NewCoordinator(notification.NewRepository(sess), sess,
		notification.Options{PollInterval: time.Hour}, log)
	t.Cleanup(coordinator.Stop)

	return Deps{
		Session:       sess,
		Filters:       filters,
		Queue:         queue,
		Engine:        discovery.NewSwipeEngine(queue, discoveryRepo, log),
		Matches:       matchService,
		Notifications: coordinator,
		Transcript: messaging.NewTranscript(messaging.NewRepository(sess), matchService,
			tips.NewService(sess, log), 50*time.Millisecond, log),
		Log: log,
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(keyRunes(string(r)))
	}
}

// run executes cmd and feeds its message back into the model
func run(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := m.Update(cmd())
	return next
}

func loggedInModel(t *testing.T) *Model {
	t.Helper()
	m := New(context.Background(), newDeps(t))
	require.Equal(t, screenLogin, m.screen)

	typeText(m, devserver.DemoEmail)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, devserver.DemoPassword)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.login.submitting)

	run(t, m, cmd)
	require.Equal(t, screenDiscover, m.screen)
	require.NoError(t, m.login.err)

	run(t, m, m.resetFiltersCmd())
	require.False(t, m.loading)
	return m
}

func TestLoginFormEditing(t *testing.T) {
	m := New(context.Background(), newDeps(t))

	typeText(m, "ab")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "a", m.login.values[fieldEmail])

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.True(t, m.login.register)
	assert.Equal(t, 3, m.login.fieldCount())
	assert.Contains(t, m.View(), "Registrati")
}

func TestLoginFailureStaysOnLoginScreen(t *testing.T) {
	m := New(context.Background(), newDeps(t))

	typeText(m, devserver.DemoEmail)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "wrong-password")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)

	assert.Equal(t, screenLogin, m.screen)
	assert.Error(t, m.login.err)
	assert.False(t, m.login.submitting)
}

func TestLikeCelebratesMatchAndOpensChat(t *testing.T) {
	m := loggedInModel(t)

	current, ok := m.deps.Queue.Current()
	require.True(t, ok)
	require.Equal(t, "Giulia", current.Name)
	assert.Contains(t, m.View(), "Giulia")

	_, cmd := m.Update(keyRunes("l"))
	assert.Equal(t, 1, m.pending)
	next, _ := m.deps.Queue.Current()
	assert.NotEqual(t, "Giulia", next.Name, "queue advances before the server answers")

	run(t, m, cmd)
	assert.Equal(t, 0, m.pending)
	require.NotNil(t, m.celebration())
	assert.Contains(t, m.View(), "È un match")

	_, cmd = m.Update(keyRunes("c"))
	assert.Nil(t, m.celebration())
	assert.Equal(t, screenChat, m.screen)
	run(t, m, cmd)
	assert.Equal(t, "Giulia", m.deps.Transcript.Counterpart().Name)

	typeText(m, "ciao")
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	typeText(m, "q")
	assert.Equal(t, "ciao q", m.deps.Transcript.Draft(), "global keys are typed in chat")
	assert.Equal(t, screenChat, m.screen)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)
	assert.NoError(t, m.lastErr)
	assert.Empty(t, m.deps.Transcript.Draft())
	assert.Contains(t, m.View(), "Tu: ciao q")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenDiscover, m.screen)
}

func TestDislikeDoesNotCelebrate(t *testing.T) {
	m := loggedInModel(t)

	_, cmd := m.Update(keyRunes("h"))
	run(t, m, cmd)
	assert.Nil(t, m.celebration())
	assert.NoError(t, m.lastErr)
}

func TestTakeMatchEventClears(t *testing.T) {
	m := loggedInModel(t)
	ev := &discovery.MatchEvent{Candidate: profile.Rider{Name: "Sara"}, MatchID: "m-9"}

	m.Update(swipeDoneMsg{outcome: discovery.SwipeOutcome{State: discovery.StateMatched, Event: ev}})
	assert.Same(t, ev, m.TakeMatchEvent())
	assert.Nil(t, m.TakeMatchEvent())
}

func TestMatchEventsQueueUp(t *testing.T) {
	m := loggedInModel(t)
	first := &discovery.MatchEvent{Candidate: profile.Rider{Name: "Giulia"}, MatchID: "m-1"}
	second := &discovery.MatchEvent{Candidate: profile.Rider{Name: "Sara"}, MatchID: "m-2"}

	m.Update(swipeDoneMsg{outcome: discovery.SwipeOutcome{State: discovery.StateMatched, Event: first}})
	m.Update(swipeDoneMsg{outcome: discovery.SwipeOutcome{State: discovery.StateMatched, Event: second}})

	assert.Contains(t, m.View(), "Tu e Giulia")
	m.Update(keyRunes("x"))
	assert.Contains(t, m.View(), "Tu e Sara")
	m.Update(keyRunes("x"))
	assert.Nil(t, m.celebration())
}

func TestFilterEditsStayStagedUntilApplied(t *testing.T) {
	m := loggedInModel(t)
	before := m.deps.Queue.Len()

	m.Update(keyRunes("f"))
	require.Equal(t, screenFilters, m.screen)
	typeText(m, "30")

	draft := m.deps.Filters.Draft()
	require.NotNil(t, draft.MinAge)
	assert.Equal(t, 30, *draft.MinAge)
	assert.Nil(t, m.deps.Filters.Active().MinAge)
	assert.Equal(t, before, m.deps.Queue.Len())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenDiscover, m.screen)
	assert.Nil(t, m.deps.Filters.Draft().MinAge)
}

func TestApplyZoneFilter(t *testing.T) {
	m := loggedInModel(t)

	m.Update(keyRunes("f"))
	for i := 0; i < filterZone; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	zone := m.deps.Filters.Draft().Zone
	require.Equal(t, profile.Zones[0], zone)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenDiscover, m.screen)
	run(t, m, cmd)

	assert.Equal(t, zone, m.deps.Queue.Filter().Zone)
	assert.Contains(t, m.View(), "●")
}

func TestMatchesScreen(t *testing.T) {
	m := loggedInModel(t)
	_, cmd := m.Update(keyRunes("l"))
	run(t, m, cmd)
	m.TakeMatchEvent()

	_, cmd = m.Update(keyRunes("m"))
	assert.Equal(t, screenMatches, m.screen)
	run(t, m, cmd)
	require.Len(t, m.matchList, 1)
	assert.Contains(t, m.View(), "Nuovo match")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenChat, m.screen)
	assert.Equal(t, screenMatches, m.chatReturn)
	run(t, m, cmd)
	assert.Equal(t, m.matchList[0].ID, m.deps.Transcript.MatchID())
}

func TestNotificationOpenRoutesToChat(t *testing.T) {
	m := loggedInModel(t)
	_, cmd := m.Update(keyRunes("l"))
	run(t, m, cmd)
	m.TakeMatchEvent()

	_, cmd = m.Update(keyRunes("n"))
	assert.Equal(t, screenNotifications, m.screen)
	run(t, m, cmd)
	require.Len(t, m.deps.Notifications.Items(), 1)
	assert.Contains(t, m.View(), "Nuovo match!")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cmd = run(t, m, cmd)
	assert.Equal(t, screenChat, m.screen)
	assert.Equal(t, screenNotifications, m.chatReturn)
	assert.Equal(t, 0, m.deps.Notifications.Unread())
	run(t, m, cmd)
	assert.Equal(t, "Giulia", m.deps.Transcript.Counterpart().Name)
}

func TestSessionEndReturnsToLogin(t *testing.T) {
	m := loggedInModel(t)

	m.Update(keyRunes("L"))
	assert.False(t, m.deps.Session.Authenticated())

	m.Update(sessionEndedMsg{})
	assert.Equal(t, screenLogin, m.screen)
	assert.NotEmpty(t, m.status)
}

func TestToastFor(t *testing.T) {
	msg := &notification.Notification{Title: "Nuovo messaggio da Giulia"}

	assert.Equal(t, "🎉 Nuovo match!", toastFor(notification.Event{Kind: notification.EventMatch}))
	assert.Equal(t, "💬 Nuovo messaggio da Giulia", toastFor(notification.Event{Kind: notification.EventMessage, Notification: msg}))
	assert.Equal(t, "🔔 3 notifiche non lette", toastFor(notification.Event{Kind: notification.EventUnread, Unread: 3}))
	assert.Equal(t, "", toastFor(notification.Event{Kind: notification.EventOther}))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-1, 0, 3))
	assert.Equal(t, 3, clamp(9, 0, 3))
	assert.Equal(t, 0, clamp(2, 0, -1))
}

func TestSessionEndForgetsSessionState(t *testing.T) {
	m := loggedInModel(t)
	_, cmd := m.Update(keyRunes("l"))
	run(t, m, cmd)
	m.TakeMatchEvent()
	require.NoError(t, m.deps.Notifications.Refresh(context.Background()))
	require.Equal(t, 1, m.deps.Notifications.Unread())
	wait := m.waitForEventCmd()

	m.Update(keyRunes("L"))
	m.Update(sessionEndedMsg{})

	assert.Equal(t, "", m.deps.Notifications.Badge())
	assert.Empty(t, m.deps.Notifications.Items())
	assert.Equal(t, 0, m.deps.Queue.Len())
	assert.Error(t, m.sessionCtx.Err())
	assert.Nil(t, wait(), "event wait of the ended session returns")
}
