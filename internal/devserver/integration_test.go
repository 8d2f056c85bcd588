package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/imadgeboyega/gravelmatch/internal/discovery"
	"github.com/imadgeboyega/gravelmatch/internal/matches"
	"github.com/imadgeboyega/gravelmatch/internal/messaging"
	"github.com/imadgeboyega/gravelmatch/internal/notification"
	"github.com/imadgeboyega/gravelmatch/internal/session"
	"github.com/imadgeboyega/gravelmatch/internal/tips"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	router, _, err := NewRouter(Options{
		JWTSecret:  "test-secret",
		BCryptCost: bcrypt.MinCost,
		Seed:       DefaultSeed(),
	}, zerolog.Nop())
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func loggedIn(t *testing.T, baseURL string) *session.Session {
	t.Helper()
	sess := session.New(baseURL, 5*time.Second, session.NewMemoryTokenStore(), zerolog.Nop())
	require.NoError(t, sess.Login(context.Background(), DemoEmail, DemoPassword))
	return sess
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "GravelMatch API", body.App)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/notifications/unread-count")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Not authenticated", body.Detail)
}

func TestRegisterThenMe(t *testing.T) {
	srv := newTestServer(t)
	sess := session.New(srv.URL, 5*time.Second, session.NewMemoryTokenStore(), zerolog.Nop())

	require.NoError(t, sess.Register(context.Background(), "Nuova Rider", "nuova@example.it", "segreta"))

	assert.Equal(t, "nuova@example.it", sess.Email())
	assert.Equal(t, "Nuova Rider", sess.User().Name)
	assert.NotEmpty(t, sess.UserID())

	err := sess.Register(context.Background(), "Doppia", DemoEmail, "segreta")
	assert.True(t, session.IsStatus(err, http.StatusBadRequest))
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	sess := session.New(srv.URL, 5*time.Second, session.NewMemoryTokenStore(), zerolog.Nop())

	err := sess.Login(context.Background(), DemoEmail, "sbagliata")

	assert.True(t, session.IsStatus(err, http.StatusUnauthorized))
	assert.False(t, sess.Authenticated())
}

func TestDiscoverRejectsBadQuery(t *testing.T) {
	srv := newTestServer(t)
	sess := loggedIn(t, srv.URL)

	err := sess.Do(context.Background(), session.Request{
		Method: http.MethodGet,
		Path:   "/api/discover",
		Query:  "min_age=abc",
	}, nil)

	assert.True(t, session.IsStatus(err, http.StatusUnprocessableEntity))
}

// TestEndToEnd drives the client engine against the dev API: filter, swipe
// into a match, see it in notifications, chat and read everything.
func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	sess := loggedIn(t, srv.URL)
	log := zerolog.Nop()

	// discovery
	filters := discovery.NewFilterStore()
	repo := discovery.NewRepository(sess)
	queue := discovery.NewCandidateQueue(repo, log)
	queue.Bind(filters)
	engine := discovery.NewSwipeEngine(queue, repo, log)

	require.NoError(t, filters.Stage(discovery.WithZone("Toscana")))
	require.NoError(t, filters.Apply(ctx))
	require.Equal(t, 1, queue.Len())

	outcome, err := engine.Decide(ctx, discovery.ActionLike)
	require.NoError(t, err)
	assert.Equal(t, discovery.StateMatched, outcome.State)
	require.NotNil(t, outcome.Event)
	assert.Equal(t, "Giulia", outcome.Event.Candidate.Name)
	matchID := outcome.Event.MatchID
	require.NotEmpty(t, matchID)
	assert.True(t, queue.Exhausted())

	_, err = engine.Decide(ctx, discovery.ActionLike)
	assert.ErrorIs(t, err, discovery.ErrNoCandidate)

	// notifications
	coord := notification.NewCoordinator(notification.NewRepository(sess), sess, notification.Options{}, log)
	require.NoError(t, coord.Refresh(ctx))
	assert.Equal(t, 1, coord.Unread())
	items := coord.Items()
	require.Len(t, items, 1)
	assert.Equal(t, matchID, items[0].MatchID())

	// chat
	transcript := messaging.NewTranscript(
		messaging.NewRepository(sess),
		matches.NewService(sess),
		tips.NewService(sess, log),
		time.Minute,
		log,
	)
	t.Cleanup(transcript.Close)
	require.NoError(t, transcript.Open(ctx, matchID))
	assert.Equal(t, "Giulia", transcript.Counterpart().Name)

	line, err := transcript.Icebreaker(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "Ciao Giulia!"), line)

	msg, err := transcript.SendDraft(ctx)
	require.NoError(t, err)
	assert.True(t, msg.IsMine)
	assert.Equal(t, "", transcript.Draft())

	_, err = transcript.Send(ctx, line)
	assert.ErrorIs(t, err, messaging.ErrDuplicateSend)

	require.NoError(t, transcript.Refresh(ctx))
	history := transcript.Messages()
	require.Len(t, history, 2)
	assert.False(t, history[1].IsMine)

	// the auto reply shows up on the next poll
	require.NoError(t, coord.Poll(ctx))
	assert.Equal(t, 2, coord.Unread())

	require.NoError(t, coord.Refresh(ctx))
	route, err := coord.Open(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, matchID, route.MatchID)
	assert.Equal(t, 1, coord.Unread())

	require.NoError(t, coord.MarkAllRead(ctx))
	require.NoError(t, coord.Poll(ctx))
	assert.Equal(t, 0, coord.Unread())
}

func TestLogoutStopsPolling(t *testing.T) {
	srv := newTestServer(t)
	sess := loggedIn(t, srv.URL)

	coord := notification.NewCoordinator(notification.NewRepository(sess), sess,
		notification.Options{PollInterval: 5 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, coord.Start(context.Background()))
	require.True(t, coord.Running())

	sess.Logout()

	require.Eventually(t, func() bool { return !coord.Running() }, time.Second, time.Millisecond)
}
