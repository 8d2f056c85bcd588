package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/gravelmatch/internal/common/apperr"
	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
)

func signToken(t *testing.T, email string, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.GenerateJWT(&utils.JWTClaims{
		Subject:   email,
		ExpiresAt: time.Now().Add(ttl).Unix(),
		IssuedAt:  time.Now().Unix(),
	}, "test-secret")
	require.NoError(t, err)
	return tok
}

type fakeAPI struct {
	calls    atomic.Int32
	lastAuth atomic.Value
	lastReq  atomic.Value
	token    string
	arrived  chan struct{}
	release  chan struct{}
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{
		token:   signToken(t, "giulia@gravel.it", time.Hour),
		arrived: make(chan struct{}, 1),
		release: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		api.calls.Add(1)
		var body LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "pedala" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, TokenResponse{AccessToken: api.token, TokenType: "bearer"})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		api.calls.Add(1)
		api.lastAuth.Store(r.Header.Get("Authorization"))
		api.lastReq.Store(r.Header.Get("X-Request-ID"))
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"id": "u-1", "email": "giulia@gravel.it", "name": "Giulia"})
	})
	mux.HandleFunc("/api/matches", func(w http.ResponseWriter, r *http.Request) {
		api.calls.Add(1)
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
	})
	mux.HandleFunc("/api/slow", func(w http.ResponseWriter, r *http.Request) {
		api.arrived <- struct{}{}
		<-api.release
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
	})
	mux.HandleFunc("/api/chat/missing", func(w http.ResponseWriter, r *http.Request) {
		api.calls.Add(1)
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func TestLoginLoadsIdentity(t *testing.T) {
	api, srv := newFakeAPI(t)
	store := NewMemoryTokenStore()
	s := New(srv.URL, time.Second, store, zerolog.Nop())

	require.NoError(t, s.Login(context.Background(), "giulia@gravel.it", "pedala"))

	assert.True(t, s.Authenticated())
	assert.Equal(t, "giulia@gravel.it", s.Email())
	assert.Equal(t, "u-1", s.UserID())
	assert.Equal(t, "Bearer "+api.token, api.lastAuth.Load())
	assert.NotEmpty(t, api.lastReq.Load())

	saved, _ := store.Load()
	assert.Equal(t, api.token, saved)

	select {
	case <-s.Done():
		t.Fatal("done closed while authenticated")
	default:
	}
}

func TestLoginValidationNeverCallsAPI(t *testing.T) {
	api, srv := newFakeAPI(t)
	s := New(srv.URL, time.Second, NewMemoryTokenStore(), zerolog.Nop())

	err := s.Login(context.Background(), "not-an-email", "pedala")

	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, int32(0), api.calls.Load())
}

func TestLoginBadCredentials(t *testing.T) {
	_, srv := newFakeAPI(t)
	s := New(srv.URL, time.Second, NewMemoryTokenStore(), zerolog.Nop())

	err := s.Login(context.Background(), "giulia@gravel.it", "wrong")

	assert.True(t, apperr.IsSubmit(err))
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, s.Authenticated())
}

func TestUnauthorizedEndsSession(t *testing.T) {
	_, srv := newFakeAPI(t)
	store := NewMemoryTokenStore()
	s := New(srv.URL, time.Second, store, zerolog.Nop())
	require.NoError(t, s.Login(context.Background(), "giulia@gravel.it", "pedala"))
	done := s.Done()

	err := s.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/matches"}, nil)

	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, s.Authenticated())
	_, open := <-done
	assert.False(t, open)
	saved, _ := store.Load()
	assert.Empty(t, saved)
}

func TestLateUnauthorizedKeepsNewerSession(t *testing.T) {
	api, srv := newFakeAPI(t)
	s := New(srv.URL, 5*time.Second, NewMemoryTokenStore(), zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, s.Login(ctx, "giulia@gravel.it", "pedala"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Do(ctx, Request{Method: http.MethodGet, Path: "/api/slow"}, nil)
	}()
	<-api.arrived

	s.Logout()
	require.NoError(t, s.begin(ctx, signToken(t, "giulia@gravel.it", 2*time.Hour)))
	done := s.Done()
	close(api.release)

	assert.True(t, IsStatus(<-errCh, http.StatusUnauthorized))
	assert.True(t, s.Authenticated())
	select {
	case <-done:
		t.Fatal("newer session was ended by a stale answer")
	default:
	}
}

func TestErrorDetailIsDecoded(t *testing.T) {
	_, srv := newFakeAPI(t)
	s := New(srv.URL, time.Second, NewMemoryTokenStore(), zerolog.Nop())
	require.NoError(t, s.Login(context.Background(), "giulia@gravel.it", "pedala"))

	err := s.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/chat/missing"}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Not authorized", apiErr.Detail)
	assert.True(t, s.Authenticated())
}

func TestDoWithoutSession(t *testing.T) {
	api, srv := newFakeAPI(t)
	s := New(srv.URL, time.Second, NewMemoryTokenStore(), zerolog.Nop())

	err := s.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/matches"}, nil)

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, int32(0), api.calls.Load())
	_, open := <-s.Done()
	assert.False(t, open)
}

func TestRestore(t *testing.T) {
	_, srv := newFakeAPI(t)

	t.Run("valid token", func(t *testing.T) {
		store := NewMemoryTokenStore()
		require.NoError(t, store.Save(signToken(t, "giulia@gravel.it", time.Hour)))
		s := New(srv.URL, time.Second, store, zerolog.Nop())

		require.NoError(t, s.Restore(context.Background()))
		assert.Equal(t, "Giulia", s.User().Name)
	})

	t.Run("expired token", func(t *testing.T) {
		store := NewMemoryTokenStore()
		require.NoError(t, store.Save(signToken(t, "giulia@gravel.it", -time.Hour)))
		s := New(srv.URL, time.Second, store, zerolog.Nop())

		assert.ErrorIs(t, s.Restore(context.Background()), ErrNotAuthenticated)
		saved, _ := store.Load()
		assert.Empty(t, saved)
	})

	t.Run("nothing stored", func(t *testing.T) {
		s := New(srv.URL, time.Second, NewMemoryTokenStore(), zerolog.Nop())
		assert.ErrorIs(t, s.Restore(context.Background()), ErrNotAuthenticated)
	})
}

func TestLogoutThenLoginReopensDone(t *testing.T) {
	_, srv := newFakeAPI(t)
	s := New(srv.URL, time.Second, NewMemoryTokenStore(), zerolog.Nop())
	require.NoError(t, s.Login(context.Background(), "giulia@gravel.it", "pedala"))

	s.Logout()
	s.Logout()
	require.NoError(t, s.Login(context.Background(), "giulia@gravel.it", "pedala"))

	select {
	case <-s.Done():
		t.Fatal("fresh session reports done")
	default:
	}
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileTokenStore(path)

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Save("abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}
