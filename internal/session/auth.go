// internal/session/auth.go

package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/imadgeboyega/gravelmatch/internal/common/apperr"
	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

// Login exchanges credentials for a token and loads the identity
func (s *Session) Login(ctx context.Context, email, password string) error {
	req := LoginRequest{Email: email, Password: password}
	if err := utils.ValidateStruct(req); err != nil {
		return apperr.Validation("session.login", err)
	}

	var tok TokenResponse
	if err := s.send(ctx, Request{Method: http.MethodPost, Path: "/api/auth/login", Body: req}, "", &tok); err != nil {
		return apperr.Submit("session.login", err)
	}
	return s.begin(ctx, tok.AccessToken)
}

// Register creates an account and signs in with the returned token
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	req := RegisterRequest{Email: email, Password: password, Name: name}
	if err := utils.ValidateStruct(req); err != nil {
		return apperr.Validation("session.register", err)
	}

	var tok TokenResponse
	if err := s.send(ctx, Request{Method: http.MethodPost, Path: "/api/auth/register", Body: req}, "", &tok); err != nil {
		return apperr.Submit("session.register", err)
	}
	return s.begin(ctx, tok.AccessToken)
}

// Restore resumes a session from the token store. It returns
// ErrNotAuthenticated when there is nothing usable to resume.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNotAuthenticated
	}

	claims, err := utils.ParseUnverified(token)
	if err != nil || claims.Expired(s.now()) {
		s.log.Info().Msg("stored token unusable, discarding")
		_ = s.store.Clear()
		return ErrNotAuthenticated
	}
	return s.begin(ctx, token)
}

// Me fetches the current identity and caches it on the session
func (s *Session) Me(ctx context.Context) (profile.Rider, error) {
	var me profile.Rider
	if err := s.Do(ctx, Request{Method: http.MethodGet, Path: "/api/auth/me"}, &me); err != nil {
		return profile.Rider{}, apperr.Fetch("session.me", err)
	}

	s.mu.Lock()
	s.user = me
	s.mu.Unlock()
	return me, nil
}

// Logout drops the token and closes Done. Safe to call repeatedly.
func (s *Session) Logout() {
	s.logout("")
}

// logout ends the session. A non-empty token restricts it to the session
// that token belongs to, so late answers to an older login are ignored.
func (s *Session) logout(token string) {
	s.mu.Lock()
	if token != "" && token != s.token {
		s.mu.Unlock()
		return
	}
	wasActive := s.token != ""
	s.token = ""
	s.claims = nil
	s.user = profile.Rider{}
	if wasActive {
		close(s.done)
	}
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear stored token")
	}
	if wasActive {
		s.log.Info().Msg("session ended")
	}
}

// begin installs token, persists it and loads the identity.
// If the identity cannot be loaded the session is torn down again.
func (s *Session) begin(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	claims, err := utils.ParseUnverified(token)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	s.mu.Lock()
	if s.token != "" {
		close(s.done)
	}
	s.token = token
	s.claims = claims
	s.user = profile.Rider{}
	s.done = make(chan struct{})
	s.mu.Unlock()

	if err := s.store.Save(token); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist token")
	}

	if _, err := s.Me(ctx); err != nil {
		s.Logout()
		return err
	}

	s.log.Info().Str("email", claims.Subject).Msg("session started")
	return nil
}
