// internal/session/session.go
// Session holds the authenticated identity and the authorized request channel.
// Every engine component receives it explicitly and is inert without it.

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
	"github.com/imadgeboyega/gravelmatch/internal/metrics"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

// Doer is the authorized request channel engine components depend on
type Doer interface {
	Do(ctx context.Context, req Request, out interface{}) error
}

type Session struct {
	baseURL string
	client  *http.Client
	store   TokenStore
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	token  string
	claims *utils.JWTClaims
	user   profile.Rider
	done   chan struct{}
}

// New creates an unauthenticated session against baseURL
func New(baseURL string, timeout time.Duration, store TokenStore, log zerolog.Logger) *Session {
	closed := make(chan struct{})
	close(closed)

	return &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		store:   store,
		log:     log,
		now:     time.Now,
		done:    closed,
	}
}

// Authenticated reports whether a non-expired token is held
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

func (s *Session) authenticatedLocked() bool {
	return s.token != "" && s.claims != nil && !s.claims.Expired(s.now())
}

// Done is closed when the session ends. Unauthenticated sessions return a
// closed channel, so anything bound to it stops right away.
func (s *Session) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// Email is the token subject
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.Subject
}

// UserID prefers the profile id fetched from /me and falls back to the claim
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user.ID != "" {
		return s.user.ID
	}
	if s.claims != nil {
		return s.claims.UserID
	}
	return ""
}

// User is the last identity fetched from /me
func (s *Session) User() profile.Rider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Do sends an authorized request and decodes a 2xx JSON answer into out.
// A 401 ends the session.
func (s *Session) Do(ctx context.Context, req Request, out interface{}) error {
	s.mu.RLock()
	token := s.token
	ok := s.authenticatedLocked()
	s.mu.RUnlock()

	if !ok {
		if token != "" {
			// expired in place
			s.logout(token)
		}
		return ErrNotAuthenticated
	}

	err := s.send(ctx, req, token, out)
	if IsStatus(err, http.StatusUnauthorized) {
		s.log.Warn().Str("path", req.Path).Msg("token rejected, logging out")
		s.logout(token)
	}
	return err
}

func (s *Session) send(ctx context.Context, req Request, token string, out interface{}) error {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", req.Path, err)
		}
		body = bytes.NewReader(raw)
	}

	target := s.baseURL + req.Path
	if req.Query != "" {
		target += "?" + req.Query
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		metrics.ObserveRequest(req.Method, 0, time.Since(start))
		s.log.Debug().Err(err).Str("request_id", requestID).Str("path", req.Path).Msg("request failed")
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRequest(req.Method, resp.StatusCode, time.Since(start))

	s.log.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: utils.ReadErrorDetail(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.Path, err)
	}
	return nil
}
