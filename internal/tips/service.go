// internal/tips/service.go
// AI conversation starters. Advisory only: failures degrade to static text.

package tips

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/gravelmatch/internal/session"
)

const (
	// FallbackTips is shown when the suggestion service cannot answer
	FallbackTips = "Suggerimenti non disponibili al momento. Chiedi qual è il suo percorso gravel preferito!"

	DefaultIcebreaker  = "Ciao! Come va?"
	FallbackIcebreaker = "Ciao! Ho visto che anche tu sei appassionato di gravel!"
)

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

type tipsResponse struct {
	Tips string `json:"tips"`
}

type Service struct {
	api session.Doer
	log zerolog.Logger
}

func NewService(api session.Doer, log zerolog.Logger) *Service {
	return &Service{api: api, log: log}
}

// ConversationStarters asks for suggestions about targetID. The boolean is
// false when the fallback text was returned.
func (s *Service) ConversationStarters(ctx context.Context, targetID string) (string, bool) {
	var resp tipsResponse
	err := s.api.Do(ctx, session.Request{
		Method: http.MethodGet,
		Path:   "/api/ai/match-tips",
		Query:  url.Values{"target_user_id": {targetID}}.Encode(),
	}, &resp)
	if err != nil {
		s.log.Warn().Err(err).Str("target_user_id", targetID).Msg("match tips unavailable")
		return FallbackTips, false
	}

	tips := strings.TrimSpace(resp.Tips)
	if tips == "" {
		return FallbackTips, false
	}
	return tips, true
}

// Icebreaker turns the suggestions into a ready-to-send opening line
func (s *Service) Icebreaker(ctx context.Context, targetID string) string {
	tips, ok := s.ConversationStarters(ctx, targetID)
	if !ok {
		return FallbackIcebreaker
	}
	return firstLine(tips)
}

func firstLine(tips string) string {
	for _, line := range strings.Split(tips, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			return line
		}
	}
	return DefaultIcebreaker
}
