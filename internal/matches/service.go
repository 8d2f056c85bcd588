// internal/matches/service.go

package matches

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/imadgeboyega/gravelmatch/internal/common/apperr"
	"github.com/imadgeboyega/gravelmatch/internal/session"
)

type Service struct {
	api session.Doer
}

func NewService(api session.Doer) *Service {
	return &Service{api: api}
}

// List fetches every match of the viewer in server order
func (s *Service) List(ctx context.Context) ([]Match, error) {
	var list []Match
	err := s.api.Do(ctx, session.Request{Method: http.MethodGet, Path: "/api/matches"}, &list)
	if err != nil {
		return nil, apperr.Fetch("matches.list", err)
	}
	return list, nil
}

// Find fetches the list and scans it for id. The list is small and
// already needed by the matches screen, so a linear scan is fine.
func (s *Service) Find(ctx context.Context, id string) (Match, error) {
	list, err := s.List(ctx)
	if err != nil {
		return Match{}, err
	}
	return Lookup(list, id)
}

// Lookup scans an already loaded list
func Lookup(list []Match, id string) (Match, error) {
	m, ok := lo.Find(list, func(m Match) bool { return m.ID == id })
	if !ok {
		return Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return m, nil
}
