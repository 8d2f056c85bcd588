// internal/discovery/repository.go

package discovery

import (
	"context"
	"net/http"

	"github.com/imadgeboyega/gravelmatch/internal/session"
)

type Repository interface {
	// Discover lists candidates for an encoded filter query
	Discover(ctx context.Context, query string) ([]Candidate, error)
	Swipe(ctx context.Context, req SwipeRequest) (*SwipeResponse, error)
}

type apiRepository struct {
	api session.Doer
}

func NewRepository(api session.Doer) Repository {
	return &apiRepository{api: api}
}

func (r *apiRepository) Discover(ctx context.Context, query string) ([]Candidate, error) {
	var candidates []Candidate
	err := r.api.Do(ctx, session.Request{
		Method: http.MethodGet,
		Path:   "/api/discover",
		Query:  query,
	}, &candidates)
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *apiRepository) Swipe(ctx context.Context, req SwipeRequest) (*SwipeResponse, error) {
	var resp SwipeResponse
	err := r.api.Do(ctx, session.Request{
		Method: http.MethodPost,
		Path:   "/api/swipe",
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
