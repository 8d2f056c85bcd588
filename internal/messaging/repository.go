// internal/messaging/repository.go

package messaging

import (
	"context"
	"net/http"
	"net/url"

	"github.com/imadgeboyega/gravelmatch/internal/session"
)

type Repository interface {
	GetMessages(ctx context.Context, matchID string) ([]Message, error)
	CreateMessage(ctx context.Context, req SendMessageRequest) (*Message, error)
}

type apiRepository struct {
	api session.Doer
}

func NewRepository(api session.Doer) Repository {
	return &apiRepository{api: api}
}

func (r *apiRepository) GetMessages(ctx context.Context, matchID string) ([]Message, error) {
	var list []Message
	err := r.api.Do(ctx, session.Request{
		Method: http.MethodGet,
		Path:   "/api/chat/" + url.PathEscape(matchID),
	}, &list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *apiRepository) CreateMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	var msg Message
	err := r.api.Do(ctx, session.Request{
		Method: http.MethodPost,
		Path:   "/api/chat",
		Body:   req,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
