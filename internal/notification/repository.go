// internal/notification/repository.go

package notification

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/imadgeboyega/gravelmatch/internal/session"
)

type Repository interface {
	GetNotifications(ctx context.Context, limit int) ([]Notification, error)
	GetUnreadCount(ctx context.Context) (int, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	MarkAllAsRead(ctx context.Context) error
}

type apiRepository struct {
	api session.Doer
}

func NewRepository(api session.Doer) Repository {
	return &apiRepository{api: api}
}

func (r *apiRepository) GetNotifications(ctx context.Context, limit int) ([]Notification, error) {
	var list []Notification
	err := r.api.Do(ctx, session.Request{
		Method: http.MethodGet,
		Path:   "/api/notifications",
		Query:  url.Values{"limit": {strconv.Itoa(limit)}}.Encode(),
	}, &list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *apiRepository) GetUnreadCount(ctx context.Context) (int, error) {
	var resp UnreadCount
	err := r.api.Do(ctx, session.Request{
		Method: http.MethodGet,
		Path:   "/api/notifications/unread-count",
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (r *apiRepository) MarkAsRead(ctx context.Context, notificationID string) error {
	return r.api.Do(ctx, session.Request{
		Method: http.MethodPut,
		Path:   "/api/notifications/" + url.PathEscape(notificationID) + "/read",
	}, nil)
}

func (r *apiRepository) MarkAllAsRead(ctx context.Context) error {
	return r.api.Do(ctx, session.Request{
		Method: http.MethodPut,
		Path:   "/api/notifications/read-all",
	}, nil)
}
