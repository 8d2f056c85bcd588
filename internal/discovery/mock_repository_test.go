package discovery

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Discover(ctx context.Context, query string) ([]Candidate, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Candidate), args.Error(1)
}

func (m *MockRepository) Swipe(ctx context.Context, req SwipeRequest) (*SwipeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SwipeResponse), args.Error(1)
}

func rider(id, name string) Candidate {
	return profile.Rider{ID: id, Name: name}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
