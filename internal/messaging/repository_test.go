package messaging

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/gravelmatch/internal/session"
)

type MockDoer struct {
	mock.Mock
}

func (m *MockDoer) Do(ctx context.Context, req session.Request, out interface{}) error {
	args := m.Called(ctx, req, out)
	return args.Error(0)
}

func TestRepositoryEscapesMatchID(t *testing.T) {
	doer := new(MockDoer)
	doer.On("Do", mock.Anything, session.Request{
		Method: http.MethodGet,
		Path:   "/api/chat/a%2Fb",
	}, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*[]Message)
		*out = []Message{{ID: "x", Content: "ciao"}}
	}).Return(nil).Once()

	list, err := NewRepository(doer).GetMessages(context.Background(), "a/b")

	require.NoError(t, err)
	assert.Len(t, list, 1)
	doer.AssertExpectations(t)
}

func TestRepositoryCreateMessage(t *testing.T) {
	doer := new(MockDoer)
	req := SendMessageRequest{MatchID: "m-1", Content: "ciao"}
	doer.On("Do", mock.Anything, session.Request{
		Method: http.MethodPost,
		Path:   "/api/chat",
		Body:   req,
	}, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*Message)
		out.ID, out.Content, out.IsMine = "x", "ciao", true
	}).Return(nil).Once()

	msg, err := NewRepository(doer).CreateMessage(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "x", msg.ID)
	assert.True(t, msg.IsMine)
}

func TestRepositoryPropagatesErrors(t *testing.T) {
	doer := new(MockDoer)
	boom := errors.New("boom")
	doer.On("Do", mock.Anything, mock.Anything, mock.Anything).Return(boom)

	_, err := NewRepository(doer).GetMessages(context.Background(), "m-1")
	assert.ErrorIs(t, err, boom)

	msg, err := NewRepository(doer).CreateMessage(context.Background(), SendMessageRequest{MatchID: "m-1", Content: "x"})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, msg)
}
