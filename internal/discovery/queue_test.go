package discovery

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/gravelmatch/internal/common/apperr"
)

func loadedQueue(t *testing.T, candidates ...Candidate) (*CandidateQueue, *MockRepository) {
	t.Helper()
	repo := new(MockRepository)
	repo.On("Discover", mock.Anything, "").Return(candidates, nil).Once()

	q := NewCandidateQueue(repo, zerolog.Nop())
	require.NoError(t, q.Load(context.Background(), FilterSet{}))
	return q, repo
}

func TestLoadReplacesBatchAndResetsCursor(t *testing.T) {
	q, repo := loadedQueue(t, rider("a", "Anna"), rider("b", "Bruno"))
	q.Advance()
	require.Equal(t, 1, q.Cursor())

	filter := FilterSet{Zone: "Toscana"}
	repo.On("Discover", mock.Anything, "zone=Toscana").Return([]Candidate{rider("c", "Carla")}, nil).Once()

	require.NoError(t, q.Load(context.Background(), filter))

	assert.Equal(t, 0, q.Cursor())
	cur, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "c", cur.ID)
	assert.Equal(t, 1, q.Remaining())
	repo.AssertExpectations(t)
}

func TestLoadFailureKeepsBatch(t *testing.T) {
	q, repo := loadedQueue(t, rider("a", "Anna"), rider("b", "Bruno"))
	q.Advance()
	repo.On("Discover", mock.Anything, "min_age=30").Return(nil, errors.New("502 bad gateway")).Once()

	err := q.Load(context.Background(), FilterSet{MinAge: intPtr(30)})

	assert.True(t, apperr.IsFetch(err))
	assert.Equal(t, 1, q.Cursor())
	assert.Equal(t, 2, q.Len())
	cur, _ := q.Current()
	assert.Equal(t, "b", cur.ID)
}

func TestAdvanceSaturates(t *testing.T) {
	q, _ := loadedQueue(t, rider("a", "Anna"))

	q.Advance()
	q.Advance()
	q.Advance()

	assert.Equal(t, 1, q.Cursor())
	assert.True(t, q.Exhausted())
	_, ok := q.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Remaining())
}

func TestCursorNeverDecreasesNorOverflows(t *testing.T) {
	q, _ := loadedQueue(t, rider("a", "A"), rider("b", "B"), rider("c", "C"), rider("d", "D"))
	rng := rand.New(rand.NewSource(7))

	prev := q.Cursor()
	for i := 0; i < 50; i++ {
		if rng.Intn(2) == 0 {
			q.Advance()
		} else {
			q.take()
		}
		cur := q.Cursor()
		assert.GreaterOrEqual(t, cur, prev)
		assert.LessOrEqual(t, cur, q.Len())
		prev = cur
	}
}

func TestRefreshReusesLastFilter(t *testing.T) {
	repo := new(MockRepository)
	q := NewCandidateQueue(repo, zerolog.Nop())
	batch := []Candidate{rider("a", "Anna"), rider("b", "Bruno")}
	repo.On("Discover", mock.Anything, "max_age=40").Return(batch, nil).Twice()

	require.NoError(t, q.Load(context.Background(), FilterSet{MaxAge: intPtr(40)}))
	q.Advance()
	q.Advance()
	require.NoError(t, q.Refresh(context.Background()))

	assert.Equal(t, 0, q.Cursor())
	assert.False(t, q.Exhausted())
	repo.AssertExpectations(t)
}

func TestBindLoadsOncePerApply(t *testing.T) {
	repo := new(MockRepository)
	q := NewCandidateQueue(repo, zerolog.Nop())
	store := NewFilterStore()
	q.Bind(store)

	repo.On("Discover", mock.Anything, "min_age=25&max_age=40&zone=Toscana").Return([]Candidate{rider("a", "Anna")}, nil).Once()
	repo.On("Discover", mock.Anything, "").Return([]Candidate{}, nil).Once()

	require.NoError(t, store.Stage(WithMinAge(intPtr(25))))
	require.NoError(t, store.Stage(WithMaxAge(intPtr(40))))
	require.NoError(t, store.Stage(WithZone("Toscana")))
	repo.AssertNotCalled(t, "Discover", mock.Anything, mock.Anything)

	require.NoError(t, store.Apply(context.Background()))
	assert.Equal(t, 1, q.Len())

	require.NoError(t, store.Reset(context.Background()))
	assert.Equal(t, 0, q.Len())

	repo.AssertNumberOfCalls(t, "Discover", 2)
}

func TestStaleBatchIsDropped(t *testing.T) {
	repo := new(MockRepository)
	q := NewCandidateQueue(repo, zerolog.Nop())
	release := make(chan struct{})

	repo.On("Discover", mock.Anything, "zone=Veneto").
		Run(func(mock.Arguments) { <-release }).
		Return([]Candidate{rider("old", "Old")}, nil).Once()
	repo.On("Discover", mock.Anything, "zone=Lazio").
		Return([]Candidate{rider("new", "New")}, nil).Once()

	slow := make(chan error, 1)
	go func() { slow <- q.Load(context.Background(), FilterSet{Zone: "Veneto"}) }()

	// wait until the slow load has registered itself
	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return q.gen == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, q.Load(context.Background(), FilterSet{Zone: "Lazio"}))
	close(release)
	require.NoError(t, <-slow)

	cur, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "new", cur.ID)
	assert.Equal(t, "Lazio", q.Filter().Zone)
}

func TestClearForgetsBatch(t *testing.T) {
	q, _ := loadedQueue(t, rider("a", "Anna"), rider("b", "Bruno"))
	q.Advance()

	q.Clear()

	_, ok := q.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Cursor())
	assert.False(t, q.Exhausted())
	assert.False(t, q.Filter().IsActive())
}

func TestClearDropsLoadInFlight(t *testing.T) {
	q, repo := loadedQueue(t, rider("a", "Anna"))
	release := make(chan struct{})
	started := make(chan struct{})
	repo.On("Discover", mock.Anything, "zone=Toscana").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]Candidate{rider("x", "Xenia")}, nil).Once()

	errCh := make(chan error, 1)
	go func() { errCh <- q.Load(context.Background(), FilterSet{Zone: "Toscana"}) }()
	<-started
	q.Clear()
	close(release)

	require.NoError(t, <-errCh)
	assert.Equal(t, 0, q.Len())
}
