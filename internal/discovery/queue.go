// internal/discovery/queue.go
// Candidate queue: one fetched batch plus a cursor that only moves forward

package discovery

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/gravelmatch/internal/common/apperr"
	"github.com/imadgeboyega/gravelmatch/internal/metrics"
)

type CandidateQueue struct {
	repo Repository
	log  zerolog.Logger

	mu     sync.Mutex
	batch  []Candidate
	cursor int
	filter FilterSet
	gen    uint64 // bumped per load; older answers are dropped
	loaded bool
}

func NewCandidateQueue(repo Repository, log zerolog.Logger) *CandidateQueue {
	return &CandidateQueue{repo: repo, log: log}
}

// Bind reloads the queue on every change of store's active filter
func (q *CandidateQueue) Bind(store *FilterStore) {
	store.OnChange(q.Load)
}

// Load fetches a batch for filter. On success the batch is replaced and the
// cursor reset; on failure the previous batch and cursor are kept.
func (q *CandidateQueue) Load(ctx context.Context, filter FilterSet) error {
	q.mu.Lock()
	q.gen++
	gen := q.gen
	q.filter = filter.clone()
	q.mu.Unlock()

	candidates, err := q.repo.Discover(ctx, filter.Query())
	if err != nil {
		q.log.Warn().Err(err).Str("query", filter.Query()).Msg("discovery fetch failed")
		return apperr.Fetch("discovery.load", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if gen != q.gen {
		q.log.Debug().Uint64("gen", gen).Msg("dropping stale discovery batch")
		return nil
	}
	q.batch = append([]Candidate(nil), candidates...)
	q.cursor = 0
	q.loaded = true

	metrics.BatchLoaded(len(candidates))
	q.log.Info().Int("candidates", len(candidates)).Msg("discovery batch loaded")
	return nil
}

// Refresh reloads with the last used filter and always resets the cursor on success
func (q *CandidateQueue) Refresh(ctx context.Context) error {
	q.mu.Lock()
	filter := q.filter.clone()
	q.mu.Unlock()
	return q.Load(ctx, filter)
}

// Clear forgets the batch and the last filter, for a new session. Loads
// still in flight are discarded when they return.
func (q *CandidateQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gen++
	q.batch = nil
	q.cursor = 0
	q.loaded = false
	q.filter = FilterSet{}
}

// Current returns the candidate at the cursor, or false when exhausted
func (q *CandidateQueue) Current() (Candidate, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.currentLocked()
}

func (q *CandidateQueue) currentLocked() (Candidate, bool) {
	if q.cursor >= len(q.batch) {
		return Candidate{}, false
	}
	return q.batch[q.cursor], true
}

// Advance moves the cursor by one, saturating at the batch length
func (q *CandidateQueue) Advance() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.advanceLocked()
}

func (q *CandidateQueue) advanceLocked() {
	if q.cursor < len(q.batch) {
		q.cursor++
	}
}

// take captures the current candidate by value and advances past it in one step
func (q *CandidateQueue) take() (Candidate, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	c, ok := q.currentLocked()
	if ok {
		q.advanceLocked()
	}
	return c, ok
}

func (q *CandidateQueue) Cursor() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cursor
}

func (q *CandidateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.batch)
}

// Remaining is the number of candidates not yet decided on
func (q *CandidateQueue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.batch) - q.cursor
}

// Exhausted is true once every candidate of a loaded batch was consumed
func (q *CandidateQueue) Exhausted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loaded && q.cursor >= len(q.batch)
}

// Filter is the filter of the most recent load
func (q *CandidateQueue) Filter() FilterSet {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.filter.clone()
}
