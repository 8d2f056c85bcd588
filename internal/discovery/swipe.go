// internal/discovery/swipe.go
// Swipe engine. Each decision walks Presented -> Deciding -> Advanced|Matched.
// The queue moves past the candidate when the decision begins, so a decided
// candidate is never shown again, whatever the server answers.

package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/gravelmatch/internal/common/apperr"
	"github.com/imadgeboyega/gravelmatch/internal/metrics"
)

type State int

const (
	StatePresented State = iota
	StateDeciding
	StateAdvanced
	StateMatched
)

func (s State) String() string {
	switch s {
	case StatePresented:
		return "presented"
	case StateDeciding:
		return "deciding"
	case StateAdvanced:
		return "advanced"
	case StateMatched:
		return "matched"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateAdvanced || s == StateMatched
}

type swipeEvent int

const (
	eventDecide swipeEvent = iota
	eventMutual
	eventNotMutual
	eventFailed
)

// transition is the whole swipe state machine
func transition(from State, ev swipeEvent) (State, error) {
	switch {
	case from == StatePresented && ev == eventDecide:
		return StateDeciding, nil
	case from == StateDeciding && ev == eventMutual:
		return StateMatched, nil
	case from == StateDeciding && (ev == eventNotMutual || ev == eventFailed):
		return StateAdvanced, nil
	default:
		return from, fmt.Errorf("%w: %s on event %d", ErrInvalidTransition, from, ev)
	}
}

type SwipeEngine struct {
	queue *CandidateQueue
	repo  Repository
	log   zerolog.Logger
}

func NewSwipeEngine(queue *CandidateQueue, repo Repository, log zerolog.Logger) *SwipeEngine {
	return &SwipeEngine{queue: queue, repo: repo, log: log}
}

// Decision is one in-flight swipe on a captured candidate
type Decision struct {
	engine    *SwipeEngine
	candidate Candidate
	action    Action

	mu        sync.Mutex
	state     State
	submitted bool
}

// Begin captures the current candidate and advances the queue right away,
// letting the UI move on before the server answers. On an exhausted queue
// it returns ErrNoCandidate and nothing changes.
func (e *SwipeEngine) Begin(action Action) (*Decision, error) {
	if !action.Valid() {
		return nil, apperr.Validation("discovery.swipe", fmt.Errorf("%w: %q", ErrUnknownAction, action))
	}

	candidate, ok := e.queue.take()
	if !ok {
		return nil, ErrNoCandidate
	}

	state, err := transition(StatePresented, eventDecide)
	if err != nil {
		return nil, err
	}

	return &Decision{
		engine:    e,
		candidate: candidate,
		action:    action,
		state:     state,
	}, nil
}

// Decide begins and submits in one call
func (e *SwipeEngine) Decide(ctx context.Context, action Action) (SwipeOutcome, error) {
	d, err := e.Begin(action)
	if err != nil {
		return SwipeOutcome{}, err
	}
	return d.Submit(ctx)
}

func (d *Decision) Candidate() Candidate { return d.candidate }

func (d *Decision) Action() Action { return d.action }

func (d *Decision) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Submit sends the decision. A failed submission is not retried: the
// decision resolves to Advanced and a SubmitError is returned once.
func (d *Decision) Submit(ctx context.Context) (SwipeOutcome, error) {
	d.mu.Lock()
	if d.submitted {
		d.mu.Unlock()
		return SwipeOutcome{}, ErrAlreadySubmitted
	}
	d.submitted = true
	d.mu.Unlock()

	log := d.engine.log.With().
		Str("target_user_id", d.candidate.ID).
		Str("action", string(d.action)).
		Logger()

	resp, err := d.engine.repo.Swipe(ctx, SwipeRequest{
		TargetUserID: d.candidate.ID,
		Action:       d.action,
	})
	if err != nil {
		log.Warn().Err(err).Msg("swipe lost, candidate stays skipped")
		out, terr := d.resolve(eventFailed, nil)
		if terr != nil {
			return out, terr
		}
		metrics.SwipeResolved(string(d.action), "failed")
		return out, apperr.Submit("discovery.swipe", err)
	}

	if d.action == ActionLike && resp.Match {
		ev := &MatchEvent{Candidate: d.candidate}
		if resp.MatchID != nil {
			ev.MatchID = *resp.MatchID
		}
		out, err := d.resolve(eventMutual, ev)
		if err != nil {
			return out, err
		}
		metrics.SwipeResolved(string(d.action), "matched")
		log.Info().Str("match_id", ev.MatchID).Msg("mutual like")
		return out, nil
	}

	out, err := d.resolve(eventNotMutual, nil)
	if err != nil {
		return out, err
	}
	metrics.SwipeResolved(string(d.action), "advanced")
	return out, nil
}

func (d *Decision) resolve(ev swipeEvent, match *MatchEvent) (SwipeOutcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := transition(d.state, ev)
	if err != nil {
		return SwipeOutcome{}, err
	}
	d.state = next
	return SwipeOutcome{
		Candidate: d.candidate,
		Action:    d.action,
		State:     next,
		Event:     match,
	}, nil
}
