// internal/discovery/models.go

package discovery

import (
	"errors"

	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

var (
	ErrNoCandidate       = errors.New("no candidate to decide on")
	ErrUnknownAction     = errors.New("action must be like or dislike")
	ErrAlreadySubmitted  = errors.New("decision already submitted")
	ErrInvalidTransition = errors.New("invalid swipe state transition")
)

// Candidate is a read-only rider snapshot surfaced by discovery
type Candidate = profile.Rider

// FilterSet is the discovery search constraint set. Inverted ranges are
// allowed; the server simply returns fewer (or no) riders.
type FilterSet struct {
	MinAge          *int                    `json:"min_age,omitempty" validate:"omitempty,min=1"`
	MaxAge          *int                    `json:"max_age,omitempty" validate:"omitempty,min=1"`
	MinDistance     *int                    `json:"min_distance,omitempty" validate:"omitempty,min=1"`
	MaxDistance     *int                    `json:"max_distance,omitempty" validate:"omitempty,min=1"`
	ExperienceLevel profile.ExperienceLevel `json:"experience_level,omitempty" validate:"omitempty,oneof=beginner intermediate expert"`
	Zone            string                  `json:"zone,omitempty"`
}

type Action string

const (
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
)

func (a Action) Valid() bool {
	return a == ActionLike || a == ActionDislike
}

// SwipeRequest is the body of POST /api/swipe
type SwipeRequest struct {
	TargetUserID string `json:"target_user_id"`
	Action       Action `json:"action"`
}

// SwipeResponse reports whether the like was mutual
type SwipeResponse struct {
	Success bool    `json:"success"`
	Match   bool    `json:"match"`
	MatchID *string `json:"match_id"`
}

// MatchEvent is raised once per mutual like
type MatchEvent struct {
	Candidate Candidate
	MatchID   string
}

// SwipeOutcome is the resolved result of one decision
type SwipeOutcome struct {
	Candidate Candidate
	Action    Action
	State     State
	Event     *MatchEvent
}
