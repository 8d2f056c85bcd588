// internal/matches/models.go

package matches

import (
	"errors"

	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

var ErrMatchNotFound = errors.New("match not found")

// Match pairs the viewer with a counterpart. The id is the chat routing key.
type Match struct {
	ID          string          `json:"id"`
	User        *profile.Rider  `json:"user"`
	LastMessage *LastMessage    `json:"last_message"`
	CreatedAt   utils.Timestamp `json:"created_at"`
}

// LastMessage is the denormalized preview shown on the matches screen
type LastMessage struct {
	Content   string          `json:"content"`
	CreatedAt utils.Timestamp `json:"created_at"`
	SenderID  string          `json:"sender_id"`
}

// Counterpart returns the other rider, or an empty snapshot when the
// account no longer exists
func (m Match) Counterpart() profile.Rider {
	if m.User == nil {
		return profile.Rider{}
	}
	return *m.User
}
