// internal/messaging/models.go

package messaging

import (
	"errors"

	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
)

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrSendInFlight  = errors.New("a message is already being sent")
	ErrDuplicateSend = errors.New("same message was just sent")
	ErrNoCounterpart = errors.New("chat counterpart unknown")
	ErrNotOpen       = errors.New("transcript not open")
)

// Message represents a chat message. Immutable once created.
type Message struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	SenderID  string          `json:"sender_id"`
	IsMine    bool            `json:"is_mine"`
	CreatedAt utils.Timestamp `json:"created_at"`
}

// SendMessageRequest is the body of POST /api/chat
type SendMessageRequest struct {
	MatchID string `json:"match_id" validate:"required"`
	Content string `json:"content" validate:"notblank,max=2000"`
}
