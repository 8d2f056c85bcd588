// internal/notification/models.go

package notification

import (
	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
)

// NotificationType represents different notification types
type NotificationType string

const (
	TypeMatch   NotificationType = "match"
	TypeMessage NotificationType = "message"
)

// Notification as listed by GET /api/notifications, newest first
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Read      bool             `json:"read"`
	CreatedAt utils.Timestamp  `json:"created_at"`
	Data      *Payload         `json:"data,omitempty"`
}

// Payload carries references to other entities
type Payload struct {
	MatchID string `json:"match_id,omitempty"`
}

// MatchID is the referenced match, if any
func (n Notification) MatchID() string {
	if n.Data == nil {
		return ""
	}
	return n.Data.MatchID
}

type UnreadCount struct {
	Count int `json:"count"`
}

// EventKind tells consumers what to react to
type EventKind int

const (
	EventMatch EventKind = iota
	EventMessage
	EventOther
	EventUnread
)

func (k EventKind) String() string {
	switch k {
	case EventMatch:
		return "match"
	case EventMessage:
		return "message"
	case EventUnread:
		return "unread"
	default:
		return "other"
	}
}

// Event is delivered on the coordinator side channel
type Event struct {
	Kind         EventKind
	Notification *Notification // nil for EventUnread
	Unread       int
}

// Route is where opening a notification leads
type Route struct {
	MatchID string
}

// HasChat reports whether the route opens a chat
func (r Route) HasChat() bool {
	return r.MatchID != ""
}

func kindOf(t NotificationType) EventKind {
	switch t {
	case TypeMatch:
		return EventMatch
	case TypeMessage:
		return EventMessage
	default:
		return EventOther
	}
}
