// internal/messaging/service.go

package messaging

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/gravelmatch/internal/common/apperr"
	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
	"github.com/imadgeboyega/gravelmatch/internal/matches"
	"github.com/imadgeboyega/gravelmatch/internal/metrics"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

// MatchFinder locates the match a transcript belongs to
type MatchFinder interface {
	Find(ctx context.Context, id string) (matches.Match, error)
}

// IcebreakerSource suggests an opening line for a counterpart
type IcebreakerSource interface {
	Icebreaker(ctx context.Context, targetID string) string
}

// Transcript is the message history of one match, append-only between
// refreshes. It does not depend on the discovery queue or the poll.
type Transcript struct {
	repo     Repository
	matches  MatchFinder
	tips     IcebreakerSource
	log      zerolog.Logger
	debounce time.Duration

	mu          sync.Mutex
	matchID     string
	messages    []Message
	counterpart profile.Rider
	draft       string
	inFlight    map[string]bool // match ids with a send pending
	lastSent    string
	timer       *time.Timer
}

func NewTranscript(repo Repository, finder MatchFinder, tips IcebreakerSource, debounce time.Duration, log zerolog.Logger) *Transcript {
	return &Transcript{
		repo:     repo,
		matches:  finder,
		tips:     tips,
		log:      log,
		debounce: debounce,
		inFlight: make(map[string]bool),
	}
}

// Open loads the history of matchID and resolves the counterpart. A history
// failure leaves the current transcript untouched.
func (t *Transcript) Open(ctx context.Context, matchID string) error {
	list, err := t.repo.GetMessages(ctx, matchID)
	if err != nil {
		return apperr.Fetch("chat.history", err)
	}

	var counterpart profile.Rider
	if m, err := t.matches.Find(ctx, matchID); err != nil {
		t.log.Warn().Err(err).Str("match_id", matchID).Msg("chat counterpart lookup failed")
	} else {
		counterpart = m.Counterpart()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.matchID != matchID {
		t.draft = ""
		t.lastSent = ""
		t.stopTimerLocked()
	}
	t.matchID = matchID
	t.messages = append([]Message(nil), list...)
	t.counterpart = counterpart
	return nil
}

// Refresh reloads the history of the open match
func (t *Transcript) Refresh(ctx context.Context) error {
	t.mu.Lock()
	matchID := t.matchID
	t.mu.Unlock()
	if matchID == "" {
		return ErrNotOpen
	}

	list, err := t.repo.GetMessages(ctx, matchID)
	if err != nil {
		return apperr.Fetch("chat.history", err)
	}

	t.mu.Lock()
	if t.matchID == matchID {
		t.messages = append([]Message(nil), list...)
	}
	t.mu.Unlock()
	return nil
}

// Send posts text to the open match. Blank text never reaches the network,
// a second send while one is pending is refused, and resubmitting the same
// content inside the debounce window is suppressed.
func (t *Transcript) Send(ctx context.Context, text string) (*Message, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		metrics.ChatSend("rejected")
		return nil, apperr.Validation("chat.send", ErrEmptyMessage)
	}

	t.mu.Lock()
	req := SendMessageRequest{MatchID: t.matchID, Content: content}
	switch {
	case t.matchID == "":
		t.mu.Unlock()
		return nil, apperr.Validation("chat.send", ErrNotOpen)
	case t.inFlight[t.matchID]:
		t.mu.Unlock()
		metrics.ChatSend("suppressed")
		return nil, ErrSendInFlight
	case t.lastSent != "" && t.lastSent == content:
		t.mu.Unlock()
		metrics.ChatSend("suppressed")
		return nil, ErrDuplicateSend
	}
	if err := utils.ValidateStruct(req); err != nil {
		t.mu.Unlock()
		metrics.ChatSend("rejected")
		return nil, apperr.Validation("chat.send", err)
	}
	t.inFlight[req.MatchID] = true
	t.mu.Unlock()

	msg, err := t.repo.CreateMessage(ctx, req)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, req.MatchID)
	if err != nil {
		metrics.ChatSend("failed")
		t.log.Warn().Err(err).Str("match_id", req.MatchID).Msg("chat send failed")
		return nil, apperr.Submit("chat.send", err)
	}

	metrics.ChatSend("sent")
	// another chat was opened meanwhile: its draft and debounce are not ours
	if t.matchID != req.MatchID {
		return msg, nil
	}
	if !t.containsLocked(msg.ID) {
		t.messages = append(t.messages, *msg)
	}
	t.draft = ""
	t.armDebounceLocked(content)
	return msg, nil
}

// SendDraft sends the current draft
func (t *Transcript) SendDraft(ctx context.Context) (*Message, error) {
	return t.Send(ctx, t.Draft())
}

func (t *Transcript) containsLocked(id string) bool {
	if id == "" {
		return false
	}
	for _, m := range t.messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (t *Transcript) armDebounceLocked(content string) {
	t.stopTimerLocked()
	if t.debounce <= 0 {
		return
	}
	t.lastSent = content
	t.timer = time.AfterFunc(t.debounce, func() {
		t.mu.Lock()
		if t.lastSent == content {
			t.lastSent = ""
		}
		t.mu.Unlock()
	})
}

func (t *Transcript) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.lastSent = ""
}

// Icebreaker fills the draft with an opening line for the counterpart
func (t *Transcript) Icebreaker(ctx context.Context) (string, error) {
	t.mu.Lock()
	targetID := t.counterpart.ID
	t.mu.Unlock()
	if targetID == "" {
		return "", ErrNoCounterpart
	}

	line := t.tips.Icebreaker(ctx, targetID)

	t.mu.Lock()
	t.draft = line
	t.mu.Unlock()
	return line, nil
}

// SetDraft replaces the draft. Clearing it ends the debounce, so the same
// line can be retyped and sent again.
func (t *Transcript) SetDraft(text string) {
	t.mu.Lock()
	t.draft = text
	if strings.TrimSpace(text) == "" {
		t.stopTimerLocked()
	}
	t.mu.Unlock()
}

func (t *Transcript) Draft() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}

// Messages returns a copy of the transcript in server order
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

func (t *Transcript) Counterpart() profile.Rider {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counterpart
}

func (t *Transcript) MatchID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.matchID
}

// Sending reports whether a send to the open match is pending
func (t *Transcript) Sending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight[t.matchID]
}

// Close stops the debounce timer
func (t *Transcript) Close() {
	t.mu.Lock()
	t.stopTimerLocked()
	t.mu.Unlock()
}
