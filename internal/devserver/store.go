// internal/devserver/store.go
// In-memory backing store for the development API

package devserver

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
	"github.com/imadgeboyega/gravelmatch/internal/discovery"
	"github.com/imadgeboyega/gravelmatch/internal/matches"
	"github.com/imadgeboyega/gravelmatch/internal/messaging"
	"github.com/imadgeboyega/gravelmatch/internal/notification"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

type Store struct {
	bcryptCost int
	now        func() time.Time

	mu            sync.RWMutex
	accounts      map[string]*account // by id
	byEmail       map[string]string
	order         []string
	swipes        map[string]map[string]swipeRecord // user -> target
	matches       []*matchRecord
	messages      []*messageRecord
	notifications []*notificationRecord
}

func NewStore(bcryptCost int) *Store {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		bcryptCost: bcryptCost,
		now:        time.Now,
		accounts:   make(map[string]*account),
		byEmail:    make(map[string]string),
		swipes:     make(map[string]map[string]swipeRecord),
	}
}

// CreateUser stores a new account. The rider id is assigned here.
func (s *Store) CreateUser(rider profile.Rider, password string) (profile.Rider, error) {
	email := strings.ToLower(strings.TrimSpace(rider.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return profile.Rider{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return profile.Rider{}, ErrEmailTaken
	}

	rider.ID = uuid.New().String()
	rider.Email = email
	rider.CreatedAt = utils.NewTimestamp(s.now())
	s.accounts[rider.ID] = &account{rider: rider, passwordHash: hash}
	s.byEmail[email] = rider.ID
	s.order = append(s.order, rider.ID)
	return rider, nil
}

// Authenticate checks the password of email
func (s *Store) Authenticate(email, password string) (profile.Rider, error) {
	s.mu.RLock()
	acc, ok := s.accountByEmailLocked(email)
	s.mu.RUnlock()
	if !ok {
		return profile.Rider{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return profile.Rider{}, ErrInvalidCredentials
	}
	return acc.rider, nil
}

func (s *Store) UserByEmail(email string) (profile.Rider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accountByEmailLocked(email)
	if !ok {
		return profile.Rider{}, false
	}
	return acc.rider, true
}

func (s *Store) accountByEmailLocked(email string) (*account, bool) {
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, false
	}
	return s.accounts[id], true
}

// Discover lists riders the viewer has not swiped on yet, in signup order
func (s *Store) Discover(viewerID string, filter discovery.FilterSet) []profile.Rider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	viewer, ok := s.accounts[viewerID]
	if !ok {
		return nil
	}
	swiped := s.swipes[viewerID]

	levels := []profile.ExperienceLevel(nil)
	if filter.ExperienceLevel != profile.LevelNone {
		levels = []profile.ExperienceLevel{filter.ExperienceLevel}
	} else if compatible, ok := levelCompatibility[viewer.rider.ExperienceLevel]; ok {
		levels = compatible
	}

	result := make([]profile.Rider, 0, discoverLimit)
	for _, id := range s.order {
		if len(result) == discoverLimit {
			break
		}
		if id == viewerID {
			continue
		}
		if _, done := swiped[id]; done {
			continue
		}
		r := s.accounts[id].rider
		if !r.ProfileCompleted {
			continue
		}
		if levels != nil && !lo.Contains(levels, r.ExperienceLevel) {
			continue
		}
		if !matchesFilter(r, filter) {
			continue
		}
		r.Email = ""
		result = append(result, r)
	}
	return result
}

func matchesFilter(r profile.Rider, f discovery.FilterSet) bool {
	if !inRange(r.Age, f.MinAge, f.MaxAge) {
		return false
	}
	if !inRange(r.AvgDistance, f.MinDistance, f.MaxDistance) {
		return false
	}
	if f.Zone != "" {
		zone := strings.ToLower(f.Zone)
		if !strings.Contains(strings.ToLower(r.PreferredZone), zone) &&
			!strings.Contains(strings.ToLower(r.Location), zone) {
			return false
		}
	}
	return true
}

// inRange treats an unknown value as outside any set bound
func inRange(v, lower, upper *int) bool {
	if lower == nil && upper == nil {
		return true
	}
	if v == nil {
		return false
	}
	if lower != nil && *v < *lower {
		return false
	}
	if upper != nil && *v > *upper {
		return false
	}
	return true
}

// Swipe records a decision. A like is mutual when the target already liked
// the viewer or is a fixture that likes everyone back.
func (s *Store) Swipe(viewerID, targetID string, action discovery.Action) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if viewerID == targetID {
		return "", false, ErrSelfSwipe
	}
	viewer, ok := s.accounts[viewerID]
	if !ok {
		return "", false, ErrUserNotFound
	}
	target, ok := s.accounts[targetID]
	if !ok {
		return "", false, ErrUserNotFound
	}

	now := s.now()
	s.recordSwipeLocked(viewerID, targetID, action, now)
	if action != discovery.ActionLike {
		return "", false, nil
	}

	if target.likesBack {
		s.recordSwipeLocked(targetID, viewerID, discovery.ActionLike, now)
	}
	reverse, ok := s.swipes[targetID][viewerID]
	if !ok || reverse.action != discovery.ActionLike {
		return "", false, nil
	}

	if existing := s.matchBetweenLocked(viewerID, targetID); existing != nil {
		return existing.id, true, nil
	}

	m := &matchRecord{id: uuid.New().String(), users: [2]string{viewerID, targetID}, createdAt: now}
	s.matches = append(s.matches, m)
	s.notifyLocked(viewerID, "match", "Nuovo match!",
		fmt.Sprintf("Tu e %s vi piacete a vicenda", target.rider.Name), m.id)
	s.notifyLocked(targetID, "match", "Nuovo match!",
		fmt.Sprintf("Tu e %s vi piacete a vicenda", viewer.rider.Name), m.id)
	return m.id, true, nil
}

func (s *Store) recordSwipeLocked(userID, targetID string, action discovery.Action, at time.Time) {
	if s.swipes[userID] == nil {
		s.swipes[userID] = make(map[string]swipeRecord)
	}
	s.swipes[userID][targetID] = swipeRecord{action: action, createdAt: at}
}

func (s *Store) matchBetweenLocked(a, b string) *matchRecord {
	m, _ := lo.Find(s.matches, func(m *matchRecord) bool { return m.has(a) && m.has(b) })
	return m
}

// Matches lists the viewer's matches with the latest message preview
func (s *Store) Matches(viewerID string) []matches.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]matches.Match, 0)
	for _, m := range s.matches {
		if !m.has(viewerID) {
			continue
		}
		out := matches.Match{ID: m.id, CreatedAt: utils.NewTimestamp(m.createdAt)}
		if acc, ok := s.accounts[m.other(viewerID)]; ok {
			r := acc.rider
			r.Email = ""
			out.User = &r
		}
		if last := s.lastMessageLocked(m.id); last != nil {
			out.LastMessage = &matches.LastMessage{
				Content:   last.content,
				CreatedAt: utils.NewTimestamp(last.createdAt),
				SenderID:  last.senderID,
			}
		}
		result = append(result, out)
	}
	return result
}

func (s *Store) lastMessageLocked(matchID string) *messageRecord {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].matchID == matchID {
			return s.messages[i]
		}
	}
	return nil
}

func (s *Store) participantMatchLocked(viewerID, matchID string) (*matchRecord, error) {
	m, ok := lo.Find(s.matches, func(m *matchRecord) bool { return m.id == matchID })
	if !ok || !m.has(viewerID) {
		return nil, ErrNotParticipant
	}
	return m, nil
}

// Messages returns the chat of matchID oldest first, from the viewer's side
func (s *Store) Messages(viewerID, matchID string) ([]messaging.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.participantMatchLocked(viewerID, matchID); err != nil {
		return nil, err
	}

	result := make([]messaging.Message, 0)
	for _, msg := range s.messages {
		if msg.matchID == matchID {
			result = append(result, toMessage(msg, viewerID))
		}
	}
	return result, nil
}

// SendMessage appends a message and notifies the other participant.
// Fixture riders with an auto reply answer right away.
func (s *Store) SendMessage(viewerID, matchID, content string) (messaging.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.participantMatchLocked(viewerID, matchID)
	if err != nil {
		return messaging.Message{}, err
	}

	now := s.now()
	msg := s.appendMessageLocked(matchID, viewerID, content, now)
	sender := s.accounts[viewerID].rider.Name
	recipientID := m.other(viewerID)
	s.notifyLocked(recipientID, "message", "Nuovo messaggio", fmt.Sprintf("%s: %s", sender, preview(content)), matchID)

	if recipient, ok := s.accounts[recipientID]; ok && recipient.autoReply != "" {
		s.appendMessageLocked(matchID, recipientID, recipient.autoReply, now.Add(time.Millisecond))
		s.notifyLocked(viewerID, "message", "Nuovo messaggio",
			fmt.Sprintf("%s: %s", recipient.rider.Name, preview(recipient.autoReply)), matchID)
	}

	return toMessage(msg, viewerID), nil
}

func (s *Store) appendMessageLocked(matchID, senderID, content string, at time.Time) *messageRecord {
	msg := &messageRecord{
		id:        uuid.New().String(),
		matchID:   matchID,
		senderID:  senderID,
		content:   content,
		createdAt: at,
	}
	s.messages = append(s.messages, msg)
	return msg
}

func toMessage(msg *messageRecord, viewerID string) messaging.Message {
	return messaging.Message{
		ID:        msg.id,
		Content:   msg.content,
		SenderID:  msg.senderID,
		IsMine:    msg.senderID == viewerID,
		CreatedAt: utils.NewTimestamp(msg.createdAt),
	}
}

func preview(content string) string {
	const limit = 60
	r := []rune(content)
	if len(r) <= limit {
		return content
	}
	return string(r[:limit]) + "…"
}

func (s *Store) notifyLocked(userID, kind, title, body, matchID string) {
	s.notifications = append(s.notifications, &notificationRecord{
		id:        uuid.New().String(),
		userID:    userID,
		kind:      kind,
		title:     title,
		body:      body,
		matchID:   matchID,
		createdAt: s.now(),
	})
}

// Notifications lists the newest limit entries of the viewer
func (s *Store) Notifications(viewerID string, limit int) []notification.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// stored in time order, listed newest first
	var mine []*notificationRecord
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if limit > 0 && len(mine) == limit {
			break
		}
		if s.notifications[i].userID == viewerID {
			mine = append(mine, s.notifications[i])
		}
	}

	return lo.Map(mine, func(n *notificationRecord, _ int) notification.Notification {
		out := notification.Notification{
			ID:        n.id,
			Type:      notification.NotificationType(n.kind),
			Title:     n.title,
			Body:      n.body,
			Read:      n.read,
			CreatedAt: utils.NewTimestamp(n.createdAt),
		}
		if n.matchID != "" {
			out.Data = &notification.Payload{MatchID: n.matchID}
		}
		return out
	})
}

func (s *Store) UnreadCount(viewerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.CountBy(s.notifications, func(n *notificationRecord) bool {
		return n.userID == viewerID && !n.read
	})
}

func (s *Store) MarkRead(viewerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := lo.Find(s.notifications, func(n *notificationRecord) bool { return n.id == id })
	if !ok || n.userID != viewerID {
		return ErrNotificationNotFound
	}
	n.read = true
	return nil
}

func (s *Store) MarkAllRead(viewerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.userID == viewerID {
			n.read = true
		}
	}
}

// MatchTips builds conversation starters from the two riding profiles
func (s *Store) MatchTips(viewerID, targetID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	viewer, ok := s.accounts[viewerID]
	if !ok {
		return "", ErrUserNotFound
	}
	target, ok := s.accounts[targetID]
	if !ok {
		return "", ErrUserNotFound
	}

	t := target.rider
	zone := lo.Ternary(t.PreferredZone != "", t.PreferredZone, "la tua zona")
	first := fmt.Sprintf("Ciao %s! Qual è il tuo giro gravel preferito in %s?", t.Name, zone)

	var second string
	switch {
	case t.AvgDistance != nil && viewer.rider.AvgDistance != nil && *t.AvgDistance > *viewer.rider.AvgDistance:
		second = fmt.Sprintf("Fai uscite da ~%d km: mi porteresti su uno dei tuoi percorsi?", *t.AvgDistance)
	case t.ExperienceLevel != profile.LevelNone:
		second = fmt.Sprintf("Da %s, che bici e gomme consigli per lo sterrato?", strings.ToLower(t.ExperienceLevel.Label()))
	default:
		second = "Ti va di organizzare un giro insieme nel weekend?"
	}
	return "1. " + first + "\n2. " + second, nil
}
