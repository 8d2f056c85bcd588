// internal/devserver/models.go

package devserver

import (
	"errors"
	"time"

	"github.com/imadgeboyega/gravelmatch/internal/discovery"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrSelfSwipe            = errors.New("cannot swipe on yourself")
	ErrNotParticipant       = errors.New("not authorized")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMatchNotFound        = errors.New("match not found")
)

// discoverLimit caps one discovery batch
const discoverLimit = 20

// account is a stored user with its credentials and fixture behavior
type account struct {
	rider        profile.Rider
	passwordHash []byte

	// likesBack makes every like on this rider mutual
	likesBack bool
	// autoReply is sent back after every message this rider receives
	autoReply string
}

type swipeRecord struct {
	action    discovery.Action
	createdAt time.Time
}

type matchRecord struct {
	id        string
	users     [2]string
	createdAt time.Time
}

func (m *matchRecord) has(userID string) bool {
	return m.users[0] == userID || m.users[1] == userID
}

func (m *matchRecord) other(userID string) string {
	if m.users[0] == userID {
		return m.users[1]
	}
	return m.users[0]
}

type messageRecord struct {
	id        string
	matchID   string
	senderID  string
	content   string
	createdAt time.Time
}

type notificationRecord struct {
	id        string
	userID    string
	kind      string
	title     string
	body      string
	matchID   string
	read      bool
	createdAt time.Time
}

// levelCompatibility mirrors the backend's "similar preferences" rule applied
// when the viewer did not pick a level filter
var levelCompatibility = map[profile.ExperienceLevel][]profile.ExperienceLevel{
	profile.LevelBeginner:     {profile.LevelBeginner, profile.LevelIntermediate},
	profile.LevelIntermediate: {profile.LevelBeginner, profile.LevelIntermediate, profile.LevelExpert},
	profile.LevelExpert:       {profile.LevelIntermediate, profile.LevelExpert},
}
