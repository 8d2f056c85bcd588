// internal/notification/service.go
// Coordinator keeps the unread badge and notification list of one session.
//
// The unread count is assigned by the poll and otherwise only adjusted
// arithmetically by read transitions; list fetches never touch it.

package notification

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/imadgeboyega/gravelmatch/internal/common/apperr"
	"github.com/imadgeboyega/gravelmatch/internal/metrics"
	"github.com/imadgeboyega/gravelmatch/internal/session"
)

const eventBuffer = 16

// SessionSignal is the part of the session the coordinator watches
type SessionSignal interface {
	Authenticated() bool
	Done() <-chan struct{}
}

type Options struct {
	PollInterval time.Duration
	PageSize     int
}

type Coordinator struct {
	repo     Repository
	sess     SessionSignal
	log      zerolog.Logger
	interval time.Duration
	pageSize int
	events   chan Event

	mu        sync.Mutex
	items     []Notification
	unread    int
	seen      map[string]struct{}
	primed    bool
	session   <-chan struct{} // Done of the session the state belongs to
	scheduler *PollScheduler
}

func NewCoordinator(repo Repository, sess SessionSignal, opts Options, log zerolog.Logger) *Coordinator {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	return &Coordinator{
		repo:     repo,
		sess:     sess,
		log:      log,
		interval: opts.PollInterval,
		pageSize: opts.PageSize,
		events:   make(chan Event, eventBuffer),
		seen:     make(map[string]struct{}),
	}
}

// Start fetches the list once and starts the unread poll. The poll stops on
// Stop, on ctx cancellation, or when the session ends. A list fetch failure
// is returned but does not prevent polling.
func (c *Coordinator) Start(ctx context.Context) error {
	if !c.sess.Authenticated() {
		return session.ErrNotAuthenticated
	}

	done := c.sess.Done()

	c.mu.Lock()
	sameSession := c.session == done
	if sameSession && c.scheduler != nil && !exited(c.scheduler) {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	// state of a previous session must not leak into this one
	if !sameSession {
		c.Reset()
	}

	c.mu.Lock()
	c.session = done
	c.scheduler = NewPollScheduler(c.poll, c.interval, c.log)
	c.scheduler.Start(ctx, done)
	c.mu.Unlock()

	return c.fetchList(ctx)
}

// Reset stops the poll and forgets the list, the unread count and the
// pending events. The next fetched page is treated as history again.
func (c *Coordinator) Reset() {
	c.Stop()

	c.mu.Lock()
	c.items = nil
	c.unread = 0
	c.seen = make(map[string]struct{})
	c.primed = false
	c.session = nil
	c.mu.Unlock()

	for {
		select {
		case <-c.events:
		default:
			metrics.UnreadChanged(0)
			return
		}
	}
}

// Stop cancels the poll and waits for it. The coordinator can be started again.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	sched := c.scheduler
	c.scheduler = nil
	c.mu.Unlock()

	if sched != nil {
		sched.Stop()
	}
}

// Running reports whether a poll loop is active
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scheduler != nil && !exited(c.scheduler)
}

func exited(s *PollScheduler) bool {
	select {
	case <-s.Exited():
		return true
	default:
		return false
	}
}

// Refresh refetches the list and the unread count (pull to refresh)
func (c *Coordinator) Refresh(ctx context.Context) error {
	if err := c.fetchList(ctx); err != nil {
		return err
	}
	return c.Poll(ctx)
}

// Poll fetches the unread count once and assigns it
func (c *Coordinator) Poll(ctx context.Context) error {
	count, err := c.repo.GetUnreadCount(ctx)
	if err != nil {
		metrics.PollCompleted(false, 0)
		return apperr.Fetch("notifications.unread", err)
	}
	if count < 0 {
		count = 0
	}

	c.mu.Lock()
	prev := c.unread
	c.unread = count
	c.mu.Unlock()

	metrics.PollCompleted(true, count)
	if count > prev {
		c.emit(Event{Kind: EventUnread, Unread: count})
	}
	return nil
}

func (c *Coordinator) poll(ctx context.Context) {
	if err := c.Poll(ctx); err != nil && ctx.Err() == nil {
		c.log.Warn().Err(err).Msg("unread poll failed")
	}
}

func (c *Coordinator) fetchList(ctx context.Context) error {
	list, err := c.repo.GetNotifications(ctx, c.pageSize)
	if err != nil {
		c.log.Warn().Err(err).Msg("notification list fetch failed")
		return apperr.Fetch("notifications.list", err)
	}

	c.mu.Lock()
	c.items = append([]Notification(nil), list...)
	var fresh []Notification
	for _, n := range list {
		if _, ok := c.seen[n.ID]; ok {
			continue
		}
		c.seen[n.ID] = struct{}{}
		// the first page is history, only later arrivals are news
		if c.primed && !n.Read {
			fresh = append(fresh, n)
		}
	}
	c.primed = true
	unread := c.unread
	c.mu.Unlock()

	for i := range fresh {
		n := fresh[i]
		c.emit(Event{Kind: kindOf(n.Type), Notification: &n, Unread: unread})
	}
	return nil
}

// MarkRead acknowledges one notification, flags it read and decrements the
// unread count floored at zero. Nothing changes locally if the ack fails.
func (c *Coordinator) MarkRead(ctx context.Context, id string) error {
	if err := c.repo.MarkAsRead(ctx, id); err != nil {
		return apperr.Submit("notifications.read", err)
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Read = true
		}
	}
	c.unread = max(0, c.unread-1)
	unread := c.unread
	c.mu.Unlock()

	metrics.UnreadChanged(unread)
	return nil
}

// MarkAllRead acknowledges everything, flags every entry read and zeroes the count
func (c *Coordinator) MarkAllRead(ctx context.Context) error {
	if err := c.repo.MarkAllAsRead(ctx); err != nil {
		return apperr.Submit("notifications.read_all", err)
	}

	c.mu.Lock()
	for i := range c.items {
		c.items[i].Read = true
	}
	c.unread = 0
	c.mu.Unlock()

	metrics.UnreadChanged(0)
	return nil
}

// Open resolves where a notification leads and marks it read, as one action.
// The route is returned even when the ack fails, together with the error.
func (c *Coordinator) Open(ctx context.Context, id string) (Route, error) {
	c.mu.Lock()
	n, ok := lo.Find(c.items, func(n Notification) bool { return n.ID == id })
	c.mu.Unlock()
	if !ok {
		return Route{}, fmt.Errorf("notification %s not loaded", id)
	}

	route := Route{MatchID: n.MatchID()}
	return route, c.MarkRead(ctx, id)
}

// Events is the side channel for new match and message notifications and
// unread increases. Events are dropped when nobody keeps up.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

func (c *Coordinator) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Debug().Str("kind", ev.Kind.String()).Msg("event dropped, consumer lagging")
	}
}

func (c *Coordinator) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Items returns a copy of the loaded list
func (c *Coordinator) Items() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}

// HasUnreadItems reports whether any loaded entry is unread
func (c *Coordinator) HasUnreadItems() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.SomeBy(c.items, func(n Notification) bool { return !n.Read })
}

// Badge is the bell label: empty at zero, capped at "9+"
func (c *Coordinator) Badge() string {
	return BadgeText(c.Unread())
}

func BadgeText(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > 9:
		return "9+"
	default:
		return strconv.Itoa(unread)
	}
}
