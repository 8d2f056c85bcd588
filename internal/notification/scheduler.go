// internal/notification/scheduler.go

package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PollScheduler runs a task on a fixed interval until stopped, the context
// is cancelled or the session ends
type PollScheduler struct {
	task     func(context.Context)
	interval time.Duration
	log      zerolog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	exited   chan struct{}
	wg       sync.WaitGroup
}

// NewPollScheduler creates a new poll scheduler
func NewPollScheduler(task func(context.Context), interval time.Duration, log zerolog.Logger) *PollScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &PollScheduler{
		task:     task,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

// Start launches the loop. sessionDone ends it like Stop does.
func (s *PollScheduler) Start(ctx context.Context, sessionDone <-chan struct{}) {
	s.wg.Add(1)
	go s.run(ctx, sessionDone)
}

func (s *PollScheduler) run(ctx context.Context, sessionDone <-chan struct{}) {
	defer s.wg.Done()
	defer close(s.exited)

	// in-flight polls are cancelled too, not just the timer
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
		case <-sessionDone:
		case <-ctx.Done():
		}
		cancel()
	}()

	s.log.Debug().Dur("interval", s.interval).Msg("starting unread poll")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.task(ctx)

	for {
		select {
		case <-ticker.C:
			s.task(ctx)
		case <-ctx.Done():
			s.log.Debug().Msg("stopping unread poll")
			return
		}
	}
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (s *PollScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// Exited is closed once the loop has returned, whatever stopped it
func (s *PollScheduler) Exited() <-chan struct{} {
	return s.exited
}
