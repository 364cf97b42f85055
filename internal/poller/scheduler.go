package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"parking-console/internal/logger"
)

var (
	ErrTaskExists      = errors.New("task already scheduled")
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrSchedulerClosed = errors.New("scheduler stopped")
)

// TaskFunc is one refresh. It must return when ctx is cancelled.
type TaskFunc func(ctx context.Context)

type task struct {
	name     string
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// Scheduler owns named periodic tasks. Each task runs in its own goroutine,
// fires once immediately and then on every tick. A tick that arrives while
// the previous run is still in progress is dropped by the ticker, so run N+1
// never starts before run N has returned.
type Scheduler struct {
	clock  Clock
	logger zerolog.Logger

	mu     sync.Mutex
	tasks  map[string]*task
	closed bool
}

func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		clock:  clock,
		logger: logger.WithComponent("scheduler"),
		tasks:  make(map[string]*task),
	}
}

// Add starts a named task. The task lives until Remove, Stop, or ctx is done.
func (s *Scheduler) Add(ctx context.Context, name string, interval time.Duration, fn TaskFunc) error {
	if interval <= 0 {
		return fmt.Errorf("task %q: %w", name, ErrInvalidInterval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSchedulerClosed
	}
	if _, ok := s.tasks[name]; ok {
		return fmt.Errorf("task %q: %w", name, ErrTaskExists)
	}

	taskCtx, cancel := context.WithCancel(ctx)
	t := &task{
		name:     name,
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.tasks[name] = t

	go s.run(taskCtx, t, fn)

	s.logger.Debug().Str("task", name).Dur("interval", interval).Msg("Task scheduled")

	return nil
}

func (s *Scheduler) run(ctx context.Context, t *task, fn TaskFunc) {
	defer close(t.done)

	ticker := s.clock.Ticker(t.interval)
	defer ticker.Stop()

	fn(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			fn(ctx)
		}
	}
}

// Remove cancels a task and waits for its goroutine to exit.
// It reports whether the task existed.
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	t, ok := s.tasks[name]
	delete(s.tasks, name)
	s.mu.Unlock()

	if !ok {
		return false
	}

	t.cancel()
	<-t.done

	s.logger.Debug().Str("task", name).Msg("Task stopped")

	return true
}

// Stop cancels every task, waits for all of them, and refuses further Adds.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	tasks := s.tasks
	s.tasks = make(map[string]*task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
	}
	for _, t := range tasks {
		<-t.done
	}
}

// Names lists the scheduled tasks in lexical order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
