package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"parking-console/internal/client"
	"parking-console/internal/logger"
	"parking-console/pkg/models"
)

const (
	DefaultInterval        = 5 * time.Second
	DefaultRecordsInterval = time.Minute
	DefaultTimeout         = 10 * time.Second
)

var ErrUnknownView = errors.New("unknown view")

// Source is the subset of the backend client the synchronizer polls.
type Source interface {
	GetFeeds(ctx context.Context) (models.FeedListResponse, error)
	GetCameraConfig(ctx context.Context) (models.CameraConfig, error)
	GetFeedStats(ctx context.Context) (models.FeedStats, error)
	GetMulticamFeeds(ctx context.Context) ([]models.Feed, error)
	GetDashboardStats(ctx context.Context) (models.DashboardStats, error)
}

// RecordLoader fetches and normalizes the record set.
type RecordLoader interface {
	Load(ctx context.Context) ([]models.Record, error)
}

type Options struct {
	// Intervals per view name. Missing entries use DefaultInterval
	// (DefaultRecordsInterval for records).
	Intervals map[string]time.Duration
	Timeout   time.Duration
	Clock     Clock
}

// Synchronizer keeps a View in step with the backend, one loop per slice.
type Synchronizer struct {
	view    *View
	src     Source
	records RecordLoader
	sched   *Scheduler
	clock   Clock
	opts    Options
	logger  zerolog.Logger
}

// New builds a synchronizer. records may be nil, in which case the records
// view cannot be started.
func New(view *View, src Source, records RecordLoader, opts Options) *Synchronizer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}

	return &Synchronizer{
		view:    view,
		src:     src,
		records: records,
		sched:   NewScheduler(opts.Clock),
		clock:   opts.Clock,
		opts:    opts,
		logger:  logger.WithComponent("synchronizer"),
	}
}

func (s *Synchronizer) View() *View { return s.view }

// Start begins polling the named views, or every available view when none are named.
func (s *Synchronizer) Start(ctx context.Context, views ...string) error {
	if len(views) == 0 {
		views = AllViews
		if s.records == nil {
			views = AllViews[:len(AllViews)-1]
		}
	}

	for _, name := range views {
		if err := s.StartView(ctx, name); err != nil {
			return err
		}
	}

	return nil
}

// StartView begins polling a single view.
func (s *Synchronizer) StartView(ctx context.Context, name string) error {
	fn, err := s.task(name)
	if err != nil {
		return err
	}

	interval := s.interval(name)
	s.logger.Info().Str("view", name).Dur("interval", interval).Msg("Starting poll loop")

	return s.sched.Add(ctx, name, interval, func(ctx context.Context) {
		_ = fn(ctx)
	})
}

// Refresh polls the named views once, synchronously, outside the scheduler.
// Failures are applied exactly as in the loops; the first error is returned.
func (s *Synchronizer) Refresh(ctx context.Context, views ...string) error {
	var firstErr error

	for _, name := range views {
		fn, err := s.task(name)
		if err != nil {
			return err
		}
		if err := fn(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("refresh %s: %w", name, err)
		}
	}

	return firstErr
}

// StopView stops one view's loop. Results of its in-flight fetch are discarded.
func (s *Synchronizer) StopView(name string) bool {
	return s.sched.Remove(name)
}

// Stop tears down every loop and waits for them to exit.
func (s *Synchronizer) Stop() {
	s.sched.Stop()
	s.logger.Info().Msg("All poll loops stopped")
}

// Running lists the views currently polled.
func (s *Synchronizer) Running() []string {
	return s.sched.Names()
}

func (s *Synchronizer) interval(name string) time.Duration {
	if d, ok := s.opts.Intervals[name]; ok && d > 0 {
		return d
	}
	if name == ViewRecords {
		return DefaultRecordsInterval
	}
	return DefaultInterval
}

func (s *Synchronizer) task(name string) (func(context.Context) error, error) {
	switch name {
	case ViewFeeds:
		return func(ctx context.Context) error {
			return poll(ctx, s, name, s.src.GetFeeds, func(token uint64, r models.FeedListResponse) {
				s.view.ReplaceFeeds(token, r.Feeds, r.GlobalCarCount)
			})
		}, nil
	case ViewConfig:
		return func(ctx context.Context) error {
			return poll(ctx, s, name, s.src.GetCameraConfig, s.view.ReplaceConfig)
		}, nil
	case ViewStats:
		return func(ctx context.Context) error {
			return poll(ctx, s, name, s.src.GetFeedStats, func(_ uint64, st models.FeedStats) {
				s.view.ReplaceStats(st)
			})
		}, nil
	case ViewOccupancy:
		return func(ctx context.Context) error {
			return poll(ctx, s, name, s.src.GetMulticamFeeds, s.view.ReplaceOccupancy)
		}, nil
	case ViewDashboard:
		return func(ctx context.Context) error {
			return poll(ctx, s, name, s.src.GetDashboardStats, func(_ uint64, st models.DashboardStats) {
				s.view.ReplaceDashboard(st)
			})
		}, nil
	case ViewRecords:
		if s.records == nil {
			return nil, fmt.Errorf("%w: %s (no record loader configured)", ErrUnknownView, name)
		}
		return func(ctx context.Context) error {
			return poll(ctx, s, name, s.records.Load, func(_ uint64, recs []models.Record) {
				s.view.ReplaceRecords(recs)
			})
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
}

// poll runs one bounded fetch and applies it only on success and only while
// the loop is still live. A failed fetch leaves the slice untouched.
func poll[T any](ctx context.Context, s *Synchronizer, name string, fetch func(context.Context) (T, error), apply func(uint64, T)) error {
	token := s.view.Begin()
	defer s.view.Finish(token)

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := s.clock.Now()
	result, err := fetch(fetchCtx)

	if ctx.Err() != nil {
		s.logger.Debug().Str("view", name).Msg("Discarding poll result after teardown")
		return ctx.Err()
	}

	if err != nil {
		s.view.MarkFailure(name, err)
		s.logger.Warn().
			Err(err).
			Str("view", name).
			Str("category", client.Category(err)).
			Msg("Poll failed, keeping previous state")
		return err
	}

	apply(token, result)
	s.view.MarkSuccess(name, s.clock.Now())

	s.logger.Debug().Str("view", name).Dur("elapsed", s.clock.Now().Sub(start)).Msg("Poll applied")

	return nil
}
