package poller

import (
	"context"
	"sync"
	"time"

	"parking-console/pkg/models"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Ticker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

// Tick advances time and delivers one tick to every live ticker, dropping it
// when the previous tick has not been consumed yet, like time.Ticker.
func (c *fakeClock) Tick() {
	c.mu.Lock()
	c.now = c.now.Add(time.Second)
	now := c.now
	tickers := append([]*fakeTicker{}, c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		if t.isStopped() {
			continue
		}
		select {
		case t.ch <- now:
		default:
		}
	}
}

func (c *fakeClock) liveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

type fakeTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fakeSource serves canned results; a nil function field means "return zero value".
type fakeSource struct {
	mu        sync.Mutex
	calls     map[string]int
	feeds     func(ctx context.Context) (models.FeedListResponse, error)
	config    func(ctx context.Context) (models.CameraConfig, error)
	stats     func(ctx context.Context) (models.FeedStats, error)
	multicam  func(ctx context.Context) ([]models.Feed, error)
	dashboard func(ctx context.Context) (models.DashboardStats, error)
}

func (f *fakeSource) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeSource) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSource) GetFeeds(ctx context.Context) (models.FeedListResponse, error) {
	f.count(ViewFeeds)
	if f.feeds == nil {
		return models.FeedListResponse{}, nil
	}
	return f.feeds(ctx)
}

func (f *fakeSource) GetCameraConfig(ctx context.Context) (models.CameraConfig, error) {
	f.count(ViewConfig)
	if f.config == nil {
		return models.CameraConfig{}, nil
	}
	return f.config(ctx)
}

func (f *fakeSource) GetFeedStats(ctx context.Context) (models.FeedStats, error) {
	f.count(ViewStats)
	if f.stats == nil {
		return models.FeedStats{}, nil
	}
	return f.stats(ctx)
}

func (f *fakeSource) GetMulticamFeeds(ctx context.Context) ([]models.Feed, error) {
	f.count(ViewOccupancy)
	if f.multicam == nil {
		return nil, nil
	}
	return f.multicam(ctx)
}

func (f *fakeSource) GetDashboardStats(ctx context.Context) (models.DashboardStats, error) {
	f.count(ViewDashboard)
	if f.dashboard == nil {
		return models.DashboardStats{}, nil
	}
	return f.dashboard(ctx)
}

type recordLoaderFunc func(ctx context.Context) ([]models.Record, error)

func (f recordLoaderFunc) Load(ctx context.Context) ([]models.Record, error) { return f(ctx) }
