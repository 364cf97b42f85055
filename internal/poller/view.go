package poller

import (
	"sync"
	"time"

	"parking-console/pkg/models"
)

// Names of the independently polled view slices.
const (
	ViewFeeds     = "feeds"
	ViewConfig    = "config"
	ViewStats     = "stats"
	ViewOccupancy = "occupancy"
	ViewDashboard = "dashboard"
	ViewRecords   = "records"
)

// AllViews lists every slice in a stable order.
var AllViews = []string{ViewFeeds, ViewConfig, ViewStats, ViewOccupancy, ViewDashboard, ViewRecords}

// PollStatus reports the health of one slice's polling loop.
type PollStatus struct {
	LastSuccess time.Time
	LastError   string
	Failures    int // consecutive
}

// View is the process-local view state. Each poll loop owns one slice and
// replaces it wholesale; the mutation coordinator merges feeds by id. Every
// accessor returns a copy.
//
// Deleted ids are tombstoned with the sequence number at which the delete
// completed. A poll result is tagged with the sequence number taken when the
// poll started, and feeds tombstoned after that point are filtered out, so a
// slow poll cannot resurrect a deleted feed.
type View struct {
	mu sync.RWMutex

	seq        uint64
	inflight   map[uint64]struct{}
	tombstones map[int]uint64

	feeds       []models.Feed
	globalCount int
	config      models.CameraConfig
	stats       models.FeedStats
	occupancy   models.Occupancy
	dashboard   models.DashboardStats
	records     []models.Record

	status map[string]PollStatus
}

func NewView() *View {
	return &View{
		inflight:   make(map[uint64]struct{}),
		tombstones: make(map[int]uint64),
		feeds:      []models.Feed{},
		config:     models.CameraConfig{MulticamFeeds: []models.Feed{}, CounterFeeds: []models.Feed{}},
		occupancy:  models.NewOccupancy(nil),
		records:    []models.Record{},
		status:     make(map[string]PollStatus),
	}
}

// Begin returns the token a poll must pass back when it applies its result.
// Every Begin must be paired with Finish.
func (v *View) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	v.inflight[v.seq] = struct{}{}

	return v.seq
}

// Finish releases a poll token and forgets tombstones no in-flight poll can
// still resurrect.
func (v *View) Finish(token uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.inflight, token)

	oldest := v.seq + 1
	for t := range v.inflight {
		if t < oldest {
			oldest = t
		}
	}
	for id, deletedAt := range v.tombstones {
		if deletedAt < oldest {
			delete(v.tombstones, id)
		}
	}
}

// --- replace (poll) ---

// ReplaceFeeds overwrites the feed configuration slice.
func (v *View) ReplaceFeeds(token uint64, feeds []models.Feed, globalCount int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.feeds = v.withoutTombstoned(token, feeds)
	v.globalCount = globalCount
}

// ReplaceConfig overwrites the camera config slice.
func (v *View) ReplaceConfig(token uint64, cfg models.CameraConfig) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.config = models.CameraConfig{
		MulticamFeeds:  v.withoutTombstoned(token, cfg.MulticamFeeds),
		CounterFeeds:   v.withoutTombstoned(token, cfg.CounterFeeds),
		GlobalCarCount: cfg.GlobalCarCount,
	}
}

// ReplaceOccupancy derives the occupancy snapshot from multicam feeds.
func (v *View) ReplaceOccupancy(token uint64, multicam []models.Feed) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.occupancy = models.NewOccupancy(v.withoutTombstoned(token, multicam))
}

func (v *View) ReplaceStats(stats models.FeedStats) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stats = stats
}

func (v *View) ReplaceDashboard(stats models.DashboardStats) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.dashboard = stats
}

func (v *View) ReplaceRecords(records []models.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.records = append(make([]models.Record, 0, len(records)), records...)
}

// --- merge by id (mutation) ---

// UpsertFeed merges a server-confirmed feed by id into the feed list and the
// camera config lists. New ids are appended.
func (v *View) UpsertFeed(feed models.Feed) {
	v.mu.Lock()
	defer v.mu.Unlock()

	feed = feed.Clone()
	delete(v.tombstones, feed.ID)

	v.feeds = upsert(v.feeds, feed, true)
	v.config.MulticamFeeds = upsert(v.config.MulticamFeeds, feed, feed.Type == models.FeedMulticam)
	v.config.CounterFeeds = upsert(v.config.CounterFeeds, feed, feed.Type == models.FeedCounter)
}

// RemoveFeed drops a feed everywhere and tombstones its id.
func (v *View) RemoveFeed(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	v.tombstones[id] = v.seq

	v.feeds = remove(v.feeds, id)
	v.config.MulticamFeeds = remove(v.config.MulticamFeeds, id)
	v.config.CounterFeeds = remove(v.config.CounterFeeds, id)

	occ := models.Occupancy{Locations: make([]models.LocationOccupancy, 0, len(v.occupancy.Locations))}
	for _, l := range v.occupancy.Locations {
		if l.FeedID == id {
			continue
		}
		occ.Locations = append(occ.Locations, l)
		occ.TotalOccupied += l.Occupied
		occ.TotalFree += l.Available
		occ.TotalCapacity += l.Total
	}
	v.occupancy = occ
}

func (v *View) SetGlobalCount(count int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.globalCount = count
	v.config.GlobalCarCount = count
}

// --- poll health ---

func (v *View) MarkSuccess(name string, at time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.status[name] = PollStatus{LastSuccess: at}
}

func (v *View) MarkFailure(name string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := v.status[name]
	st.LastError = err.Error()
	st.Failures++
	v.status[name] = st
}

// --- snapshots ---

func (v *View) Feeds() []models.Feed {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return cloneFeeds(v.feeds)
}

func (v *View) Feed(id int) (models.Feed, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, f := range v.feeds {
		if f.ID == id {
			return f.Clone(), true
		}
	}
	return models.Feed{}, false
}

func (v *View) GlobalCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.globalCount
}

func (v *View) CameraConfig() models.CameraConfig {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return models.CameraConfig{
		MulticamFeeds:  cloneFeeds(v.config.MulticamFeeds),
		CounterFeeds:   cloneFeeds(v.config.CounterFeeds),
		GlobalCarCount: v.config.GlobalCarCount,
	}
}

func (v *View) Stats() models.FeedStats {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.stats
}

func (v *View) Occupancy() models.Occupancy {
	v.mu.RLock()
	defer v.mu.RUnlock()

	occ := v.occupancy
	occ.Locations = append([]models.LocationOccupancy{}, v.occupancy.Locations...)

	return occ
}

func (v *View) Dashboard() models.DashboardStats {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.dashboard
}

func (v *View) Records() []models.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return append([]models.Record{}, v.records...)
}

func (v *View) Status(name string) PollStatus {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.status[name]
}

// --- helpers, callers hold v.mu ---

func (v *View) withoutTombstoned(token uint64, feeds []models.Feed) []models.Feed {
	out := make([]models.Feed, 0, len(feeds))
	for _, f := range feeds {
		if deletedAt, ok := v.tombstones[f.ID]; ok && deletedAt > token {
			continue
		}
		out = append(out, f.Clone())
	}
	return out
}

func upsert(feeds []models.Feed, feed models.Feed, appendMissing bool) []models.Feed {
	for i := range feeds {
		if feeds[i].ID == feed.ID {
			out := cloneFeeds(feeds)
			out[i] = feed.Clone()
			return out
		}
	}
	if !appendMissing {
		return feeds
	}
	return append(cloneFeeds(feeds), feed.Clone())
}

func remove(feeds []models.Feed, id int) []models.Feed {
	out := make([]models.Feed, 0, len(feeds))
	for _, f := range feeds {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}

func cloneFeeds(feeds []models.Feed) []models.Feed {
	out := make([]models.Feed, len(feeds))
	for i, f := range feeds {
		out[i] = f.Clone()
	}
	return out
}
