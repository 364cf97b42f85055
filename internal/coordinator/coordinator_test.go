package coordinator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-console/internal/client"
	"parking-console/internal/poller"
	"parking-console/pkg/models"
)

// fakeBackend assigns ids like the real backend and records the last update it saw.
type fakeBackend struct {
	nextID     int
	fail       error
	lastUpdate *models.Feed
	normalize  func(models.Feed) models.Feed
	global     int
}

func (b *fakeBackend) CreateFeed(_ context.Context, d models.FeedDraft) (models.Feed, error) {
	if b.fail != nil {
		return models.Feed{}, b.fail
	}
	f := models.Feed{ID: b.nextID, Name: d.Name, URL: d.URL, Type: d.Type, Status: d.Status,
		TotalSlots: d.TotalSlots, AvailableSlots: d.AvailableSlots}
	b.nextID++
	if b.normalize != nil {
		f = b.normalize(f)
	}
	return f, nil
}

func (b *fakeBackend) UpdateFeed(_ context.Context, f models.Feed) (models.Feed, error) {
	b.lastUpdate = &f
	if b.fail != nil {
		return models.Feed{}, b.fail
	}
	if b.normalize != nil {
		f = b.normalize(f)
	}
	return f, nil
}

func (b *fakeBackend) DeleteFeed(_ context.Context, _ int) error { return b.fail }

func (b *fakeBackend) SetGlobalCount(_ context.Context, n int) error {
	if b.fail != nil {
		return b.fail
	}
	b.global = n
	return nil
}

func (b *fakeBackend) SetInitialCount(_ context.Context, _ int, n int) (int, error) {
	if b.fail != nil {
		return 0, b.fail
	}
	return n, nil
}

func (b *fakeBackend) ToggleCamera(_ context.Context, id int, typ models.FeedType) (models.Feed, error) {
	if b.fail != nil {
		return models.Feed{}, b.fail
	}
	return models.Feed{ID: id, Type: typ, Status: models.StatusInactive, Name: "toggled"}, nil
}

var errRejected = &client.StatusError{Op: "test", Code: 500, Body: "nope"}

func TestAddEditDeleteLeavesNoTrace(t *testing.T) {
	view := poller.NewView()
	c := New(&fakeBackend{nextID: 4}, view)
	ctx := context.Background()

	added, err := c.Add(ctx, models.FeedDraft{Name: "Lot C", URL: "rtsp://c", TotalSlots: models.IntPtr(10), AvailableSlots: models.IntPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, 4, added.ID)
	assert.Equal(t, models.FeedMulticam, added.Type)
	assert.Equal(t, models.StatusActive, added.Status)

	added.Name = "Lot C East"
	_, err = c.Edit(ctx, added)
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, added.ID))

	_, ok := view.Feed(added.ID)
	assert.False(t, ok)
	assert.Empty(t, view.Feeds())
	assert.Empty(t, view.CameraConfig().MulticamFeeds)
}

func TestViewUsesServerRepresentation(t *testing.T) {
	view := poller.NewView()
	backend := &fakeBackend{normalize: func(f models.Feed) models.Feed {
		f.Name = strings.ToUpper(f.Name)
		return f
	}}
	c := New(backend, view)

	created, err := c.Add(context.Background(), models.FeedDraft{Name: "gate a", URL: "rtsp://a", Type: models.FeedCounter,
		TotalSlots: models.IntPtr(3)})
	require.NoError(t, err)

	got, ok := view.Feed(created.ID)
	require.True(t, ok)
	assert.Equal(t, "GATE A", got.Name)
	assert.Nil(t, got.TotalSlots, "counter feeds carry no slots")
}

func TestAddValidation(t *testing.T) {
	c := New(&fakeBackend{}, poller.NewView())

	_, err := c.Add(context.Background(), models.FeedDraft{Name: "  ", URL: "rtsp://x"})
	require.ErrorIs(t, err, ErrInvalidDraft)

	_, err = c.Add(context.Background(), models.FeedDraft{Name: "x"})
	require.ErrorIs(t, err, ErrInvalidDraft)

	_, err = c.Add(context.Background(), models.FeedDraft{Name: "x", URL: "u", TotalSlots: models.IntPtr(2), AvailableSlots: models.IntPtr(5)})
	require.ErrorIs(t, err, models.ErrSlotsExceedCapacity)
}

func TestNegativeSlotsNeverReachBackend(t *testing.T) {
	view := poller.NewView()
	backend := &fakeBackend{nextID: 1}
	c := New(backend, view)
	ctx := context.Background()

	_, err := c.Add(ctx, models.FeedDraft{Name: "Lot D", URL: "rtsp://d", TotalSlots: models.IntPtr(-5), AvailableSlots: models.IntPtr(-10)})
	require.ErrorIs(t, err, models.ErrNegativeSlots)
	assert.Equal(t, 1, backend.nextID, "create must not be sent")
	assert.Empty(t, view.Feeds())

	view.UpsertFeed(models.Feed{ID: 7, Name: "Lot E", URL: "rtsp://e", Type: models.FeedMulticam, Status: models.StatusActive,
		TotalSlots: models.IntPtr(10), AvailableSlots: models.IntPtr(4)})

	_, err = c.Edit(ctx, models.Feed{ID: 7, Name: "Lot E", URL: "rtsp://e", Type: models.FeedMulticam, Status: models.StatusActive,
		TotalSlots: models.IntPtr(10), AvailableSlots: models.IntPtr(-1)})
	require.ErrorIs(t, err, models.ErrNegativeSlots)
	assert.Nil(t, backend.lastUpdate, "update must not be sent")

	feed, ok := view.Feed(7)
	require.True(t, ok)
	assert.Equal(t, 4, feed.Available())
}

func TestFailedMutationLeavesViewUnchanged(t *testing.T) {
	view := poller.NewView()
	view.UpsertFeed(models.Feed{ID: 1, Name: "Entry", Type: models.FeedCounter, Status: models.StatusActive})
	before := view.Feeds()

	backend := &fakeBackend{fail: fmt.Errorf("update feed: %w: refused", client.ErrTransport)}
	c := New(backend, view)
	ctx := context.Background()

	_, err := c.Add(ctx, models.FeedDraft{Name: "n", URL: "u"})
	require.ErrorIs(t, err, client.ErrTransport)
	_, err = c.Edit(ctx, models.Feed{ID: 1, Name: "Renamed", Type: models.FeedCounter})
	require.Error(t, err)
	require.Error(t, c.Delete(ctx, 1))
	require.Error(t, c.SetGlobalCount(ctx, 3))
	require.Error(t, c.SetInitialCount(ctx, 1, 3))
	_, err = c.ToggleCamera(ctx, 1, models.FeedCounter)
	require.Error(t, err)

	assert.Equal(t, before, view.Feeds())
	assert.Equal(t, 0, view.GlobalCount())
}

func TestToggleStatus(t *testing.T) {
	t.Run("success flips", func(t *testing.T) {
		view := poller.NewView()
		view.UpsertFeed(models.Feed{ID: 2, Name: "GateA", Type: models.FeedMulticam, Status: models.StatusActive})
		backend := &fakeBackend{}
		c := New(backend, view)

		updated, err := c.ToggleStatus(context.Background(), 2)
		require.NoError(t, err)
		require.NotNil(t, backend.lastUpdate)
		assert.Equal(t, models.StatusInactive, backend.lastUpdate.Status)
		assert.Equal(t, models.StatusInactive, updated.Status)

		f, _ := view.Feed(2)
		assert.Equal(t, models.StatusInactive, f.Status)
	})

	t.Run("failure keeps active", func(t *testing.T) {
		view := poller.NewView()
		view.UpsertFeed(models.Feed{ID: 2, Name: "GateA", Type: models.FeedMulticam, Status: models.StatusActive})
		backend := &fakeBackend{fail: errRejected}
		c := New(backend, view)

		_, err := c.ToggleStatus(context.Background(), 2)
		require.ErrorIs(t, err, client.ErrStatus)
		assert.Equal(t, models.StatusInactive, backend.lastUpdate.Status)

		f, _ := view.Feed(2)
		assert.Equal(t, models.StatusActive, f.Status)
	})

	t.Run("unknown feed", func(t *testing.T) {
		c := New(&fakeBackend{}, poller.NewView())
		_, err := c.ToggleStatus(context.Background(), 42)
		require.ErrorIs(t, err, ErrFeedNotFound)
	})
}

func TestEditRefusesCategoryChange(t *testing.T) {
	view := poller.NewView()
	view.UpsertFeed(models.Feed{ID: 1, Type: models.FeedCounter, Status: models.StatusActive})
	backend := &fakeBackend{}
	c := New(backend, view)

	_, err := c.Edit(context.Background(), models.Feed{ID: 1, Type: models.FeedMulticam})
	require.ErrorIs(t, err, ErrCategoryChange)
	assert.Nil(t, backend.lastUpdate)
}

func TestCounts(t *testing.T) {
	view := poller.NewView()
	view.UpsertFeed(models.Feed{ID: 1, Type: models.FeedCounter})
	backend := &fakeBackend{}
	c := New(backend, view)
	ctx := context.Background()

	require.NoError(t, c.SetGlobalCount(ctx, 25))
	assert.Equal(t, 25, backend.global)
	assert.Equal(t, 25, view.GlobalCount())
	require.ErrorIs(t, c.SetGlobalCount(ctx, -1), ErrNegativeCount)

	require.NoError(t, c.SetInitialCount(ctx, 1, 8))
	f, _ := view.Feed(1)
	require.NotNil(t, f.InitialCount)
	assert.Equal(t, 8, *f.InitialCount)
}

func TestParseCount(t *testing.T) {
	cases := map[string]int{
		"12":   12,
		" 7 ":  7,
		"":     0,
		"abc":  0,
		"-3":   0,
		"4.5":  0,
		"0010": 10,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseCount(in), "input %q", in)
	}
}
