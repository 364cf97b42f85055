package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-console/pkg/models"
)

func TestSlowPollCannotResurrectDeletedFeed(t *testing.T) {
	v := NewView()
	v.UpsertFeed(multicam(1, "GateA", 10, 3))

	token := v.Begin() // poll starts
	v.RemoveFeed(1)    // delete completes while the poll is in flight

	v.ReplaceFeeds(token, []models.Feed{multicam(1, "GateA", 10, 3), multicam(2, "GateB", 5, 5)}, 0)
	v.ReplaceConfig(token, models.CameraConfig{MulticamFeeds: []models.Feed{multicam(1, "GateA", 10, 3)}})
	v.ReplaceOccupancy(token, []models.Feed{multicam(1, "GateA", 10, 3)})
	v.Finish(token)

	require.Len(t, v.Feeds(), 1)
	assert.Equal(t, 2, v.Feeds()[0].ID)
	assert.Empty(t, v.CameraConfig().MulticamFeeds)
	assert.Empty(t, v.Occupancy().Locations)

	// A poll that started after the delete is authoritative, even for a reused id.
	next := v.Begin()
	v.ReplaceFeeds(next, []models.Feed{multicam(1, "Reused", 4, 4)}, 0)
	v.Finish(next)

	f, ok := v.Feed(1)
	require.True(t, ok)
	assert.Equal(t, "Reused", f.Name)
}

func TestTombstonesPrunedWhenNoPollCanSeeThem(t *testing.T) {
	v := NewView()
	old := v.Begin()
	v.RemoveFeed(4)

	v.Finish(old)
	assert.Empty(t, v.tombstones)
}

func TestTombstoneKeptWhileOlderPollInFlight(t *testing.T) {
	v := NewView()
	old := v.Begin()
	v.RemoveFeed(4)

	newer := v.Begin()
	v.Finish(newer)
	assert.Contains(t, v.tombstones, 4)

	v.Finish(old)
	assert.NotContains(t, v.tombstones, 4)
}

func TestUpsertMergesByIDAndRoutesConfig(t *testing.T) {
	v := NewView()
	token := v.Begin()
	v.ReplaceFeeds(token, []models.Feed{multicam(0, "GateA", 10, 3)}, 0)
	v.ReplaceConfig(token, models.CameraConfig{MulticamFeeds: []models.Feed{multicam(0, "GateA", 10, 3)}})
	v.Finish(token)

	edited := multicam(0, "Gate A North", 12, 3)
	v.UpsertFeed(edited)
	v.UpsertFeed(models.Feed{ID: 1, Name: "Entry", Type: models.FeedCounter, Status: models.StatusActive})

	feeds := v.Feeds()
	require.Len(t, feeds, 2)
	assert.Equal(t, "Gate A North", feeds[0].Name)
	assert.Equal(t, 12, feeds[0].Total())

	cfg := v.CameraConfig()
	require.Len(t, cfg.MulticamFeeds, 1)
	assert.Equal(t, "Gate A North", cfg.MulticamFeeds[0].Name)
	require.Len(t, cfg.CounterFeeds, 1)
	assert.Equal(t, 1, cfg.CounterFeeds[0].ID)
}

func TestSnapshotsAreCopies(t *testing.T) {
	v := NewView()
	v.UpsertFeed(multicam(0, "GateA", 10, 3))
	v.ReplaceRecords([]models.Record{{ID: 1, Plate: "ABC123"}})

	feeds := v.Feeds()
	feeds[0].Name = "mutated"
	*feeds[0].TotalSlots = 99

	recs := v.Records()
	recs[0].Plate = "mutated"

	f, _ := v.Feed(0)
	assert.Equal(t, "GateA", f.Name)
	assert.Equal(t, 10, f.Total())
	assert.Equal(t, "ABC123", v.Records()[0].Plate)
}

func TestSetGlobalCountUpdatesBothSlices(t *testing.T) {
	v := NewView()
	v.SetGlobalCount(17)
	assert.Equal(t, 17, v.GlobalCount())
	assert.Equal(t, 17, v.CameraConfig().GlobalCarCount)
}
