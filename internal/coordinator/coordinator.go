// Package coordinator applies operator mutations to the backend and merges the
// backend's confirmed representation into the view state.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"parking-console/internal/client"
	"parking-console/internal/logger"
	"parking-console/internal/poller"
	"parking-console/pkg/models"
)

var (
	ErrInvalidDraft   = errors.New("feed name and url are required")
	ErrFeedNotFound   = errors.New("feed not found in view")
	ErrCategoryChange = errors.New("feed category cannot be changed")
	ErrNegativeCount  = errors.New("count must not be negative")
)

// Backend is the write side of the remote collection client.
type Backend interface {
	CreateFeed(ctx context.Context, draft models.FeedDraft) (models.Feed, error)
	UpdateFeed(ctx context.Context, feed models.Feed) (models.Feed, error)
	DeleteFeed(ctx context.Context, id int) error
	SetGlobalCount(ctx context.Context, count int) error
	SetInitialCount(ctx context.Context, id, count int) (int, error)
	ToggleCamera(ctx context.Context, id int, typ models.FeedType) (models.Feed, error)
}

// Coordinator runs each mutation at most once. The view is only touched after
// the backend confirms, and only with what the backend returned.
type Coordinator struct {
	backend Backend
	view    *poller.View
	logger  zerolog.Logger
}

func New(backend Backend, view *poller.View) *Coordinator {
	return &Coordinator{
		backend: backend,
		view:    view,
		logger:  logger.WithComponent("coordinator"),
	}
}

// ParseCount coerces operator input to a non-negative integer, 0 on failure.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Add creates a feed. Counter feeds never carry slot fields.
func (c *Coordinator) Add(ctx context.Context, draft models.FeedDraft) (models.Feed, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.URL = strings.TrimSpace(draft.URL)
	if draft.Name == "" || draft.URL == "" {
		return models.Feed{}, ErrInvalidDraft
	}
	if draft.Type == "" {
		draft.Type = models.FeedMulticam
	}
	if draft.Status == "" {
		draft.Status = models.StatusActive
	}
	if draft.Type == models.FeedCounter {
		draft.TotalSlots, draft.AvailableSlots = nil, nil
	}

	probe := models.Feed{TotalSlots: draft.TotalSlots, AvailableSlots: draft.AvailableSlots}
	if err := probe.Validate(); err != nil {
		return models.Feed{}, err
	}

	created, err := c.backend.CreateFeed(ctx, draft)
	if err != nil {
		c.failed("add", -1, err)
		return models.Feed{}, err
	}

	c.view.UpsertFeed(created)
	c.logger.Info().Int("feed_id", created.ID).Str("name", created.Name).Msg("Feed added")

	return created, nil
}

// Edit replaces a feed. The category of a known feed is immutable.
func (c *Coordinator) Edit(ctx context.Context, feed models.Feed) (models.Feed, error) {
	if current, ok := c.view.Feed(feed.ID); ok && feed.Type != current.Type {
		return models.Feed{}, fmt.Errorf("feed %d: %w (%s -> %s)", feed.ID, ErrCategoryChange, current.Type, feed.Type)
	}
	if err := feed.Validate(); err != nil {
		return models.Feed{}, err
	}

	updated, err := c.backend.UpdateFeed(ctx, feed)
	if err != nil {
		c.failed("edit", feed.ID, err)
		return models.Feed{}, err
	}

	c.view.UpsertFeed(updated)
	c.logger.Info().Int("feed_id", updated.ID).Str("status", string(updated.Status)).Msg("Feed updated")

	return updated, nil
}

// Delete removes a feed. On success the id is tombstoned so that polls already
// in flight cannot bring it back.
func (c *Coordinator) Delete(ctx context.Context, id int) error {
	if err := c.backend.DeleteFeed(ctx, id); err != nil {
		c.failed("delete", id, err)
		return err
	}

	c.view.RemoveFeed(id)
	c.logger.Info().Int("feed_id", id).Msg("Feed deleted")

	return nil
}

// ToggleStatus is Edit with the status flipped.
func (c *Coordinator) ToggleStatus(ctx context.Context, id int) (models.Feed, error) {
	current, ok := c.view.Feed(id)
	if !ok {
		return models.Feed{}, fmt.Errorf("feed %d: %w", id, ErrFeedNotFound)
	}

	current.Status = current.Status.Flip()

	return c.Edit(ctx, current)
}

// ToggleCamera flips status through the camera endpoint, which toggles server-side.
func (c *Coordinator) ToggleCamera(ctx context.Context, id int, typ models.FeedType) (models.Feed, error) {
	updated, err := c.backend.ToggleCamera(ctx, id, typ)
	if err != nil {
		c.failed("toggle camera", id, err)
		return models.Feed{}, err
	}

	c.view.UpsertFeed(updated)
	c.logger.Info().Int("feed_id", id).Str("status", string(updated.Status)).Msg("Camera toggled")

	return updated, nil
}

func (c *Coordinator) SetGlobalCount(ctx context.Context, count int) error {
	if count < 0 {
		return ErrNegativeCount
	}
	if err := c.backend.SetGlobalCount(ctx, count); err != nil {
		c.failed("set global count", -1, err)
		return err
	}

	c.view.SetGlobalCount(count)
	c.logger.Info().Int("count", count).Msg("Global car count set")

	return nil
}

// SetInitialCount sets a counter feed's starting count.
func (c *Coordinator) SetInitialCount(ctx context.Context, id, count int) error {
	if count < 0 {
		return ErrNegativeCount
	}

	confirmed, err := c.backend.SetInitialCount(ctx, id, count)
	if err != nil {
		c.failed("set initial count", id, err)
		return err
	}

	if feed, ok := c.view.Feed(id); ok {
		feed.InitialCount = models.IntPtr(confirmed)
		c.view.UpsertFeed(feed)
	}
	c.logger.Info().Int("feed_id", id).Int("count", confirmed).Msg("Initial count set")

	return nil
}

func (c *Coordinator) failed(op string, id int, err error) {
	ev := c.logger.Warn().Err(err).Str("op", op).Str("category", client.Category(err))
	if id >= 0 {
		ev = ev.Int("feed_id", id)
	}
	ev.Msg("Mutation rejected, view unchanged")
}
