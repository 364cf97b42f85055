package client

import (
	"context"
	"fmt"
	"net/http"

	"parking-console/pkg/models"
)

// GetFeeds fetches the full feed configuration.
func (c *ParkingClient) GetFeeds(ctx context.Context) (models.FeedListResponse, error) {
	var respData models.FeedListResponse

	err := c.do(ctx, c.HTTP.R(), http.MethodGet, "/api/feeds", "get feeds", &respData)
	if err != nil {
		return models.FeedListResponse{}, err
	}
	if respData.Feeds == nil {
		respData.Feeds = []models.Feed{}
	}
	return respData, nil
}

// CreateFeed registers a new feed and returns the backend's representation of it.
func (c *ParkingClient) CreateFeed(ctx context.Context, draft models.FeedDraft) (models.Feed, error) {
	var respData models.FeedResponse

	err := c.do(ctx, c.HTTP.R().SetBody(draft), http.MethodPost, "/api/feeds", "create feed", &respData)
	if err != nil {
		return models.Feed{}, err
	}
	return feedFrom("create feed", respData)
}

// UpdateFeed replaces a feed by id.
func (c *ParkingClient) UpdateFeed(ctx context.Context, feed models.Feed) (models.Feed, error) {
	var respData models.FeedResponse
	path := fmt.Sprintf("/api/feeds/%d", feed.ID)

	err := c.do(ctx, c.HTTP.R().SetBody(feed), http.MethodPut, path, "update feed", &respData)
	if err != nil {
		return models.Feed{}, err
	}
	return feedFrom("update feed", respData)
}

// DeleteFeed removes a feed by id.
func (c *ParkingClient) DeleteFeed(ctx context.Context, id int) error {
	var respData models.StatusResponse
	path := fmt.Sprintf("/api/feeds/%d", id)

	if err := c.do(ctx, c.HTTP.R(), http.MethodDelete, path, "delete feed", &respData); err != nil {
		return err
	}
	if respData.Status != "success" {
		return &StatusError{Op: "delete feed", Code: http.StatusOK, Body: statusBody(respData)}
	}
	return nil
}

// SetGlobalCount overwrites the global car counter.
func (c *ParkingClient) SetGlobalCount(ctx context.Context, count int) error {
	var respData models.StatusResponse
	req := c.HTTP.R().SetBody(models.GlobalCountPayload{Count: count})

	if err := c.do(ctx, req, http.MethodPost, "/api/feeds/global_count", "set global count", &respData); err != nil {
		return err
	}
	if respData.Status != "success" {
		return &StatusError{Op: "set global count", Code: http.StatusOK, Body: statusBody(respData)}
	}
	return nil
}

// SetInitialCount sets the starting count of a counter feed and returns the
// count the backend confirmed.
func (c *ParkingClient) SetInitialCount(ctx context.Context, id, count int) (int, error) {
	var respData models.InitialCountResponse
	req := c.HTTP.R().SetBody(models.InitialCountPayload{InitialCount: count})
	path := fmt.Sprintf("/api/feeds/%d/count", id)

	if err := c.do(ctx, req, http.MethodPatch, path, "set initial count", &respData); err != nil {
		return 0, err
	}
	if err := rejected("set initial count", http.StatusOK, respData.Status, respData.Message); err != nil {
		return 0, err
	}
	if respData.InitialCount == nil {
		return 0, fmt.Errorf("set initial count: %w: missing initialCount", ErrDecode)
	}
	return *respData.InitialCount, nil
}

func feedFrom(op string, resp models.FeedResponse) (models.Feed, error) {
	if err := rejected(op, http.StatusOK, resp.Status, resp.Message); err != nil {
		return models.Feed{}, err
	}
	if resp.Feed == nil {
		return models.Feed{}, fmt.Errorf("%s: %w: missing feed", op, ErrDecode)
	}
	return *resp.Feed, nil
}

func statusBody(r models.StatusResponse) string {
	if r.Message != "" {
		return r.Message
	}
	if r.Status == "" {
		return "missing status"
	}
	return r.Status
}
