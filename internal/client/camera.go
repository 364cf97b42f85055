package client

import (
	"context"
	"net/http"

	"parking-console/pkg/models"
)

// GetCameraConfig fetches feeds split by category plus the global counter.
func (c *ParkingClient) GetCameraConfig(ctx context.Context) (models.CameraConfig, error) {
	var respData models.CameraConfig

	if err := c.do(ctx, c.HTTP.R(), http.MethodGet, "/api/camera/config", "get camera config", &respData); err != nil {
		return models.CameraConfig{}, err
	}
	if respData.MulticamFeeds == nil {
		respData.MulticamFeeds = []models.Feed{}
	}
	if respData.CounterFeeds == nil {
		respData.CounterFeeds = []models.Feed{}
	}
	return respData, nil
}

// GetFeedStats fetches live feed counts.
func (c *ParkingClient) GetFeedStats(ctx context.Context) (models.FeedStats, error) {
	var respData models.FeedStats

	if err := c.do(ctx, c.HTTP.R(), http.MethodGet, "/api/camera/feeds", "get feed stats", &respData); err != nil {
		return models.FeedStats{}, err
	}
	return respData, nil
}

// ToggleCamera flips a feed's status server-side and returns the updated feed.
func (c *ParkingClient) ToggleCamera(ctx context.Context, id int, typ models.FeedType) (models.Feed, error) {
	var respData models.Feed
	req := c.HTTP.R().SetBody(models.TogglePayload{ID: id, Type: typ})

	if err := c.do(ctx, req, http.MethodPost, "/api/camera/toggle", "toggle camera", &respData); err != nil {
		return models.Feed{}, err
	}
	return respData, nil
}
