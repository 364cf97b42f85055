package client

import (
	"context"
	"net/http"

	"parking-console/pkg/models"
)

// GetDashboardStats fetches the dashboard counters.
func (c *ParkingClient) GetDashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var respData models.DashboardStats

	if err := c.do(ctx, c.HTTP.R(), http.MethodGet, "/api/dashboard/stats", "get dashboard stats", &respData); err != nil {
		return models.DashboardStats{}, err
	}
	return respData, nil
}

// GetMulticamFeeds fetches multicam feeds for per-location occupancy.
func (c *ParkingClient) GetMulticamFeeds(ctx context.Context) ([]models.Feed, error) {
	var respData []models.Feed

	if err := c.do(ctx, c.HTTP.R(), http.MethodGet, "/api/dashboard/multicam", "get multicam feeds", &respData); err != nil {
		return nil, err
	}
	if respData == nil {
		respData = []models.Feed{}
	}
	return respData, nil
}
