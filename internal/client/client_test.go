package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-console/pkg/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *ParkingClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(ClientConfig{BaseURL: srv.URL, SessionToken: "tok"})
}

func TestGetFeeds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feeds", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		_, _ = w.Write([]byte(`{"feeds":[{"id":0,"name":"Gate A","url":"rtsp://a","type":"multicam","status":"active","totalSlots":10,"availableSlots":3}],"global_car_count":4}`))
	})

	got, err := c.GetFeeds(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Feeds, 1)
	assert.Equal(t, "Gate A", got.Feeds[0].Name)
	assert.Equal(t, 10, got.Feeds[0].Total())
	assert.Equal(t, 3, got.Feeds[0].Available())
	assert.Equal(t, 4, got.GlobalCarCount)
}

func TestErrorCategories(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":"error","message":"Invalid feed id"}`))
		})
		err := c.DeleteFeed(context.Background(), 9)
		require.ErrorIs(t, err, ErrStatus)

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusNotFound, se.Code)
	})

	t.Run("decode", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		})
		_, err := c.GetFeedStats(context.Background())
		require.ErrorIs(t, err, ErrDecode)
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := New(ClientConfig{BaseURL: srv.URL})
		_, err := c.GetDashboardStats(context.Background())
		require.ErrorIs(t, err, ErrTransport)
	})

	t.Run("application status error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"error","message":"Missing count"}`))
		})
		err := c.SetGlobalCount(context.Background(), 3)
		require.ErrorIs(t, err, ErrStatus)
		assert.Contains(t, err.Error(), "Missing count")
	})
}

func TestCreateFeedReturnsServerRepresentation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var draft models.FeedDraft
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, "Lot B", draft.Name)

		_ = json.NewEncoder(w).Encode(models.FeedResponse{
			Status: "success",
			Feed:   &models.Feed{ID: 7, Name: "LOT B", URL: draft.URL, Type: draft.Type, Status: models.StatusActive},
		})
	})

	feed, err := c.CreateFeed(context.Background(), models.FeedDraft{Name: "Lot B", URL: "rtsp://b", Type: models.FeedCounter})
	require.NoError(t, err)
	assert.Equal(t, 7, feed.ID)
	assert.Equal(t, "LOT B", feed.Name)
}

func TestUpdateFeedMissingFeed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feeds/3", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	_, err := c.UpdateFeed(context.Background(), models.Feed{ID: 3})
	require.ErrorIs(t, err, ErrDecode)
}

func TestSetInitialCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/feeds/2/count", r.URL.Path)
		var body models.InitialCountPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 12, body.InitialCount)
		_, _ = w.Write([]byte(`{"status":"success","initialCount":12}`))
	})

	got, err := c.SetInitialCount(context.Background(), 2, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, got)
}

func TestToggleCamera(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body models.TogglePayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, models.FeedCounter, body.Type)
		_, _ = w.Write([]byte(`{"id":1,"name":"Entry","type":"counter","status":"inactive"}`))
	})

	feed, err := c.ToggleCamera(context.Background(), 1, models.FeedCounter)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, feed.Status)
}
