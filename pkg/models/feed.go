package models

import (
	"errors"
	"fmt"
)

type FeedType string

const (
	FeedMulticam FeedType = "multicam"
	FeedCounter  FeedType = "counter"
)

type FeedStatus string

const (
	StatusActive   FeedStatus = "active"
	StatusInactive FeedStatus = "inactive"
)

// Flip returns the opposite status. Anything that is not "active" flips to active.
func (s FeedStatus) Flip() FeedStatus {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

var (
	ErrSlotsExceedCapacity = errors.New("availableSlots exceeds totalSlots")
	ErrNegativeSlots       = errors.New("slot counts must not be negative")
)

// Feed is a configured camera or counter source.
// Capacity fields are pointers so that absent values survive a round trip.
type Feed struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	URL            string     `json:"url"`
	Type           FeedType   `json:"type"`
	Status         FeedStatus `json:"status"`
	TotalSlots     *int       `json:"totalSlots,omitempty"`     // multicam only
	AvailableSlots *int       `json:"availableSlots,omitempty"` // multicam only
	CurrentCount   *int       `json:"currentCount,omitempty"`   // counter only
	InitialCount   *int       `json:"initialCount,omitempty"`   // counter only
}

// FeedDraft is the operator input for a new feed. The backend assigns the id.
type FeedDraft struct {
	Name           string     `json:"name"`
	URL            string     `json:"url"`
	Type           FeedType   `json:"type"`
	Status         FeedStatus `json:"status"`
	TotalSlots     *int       `json:"totalSlots,omitempty"`
	AvailableSlots *int       `json:"availableSlots,omitempty"`
}

// Validate rejects negative slot counts and multicam feeds with more
// available slots than total slots.
func (f Feed) Validate() error {
	if deref(f.TotalSlots) < 0 || deref(f.AvailableSlots) < 0 {
		return fmt.Errorf("feed %d: %w", f.ID, ErrNegativeSlots)
	}
	if f.TotalSlots != nil && f.AvailableSlots != nil && *f.AvailableSlots > *f.TotalSlots {
		return fmt.Errorf("feed %d: %w (%d > %d)", f.ID, ErrSlotsExceedCapacity, *f.AvailableSlots, *f.TotalSlots)
	}
	return nil
}

// Clone returns a deep copy so callers never share the optional ints.
func (f Feed) Clone() Feed {
	f.TotalSlots = cloneInt(f.TotalSlots)
	f.AvailableSlots = cloneInt(f.AvailableSlots)
	f.CurrentCount = cloneInt(f.CurrentCount)
	f.InitialCount = cloneInt(f.InitialCount)
	return f
}

func (f Feed) Total() int     { return deref(f.TotalSlots) }
func (f Feed) Available() int { return deref(f.AvailableSlots) }

// IntPtr is a helper for building optional fields.
func IntPtr(v int) *int { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// --- Wire envelopes ---

// FeedListResponse wraps GET /api/feeds
type FeedListResponse struct {
	Feeds          []Feed `json:"feeds"`
	GlobalCarCount int    `json:"global_car_count"`
}

// FeedResponse wraps POST /api/feeds and PUT /api/feeds/{id}
type FeedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Feed    *Feed  `json:"feed"`
}

// StatusResponse is returned by DELETE, global_count and count endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type GlobalCountPayload struct {
	Count int `json:"count"`
}

type InitialCountPayload struct {
	InitialCount int `json:"initialCount"`
}

// InitialCountResponse wraps PATCH /api/feeds/{id}/count
type InitialCountResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	InitialCount *int   `json:"initialCount"`
}

// TogglePayload is the body for POST /api/camera/toggle
type TogglePayload struct {
	ID   int      `json:"id"`
	Type FeedType `json:"type"`
}
