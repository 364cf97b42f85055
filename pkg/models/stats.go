package models

// CameraConfig wraps GET /api/camera/config
type CameraConfig struct {
	MulticamFeeds  []Feed `json:"multicamFeeds"`
	CounterFeeds   []Feed `json:"counterFeeds"`
	GlobalCarCount int    `json:"globalCarCount"`
}

// FeedStats wraps GET /api/camera/feeds
type FeedStats struct {
	ActiveFeeds   int `json:"activeFeeds"`
	CounterFeeds  int `json:"counterFeeds"`
	MulticamFeeds int `json:"multicamFeeds"`
	TotalFeeds    int `json:"totalFeeds"`
}

// DashboardStats wraps GET /api/dashboard/stats
type DashboardStats struct {
	CurrentCount    int `json:"currentCount"`
	TotalSpaces     int `json:"totalSpaces"`
	AvailableSpaces int `json:"availableSpaces"`
	ActiveFeeds     int `json:"activeFeeds"`
}

// LocationOccupancy is the derived occupancy of a single multicam feed.
type LocationOccupancy struct {
	FeedID    int     `json:"feedId"`
	Location  string  `json:"location"`
	Occupied  int     `json:"occupied"`
	Available int     `json:"available"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// Occupancy aggregates all multicam locations.
type Occupancy struct {
	Locations     []LocationOccupancy `json:"locations"`
	TotalOccupied int                 `json:"totalOccupied"`
	TotalFree     int                 `json:"totalAvailable"`
	TotalCapacity int                 `json:"totalCapacity"`
}

// NewOccupancy derives the snapshot from multicam feeds. Counter feeds are ignored.
func NewOccupancy(feeds []Feed) Occupancy {
	occ := Occupancy{Locations: make([]LocationOccupancy, 0, len(feeds))}
	for _, f := range feeds {
		if f.Type != "" && f.Type != FeedMulticam {
			continue
		}
		total, avail := f.Total(), f.Available()
		loc := LocationOccupancy{
			FeedID:    f.ID,
			Location:  f.Name,
			Occupied:  total - avail,
			Available: avail,
			Total:     total,
		}
		if total > 0 {
			loc.Percent = float64(loc.Occupied) * 100 / float64(total)
		}
		occ.Locations = append(occ.Locations, loc)
		occ.TotalOccupied += loc.Occupied
		occ.TotalFree += avail
		occ.TotalCapacity += total
	}
	return occ
}
