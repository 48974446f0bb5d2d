package domain

// EventStatistics aggregates per-status attendance counts for one event.
type EventStatistics struct {
	EventID          string  `json:"event_id"`
	EventName        string  `json:"event_name"`
	MaxCapacity      int     `json:"max_capacity"`
	TotalRegistered  int64   `json:"total_registered"`
	Confirmed        int64   `json:"confirmed"`
	Cancelled        int64   `json:"cancelled"`
	Attended         int64   `json:"attended"`
	NoShow           int64   `json:"no_show"`
	AvailableSlots   int     `json:"available_slots"`
	OccupancyPercent float64 `json:"occupancy_percent"`
}
