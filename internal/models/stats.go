package models

import "time"

// Statistics is the aggregate summary over a filtered locality set.
type Statistics struct {
	Localities   int                 `json:"localities"`
	Numbers      CategoryCounts      `json:"numbers"`
	Completeness CompletenessBuckets `json:"completeness"`
	LastUpdates  []RecentUpdate      `json:"last_update"`
	Viewport     *Viewport           `json:"viewport,omitempty"`
}

// CategoryCounts holds per-category locality counts, matched against the
// "type" attribute value case-insensitively.
type CategoryCounts struct {
	Hospital          int `json:"hospital"`
	MedicalClinic     int `json:"medical_clinic"`
	OrthopaedicClinic int `json:"orthopaedic_clinic"`
}

// CompletenessBuckets partitions a locality set by non-empty value count:
// complete >= the domain's specification count, partial 4..count-1, basic <= 3.
type CompletenessBuckets struct {
	Complete int `json:"complete"`
	Partial  int `json:"partial"`
	Basic    int `json:"basic"`
}

// RecentUpdate is one of the most recent distinct (timestamp, actor, mode)
// archive groups. Locality name and uuid are resolved when the group
// corresponds to exactly one entity change.
type RecentUpdate struct {
	Actor        string    `json:"author"`
	DateApplied  time.Time `json:"date_applied"`
	Mode         Mode      `json:"mode"`
	Locality     string    `json:"locality"`
	LocalityUUID string    `json:"locality_uuid"`
	DataCount    int       `json:"data_count"`
}

// Viewport is a geocoded bounding box for centering the map on a country.
// Zero-filled when the geocoder has no match or is unavailable.
type Viewport struct {
	NortheastLat float64 `json:"northeast_lat"`
	NortheastLng float64 `json:"northeast_lng"`
	SouthwestLat float64 `json:"southwest_lat"`
	SouthwestLng float64 `json:"southwest_lng"`
}

// SimpleStatistic is the lightweight per-country summary: locality count
// and the share of localities carrying at least simpleCompleteThreshold
// non-empty values.
type SimpleStatistic struct {
	Number       int    `json:"number"`
	Completeness string `json:"completeness"`
}

// StatisticsFilter selects the locality set statistics are computed over.
// Zero value means the whole dataset.
type StatisticsFilter struct {
	Country string
	Tag     string
}
