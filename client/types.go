package client

import "time"

// Locality is a point of interest on the map.
type Locality struct {
	UUID        string `json:"uuid"`
	UpstreamID  string `json:"upstream_id"`
	Domain      string `json:"domain"`
	Geom        Point  `json:"geom"`
	ChangesetID int64  `json:"changeset_id"`
}

// Point is a WGS84 coordinate.
type Point struct {
	Long float64 `json:"long"`
	Lat  float64 `json:"lat"`
}

// LocalityDetail is the full representation returned by the detail endpoint.
type LocalityDetail struct {
	Locality
	Values       map[string]string `json:"values"`
	Tags         []string          `json:"tags"`
	Completeness string            `json:"completeness"`
	Updates      []UpdateInfo      `json:"updates"`
}

// UpdateInfo is one entry in a locality's recent-change feed.
type UpdateInfo struct {
	ChangedAt time.Time `json:"changed_at"`
	Actor     string    `json:"actor"`
	Mode      int       `json:"mode"`
}

// LocalitySubmission is the payload of a create or update request. Values
// maps attribute keys to string data; Tags is pipe-delimited.
type LocalitySubmission struct {
	Long   *float64          `json:"long"`
	Lat    *float64          `json:"lat"`
	Values map[string]string `json:"values,omitempty"`
	Tags   string            `json:"tags,omitempty"`
}

// Cluster is one marker group in the map layer response.
type Cluster struct {
	Geom    Point    `json:"geom"`
	Count   int      `json:"count"`
	UUID    string   `json:"uuid,omitempty"`
	Members []string `json:"members,omitempty"`
}

// MapLayerOptions filter and shape the map layer query.
type MapLayerOptions struct {
	BBox       string // "minLon,minLat,maxLon,maxLat"
	Zoom       int
	IconWidth  int
	IconHeight int
	Geoname    string
	Tag        string
}

// LocalityArchive is one immutable version snapshot of a locality.
type LocalityArchive struct {
	UUID        string    `json:"uuid"`
	Version     int       `json:"version"`
	Mode        int       `json:"mode"`
	Long        float64   `json:"long"`
	Lat         float64   `json:"lat"`
	ChangesetID int64     `json:"changeset_id"`
	Actor       string    `json:"actor"`
	ChangedAt   time.Time `json:"changed_at"`
}

// ValueArchive is one immutable version snapshot of an attribute value.
type ValueArchive struct {
	UUID        string    `json:"uuid"`
	Key         string    `json:"key"`
	Version     int       `json:"version"`
	Mode        int       `json:"mode"`
	Data        string    `json:"data"`
	ChangesetID int64     `json:"changeset_id"`
	ChangedAt   time.Time `json:"changed_at"`
}

// Specification binds an attribute to a domain with a required flag.
type Specification struct {
	ID          int64  `json:"id"`
	Domain      string `json:"domain"`
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	ChangesetID int64  `json:"changeset_id"`
}

// EnsureSpecificationRequest registers an attribute within a domain.
type EnsureSpecificationRequest struct {
	Domain   string `json:"domain,omitempty"`
	Key      string `json:"key"`
	Required bool   `json:"required"`
}

// Statistics is the aggregate summary over a filtered locality set.
type Statistics struct {
	Localities   int                 `json:"localities"`
	Numbers      CategoryCounts      `json:"numbers"`
	Completeness CompletenessBuckets `json:"completeness"`
	LastUpdates  []RecentUpdate      `json:"last_update"`
	Viewport     *Viewport           `json:"viewport,omitempty"`
}

// CategoryCounts holds per-category locality counts.
type CategoryCounts struct {
	Hospital          int `json:"hospital"`
	MedicalClinic     int `json:"medical_clinic"`
	OrthopaedicClinic int `json:"orthopaedic_clinic"`
}

// CompletenessBuckets partitions a locality set by non-empty value count.
type CompletenessBuckets struct {
	Complete int `json:"complete"`
	Partial  int `json:"partial"`
	Basic    int `json:"basic"`
}

// RecentUpdate is one of the most recent archive change groups.
type RecentUpdate struct {
	Author       string    `json:"author"`
	DateApplied  time.Time `json:"date_applied"`
	Mode         int       `json:"mode"`
	Locality     string    `json:"locality"`
	LocalityUUID string    `json:"locality_uuid"`
	DataCount    int       `json:"data_count"`
}

// Viewport is a geocoded bounding box for centering the map on a country.
type Viewport struct {
	NortheastLat float64 `json:"northeast_lat"`
	NortheastLng float64 `json:"northeast_lng"`
	SouthwestLat float64 `json:"southwest_lat"`
	SouthwestLng float64 `json:"southwest_lng"`
}

// SimpleStatistic is the widget-embeddable count and completeness pair.
type SimpleStatistic struct {
	Number       int    `json:"number"`
	Completeness string `json:"completeness"`
}

// HealthResponse is the liveness check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
