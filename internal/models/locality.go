// Package models defines data types for the locality platform.
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/healthsites/localityd/internal/geo"
)

// UpstreamSeparator joins the "web" source marker and the uuid into an
// upstream id. The pilcrow is unlikely to appear in ids from other
// upstream systems.
const UpstreamSeparator = "¶"

// Locality is a point of interest (a health facility) on the map.
type Locality struct {
	ID          int64     `json:"-"`
	UUID        string    `json:"uuid"`
	UpstreamID  string    `json:"upstream_id"`
	Domain      string    `json:"domain"`
	Point       geo.Point `json:"geom"`
	ChangesetID int64     `json:"changeset_id"`
}

// Value is the current data of one attribute on one locality.
type Value struct {
	ID              int64  `json:"-"`
	LocalityID      int64  `json:"-"`
	SpecificationID int64  `json:"-"`
	AttributeKey    string `json:"key"`
	Data            string `json:"data"`
	ChangesetID     int64  `json:"changeset_id"`
}

// Tag is a free-text label on a locality, stored lower-cased.
type Tag struct {
	ID          int64  `json:"-"`
	LocalityID  int64  `json:"-"`
	Tag         string `json:"tag"`
	ChangesetID int64  `json:"changeset_id"`
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
	Mode      Mode      `json:"mode"`
}

// LocalitySubmission is the parsed payload of a create or update request:
// a mapping of attribute key to string value, geographic coordinates, and
// a pipe-delimited tag string.
type LocalitySubmission struct {
	Longitude *float64          `json:"long"`
	Latitude  *float64          `json:"lat"`
	Values    map[string]string `json:"values"`
	Tags      string            `json:"tags"`
}

// Point returns the submitted coordinates as a geo.Point.
// Valid only after Validate has passed.
func (s *LocalitySubmission) Point() geo.Point {
	return geo.Point{Lon: *s.Longitude, Lat: *s.Latitude}
}

// TagSet returns the submitted tags split, lower-cased, and deduplicated,
// in first-seen order.
func (s *LocalitySubmission) TagSet() []string {
	parts := strings.Split(s.Tags, "|")
	seen := make(map[string]bool, len(parts))
	tags := make([]string, 0, len(parts))

	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t == "" || seen[t] {
			continue
		}

		seen[t] = true
		tags = append(tags, t)
	}

	return tags
}

// Validate checks coordinates and the presence of every required attribute.
// requiredKeys is the set of required specification keys for the target
// domain. The first failing field is reported via ValidationError.
func (s *LocalitySubmission) Validate(requiredKeys []string) error {
	if s.Latitude == nil {
		return &ValidationError{Key: "latitude"}
	}

	if s.Longitude == nil {
		return &ValidationError{Key: "longitude"}
	}

	if *s.Latitude < -90 || *s.Latitude > 90 {
		return &ValidationError{Key: "latitude"}
	}

	if *s.Longitude < -180 || *s.Longitude > 180 {
		return &ValidationError{Key: "longitude"}
	}

	// Deterministic reporting when several required keys are missing.
	keys := make([]string, len(requiredKeys))
	copy(keys, requiredKeys)
	sort.Strings(keys)

	for _, key := range keys {
		if strings.TrimSpace(s.Values[key]) == "" {
			return &ValidationError{Key: key}
		}
	}

	return nil
}

// Completeness returns the populated-attribute percentage for a locality:
// non-empty values plus one for the geometry, over the domain's live
// specification count, formatted to two decimal places and capped at 100%.
func Completeness(valueCount, specCount int) string {
	if specCount <= 0 {
		return "0.00%"
	}

	pct := float64(valueCount+1) / float64(specCount) * 100
	if pct > 100 {
		pct = 100
	}

	return fmt.Sprintf("%.2f%%", pct)
}
