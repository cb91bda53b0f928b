package models

import "time"

// Mode classifies an archive entry.
type Mode int

// Archive modes.
const (
	ModeCreate Mode = 1
	ModeUpdate Mode = 2
	ModeDelete Mode = 3
)

// String returns the human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	case ModeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Changeset is an atomic, attributable unit of change. Every mutation to a
// locality, value, tag, or the attribute schema references exactly one
// changeset. Rows are write-once: never updated, never deleted.
type Changeset struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

// LocalityArchive is an immutable versioned snapshot of a locality taken
// whenever it changes. Versions per uuid are strictly increasing and
// gapless starting at 1.
type LocalityArchive struct {
	ID           int64     `json:"-"`
	LocalityUUID string    `json:"uuid"`
	Version      int       `json:"version"`
	Mode         Mode      `json:"mode"`
	Lon          float64   `json:"long"`
	Lat          float64   `json:"lat"`
	ChangesetID  int64     `json:"changeset_id"`
	Actor        string    `json:"actor"`
	ChangedAt    time.Time `json:"changed_at"`
}

// ValueArchive is an immutable versioned snapshot of one attribute value.
type ValueArchive struct {
	ID           int64     `json:"-"`
	LocalityUUID string    `json:"uuid"`
	AttributeKey string    `json:"key"`
	Version      int       `json:"version"`
	Mode         Mode      `json:"mode"`
	Data         string    `json:"data"`
	ChangesetID  int64     `json:"changeset_id"`
	ChangedAt    time.Time `json:"changed_at"`
}
