package ws

import (
	"sync/atomic"
	"time"
)

// Event types broadcast to map clients.
const (
	EventLocalityCreated = "locality.created"
	EventLocalityUpdated = "locality.updated"
)

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type string       `json:"type"`
	ID   uint64       `json:"id"`
	Data LocalityData `json:"data"`
	Time time.Time    `json:"time"`
}

// LocalityData is the payload of a locality event. It carries just enough
// for a map client to place or refresh a marker.
type LocalityData struct {
	UUID        string  `json:"uuid"`
	Longitude   float64 `json:"long"`
	Latitude    float64 `json:"lat"`
	ChangesetID int64   `json:"changeset_id"`
}

// EventSequence issues monotonic event IDs for the public stream.
type EventSequence struct {
	counter atomic.Uint64
}

// NewEventSequence creates a new EventSequence.
func NewEventSequence() *EventSequence {
	return &EventSequence{}
}

// Next returns the next sequence number.
func (es *EventSequence) Next() uint64 {
	return es.counter.Add(1)
}
