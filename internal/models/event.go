package models

import "time"

// Place event types.
const (
	PlaceCreated = "created"
	PlaceUpdated = "updated"
	PlaceDeleted = "deleted"
)

// PlaceEvent describes a change to a persisted place.
type PlaceEvent struct {
	Type       string    `json:"type"`
	Place      Place     `json:"place"`
	OccurredAt time.Time `json:"occurred_at"`
}
