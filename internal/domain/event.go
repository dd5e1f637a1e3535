package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventAction describes what happened to a marker.
type EventAction string

const (
	ActionToggled EventAction = "toggled"
	ActionInvoked EventAction = "invoked"
)

// Event is emitted after a marker was toggled or invoked.
type Event struct {
	Kind    Kind        `json:"kind"`
	Action  EventAction `json:"action"`
	ID      uuid.UUID   `json:"id"`
	Owner   uuid.UUID   `json:"owner"`
	Enabled *bool       `json:"enabled,omitempty"`
	At      time.Time   `json:"at"`
}
