package marker

import (
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

// Record is the durable part of a marker.
type Record struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	Kind  domain.Kind
	ID    uuid.UUID
	Owner uuid.UUID

	// ─────────────────────────────
	// Placement (immutable)
	// ─────────────────────────────

	World    domain.WorldRef
	Position domain.Position

	// URL is the webhook target. Waypoints only.
	URL string
}

// Location returns the (world, position) key of the record.
func (r Record) Location() domain.Location {
	return domain.Location{World: r.World, Position: r.Position}
}
