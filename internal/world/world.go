// Package world defines the capabilities wirelink needs from the game engine.
package world

import (
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

// Adapter reads and writes block state in the game world.
// Implementations must be safe for concurrent use.
type Adapter interface {
	BlockAt(loc domain.Location) domain.Material
	SetBlock(loc domain.Location, m domain.Material)
	DropItem(loc domain.Location, m domain.Material)
	SendMessage(player uuid.UUID, msg string)
}

// Inventory checks and consumes player items.
type Inventory interface {
	HasItem(player uuid.UUID, m domain.Material) bool
	TakeItem(player uuid.UUID, m domain.Material, n int) bool
}
