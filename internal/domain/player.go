package domain

import "github.com/google/uuid"

// Player is a snapshot of a connected player as reported by the game.
type Player struct {
	// ID is the stable player identifier.
	ID uuid.UUID

	// Name is the display name, used for logs only.
	Name string

	// World is the world the player is currently in.
	World WorldRef

	// Standing is the block the player is standing on.
	Standing Position
}

// Feet returns the location directly above the block the player stands on.
func (p Player) Feet() Location {
	return Location{World: p.World, Position: p.Standing.Above()}
}

// Ground returns the location of the block the player stands on.
func (p Player) Ground() Location {
	return Location{World: p.World, Position: p.Standing}
}
