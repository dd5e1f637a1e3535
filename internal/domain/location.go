package domain

import (
	"fmt"
	"strings"
)

// WorldRef identifies a world (dimension) as a namespace + name pair.
// Example: minecraft:overworld
type WorldRef struct {
	Namespace string
	Name      string
}

// ParseWorldRef parses "namespace:name" using the resource location
// charset: [a-z0-9_.-] in both parts, plus '/' in the name.
func ParseWorldRef(s string) (WorldRef, error) {
	ns, name, ok := strings.Cut(s, ":")
	if !ok || !validWorldPart(ns, false) || !validWorldPart(name, true) {
		return WorldRef{}, fmt.Errorf("invalid world reference %q", s)
	}
	return WorldRef{Namespace: ns, Name: name}, nil
}

func validWorldPart(s string, slash bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
		case r == '/' && slash:
		default:
			return false
		}
	}
	return true
}

func (w WorldRef) String() string {
	return w.Namespace + ":" + w.Name
}

// Position is an integer block coordinate.
type Position struct {
	X, Y, Z int
}

// Above returns the position one block higher.
func (p Position) Above() Position {
	return Position{X: p.X, Y: p.Y + 1, Z: p.Z}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Location is a position inside a specific world.
// At most one marker of either kind may occupy a Location.
type Location struct {
	World    WorldRef
	Position Position
}

func (l Location) String() string {
	return l.World.String() + " " + l.Position.String()
}
