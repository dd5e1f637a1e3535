// Package marker implements the two in-world marker variants: endpoints,
// which can be toggled remotely, and waypoints, which fire a webhook.
//
// Each marker guards its mutable state with its own mutex. Markers never
// hold their lock while calling into the registry, and the registry never
// calls into a marker while holding its own lock.
package marker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/world"
)

// Marker is the contract shared by *Endpoint and *Waypoint. The variant
// set is closed; callers switch on the concrete type.
type Marker interface {
	ID() uuid.UUID
	Owner() uuid.UUID
	Kind() domain.Kind
	Location() domain.Location
	Record() Record

	// IsOwner reports whether player created the marker.
	IsOwner(player uuid.UUID) bool

	// Save indexes the marker and persists its record.
	Save() error

	// Destroy removes the marker from the world, the store and the index.
	Destroy() error

	sealed()
}

// Index is the part of the registry markers maintain themselves in.
type Index interface {
	Add(m Marker)
	Remove(m Marker)
}

// Store persists encoded records, one per marker.
type Store interface {
	Write(kind domain.Kind, id string, encoded string) error
	Delete(kind domain.Kind, id string) error
}

// Firer issues fire-and-forget webhook requests.
type Firer interface {
	Fire(url string)
}

// EventSink receives toggle and invoke events. Publishing is best effort.
type EventSink interface {
	Publish(ctx context.Context, ev domain.Event)
}

// Env bundles the collaborators every marker needs.
type Env struct {
	World    world.Adapter
	Index    Index
	Store    Store
	Webhooks Firer
	Events   EventSink // optional
}

// New builds the marker described by r.
func (env *Env) New(r Record) (Marker, error) {
	switch r.Kind {
	case domain.KindEndpoint:
		return env.NewEndpoint(r.ID, r.Owner, r.Location()), nil
	case domain.KindWaypoint:
		return env.NewWaypoint(r.ID, r.Owner, r.Location(), r.URL), nil
	default:
		return nil, fmt.Errorf("unknown marker kind %q", r.Kind)
	}
}

func (env *Env) publish(ctx context.Context, ev domain.Event) {
	if env.Events == nil {
		return
	}
	env.Events.Publish(ctx, ev)
}

// save is shared by both variants: index first, then persist, and undo
// the index entry if the write fails.
func save(env *Env, m Marker) error {
	env.Index.Add(m)
	if err := env.Store.Write(m.Kind(), m.ID().String(), Encode(m.Record())); err != nil {
		env.Index.Remove(m)
		return fmt.Errorf("save %s %s: %w", m.Kind(), m.ID(), err)
	}
	return nil
}
