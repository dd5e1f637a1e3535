package marker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

// Waypoint is a lamp that fires a GET to its URL when invoked.
// It has no state and does not follow its owner's presence.
type Waypoint struct {
	env   *Env
	id    uuid.UUID
	owner uuid.UUID
	loc   domain.Location
	url   string

	mu        sync.Mutex
	destroyed bool
}

// NewWaypoint creates a waypoint. It is not indexed or persisted until
// Save is called.
func (env *Env) NewWaypoint(id, owner uuid.UUID, loc domain.Location, url string) *Waypoint {
	return &Waypoint{env: env, id: id, owner: owner, loc: loc, url: url}
}

func (w *Waypoint) ID() uuid.UUID             { return w.id }
func (w *Waypoint) Owner() uuid.UUID          { return w.owner }
func (w *Waypoint) Kind() domain.Kind         { return domain.KindWaypoint }
func (w *Waypoint) Location() domain.Location { return w.loc }
func (w *Waypoint) URL() string               { return w.url }
func (w *Waypoint) IsOwner(p uuid.UUID) bool  { return w.owner == p }
func (w *Waypoint) sealed()                   {}

func (w *Waypoint) Record() Record {
	return Record{
		Kind:     domain.KindWaypoint,
		ID:       w.id,
		Owner:    w.owner,
		World:    w.loc.World,
		Position: w.loc.Position,
		URL:      w.url,
	}
}

// Place shows the lamp at the waypoint's location.
func (w *Waypoint) Place() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.env.World.SetBlock(w.loc, domain.MaterialRedstoneLamp)
}

// Invoke fires the webhook and returns immediately. Delivery is not
// reported and there is no ordering between successive invocations.
func (w *Waypoint) Invoke(ctx context.Context) error {
	w.mu.Lock()
	destroyed := w.destroyed
	w.mu.Unlock()
	if destroyed {
		return domain.ErrNotLoaded
	}

	w.env.Webhooks.Fire(w.url)
	w.env.publish(ctx, domain.Event{
		Kind:   domain.KindWaypoint,
		Action: domain.ActionInvoked,
		ID:     w.id,
		Owner:  w.owner,
		At:     time.Now(),
	})
	return nil
}

func (w *Waypoint) Save() error {
	return save(w.env, w)
}

// Destroy deletes the record, clears the block, drops the lamp and
// leaves the index. If the record cannot be deleted nothing else changes.
func (w *Waypoint) Destroy() error {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return nil
	}

	if err := w.env.Store.Delete(domain.KindWaypoint, w.id.String()); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("destroy waypoint %s: %w", w.id, err)
	}

	w.env.World.SetBlock(w.loc, domain.MaterialAir)
	w.env.World.DropItem(w.loc, domain.MaterialRedstoneLamp)
	w.destroyed = true
	w.mu.Unlock()

	w.env.Index.Remove(w)
	return nil
}
