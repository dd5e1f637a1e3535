package marker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

// Endpoint is a block that flips between the active and inactive
// material when toggled. It is only toggleable while its owner is online.
type Endpoint struct {
	env   *Env
	id    uuid.UUID
	owner uuid.UUID
	loc   domain.Location

	mu        sync.Mutex
	enabled   bool
	attached  *domain.Player // nil while the owner is offline
	destroyed bool
}

// NewEndpoint creates an unloaded endpoint. It is not indexed or
// persisted until Save is called.
func (env *Env) NewEndpoint(id, owner uuid.UUID, loc domain.Location) *Endpoint {
	return &Endpoint{env: env, id: id, owner: owner, loc: loc}
}

func (e *Endpoint) ID() uuid.UUID             { return e.id }
func (e *Endpoint) Owner() uuid.UUID          { return e.owner }
func (e *Endpoint) Kind() domain.Kind         { return domain.KindEndpoint }
func (e *Endpoint) Location() domain.Location { return e.loc }
func (e *Endpoint) IsOwner(p uuid.UUID) bool  { return e.owner == p }
func (e *Endpoint) sealed()                   {}

func (e *Endpoint) Record() Record {
	return Record{
		Kind:     domain.KindEndpoint,
		ID:       e.id,
		Owner:    e.owner,
		World:    e.loc.World,
		Position: e.loc.Position,
	}
}

// Enabled reports the tracked state.
func (e *Endpoint) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Attached returns the player the endpoint is loaded for, if any.
func (e *Endpoint) Attached() (domain.Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attached == nil {
		return domain.Player{}, false
	}
	return *e.attached, true
}

// Place shows the inactive material at the endpoint's location.
func (e *Endpoint) Place() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.env.World.SetBlock(e.loc, domain.EndpointInactive)
}

// Load attaches player and resamples the state from the world block.
func (e *Endpoint) Load(player domain.Player) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return
	}
	p := player
	e.attached = &p
	e.enabled = e.env.World.BlockAt(e.loc) == domain.EndpointActive
}

// Unload detaches the player, forces the state off and clears the block.
// It is safe to call on an endpoint that is not loaded.
func (e *Endpoint) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.attached = nil
	e.enabled = false
	if !e.destroyed {
		e.env.World.SetBlock(e.loc, domain.MaterialAir)
	}
}

// Toggle flips the state and writes the matching material.
// It fails with domain.ErrNotLoaded when no player is attached.
func (e *Endpoint) Toggle(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if e.attached == nil || e.destroyed {
		e.mu.Unlock()
		return false, domain.ErrNotLoaded
	}

	e.enabled = !e.enabled
	material := domain.EndpointInactive
	if e.enabled {
		material = domain.EndpointActive
	}
	e.env.World.SetBlock(e.loc, material)
	enabled := e.enabled
	e.mu.Unlock()

	e.env.publish(ctx, domain.Event{
		Kind:    domain.KindEndpoint,
		Action:  domain.ActionToggled,
		ID:      e.id,
		Owner:   e.owner,
		Enabled: &enabled,
		At:      time.Now(),
	})
	return enabled, nil
}

func (e *Endpoint) Save() error {
	return save(e.env, e)
}

// Destroy deletes the record, clears the block, drops both materials,
// leaves the index and tells the attached player. If the record cannot
// be deleted nothing else changes.
func (e *Endpoint) Destroy() error {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return nil
	}

	if err := e.env.Store.Delete(domain.KindEndpoint, e.id.String()); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("destroy endpoint %s: %w", e.id, err)
	}

	e.env.World.SetBlock(e.loc, domain.MaterialAir)
	e.env.World.DropItem(e.loc, domain.MaterialRedstoneBlock)
	e.env.World.DropItem(e.loc, domain.MaterialQuartzBlock)

	e.destroyed = true
	attached := e.attached
	e.attached = nil
	e.enabled = false
	e.mu.Unlock()

	e.env.Index.Remove(e)

	if attached != nil {
		e.env.World.SendMessage(attached.ID, fmt.Sprintf("Your endpoint at %d, %d was destroyed.",
			e.loc.Position.X, e.loc.Position.Z))
	}
	return nil
}
