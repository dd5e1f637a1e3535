package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/marker"
)

// Registry indexes live markers by location and by id.
// It is the single in-memory source of truth while the process runs;
// it is rebuilt from the disk store at startup.
type Registry struct {
	mu                  sync.RWMutex
	endpointsByLocation map[domain.Location]*marker.Endpoint
	endpointsByID       map[uuid.UUID]*marker.Endpoint
	waypointsByLocation map[domain.Location]*marker.Waypoint
	waypointsByID       map[uuid.UUID]*marker.Waypoint
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		endpointsByLocation: make(map[domain.Location]*marker.Endpoint),
		endpointsByID:       make(map[uuid.UUID]*marker.Endpoint),
		waypointsByLocation: make(map[domain.Location]*marker.Waypoint),
		waypointsByID:       make(map[uuid.UUID]*marker.Waypoint),
	}
}

// Add indexes m. Whatever marker of either kind occupied the same
// location is evicted from every index (last write wins); rejecting
// occupied locations is the caller's job.
func (r *Registry) Add(m marker.Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked(m.Location())

	switch v := m.(type) {
	case *marker.Endpoint:
		r.endpointsByLocation[v.Location()] = v
		r.endpointsByID[v.ID()] = v
	case *marker.Waypoint:
		r.waypointsByLocation[v.Location()] = v
		r.waypointsByID[v.ID()] = v
	}
}

func (r *Registry) evictLocked(loc domain.Location) {
	if e, ok := r.endpointsByLocation[loc]; ok {
		delete(r.endpointsByLocation, loc)
		delete(r.endpointsByID, e.ID())
	}
	if w, ok := r.waypointsByLocation[loc]; ok {
		delete(r.waypointsByLocation, loc)
		delete(r.waypointsByID, w.ID())
	}
}

// RegisterEndpoint indexes an endpoint.
func (r *Registry) RegisterEndpoint(e *marker.Endpoint) { r.Add(e) }

// RegisterWaypoint indexes a waypoint.
func (r *Registry) RegisterWaypoint(w *marker.Waypoint) { r.Add(w) }

// Remove drops m from every index that still points at this instance.
func (r *Registry) Remove(m marker.Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch v := m.(type) {
	case *marker.Endpoint:
		if r.endpointsByLocation[v.Location()] == v {
			delete(r.endpointsByLocation, v.Location())
		}
		if r.endpointsByID[v.ID()] == v {
			delete(r.endpointsByID, v.ID())
		}
	case *marker.Waypoint:
		if r.waypointsByLocation[v.Location()] == v {
			delete(r.waypointsByLocation, v.Location())
		}
		if r.waypointsByID[v.ID()] == v {
			delete(r.waypointsByID, v.ID())
		}
	}
}

// FindByLocation returns the marker at loc, checking endpoints first.
func (r *Registry) FindByLocation(loc domain.Location) (marker.Marker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.endpointsByLocation[loc]; ok {
		return e, true
	}
	if w, ok := r.waypointsByLocation[loc]; ok {
		return w, true
	}
	return nil, false
}

// FindEndpointByID returns the endpoint with the given id.
func (r *Registry) FindEndpointByID(id uuid.UUID) (*marker.Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.endpointsByID[id]
	return e, ok
}

// FindWaypointByID returns the waypoint with the given id.
func (r *Registry) FindWaypointByID(id uuid.UUID) (*marker.Waypoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.waypointsByID[id]
	return w, ok
}

// Endpoints returns a snapshot of every endpoint.
func (r *Registry) Endpoints() []*marker.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*marker.Endpoint, 0, len(r.endpointsByID))
	for _, e := range r.endpointsByID {
		out = append(out, e)
	}
	return out
}

// EndpointsOwnedBy returns a snapshot of the endpoints created by owner.
func (r *Registry) EndpointsOwnedBy(owner uuid.UUID) []*marker.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*marker.Endpoint
	for _, e := range r.endpointsByID {
		if e.IsOwner(owner) {
			out = append(out, e)
		}
	}
	return out
}

// Waypoints returns a snapshot of every waypoint.
func (r *Registry) Waypoints() []*marker.Waypoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*marker.Waypoint, 0, len(r.waypointsByID))
	for _, w := range r.waypointsByID {
		out = append(out, w)
	}
	return out
}

// Counts returns the number of indexed endpoints and waypoints.
func (r *Registry) Counts() (endpoints, waypoints int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.endpointsByID), len(r.waypointsByID)
}
