package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
)

const (
	bodyInvalidUUID       = "Invalid UUID."
	bodyEndpointNotLoaded = "Endpoint not loaded."
	bodyWaypointNotLoaded = "Waypoint not loaded."
	bodyWaypointInvoked   = "Waypoint invoked."
)

// parseID accepts the 36 character hyphenated form only. Hex digits may
// be either case.
func parseID(s string) (uuid.UUID, bool) {
	if len(s) != 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Toggle flips an endpoint and answers with its new state.
func Toggle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeText(w, http.StatusNotFound, bodyInvalidUUID)
			return
		}

		e, ok := d.Registry.FindEndpointByID(id)
		if !ok {
			writeText(w, http.StatusNotFound, bodyEndpointNotLoaded)
			return
		}

		enabled, err := e.Toggle(r.Context())
		if err != nil {
			if errors.Is(err, domain.ErrNotLoaded) {
				writeText(w, http.StatusBadRequest, bodyEndpointNotLoaded)
				return
			}
			d.Logger.Error("toggle failed", logger.Stringer("endpoint", id), logger.Error(err))
			writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}

		d.Logger.Debug("endpoint toggled", logger.Stringer("endpoint", id), logger.Bool("enabled", enabled))
		writeText(w, http.StatusOK, strconv.FormatBool(enabled))
	}
}

// PeekEndpoint answers HEAD /{id} with the status Toggle would use,
// without touching the endpoint.
func PeekEndpoint(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeText(w, http.StatusNotFound, "")
			return
		}
		e, ok := d.Registry.FindEndpointByID(id)
		if !ok {
			writeText(w, http.StatusNotFound, "")
			return
		}
		if _, attached := e.Attached(); !attached {
			writeText(w, http.StatusBadRequest, "")
			return
		}
		writeText(w, http.StatusOK, "")
	}
}

// PeekWaypoint answers HEAD /waypoints/{id} without firing the webhook.
func PeekWaypoint(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeText(w, http.StatusNotFound, "")
			return
		}
		if _, ok := d.Registry.FindWaypointByID(id); !ok {
			writeText(w, http.StatusNotFound, "")
			return
		}
		writeText(w, http.StatusAccepted, "")
	}
}

// InvokeWaypoint fires a waypoint's webhook.
func InvokeWaypoint(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeText(w, http.StatusNotFound, bodyInvalidUUID)
			return
		}

		wp, ok := d.Registry.FindWaypointByID(id)
		if !ok {
			writeText(w, http.StatusNotFound, bodyWaypointNotLoaded)
			return
		}
		if err := wp.Invoke(r.Context()); err != nil {
			writeText(w, http.StatusNotFound, bodyWaypointNotLoaded)
			return
		}

		writeText(w, http.StatusAccepted, bodyWaypointInvoked)
	}
}
