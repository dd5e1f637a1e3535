package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/wirelink/internal/httpserver/deps"
)

const pingTimeout = 2 * time.Second

type componentStatus struct {
	OK    bool   `json:"ok"`
	Mode  string `json:"mode,omitempty"`
	Error string `json:"error,omitempty"`
}

type infraResponse struct {
	State      string                     `json:"state"`
	Loaded     bool                       `json:"loaded"`
	Endpoints  int                        `json:"endpoints"`
	Waypoints  int                        `json:"waypoints"`
	Worlds     int                        `json:"worlds"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports registry counts and the state of the event mirror.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoints, waypoints := d.Registry.Counts()

		resp := infraResponse{
			State:     d.Lifecycle.State().String(),
			Loaded:    d.Lifecycle.Loaded(),
			Endpoints: endpoints,
			Waypoints: waypoints,
			Worlds:    d.Worlds.Len(),
			Components: map[string]componentStatus{
				"registry": {OK: true},
				"redis":    checkRedis(r.Context(), d),
			},
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Events == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.Events.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: "degraded", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "mirroring"}
}
