package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/wirelink/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/mw"
)

func init() { Register("toggle", registerToggle) }

// Static paths such as /healthz win over "/{id}" in chi's tree.
// Both toggle routes draw from one limiter.
func registerToggle(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Index(d))

	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RatePerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	}))
	limited.Get("/{id}", handlers.Toggle(d))
	limited.Get("/waypoints/{id}", handlers.InvokeWaypoint(d))

	// Without these, GetHead would run the GET handlers on HEAD.
	r.Head("/{id}", handlers.PeekEndpoint(d))
	r.Head("/waypoints/{id}", handlers.PeekWaypoint(d))
}
