package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/wirelink/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/mw"
)

func init() { Register("probes", registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	local := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	local.Get("/healthz", handlers.Healthz(d))
	local.Get("/readyz", handlers.Readyz(d))
	local.Get("/infra", handlers.Infra(d))
}
