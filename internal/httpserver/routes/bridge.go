package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/wirelink/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/mw"
)

func init() { Register("bridge", registerBridge) }

func registerBridge(r chi.Router, d deps.Deps) {
	r.Route("/bridge/players/{player}", func(r chi.Router) {
		r.Use(
			mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
			mw.EnforceHost(d.AllowedHosts, d.Logger),
		)
		r.Post("/join", handlers.BridgeJoin(d))
		r.Post("/leave", handlers.BridgeLeave(d))
		r.Post("/commands", handlers.BridgeCommand(d))
		r.Get("/messages", handlers.BridgeMessages(d))
	})
}
