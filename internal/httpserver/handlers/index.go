package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/wirelink/internal/httpserver/deps"
)

// Index sends visitors to the project page.
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, d.IndexURL, http.StatusFound)
	}
}
