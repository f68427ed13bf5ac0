// internal/app/features/console/routes.go
package console

import (
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter serving the operator console; every route
// requires a signed-in operator session.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("operator"))
		pr.Get("/", h.ServeConsole)
		pr.Post("/", h.HandleEvaluate)
		pr.Get("/history", h.ServeHistory)
		pr.Get("/history.csv", h.ServeHistoryCSV)
	})

	return r
}
