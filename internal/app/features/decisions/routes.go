// internal/app/features/decisions/routes.go
package decisions

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter serving the decision API; mounted under
// /v1/decisions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeDecide)
	r.Post("/batch", h.ServeDecideBatch)
	return r
}
