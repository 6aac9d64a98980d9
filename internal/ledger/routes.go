package ledger

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the resource endpoints. Writes go through admin when
// it is non-nil.
func SetupRoutes(svc *Service, admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h := handler{svc: svc}

	// Public routes
	r.Get("/", h.ListResources)
	r.Get("/{id}", h.GetResource)

	r.Group(func(r chi.Router) {
		if admin != nil {
			r.Use(admin)
		}
		r.Post("/", h.CreateResource)
		r.Put("/{id}", h.UpdateResource)
		r.Delete("/{id}", h.DeleteResource)
	})

	return r
}
