package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(svc *Service) http.Handler {
	r := chi.NewRouter()
	h := handler{svc: svc}

	r.Get("/", h.ByType)
	r.Get("/risk", h.Risk)
	r.Get("/outbreaks", h.Outbreaks)
	r.Get("/demand", h.Demand)
	r.Get("/simulations", h.Simulations)
	r.Get("/anomalies", h.Anomalies)

	return r
}
