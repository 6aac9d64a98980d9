package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RegionalHealth/RH-Backend/internal/utils"
)

type handler struct {
	catalog *Catalog
}

func (h handler) ListStates(w http.ResponseWriter, r *http.Request) {
	states := h.catalog.States()
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"states": states,
		"total":  len(states),
	})
}

func (h handler) GetState(w http.ResponseWriter, r *http.Request) {
	s, ok := h.catalog.State(chi.URLParam(r, "state_id"))
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "State not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"state": s})
}

func (h handler) GetDistrict(w http.ResponseWriter, r *http.Request) {
	stateID := chi.URLParam(r, "state_id")
	d, ok := h.catalog.District(stateID, chi.URLParam(r, "district_id"))
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "District not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"district": d,
		"location": h.catalog.LocationName(stateID, d.ID),
	})
}

// SetupRoutes serves the read-only location catalog.
func SetupRoutes(c *Catalog) http.Handler {
	r := chi.NewRouter()
	h := handler{catalog: c}

	r.Get("/states", h.ListStates)
	r.Get("/states/{state_id}", h.GetState)
	r.Get("/states/{state_id}/districts/{district_id}", h.GetDistrict)

	return r
}
