package analytics

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/RegionalHealth/RH-Backend/internal/risk"
	"github.com/RegionalHealth/RH-Backend/internal/utils"
)

type handler struct {
	svc *Service
}

func queryFrom(r *http.Request) Query {
	q := r.URL.Query()
	return Query{
		StateID:    q.Get("state_id"),
		DistrictID: q.Get("district_id"),
		Horizon:    risk.Horizon(q.Get("horizon")),
	}
}

func (h handler) serve(w http.ResponseWriter, r *http.Request, kind Kind) {
	start := time.Now()
	env, err := h.svc.Run(r.Context(), kind, queryFrom(r))
	if err != nil {
		if errors.Is(err, ErrUnknownKind) {
			utils.WriteError(w, http.StatusBadRequest, "Invalid AI analysis type")
			return
		}
		log.Printf("[analytics] %s: %v", kind, err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.AddServerTiming(w, "analytics", time.Since(start))
	utils.WriteJSON(w, http.StatusOK, env)
}

// ByType dispatches on the type query parameter, defaulting to outbreak
// predictions.
func (h handler) ByType(w http.ResponseWriter, r *http.Request) {
	t := r.URL.Query().Get("type")
	if t == "" {
		t = string(KindPredictions)
	}
	h.serve(w, r, Kind(t))
}

func (h handler) Risk(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, KindRiskAssessment)
}

func (h handler) Outbreaks(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, KindPredictions)
}

func (h handler) Demand(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, KindResourceDemand)
}

func (h handler) Simulations(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, KindSimulation)
}

func (h handler) Anomalies(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, KindAnomalies)
}
