package ledger

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/RegionalHealth/RH-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

type handler struct {
	svc *Service
}

func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, ErrValidation):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[ledger] %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ListResources filters the ledger by query string. An id parameter
// returns that single record instead.
func (h handler) ListResources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		res, err := h.svc.Get(r.Context(), id)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]any{"resource": res})
		return
	}

	result, err := h.svc.Query(r.Context(), Filter{
		StateID:    q.Get("state_id"),
		DistrictID: q.Get("district_id"),
		Type:       ResourceType(q.Get("type")),
		Status:     Status(q.Get("status")),
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"resources": result.Resources,
		"summary":   result.Summary,
		"timestamp": time.Now().UTC(),
	})
}

func (h handler) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"resource": res})
}

func (h handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, merged, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	msg := "Resource created successfully."
	status := http.StatusCreated
	if merged {
		msg = "Existing resource found, merged quantities and updated resource."
		status = http.StatusOK
	}
	utils.WriteJSON(w, status, map[string]any{
		"success":  true,
		"merged":   merged,
		"id":       res.ID,
		"resource": res,
		"message":  msg,
	})
}

func (h handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"resource": res,
		"message":  "Resource updated successfully",
	})
}

func (h handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      res.ID,
		"message": "Resource deleted successfully",
	})
}
