package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/marklangat/waleads-backend/internal/errors"
	"github.com/marklangat/waleads-backend/internal/service"
)

// CampaignHandler exposes the upstream-facing campaign surface: releasing a
// campaign into the dispatch queue and reading its progress. The dispatch
// workers themselves have no externally triggerable endpoint.
type CampaignHandler struct {
	Enqueue *service.EnqueueService
	Items   service.ItemStore
}

func (h *CampaignHandler) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Post("/campaigns/{id}/enqueue", h.EnqueueCampaign)
	r.Get("/campaigns/{id}/stats", h.CampaignStats)
}

func (h *CampaignHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *CampaignHandler) EnqueueCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	var payload struct {
		ContactIDs []int `json:"contact_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Enqueue.Submit(id, payload.ContactIDs); err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "failed to enqueue campaign: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"campaign_id": id, "status": "queued"})
}

func (h *CampaignHandler) CampaignStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	stats, err := h.Items.StatsByCampaign(id)
	if err != nil {
		http.Error(w, "failed to fetch stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"campaign_id": id, "stats": stats})
}
