package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizlink/digest-engine/internal/repository"
)

// BatchHandler serves the batch audit endpoint. Batches are write-once
// records created by the engine; this surface is read-only.
type BatchHandler struct {
	events repository.EventRepository
}

func NewBatchHandler(events repository.EventRepository) *BatchHandler {
	return &BatchHandler{events: events}
}

// GetBatch handles GET /api/v1/batches/{id}
//
// @Summary  Get a dispatched batch and the events it summarised
// @Tags     batches
// @Produce  json
// @Param    id   path      string  true  "Batch UUID"
// @Success  200  {object}  map[string]any
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/batches/{id} [get]
func (h *BatchHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	batch, events, err := h.events.GetBatch(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"batch":  batch,
		"events": events,
	})
}
