package handler

import (
	"net/http"

	"github.com/bizlink/digest-engine/internal/digest"
	"github.com/bizlink/digest-engine/internal/repository"
)

// MetricsHandler serves a human-readable JSON snapshot: the pending queue
// depth and the last run summary. Raw Prometheus metrics are available at
// /metrics via promhttp and are separate from this endpoint.
type MetricsHandler struct {
	events repository.EventRepository
	coord  *digest.Coordinator
}

func NewMetricsHandler(events repository.EventRepository, coord *digest.Coordinator) *MetricsHandler {
	return &MetricsHandler{events: events, coord: coord}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Pending-queue depth and last run summary
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	pending, err := h.events.CountPending(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count pending events")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"pending_events": pending,
		"last_run":       h.coord.LastSummary(),
	})
}
