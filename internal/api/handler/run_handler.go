package handler

import (
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/bizlink/digest-engine/internal/api/middleware"
	"github.com/bizlink/digest-engine/internal/digest"
)

// RunHandler exposes the cron-facing trigger endpoint.
type RunHandler struct {
	coord  *digest.Coordinator
	logger *zap.Logger
}

func NewRunHandler(coord *digest.Coordinator, logger *zap.Logger) *RunHandler {
	return &RunHandler{coord: coord, logger: logger}
}

// Trigger handles POST /api/v1/runs
//
// No body required. Responds 200 with the run summary, or 500 with an
// error payload when the run aborts before claiming anything (preference
// or event-store read failure). Overlapping triggers are safe: the
// conditional completion marking guarantees a single winner per event.
//
// @Summary  Execute one aggregation-and-dispatch run
// @Tags     runs
// @Produce  json
// @Success  200  {object}  digest.Summary
// @Failure  500  {object}  map[string]string
// @Router   /api/v1/runs [post]
func (h *RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	summary, err := h.coord.Run(r.Context())
	if err != nil {
		h.logger.Error("run aborted",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
