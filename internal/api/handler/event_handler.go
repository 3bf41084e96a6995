package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apimw "github.com/bizlink/digest-engine/internal/api/middleware"
	"github.com/bizlink/digest-engine/internal/domain"
	"github.com/bizlink/digest-engine/internal/repository"
)

// EventHandler handles the producer-facing ingestion endpoint and the
// audit read endpoints.
type EventHandler struct {
	events   repository.EventRepository
	onIngest func()
	logger   *zap.Logger
}

// NewEventHandler constructs the handler. onIngest is an optional metrics
// callback fired per accepted event (nil = no-op).
func NewEventHandler(events repository.EventRepository, onIngest func(), logger *zap.Logger) *EventHandler {
	if onIngest == nil {
		onIngest = func() {}
	}
	return &EventHandler{events: events, onIngest: onIngest, logger: logger}
}

// Create handles POST /api/v1/events
//
// @Summary  Append a domain event to the queue
// @Tags     events
// @Accept   json
// @Produce  json
// @Param    body  body      domain.IngestRequest  true  "Event payload"
// @Success  201   {object}  domain.QueuedEvent
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/events [post]
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.Warn("event rejected",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	e := &domain.QueuedEvent{
		ID:        uuid.New().String(),
		Kind:      req.Kind,
		BatchKey:  req.BatchKey,
		Payload:   req.Payload,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.events.Insert(r.Context(), e); err != nil {
		h.logger.Error("event insert failed", zap.Error(err))
		mapError(w, err)
		return
	}

	h.onIngest()
	respondJSON(w, http.StatusCreated, e)
}

// GetByID handles GET /api/v1/events/{id}
//
// @Summary  Get a queued event by ID
// @Tags     events
// @Produce  json
// @Param    id   path      string  true  "Event UUID"
// @Success  200  {object}  domain.QueuedEvent
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/events/{id} [get]
func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := h.events.GetByID(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}
