package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bizlink/digest-engine/internal/api/handler"
	apimw "github.com/bizlink/digest-engine/internal/api/middleware"
	"github.com/bizlink/digest-engine/internal/digest"
	"github.com/bizlink/digest-engine/internal/repository"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	coord *digest.Coordinator,
	events repository.EventRepository,
	onIngest func(),
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	rh := handler.NewRunHandler(coord, logger)
	eh := handler.NewEventHandler(events, onIngest, logger)
	bh := handler.NewBatchHandler(events)
	mh := handler.NewMetricsHandler(events, coord)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Cron-facing trigger
		r.Post("/runs", rh.Trigger)

		// Producer-facing ingestion + audit reads
		r.Post("/events", eh.Create)
		r.Get("/events/{id}", eh.GetByID)
		r.Get("/batches/{id}", bh.GetBatch)

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}
