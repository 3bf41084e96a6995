package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bizlink/digest-engine/internal/api"
	"github.com/bizlink/digest-engine/internal/config"
	"github.com/bizlink/digest-engine/internal/db"
	"github.com/bizlink/digest-engine/internal/digest"
	"github.com/bizlink/digest-engine/internal/ingest"
	"github.com/bizlink/digest-engine/internal/metrics"
	"github.com/bizlink/digest-engine/internal/provider"
	"github.com/bizlink/digest-engine/internal/ratelimiter"
	"github.com/bizlink/digest-engine/internal/repository"
	"github.com/bizlink/digest-engine/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (trigger, ingestion, and audit endpoints)",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, _ := zap.NewProduction()
		defer logger.Sync() //nolint:errcheck

		// ---- configuration ----
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// ---- database ----
		ctx := context.Background()
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")

		// ---- core dependencies ----
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		events := repository.NewPgEventRepository(pool)
		prefs := repository.NewPgPreferenceRepository(pool)

		mailer := provider.NewHTTPMailer(cfg.MailBaseURL, cfg.MailAPIKey, cfg.MailTimeout)
		limiter := ratelimiter.New(cfg.SendRate)
		dispatcher := digest.NewDispatcher(mailer, limiter, cfg.MailFrom, logger)
		aggregator := digest.NewAggregator(events, cfg.EventFetchLimit)
		coord := digest.NewCoordinator(events, prefs, aggregator, dispatcher, m.EngineHooks(), logger)

		// ---- background goroutines ----
		// Context for all of them; cancelled on shutdown signal.
		bgCtx, cancelBg := context.WithCancel(ctx)
		defer cancelBg()
		var bg sync.WaitGroup

		if cfg.RunInterval > 0 {
			sched := worker.NewScheduler(coord, cfg.RunInterval, logger)
			bg.Add(1)
			go func() {
				defer bg.Done()
				sched.Run(bgCtx)
			}()
		}

		if len(cfg.KafkaBrokers) > 0 {
			consumer := ingest.NewConsumer(ingest.Config{
				Brokers: cfg.KafkaBrokers,
				Topic:   cfg.KafkaTopic,
				GroupID: cfg.KafkaGroupID,
			}, events, func() { m.EventsIngested.WithLabelValues("kafka").Inc() }, logger)
			defer consumer.Close() //nolint:errcheck
			bg.Add(1)
			go func() {
				defer bg.Done()
				consumer.Run(bgCtx)
			}()
		}

		// ---- HTTP server ----
		onHTTPIngest := func() { m.EventsIngested.WithLabelValues("http").Inc() }
		router := api.NewRouter(coord, events, onHTTPIngest, reg, logger)
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}

		// Start server in a goroutine so it does not block the shutdown listener.
		go func() {
			logger.Info("server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server error", zap.Error(err))
			}
		}()

		// ---- graceful shutdown ----
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutdown signal received")

		// 1. Stop accepting new HTTP requests.
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", zap.Error(err))
		}

		// 2. Signal the scheduler and ingestor to stop, then wait for any
		//    in-flight run to finish its current group.
		cancelBg()
		bg.Wait()

		logger.Info("server stopped cleanly")
		return nil
	},
}
