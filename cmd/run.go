package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bizlink/digest-engine/internal/config"
	"github.com/bizlink/digest-engine/internal/db"
	"github.com/bizlink/digest-engine/internal/digest"
	"github.com/bizlink/digest-engine/internal/provider"
	"github.com/bizlink/digest-engine/internal/ratelimiter"
	"github.com/bizlink/digest-engine/internal/repository"
)

// runCmd is the cron-friendly entrypoint: one complete engine pass, the
// summary printed as JSON, then exit. Overlap with a running serve process
// is safe because completion marking is conditional per event.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one aggregation-and-dispatch pass and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, _ := zap.NewProduction()
		defer logger.Sync() //nolint:errcheck

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx := context.Background()
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		events := repository.NewPgEventRepository(pool)
		prefs := repository.NewPgPreferenceRepository(pool)
		mailer := provider.NewHTTPMailer(cfg.MailBaseURL, cfg.MailAPIKey, cfg.MailTimeout)
		limiter := ratelimiter.New(cfg.SendRate)
		dispatcher := digest.NewDispatcher(mailer, limiter, cfg.MailFrom, logger)
		aggregator := digest.NewAggregator(events, cfg.EventFetchLimit)
		coord := digest.NewCoordinator(events, prefs, aggregator, dispatcher, digest.MetricHooks{}, logger)

		summary, err := coord.Run(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}
