package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bizlink/digest-engine/internal/domain"
	"github.com/bizlink/digest-engine/internal/repository"
)

// Summary reports aggregate counts for one engine run. Failures below the
// run level never escape Run; they land here and in the logs instead.
type Summary struct {
	BatchesProcessed       int `json:"batches_processed"`
	NotificationsProcessed int `json:"notifications_processed"`
	IndividualSent         int `json:"individual_sent"`
	GroupsSkipped          int `json:"groups_skipped"`
	RecipientFailures      int `json:"recipient_failures"`
	Deferred               int `json:"deferred"`
}

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the coordinator constructor signature clean; nil
// fields become no-ops.
type MetricHooks struct {
	OnDigestSent       func(kind domain.Kind)
	OnIndividualSent   func(kind domain.Kind)
	OnRecipientFailure func(n int)
	OnGroupSkipped     func(reason string)
	OnRunCompleted     func(elapsed time.Duration)
}

func (h *MetricHooks) fillDefaults() {
	if h.OnDigestSent == nil {
		h.OnDigestSent = func(domain.Kind) {}
	}
	if h.OnIndividualSent == nil {
		h.OnIndividualSent = func(domain.Kind) {}
	}
	if h.OnRecipientFailure == nil {
		h.OnRecipientFailure = func(int) {}
	}
	if h.OnGroupSkipped == nil {
		h.OnGroupSkipped = func(string) {}
	}
	if h.OnRunCompleted == nil {
		h.OnRunCompleted = func(time.Duration) {}
	}
}

// Coordinator orchestrates one complete engine pass: resolve preferences,
// aggregate pending events, decide digest vs individual per group, render,
// dispatch, and mark completion.
//
// Runs are stateless; concurrency comes only from overlapping invocations.
// The repository's conditional claim (processed_at IS NULL) is the sole
// synchronization point between them. Marking happens after dispatch, so a
// run interrupted between send and mark leaves events pending and they may
// be delivered twice on the next run — the documented at-least-once
// contract.
type Coordinator struct {
	events     repository.EventRepository
	prefs      repository.PreferenceRepository
	aggregator *Aggregator
	renderer   Renderer
	dispatcher *Dispatcher
	hooks      MetricHooks
	logger     *zap.Logger

	mu   sync.Mutex
	last *Summary
}

func NewCoordinator(
	events repository.EventRepository,
	prefs repository.PreferenceRepository,
	aggregator *Aggregator,
	dispatcher *Dispatcher,
	hooks MetricHooks,
	logger *zap.Logger,
) *Coordinator {
	hooks.fillDefaults()
	return &Coordinator{
		events:     events,
		prefs:      prefs,
		aggregator: aggregator,
		dispatcher: dispatcher,
		hooks:      hooks,
		logger:     logger,
	}
}

// Run executes one bounded, complete pass over currently-eligible events.
//
// Only two failures abort the run, both before anything is claimed:
// preference loading and the pending-event read. Everything after that is
// group-local or recipient-local and is absorbed into the summary.
func (c *Coordinator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	prefs, err := c.prefs.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	routing := buildRouting(prefs, c.logger)

	groups, err := c.aggregator.CollectPending(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	now := time.Now().UTC()

	for _, g := range groups {
		c.processGroup(ctx, g, routing, now, summary)
	}

	elapsed := time.Since(start)
	c.hooks.OnRunCompleted(elapsed)
	c.logger.Info("run completed",
		zap.Int("batches_processed", summary.BatchesProcessed),
		zap.Int("notifications_processed", summary.NotificationsProcessed),
		zap.Int("groups_skipped", summary.GroupsSkipped),
		zap.Int("recipient_failures", summary.RecipientFailures),
		zap.Int("deferred", summary.Deferred),
		zap.Duration("elapsed", elapsed),
	)

	c.mu.Lock()
	c.last = summary
	c.mu.Unlock()

	return summary, nil
}

// LastSummary returns the summary of the most recent completed run, or nil
// if no run has completed yet. Used by the JSON metrics snapshot.
func (c *Coordinator) LastSummary() *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	clone := *c.last
	return &clone
}

func (c *Coordinator) processGroup(
	ctx context.Context,
	g *Group,
	routing map[domain.Kind]*domain.BatchingPreference,
	now time.Time,
	summary *Summary,
) {
	log := c.logger.With(zap.String("batch_key", g.Key), zap.String("kind", string(g.Kind)))

	pref, ok := routing[g.Kind]
	if !ok {
		log.Warn("no enabled preference owns this kind, leaving events pending")
		c.hooks.OnGroupSkipped("unrouted_kind")
		summary.GroupsSkipped++
		return
	}

	eligible, deferred := applyWindow(g, now.Add(-pref.Window))
	summary.Deferred += deferred
	if len(eligible) == 0 {
		return
	}

	recipients := ResolveRecipients(pref)
	if len(recipients) == 0 {
		log.Warn("skipping group",
			zap.String("admin_group_id", pref.AdminGroupID),
			zap.Error(domain.ErrNoRecipients),
		)
		c.hooks.OnGroupSkipped("no_recipients")
		summary.GroupsSkipped++
		return
	}

	switch Decide(len(eligible), pref.MinBatchSize) {
	case RouteDigest:
		c.sendDigest(ctx, g, eligible, recipients, now, summary, log)
	case RouteIndividual:
		c.sendIndividually(ctx, g, eligible, recipients, now, summary, log)
	}
}

func (c *Coordinator) sendDigest(
	ctx context.Context,
	g *Group,
	events []*domain.QueuedEvent,
	recipients []string,
	now time.Time,
	summary *Summary,
	log *zap.Logger,
) {
	subject, body, err := c.renderer.RenderDigest(&Group{Key: g.Key, Kind: g.Kind, Events: events})
	if err != nil {
		log.Error("digest render failed, leaving events pending", zap.Error(err))
		c.hooks.OnGroupSkipped("render_failed")
		summary.GroupsSkipped++
		return
	}

	results := c.dispatcher.Send(ctx, subject, body, recipients)
	failures := countFailures(results)
	summary.RecipientFailures += failures
	c.hooks.OnRecipientFailure(failures)

	batch := &domain.Batch{
		ID:         uuid.New().String(),
		BatchKey:   g.Key,
		Kind:       g.Kind,
		EventIDs:   eventIDs(events),
		Recipients: recipients,
		CreatedAt:  now,
	}

	claimed, err := c.events.CreateBatch(ctx, batch, now)
	if err != nil {
		// The one unsafe window: the digest went out but the events are
		// still pending and will be re-sent on the next run.
		log.Error("digest sent but completion marking failed, duplicates possible",
			zap.Error(err))
		return
	}
	if claimed < len(events) {
		log.Warn("concurrent run claimed part of this group",
			zap.Int("claimed", claimed), zap.Int("group_size", len(events)))
	}

	summary.BatchesProcessed++
	summary.NotificationsProcessed += claimed
	c.hooks.OnDigestSent(g.Kind)
	log.Info("digest sent",
		zap.String("batch_id", batch.ID),
		zap.Int("events", claimed),
		zap.Int("recipients", len(recipients)),
		zap.Int("failures", failures),
	)
}

func (c *Coordinator) sendIndividually(
	ctx context.Context,
	g *Group,
	events []*domain.QueuedEvent,
	recipients []string,
	now time.Time,
	summary *Summary,
	log *zap.Logger,
) {
	for _, e := range events {
		subject, body, err := c.renderer.RenderIndividual(e)
		if err != nil {
			// Events in a group share a kind, so the rest of the group
			// would fail identically.
			log.Error("render failed, leaving group pending", zap.Error(err))
			c.hooks.OnGroupSkipped("render_failed")
			summary.GroupsSkipped++
			return
		}

		results := c.dispatcher.Send(ctx, subject, body, recipients)
		failures := countFailures(results)
		summary.RecipientFailures += failures
		c.hooks.OnRecipientFailure(failures)

		claimed, err := c.events.MarkProcessed(ctx, []string{e.ID}, now)
		if err != nil {
			log.Error("message sent but completion marking failed, duplicates possible",
				zap.String("event_id", e.ID), zap.Error(err))
			continue
		}
		if claimed == 0 {
			log.Warn("event was claimed by a concurrent run", zap.String("event_id", e.ID))
			continue
		}

		summary.IndividualSent++
		summary.NotificationsProcessed++
		c.hooks.OnIndividualSent(e.Kind)
	}
}

// buildRouting maps each notification kind to its owning enabled
// preference. prefs arrive ordered by admin_group_id; when two groups claim
// the same kind the first (smallest id) wins and the conflict is logged.
func buildRouting(prefs []*domain.BatchingPreference, logger *zap.Logger) map[domain.Kind]*domain.BatchingPreference {
	routing := make(map[domain.Kind]*domain.BatchingPreference)
	for _, p := range prefs {
		for _, k := range p.Kinds {
			if owner, taken := routing[k]; taken {
				logger.Warn("kind already owned by another group",
					zap.String("kind", string(k)),
					zap.String("owner", owner.AdminGroupID),
					zap.String("ignored", p.AdminGroupID),
				)
				continue
			}
			routing[k] = p
		}
	}
	return routing
}

func eventIDs(events []*domain.QueuedEvent) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
