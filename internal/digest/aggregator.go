package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/bizlink/digest-engine/internal/domain"
	"github.com/bizlink/digest-engine/internal/repository"
)

// Group is an ordered set of pending events sharing one batch key.
// Events keep their creation-time order so digests list them oldest first.
// A batch key always groups events of a single kind; Kind is taken from the
// first event seen for the key.
type Group struct {
	Key    string
	Kind   domain.Kind
	Events []*domain.QueuedEvent
}

// Aggregator reads pending events and partitions them by batch key.
// Purely a read plus an in-memory partition; it never mutates anything.
type Aggregator struct {
	events     repository.EventRepository
	fetchLimit int
}

func NewAggregator(events repository.EventRepository, fetchLimit int) *Aggregator {
	return &Aggregator{events: events, fetchLimit: fetchLimit}
}

// CollectPending fetches pending events oldest-first and groups them by
// batch key. Groups come back in first-seen key order; within a group the
// repository's created_at ordering is preserved.
func (a *Aggregator) CollectPending(ctx context.Context) ([]*Group, error) {
	events, err := a.events.FindPending(ctx, a.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("collect pending events: %w", err)
	}

	byKey := make(map[string]*Group)
	var groups []*Group
	for _, e := range events {
		g, ok := byKey[e.BatchKey]
		if !ok {
			g = &Group{Key: e.BatchKey, Kind: e.Kind}
			byKey[e.BatchKey] = g
			groups = append(groups, g)
		}
		g.Events = append(g.Events, e)
	}
	return groups, nil
}

// applyWindow splits a group's events at the window cutoff. Events created
// at or after the cutoff are deferred: left pending, untouched, revisited
// on a future run. A pending event is never dropped, only deferred.
func applyWindow(g *Group, cutoff time.Time) (eligible []*domain.QueuedEvent, deferred int) {
	for _, e := range g.Events {
		if e.CreatedAt.Before(cutoff) {
			eligible = append(eligible, e)
		} else {
			deferred++
		}
	}
	return eligible, deferred
}
