package repository

import (
	"context"
	"time"

	"github.com/bizlink/digest-engine/internal/domain"
)

// EventRepository defines all persistence operations on the event queue and
// batch audit tables. The pgx implementation is in pg_event_repo.go.
// Tests use a hand-written mock (mock_event_repo.go).
//
// Only MarkProcessed and CreateBatch mutate events, and both guard every
// update with processed_at IS NULL. That conditional claim is the engine's
// sole synchronization point between overlapping runs: two runs racing on
// the same pending event have exactly one winner.
type EventRepository interface {
	Insert(ctx context.Context, e *domain.QueuedEvent) error
	GetByID(ctx context.Context, id string) (*domain.QueuedEvent, error)

	// FindPending returns up to limit unprocessed events ordered by
	// created_at ascending (oldest first, bounding worst-case staleness).
	FindPending(ctx context.Context, limit int) ([]*domain.QueuedEvent, error)
	CountPending(ctx context.Context) (int, error)

	// MarkProcessed stamps processed_at on every listed event that is still
	// pending and reports how many rows this call actually claimed.
	MarkProcessed(ctx context.Context, ids []string, at time.Time) (int, error)

	// CreateBatch inserts the batch audit row and claims its member events
	// in a single transaction, returning the claimed count. A short count
	// means a concurrent run won part of the group.
	CreateBatch(ctx context.Context, b *domain.Batch, at time.Time) (int, error)
	GetBatch(ctx context.Context, id string) (*domain.Batch, []*domain.QueuedEvent, error)
}

// PreferenceRepository reads the externally-owned batching configuration.
// The engine never writes this table.
type PreferenceRepository interface {
	// ListEnabled returns preferences with batching enabled, ordered by
	// admin_group_id so kind-ownership conflicts resolve deterministically.
	ListEnabled(ctx context.Context) ([]*domain.BatchingPreference, error)
}
