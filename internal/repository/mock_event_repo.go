package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bizlink/digest-engine/internal/domain"
)

// MockEventRepository is a hand-written, in-memory implementation of
// EventRepository used in unit tests. No mock-generation library needed.
//
// MarkProcessed and CreateBatch reproduce the conditional-claim semantics
// of the pgx implementation under a single mutex, so concurrency tests can
// race two runs against the same pending set and observe exactly one winner
// per event.
type MockEventRepository struct {
	mu      sync.RWMutex
	events  map[string]*domain.QueuedEvent
	batches map[string]*domain.Batch

	// Optional error overrides — set in tests to simulate failure paths.
	InsertErr      error
	FindPendingErr error
	MarkErr        error
	CreateBatchErr error
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{
		events:  make(map[string]*domain.QueuedEvent),
		batches: make(map[string]*domain.Batch),
	}
}

func (m *MockEventRepository) Insert(_ context.Context, e *domain.QueuedEvent) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *e
	m.events[e.ID] = &clone
	return nil
}

func (m *MockEventRepository) GetByID(_ context.Context, id string) (*domain.QueuedEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *MockEventRepository) FindPending(_ context.Context, limit int) ([]*domain.QueuedEvent, error) {
	if m.FindPendingErr != nil {
		return nil, m.FindPendingErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.QueuedEvent
	for _, e := range m.events {
		if e.Pending() {
			clone := *e
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockEventRepository) CountPending(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.events {
		if e.Pending() {
			n++
		}
	}
	return n, nil
}

func (m *MockEventRepository) MarkProcessed(_ context.Context, ids []string, at time.Time) (int, error) {
	if m.MarkErr != nil {
		return 0, m.MarkErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claim(ids, at, nil), nil
}

func (m *MockEventRepository) CreateBatch(_ context.Context, b *domain.Batch, at time.Time) (int, error) {
	if m.CreateBatchErr != nil {
		return 0, m.CreateBatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *b
	m.batches[b.ID] = &clone
	return m.claim(b.EventIDs, at, &b.ID), nil
}

func (m *MockEventRepository) GetBatch(_ context.Context, id string) (*domain.Batch, []*domain.QueuedEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	var events []*domain.QueuedEvent
	for _, e := range m.events {
		if e.BatchID != nil && *e.BatchID == id {
			clone := *e
			events = append(events, &clone)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	batchClone := *b
	return &batchClone, events, nil
}

// claim stamps processed_at on still-pending ids only. Caller holds mu.
func (m *MockEventRepository) claim(ids []string, at time.Time, batchID *string) int {
	claimed := 0
	for _, id := range ids {
		e, ok := m.events[id]
		if !ok || !e.Pending() {
			continue
		}
		stamp := at
		e.ProcessedAt = &stamp
		e.BatchID = batchID
		claimed++
	}
	return claimed
}
