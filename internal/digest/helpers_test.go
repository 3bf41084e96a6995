package digest_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bizlink/digest-engine/internal/digest"
	"github.com/bizlink/digest-engine/internal/domain"
	"github.com/bizlink/digest-engine/internal/provider"
	"github.com/bizlink/digest-engine/internal/ratelimiter"
	"github.com/bizlink/digest-engine/internal/repository"
)

// fakeMailer records every provider call and fails recipients listed in
// failTo, giving tests full control over the delivery boundary.
type fakeMailer struct {
	mu     sync.Mutex
	sent   []provider.Message
	failTo map[string]error
}

func (f *fakeMailer) Send(_ context.Context, msg provider.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if err, ok := f.failTo[msg.To]; ok {
		return err
	}
	return nil
}

func (f *fakeMailer) messages() []provider.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]provider.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

// testEvent builds a pending event created age ago with a typed payload.
func testEvent(t *testing.T, kind domain.Kind, key string, age time.Duration, payload domain.Payload) *domain.QueuedEvent {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &domain.QueuedEvent{
		ID:        uuid.New().String(),
		Kind:      kind,
		BatchKey:  key,
		Payload:   raw,
		CreatedAt: time.Now().UTC().Add(-age),
	}
}

func verificationPayload(name string) domain.BusinessVerificationPayload {
	return domain.BusinessVerificationPayload{
		BusinessID:   "b-" + name,
		BusinessName: name,
		OwnerEmail:   "own@" + name + ".test",
	}
}

// engineFixture bundles everything a coordinator test needs.
type engineFixture struct {
	events *repository.MockEventRepository
	prefs  *repository.MockPreferenceRepository
	mailer *fakeMailer
	coord  *digest.Coordinator
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()
	events := repository.NewMockEventRepository()
	prefs := repository.NewMockPreferenceRepository()
	mailer := &fakeMailer{failTo: map[string]error{}}
	dispatcher := digest.NewDispatcher(mailer, ratelimiter.New(0), "alerts@bizlink.test", zap.NewNop())
	aggregator := digest.NewAggregator(events, 1000)
	coord := digest.NewCoordinator(events, prefs, aggregator, dispatcher, digest.MetricHooks{}, zap.NewNop())
	return &engineFixture{events: events, prefs: prefs, mailer: mailer, coord: coord}
}

// mustInsert seeds the mock store.
func (f *engineFixture) mustInsert(t *testing.T, events ...*domain.QueuedEvent) {
	t.Helper()
	for _, e := range events {
		if err := f.events.Insert(context.Background(), e); err != nil {
			t.Fatalf("insert event: %v", err)
		}
	}
}

func defaultPref(kinds ...domain.Kind) *domain.BatchingPreference {
	return &domain.BatchingPreference{
		AdminGroupID:     "ops",
		BatchingEnabled:  true,
		Window:           5 * time.Minute,
		MinBatchSize:     2,
		PrimaryRecipient: "ops@bizlink.test",
		Kinds:            kinds,
	}
}
