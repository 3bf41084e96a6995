package domain

import (
	"encoding/json"
	"time"
)

// Kind identifies the type of a queued notification event. The set is
// closed: the renderer matches exhaustively over it, so an event carrying
// any other value is a configuration error, not a rendering fallback.
type Kind string

const (
	KindBusinessVerification Kind = "business_verification"
	KindAgentMilestone       Kind = "agent_milestone"
	KindBusinessSignup       Kind = "business_signup"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindBusinessVerification, KindAgentMilestone, KindBusinessSignup:
		return true
	}
	return false
}

// QueuedEvent is one raw domain event awaiting aggregation. Rows are
// append-only: producers insert them, the completion marker stamps
// processed_at exactly once, and nothing ever deletes them (audit trail).
type QueuedEvent struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	BatchKey    string          `json:"batch_key"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	BatchID     *string         `json:"batch_id,omitempty"`
}

// Pending reports whether the event has not yet been claimed by any run.
func (e *QueuedEvent) Pending() bool { return e.ProcessedAt == nil }

// Batch is the write-once audit record correlating one dispatched digest
// with the events it summarised and the recipients it was attempted to.
type Batch struct {
	ID         string    `json:"id"`
	BatchKey   string    `json:"batch_key"`
	Kind       Kind      `json:"kind"`
	EventIDs   []string  `json:"event_ids"`
	Recipients []string  `json:"recipients"`
	CreatedAt  time.Time `json:"created_at"`
}

// BatchingPreference is one admin group's digest configuration. The engine
// reads it fresh every run and never writes it; ownership belongs to the
// admin settings surface.
//
// Kinds lists the notification kinds routed to this group. Because a batch
// key always groups events of a single kind, the owning group of a batch
// key is the enabled preference owning that kind.
type BatchingPreference struct {
	AdminGroupID     string        `json:"admin_group_id"`
	BatchingEnabled  bool          `json:"batching_enabled"`
	Window           time.Duration `json:"window_seconds"`
	MinBatchSize     int           `json:"min_batch_size"`
	PrimaryRecipient string        `json:"primary_recipient"`
	ExtraRecipients  []string      `json:"extra_recipients"`
	Kinds            []Kind        `json:"kinds"`
}

// IngestRequest is the producer-facing payload accepted by the HTTP and
// Kafka ingestion paths.
type IngestRequest struct {
	Kind     Kind            `json:"kind"`
	BatchKey string          `json:"batch_key"`
	Payload  json.RawMessage `json:"payload"`
}

func (r *IngestRequest) Validate() error {
	if !r.Kind.IsValid() {
		return ErrUnknownKind
	}
	if r.BatchKey == "" {
		return ErrInvalidBatchKey
	}
	if _, err := DecodePayload(r.Kind, r.Payload); err != nil {
		return err
	}
	return nil
}
