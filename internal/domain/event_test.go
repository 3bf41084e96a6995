package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bizlink/digest-engine/internal/domain"
)

func TestKind_IsValid(t *testing.T) {
	for _, k := range []domain.Kind{
		domain.KindBusinessVerification,
		domain.KindAgentMilestone,
		domain.KindBusinessSignup,
	} {
		if !k.IsValid() {
			t.Fatalf("kind %q: expected valid", k)
		}
	}

	for _, k := range []domain.Kind{"", "qr_scan", "Business_Verification"} {
		if k.IsValid() {
			t.Fatalf("kind %q: expected invalid", k)
		}
	}
}

func TestDecodePayload(t *testing.T) {
	t.Run("business verification", func(t *testing.T) {
		raw := json.RawMessage(`{"business_id":"b1","business_name":"Acme Plumbing","owner_email":"own@acme.test","city":"Austin"}`)
		p, err := domain.DecodePayload(domain.KindBusinessVerification, raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		v, ok := p.(domain.BusinessVerificationPayload)
		if !ok {
			t.Fatalf("expected BusinessVerificationPayload, got %T", p)
		}
		if v.BusinessName != "Acme Plumbing" || v.City != "Austin" {
			t.Fatalf("unexpected payload: %+v", v)
		}
	})

	t.Run("agent milestone", func(t *testing.T) {
		raw := json.RawMessage(`{"agent_id":"a1","agent_name":"Dana","milestone":"gold","referral_count":25}`)
		p, err := domain.DecodePayload(domain.KindAgentMilestone, raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		v := p.(domain.AgentMilestonePayload)
		if v.ReferralCount != 25 {
			t.Fatalf("expected 25 referrals, got %d", v.ReferralCount)
		}
	})

	t.Run("business signup", func(t *testing.T) {
		raw := json.RawMessage(`{"business_id":"b2","business_name":"Cafe Sol","plan":"premium"}`)
		p, err := domain.DecodePayload(domain.KindBusinessSignup, raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		v := p.(domain.BusinessSignupPayload)
		if v.Plan != "premium" {
			t.Fatalf("expected plan=premium, got %q", v.Plan)
		}
	})

	t.Run("unknown kind fails loudly", func(t *testing.T) {
		_, err := domain.DecodePayload("qr_scan", json.RawMessage(`{}`))
		if !errors.Is(err, domain.ErrUnknownKind) {
			t.Fatalf("expected ErrUnknownKind, got %v", err)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := domain.DecodePayload(domain.KindAgentMilestone, json.RawMessage(`"not an object"`))
		if !errors.Is(err, domain.ErrInvalidPayload) {
			t.Fatalf("expected ErrInvalidPayload, got %v", err)
		}
	})
}

func TestIngestRequest_Validate(t *testing.T) {
	valid := domain.IngestRequest{
		Kind:     domain.KindBusinessSignup,
		BatchKey: "biz_signup",
		Payload:  json.RawMessage(`{"business_id":"b1","business_name":"Acme","plan":"free"}`),
	}

	t.Run("valid request passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		r := valid
		r.Kind = "loyalty_scan"
		if err := r.Validate(); !errors.Is(err, domain.ErrUnknownKind) {
			t.Fatalf("expected ErrUnknownKind, got %v", err)
		}
	})

	t.Run("empty batch key", func(t *testing.T) {
		r := valid
		r.BatchKey = ""
		if err := r.Validate(); !errors.Is(err, domain.ErrInvalidBatchKey) {
			t.Fatalf("expected ErrInvalidBatchKey, got %v", err)
		}
	})

	t.Run("payload mismatch", func(t *testing.T) {
		r := valid
		r.Payload = json.RawMessage(`[1,2,3]`)
		if err := r.Validate(); !errors.Is(err, domain.ErrInvalidPayload) {
			t.Fatalf("expected ErrInvalidPayload, got %v", err)
		}
	})
}

func TestQueuedEvent_Pending(t *testing.T) {
	e := domain.QueuedEvent{}
	if !e.Pending() {
		t.Fatal("event without processed_at should be pending")
	}
}
