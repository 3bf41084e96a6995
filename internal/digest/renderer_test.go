package digest_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bizlink/digest-engine/internal/digest"
	"github.com/bizlink/digest-engine/internal/domain"
)

func verificationEvent(t *testing.T, name string) *domain.QueuedEvent {
	t.Helper()
	return testEvent(t, domain.KindBusinessVerification, "biz_verify", time.Minute,
		domain.BusinessVerificationPayload{BusinessID: "b1", BusinessName: name, OwnerEmail: "own@" + name + ".test"})
}

func TestRenderer_RenderIndividual(t *testing.T) {
	var r digest.Renderer

	t.Run("business verification", func(t *testing.T) {
		subject, body, err := r.RenderIndividual(verificationEvent(t, "Acme"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if subject != "Verification requested: Acme" {
			t.Fatalf("unexpected subject %q", subject)
		}
		if !strings.Contains(body, "Acme (own@Acme.test) submitted for verification") {
			t.Fatalf("body missing summary line: %q", body)
		}
	})

	t.Run("agent milestone", func(t *testing.T) {
		e := testEvent(t, domain.KindAgentMilestone, "agent_gold", time.Minute,
			domain.AgentMilestonePayload{AgentID: "a1", AgentName: "Dana", Milestone: "gold", ReferralCount: 25})
		subject, body, err := r.RenderIndividual(e)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if subject != "Agent milestone: Dana" {
			t.Fatalf("unexpected subject %q", subject)
		}
		if !strings.Contains(body, `Dana reached milestone "gold" with 25 referrals`) {
			t.Fatalf("body missing summary line: %q", body)
		}
	})

	t.Run("unknown kind fails loudly", func(t *testing.T) {
		e := &domain.QueuedEvent{ID: "x", Kind: "qr_scan", Payload: json.RawMessage(`{}`)}
		_, _, err := r.RenderIndividual(e)
		if !errors.Is(err, domain.ErrUnknownKind) {
			t.Fatalf("expected ErrUnknownKind, got %v", err)
		}
	})

	t.Run("html is escaped", func(t *testing.T) {
		_, body, err := r.RenderIndividual(verificationEvent(t, "<script>x</script>"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(body, "<script>") {
			t.Fatalf("body contains unescaped markup: %q", body)
		}
	})
}

func TestRenderer_RenderDigest(t *testing.T) {
	var r digest.Renderer

	g := &digest.Group{
		Key:  "biz_verify",
		Kind: domain.KindBusinessVerification,
		Events: []*domain.QueuedEvent{
			verificationEvent(t, "Alpha"),
			verificationEvent(t, "Beta"),
			verificationEvent(t, "Gamma"),
		},
	}

	subject, body, err := r.RenderDigest(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "3 businesses awaiting verification" {
		t.Fatalf("unexpected subject %q", subject)
	}

	// One list item per event, in creation order.
	if n := strings.Count(body, "<li>"); n != 3 {
		t.Fatalf("expected 3 list items, got %d in %q", n, body)
	}
	alpha := strings.Index(body, "Alpha")
	beta := strings.Index(body, "Beta")
	gamma := strings.Index(body, "Gamma")
	if alpha < 0 || beta < 0 || gamma < 0 || alpha > beta || beta > gamma {
		t.Fatalf("digest does not list events in order: %q", body)
	}
}

func TestRenderer_Deterministic(t *testing.T) {
	var r digest.Renderer
	e := verificationEvent(t, "Acme")

	s1, b1, err := r.RenderIndividual(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, b2, _ := r.RenderIndividual(e)
	if s1 != s2 || b1 != b2 {
		t.Fatal("renderer output differs across identical calls")
	}
}
