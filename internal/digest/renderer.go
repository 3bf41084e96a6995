package digest

import (
	"fmt"
	"html"
	"strings"

	"github.com/bizlink/digest-engine/internal/domain"
)

// Renderer turns events into email subjects and HTML bodies. It does no
// I/O and is deterministic for a given input, so its output can be
// asserted verbatim in tests.
//
// Individual and digest rendering share the same per-kind formatting
// (summaryLine); they differ only in whether one payload or an ordered
// sequence of payloads is interpolated.
type Renderer struct{}

// RenderIndividual produces the message for a single event.
func (Renderer) RenderIndividual(e *domain.QueuedEvent) (subject, body string, err error) {
	p, err := domain.DecodePayload(e.Kind, e.Payload)
	if err != nil {
		return "", "", fmt.Errorf("render event %s: %w", e.ID, err)
	}

	subject = individualSubject(p)
	var b strings.Builder
	b.WriteString("<h2>" + html.EscapeString(subject) + "</h2>\n")
	b.WriteString("<p>" + html.EscapeString(summaryLine(p)) + "</p>\n")
	return subject, b.String(), nil
}

// RenderDigest produces one message summarising every event in the group,
// listed in creation-time order.
func (Renderer) RenderDigest(g *Group) (subject, body string, err error) {
	payloads := make([]domain.Payload, len(g.Events))
	for i, e := range g.Events {
		p, err := domain.DecodePayload(e.Kind, e.Payload)
		if err != nil {
			return "", "", fmt.Errorf("render digest %s: %w", g.Key, err)
		}
		payloads[i] = p
	}

	subject = digestSubject(g.Kind, len(payloads))
	var b strings.Builder
	b.WriteString("<h2>" + html.EscapeString(subject) + "</h2>\n<ul>\n")
	for _, p := range payloads {
		b.WriteString("<li>" + html.EscapeString(summaryLine(p)) + "</li>\n")
	}
	b.WriteString("</ul>\n")
	return subject, b.String(), nil
}

// summaryLine is the shared per-kind one-line summary. The switch is
// exhaustive over the payload union; DecodePayload already rejected
// anything outside it.
func summaryLine(p domain.Payload) string {
	switch v := p.(type) {
	case domain.BusinessVerificationPayload:
		line := fmt.Sprintf("%s (%s) submitted for verification", v.BusinessName, v.OwnerEmail)
		if v.City != "" {
			line += ", " + v.City
		}
		return line
	case domain.AgentMilestonePayload:
		return fmt.Sprintf("%s reached milestone %q with %d referrals", v.AgentName, v.Milestone, v.ReferralCount)
	case domain.BusinessSignupPayload:
		return fmt.Sprintf("%s joined on the %s plan", v.BusinessName, v.Plan)
	default:
		// Unreachable while the union stays closed; DecodePayload is the
		// only producer of Payload values.
		return fmt.Sprintf("unrenderable payload %T", p)
	}
}

func individualSubject(p domain.Payload) string {
	switch v := p.(type) {
	case domain.BusinessVerificationPayload:
		return "Verification requested: " + v.BusinessName
	case domain.AgentMilestonePayload:
		return "Agent milestone: " + v.AgentName
	case domain.BusinessSignupPayload:
		return "New business signup: " + v.BusinessName
	default:
		return "Notification"
	}
}

func digestSubject(kind domain.Kind, n int) string {
	switch kind {
	case domain.KindBusinessVerification:
		return fmt.Sprintf("%d businesses awaiting verification", n)
	case domain.KindAgentMilestone:
		return fmt.Sprintf("%d agent milestones reached", n)
	case domain.KindBusinessSignup:
		return fmt.Sprintf("%d new business signups", n)
	default:
		return fmt.Sprintf("%d notifications", n)
	}
}
