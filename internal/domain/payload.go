package domain

import (
	"encoding/json"
	"fmt"
)

// Payload is the typed content of a queued event. Exactly one struct below
// corresponds to each Kind; DecodePayload is the single place raw JSON is
// turned into one of them.
type Payload interface {
	eventPayload()
}

// BusinessVerificationPayload carries a business submitted for verification.
type BusinessVerificationPayload struct {
	BusinessID   string `json:"business_id"`
	BusinessName string `json:"business_name"`
	OwnerEmail   string `json:"owner_email"`
	City         string `json:"city,omitempty"`
}

// AgentMilestonePayload carries a sales agent reaching a referral milestone.
type AgentMilestonePayload struct {
	AgentID       string `json:"agent_id"`
	AgentName     string `json:"agent_name"`
	Milestone     string `json:"milestone"`
	ReferralCount int    `json:"referral_count"`
}

// BusinessSignupPayload carries a new business joining the directory.
type BusinessSignupPayload struct {
	BusinessID   string `json:"business_id"`
	BusinessName string `json:"business_name"`
	Plan         string `json:"plan"`
}

func (BusinessVerificationPayload) eventPayload() {}
func (AgentMilestonePayload) eventPayload()       {}
func (BusinessSignupPayload) eventPayload()       {}

// DecodePayload unmarshals raw event JSON into the typed payload for the
// given kind. An unrecognised kind returns ErrUnknownKind so callers fail
// loudly instead of producing an empty message.
func DecodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	switch kind {
	case KindBusinessVerification:
		var p BusinessVerificationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return p, nil
	case KindAgentMilestone:
		var p AgentMilestonePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return p, nil
	case KindBusinessSignup:
		var p BusinessSignupPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
