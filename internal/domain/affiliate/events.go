package affiliate

import (
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeAffiliate is the aggregate type of affiliate events
const AggregateTypeAffiliate = "Affiliate"

const (
	EventTypeApplied  = "AffiliateApplied"
	EventTypeApproved = "AffiliateApproved"
	EventTypeRejected = "AffiliateRejected"
)

// AppliedEvent is published when a user submits an application
type AppliedEvent struct {
	shared.BaseDomainEvent
	UserID       uuid.UUID `json:"user_id"`
	ReferralCode string    `json:"referral_code"`
}

func NewAppliedEvent(a *Affiliate) *AppliedEvent {
	return &AppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplied, AggregateTypeAffiliate, a.ID),
		UserID:          a.UserID,
		ReferralCode:    a.ReferralCode,
	}
}

// ApprovedEvent is published on every approve decision
type ApprovedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

func NewApprovedEvent(a *Affiliate) *ApprovedEvent {
	return &ApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApproved, AggregateTypeAffiliate, a.ID),
		UserID:          a.UserID,
	}
}

// RejectedEvent is published on every reject decision
type RejectedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Reason string    `json:"reason"`
}

func NewRejectedEvent(a *Affiliate) *RejectedEvent {
	return &RejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRejected, AggregateTypeAffiliate, a.ID),
		UserID:          a.UserID,
		Reason:          a.RejectionReason,
	}
}
