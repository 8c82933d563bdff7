package referral

import (
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeReferral = "Referral"

const (
	EventTypeCreated   = "ReferralCreated"
	EventTypeConfirmed = "ReferralConfirmed"
	EventTypePaid      = "ReferralPaid"
)

// CreatedEvent is published when an affiliate registers a student
type CreatedEvent struct {
	shared.BaseDomainEvent
	AffiliateID      uuid.UUID       `json:"affiliate_id"`
	ProgramID        uuid.UUID       `json:"program_id"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

func NewCreatedEvent(r *Referral) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreated, AggregateTypeReferral, r.ID),
		AffiliateID:      r.AffiliateID,
		ProgramID:        r.ProgramID,
		CommissionAmount: r.CommissionAmount,
	}
}

// ConfirmedEvent is published when an admin confirms the enrolment
type ConfirmedEvent struct {
	shared.BaseDomainEvent
	AffiliateID uuid.UUID `json:"affiliate_id"`
}

func NewConfirmedEvent(r *Referral) *ConfirmedEvent {
	return &ConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfirmed, AggregateTypeReferral, r.ID),
		AffiliateID:     r.AffiliateID,
	}
}

// PaidEvent is published when the commission payout is recorded
type PaidEvent struct {
	shared.BaseDomainEvent
	AffiliateID      uuid.UUID       `json:"affiliate_id"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

func NewPaidEvent(r *Referral) *PaidEvent {
	return &PaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePaid, AggregateTypeReferral, r.ID),
		AffiliateID:      r.AffiliateID,
		CommissionAmount: r.CommissionAmount,
	}
}
