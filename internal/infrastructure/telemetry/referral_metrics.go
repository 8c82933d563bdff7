package telemetry

import (
	"context"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// ReferralMetrics turns affiliate and referral domain events into OTel counters.
// It is subscribed to the event bus and never fails a publish.
type ReferralMetrics struct {
	applications      *Counter
	decisions         *Counter
	referralsCreated  *Counter
	transitions       *Counter
	commissionCreated *Sum
	commissionPaid    *Sum
}

// NewReferralMetrics registers the instruments on meter.
func NewReferralMetrics(meter metric.Meter) (*ReferralMetrics, error) {
	var (
		m   ReferralMetrics
		err error
	)
	if m.applications, err = NewCounter(meter, "affiliate_applications_total",
		"Affiliate applications submitted", "{application}"); err != nil {
		return nil, err
	}
	if m.decisions, err = NewCounter(meter, "affiliate_decisions_total",
		"Admin decisions on affiliate applications", "{decision}"); err != nil {
		return nil, err
	}
	if m.referralsCreated, err = NewCounter(meter, "referrals_created_total",
		"Referrals registered by affiliates", "{referral}"); err != nil {
		return nil, err
	}
	if m.transitions, err = NewCounter(meter, "referral_transitions_total",
		"Referral status transitions", "{transition}"); err != nil {
		return nil, err
	}
	if m.commissionCreated, err = NewSum(meter, "referral_commission_created_idr",
		"Commission frozen on new referrals", "IDR"); err != nil {
		return nil, err
	}
	if m.commissionPaid, err = NewSum(meter, "referral_commission_paid_idr",
		"Commission paid out to affiliates", "IDR"); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *ReferralMetrics) EventTypes() []string {
	return []string{
		affiliate.EventTypeApplied,
		affiliate.EventTypeApproved,
		affiliate.EventTypeRejected,
		referral.EventTypeCreated,
		referral.EventTypeConfirmed,
		referral.EventTypePaid,
	}
}

func (m *ReferralMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *affiliate.AppliedEvent:
		m.applications.Inc(ctx)
	case *affiliate.ApprovedEvent:
		m.decisions.Inc(ctx, AttrDecision.String("approve"))
	case *affiliate.RejectedEvent:
		m.decisions.Inc(ctx, AttrDecision.String("reject"))
	case *referral.CreatedEvent:
		m.referralsCreated.Inc(ctx, ID(AttrProgramID, e.ProgramID))
		m.commissionCreated.Add(ctx, e.CommissionAmount.InexactFloat64())
	case *referral.ConfirmedEvent:
		m.transitions.Inc(ctx, AttrTransition.String("confirm"))
	case *referral.PaidEvent:
		m.transitions.Inc(ctx, AttrTransition.String("mark_paid"))
		m.commissionPaid.Add(ctx, e.CommissionAmount.InexactFloat64())
	}
	return nil
}
