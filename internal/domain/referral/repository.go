package referral

import (
	"context"

	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotEligible = shared.NewDomainError(shared.CodeNotEligible, "Anda harus menjadi afiliasi yang disetujui untuk membuat referral.")
	ErrNotFound    = shared.NewNotFoundError("Referral")
)

// Stats summarizes the referrals of one affiliate
type Stats struct {
	TotalReferrals     int64           `json:"total_referrals"`
	ConfirmedReferrals int64           `json:"confirmed_referrals"`
	PaidReferrals      int64           `json:"paid_referrals"`
	TotalCommission    decimal.Decimal `json:"total_commission"`
	PendingCommission  decimal.Decimal `json:"pending_commission"`
}

// StatusTotal is one row of a per-status aggregate
type StatusTotal struct {
	Status Status
	Count  int64
	Amount decimal.Decimal
}

// StatsFromTotals folds per-status rows into Stats.
// Paid amounts are earned commission, pending and confirmed amounts are outstanding.
func StatsFromTotals(rows []StatusTotal) Stats {
	s := Stats{TotalCommission: decimal.Zero, PendingCommission: decimal.Zero}
	for _, row := range rows {
		s.TotalReferrals += row.Count
		switch row.Status {
		case StatusConfirmed:
			s.ConfirmedReferrals += row.Count
			s.PendingCommission = s.PendingCommission.Add(row.Amount)
		case StatusPending:
			s.PendingCommission = s.PendingCommission.Add(row.Amount)
		case StatusPaid:
			s.PaidReferrals += row.Count
			s.TotalCommission = s.TotalCommission.Add(row.Amount)
		}
	}
	return s
}

// Filter narrows referral listings
type Filter struct {
	shared.Filter
	AffiliateID *uuid.UUID
	Status      *Status
}

// Repository persists referrals
type Repository interface {
	Create(ctx context.Context, r *Referral) error
	// Update persists a transition guarded by the loaded version
	Update(ctx context.Context, r *Referral) error
	FindByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	FindAll(ctx context.Context, filter Filter) ([]*Referral, int64, error)
	// TotalsByStatus groups the affiliate's referrals by status
	TotalsByStatus(ctx context.Context, affiliateID uuid.UUID) ([]StatusTotal, error)
	Count(ctx context.Context) (int64, error)
}
