package persistence

import (
	"context"
	"strings"

	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReferralRepository implements referral.Repository using GORM
type GormReferralRepository struct {
	db *gorm.DB
}

// NewGormReferralRepository creates a new GormReferralRepository
func NewGormReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// Create inserts a new referral
func (r *GormReferralRepository) Create(ctx context.Context, ref *referral.Referral) error {
	return conn(ctx, r.db).Create(models.ReferralModelFromDomain(ref)).Error
}

// Update persists a status transition with optimistic locking
func (r *GormReferralRepository) Update(ctx context.Context, ref *referral.Referral) error {
	res := conn(ctx, r.db).
		Model(&models.ReferralModel{}).
		Where("id = ? AND version = ?", ref.ID, ref.Version-1).
		Updates(map[string]any{
			"status":       ref.Status,
			"confirmed_at": ref.ConfirmedAt,
			"paid_at":      ref.PaidAt,
			"version":      ref.Version,
			"updated_at":   ref.UpdatedAt,
		})
	return changed(res, shared.ErrConcurrencyConflict)
}

// FindByID finds a referral by ID
func (r *GormReferralRepository) FindByID(ctx context.Context, id uuid.UUID) (*referral.Referral, error) {
	return first[models.ReferralModel, referral.Referral](conn(ctx, r.db).Where("id = ?", id), referral.ErrNotFound)
}

// FindAll returns a page of referrals, newest first by default
func (r *GormReferralRepository) FindAll(ctx context.Context, filter referral.Filter) ([]*referral.Referral, int64, error) {
	query := conn(ctx, r.db).Model(&models.ReferralModel{})
	if filter.AffiliateID != nil {
		query = query.Where("affiliate_id = ?", *filter.AffiliateID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(student_name) LIKE ? OR LOWER(student_email) LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReferralModel
	if err := query.
		Order(referralSort.by(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*referral.Referral, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

type statusTotalRow struct {
	Status string
	Count  int64
	Amount decimal.Decimal
}

// TotalsByStatus groups an affiliate's referrals by status in one query
func (r *GormReferralRepository) TotalsByStatus(ctx context.Context, affiliateID uuid.UUID) ([]referral.StatusTotal, error) {
	var rows []statusTotalRow
	if err := conn(ctx, r.db).
		Model(&models.ReferralModel{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(commission_amount), 0) AS amount").
		Where("affiliate_id = ?", affiliateID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]referral.StatusTotal, len(rows))
	for i, row := range rows {
		out[i] = referral.StatusTotal{
			Status: referral.Status(row.Status),
			Count:  row.Count,
			Amount: row.Amount,
		}
	}
	return out, nil
}

// Count counts all referrals
func (r *GormReferralRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ReferralModel{}).Count(&count).Error
	return count, err
}

var _ referral.Repository = (*GormReferralRepository)(nil)
