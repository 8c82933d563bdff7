package persistence

import (
	"context"
	"strings"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAffiliateRepository implements affiliate.Repository using GORM
type GormAffiliateRepository struct {
	db *gorm.DB
}

// NewGormAffiliateRepository creates a new GormAffiliateRepository
func NewGormAffiliateRepository(db *gorm.DB) *GormAffiliateRepository {
	return &GormAffiliateRepository{db: db}
}

// Create inserts a new application
func (r *GormAffiliateRepository) Create(ctx context.Context, a *affiliate.Affiliate) error {
	model := models.AffiliateModelFromDomain(a)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return mapAffiliateUniqueViolation(err)
	}
	return nil
}

func mapAffiliateUniqueViolation(err error) error {
	if err == nil || !isUniqueViolation(err) {
		return err
	}
	switch {
	case violatesColumn(err, "referral_code"):
		return affiliate.ErrReferralCodeTaken
	case violatesColumn(err, "user_id"):
		return affiliate.ErrDuplicateApplication
	case violatesColumn(err, "email"):
		return affiliate.ErrDuplicateEmail
	}
	return shared.ErrAlreadyExists
}

// Update saves a decided application. The aggregate has already bumped its
// version, so the stored row must still hold Version-1.
func (r *GormAffiliateRepository) Update(ctx context.Context, a *affiliate.Affiliate) error {
	model := models.AffiliateModelFromDomain(a)
	res := conn(ctx, r.db).
		Model(&models.AffiliateModel{}).
		Where("id = ? AND version = ?", a.ID, a.Version-1).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(model)
	return mapAffiliateUniqueViolation(changed(res, shared.ErrConcurrencyConflict))
}

func (r *GormAffiliateRepository) findOne(ctx context.Context, query string, args ...any) (*affiliate.Affiliate, error) {
	return first[models.AffiliateModel, affiliate.Affiliate](conn(ctx, r.db).Where(query, args...), affiliate.ErrNotFound)
}

// FindByID finds an affiliate by ID
func (r *GormAffiliateRepository) FindByID(ctx context.Context, id uuid.UUID) (*affiliate.Affiliate, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUserID finds the application owned by a user
func (r *GormAffiliateRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*affiliate.Affiliate, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

// FindByReferralCode finds an affiliate by its referral code
func (r *GormAffiliateRepository) FindByReferralCode(ctx context.Context, code string) (*affiliate.Affiliate, error) {
	return r.findOne(ctx, "referral_code = ?", strings.ToUpper(code))
}

func (r *GormAffiliateRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.AffiliateModel{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByUserID checks if the user already applied
func (r *GormAffiliateRepository) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	return r.exists(ctx, "user_id = ?", userID)
}

// ExistsByReferralCode checks if a referral code is in use
func (r *GormAffiliateRepository) ExistsByReferralCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, "referral_code = ?", code)
}

// ExistsByEmail checks if an application already uses the email
func (r *GormAffiliateRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

// FindAll returns a page of affiliates and the total matching count
func (r *GormAffiliateRepository) FindAll(ctx context.Context, filter affiliate.Filter) ([]*affiliate.Affiliate, int64, error) {
	query := conn(ctx, r.db).Model(&models.AffiliateModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR referral_code LIKE ?)", like, like, strings.ToUpper(like))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AffiliateModel
	if err := query.
		Order(affiliateSort.by(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*affiliate.Affiliate, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// CountByStatus counts affiliates in a status
func (r *GormAffiliateRepository) CountByStatus(ctx context.Context, status affiliate.Status) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.AffiliateModel{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

var _ affiliate.Repository = (*GormAffiliateRepository)(nil)
