package affiliate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"github.com/englishbooster/affiliate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrReferralCodeExhausted is returned when no unique code was found within the attempt budget
var ErrReferralCodeExhausted = shared.NewDomainError("REFERRAL_CODE_EXHAUSTED", "Gagal membuat kode referral unik. Silakan coba lagi.")

// DefaultMaxCodeAttempts bounds referral code generation per application
const DefaultMaxCodeAttempts = 10

// RegistryConfig tunes the affiliate registry
type RegistryConfig struct {
	DefaultCommissionRate decimal.Decimal
	MaxCodeAttempts       int
	PageSize              int
}

// RegistryService handles affiliate applications and admin decisions
type RegistryService struct {
	affiliates affiliate.Repository
	users      identity.UserRepository
	referrals  referral.Repository
	codes      affiliate.ReferralCodeGenerator
	tx         shared.TxManager
	events     shared.EventPublisher
	config     RegistryConfig
	logger     *zap.Logger
}

func NewRegistryService(
	affiliates affiliate.Repository,
	users identity.UserRepository,
	referrals referral.Repository,
	codes affiliate.ReferralCodeGenerator,
	tx shared.TxManager,
	events shared.EventPublisher,
	config RegistryConfig,
	logger *zap.Logger,
) *RegistryService {
	if config.MaxCodeAttempts <= 0 {
		config.MaxCodeAttempts = DefaultMaxCodeAttempts
	}
	if config.PageSize <= 0 {
		config.PageSize = shared.DefaultPageSize
	}
	if config.DefaultCommissionRate.IsZero() {
		config.DefaultCommissionRate = affiliate.DefaultCommissionRate
	}
	return &RegistryService{
		affiliates: affiliates,
		users:      users,
		referrals:  referrals,
		codes:      codes,
		tx:         tx,
		events:     events,
		config:     config,
		logger:     logger,
	}
}

// SubmitApplication creates a pending affiliate for the caller and promotes
// the caller's role to affiliate in the same transaction.
func (s *RegistryService) SubmitApplication(ctx context.Context, principal identity.Principal, req ApplyRequest) (*AffiliateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "affiliate", "submit_application",
		telemetry.ID(telemetry.AttrUserID, principal.UserID))
	defer span.End()

	exists, err := s.affiliates.ExistsByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("check existing application: %w", err)
	}
	if exists {
		return nil, affiliate.ErrDuplicateApplication
	}

	profile := req.profile()
	emailTaken, err := s.affiliates.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(profile.Email)))
	if err != nil {
		return nil, fmt.Errorf("check affiliate email: %w", err)
	}
	if emailTaken {
		return nil, affiliate.ErrDuplicateEmail
	}

	var (
		aff  *affiliate.Affiliate
		user *identity.User
	)
	for attempt := 1; attempt <= s.config.MaxCodeAttempts; attempt++ {
		code, err := s.nextCode(ctx)
		if err != nil {
			return nil, err
		}
		if code == "" {
			continue
		}

		if aff == nil {
			aff, err = affiliate.NewAffiliate(principal.UserID, profile, code, s.config.DefaultCommissionRate)
		} else {
			err = aff.AssignReferralCode(code)
		}
		if err != nil {
			return nil, err
		}

		user, err = s.create(ctx, aff)
		if errors.Is(err, affiliate.ErrReferralCodeTaken) {
			logger.For(ctx, s.logger).Warn("Referral code collided on insert, retrying",
				zap.String("user_id", principal.UserID.String()),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		logger.For(ctx, s.logger).Info("Affiliate application submitted",
			zap.String("affiliate_id", aff.ID.String()),
			zap.String("user_id", principal.UserID.String()),
			zap.String("referral_code", aff.ReferralCode))
		s.publish(ctx, aff, user)
		resp := ToAffiliateResponse(aff)
		return &resp, nil
	}

	logger.For(ctx, s.logger).Error("Referral code attempts exhausted",
		zap.String("user_id", principal.UserID.String()),
		zap.Int("max_attempts", s.config.MaxCodeAttempts))
	telemetry.RecordError(span, ErrReferralCodeExhausted)
	return nil, ErrReferralCodeExhausted
}

// nextCode returns a candidate code, or "" when the fast-path check shows it is taken
func (s *RegistryService) nextCode(ctx context.Context) (string, error) {
	code, err := s.codes.Generate()
	if err != nil {
		return "", fmt.Errorf("generate referral code: %w", err)
	}
	taken, err := s.affiliates.ExistsByReferralCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("check referral code: %w", err)
	}
	if taken {
		return "", nil
	}
	return code, nil
}

func (s *RegistryService) create(ctx context.Context, aff *affiliate.Affiliate) (*identity.User, error) {
	var user *identity.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.affiliates.Create(ctx, aff); err != nil {
			return err
		}
		u, err := s.users.FindByID(ctx, aff.UserID)
		if err != nil {
			return err
		}
		if u.PromoteToAffiliate() {
			if err := s.users.UpdateRole(ctx, u.ID, u.Role); err != nil {
				return err
			}
		}
		user = u
		return nil
	})
	return user, err
}

// Decide approves or rejects an application. Admin only.
func (s *RegistryService) Decide(ctx context.Context, principal identity.Principal, id uuid.UUID, req DecideRequest) (*AffiliateResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return nil, err
	}
	decision, err := affiliate.ParseDecision(req.Action, req.RejectionReason)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "affiliate", "decide",
		telemetry.ID(telemetry.AttrAffiliateID, id), telemetry.AttrAction.String(decision.Action()))
	defer span.End()

	aff, err := s.affiliates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := aff.Decide(decision); err != nil {
		return nil, err
	}
	if err := s.affiliates.Update(ctx, aff); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.For(ctx, s.logger).Info("Affiliate decision recorded",
		zap.String("affiliate_id", aff.ID.String()),
		zap.String("action", decision.Action()),
		zap.String("admin_id", principal.UserID.String()))
	s.publish(ctx, aff)
	resp := ToAffiliateResponse(aff)
	return &resp, nil
}

// List returns affiliates newest first. Admin only.
func (s *RegistryService) List(ctx context.Context, principal identity.Principal, q ListQuery) (*shared.Paginated[AffiliateResponse], error) {
	if err := principal.RequireAdmin(); err != nil {
		return nil, err
	}

	filter := affiliate.Filter{Filter: shared.DefaultFilter()}
	filter.PageSize = s.config.PageSize
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	filter.Search = strings.TrimSpace(q.Search)
	if q.Status != "" {
		status := affiliate.Status(q.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("Status afiliasi tidak valid.")
		}
		filter.Status = &status
	}

	items, total, err := s.affiliates.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToAffiliateResponses(items), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one affiliate with its referral stats. Admin or owner.
func (s *RegistryService) Get(ctx context.Context, principal identity.Principal, id uuid.UUID) (*AffiliateDetailResponse, error) {
	aff, err := s.affiliates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !principal.Owns(aff.UserID) {
		return nil, shared.ErrForbidden
	}

	totals, err := s.referrals.TotalsByStatus(ctx, aff.ID)
	if err != nil {
		return nil, err
	}
	return &AffiliateDetailResponse{
		AffiliateResponse: ToAffiliateResponse(aff),
		Stats:             referral.StatsFromTotals(totals),
	}, nil
}

// GetMy returns the caller's own affiliate record
func (s *RegistryService) GetMy(ctx context.Context, principal identity.Principal) (*AffiliateResponse, error) {
	aff, err := s.affiliates.FindByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	resp := ToAffiliateResponse(aff)
	return &resp, nil
}

// publish runs after commit; subscriber failures never undo a saved change
func (s *RegistryService) publish(ctx context.Context, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		if err := shared.PublishAggregateEvents(ctx, s.events, agg); err != nil {
			logger.For(ctx, s.logger).Warn("Failed to publish domain events", zap.Error(err))
		}
	}
}
