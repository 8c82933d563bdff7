package report

import (
	"context"

	affiliateapp "github.com/englishbooster/affiliate/internal/application/affiliate"
	catalogapp "github.com/englishbooster/affiliate/internal/application/catalog"
	referralapp "github.com/englishbooster/affiliate/internal/application/referral"
	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRecentReferrals is the number of referrals shown on the dashboard
const DefaultRecentReferrals = 5

// Config carries the presentation settings of the report service
type Config struct {
	BaseURL         string
	Contact         Contact
	RecentReferrals int
}

// ReportService computes affiliate statistics and the read-only pages
// built on top of them. Every figure is computed on request.
type ReportService struct {
	affiliates affiliate.Repository
	programs   catalog.ProgramRepository
	referrals  referral.Repository
	config     Config
	logger     *zap.Logger
}

func NewReportService(
	affiliates affiliate.Repository,
	programs catalog.ProgramRepository,
	referrals referral.Repository,
	config Config,
	logger *zap.Logger,
) *ReportService {
	if config.RecentReferrals <= 0 {
		config.RecentReferrals = DefaultRecentReferrals
	}
	return &ReportService{
		affiliates: affiliates,
		programs:   programs,
		referrals:  referrals,
		config:     config,
		logger:     logger,
	}
}

// AffiliateStats returns the referral totals of one affiliate to an admin
// or to the affiliate's own user.
func (s *ReportService) AffiliateStats(ctx context.Context, principal identity.Principal, affiliateID uuid.UUID) (*referral.Stats, error) {
	aff, err := s.affiliates.FindByID(ctx, affiliateID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !principal.Owns(aff.UserID) {
		return nil, shared.ErrForbidden
	}
	stats, err := s.statsFor(ctx, aff.ID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CatalogStats counts approved affiliates, active programs and all referrals
func (s *ReportService) CatalogStats(ctx context.Context) (*CatalogStats, error) {
	affiliates, err := s.affiliates.CountByStatus(ctx, affiliate.StatusApproved)
	if err != nil {
		return nil, err
	}
	programs, err := s.programs.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	referrals, err := s.referrals.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &CatalogStats{
		TotalAffiliates: affiliates,
		TotalPrograms:   programs,
		TotalReferrals:  referrals,
	}, nil
}

// Dashboard assembles the caller's affiliate page. A caller without an
// affiliate record gets NotFound so the client can offer the application form.
func (s *ReportService) Dashboard(ctx context.Context, principal identity.Principal) (*DashboardResponse, error) {
	aff, err := s.affiliates.FindByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	programs, err := s.programs.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.statsFor(ctx, aff.ID)
	if err != nil {
		return nil, err
	}

	filter := referral.Filter{Filter: shared.DefaultFilter(), AffiliateID: &aff.ID}
	filter.PageSize = s.config.RecentReferrals
	recent, _, err := s.referrals.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		Affiliate:       affiliateapp.ToAffiliateResponse(aff),
		Programs:        catalogapp.ToProgramResponses(programs),
		ReferralLink:    aff.ReferralLink(s.config.BaseURL),
		Stats:           stats,
		RecentReferrals: referralapp.ToReferralResponses(recent),
	}, nil
}

// Home returns active programs grouped by category with the public totals
func (s *ReportService) Home(ctx context.Context) (*HomeResponse, error) {
	programs, err := s.programs.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.CatalogStats(ctx)
	if err != nil {
		return nil, err
	}
	return &HomeResponse{
		Programs: catalogapp.GroupByCategory(programs),
		Stats:    *stats,
		Contact:  s.config.Contact,
	}, nil
}

func (s *ReportService) statsFor(ctx context.Context, affiliateID uuid.UUID) (referral.Stats, error) {
	totals, err := s.referrals.TotalsByStatus(ctx, affiliateID)
	if err != nil {
		logger.For(ctx, s.logger).Error("Failed to aggregate referral totals",
			zap.String("affiliate_id", affiliateID.String()), zap.Error(err))
		return referral.Stats{}, err
	}
	return referral.StatsFromTotals(totals), nil
}
