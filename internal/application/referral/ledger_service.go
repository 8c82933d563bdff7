package referral

import (
	"context"
	"errors"
	"strings"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"github.com/englishbooster/affiliate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Messages returned with a successful transition
const (
	MessageConfirmed = "Referral berhasil dikonfirmasi."
	MessagePaid      = "Komisi berhasil dibayar."
)

// LedgerService records referrals and drives their commission lifecycle
type LedgerService struct {
	referrals  referral.Repository
	affiliates affiliate.Repository
	programs   catalog.ProgramRepository
	events     shared.EventPublisher
	pageSize   int
	logger     *zap.Logger
}

func NewLedgerService(
	referrals referral.Repository,
	affiliates affiliate.Repository,
	programs catalog.ProgramRepository,
	events shared.EventPublisher,
	pageSize int,
	logger *zap.Logger,
) *LedgerService {
	if pageSize <= 0 {
		pageSize = shared.DefaultPageSize
	}
	return &LedgerService{
		referrals:  referrals,
		affiliates: affiliates,
		programs:   programs,
		events:     events,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// Create registers a student for a program on behalf of the calling affiliate.
// Eligibility is read from the store, not from the caller's token.
func (s *LedgerService) Create(ctx context.Context, principal identity.Principal, req CreateRequest) (*ReferralResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "referral", "create",
		telemetry.ID(telemetry.AttrUserID, principal.UserID), telemetry.ID(telemetry.AttrProgramID, req.ProgramID))
	defer span.End()

	aff, err := s.affiliates.FindByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, referral.ErrNotEligible
		}
		return nil, err
	}
	if !aff.IsApproved() {
		return nil, referral.ErrNotEligible
	}

	if req.ProgramID == uuid.Nil {
		return nil, shared.NewValidationError("Program wajib dipilih.")
	}
	student := req.student()
	if err := student.Validate(); err != nil {
		return nil, err
	}

	program, err := s.programs.FindByID(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}

	ref, err := referral.NewReferral(aff, program, student)
	if err != nil {
		return nil, err
	}
	if err := s.referrals.Create(ctx, ref); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.For(ctx, s.logger).Info("Referral created",
		zap.String("referral_id", ref.ID.String()),
		zap.String("affiliate_id", aff.ID.String()),
		zap.String("program_id", program.ID.String()),
		zap.String("commission_amount", ref.CommissionAmount.String()))
	s.publish(ctx, ref)
	resp := ToReferralResponse(ref)
	return &resp, nil
}

// Transition applies confirm or mark_paid. Admin only.
func (s *LedgerService) Transition(ctx context.Context, principal identity.Principal, id uuid.UUID, req TransitionRequest) (*TransitionResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return nil, err
	}
	cmd, err := referral.ParseCommand(req.Action)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "referral", "transition",
		telemetry.ID(telemetry.AttrReferralID, id), telemetry.AttrAction.String(cmd.Action()))
	defer span.End()

	ref, err := s.referrals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ref.Apply(cmd); err != nil {
		return nil, err
	}
	if err := s.referrals.Update(ctx, ref); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.For(ctx, s.logger).Info("Referral transitioned",
		zap.String("referral_id", ref.ID.String()),
		zap.String("action", cmd.Action()),
		zap.String("status", string(ref.Status)),
		zap.String("admin_id", principal.UserID.String()))
	s.publish(ctx, ref)

	message := MessageConfirmed
	if ref.Status == referral.StatusPaid {
		message = MessagePaid
	}
	return &TransitionResponse{Referral: ToReferralResponse(ref), Message: message}, nil
}

// List returns referrals newest first. Admins see every referral, everyone
// else sees only those of their own affiliate record.
func (s *LedgerService) List(ctx context.Context, principal identity.Principal, q ListQuery) (*shared.Paginated[ReferralResponse], error) {
	filter := referral.Filter{Filter: shared.DefaultFilter()}
	filter.PageSize = s.pageSize
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	filter.Search = strings.TrimSpace(q.Search)
	if q.Status != "" {
		status := referral.Status(q.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("Status referral tidak valid.")
		}
		filter.Status = &status
	}

	if !principal.IsAdmin() {
		aff, err := s.affiliates.FindByUserID(ctx, principal.UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				page := shared.NewPaginated[ReferralResponse](nil, 0, filter.Page, filter.PageSize)
				return &page, nil
			}
			return nil, err
		}
		filter.AffiliateID = &aff.ID
	}

	items, total, err := s.referrals.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToReferralResponses(items), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one referral to an admin or to the affiliate who created it
func (s *LedgerService) Get(ctx context.Context, principal identity.Principal, id uuid.UUID) (*ReferralResponse, error) {
	ref, err := s.referrals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() {
		aff, err := s.affiliates.FindByUserID(ctx, principal.UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.ErrForbidden
			}
			return nil, err
		}
		if !ref.BelongsTo(aff.ID) {
			return nil, shared.ErrForbidden
		}
	}
	resp := ToReferralResponse(ref)
	return &resp, nil
}

func (s *LedgerService) publish(ctx context.Context, ref *referral.Referral) {
	if err := shared.PublishAggregateEvents(ctx, s.events, ref); err != nil {
		logger.For(ctx, s.logger).Warn("Failed to publish domain events",
			zap.String("referral_id", ref.ID.String()), zap.Error(err))
	}
}
