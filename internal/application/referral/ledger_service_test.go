package referral

import (
	"context"
	"testing"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledgerFixture struct {
	referrals  *testutil.MockReferralRepository
	affiliates *testutil.MockAffiliateRepository
	programs   *testutil.MockProgramRepository
	events     *testutil.RecordingPublisher
	svc        *LedgerService
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		referrals:  new(testutil.MockReferralRepository),
		affiliates: new(testutil.MockAffiliateRepository),
		programs:   new(testutil.MockProgramRepository),
		events:     testutil.NewRecordingPublisher(),
	}
	f.svc = NewLedgerService(f.referrals, f.affiliates, f.programs, f.events, 10, zap.NewNop())
	return f
}

func affiliateWithStatus(t *testing.T, userID uuid.UUID, status affiliate.Status) *affiliate.Affiliate {
	t.Helper()
	a, err := affiliate.NewAffiliate(userID, affiliate.Profile{
		Name: "Budi Santoso", Email: "budi@example.com", Phone: "081234567890",
	}, "ABCD1234", decimal.NewFromInt(10))
	require.NoError(t, err)
	switch status {
	case affiliate.StatusApproved:
		require.NoError(t, a.Decide(affiliate.Approve()))
	case affiliate.StatusRejected:
		require.NoError(t, a.Decide(affiliate.Reject("Data tidak lengkap")))
	}
	a.ClearDomainEvents()
	return a
}

func programPriced(t *testing.T, price int64) *catalog.Program {
	t.Helper()
	p, err := catalog.NewProgram("Paket Intensif 2 Bulan", catalog.CategoryOffline, "", decimal.NewFromInt(price), 8, "Pare")
	require.NoError(t, err)
	return p
}

func validCreateRequest(programID uuid.UUID) CreateRequest {
	return CreateRequest{
		ProgramID:    programID,
		StudentName:  "Rina",
		StudentEmail: "rina@example.com",
		StudentPhone: "085700000000",
	}
}

func pendingReferral(t *testing.T) *referral.Referral {
	t.Helper()
	aff := affiliateWithStatus(t, testutil.UserID(), affiliate.StatusApproved)
	r, err := referral.NewReferral(aff, programPriced(t, 2000000), referral.Student{
		Name: "Rina", Email: "rina@example.com", Phone: "085700000000",
	})
	require.NoError(t, err)
	r.ClearDomainEvents()
	return r
}

func TestLedgerService_Create(t *testing.T) {
	ctx := context.Background()
	userID := testutil.UserID()
	principal := identity.NewPrincipal(userID, identity.RoleAffiliate)

	t.Run("freezes price times rate", func(t *testing.T) {
		f := newLedgerFixture()
		aff := affiliateWithStatus(t, userID, affiliate.StatusApproved)
		program := programPriced(t, 2000000)
		f.affiliates.On("FindByUserID", mock.Anything, userID).Return(aff, nil)
		f.programs.On("FindByID", mock.Anything, program.ID).Return(program, nil)
		f.referrals.On("Create", mock.Anything, mock.AnythingOfType("*referral.Referral")).Return(nil)

		resp, err := f.svc.Create(ctx, principal, validCreateRequest(program.ID))
		require.NoError(t, err)

		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, aff.ID, resp.AffiliateID)
		assert.True(t, resp.ProgramPrice.Equal(decimal.NewFromInt(2000000)))
		assert.True(t, resp.CommissionRate.Equal(decimal.NewFromInt(10)))
		assert.True(t, resp.CommissionAmount.Equal(decimal.NewFromInt(200000)))
		assert.Equal(t, []string{referral.EventTypeCreated}, f.events.EventTypes())
	})

	t.Run("inactive programs are referable", func(t *testing.T) {
		f := newLedgerFixture()
		aff := affiliateWithStatus(t, userID, affiliate.StatusApproved)
		program := programPriced(t, 500000)
		program.Deactivate()
		f.affiliates.On("FindByUserID", mock.Anything, userID).Return(aff, nil)
		f.programs.On("FindByID", mock.Anything, program.ID).Return(program, nil)
		f.referrals.On("Create", mock.Anything, mock.AnythingOfType("*referral.Referral")).Return(nil)

		resp, err := f.svc.Create(ctx, principal, validCreateRequest(program.ID))
		require.NoError(t, err)
		assert.True(t, resp.CommissionAmount.Equal(decimal.NewFromInt(50000)))
	})

	for _, status := range []affiliate.Status{affiliate.StatusPending, affiliate.StatusRejected} {
		t.Run("not eligible when "+string(status), func(t *testing.T) {
			f := newLedgerFixture()
			f.affiliates.On("FindByUserID", mock.Anything, userID).Return(affiliateWithStatus(t, userID, status), nil)

			_, err := f.svc.Create(ctx, principal, validCreateRequest(uuid.New()))
			assert.Equal(t, referral.ErrNotEligible, err)
			f.referrals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("not eligible without an affiliate record", func(t *testing.T) {
		f := newLedgerFixture()
		f.affiliates.On("FindByUserID", mock.Anything, userID).Return(nil, affiliate.ErrNotFound)

		_, err := f.svc.Create(ctx, identity.NewPrincipal(userID, identity.RoleUser), validCreateRequest(uuid.New()))
		assert.Equal(t, referral.ErrNotEligible, err)
	})

	t.Run("student fields are validated before the program lookup", func(t *testing.T) {
		f := newLedgerFixture()
		f.affiliates.On("FindByUserID", mock.Anything, userID).Return(affiliateWithStatus(t, userID, affiliate.StatusApproved), nil)

		req := validCreateRequest(uuid.New())
		req.StudentEmail = "bukan-email"
		_, err := f.svc.Create(ctx, principal, req)
		assert.ErrorIs(t, err, shared.ErrValidation)
		f.programs.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)

		_, err = f.svc.Create(ctx, principal, validCreateRequest(uuid.Nil))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("missing program", func(t *testing.T) {
		f := newLedgerFixture()
		programID := uuid.New()
		f.affiliates.On("FindByUserID", mock.Anything, userID).Return(affiliateWithStatus(t, userID, affiliate.StatusApproved), nil)
		f.programs.On("FindByID", mock.Anything, programID).Return(nil, catalog.ErrNotFound)

		_, err := f.svc.Create(ctx, principal, validCreateRequest(programID))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLedgerService_Transition(t *testing.T) {
	ctx := context.Background()
	admin := identity.NewPrincipal(testutil.AdminID(), identity.RoleAdmin)

	t.Run("confirm then mark paid", func(t *testing.T) {
		f := newLedgerFixture()
		r := pendingReferral(t)
		f.referrals.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		f.referrals.On("Update", mock.Anything, r).Return(nil)

		resp, err := f.svc.Transition(ctx, admin, r.ID, TransitionRequest{Action: "confirm"})
		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Referral.Status)
		assert.Equal(t, MessageConfirmed, resp.Message)
		assert.NotNil(t, resp.Referral.ConfirmedAt)

		resp, err = f.svc.Transition(ctx, admin, r.ID, TransitionRequest{Action: "mark_paid"})
		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Referral.Status)
		assert.Equal(t, MessagePaid, resp.Message)
		assert.True(t, resp.Referral.CommissionAmount.Equal(decimal.NewFromInt(200000)))

		assert.Equal(t, []string{referral.EventTypeConfirmed, referral.EventTypePaid}, f.events.EventTypes())
	})

	t.Run("out of order command", func(t *testing.T) {
		f := newLedgerFixture()
		r := pendingReferral(t)
		f.referrals.On("FindByID", mock.Anything, r.ID).Return(r, nil)

		_, err := f.svc.Transition(ctx, admin, r.ID, TransitionRequest{Action: "mark_paid"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, referral.StatusPending, r.Status)
		f.referrals.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newLedgerFixture()
		_, err := f.svc.Transition(ctx, admin, uuid.New(), TransitionRequest{Action: "refund"})
		assert.ErrorIs(t, err, shared.ErrInvalidAction)
	})

	t.Run("admin only", func(t *testing.T) {
		f := newLedgerFixture()
		_, err := f.svc.Transition(ctx, identity.NewPrincipal(testutil.UserID(), identity.RoleAffiliate), uuid.New(), TransitionRequest{Action: "confirm"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newLedgerFixture()
		r := pendingReferral(t)
		f.referrals.On("FindByID", mock.Anything, r.ID).Return(r, nil)
		f.referrals.On("Update", mock.Anything, r).Return(shared.ErrConcurrencyConflict)

		_, err := f.svc.Transition(ctx, admin, r.ID, TransitionRequest{Action: "confirm"})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Empty(t, f.events.Events())
	})
}

func TestLedgerService_List(t *testing.T) {
	ctx := context.Background()
	userID := testutil.UserID()

	t.Run("admin sees everything", func(t *testing.T) {
		f := newLedgerFixture()
		f.referrals.On("FindAll", mock.Anything, mock.MatchedBy(func(filter referral.Filter) bool {
			return filter.AffiliateID == nil && filter.PageSize == 10
		})).Return([]*referral.Referral{pendingReferral(t)}, int64(1), nil)

		page, err := f.svc.List(ctx, identity.NewPrincipal(testutil.AdminID(), identity.RoleAdmin), ListQuery{})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})

	t.Run("affiliate sees own referrals", func(t *testing.T) {
		f := newLedgerFixture()
		aff := affiliateWithStatus(t, userID, affiliate.StatusApproved)
		f.affiliates.On("FindByUserID", mock.Anything, userID).Return(aff, nil)
		f.referrals.On("FindAll", mock.Anything, mock.MatchedBy(func(filter referral.Filter) bool {
			return filter.AffiliateID != nil && *filter.AffiliateID == aff.ID &&
				filter.Status != nil && *filter.Status == referral.StatusPaid
		})).Return([]*referral.Referral{}, int64(0), nil)

		page, err := f.svc.List(ctx, identity.NewPrincipal(userID, identity.RoleAffiliate), ListQuery{Status: "paid"})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("user without affiliate gets an empty page", func(t *testing.T) {
		f := newLedgerFixture()
		f.affiliates.On("FindByUserID", mock.Anything, userID).Return(nil, affiliate.ErrNotFound)

		page, err := f.svc.List(ctx, identity.NewPrincipal(userID, identity.RoleUser), ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
		assert.NotNil(t, page.Items)
		f.referrals.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newLedgerFixture()
		_, err := f.svc.List(ctx, identity.NewPrincipal(userID, identity.RoleUser), ListQuery{Status: "refunded"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestLedgerService_Get(t *testing.T) {
	ctx := context.Background()
	r := pendingReferral(t)
	ownerID := testutil.UserID()
	owner := affiliateWithStatus(t, ownerID, affiliate.StatusApproved)
	owner.ID = r.AffiliateID
	otherID := uuid.New()

	f := newLedgerFixture()
	f.referrals.On("FindByID", mock.Anything, r.ID).Return(r, nil)
	f.affiliates.On("FindByUserID", mock.Anything, ownerID).Return(owner, nil)
	f.affiliates.On("FindByUserID", mock.Anything, otherID).Return(affiliateWithStatus(t, otherID, affiliate.StatusApproved), nil)

	_, err := f.svc.Get(ctx, identity.NewPrincipal(testutil.AdminID(), identity.RoleAdmin), r.ID)
	assert.NoError(t, err)

	resp, err := f.svc.Get(ctx, identity.NewPrincipal(ownerID, identity.RoleAffiliate), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, resp.ID)

	_, err = f.svc.Get(ctx, identity.NewPrincipal(otherID, identity.RoleAffiliate), r.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
