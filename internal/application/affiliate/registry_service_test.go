package affiliate

import (
	"context"
	"testing"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
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

// sequenceGenerator hands out the given codes in order
type sequenceGenerator struct {
	codes []string
	next  int
}

func (g *sequenceGenerator) Generate() (string, error) {
	code := g.codes[g.next%len(g.codes)]
	g.next++
	return code, nil
}

type registryFixture struct {
	affiliates *testutil.MockAffiliateRepository
	users      *testutil.MockUserRepository
	referrals  *testutil.MockReferralRepository
	tx         *testutil.InlineTxManager
	events     *testutil.RecordingPublisher
	codes      *sequenceGenerator
	svc        *RegistryService
}

func newRegistryFixture(maxAttempts int, codes ...string) *registryFixture {
	f := &registryFixture{
		affiliates: new(testutil.MockAffiliateRepository),
		users:      new(testutil.MockUserRepository),
		referrals:  new(testutil.MockReferralRepository),
		tx:         &testutil.InlineTxManager{},
		events:     testutil.NewRecordingPublisher(),
		codes:      &sequenceGenerator{codes: codes},
	}
	f.svc = NewRegistryService(f.affiliates, f.users, f.referrals, f.codes, f.tx, f.events,
		RegistryConfig{DefaultCommissionRate: decimal.NewFromInt(10), MaxCodeAttempts: maxAttempts},
		zap.NewNop())
	return f
}

func validApplyRequest() ApplyRequest {
	return ApplyRequest{
		Name:       "Budi Santoso",
		Email:      "budi@example.com",
		Phone:      "081234567890",
		BankName:   "BCA",
		Motivation: "Ingin membantu teman belajar bahasa Inggris",
	}
}

func plainUser(id uuid.UUID) *identity.User {
	u := &identity.User{Name: "Budi", Email: "budi@example.com", Role: identity.RoleUser}
	u.ID = id
	return u
}

func pendingAffiliate(t *testing.T, userID uuid.UUID) *affiliate.Affiliate {
	t.Helper()
	a, err := affiliate.NewAffiliate(userID, affiliate.Profile{
		Name: "Budi Santoso", Email: "budi@example.com", Phone: "081234567890",
	}, "ABCD1234", decimal.NewFromInt(10))
	require.NoError(t, err)
	a.ClearDomainEvents()
	return a
}

func TestRegistryService_SubmitApplication(t *testing.T) {
	ctx := context.Background()
	userID := testutil.UserID()
	principal := identity.NewPrincipal(userID, identity.RoleUser)

	t.Run("creates a pending application and promotes the user", func(t *testing.T) {
		f := newRegistryFixture(10, "CODE0001")
		f.affiliates.On("ExistsByUserID", mock.Anything, userID).Return(false, nil)
		f.affiliates.On("ExistsByEmail", mock.Anything, "budi@example.com").Return(false, nil)
		f.affiliates.On("ExistsByReferralCode", mock.Anything, "CODE0001").Return(false, nil)
		f.affiliates.On("Create", mock.Anything, mock.AnythingOfType("*affiliate.Affiliate")).Return(nil)
		f.users.On("FindByID", mock.Anything, userID).Return(plainUser(userID), nil)
		f.users.On("UpdateRole", mock.Anything, userID, identity.RoleAffiliate).Return(nil)

		resp, err := f.svc.SubmitApplication(ctx, principal, validApplyRequest())
		require.NoError(t, err)

		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "CODE0001", resp.ReferralCode)
		assert.True(t, resp.CommissionRate.Equal(decimal.NewFromInt(10)))
		assert.Nil(t, resp.ApprovedAt)
		assert.Equal(t, 1, f.tx.Calls)
		assert.Equal(t, []string{affiliate.EventTypeApplied, identity.EventTypeUserRoleChanged}, f.events.EventTypes())
		f.affiliates.AssertExpectations(t)
		f.users.AssertExpectations(t)
	})

	t.Run("duplicate application", func(t *testing.T) {
		f := newRegistryFixture(10, "CODE0001")
		f.affiliates.On("ExistsByUserID", mock.Anything, userID).Return(true, nil)

		_, err := f.svc.SubmitApplication(ctx, principal, validApplyRequest())
		assert.ErrorIs(t, err, affiliate.ErrDuplicateApplication)
		f.affiliates.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("email used by another affiliate", func(t *testing.T) {
		f := newRegistryFixture(10, "CODE0001")
		f.affiliates.On("ExistsByUserID", mock.Anything, userID).Return(false, nil)
		f.affiliates.On("ExistsByEmail", mock.Anything, "budi@example.com").Return(true, nil)

		req := validApplyRequest()
		req.Email = "  BUDI@example.com "
		_, err := f.svc.SubmitApplication(ctx, principal, req)
		assert.Equal(t, affiliate.ErrDuplicateEmail, err)
	})

	t.Run("invalid profile", func(t *testing.T) {
		f := newRegistryFixture(10, "CODE0001")
		f.affiliates.On("ExistsByUserID", mock.Anything, userID).Return(false, nil)
		f.affiliates.On("ExistsByEmail", mock.Anything, "not-an-email").Return(false, nil)
		f.affiliates.On("ExistsByReferralCode", mock.Anything, "CODE0001").Return(false, nil)

		req := validApplyRequest()
		req.Email = "not-an-email"
		_, err := f.svc.SubmitApplication(ctx, principal, req)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Equal(t, 0, f.tx.Calls)
	})

	t.Run("skips codes the store already has", func(t *testing.T) {
		f := newRegistryFixture(10, "TAKEN001", "FREE0001")
		f.affiliates.On("ExistsByUserID", mock.Anything, userID).Return(false, nil)
		f.affiliates.On("ExistsByEmail", mock.Anything, "budi@example.com").Return(false, nil)
		f.affiliates.On("ExistsByReferralCode", mock.Anything, "TAKEN001").Return(true, nil)
		f.affiliates.On("ExistsByReferralCode", mock.Anything, "FREE0001").Return(false, nil)
		f.affiliates.On("Create", mock.Anything, mock.AnythingOfType("*affiliate.Affiliate")).Return(nil)
		f.users.On("FindByID", mock.Anything, userID).Return(plainUser(userID), nil)
		f.users.On("UpdateRole", mock.Anything, userID, identity.RoleAffiliate).Return(nil)

		resp, err := f.svc.SubmitApplication(ctx, principal, validApplyRequest())
		require.NoError(t, err)
		assert.Equal(t, "FREE0001", resp.ReferralCode)
		assert.Equal(t, 1, f.tx.Calls)
	})

	t.Run("retries with a new code when the insert collides", func(t *testing.T) {
		f := newRegistryFixture(10, "RACE0001", "RACE0002")
		f.affiliates.On("ExistsByUserID", mock.Anything, userID).Return(false, nil)
		f.affiliates.On("ExistsByEmail", mock.Anything, "budi@example.com").Return(false, nil)
		f.affiliates.On("ExistsByReferralCode", mock.Anything, mock.Anything).Return(false, nil)
		f.affiliates.On("Create", mock.Anything, mock.AnythingOfType("*affiliate.Affiliate")).Return(affiliate.ErrReferralCodeTaken).Once()
		f.affiliates.On("Create", mock.Anything, mock.AnythingOfType("*affiliate.Affiliate")).Return(nil).Once()
		f.users.On("FindByID", mock.Anything, userID).Return(plainUser(userID), nil)
		f.users.On("UpdateRole", mock.Anything, userID, identity.RoleAffiliate).Return(nil)

		resp, err := f.svc.SubmitApplication(ctx, principal, validApplyRequest())
		require.NoError(t, err)
		assert.Equal(t, "RACE0002", resp.ReferralCode)
		assert.Equal(t, 2, f.tx.Calls)

		applied, ok := f.events.Events()[0].(*affiliate.AppliedEvent)
		require.True(t, ok)
		assert.Equal(t, "RACE0002", applied.ReferralCode)
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		f := newRegistryFixture(3, "TAKEN001")
		f.affiliates.On("ExistsByUserID", mock.Anything, userID).Return(false, nil)
		f.affiliates.On("ExistsByEmail", mock.Anything, "budi@example.com").Return(false, nil)
		f.affiliates.On("ExistsByReferralCode", mock.Anything, "TAKEN001").Return(true, nil)

		_, err := f.svc.SubmitApplication(ctx, principal, validApplyRequest())
		assert.Equal(t, ErrReferralCodeExhausted, err)
		f.affiliates.AssertNumberOfCalls(t, "ExistsByReferralCode", 3)
		f.affiliates.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("an admin keeps the admin role", func(t *testing.T) {
		adminID := testutil.AdminID()
		admin := plainUser(adminID)
		admin.Role = identity.RoleAdmin

		f := newRegistryFixture(10, "CODE0001")
		f.affiliates.On("ExistsByUserID", mock.Anything, adminID).Return(false, nil)
		f.affiliates.On("ExistsByEmail", mock.Anything, "budi@example.com").Return(false, nil)
		f.affiliates.On("ExistsByReferralCode", mock.Anything, "CODE0001").Return(false, nil)
		f.affiliates.On("Create", mock.Anything, mock.AnythingOfType("*affiliate.Affiliate")).Return(nil)
		f.users.On("FindByID", mock.Anything, adminID).Return(admin, nil)

		_, err := f.svc.SubmitApplication(ctx, identity.NewPrincipal(adminID, identity.RoleAdmin), validApplyRequest())
		require.NoError(t, err)
		f.users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRegistryService_Decide(t *testing.T) {
	ctx := context.Background()
	admin := identity.NewPrincipal(testutil.AdminID(), identity.RoleAdmin)

	t.Run("only admins decide", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		_, err := f.svc.Decide(ctx, identity.NewPrincipal(testutil.UserID(), identity.RoleAffiliate), uuid.New(), DecideRequest{Action: "approve"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		_, err := f.svc.Decide(ctx, admin, uuid.New(), DecideRequest{Action: "suspend"})
		assert.ErrorIs(t, err, shared.ErrInvalidAction)
		f.affiliates.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("approve", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		a := pendingAffiliate(t, testutil.UserID())
		f.affiliates.On("FindByID", mock.Anything, a.ID).Return(a, nil)
		f.affiliates.On("Update", mock.Anything, a).Return(nil)

		resp, err := f.svc.Decide(ctx, admin, a.ID, DecideRequest{Action: "approve"})
		require.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
		assert.NotNil(t, resp.ApprovedAt)
		assert.Equal(t, []string{affiliate.EventTypeApproved}, f.events.EventTypes())
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		a := pendingAffiliate(t, testutil.UserID())
		f.affiliates.On("FindByID", mock.Anything, a.ID).Return(a, nil)

		_, err := f.svc.Decide(ctx, admin, a.ID, DecideRequest{Action: "reject", RejectionReason: "   "})
		assert.ErrorIs(t, err, shared.ErrValidation)
		f.affiliates.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.Empty(t, f.events.Events())
	})

	t.Run("reject with reason", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		a := pendingAffiliate(t, testutil.UserID())
		f.affiliates.On("FindByID", mock.Anything, a.ID).Return(a, nil)
		f.affiliates.On("Update", mock.Anything, a).Return(nil)

		resp, err := f.svc.Decide(ctx, admin, a.ID, DecideRequest{Action: "reject", RejectionReason: "Data rekening tidak lengkap"})
		require.NoError(t, err)
		assert.Equal(t, "rejected", resp.Status)
		assert.Equal(t, "Data rekening tidak lengkap", resp.RejectionReason)
	})

	t.Run("missing affiliate", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		id := uuid.New()
		f.affiliates.On("FindByID", mock.Anything, id).Return(nil, affiliate.ErrNotFound)

		_, err := f.svc.Decide(ctx, admin, id, DecideRequest{Action: "approve"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		a := pendingAffiliate(t, testutil.UserID())
		f.affiliates.On("FindByID", mock.Anything, a.ID).Return(a, nil)
		f.affiliates.On("Update", mock.Anything, a).Return(shared.ErrConcurrencyConflict)

		_, err := f.svc.Decide(ctx, admin, a.ID, DecideRequest{Action: "approve"})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Empty(t, f.events.Events())
	})
}

func TestRegistryService_List(t *testing.T) {
	ctx := context.Background()
	admin := identity.NewPrincipal(testutil.AdminID(), identity.RoleAdmin)

	t.Run("admin only", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		_, err := f.svc.List(ctx, identity.NewPrincipal(testutil.UserID(), identity.RoleUser), ListQuery{})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		_, err := f.svc.List(ctx, admin, ListQuery{Status: "archived"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("passes the filter and paginates", func(t *testing.T) {
		f := newRegistryFixture(10, "X")
		a := pendingAffiliate(t, testutil.UserID())
		f.affiliates.On("FindAll", mock.Anything, mock.MatchedBy(func(filter affiliate.Filter) bool {
			return filter.Status != nil && *filter.Status == affiliate.StatusPending &&
				filter.Page == 2 && filter.PageSize == 10 && filter.Search == "budi" &&
				filter.OrderBy == "created_at" && filter.OrderDir == "desc"
		})).Return([]*affiliate.Affiliate{a}, int64(11), nil)

		page, err := f.svc.List(ctx, admin, ListQuery{Status: "pending", Page: 2, Search: " budi "})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(11), page.Total)
		assert.Equal(t, 2, page.TotalPages)
	})
}

func TestRegistryService_Get(t *testing.T) {
	ctx := context.Background()
	owner := testutil.UserID()
	a := pendingAffiliate(t, owner)

	f := newRegistryFixture(10, "X")
	f.affiliates.On("FindByID", mock.Anything, a.ID).Return(a, nil)
	f.referrals.On("TotalsByStatus", mock.Anything, a.ID).Return([]referral.StatusTotal{
		{Status: referral.StatusPending, Count: 1, Amount: decimal.NewFromInt(50000)},
		{Status: referral.StatusPaid, Count: 2, Amount: decimal.NewFromInt(300000)},
	}, nil)

	t.Run("owner sees stats", func(t *testing.T) {
		resp, err := f.svc.Get(ctx, identity.NewPrincipal(owner, identity.RoleAffiliate), a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Stats.TotalReferrals)
		assert.Equal(t, "300000", resp.Stats.TotalCommission.String())
		assert.Equal(t, "50000", resp.Stats.PendingCommission.String())
	})

	t.Run("admin sees any affiliate", func(t *testing.T) {
		_, err := f.svc.Get(ctx, identity.NewPrincipal(testutil.AdminID(), identity.RoleAdmin), a.ID)
		assert.NoError(t, err)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		_, err := f.svc.Get(ctx, identity.NewPrincipal(uuid.New(), identity.RoleAffiliate), a.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestRegistryService_GetMy(t *testing.T) {
	ctx := context.Background()
	owner := testutil.UserID()
	a := pendingAffiliate(t, owner)

	f := newRegistryFixture(10, "X")
	f.affiliates.On("FindByUserID", mock.Anything, owner).Return(a, nil)
	stranger := uuid.New()
	f.affiliates.On("FindByUserID", mock.Anything, stranger).Return(nil, affiliate.ErrNotFound)

	resp, err := f.svc.GetMy(ctx, identity.NewPrincipal(owner, identity.RoleAffiliate))
	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", resp.ReferralCode)

	_, err = f.svc.GetMy(ctx, identity.NewPrincipal(stranger, identity.RoleUser))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
