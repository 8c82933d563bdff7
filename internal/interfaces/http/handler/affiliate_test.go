package handler

import (
	"net/http"
	"testing"

	affiliateapp "github.com/englishbooster/affiliate/internal/application/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/englishbooster/affiliate/internal/interfaces/http/dto"
	"github.com/englishbooster/affiliate/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func applyBody() affiliateapp.ApplyRequest {
	return affiliateapp.ApplyRequest{
		Name:       "Budi Santoso",
		Email:      "budi@example.com",
		Phone:      "081234567890",
		Motivation: "Saya alumni Booster dan ingin mengajak teman.",
	}
}

func TestAffiliateHandler_Apply(t *testing.T) {
	t.Run("submits a pending application", func(t *testing.T) {
		f := newAPIFixture()
		user, err := identity.NewUser("Budi Santoso", "budi@example.com", "rahasia123")
		require.NoError(t, err)
		user.ID = plainUser.id
		user.ClearDomainEvents()

		f.affiliates.On("ExistsByUserID", mock.Anything, plainUser.id).Return(false, nil)
		f.affiliates.On("ExistsByEmail", mock.Anything, "budi@example.com").Return(false, nil)
		f.affiliates.On("ExistsByReferralCode", mock.Anything, "BOOST123").Return(false, nil)
		f.affiliates.On("Create", mock.Anything, mock.AnythingOfType("*affiliate.Affiliate")).Return(nil)
		f.users.On("FindByID", mock.Anything, plainUser.id).Return(user, nil)
		f.users.On("UpdateRole", mock.Anything, plainUser.id, identity.RoleAffiliate).Return(nil)

		w := f.do(t, plainUser, http.MethodPost, "/affiliate/apply", applyBody())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var body AffiliateMessageResponse
		decodeData(t, w, &body)
		assert.Equal(t, MessageApplicationSubmitted, body.Message)
		assert.Equal(t, "pending", body.Affiliate.Status)
		assert.Equal(t, "BOOST123", body.Affiliate.ReferralCode)
		assert.True(t, body.Affiliate.CommissionRate.Equal(decimal.NewFromInt(10)))
		assert.Nil(t, body.Affiliate.ApprovedAt)
		f.users.AssertExpectations(t)
	})

	t.Run("second application conflicts", func(t *testing.T) {
		f := newAPIFixture()
		f.affiliates.On("ExistsByUserID", mock.Anything, plainUser.id).Return(true, nil)

		w := f.do(t, plainUser, http.MethodPost, "/affiliate/apply", applyBody())
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, errorCode(t, w))
		f.affiliates.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid form lists every field", func(t *testing.T) {
		f := newAPIFixture()
		body := applyBody()
		body.Email = "bukan-email"
		body.Phone = ""

		w := f.do(t, plainUser, http.MethodPost, "/affiliate/apply", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeData(t, w, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"email", "phone"}, fields)
	})

	t.Run("requires login", func(t *testing.T) {
		f := newAPIFixture()
		w := f.do(t, anonymous, http.MethodPost, "/affiliate/apply", applyBody())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))
	})
}

func TestAffiliateHandler_Decide(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		f := newAPIFixture()
		aff := pendingAffiliate(t, affiliateUser.id)
		f.affiliates.On("FindByID", mock.Anything, aff.ID).Return(aff, nil)
		f.affiliates.On("Update", mock.Anything, aff).Return(nil)

		w := f.do(t, adminCaller, http.MethodPatch, "/affiliates/"+aff.ID.String(),
			affiliateapp.DecideRequest{Action: "approve"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body AffiliateMessageResponse
		decodeData(t, w, &body)
		assert.Equal(t, MessageAffiliateApproved, body.Message)
		assert.Equal(t, "approved", body.Affiliate.Status)
		assert.NotNil(t, body.Affiliate.ApprovedAt)
		assert.Equal(t, []string{affiliate.EventTypeApproved}, f.events.EventTypes())
	})

	t.Run("reject with reason", func(t *testing.T) {
		f := newAPIFixture()
		aff := pendingAffiliate(t, affiliateUser.id)
		f.affiliates.On("FindByID", mock.Anything, aff.ID).Return(aff, nil)
		f.affiliates.On("Update", mock.Anything, aff).Return(nil)

		w := f.do(t, adminCaller, http.MethodPatch, "/affiliates/"+aff.ID.String(),
			affiliateapp.DecideRequest{Action: "reject", RejectionReason: "Nomor rekening tidak valid"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body AffiliateMessageResponse
		decodeData(t, w, &body)
		assert.Equal(t, MessageAffiliateRejected, body.Message)
		assert.Equal(t, "rejected", body.Affiliate.Status)
		assert.Equal(t, "Nomor rekening tidak valid", body.Affiliate.RejectionReason)
	})

	tests := []struct {
		name   string
		who    caller
		req    affiliateapp.DecideRequest
		status int
		code   string
	}{
		{"reject without reason", adminCaller, affiliateapp.DecideRequest{Action: "reject"}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"unknown action", adminCaller, affiliateapp.DecideRequest{Action: "suspend"}, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"not an admin", affiliateUser, affiliateapp.DecideRequest{Action: "approve"}, http.StatusForbidden, dto.ErrCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture()
			aff := pendingAffiliate(t, affiliateUser.id)
			f.affiliates.On("FindByID", mock.Anything, aff.ID).Return(aff, nil).Maybe()

			w := f.do(t, tt.who, http.MethodPatch, "/affiliates/"+aff.ID.String(), tt.req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
			f.affiliates.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}

	t.Run("malformed id", func(t *testing.T) {
		f := newAPIFixture()
		w := f.do(t, adminCaller, http.MethodPatch, "/affiliates/42", affiliateapp.DecideRequest{Action: "approve"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, errorCode(t, w))
	})

	t.Run("unknown affiliate", func(t *testing.T) {
		f := newAPIFixture()
		id := testutil.NewTestUUID("missing")
		f.affiliates.On("FindByID", mock.Anything, id).Return(nil, affiliate.ErrNotFound)

		w := f.do(t, adminCaller, http.MethodPatch, "/affiliates/"+id.String(), affiliateapp.DecideRequest{Action: "approve"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, errorCode(t, w))
	})
}

func TestAffiliateHandler_List(t *testing.T) {
	f := newAPIFixture()
	items := []*affiliate.Affiliate{pendingAffiliate(t, testutil.NewTestUUID("a")), pendingAffiliate(t, testutil.NewTestUUID("b"))}
	f.affiliates.On("FindAll", mock.Anything, mock.MatchedBy(func(filter affiliate.Filter) bool {
		return filter.Status != nil && *filter.Status == affiliate.StatusPending &&
			filter.Page == 2 && filter.PageSize == 2 && filter.Search == "budi"
	})).Return(items, int64(5), nil)

	w := f.do(t, adminCaller, http.MethodGet, "/affiliates?status=pending&page=2&page_size=2&search=budi", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got []affiliateapp.AffiliateResponse
	resp := decodeData(t, w, &got)
	assert.Len(t, got, 2)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(5), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	t.Run("admin only", func(t *testing.T) {
		w := f.do(t, affiliateUser, http.MethodGet, "/affiliates", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("page size is capped", func(t *testing.T) {
		w := f.do(t, adminCaller, http.MethodGet, "/affiliates?page_size=500", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAffiliateHandler_Get(t *testing.T) {
	aff := approvedAffiliate(t, affiliateUser.id)
	totals := []referral.StatusTotal{
		{Status: referral.StatusPending, Count: 1, Amount: decimal.NewFromInt(50000)},
		{Status: referral.StatusPaid, Count: 1, Amount: decimal.NewFromInt(100000)},
	}

	t.Run("owner sees own stats", func(t *testing.T) {
		f := newAPIFixture()
		f.affiliates.On("FindByID", mock.Anything, aff.ID).Return(aff, nil)
		f.referrals.On("TotalsByStatus", mock.Anything, aff.ID).Return(totals, nil)

		w := f.do(t, affiliateUser, http.MethodGet, "/affiliates/"+aff.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got affiliateapp.AffiliateDetailResponse
		decodeData(t, w, &got)
		assert.Equal(t, int64(2), got.Stats.TotalReferrals)
		assert.True(t, got.Stats.PendingCommission.Equal(decimal.NewFromInt(50000)))
		assert.True(t, got.Stats.TotalCommission.Equal(decimal.NewFromInt(100000)))
	})

	t.Run("another affiliate is forbidden", func(t *testing.T) {
		f := newAPIFixture()
		f.affiliates.On("FindByID", mock.Anything, aff.ID).Return(aff, nil)

		stranger := caller{testutil.NewTestUUID("stranger"), identity.RoleAffiliate}
		w := f.do(t, stranger, http.MethodGet, "/affiliates/"+aff.ID.String(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))
	})
}

func TestAffiliateHandler_GetMy(t *testing.T) {
	f := newAPIFixture()
	f.affiliates.On("FindByUserID", mock.Anything, plainUser.id).Return(nil, affiliate.ErrNotFound)

	w := f.do(t, plainUser, http.MethodGet, "/affiliate/me", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Afiliasi tidak ditemukan", decodeData(t, w, nil).Error.Message)
}
