package affiliate

import (
	"time"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ApplyRequest is the application form submitted by a logged-in user
type ApplyRequest struct {
	Name              string `json:"name" binding:"required,max=255"`
	Email             string `json:"email" binding:"required,email,max=255"`
	Phone             string `json:"phone" binding:"required,max=20"`
	Address           string `json:"address" binding:"max=500"`
	BankName          string `json:"bank_name" binding:"max=255"`
	BankAccountNumber string `json:"bank_account_number" binding:"max=255"`
	BankAccountName   string `json:"bank_account_name" binding:"max=255"`
	Motivation        string `json:"motivation" binding:"max=2000"`
}

func (r ApplyRequest) profile() affiliate.Profile {
	return affiliate.Profile{
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		Address:           r.Address,
		BankName:          r.BankName,
		BankAccountNumber: r.BankAccountNumber,
		BankAccountName:   r.BankAccountName,
		Motivation:        r.Motivation,
	}
}

// DecideRequest is the admin decision body of PATCH /affiliates/:id
type DecideRequest struct {
	Action          string `json:"action" binding:"required"`
	RejectionReason string `json:"rejection_reason"`
}

// ListQuery filters the admin affiliate listing
type ListQuery struct {
	Status   string `form:"status"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AffiliateResponse is the API view of an affiliate
type AffiliateResponse struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	Address           string          `json:"address"`
	BankName          string          `json:"bank_name"`
	BankAccountNumber string          `json:"bank_account_number"`
	BankAccountName   string          `json:"bank_account_name"`
	Motivation        string          `json:"motivation"`
	ReferralCode      string          `json:"referral_code"`
	Status            string          `json:"status"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	CommissionRate    decimal.Decimal `json:"commission_rate"`
	ApprovedAt        *time.Time      `json:"approved_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AffiliateDetailResponse adds referral statistics to an affiliate
type AffiliateDetailResponse struct {
	AffiliateResponse
	Stats referral.Stats `json:"stats"`
}

func ToAffiliateResponse(a *affiliate.Affiliate) AffiliateResponse {
	return AffiliateResponse{
		ID:                a.ID,
		UserID:            a.UserID,
		Name:              a.Name,
		Email:             a.Email,
		Phone:             a.Phone,
		Address:           a.Address,
		BankName:          a.BankName,
		BankAccountNumber: a.BankAccountNumber,
		BankAccountName:   a.BankAccountName,
		Motivation:        a.Motivation,
		ReferralCode:      a.ReferralCode,
		Status:            string(a.Status),
		RejectionReason:   a.RejectionReason,
		CommissionRate:    a.CommissionRate,
		ApprovedAt:        a.ApprovedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func ToAffiliateResponses(items []*affiliate.Affiliate) []AffiliateResponse {
	return lo.Map(items, func(a *affiliate.Affiliate, _ int) AffiliateResponse {
		return ToAffiliateResponse(a)
	})
}
