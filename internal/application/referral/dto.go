package referral

import (
	"time"

	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CreateRequest is the body of POST /referrals
type CreateRequest struct {
	ProgramID    uuid.UUID `json:"program_id" binding:"required"`
	StudentName  string    `json:"student_name" binding:"required,max=255"`
	StudentEmail string    `json:"student_email" binding:"required,email,max=255"`
	StudentPhone string    `json:"student_phone" binding:"required,max=20"`
	Notes        string    `json:"notes"`
}

func (r CreateRequest) student() referral.Student {
	return referral.Student{
		Name:  r.StudentName,
		Email: r.StudentEmail,
		Phone: r.StudentPhone,
		Notes: r.Notes,
	}
}

// TransitionRequest is the admin body of PATCH /referrals/:id
type TransitionRequest struct {
	Action string `json:"action" binding:"required"`
}

// ListQuery filters referral listings
type ListQuery struct {
	Status   string `form:"status"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReferralResponse is the API view of a referral
type ReferralResponse struct {
	ID               uuid.UUID       `json:"id"`
	AffiliateID      uuid.UUID       `json:"affiliate_id"`
	ProgramID        uuid.UUID       `json:"program_id"`
	StudentName      string          `json:"student_name"`
	StudentEmail     string          `json:"student_email"`
	StudentPhone     string          `json:"student_phone"`
	Notes            string          `json:"notes"`
	ProgramPrice     decimal.Decimal `json:"program_price"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Status           string          `json:"status"`
	ConfirmedAt      *time.Time      `json:"confirmed_at"`
	PaidAt           *time.Time      `json:"paid_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TransitionResponse carries the updated referral and a user-facing message
type TransitionResponse struct {
	Referral ReferralResponse `json:"referral"`
	Message  string           `json:"message"`
}

func ToReferralResponse(r *referral.Referral) ReferralResponse {
	return ReferralResponse{
		ID:               r.ID,
		AffiliateID:      r.AffiliateID,
		ProgramID:        r.ProgramID,
		StudentName:      r.Student.Name,
		StudentEmail:     r.Student.Email,
		StudentPhone:     r.Student.Phone,
		Notes:            r.Student.Notes,
		ProgramPrice:     r.ProgramPrice,
		CommissionRate:   r.CommissionRate,
		CommissionAmount: r.CommissionAmount,
		Status:           string(r.Status),
		ConfirmedAt:      r.ConfirmedAt,
		PaidAt:           r.PaidAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func ToReferralResponses(items []*referral.Referral) []ReferralResponse {
	return lo.Map(items, func(r *referral.Referral, _ int) ReferralResponse {
		return ToReferralResponse(r)
	})
}
