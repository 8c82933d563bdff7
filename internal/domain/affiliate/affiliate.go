package affiliate

import (
	"strings"
	"time"

	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the review status of an affiliate application
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// DefaultCommissionRate is applied when no rate is configured (10.00%)
var DefaultCommissionRate = decimal.NewFromInt(10)

// MaxRejectionReasonLength bounds the reason supplied on rejection
const MaxRejectionReasonLength = 1000

// Profile is the applicant supplied part of an affiliate
type Profile struct {
	Name              string `validate:"required,max=255" label:"Nama"`
	Email             string `validate:"required,email,max=255" label:"Email"`
	Phone             string `validate:"required,max=20" label:"Nomor telepon"`
	Address           string `validate:"max=500" label:"Alamat"`
	BankName          string `validate:"max=255" label:"Nama bank"`
	BankAccountNumber string `validate:"max=255" label:"Nomor rekening"`
	BankAccountName   string `validate:"max=255" label:"Nama pemilik rekening"`
	Motivation        string `validate:"max=2000" label:"Motivasi"`
}

func (p Profile) normalized() Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	p.BankName = strings.TrimSpace(p.BankName)
	p.BankAccountNumber = strings.TrimSpace(p.BankAccountNumber)
	p.BankAccountName = strings.TrimSpace(p.BankAccountName)
	p.Motivation = strings.TrimSpace(p.Motivation)
	return p
}

// Affiliate is a user who may refer students once approved.
// It is the aggregate root of the registry.
type Affiliate struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	Profile
	ReferralCode    string
	Status          Status
	RejectionReason string
	CommissionRate  decimal.Decimal
	ApprovedAt      *time.Time
}

// NewAffiliate creates a pending application for userID with the given code
func NewAffiliate(userID uuid.UUID, profile Profile, referralCode string, commissionRate decimal.Decimal) (*Affiliate, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("User wajib diisi.")
	}
	profile = profile.normalized()
	if err := shared.ValidateStruct(profile); err != nil {
		return nil, err
	}
	if err := ValidateReferralCode(referralCode); err != nil {
		return nil, err
	}
	rate, err := valueobject.NewPercentage(commissionRate)
	if err != nil {
		return nil, shared.NewValidationError("Komisi harus antara 0 dan 100 persen.")
	}

	a := &Affiliate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Profile:           profile,
		ReferralCode:      referralCode,
		Status:            StatusPending,
		CommissionRate:    rate.Decimal(),
	}
	a.AddDomainEvent(NewAppliedEvent(a))
	return a, nil
}

// AssignReferralCode replaces the code of an unsaved application,
// used when the store reports a code collision.
func (a *Affiliate) AssignReferralCode(code string) error {
	if err := ValidateReferralCode(code); err != nil {
		return err
	}
	a.ReferralCode = code
	for _, e := range a.GetDomainEvents() {
		if applied, ok := e.(*AppliedEvent); ok {
			applied.ReferralCode = code
		}
	}
	return nil
}

// Decide applies an admin decision. Decisions may be repeated and may flip
// between approved and rejected; nothing returns an affiliate to pending.
func (a *Affiliate) Decide(d Decision) error {
	switch d.kind {
	case decisionApprove:
		a.approve()
	case decisionReject:
		if err := validateRejectionReason(d.reason); err != nil {
			return err
		}
		a.reject(strings.TrimSpace(d.reason))
	default:
		return shared.ErrInvalidAction
	}
	a.Touch(time.Now())
	return nil
}

func (a *Affiliate) approve() {
	// re-approval keeps the original approval time
	if a.Status != StatusApproved || a.ApprovedAt == nil {
		now := time.Now()
		a.ApprovedAt = &now
	}
	a.Status = StatusApproved
	a.RejectionReason = ""
	a.AddDomainEvent(NewApprovedEvent(a))
}

func (a *Affiliate) reject(reason string) {
	a.Status = StatusRejected
	a.RejectionReason = reason
	a.ApprovedAt = nil
	a.AddDomainEvent(NewRejectedEvent(a))
}

// IsApproved reports whether the affiliate may create referrals
func (a *Affiliate) IsApproved() bool {
	return a.Status == StatusApproved
}

// Rate returns the commission rate as a percentage value object
func (a *Affiliate) Rate() valueobject.Percentage {
	return valueobject.MustNewPercentage(a.CommissionRate)
}

// ReferralLink builds the public registration link carrying the code
func (a *Affiliate) ReferralLink(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/register?ref=" + a.ReferralCode
}

func validateRejectionReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("Alasan penolakan wajib diisi.")
	}
	if len([]rune(reason)) > MaxRejectionReasonLength {
		return shared.NewValidationError("Alasan penolakan maksimal 1000 karakter.")
	}
	return nil
}
