package referral

import (
	"fmt"
	"strings"
	"time"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the commission lifecycle state of a referral
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPaid:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Student is the referred student's contact information
type Student struct {
	Name  string `validate:"required,max=255" label:"Nama siswa"`
	Email string `validate:"required,email,max=255" label:"Email siswa"`
	Phone string `validate:"required,max=20" label:"Nomor telepon siswa"`
	Notes string `label:"Catatan"`
}

func (s Student) normalized() Student {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Phone = strings.TrimSpace(s.Phone)
	s.Notes = strings.TrimSpace(s.Notes)
	return s
}

// Validate checks the student fields after trimming
func (s Student) Validate() error {
	return shared.ValidateStruct(s.normalized())
}

// Referral records one student registered by an affiliate for a program.
// Price, rate and commission are frozen at creation.
type Referral struct {
	shared.BaseAggregateRoot
	AffiliateID      uuid.UUID
	ProgramID        uuid.UUID
	Student          Student
	ProgramPrice     decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
	Status           Status
	ConfirmedAt      *time.Time
	PaidAt           *time.Time
}

// NewReferral snapshots the program price and the affiliate's rate.
// Only approved affiliates are eligible.
func NewReferral(aff *affiliate.Affiliate, program *catalog.Program, student Student) (*Referral, error) {
	if aff == nil || !aff.IsApproved() {
		return nil, ErrNotEligible
	}
	if program == nil {
		return nil, catalog.ErrNotFound
	}
	student = student.normalized()
	if err := shared.ValidateStruct(student); err != nil {
		return nil, err
	}

	price, err := valueobject.NewMoney(program.Price)
	if err != nil {
		return nil, shared.NewValidationError("Harga program tidak valid.")
	}
	rate := aff.Rate()

	r := &Referral{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AffiliateID:       aff.ID,
		ProgramID:         program.ID,
		Student:           student,
		ProgramPrice:      price.Amount(),
		CommissionRate:    rate.Decimal(),
		CommissionAmount:  CommissionFor(price, rate).Amount(),
		Status:            StatusPending,
	}
	r.AddDomainEvent(NewCreatedEvent(r))
	return r, nil
}

// CommissionFor computes price × rate / 100 rounded to two places
func CommissionFor(price valueobject.Money, rate valueobject.Percentage) valueobject.Money {
	return price.ApplyRate(rate)
}

// Apply runs cmd through the transition table. Out of order commands
// fail with an INVALID_STATE error and leave the referral unchanged.
func (r *Referral) Apply(cmd Command) error {
	next, ok := nextStatus(r.Status, cmd)
	if !ok {
		if cmd.kind == commandUnknown {
			return shared.ErrInvalidAction
		}
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Referral berstatus %s tidak dapat di-%s.", r.Status, cmd.Action()))
	}

	now := time.Now()
	r.Status = next
	switch next {
	case StatusConfirmed:
		r.ConfirmedAt = &now
		r.AddDomainEvent(NewConfirmedEvent(r))
	case StatusPaid:
		r.PaidAt = &now
		r.AddDomainEvent(NewPaidEvent(r))
	}
	r.Touch(now)
	return nil
}

// Confirm moves a pending referral to confirmed
func (r *Referral) Confirm() error {
	return r.Apply(Confirm())
}

// MarkPaid moves a confirmed referral to paid
func (r *Referral) MarkPaid() error {
	return r.Apply(MarkPaid())
}

// BelongsTo reports whether the referral was created by the affiliate
func (r *Referral) BelongsTo(affiliateID uuid.UUID) bool {
	return r.AffiliateID == affiliateID
}

// Commission returns the frozen commission as money
func (r *Referral) Commission() valueobject.Money {
	return valueobject.MustNewMoney(r.CommissionAmount)
}
