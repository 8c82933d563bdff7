package models

import (
	"time"

	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferralModel is the persistence model for the Referral aggregate.
type ReferralModel struct {
	AggregateModel
	AffiliateID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_referrals_affiliate_status"`
	ProgramID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	StudentName      string          `gorm:"type:varchar(255);not null"`
	StudentEmail     string          `gorm:"type:varchar(255);not null"`
	StudentPhone     string          `gorm:"type:varchar(20);not null"`
	Notes            string          `gorm:"type:text"`
	ProgramPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CommissionRate   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status           referral.Status `gorm:"type:varchar(20);not null;default:'pending';index:idx_referrals_affiliate_status"`
	ConfirmedAt      *time.Time
	PaidAt           *time.Time
}

// TableName returns the table name for GORM
func (ReferralModel) TableName() string {
	return "referrals"
}

// ToDomain converts the persistence model to a domain Referral.
func (m *ReferralModel) ToDomain() *referral.Referral {
	return &referral.Referral{
		BaseAggregateRoot: m.AggregateModel.root(),
		AffiliateID:       m.AffiliateID,
		ProgramID:         m.ProgramID,
		Student: referral.Student{
			Name:  m.StudentName,
			Email: m.StudentEmail,
			Phone: m.StudentPhone,
			Notes: m.Notes,
		},
		ProgramPrice:     m.ProgramPrice,
		CommissionRate:   m.CommissionRate,
		CommissionAmount: m.CommissionAmount,
		Status:           m.Status,
		ConfirmedAt:      m.ConfirmedAt,
		PaidAt:           m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Referral.
func (m *ReferralModel) FromDomain(r *referral.Referral) {
	m.AggregateModel = aggregateColumns(r.BaseAggregateRoot)
	m.AffiliateID = r.AffiliateID
	m.ProgramID = r.ProgramID
	m.StudentName = r.Student.Name
	m.StudentEmail = r.Student.Email
	m.StudentPhone = r.Student.Phone
	m.Notes = r.Student.Notes
	m.ProgramPrice = r.ProgramPrice
	m.CommissionRate = r.CommissionRate
	m.CommissionAmount = r.CommissionAmount
	m.Status = r.Status
	m.ConfirmedAt = r.ConfirmedAt
	m.PaidAt = r.PaidAt
}

// ReferralModelFromDomain creates a new persistence model from a domain Referral.
func ReferralModelFromDomain(r *referral.Referral) *ReferralModel {
	m := &ReferralModel{}
	m.FromDomain(r)
	return m
}
