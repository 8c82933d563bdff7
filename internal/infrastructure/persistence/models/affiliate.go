package models

import (
	"time"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AffiliateModel is the persistence model for the Affiliate aggregate.
type AffiliateModel struct {
	AggregateModel
	UserID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	Name              string           `gorm:"type:varchar(255);not null"`
	Email             string           `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone             string           `gorm:"type:varchar(20);not null"`
	Address           string           `gorm:"type:text"`
	BankName          string           `gorm:"type:varchar(255)"`
	BankAccountNumber string           `gorm:"type:varchar(255)"`
	BankAccountName   string           `gorm:"type:varchar(255)"`
	Motivation        string           `gorm:"type:text"`
	ReferralCode      string           `gorm:"type:varchar(20);not null;uniqueIndex"`
	Status            affiliate.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	RejectionReason   string           `gorm:"type:text"`
	CommissionRate    decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:10"`
	ApprovedAt        *time.Time
}

// TableName returns the table name for GORM
func (AffiliateModel) TableName() string {
	return "affiliates"
}

// ToDomain converts the persistence model to a domain Affiliate.
func (m *AffiliateModel) ToDomain() *affiliate.Affiliate {
	return &affiliate.Affiliate{
		BaseAggregateRoot: m.AggregateModel.root(),
		UserID:            m.UserID,
		Profile: affiliate.Profile{
			Name:              m.Name,
			Email:             m.Email,
			Phone:             m.Phone,
			Address:           m.Address,
			BankName:          m.BankName,
			BankAccountNumber: m.BankAccountNumber,
			BankAccountName:   m.BankAccountName,
			Motivation:        m.Motivation,
		},
		ReferralCode:    m.ReferralCode,
		Status:          m.Status,
		RejectionReason: m.RejectionReason,
		CommissionRate:  m.CommissionRate,
		ApprovedAt:      m.ApprovedAt,
	}
}

// FromDomain populates the persistence model from a domain Affiliate.
func (m *AffiliateModel) FromDomain(a *affiliate.Affiliate) {
	m.AggregateModel = aggregateColumns(a.BaseAggregateRoot)
	m.UserID = a.UserID
	m.Name = a.Name
	m.Email = a.Email
	m.Phone = a.Phone
	m.Address = a.Address
	m.BankName = a.BankName
	m.BankAccountNumber = a.BankAccountNumber
	m.BankAccountName = a.BankAccountName
	m.Motivation = a.Motivation
	m.ReferralCode = a.ReferralCode
	m.Status = a.Status
	m.RejectionReason = a.RejectionReason
	m.CommissionRate = a.CommissionRate
	m.ApprovedAt = a.ApprovedAt
}

// AffiliateModelFromDomain creates a new persistence model from a domain Affiliate.
func AffiliateModelFromDomain(a *affiliate.Affiliate) *AffiliateModel {
	m := &AffiliateModel{}
	m.FromDomain(a)
	return m
}
