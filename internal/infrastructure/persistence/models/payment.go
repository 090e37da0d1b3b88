package models

import (
	"github.com/biasharahub/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment aggregate
type PaymentModel struct {
	TenantAggregateModel
	BookingID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PayerPhone  string          `gorm:"type:varchar(20)"`
	Amount      decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	Method      string          `gorm:"type:varchar(16);not null"`
	Status      string          `gorm:"type:varchar(16);not null;index"`
	ExternalID  string          `gorm:"type:varchar(100);index"`
	FailureDesc string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		BookingID:           m.BookingID,
		PayerPhone:          m.PayerPhone,
		Amount:              m.Amount,
		Method:              payment.Method(m.Method),
		Status:              payment.Status(m.Status),
		ExternalID:          m.ExternalID,
		FailureDesc:         m.FailureDesc,
	}
}

// PaymentModelFromDomain converts a domain Payment to its persistence model
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{
		BookingID:   p.BookingID,
		PayerPhone:  p.PayerPhone,
		Amount:      p.Amount,
		Method:      p.Method.String(),
		Status:      p.Status.String(),
		ExternalID:  p.ExternalID,
		FailureDesc: p.FailureDesc,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}
