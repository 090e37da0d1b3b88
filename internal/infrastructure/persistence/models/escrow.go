package models

import (
	"time"

	"github.com/biasharahub/backend/internal/domain/escrow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EscrowModel is the persistence model for the Escrow aggregate
type EscrowModel struct {
	TenantAggregateModel
	BookingID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	PaymentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PayerPhone string          `gorm:"type:varchar(20)"`
	Amount     decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	Status     string          `gorm:"type:varchar(16);not null;index"`
	ResolvedAt *time.Time
}

// TableName returns the table name for GORM
func (EscrowModel) TableName() string {
	return "escrows"
}

// ToDomain converts the persistence model to a domain Escrow
func (m *EscrowModel) ToDomain() *escrow.Escrow {
	return &escrow.Escrow{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		BookingID:           m.BookingID,
		PaymentID:           m.PaymentID,
		PayerPhone:          m.PayerPhone,
		Amount:              m.Amount,
		Status:              escrow.Status(m.Status),
		ResolvedAt:          m.ResolvedAt,
	}
}

// EscrowModelFromDomain converts a domain Escrow to its persistence model
func EscrowModelFromDomain(e *escrow.Escrow) *EscrowModel {
	m := &EscrowModel{
		BookingID:  e.BookingID,
		PaymentID:  e.PaymentID,
		PayerPhone: e.PayerPhone,
		Amount:     e.Amount,
		Status:     e.Status.String(),
		ResolvedAt: e.ResolvedAt,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}
