package models

import (
	"time"

	"github.com/biasharahub/backend/internal/domain/payout"
	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/shopspring/decimal"
)

// PayoutModel is the persistence model for the Payout aggregate
type PayoutModel struct {
	TenantAggregateModel
	Amount            decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	Method            string          `gorm:"type:varchar(32);not null"`
	Destination       string          `gorm:"type:text;not null"`
	DestinationMasked string          `gorm:"type:varchar(50)"`
	Status            string          `gorm:"type:varchar(16);not null;index"`
	ConversationID    string          `gorm:"type:varchar(100);index"`
	ResultDesc        string          `gorm:"type:varchar(500)"`
	ResolvedAt        *time.Time
}

// TableName returns the table name for GORM
func (PayoutModel) TableName() string {
	return "payouts"
}

// ToDomain converts the persistence model to a domain Payout
func (m *PayoutModel) ToDomain() *payout.Payout {
	return &payout.Payout{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Amount:              m.Amount,
		Method:              tenant.PayoutMethod(m.Method),
		Destination:         m.Destination,
		DestinationMasked:   m.DestinationMasked,
		Status:              payout.Status(m.Status),
		ConversationID:      m.ConversationID,
		ResultDesc:          m.ResultDesc,
		ResolvedAt:          m.ResolvedAt,
	}
}

// PayoutModelFromDomain converts a domain Payout to its persistence model
func PayoutModelFromDomain(p *payout.Payout) *PayoutModel {
	m := &PayoutModel{
		Amount:            p.Amount,
		Method:            p.Method.String(),
		Destination:       p.Destination,
		DestinationMasked: p.DestinationMasked,
		Status:            p.Status.String(),
		ConversationID:    p.ConversationID,
		ResultDesc:        p.ResultDesc,
		ResolvedAt:        p.ResolvedAt,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}
