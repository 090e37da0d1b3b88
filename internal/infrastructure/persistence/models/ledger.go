package models

import (
	"time"

	"github.com/biasharahub/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryModel is the persistence model for a ledger entry. Entries are
// insert-only; Save/Updates are never issued against this table.
type LedgerEntryModel struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key"`
	TenantID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_ledger_tenant_created,priority:1"`
	Type             string           `gorm:"type:varchar(16);not null;index"`
	Amount           decimal.Decimal  `gorm:"type:decimal(19,2);not null"`
	CommissionAmount *decimal.Decimal `gorm:"type:decimal(19,2)"`
	ReferenceID      string           `gorm:"type:varchar(100);not null;index"`
	Description      string           `gorm:"type:varchar(500)"`
	CreatedAt        time.Time        `gorm:"not null;index:idx_ledger_tenant_created,priority:2"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain ledger entry
func (m *LedgerEntryModel) ToDomain() *ledger.Entry {
	return &ledger.Entry{
		ID:               m.ID,
		TenantID:         m.TenantID,
		Type:             ledger.EntryType(m.Type),
		Amount:           m.Amount,
		CommissionAmount: m.CommissionAmount,
		ReferenceID:      m.ReferenceID,
		Description:      m.Description,
		CreatedAt:        m.CreatedAt,
	}
}

// LedgerEntryModelFromDomain converts a domain entry to its persistence model
func LedgerEntryModelFromDomain(e *ledger.Entry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:               e.ID,
		TenantID:         e.TenantID,
		Type:             e.Type.String(),
		Amount:           e.Amount,
		CommissionAmount: e.CommissionAmount,
		ReferenceID:      e.ReferenceID,
		Description:      e.Description,
		CreatedAt:        e.CreatedAt,
	}
}
