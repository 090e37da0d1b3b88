// Package ledger defines the append-only wallet ledger for tenant funds.
//
// Entries are immutable: nothing updates or deletes them, and a tenant's
// balance is always derived as sum(credits) - sum(debits) at read time.
// Commission entries are informational; the platform's cut is already netted
// out of the paired credit.
package ledger

import (
	"context"
	"time"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry
type EntryType string

const (
	EntryTypeCredit     EntryType = "CREDIT"     // money into the tenant wallet
	EntryTypeDebit      EntryType = "DEBIT"      // money out of the tenant wallet
	EntryTypeCommission EntryType = "COMMISSION" // platform fee, informational
)

// IsValid returns true for a known entry type
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeCredit, EntryTypeDebit, EntryTypeCommission:
		return true
	}
	return false
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// Entry is a single immutable ledger record for a tenant
type Entry struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Type             EntryType
	Amount           decimal.Decimal
	CommissionAmount *decimal.Decimal
	ReferenceID      string
	Description      string
	CreatedAt        time.Time
}

// NewEntry creates a validated ledger entry
func NewEntry(tenantID uuid.UUID, entryType EntryType, amount valueobject.Money, referenceID, description string) (*Entry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Unknown ledger entry type")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Ledger entry amount must be positive")
	}
	if referenceID == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Ledger entry requires a reference ID")
	}
	return &Entry{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Type:        entryType,
		Amount:      amount.Amount(),
		ReferenceID: referenceID,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// WithCommission attaches the commission amount associated with this entry
// (used on the CREDIT entry for reporting)
func (e *Entry) WithCommission(commission valueobject.Money) *Entry {
	c := commission.Amount()
	e.CommissionAmount = &c
	return e
}

// Repository is the persistence port for ledger entries. The ledger lives in
// the shared partition, keyed by tenant ID, so payouts and balances survive
// schema-local data churn.
type Repository interface {
	// Create appends a single immutable entry
	Create(ctx context.Context, entry *Entry) error
	// SumBalance computes sum(credits) - sum(debits) for the tenant at read
	// time; commission entries are excluded from the aggregate
	SumBalance(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
	// FindByTenant lists entries for a tenant, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Entry, error)
	// FindByReference lists the entries recorded under a reference ID
	FindByReference(ctx context.Context, tenantID uuid.UUID, referenceID string) ([]*Entry, error)
}
