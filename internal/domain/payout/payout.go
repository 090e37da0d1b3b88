// Package payout models withdrawals of tenant wallet balance to an external
// destination.
//
// A payout debits the ledger the moment it is created; a later transfer
// failure keeps the debit in place and flags the payout for manual
// reconciliation instead of quietly re-crediting funds.
package payout

import (
	"context"
	"time"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a payout
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// IsValid returns true for a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the payout admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Payout is the aggregate for a single withdrawal. Destination is stored as
// ciphertext; DestinationMasked carries the displayable form.
type Payout struct {
	shared.TenantAggregateRoot
	Amount            decimal.Decimal     `gorm:"type:decimal(19,2);not null"`
	Method            tenant.PayoutMethod `gorm:"type:varchar(32);not null"`
	Destination       string              `gorm:"not null"`
	DestinationMasked string
	Status            Status `gorm:"type:varchar(16);not null;index"`
	ConversationID    string `gorm:"index"`
	ResultDesc        string
	ResolvedAt        *time.Time
}

// NewPayout creates a PENDING payout request
func NewPayout(tenantID uuid.UUID, amount valueobject.Money, method tenant.PayoutMethod, encryptedDestination, maskedDestination string) (*Payout, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payout amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYOUT_METHOD", "Unknown payout method")
	}
	if encryptedDestination == "" {
		return nil, shared.NewDomainError("INVALID_DESTINATION", "Payout requires a destination")
	}
	return &Payout{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Amount:              amount.Amount(),
		Method:              method,
		Destination:         encryptedDestination,
		DestinationMasked:   maskedDestination,
		Status:              StatusPending,
	}, nil
}

// BeginProcessing records the gateway conversation ID and moves PENDING to
// PROCESSING
func (p *Payout) BeginProcessing(conversationID string) error {
	if p.Status != StatusPending {
		return shared.ErrInvalidState
	}
	p.Status = StatusProcessing
	p.ConversationID = conversationID
	p.Touch()
	return nil
}

// Complete resolves the payout after a successful transfer result. Only
// PENDING and PROCESSING payouts can complete; anything else is a stale
// callback and returns ErrInvalidState.
func (p *Payout) Complete(resultDesc string) error {
	if p.Status != StatusPending && p.Status != StatusProcessing {
		return shared.ErrInvalidState
	}
	now := time.Now()
	p.Status = StatusCompleted
	p.ResultDesc = resultDesc
	p.ResolvedAt = &now
	p.Touch()
	return nil
}

// Fail resolves the payout after a failed transfer. The ledger debit made at
// creation time stays in place for manual reconciliation.
func (p *Payout) Fail(resultDesc string) error {
	if p.Status != StatusPending && p.Status != StatusProcessing {
		return shared.ErrInvalidState
	}
	now := time.Now()
	p.Status = StatusFailed
	p.ResultDesc = resultDesc
	p.ResolvedAt = &now
	p.Touch()
	return nil
}

// Money returns the payout amount as a Money value
func (p *Payout) Money() valueobject.Money {
	return valueobject.NewMoneyKES(p.Amount)
}

// Repository is the persistence port for payouts. Payouts live in the shared
// partition keyed by tenant ID.
type Repository interface {
	Save(ctx context.Context, payout *Payout) error
	// SaveWithLock persists the payout guarded by its version
	SaveWithLock(ctx context.Context, payout *Payout) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payout, error)
	FindByConversationID(ctx context.Context, conversationID string) (*Payout, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Payout, error)
}
