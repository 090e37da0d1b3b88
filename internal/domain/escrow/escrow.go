// Package escrow holds settled funds for remote services until the buyer
// confirms delivery or disputes the outcome.
package escrow

import (
	"context"
	"time"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an escrow hold
type Status string

const (
	StatusHeld     Status = "HELD"
	StatusReleased Status = "RELEASED"
	StatusRefunded Status = "REFUNDED"
)

// IsValid returns true for a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusHeld, StatusReleased, StatusRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether the hold has been resolved
func (s Status) IsTerminal() bool {
	return s == StatusReleased || s == StatusRefunded
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Escrow is the aggregate for a single held amount. An escrow resolves at
// most once: the first of release or refund wins and the later one is a
// no-op. Resolution order is enforced with version-guarded saves, so racing
// writers cannot both transition the same hold.
type Escrow struct {
	shared.TenantAggregateRoot
	BookingID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PaymentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PayerPhone string
	Amount     decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	Status     Status          `gorm:"type:varchar(16);not null;index"`
	ResolvedAt *time.Time
}

// NewEscrow creates a HELD escrow for a settled remote-service payment
func NewEscrow(tenantID, bookingID, paymentID uuid.UUID, payerPhone string, amount valueobject.Money) (*Escrow, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Escrow amount must be positive")
	}
	return &Escrow{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BookingID:           bookingID,
		PaymentID:           paymentID,
		PayerPhone:          payerPhone,
		Amount:              amount.Amount(),
		Status:              StatusHeld,
	}, nil
}

// Release transitions HELD to RELEASED. It returns false without error when
// the escrow is already resolved, so repeated confirmations are harmless.
func (e *Escrow) Release() bool {
	if e.Status != StatusHeld {
		return false
	}
	now := time.Now()
	e.Status = StatusReleased
	e.ResolvedAt = &now
	e.Touch()
	return true
}

// Refund transitions HELD to REFUNDED with the same no-op contract as Release
func (e *Escrow) Refund() bool {
	if e.Status != StatusHeld {
		return false
	}
	now := time.Now()
	e.Status = StatusRefunded
	e.ResolvedAt = &now
	e.Touch()
	return true
}

// Money returns the held amount as a Money value
func (e *Escrow) Money() valueobject.Money {
	return valueobject.NewMoneyKES(e.Amount)
}

// Repository is the persistence port for escrows
type Repository interface {
	Save(ctx context.Context, escrow *Escrow) error
	// SaveWithLock persists the escrow guarded by its version so that only
	// one of two racing resolutions lands
	SaveWithLock(ctx context.Context, escrow *Escrow) error
	FindByID(ctx context.Context, id uuid.UUID) (*Escrow, error)
	FindByBooking(ctx context.Context, bookingID uuid.UUID) (*Escrow, error)
}
