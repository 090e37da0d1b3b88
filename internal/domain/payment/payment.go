// Package payment models customer-facing charges and their lifecycle.
package payment

import (
	"context"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a payment
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// IsValid returns true for a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Method identifies how the customer pays
type Method string

const (
	MethodMpesa Method = "MPESA"
	MethodCash  Method = "CASH"
)

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}

// Payment is the aggregate root for a single customer charge. External IDs
// start as the gateway's checkout request ID and are overwritten with the
// settlement receipt number once the charge completes.
type Payment struct {
	shared.TenantAggregateRoot
	BookingID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PayerPhone  string
	Amount      decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	Method      Method          `gorm:"type:varchar(16);not null"`
	Status      Status          `gorm:"type:varchar(16);not null;index"`
	ExternalID  string          `gorm:"index"`
	FailureDesc string
}

// NewPayment creates a pending payment for a booking
func NewPayment(tenantID, bookingID uuid.UUID, payerPhone string, amount valueobject.Money, method Method) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	if bookingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOOKING", "Payment requires a booking")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BookingID:           bookingID,
		PayerPhone:          payerPhone,
		Amount:              amount.Amount(),
		Method:              method,
		Status:              StatusPending,
	}
	return p, nil
}

// AttachExternalID records the gateway correlation ID issued at initiation
func (p *Payment) AttachExternalID(externalID string) {
	p.ExternalID = externalID
}

// MarkCompleted transitions a pending payment to completed and overwrites the
// external ID with the settlement receipt. Completing a non-pending payment
// returns ErrInvalidState.
func (p *Payment) MarkCompleted(receiptNumber string) error {
	if p.Status != StatusPending {
		return shared.ErrInvalidState
	}
	p.Status = StatusCompleted
	p.Touch()
	if receiptNumber != "" {
		p.ExternalID = receiptNumber
	}
	p.AddDomainEvent(NewPaymentCompletedEvent(p))
	return nil
}

// MarkFailed transitions a pending payment to failed with the gateway's
// failure description
func (p *Payment) MarkFailed(desc string) error {
	if p.Status != StatusPending {
		return shared.ErrInvalidState
	}
	p.Status = StatusFailed
	p.FailureDesc = desc
	p.Touch()
	p.AddDomainEvent(NewPaymentFailedEvent(p))
	return nil
}

// Money returns the charged amount as a Money value
func (p *Payment) Money() valueobject.Money {
	return valueobject.NewMoneyKES(p.Amount)
}

// Repository is the persistence port for payments
type Repository interface {
	Save(ctx context.Context, payment *Payment) error
	// SaveWithLock persists the payment guarded by its version; concurrent
	// writers lose with shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByExternalID(ctx context.Context, externalID string) (*Payment, error)
	FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Payment, error)
}
