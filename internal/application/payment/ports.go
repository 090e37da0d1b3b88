package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingInfo carries the booking facts needed to settle its payment
type BookingInfo struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	RemoteService bool
}

// BookingDirectory resolves bookings for settlement decisions. Remote-service
// bookings settle into escrow; in-person bookings credit the wallet
// immediately.
type BookingDirectory interface {
	Lookup(ctx context.Context, bookingID uuid.UUID) (BookingInfo, error)
}

// CallbackResult is a gateway-agnostic settlement outcome applied to a
// pending payment. Amount is the sum the provider reports it collected;
// zero means the callback did not carry one.
type CallbackResult struct {
	ExternalID    string
	Success       bool
	ReceiptNumber string
	ResultDesc    string
	Amount        decimal.Decimal
}
