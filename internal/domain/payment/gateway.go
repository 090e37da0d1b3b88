package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// ChargeRequest asks the gateway to collect money from a customer phone
type ChargeRequest struct {
	Phone       string
	Amount      decimal.Decimal
	AccountRef  string
	Description string
}

// ChargeResult carries the gateway correlation ID for an initiated charge.
// Stub is true when the gateway is disabled and the ID is locally generated;
// stub charges never receive a callback and are settled manually by staff.
type ChargeResult struct {
	ExternalID string
	Stub       bool
}

// TransferRequest asks the gateway to push money out to a phone (B2C)
type TransferRequest struct {
	Phone   string
	Amount  decimal.Decimal
	Remarks string
}

// TransferResult carries the gateway conversation IDs for an accepted transfer
type TransferResult struct {
	ConversationID           string
	OriginatorConversationID string
	Stub                     bool
}

// Gateway is the outbound port to the mobile-money provider. Implementations
// must degrade to stub IDs rather than fail when the provider is disabled.
type Gateway interface {
	// Charge initiates a customer-present charge (STK push)
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	// Transfer initiates a business-to-customer payout or refund
	Transfer(ctx context.Context, req TransferRequest) (TransferResult, error)
}
