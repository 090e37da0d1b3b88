package payment

import (
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types emitted by the payment aggregate
const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypePaymentFailed    = "payment.failed"
)

// PaymentCompletedEvent is published exactly once when a payment settles
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	BookingID     string          `json:"booking_id"`
	PayerPhone    string          `json:"payer_phone"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber string          `json:"receipt_number"`
	Method        string          `json:"method"`
}

// NewPaymentCompletedEvent builds the completion event for a settled payment
func NewPaymentCompletedEvent(p *Payment) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCompleted, "Payment", p.ID, p.TenantID),
		BookingID:       p.BookingID.String(),
		PayerPhone:      p.PayerPhone,
		Amount:          p.Amount,
		ReceiptNumber:   p.ExternalID,
		Method:          p.Method.String(),
	}
}

// PaymentFailedEvent is published when the gateway reports a failed charge
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason"`
}

// NewPaymentFailedEvent builds the failure event for a rejected charge
func NewPaymentFailedEvent(p *Payment) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, "Payment", p.ID, p.TenantID),
		BookingID:       p.BookingID.String(),
		Reason:          p.FailureDesc,
	}
}
