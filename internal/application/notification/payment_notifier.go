// Package notification reacts to settlement events with customer-facing
// notifications. Delivery is fire-and-forget: a lost notification never
// affects the money movement that triggered it.
package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/biasharahub/backend/internal/domain/payment"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
)

// Sender delivers a text message to a customer phone
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// PaymentNotifier turns payment lifecycle events into notifications. With no
// Sender configured it degrades to structured log entries, which doubles as
// the settlement audit trail in environments without an SMS provider.
type PaymentNotifier struct {
	sender Sender
}

// NewPaymentNotifier creates a notifier without a delivery channel
func NewPaymentNotifier() *PaymentNotifier {
	return &PaymentNotifier{}
}

// NewPaymentNotifierWithSender creates a notifier that delivers via the sender
func NewPaymentNotifierWithSender(sender Sender) *PaymentNotifier {
	return &PaymentNotifier{sender: sender}
}

// EventTypes returns the events this handler consumes
func (n *PaymentNotifier) EventTypes() []string {
	return []string{payment.EventTypePaymentCompleted, payment.EventTypePaymentFailed}
}

// Handle processes a payment lifecycle event
func (n *PaymentNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *payment.PaymentCompletedEvent:
		logger.L(ctx).Info("payment settled",
			zap.String("payment_id", evt.AggregateID().String()),
			zap.String("booking_id", evt.BookingID),
			zap.String("amount", evt.Amount.StringFixed(2)),
			zap.String("receipt", evt.ReceiptNumber),
		)
		if n.sender != nil && evt.PayerPhone != "" {
			return n.sender.Send(ctx, evt.PayerPhone,
				"Payment of KES "+evt.Amount.StringFixed(2)+" received. Receipt "+evt.ReceiptNumber)
		}
	case *payment.PaymentFailedEvent:
		logger.L(ctx).Info("payment failed",
			zap.String("payment_id", evt.AggregateID().String()),
			zap.String("booking_id", evt.BookingID),
			zap.String("reason", evt.Reason),
		)
	}
	return nil
}
