// Package payment implements the payment lifecycle: charge initiation,
// asynchronous gateway settlement and the manual staff confirmation path.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/biasharahub/backend/internal/application/wallet"
	"github.com/biasharahub/backend/internal/domain/escrow"
	domainpayment "github.com/biasharahub/backend/internal/domain/payment"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
)

// Service orchestrates the payment lifecycle
type Service struct {
	payments domainpayment.Repository
	escrows  escrow.Repository
	wallet   *wallet.Service
	gateway  domainpayment.Gateway
	bookings BookingDirectory
	tx       shared.TransactionManager
	events   shared.EventPublisher
}

// NewService creates the payment service
func NewService(
	payments domainpayment.Repository,
	escrows escrow.Repository,
	walletSvc *wallet.Service,
	gateway domainpayment.Gateway,
	bookings BookingDirectory,
	tx shared.TransactionManager,
	events shared.EventPublisher,
) *Service {
	return &Service{
		payments: payments,
		escrows:  escrows,
		wallet:   walletSvc,
		gateway:  gateway,
		bookings: bookings,
		tx:       tx,
		events:   events,
	}
}

// InitiateCharge creates a pending payment for a booking and asks the
// gateway to collect. The operation fails closed without an ambient tenant.
// When the gateway runs in stub mode the payment stays pending under a
// locally generated external ID until staff confirm it manually.
func (s *Service) InitiateCharge(ctx context.Context, bookingID uuid.UUID, payerPhone string, amount valueobject.Money) (*domainpayment.Payment, error) {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	p, err := domainpayment.NewPayment(t.ID, bookingID, payerPhone, amount, domainpayment.MethodMpesa)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Charge(ctx, domainpayment.ChargeRequest{
		Phone:       payerPhone,
		Amount:      amount.Amount(),
		AccountRef:  bookingID.String(),
		Description: "Booking payment",
	})
	if err != nil {
		return nil, err
	}
	p.AttachExternalID(result.ExternalID)

	if err := s.payments.Save(ctx, p); err != nil {
		return nil, err
	}

	if result.Stub {
		logger.L(ctx).Info("gateway disabled, payment awaiting manual confirmation",
			zap.String("payment_id", p.ID.String()),
			zap.String("external_id", result.ExternalID),
		)
	}
	return p, nil
}

// ApplyCallback applies an asynchronous gateway outcome to its payment.
// The operation is idempotent: unknown external IDs and payments already in
// a terminal state are acknowledged without any side effect, so gateway
// retries can never double-credit a wallet.
func (s *Service) ApplyCallback(ctx context.Context, result CallbackResult) error {
	p, err := s.payments.FindByExternalID(ctx, result.ExternalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.L(ctx).Debug("callback for unknown payment ignored",
				zap.String("external_id", result.ExternalID))
			return nil
		}
		return err
	}
	if p.Status.IsTerminal() {
		logger.L(ctx).Debug("callback for resolved payment ignored",
			zap.String("payment_id", p.ID.String()),
			zap.String("status", p.Status.String()))
		return nil
	}

	if !result.Success {
		return s.fail(ctx, p, result.ResultDesc)
	}
	return s.settle(ctx, p, result.ReceiptNumber, result.Amount)
}

// ConfirmManually settles a pending payment on a staff member's say-so, used
// when the gateway ran in stub mode or its callback was lost. It carries the
// same idempotency guarantee as ApplyCallback.
func (s *Service) ConfirmManually(ctx context.Context, paymentID uuid.UUID, receiptNumber string) error {
	p, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.Status.IsTerminal() {
		logger.L(ctx).Debug("manual confirmation of resolved payment ignored",
			zap.String("payment_id", p.ID.String()),
			zap.String("status", p.Status.String()))
		return nil
	}

	logger.L(ctx).Info("payment confirmed manually",
		zap.String("payment_id", p.ID.String()))
	return s.settle(ctx, p, receiptNumber, decimal.Decimal{})
}

// FindByBooking lists the payments recorded for a booking
func (s *Service) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*domainpayment.Payment, error) {
	if _, err := tenant.RequireTenant(ctx); err != nil {
		return nil, err
	}
	return s.payments.FindByBooking(ctx, bookingID)
}

// settle completes the payment and moves the money exactly once. The status
// transition and the funds movement commit in one transaction; a concurrent
// settler loses the version check, which rolls its transaction back before
// any ledger write, and is absorbed as a no-op.
//
// When the provider reports the amount it collected, that amount is what
// moves; the stored payment amount is the fallback for callbacks that omit
// it and for manual confirmations.
func (s *Service) settle(ctx context.Context, p *domainpayment.Payment, receiptNumber string, settledAmount decimal.Decimal) error {
	settled := p.Money()
	if settledAmount.IsPositive() {
		settled = valueobject.NewMoneyKES(settledAmount)
	}

	if err := p.MarkCompleted(receiptNumber); err != nil {
		return err
	}

	err := s.tx.Do(ctx, func(txCtx context.Context) error {
		if err := s.payments.SaveWithLock(txCtx, p); err != nil {
			return err
		}
		return s.placeFunds(txCtx, p, settled)
	})
	if err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			logger.L(ctx).Debug("payment settled by a concurrent writer",
				zap.String("payment_id", p.ID.String()))
			return nil
		}
		return err
	}

	if err := s.events.Publish(ctx, p.GetDomainEvents()...); err != nil {
		logger.L(ctx).Warn("failed to publish payment events", zap.Error(err))
	}
	p.ClearDomainEvents()
	return nil
}

// placeFunds routes settled money: escrow for remote-service bookings, an
// immediate commission-split wallet credit otherwise. Booking lookup
// failures degrade to the immediate-credit path rather than stranding money.
func (s *Service) placeFunds(ctx context.Context, p *domainpayment.Payment, settled valueobject.Money) error {
	remote := false
	if s.bookings != nil {
		info, err := s.bookings.Lookup(ctx, p.BookingID)
		if err != nil {
			logger.L(ctx).Warn("booking lookup failed, crediting wallet directly",
				zap.String("booking_id", p.BookingID.String()),
				zap.Error(err))
		} else {
			remote = info.RemoteService
		}
	}

	if remote {
		held, err := escrow.NewEscrow(p.TenantID, p.BookingID, p.ID, p.PayerPhone, settled)
		if err != nil {
			return err
		}
		return s.escrows.Save(ctx, held)
	}

	_, _, err := s.wallet.CreditSale(ctx, p.TenantID, settled, p.ID.String(), "booking payment")
	return err
}

// fail marks the payment failed. Losing the version race means another
// callback resolved it first; that is absorbed as a no-op.
func (s *Service) fail(ctx context.Context, p *domainpayment.Payment, resultDesc string) error {
	if err := p.MarkFailed(resultDesc); err != nil {
		return err
	}
	if err := s.payments.SaveWithLock(ctx, p); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil
		}
		return err
	}

	logger.L(ctx).Info("payment failed",
		zap.String("payment_id", p.ID.String()),
		zap.String("result_desc", resultDesc),
	)
	if err := s.events.Publish(ctx, p.GetDomainEvents()...); err != nil {
		logger.L(ctx).Warn("failed to publish payment events", zap.Error(err))
	}
	p.ClearDomainEvents()
	return nil
}
