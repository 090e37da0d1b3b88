// Package escrow implements release and refund of held remote-service funds.
package escrow

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biasharahub/backend/internal/application/wallet"
	domainescrow "github.com/biasharahub/backend/internal/domain/escrow"
	"github.com/biasharahub/backend/internal/domain/payment"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
)

// AutoPayout pushes released funds onward to the tenant's default payout
// destination. Implementations must swallow their own soft failures.
type AutoPayout interface {
	TriggerAutoPayout(ctx context.Context, tenantID uuid.UUID, amount valueobject.Money) error
}

// Service resolves escrow holds. An escrow resolves at most once; repeated
// or racing resolutions are absorbed as no-ops and reported via the boolean
// return.
type Service struct {
	escrows    domainescrow.Repository
	wallet     *wallet.Service
	gateway    payment.Gateway
	tx         shared.TransactionManager
	autoPayout AutoPayout
}

// NewService creates the escrow service. autoPayout may be nil when
// delivery-triggered payouts are disabled.
func NewService(
	escrows domainescrow.Repository,
	walletSvc *wallet.Service,
	gateway payment.Gateway,
	tx shared.TransactionManager,
	autoPayout AutoPayout,
) *Service {
	return &Service{
		escrows:    escrows,
		wallet:     walletSvc,
		gateway:    gateway,
		tx:         tx,
		autoPayout: autoPayout,
	}
}

// Release resolves a hold in the seller's favour after the buyer confirms
// delivery. The status flip and the commission-split wallet credit commit
// together. Returns false when the escrow was already resolved.
func (s *Service) Release(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	e, err := s.escrows.FindByBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if !e.Release() {
		logger.L(ctx).Debug("release of resolved escrow ignored",
			zap.String("escrow_id", e.ID.String()),
			zap.String("status", e.Status.String()))
		return false, nil
	}

	var net valueobject.Money
	err = s.tx.Do(ctx, func(txCtx context.Context) error {
		if err := s.escrows.SaveWithLock(txCtx, e); err != nil {
			return err
		}
		credited, _, err := s.wallet.CreditSale(txCtx, e.TenantID, e.Money(), e.PaymentID.String(), "escrow release")
		if err != nil {
			return err
		}
		net = credited
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			logger.L(ctx).Debug("escrow resolved by a concurrent writer",
				zap.String("escrow_id", e.ID.String()))
			return false, nil
		}
		return false, err
	}

	logger.L(ctx).Info("escrow released",
		zap.String("escrow_id", e.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.String("net", net.Amount().String()),
	)

	if s.autoPayout != nil {
		if err := s.autoPayout.TriggerAutoPayout(ctx, e.TenantID, net); err != nil {
			logger.L(ctx).Warn("auto-payout after release failed",
				zap.String("escrow_id", e.ID.String()),
				zap.Error(err))
		}
	}
	return true, nil
}

// Refund resolves a hold in the buyer's favour after a dispute. The refund
// transfer to the payer is attempted after the status flip commits and its
// failure does not unwind the refund; the money is no longer the seller's
// either way and failed transfers are reconciled manually.
func (s *Service) Refund(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	e, err := s.escrows.FindByBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if !e.Refund() {
		logger.L(ctx).Debug("refund of resolved escrow ignored",
			zap.String("escrow_id", e.ID.String()),
			zap.String("status", e.Status.String()))
		return false, nil
	}

	if err := s.escrows.SaveWithLock(ctx, e); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			logger.L(ctx).Debug("escrow resolved by a concurrent writer",
				zap.String("escrow_id", e.ID.String()))
			return false, nil
		}
		return false, err
	}

	if _, err := s.gateway.Transfer(ctx, payment.TransferRequest{
		Phone:   e.PayerPhone,
		Amount:  e.Amount,
		Remarks: "Booking refund",
	}); err != nil {
		logger.L(ctx).Error("refund transfer failed, needs manual reconciliation",
			zap.String("escrow_id", e.ID.String()),
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return true, nil
	}

	logger.L(ctx).Info("escrow refunded",
		zap.String("escrow_id", e.ID.String()),
		zap.String("booking_id", bookingID.String()),
	)
	return true, nil
}
