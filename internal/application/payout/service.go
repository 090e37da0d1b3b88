// Package payout implements withdrawals: validation, the atomic
// record-plus-debit write, gateway dispatch and asynchronous resolution.
package payout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biasharahub/backend/internal/application/wallet"
	"github.com/biasharahub/backend/internal/domain/payment"
	domainpayout "github.com/biasharahub/backend/internal/domain/payout"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/biasharahub/backend/internal/infrastructure/crypto"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
)

// Service orchestrates payouts. A payout debits the ledger in the same
// transaction that creates it; once that commits the money is spoken for,
// and a later transfer failure never silently re-credits it.
type Service struct {
	payouts       domainpayout.Repository
	tenants       tenant.Repository
	wallet        *wallet.Service
	gateway       payment.Gateway
	tx            shared.TransactionManager
	encryptor     *crypto.FieldEncryptor
	minimumPayout valueobject.Money
}

// NewService creates the payout service. minimum is the smallest allowed
// withdrawal as a decimal string in KES.
func NewService(
	payouts domainpayout.Repository,
	tenants tenant.Repository,
	walletSvc *wallet.Service,
	gateway payment.Gateway,
	tx shared.TransactionManager,
	encryptor *crypto.FieldEncryptor,
	minimum string,
) (*Service, error) {
	min, err := valueobject.NewMoneyKESFromString(minimum)
	if err != nil {
		return nil, fmt.Errorf("payout: invalid minimum payout %q: %w", minimum, err)
	}
	return &Service{
		payouts:       payouts,
		tenants:       tenants,
		wallet:        walletSvc,
		gateway:       gateway,
		tx:            tx,
		encryptor:     encryptor,
		minimumPayout: min,
	}, nil
}

// MinimumPayout returns the smallest allowed withdrawal
func (s *Service) MinimumPayout() valueobject.Money {
	return s.minimumPayout
}

// Request withdraws from the ambient tenant's wallet to the given
// destination. Validation is synchronous: amounts under the minimum or over
// the derived balance are rejected before anything is written.
func (s *Service) Request(ctx context.Context, amount valueobject.Money, method tenant.PayoutMethod, destination string) (*domainpayout.Payout, error) {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if destination == "" {
		return nil, shared.NewDomainError("INVALID_DESTINATION", "Payout destination is required")
	}

	encrypted, err := s.encryptor.Encrypt(destination)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, t.ID, amount, method, encrypted, crypto.MaskDestination(destination))
}

// TriggerAutoPayout pushes freshly released funds to the tenant's default
// destination after a delivery confirmation. Missing destination, amounts
// under the minimum and insufficient balance all skip silently; auto-payout
// is a convenience, not an obligation.
func (s *Service) TriggerAutoPayout(ctx context.Context, tenantID uuid.UUID, amount valueobject.Money) error {
	tn, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if !tn.HasDefaultPayout() {
		logger.L(ctx).Debug("auto-payout skipped, no default destination",
			zap.String("tenant_id", tenantID.String()))
		return nil
	}
	if amount.LessThan(s.minimumPayout) {
		logger.L(ctx).Debug("auto-payout skipped, amount under minimum",
			zap.String("tenant_id", tenantID.String()),
			zap.String("amount", amount.Amount().String()))
		return nil
	}

	destination, err := s.encryptor.Decrypt(tn.DefaultPayoutDestination)
	if err != nil {
		return err
	}

	_, err = s.create(ctx, tenantID, amount, tn.DefaultPayoutMethod, tn.DefaultPayoutDestination, crypto.MaskDestination(destination))
	if errors.Is(err, shared.ErrInsufficientBalance) {
		logger.L(ctx).Debug("auto-payout skipped, insufficient balance",
			zap.String("tenant_id", tenantID.String()))
		return nil
	}
	return err
}

// HandleTransferResult applies an asynchronous B2C outcome to its payout.
// Unknown conversation IDs and already-resolved payouts are acknowledged
// without effect. A failed transfer keeps the original debit; reconciliation
// of failed payouts is a manual step.
func (s *Service) HandleTransferResult(ctx context.Context, conversationID string, success bool, resultDesc string) error {
	p, err := s.payouts.FindByConversationID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.L(ctx).Debug("transfer result for unknown payout ignored",
				zap.String("conversation_id", conversationID))
			return nil
		}
		return err
	}
	if p.Status.IsTerminal() {
		logger.L(ctx).Debug("transfer result for resolved payout ignored",
			zap.String("payout_id", p.ID.String()),
			zap.String("status", p.Status.String()))
		return nil
	}

	if success {
		err = p.Complete(resultDesc)
	} else {
		err = p.Fail(resultDesc)
	}
	if err != nil {
		return err
	}

	if err := s.payouts.SaveWithLock(ctx, p); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil
		}
		return err
	}

	if success {
		logger.L(ctx).Info("payout completed",
			zap.String("payout_id", p.ID.String()))
	} else {
		logger.L(ctx).Warn("payout failed, debit kept for manual reconciliation",
			zap.String("payout_id", p.ID.String()),
			zap.String("result_desc", resultDesc),
		)
	}
	return nil
}

// List returns the ambient tenant's payouts, newest first
func (s *Service) List(ctx context.Context, filter shared.Filter) ([]*domainpayout.Payout, error) {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.payouts.FindByTenant(ctx, t.ID, filter)
}

// SetDefaultDestination stores the ambient tenant's auto-payout target. The
// destination is encrypted before it reaches the aggregate.
func (s *Service) SetDefaultDestination(ctx context.Context, method tenant.PayoutMethod, destination string) error {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return err
	}
	if destination == "" {
		return shared.NewDomainError("INVALID_DESTINATION", "Payout destination is required")
	}

	tn, err := s.tenants.FindByID(ctx, t.ID)
	if err != nil {
		return err
	}
	encrypted, err := s.encryptor.Encrypt(destination)
	if err != nil {
		return err
	}
	if err := tn.SetDefaultPayout(method, encrypted); err != nil {
		return err
	}
	if err := s.tenants.Save(ctx, tn); err != nil {
		return err
	}

	logger.L(ctx).Info("default payout destination updated",
		zap.String("tenant_id", t.ID.String()),
		zap.String("destination", crypto.MaskDestination(destination)),
	)
	return nil
}

// create validates the amount, then writes the payout record and its ledger
// debit in one transaction. Balance is checked inside the transaction so two
// racing requests cannot both pass against the same funds.
func (s *Service) create(ctx context.Context, tenantID uuid.UUID, amount valueobject.Money, method tenant.PayoutMethod, encryptedDestination, maskedDestination string) (*domainpayout.Payout, error) {
	if amount.LessThan(s.minimumPayout) {
		return nil, shared.NewDomainError("AMOUNT_BELOW_MINIMUM",
			fmt.Sprintf("Payout amount must be at least %s", s.minimumPayout))
	}

	p, err := domainpayout.NewPayout(tenantID, amount, method, encryptedDestination, maskedDestination)
	if err != nil {
		return nil, err
	}

	err = s.tx.Do(ctx, func(txCtx context.Context) error {
		balance, err := s.wallet.BalanceFor(txCtx, tenantID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance) {
			return shared.ErrInsufficientBalance
		}
		if err := s.payouts.Save(txCtx, p); err != nil {
			return err
		}
		return s.wallet.Debit(txCtx, tenantID, amount, p.ID.String(), "payout to "+maskedDestination)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("payout created",
		zap.String("payout_id", p.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("amount", amount.Amount().String()),
		zap.String("destination", maskedDestination),
	)

	s.dispatch(ctx, p)
	return p, nil
}

// dispatch pushes an MPESA payout through the gateway. Dispatch is soft: when
// the transfer cannot be initiated (gateway error, disabled gateway, bad
// destination) the payout stays PENDING with its debit in place for manual
// follow-up; FAILED is only ever reached through a transfer result callback.
// Bank transfers stay PENDING for manual processing.
func (s *Service) dispatch(ctx context.Context, p *domainpayout.Payout) {
	if p.Method != tenant.PayoutMethodMpesa {
		return
	}

	destination, err := s.encryptor.Decrypt(p.Destination)
	if err != nil {
		logger.L(ctx).Error("payout destination could not be decrypted, payout left pending",
			zap.String("payout_id", p.ID.String()),
			zap.Error(err))
		return
	}

	result, err := s.gateway.Transfer(ctx, payment.TransferRequest{
		Phone:   destination,
		Amount:  p.Amount,
		Remarks: "Wallet payout",
	})
	if err != nil {
		logger.L(ctx).Error("payout transfer dispatch failed, payout left pending",
			zap.String("payout_id", p.ID.String()),
			zap.Error(err),
		)
		return
	}
	if result.Stub {
		logger.L(ctx).Info("payout transfer not dispatched, gateway disabled; payout left pending",
			zap.String("payout_id", p.ID.String()))
		return
	}

	if err := p.BeginProcessing(result.ConversationID); err != nil {
		return
	}
	if err := s.payouts.SaveWithLock(ctx, p); err != nil && !errors.Is(err, shared.ErrConcurrencyConflict) {
		logger.L(ctx).Error("failed to record payout dispatch",
			zap.String("payout_id", p.ID.String()),
			zap.Error(err))
	}
}

