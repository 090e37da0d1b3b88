// Package wallet implements tenant wallet operations on top of the
// append-only ledger: commission-aware credits, debits and derived balances.
package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/biasharahub/backend/internal/domain/ledger"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
)

// Service exposes wallet operations. Balances are never stored; every read
// recomputes sum(credits) - sum(debits) from the ledger.
type Service struct {
	entries        ledger.Repository
	commissionRate decimal.Decimal
}

// NewService creates the wallet service. rate is the platform commission as a
// decimal string, e.g. "0.10".
func NewService(entries ledger.Repository, rate string) (*Service, error) {
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid commission rate %q: %w", rate, err)
	}
	if r.IsNegative() || r.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("wallet: commission rate %q outside [0,1)", rate)
	}
	return &Service{entries: entries, commissionRate: r}, nil
}

// CommissionRate returns the configured platform commission rate
func (s *Service) CommissionRate() decimal.Decimal {
	return s.commissionRate
}

// Split computes the commission and net for a gross amount. Commission is
// rounded half-up to two decimal places; the net is the exact remainder so
// that net + commission always reconstructs the gross.
func (s *Service) Split(gross valueobject.Money) (net, commission valueobject.Money, err error) {
	commission = gross.Mul(s.commissionRate).RoundHalfUp()
	net, err = gross.Sub(commission)
	if err != nil {
		return valueobject.Money{}, valueobject.Money{}, err
	}
	return net, commission, nil
}

// CreditSale records a settled sale: a CREDIT entry for the net amount and a
// COMMISSION entry for the platform's cut, both under the same reference.
func (s *Service) CreditSale(ctx context.Context, tenantID uuid.UUID, gross valueobject.Money, referenceID, description string) (net, commission valueobject.Money, err error) {
	net, commission, err = s.Split(gross)
	if err != nil {
		return valueobject.Money{}, valueobject.Money{}, err
	}

	credit, err := ledger.NewEntry(tenantID, ledger.EntryTypeCredit, net, referenceID, description)
	if err != nil {
		return valueobject.Money{}, valueobject.Money{}, err
	}
	credit.WithCommission(commission)
	if err := s.entries.Create(ctx, credit); err != nil {
		return valueobject.Money{}, valueobject.Money{}, err
	}

	if commission.IsPositive() {
		fee, err := ledger.NewEntry(tenantID, ledger.EntryTypeCommission, commission, referenceID, "platform commission")
		if err != nil {
			return valueobject.Money{}, valueobject.Money{}, err
		}
		if err := s.entries.Create(ctx, fee); err != nil {
			return valueobject.Money{}, valueobject.Money{}, err
		}
	}

	logger.L(ctx).Info("sale credited to wallet",
		zap.String("tenant_id", tenantID.String()),
		zap.String("reference_id", referenceID),
		zap.String("gross", gross.Amount().String()),
		zap.String("net", net.Amount().String()),
		zap.String("commission", commission.Amount().String()),
	)
	return net, commission, nil
}

// Debit records money leaving the wallet
func (s *Service) Debit(ctx context.Context, tenantID uuid.UUID, amount valueobject.Money, referenceID, description string) error {
	entry, err := ledger.NewEntry(tenantID, ledger.EntryTypeDebit, amount, referenceID, description)
	if err != nil {
		return err
	}
	return s.entries.Create(ctx, entry)
}

// Balance returns the ambient tenant's wallet balance. It fails closed when
// no tenant is resolved.
func (s *Service) Balance(ctx context.Context) (valueobject.Money, error) {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return valueobject.Money{}, err
	}
	return s.BalanceFor(ctx, t.ID)
}

// BalanceFor returns the wallet balance for an explicit tenant. Internal
// flows (callback settlement, auto-payout) use this with the tenant taken
// from the aggregate being settled.
func (s *Service) BalanceFor(ctx context.Context, tenantID uuid.UUID) (valueobject.Money, error) {
	if tenantID == uuid.Nil {
		return valueobject.Money{}, shared.ErrTenantRequired
	}
	sum, err := s.entries.SumBalance(ctx, tenantID)
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewMoneyKES(sum), nil
}

// Statement lists the ambient tenant's ledger entries, newest first
func (s *Service) Statement(ctx context.Context, filter shared.Filter) ([]*ledger.Entry, error) {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.entries.FindByTenant(ctx, t.ID, filter)
}
