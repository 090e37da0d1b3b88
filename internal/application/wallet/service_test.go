package wallet_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/application/wallet"
	"github.com/biasharahub/backend/internal/domain/ledger"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/biasharahub/backend/internal/infrastructure/persistence"
	"github.com/biasharahub/backend/internal/infrastructure/persistence/models"
)

func newTestService(t *testing.T) (*wallet.Service, ledger.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LedgerEntryModel{}))

	repo := persistence.NewGormLedgerRepository(db)
	svc, err := wallet.NewService(repo, "0.10")
	require.NoError(t, err)
	return svc, repo
}

func kes(amount int64) valueobject.Money {
	return valueobject.NewMoneyKES(decimal.NewFromInt(amount))
}

func tenantCtx(id uuid.UUID) context.Context {
	return tenant.WithActiveTenant(context.Background(), tenant.ActiveTenant{ID: id, Schema: "acme_salon"})
}

func TestNewService(t *testing.T) {
	_, repo := newTestService(t)

	_, err := wallet.NewService(repo, "abc")
	assert.Error(t, err)
	_, err = wallet.NewService(repo, "1.5")
	assert.Error(t, err)
	_, err = wallet.NewService(repo, "-0.1")
	assert.Error(t, err)
}

func TestCreditSale(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	net, commission, err := svc.CreditSale(ctx, tenantID, kes(1000), "pay-1", "booking payment")
	require.NoError(t, err)

	assert.Equal(t, "900", net.Amount().String())
	assert.Equal(t, "100", commission.Amount().String())

	entries, err := repo.FindByReference(ctx, tenantID, "pay-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byType := map[ledger.EntryType]*ledger.Entry{}
	for _, e := range entries {
		byType[e.Type] = e
	}
	require.Contains(t, byType, ledger.EntryTypeCredit)
	require.Contains(t, byType, ledger.EntryTypeCommission)
	assert.Equal(t, "900", byType[ledger.EntryTypeCredit].Amount.String())
	assert.Equal(t, "100", byType[ledger.EntryTypeCommission].Amount.String())
	require.NotNil(t, byType[ledger.EntryTypeCredit].CommissionAmount)
	assert.Equal(t, "100", byType[ledger.EntryTypeCredit].CommissionAmount.String())
}

func TestCreditSaleRoundsHalfUp(t *testing.T) {
	svc, _ := newTestService(t)

	gross, err := valueobject.NewMoneyKESFromString("333.33")
	require.NoError(t, err)

	net, commission, err := svc.Split(gross)
	require.NoError(t, err)

	// 333.33 * 0.10 = 33.333 -> 33.33; net carries the remainder
	assert.Equal(t, "33.33", commission.Amount().String())
	assert.Equal(t, "300", net.Amount().String())

	sum, err := net.Add(commission)
	require.NoError(t, err)
	assert.True(t, sum.Equals(gross))
}

func TestBalanceDerivedFromLedger(t *testing.T) {
	svc, _ := newTestService(t)
	tenantID := uuid.New()
	ctx := context.Background()

	_, _, err := svc.CreditSale(ctx, tenantID, kes(1000), "pay-1", "")
	require.NoError(t, err)
	require.NoError(t, svc.Debit(ctx, tenantID, kes(400), "po-1", "payout"))

	balance, err := svc.Balance(tenantCtx(tenantID))
	require.NoError(t, err)
	assert.Equal(t, "500", balance.Amount().String())
}

func TestBalanceFailsClosedWithoutTenant(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Balance(context.Background())
	assert.ErrorIs(t, err, shared.ErrTenantRequired)

	_, err = svc.Statement(context.Background(), shared.DefaultFilter())
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}

func TestZeroCommissionRate(t *testing.T) {
	_, repo := newTestService(t)
	svc, err := wallet.NewService(repo, "0")
	require.NoError(t, err)
	tenantID := uuid.New()

	net, commission, err := svc.CreditSale(context.Background(), tenantID, kes(1000), "pay-1", "")
	require.NoError(t, err)
	assert.Equal(t, "1000", net.Amount().String())
	assert.True(t, commission.IsZero())

	// no commission entry is written for a zero cut
	entries, err := repo.FindByReference(context.Background(), tenantID, "pay-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
