package payout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/application/wallet"
	"github.com/biasharahub/backend/internal/domain/ledger"
	"github.com/biasharahub/backend/internal/domain/payment"
	domainpayout "github.com/biasharahub/backend/internal/domain/payout"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/biasharahub/backend/internal/infrastructure/crypto"
	"github.com/biasharahub/backend/internal/infrastructure/persistence"
	"github.com/biasharahub/backend/internal/infrastructure/persistence/models"
)

// MockGateway is a mock implementation of payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Charge(ctx context.Context, req payment.ChargeRequest) (payment.ChargeResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payment.ChargeResult), args.Error(1)
}

func (m *MockGateway) Transfer(ctx context.Context, req payment.TransferRequest) (payment.TransferResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payment.TransferResult), args.Error(1)
}

type fixture struct {
	svc       *Service
	payouts   domainpayout.Repository
	tenants   tenant.Repository
	entries   ledger.Repository
	wallet    *wallet.Service
	gateway   *MockGateway
	encryptor *crypto.FieldEncryptor
	tenantID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.PayoutModel{},
		&models.TenantModel{},
		&models.LedgerEntryModel{},
	))

	entries := persistence.NewGormLedgerRepository(db)
	walletSvc, err := wallet.NewService(entries, "0.10")
	require.NoError(t, err)

	encryptor, err := crypto.NewFieldEncryptor("test-encryption-secret")
	require.NoError(t, err)

	f := &fixture{
		payouts:   persistence.NewGormPayoutRepository(db),
		tenants:   persistence.NewGormTenantRepository(db),
		entries:   entries,
		wallet:    walletSvc,
		gateway:   new(MockGateway),
		encryptor: encryptor,
	}

	tn, err := tenant.NewTenant("Acme Salon", "acme_salon")
	require.NoError(t, err)
	require.NoError(t, f.tenants.Save(context.Background(), tn))
	f.tenantID = tn.ID

	f.svc, err = NewService(
		f.payouts,
		f.tenants,
		walletSvc,
		f.gateway,
		persistence.NewGormTransactionManager(db),
		encryptor,
		"10",
	)
	require.NoError(t, err)
	return f
}

func (f *fixture) tenantCtx() context.Context {
	return tenant.WithActiveTenant(context.Background(), tenant.ActiveTenant{ID: f.tenantID, Schema: "acme_salon"})
}

// fund seeds the wallet with a completed sale so the derived balance is
// amount * 0.9
func (f *fixture) fund(t *testing.T, gross int64) {
	t.Helper()
	_, _, err := f.wallet.CreditSale(context.Background(), f.tenantID,
		valueobject.NewMoneyKES(decimal.NewFromInt(gross)), uuid.NewString(), "booking payment")
	require.NoError(t, err)
}

func kes(amount int64) valueobject.Money {
	return valueobject.NewMoneyKES(decimal.NewFromInt(amount))
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	return derr.Code
}

func TestRequestDebitsWalletAtomically(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000) // balance 900

	f.gateway.On("Transfer", mock.Anything, mock.MatchedBy(func(req payment.TransferRequest) bool {
		return req.Phone == "254712345678" && req.Amount.String() == "500"
	})).Return(payment.TransferResult{ConversationID: "AG_20260830_1"}, nil)

	p, err := f.svc.Request(f.tenantCtx(), kes(500), tenant.PayoutMethodMpesa, "254712345678")
	require.NoError(t, err)

	assert.Equal(t, domainpayout.StatusProcessing, p.Status)
	assert.Equal(t, "AG_20260830_1", p.ConversationID)
	// the destination never touches storage in the clear
	assert.NotEqual(t, "254712345678", p.Destination)
	assert.Equal(t, "2547***78", p.DestinationMasked)

	balance, err := f.wallet.BalanceFor(context.Background(), f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, "400", balance.Amount().String())

	debits, err := f.entries.FindByReference(context.Background(), f.tenantID, p.ID.String())
	require.NoError(t, err)
	require.Len(t, debits, 1)
	assert.Equal(t, ledger.EntryTypeDebit, debits[0].Type)
}

func TestRequestRejectsBelowMinimum(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)

	_, err := f.svc.Request(f.tenantCtx(), kes(5), tenant.PayoutMethodMpesa, "254712345678")
	assert.Equal(t, "AMOUNT_BELOW_MINIMUM", domainCode(t, err))

	balance, err := f.wallet.BalanceFor(context.Background(), f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, "900", balance.Amount().String())
}

func TestRequestRejectsOverBalance(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000) // balance 900

	_, err := f.svc.Request(f.tenantCtx(), kes(901), tenant.PayoutMethodMpesa, "254712345678")
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

	// the rejected request leaves no payout and no debit behind
	payouts, err := f.payouts.FindByTenant(context.Background(), f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, payouts)

	balance, err := f.wallet.BalanceFor(context.Background(), f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, "900", balance.Amount().String())
	f.gateway.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
}

func TestRequestRequiresTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Request(context.Background(), kes(500), tenant.PayoutMethodMpesa, "254712345678")
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}

func TestRequestBankTransferStaysPending(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)

	p, err := f.svc.Request(f.tenantCtx(), kes(500), tenant.PayoutMethodBankTransfer, "01290001234567")
	require.NoError(t, err)

	assert.Equal(t, domainpayout.StatusPending, p.Status)
	f.gateway.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
}

func TestRequestDispatchFailureLeavesPending(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)

	f.gateway.On("Transfer", mock.Anything, mock.Anything).
		Return(payment.TransferResult{}, errors.New("daraja unavailable"))

	p, err := f.svc.Request(f.tenantCtx(), kes(500), tenant.PayoutMethodMpesa, "254712345678")
	require.NoError(t, err)

	// an undispatched payout awaits manual follow-up; it only fails through
	// a transfer result
	assert.Equal(t, domainpayout.StatusPending, p.Status)
	assert.Empty(t, p.ConversationID)

	// the debit is not unwound automatically; reconciliation is manual
	balance, err := f.wallet.BalanceFor(context.Background(), f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, "400", balance.Amount().String())
}

func TestRequestDisabledGatewayLeavesPending(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)

	f.gateway.On("Transfer", mock.Anything, mock.Anything).
		Return(payment.TransferResult{ConversationID: "STUB-1700000000000", Stub: true}, nil)

	p, err := f.svc.Request(f.tenantCtx(), kes(500), tenant.PayoutMethodMpesa, "254712345678")
	require.NoError(t, err)

	// a stub conversation ID is never echoed by a result callback, so the
	// payout must not advance to PROCESSING against it
	assert.Equal(t, domainpayout.StatusPending, p.Status)
	assert.Empty(t, p.ConversationID)

	balance, err := f.wallet.BalanceFor(context.Background(), f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, "400", balance.Amount().String())
}

func TestHandleTransferResult(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)

	f.gateway.On("Transfer", mock.Anything, mock.Anything).
		Return(payment.TransferResult{ConversationID: "AG_1"}, nil)

	p, err := f.svc.Request(f.tenantCtx(), kes(500), tenant.PayoutMethodMpesa, "254712345678")
	require.NoError(t, err)
	require.Equal(t, domainpayout.StatusProcessing, p.Status)

	require.NoError(t, f.svc.HandleTransferResult(context.Background(), "AG_1", true, "The service request is processed successfully."))

	stored, err := f.payouts.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainpayout.StatusCompleted, stored.Status)
	require.NotNil(t, stored.ResolvedAt)

	// a duplicate result for the resolved payout is acknowledged silently
	require.NoError(t, f.svc.HandleTransferResult(context.Background(), "AG_1", false, "late duplicate"))
	stored, err = f.payouts.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainpayout.StatusCompleted, stored.Status)
}

func TestHandleTransferResultFailureKeepsDebit(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)

	f.gateway.On("Transfer", mock.Anything, mock.Anything).
		Return(payment.TransferResult{ConversationID: "AG_1"}, nil)

	p, err := f.svc.Request(f.tenantCtx(), kes(500), tenant.PayoutMethodMpesa, "254712345678")
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleTransferResult(context.Background(), "AG_1", false, "DS timeout"))

	stored, err := f.payouts.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domainpayout.StatusFailed, stored.Status)
	assert.Equal(t, "DS timeout", stored.ResultDesc)

	balance, err := f.wallet.BalanceFor(context.Background(), f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, "400", balance.Amount().String())
}

func TestHandleTransferResultUnknownConversation(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.svc.HandleTransferResult(context.Background(), "AG_unknown", true, ""))
}

func TestTriggerAutoPayout(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)

	require.NoError(t, f.svc.SetDefaultDestination(f.tenantCtx(), tenant.PayoutMethodMpesa, "254712345678"))

	f.gateway.On("Transfer", mock.Anything, mock.MatchedBy(func(req payment.TransferRequest) bool {
		return req.Phone == "254712345678" && req.Amount.String() == "500"
	})).Return(payment.TransferResult{ConversationID: "AG_1"}, nil)

	require.NoError(t, f.svc.TriggerAutoPayout(context.Background(), f.tenantID, kes(500)))

	payouts, err := f.payouts.FindByTenant(context.Background(), f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, domainpayout.StatusProcessing, payouts[0].Status)
}

func TestTriggerAutoPayoutSkipsWithoutDefaultDestination(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)

	require.NoError(t, f.svc.TriggerAutoPayout(context.Background(), f.tenantID, kes(500)))

	payouts, err := f.payouts.FindByTenant(context.Background(), f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, payouts)
	f.gateway.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
}

func TestTriggerAutoPayoutSkipsUnderMinimum(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 1000)
	require.NoError(t, f.svc.SetDefaultDestination(f.tenantCtx(), tenant.PayoutMethodMpesa, "254712345678"))

	require.NoError(t, f.svc.TriggerAutoPayout(context.Background(), f.tenantID, kes(5)))

	payouts, err := f.payouts.FindByTenant(context.Background(), f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, payouts)
}

func TestTriggerAutoPayoutSkipsOnInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	// wallet is empty; the released amount cannot be covered
	require.NoError(t, f.svc.SetDefaultDestination(f.tenantCtx(), tenant.PayoutMethodMpesa, "254712345678"))

	require.NoError(t, f.svc.TriggerAutoPayout(context.Background(), f.tenantID, kes(500)))

	payouts, err := f.payouts.FindByTenant(context.Background(), f.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, payouts)
}

func TestSetDefaultDestinationEncrypts(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.SetDefaultDestination(f.tenantCtx(), tenant.PayoutMethodMpesa, "254712345678"))

	tn, err := f.tenants.FindByID(context.Background(), f.tenantID)
	require.NoError(t, err)
	require.True(t, tn.HasDefaultPayout())
	assert.NotEqual(t, "254712345678", tn.DefaultPayoutDestination)

	plain, err := f.encryptor.Decrypt(tn.DefaultPayoutDestination)
	require.NoError(t, err)
	assert.Equal(t, "254712345678", plain)
}

func TestListRequiresTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), shared.DefaultFilter())
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}
