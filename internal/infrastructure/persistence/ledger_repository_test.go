package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/domain/ledger"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
)

// newMockLedgerRepository creates a GormLedgerRepository with a mocked SQL connection
func newMockLedgerRepository(t *testing.T) (*GormLedgerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormLedgerRepository(gormDB), mock, mockDB
}

func TestGormLedgerRepository_Create(t *testing.T) {
	t.Run("inserts an entry", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		entry, err := ledger.NewEntry(tenantID, ledger.EntryTypeCredit, valueobject.NewMoneyKES(decimal.NewFromInt(900)), "pay-1", "Sale settled")
		require.NoError(t, err)
		entry.WithCommission(valueobject.NewMoneyKES(decimal.NewFromInt(100)))

		mock.ExpectExec(`INSERT INTO "ledger_entries"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Create(context.Background(), entry)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database error", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		entry, err := ledger.NewEntry(tenantID, ledger.EntryTypeDebit, valueobject.NewMoneyKES(decimal.NewFromInt(500)), "payout-1", "Payout")
		require.NoError(t, err)

		dbErr := errors.New("connection reset")
		mock.ExpectExec(`INSERT INTO "ledger_entries"`).
			WillReturnError(dbErr)

		err = repo.Create(context.Background(), entry)

		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_SumBalanceQuery(t *testing.T) {
	t.Run("aggregates credits minus debits in the database", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"balance"}).AddRow(decimal.NewFromInt(1250))
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN type = \$1 THEN amount WHEN type = \$2 THEN -amount ELSE 0 END\), 0\) AS balance FROM "ledger_entries" WHERE tenant_id = \$3`).
			WithArgs(ledger.EntryTypeCredit.String(), ledger.EntryTypeDebit.String(), tenantID).
			WillReturnRows(rows)

		balance, err := repo.SumBalance(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(1250)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero for an empty ledger", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"balance"}).AddRow(decimal.Zero)
		mock.ExpectQuery(`SELECT COALESCE`).
			WithArgs(ledger.EntryTypeCredit.String(), ledger.EntryTypeDebit.String(), tenantID).
			WillReturnRows(rows)

		balance, err := repo.SumBalance(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.True(t, balance.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates query error", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		dbErr := errors.New("relation does not exist")
		mock.ExpectQuery(`SELECT COALESCE`).
			WillReturnError(dbErr)

		_, err := repo.SumBalance(context.Background(), uuid.New())

		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_FindByReferenceQuery(t *testing.T) {
	t.Run("returns entries oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		commission := decimal.NewFromInt(100)
		now := time.Now()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "type", "amount", "commission_amount",
			"reference_id", "description", "created_at",
		}).AddRow(
			uuid.New(), tenantID, "CREDIT", decimal.NewFromInt(900), commission,
			"pay-1", "Sale settled", now,
		).AddRow(
			uuid.New(), tenantID, "COMMISSION", commission, nil,
			"pay-1", "Platform commission", now,
		)

		mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE tenant_id = \$1 AND reference_id = \$2 ORDER BY created_at ASC`).
			WithArgs(tenantID, "pay-1").
			WillReturnRows(rows)

		entries, err := repo.FindByReference(context.Background(), tenantID, "pay-1")

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, ledger.EntryTypeCredit, entries[0].Type)
		require.NotNil(t, entries[0].CommissionAmount)
		assert.True(t, entries[0].CommissionAmount.Equal(commission))
		assert.Equal(t, ledger.EntryTypeCommission, entries[1].Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
