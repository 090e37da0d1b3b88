package tenant

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/domain/shared"
	domaintenant "github.com/biasharahub/backend/internal/domain/tenant"
)

// scopedModel is a minimal shared-partition table for scoping tests
type scopedModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"size:100"`
}

func (scopedModel) TableName() string {
	return "scoped_models"
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

	return gormDB, mock, mockDB
}

func TestTenantScope(t *testing.T) {
	tenantID := uuid.New()

	t.Run("applies tenant filter to query", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var out []scopedModel
		err := db.Scopes(TenantScope(tenantID)).Find(&out).Error

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContextScope(t *testing.T) {
	t.Run("scopes to the resolved tenant", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		ctx := domaintenant.WithActiveTenant(context.Background(), domaintenant.ActiveTenant{
			ID:     tenantID,
			Schema: "tenant_acme",
		})

		mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var out []scopedModel
		err := db.Scopes(ContextScope(ctx)).Find(&out).Error

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails closed without a tenant", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		var out []scopedModel
		err := db.Scopes(ContextScope(context.Background())).Find(&out).Error

		assert.ErrorIs(t, err, shared.ErrTenantRequired)
	})
}
