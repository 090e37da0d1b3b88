package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/tenant"
)

// txContextKey carries an open transaction through the context so that
// repositories participate in the caller's unit of work.
type txContextKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// dbFromContext returns the transaction from the context, or the fallback
// connection when the caller did not open one.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// GormTransactionManager implements shared.TransactionManager. Each unit of
// work runs in a single database transaction, and when a tenant partition is
// resolved on the context it is pinned with SET LOCAL search_path before any
// statement runs. SET LOCAL is transaction scoped, so the pooled connection
// comes back clean no matter how the transaction ends.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a transaction manager on the connection
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Do implements shared.TransactionManager. Nested calls join the outer
// transaction.
func (m *GormTransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := pinSearchPath(ctx, tx); err != nil {
			return err
		}
		return fn(withTx(ctx, tx))
	})
}

// pinSearchPath routes the transaction to the active tenant's partition. The
// schema identifier is validated against the allow-list before it is ever
// interpolated; anything else is rejected. Non-PostgreSQL dialects (sqlite in
// tests) have no schemas and are skipped.
func pinSearchPath(ctx context.Context, tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	schema := tenant.SchemaFromContext(ctx)
	if !tenant.ValidSchemaName(schema) {
		return shared.NewDomainError("INVALID_SCHEMA", "Refusing to route to an invalid partition")
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL search_path TO %q, public", schema)).Error
}

var _ shared.TransactionManager = (*GormTransactionManager)(nil)
