// Package tenant provides gorm scoping for shared-partition tables.
//
// Shared tables (ledger entries, payouts, tenants) hold rows for every tenant
// keyed by tenant_id; every read against them goes through TenantScope so a
// missing filter cannot leak another tenant's money records.
package tenant

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/domain/shared"
	domaintenant "github.com/biasharahub/backend/internal/domain/tenant"
)

// TenantScope filters a query to rows owned by tenantID
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// ContextScope filters a query to the tenant resolved on the context. When no
// tenant is resolved the returned DB carries ErrTenantRequired and fails on
// execution rather than running unscoped.
func ContextScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		active, err := domaintenant.RequireTenant(ctx)
		if err != nil {
			_ = db.AddError(shared.ErrTenantRequired)
			return db
		}
		return db.Where("tenant_id = ?", active.ID)
	}
}
