package tenant

import (
	"context"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// contextKey is a private type for tenant context keys
type contextKey string

const (
	activeTenantKey contextKey = "active_tenant"
	activeSchemaKey contextKey = "active_schema"
)

// ActiveTenant identifies the tenant for the current unit of work. It is
// carried on the request context, never in package state, so concurrent
// requests can not observe each other's tenant and cleanup is automatic when
// the request context is discarded.
type ActiveTenant struct {
	ID     uuid.UUID
	Schema string
}

// WithActiveTenant returns a context carrying the resolved tenant
func WithActiveTenant(ctx context.Context, t ActiveTenant) context.Context {
	ctx = context.WithValue(ctx, activeTenantKey, t)
	return context.WithValue(ctx, activeSchemaKey, t.Schema)
}

// FromContext returns the active tenant for this unit of work, if any
func FromContext(ctx context.Context) (ActiveTenant, bool) {
	t, ok := ctx.Value(activeTenantKey).(ActiveTenant)
	if !ok || t.ID == uuid.Nil {
		return ActiveTenant{}, false
	}
	return t, true
}

// SchemaFromContext returns the partition identifier for this unit of work.
// When no tenant was resolved it returns DefaultSchema, which is only
// acceptable for known-public, non-financial reads; financial operations must
// use RequireTenant instead.
func SchemaFromContext(ctx context.Context) string {
	if schema, ok := ctx.Value(activeSchemaKey).(string); ok && schema != "" {
		return schema
	}
	return DefaultSchema
}

// RequireTenant returns the active tenant or shared.ErrTenantRequired. Every
// money-movement operation fails closed through this rather than silently
// writing to the default partition.
func RequireTenant(ctx context.Context) (ActiveTenant, error) {
	t, ok := FromContext(ctx)
	if !ok {
		return ActiveTenant{}, shared.ErrTenantRequired
	}
	return t, nil
}
