// Package tenant defines the Tenant aggregate and the ports used to resolve
// and route the active tenant for a unit of work.
//
// Each tenant is a seller business sharing one database but isolated by
// schema: platform-wide records (tenants, wallet ledger, payouts) live in the
// shared partition keyed by tenant ID, while commerce records (orders,
// payments, escrows) live in the tenant's own schema.
package tenant

import (
	"context"
	"regexp"
	"strings"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultSchema is the partition used for known-public, non-financial reads
// when no tenant is resolved. Money-movement operations never fall back to it.
const DefaultSchema = "tenant_default"

// schemaPattern is the allow-list for partition identifiers. Anything else is
// rejected before it can reach a partition-selection statement.
var schemaPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var (
	// ErrInvalidSchemaName is returned for schema names outside the allow-list
	ErrInvalidSchemaName = shared.NewDomainError("INVALID_SCHEMA", "Tenant schema name contains disallowed characters")
	// ErrTenantInactive is returned when a deactivated tenant is resolved for a financial operation
	ErrTenantInactive = shared.NewDomainError("TENANT_INACTIVE", "Tenant is deactivated")
)

// PayoutMethod identifies how a tenant receives withdrawals
type PayoutMethod string

const (
	PayoutMethodMpesa        PayoutMethod = "MPESA"
	PayoutMethodBankTransfer PayoutMethod = "BANK_TRANSFER"
)

// IsValid returns true if the payout method is a known value
func (m PayoutMethod) IsValid() bool {
	switch m {
	case PayoutMethodMpesa, PayoutMethodBankTransfer:
		return true
	}
	return false
}

// String returns the string representation of PayoutMethod
func (m PayoutMethod) String() string {
	return string(m)
}

// NormalizePayoutMethod folds arbitrary user input into a valid method,
// defaulting to bank transfer like the payout intake always has.
func NormalizePayoutMethod(raw string) PayoutMethod {
	if strings.EqualFold(strings.TrimSpace(raw), string(PayoutMethodMpesa)) {
		return PayoutMethodMpesa
	}
	return PayoutMethodBankTransfer
}

// Tenant is the aggregate for a seller business. Tenants are created at
// provisioning time and never deleted; deactivation is a flag.
type Tenant struct {
	shared.BaseAggregateRoot
	SchemaName string
	Name       string
	Domain     string
	Active     bool
	// DefaultPayoutMethod and DefaultPayoutDestination configure auto-payout
	// on delivery confirmation. The destination is stored as ciphertext and
	// only decrypted at the point of transfer initiation.
	DefaultPayoutMethod      PayoutMethod
	DefaultPayoutDestination string
}

// NewTenant creates a tenant with a validated partition identifier
func NewTenant(name, schemaName string) (*Tenant, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if !ValidSchemaName(schemaName) {
		return nil, ErrInvalidSchemaName
	}
	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SchemaName:        schemaName,
		Name:              name,
		Active:            true,
	}, nil
}

// ValidSchemaName reports whether the identifier is inside the allow-list
func ValidSchemaName(schema string) bool {
	return schema != "" && schemaPattern.MatchString(schema)
}

// Deactivate flags the tenant as inactive. Tenants are never deleted.
func (t *Tenant) Deactivate() {
	t.Active = false
	t.Touch()
}

// SetDefaultPayout stores the default payout destination. The destination
// must already be encrypted by the caller; the aggregate never sees plaintext.
func (t *Tenant) SetDefaultPayout(method PayoutMethod, encryptedDestination string) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYOUT_METHOD", "Unknown payout method")
	}
	t.DefaultPayoutMethod = method
	t.DefaultPayoutDestination = encryptedDestination
	t.Touch()
	return nil
}

// HasDefaultPayout returns true when auto-payout can target this tenant
func (t *Tenant) HasDefaultPayout() bool {
	return t.DefaultPayoutDestination != ""
}

// Repository is the persistence port for tenants. Tenants live in the shared
// partition and are readable without tenant context (they ARE the routing
// table).
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindBySchemaName(ctx context.Context, schema string) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}
