package tenant

import (
	"context"
	"testing"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidSchemaName(t *testing.T) {
	valid := []string{"tenant_default", "acme_shop", "T1", "a"}
	for _, s := range valid {
		assert.True(t, ValidSchemaName(s), "expected %q to be valid", s)
	}

	invalid := []string{"", "tenant-1", "public; DROP TABLE", "a b", "shop'", "t.name"}
	for _, s := range invalid {
		assert.False(t, ValidSchemaName(s), "expected %q to be rejected", s)
	}
}

func TestNewTenant(t *testing.T) {
	t.Run("creates active tenant", func(t *testing.T) {
		tn, err := NewTenant("Acme Salon", "acme_salon")
		require.NoError(t, err)
		assert.True(t, tn.Active)
		assert.Equal(t, "acme_salon", tn.SchemaName)
	})

	t.Run("rejects disallowed schema characters", func(t *testing.T) {
		_, err := NewTenant("Acme Salon", "acme-salon")
		assert.ErrorIs(t, err, ErrInvalidSchemaName)
	})
}

func TestTenantDefaultPayout(t *testing.T) {
	tn, err := NewTenant("Acme Salon", "acme_salon")
	require.NoError(t, err)
	assert.False(t, tn.HasDefaultPayout())

	require.NoError(t, tn.SetDefaultPayout(PayoutMethodMpesa, "enc:ciphertext"))
	assert.True(t, tn.HasDefaultPayout())
	assert.Equal(t, PayoutMethodMpesa, tn.DefaultPayoutMethod)

	assert.Error(t, tn.SetDefaultPayout(PayoutMethod("CHEQUE"), "enc:x"))
}

func TestNormalizePayoutMethod(t *testing.T) {
	assert.Equal(t, PayoutMethodMpesa, NormalizePayoutMethod("mpesa"))
	assert.Equal(t, PayoutMethodMpesa, NormalizePayoutMethod(" MPESA "))
	assert.Equal(t, PayoutMethodBankTransfer, NormalizePayoutMethod("bank"))
	assert.Equal(t, PayoutMethodBankTransfer, NormalizePayoutMethod(""))
}

func TestActiveTenantContext(t *testing.T) {
	t.Run("round trips through context", func(t *testing.T) {
		id := uuid.New()
		ctx := WithActiveTenant(context.Background(), ActiveTenant{ID: id, Schema: "acme_salon"})

		got, ok := FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "acme_salon", got.Schema)
	})

	t.Run("schema falls back to default for reads", func(t *testing.T) {
		assert.Equal(t, DefaultSchema, SchemaFromContext(context.Background()))
	})

	t.Run("financial path fails closed", func(t *testing.T) {
		_, err := RequireTenant(context.Background())
		assert.ErrorIs(t, err, shared.ErrTenantRequired)

		ctx := WithActiveTenant(context.Background(), ActiveTenant{ID: uuid.New(), Schema: "acme_salon"})
		got, err := RequireTenant(ctx)
		require.NoError(t, err)
		assert.Equal(t, "acme_salon", got.Schema)
	})
}
