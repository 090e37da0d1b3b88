package escrow

import (
	"testing"

	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEscrow(t *testing.T) *Escrow {
	t.Helper()
	e, err := NewEscrow(uuid.New(), uuid.New(), uuid.New(), "254712345678", valueobject.NewMoneyKES(decimal.NewFromInt(500)))
	require.NoError(t, err)
	return e
}

func TestNewEscrow(t *testing.T) {
	t.Run("starts held", func(t *testing.T) {
		e := newTestEscrow(t)
		assert.Equal(t, StatusHeld, e.Status)
		assert.Nil(t, e.ResolvedAt)
		assert.Equal(t, 1, e.GetVersion())
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := NewEscrow(uuid.Nil, uuid.New(), uuid.New(), "254712345678", valueobject.NewMoneyKES(decimal.NewFromInt(500)))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewEscrow(uuid.New(), uuid.New(), uuid.New(), "254712345678", valueobject.ZeroKES())
		assert.Error(t, err)
	})
}

func TestEscrowRelease(t *testing.T) {
	e := newTestEscrow(t)

	assert.True(t, e.Release())
	assert.Equal(t, StatusReleased, e.Status)
	require.NotNil(t, e.ResolvedAt)

	// resolved escrows ignore further transitions
	assert.False(t, e.Release())
	assert.False(t, e.Refund())
	assert.Equal(t, StatusReleased, e.Status)
}

func TestEscrowRefund(t *testing.T) {
	e := newTestEscrow(t)

	assert.True(t, e.Refund())
	assert.Equal(t, StatusRefunded, e.Status)

	// refund then release keeps the refund
	assert.False(t, e.Release())
	assert.Equal(t, StatusRefunded, e.Status)
}

func TestEscrowStatus(t *testing.T) {
	assert.True(t, StatusHeld.IsValid())
	assert.False(t, StatusHeld.IsTerminal())
	assert.True(t, StatusReleased.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
	assert.False(t, Status("LOST").IsValid())
}
