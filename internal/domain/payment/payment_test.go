package payment

import (
	"testing"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T) *Payment {
	t.Helper()
	p, err := NewPayment(uuid.New(), uuid.New(), "254712345678", valueobject.NewMoneyKES(decimal.NewFromInt(1000)), MethodMpesa)
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		p := newTestPayment(t)
		assert.Equal(t, StatusPending, p.Status)
		assert.Empty(t, p.ExternalID)
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := NewPayment(uuid.Nil, uuid.New(), "254712345678", valueobject.NewMoneyKES(decimal.NewFromInt(1000)), MethodMpesa)
		assert.ErrorIs(t, err, shared.ErrTenantRequired)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(), "254712345678", valueobject.ZeroKES(), MethodMpesa)
		assert.Error(t, err)
	})
}

func TestPaymentMarkCompleted(t *testing.T) {
	t.Run("overwrites external id with receipt", func(t *testing.T) {
		p := newTestPayment(t)
		p.AttachExternalID("ws_CO_20240101")

		require.NoError(t, p.MarkCompleted("SBE12XYZ99"))
		assert.Equal(t, StatusCompleted, p.Status)
		assert.Equal(t, "SBE12XYZ99", p.ExternalID)

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePaymentCompleted, events[0].EventType())
	})

	t.Run("keeps checkout id when receipt missing", func(t *testing.T) {
		p := newTestPayment(t)
		p.AttachExternalID("ws_CO_20240101")

		require.NoError(t, p.MarkCompleted(""))
		assert.Equal(t, "ws_CO_20240101", p.ExternalID)
	})

	t.Run("terminal payments reject transitions", func(t *testing.T) {
		p := newTestPayment(t)
		require.NoError(t, p.MarkCompleted("SBE12XYZ99"))

		assert.ErrorIs(t, p.MarkCompleted("SBE12XYZ00"), shared.ErrInvalidState)
		assert.ErrorIs(t, p.MarkFailed("late failure"), shared.ErrInvalidState)
		assert.Equal(t, "SBE12XYZ99", p.ExternalID)
	})
}

func TestPaymentMarkFailed(t *testing.T) {
	p := newTestPayment(t)

	require.NoError(t, p.MarkFailed("Request cancelled by user"))
	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "Request cancelled by user", p.FailureDesc)

	assert.ErrorIs(t, p.MarkCompleted("SBE12XYZ99"), shared.ErrInvalidState)
}

func TestPaymentStatus(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, Status("UNKNOWN").IsValid())
}
