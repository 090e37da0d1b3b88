package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/infrastructure/persistence/models"
)

func TestGormBookingDirectory_Lookup(t *testing.T) {
	db := setupTestDB(t)
	dir := NewGormBookingDirectory(db)
	tenantID := uuid.New()

	virtualID := uuid.New()
	inPersonID := uuid.New()
	require.NoError(t, db.Create(&models.BookingModel{
		ID: virtualID, TenantID: tenantID, DeliveryType: "VIRTUAL",
	}).Error)
	require.NoError(t, db.Create(&models.BookingModel{
		ID: inPersonID, TenantID: tenantID, DeliveryType: "IN_PERSON",
	}).Error)

	t.Run("virtual booking is a remote service", func(t *testing.T) {
		info, err := dir.Lookup(context.Background(), virtualID)
		require.NoError(t, err)
		assert.Equal(t, virtualID, info.ID)
		assert.Equal(t, tenantID, info.TenantID)
		assert.True(t, info.RemoteService)
	})

	t.Run("delivery type is case-insensitive", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, db.Create(&models.BookingModel{
			ID: id, TenantID: tenantID, DeliveryType: "virtual",
		}).Error)

		info, err := dir.Lookup(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, info.RemoteService)
	})

	t.Run("in-person booking is not", func(t *testing.T) {
		info, err := dir.Lookup(context.Background(), inPersonID)
		require.NoError(t, err)
		assert.False(t, info.RemoteService)
	})

	t.Run("unknown booking returns not found", func(t *testing.T) {
		_, err := dir.Lookup(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
