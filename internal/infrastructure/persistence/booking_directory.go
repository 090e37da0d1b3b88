package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/application/payment"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/infrastructure/persistence/models"
)

// deliveryTypeVirtual marks bookings delivered remotely; their payments are
// held in escrow until the customer confirms or disputes
const deliveryTypeVirtual = "VIRTUAL"

// GormBookingDirectory resolves bookings from the commerce-side bookings
// table for settlement decisions. Read-only.
type GormBookingDirectory struct {
	db *gorm.DB
}

// NewGormBookingDirectory creates a new GormBookingDirectory
func NewGormBookingDirectory(db *gorm.DB) *GormBookingDirectory {
	return &GormBookingDirectory{db: db}
}

// Lookup returns the booking facts needed to settle its payment
func (d *GormBookingDirectory) Lookup(ctx context.Context, bookingID uuid.UUID) (payment.BookingInfo, error) {
	var model models.BookingModel
	err := dbFromContext(ctx, d.db).Where("id = ?", bookingID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return payment.BookingInfo{}, shared.ErrNotFound
		}
		return payment.BookingInfo{}, err
	}
	return payment.BookingInfo{
		ID:            model.ID,
		TenantID:      model.TenantID,
		RemoteService: strings.EqualFold(model.DeliveryType, deliveryTypeVirtual),
	}, nil
}

var _ payment.BookingDirectory = (*GormBookingDirectory)(nil)
