package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingModel is a read model over the commerce-side bookings table. This
// module only ever reads it, at settlement time, to decide between escrow
// and an immediate wallet credit.
type BookingModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	DeliveryType string    `gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}
