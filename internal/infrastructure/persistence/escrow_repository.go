package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/domain/escrow"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/infrastructure/persistence/models"
)

// GormEscrowRepository implements escrow.Repository using GORM
type GormEscrowRepository struct {
	db *gorm.DB
}

// NewGormEscrowRepository creates a new GormEscrowRepository
func NewGormEscrowRepository(db *gorm.DB) *GormEscrowRepository {
	return &GormEscrowRepository{db: db}
}

// Save creates or updates an escrow
func (r *GormEscrowRepository) Save(ctx context.Context, e *escrow.Escrow) error {
	model := models.EscrowModelFromDomain(e)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// SaveWithLock saves an escrow guarded by its version so only the first of
// two racing resolutions lands
func (r *GormEscrowRepository) SaveWithLock(ctx context.Context, e *escrow.Escrow) error {
	e.IncrementVersion()
	model := models.EscrowModelFromDomain(e)
	result := dbFromContext(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", e.ID, e.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds an escrow by its ID
func (r *GormEscrowRepository) FindByID(ctx context.Context, id uuid.UUID) (*escrow.Escrow, error) {
	var model models.EscrowModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBooking finds the escrow held for a booking
func (r *GormEscrowRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) (*escrow.Escrow, error) {
	var model models.EscrowModel
	if err := dbFromContext(ctx, r.db).First(&model, "booking_id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ escrow.Repository = (*GormEscrowRepository)(nil)
