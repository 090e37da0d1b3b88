package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/domain/payment"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/infrastructure/persistence/models"
	tenantscope "github.com/biasharahub/backend/internal/infrastructure/persistence/tenant"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	model := models.PaymentModelFromDomain(p)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// SaveWithLock saves a payment guarded by its version. A concurrent writer
// that got there first leaves zero rows affected and the caller receives
// shared.ErrConcurrencyConflict.
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *payment.Payment) error {
	p.IncrementVersion()
	model := models.PaymentModelFromDomain(p)
	result := dbFromContext(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a payment by its gateway correlation ID
func (r *GormPaymentRepository) FindByExternalID(ctx context.Context, externalID string) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := dbFromContext(ctx, r.db).First(&model, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBooking lists the payments recorded for a booking, scoped to the
// ambient tenant. FindByExternalID stays deliberately unscoped: gateway
// callbacks carry no tenant header, the correlation ID is the only key.
func (r *GormPaymentRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]*payment.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := dbFromContext(ctx, r.db).
		Scopes(tenantscope.ContextScope(ctx)).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]*payment.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments, nil
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
