package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/domain/payout"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/infrastructure/persistence/models"
	tenantscope "github.com/biasharahub/backend/internal/infrastructure/persistence/tenant"
)

// GormPayoutRepository implements payout.Repository using GORM
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewGormPayoutRepository creates a new GormPayoutRepository
func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// Save creates or updates a payout
func (r *GormPayoutRepository) Save(ctx context.Context, p *payout.Payout) error {
	model := models.PayoutModelFromDomain(p)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// SaveWithLock saves a payout guarded by its version
func (r *GormPayoutRepository) SaveWithLock(ctx context.Context, p *payout.Payout) error {
	p.IncrementVersion()
	model := models.PayoutModelFromDomain(p)
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

// FindByID finds a payout by its ID
func (r *GormPayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*payout.Payout, error) {
	var model models.PayoutModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByConversationID finds a payout by its gateway conversation ID
func (r *GormPayoutRepository) FindByConversationID(ctx context.Context, conversationID string) (*payout.Payout, error) {
	var model models.PayoutModel
	if err := dbFromContext(ctx, r.db).First(&model, "conversation_id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant lists payouts for a tenant, newest first
func (r *GormPayoutRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*payout.Payout, error) {
	var payoutModels []models.PayoutModel
	q := dbFromContext(ctx, r.db).
		Scopes(tenantscope.TenantScope(tenantID)).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		q = q.Limit(filter.PageSize).Offset((filter.Page - 1) * filter.PageSize)
	}
	if err := q.Find(&payoutModels).Error; err != nil {
		return nil, err
	}

	payouts := make([]*payout.Payout, len(payoutModels))
	for i := range payoutModels {
		payouts[i] = payoutModels[i].ToDomain()
	}
	return payouts, nil
}

var _ payout.Repository = (*GormPayoutRepository)(nil)
