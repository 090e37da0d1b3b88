package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/biasharahub/backend/internal/domain/ledger"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/infrastructure/persistence/models"
	tenantscope "github.com/biasharahub/backend/internal/infrastructure/persistence/tenant"
)

// GormLedgerRepository implements ledger.Repository using GORM. The table is
// append-only; this repository issues inserts and reads, never updates.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Create appends a single immutable entry
func (r *GormLedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return dbFromContext(ctx, r.db).Create(model).Error
}

// SumBalance computes sum(credits) - sum(debits) for the tenant at read time
func (r *GormLedgerRepository) SumBalance(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Balance decimal.Decimal
	}
	err := dbFromContext(ctx, r.db).
		Model(&models.LedgerEntryModel{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount WHEN type = ? THEN -amount ELSE 0 END), 0) AS balance",
			ledger.EntryTypeCredit.String(), ledger.EntryTypeDebit.String()).
		Scopes(tenantscope.TenantScope(tenantID)).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Balance, nil
}

// FindByTenant lists entries for a tenant, newest first
func (r *GormLedgerRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*ledger.Entry, error) {
	var entryModels []models.LedgerEntryModel
	q := dbFromContext(ctx, r.db).
		Scopes(tenantscope.TenantScope(tenantID)).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		q = q.Limit(filter.PageSize).Offset((filter.Page - 1) * filter.PageSize)
	}
	if err := q.Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*ledger.Entry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries, nil
}

// FindByReference lists the entries recorded under a reference ID
func (r *GormLedgerRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, referenceID string) ([]*ledger.Entry, error) {
	var entryModels []models.LedgerEntryModel
	if err := dbFromContext(ctx, r.db).
		Scopes(tenantscope.TenantScope(tenantID)).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*ledger.Entry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries, nil
}

var _ ledger.Repository = (*GormLedgerRepository)(nil)
