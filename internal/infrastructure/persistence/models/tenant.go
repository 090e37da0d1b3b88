package models

import (
	"github.com/biasharahub/backend/internal/domain/tenant"
)

// TenantModel is the persistence model for the Tenant aggregate. Tenants
// live in the shared partition; they are the routing table for everything
// else.
type TenantModel struct {
	AggregateModel
	SchemaName               string `gorm:"type:varchar(63);not null;uniqueIndex"`
	Name                     string `gorm:"type:varchar(200);not null"`
	Domain                   string `gorm:"type:varchar(253);index"`
	Active                   bool   `gorm:"not null;default:true;index"`
	DefaultPayoutMethod      string `gorm:"type:varchar(32)"`
	DefaultPayoutDestination string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *tenant.Tenant {
	return &tenant.Tenant{
		BaseAggregateRoot:        m.ToDomainAggregateRoot(),
		SchemaName:               m.SchemaName,
		Name:                     m.Name,
		Domain:                   m.Domain,
		Active:                   m.Active,
		DefaultPayoutMethod:      tenant.PayoutMethod(m.DefaultPayoutMethod),
		DefaultPayoutDestination: m.DefaultPayoutDestination,
	}
}

// TenantModelFromDomain converts a domain Tenant to its persistence model
func TenantModelFromDomain(t *tenant.Tenant) *TenantModel {
	m := &TenantModel{
		SchemaName:               t.SchemaName,
		Name:                     t.Name,
		Domain:                   t.Domain,
		Active:                   t.Active,
		DefaultPayoutMethod:      t.DefaultPayoutMethod.String(),
		DefaultPayoutDestination: t.DefaultPayoutDestination,
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m
}
