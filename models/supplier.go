package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
)

type Supplier struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100" json:"email"`
	Phone      string    `gorm:"size:20" json:"phone"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AllSupplier is the cached directory entry.
type AllSupplier struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ListAllSuppliers returns the active suppliers of the business in ctx.
func ListAllSuppliers(ctx context.Context) ([]*AllSupplier, error) {
	return ListAllResource[Supplier, AllSupplier](ctx, "is_active = ?", []any{true}, "name")
}

// SupplierDirectory is the read-only supplier list handed to a composition session.
func SupplierDirectory(ctx context.Context) ([]purchasing.SupplierRef, error) {
	suppliers, err := ListAllSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]purchasing.SupplierRef, 0, len(suppliers))
	for _, s := range suppliers {
		refs = append(refs, purchasing.SupplierRef{ID: s.ID, Name: s.Name})
	}
	return refs, nil
}
