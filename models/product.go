package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

type Product struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	MaterialId   int             `gorm:"index;default:0" json:"material_id"`
	Material     *Material       `gorm:"foreignKey:MaterialId" json:"material,omitempty"`
	ColorId      int             `gorm:"index;default:0" json:"color_id"`
	Color        *Color          `gorm:"foreignKey:ColorId" json:"color,omitempty"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

var productAssociations = []string{"Material", "Color"}

func (p Product) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

// CatalogView flattens the product into the shape purchase composition reads.
func (p Product) CatalogView() purchasing.Product {
	view := purchasing.Product{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		CostPrice: p.CostPrice,
	}
	if p.Material != nil {
		view.MaterialName = p.Material.Name
	}
	if p.Color != nil {
		view.ColorName = p.Color.Name
		view.ColorCode = p.Color.Code
	}
	return view
}

// GetProduct reads through the redis cache. Inactive products are reported as
// not found.
func GetProduct(ctx context.Context, id int) (*Product, error) {
	product, err := GetResource[Product](ctx, id, productAssociations...)
	if err != nil {
		return nil, err
	}
	if !product.Active() {
		return nil, utils.ErrorRecordNotFound
	}
	return product, nil
}

// GetProductsByIds loads the active products among ids for the business in
// ctx. Missing ids are simply absent from the result.
func GetProductsByIds(ctx context.Context, ids []int) ([]*Product, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	var results []*Product
	if len(ids) == 0 {
		return results, nil
	}
	dbCtx := config.GetDB().WithContext(ctx).
		Where("business_id = ? AND is_active = ?", businessId, true).
		Where("id IN ?", utils.UniqueSlice(ids))
	for _, field := range productAssociations {
		dbCtx = dbCtx.Preload(field)
	}
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
