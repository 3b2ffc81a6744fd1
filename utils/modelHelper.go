package utils

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
)

// FetchModel loads T by id within a business, preloading associations.
// A missing row is reported as ErrorRecordNotFound.
func FetchModel[T any](ctx context.Context, businessId string, id int, associations ...string) (*T, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	if err := dbCtx.First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// FetchAllModels loads every T of a business. Models with is_active only
// return active rows when activeOnly is set.
func FetchAllModels[T any](ctx context.Context, businessId string, activeOnly bool, associations ...string) ([]*T, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
