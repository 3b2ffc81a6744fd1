package models

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

// GetResource reads T from redis, falling back to the db and caching the row.
// The business in ctx must own the resource.
// (may return RecordNotFound error)
func GetResource[T Resource](ctx context.Context, id int, associations ...string) (*T, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	result, err := utils.RetrieveRedis[T](ctx, id)
	if err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "GetResource", "redis read failed, using db", id, err)
		result = nil
	}
	if result != nil {
		if (*result).GetBusinessId() != businessId {
			return nil, errors.New("cannot access resource owned by other business")
		}
		return result, nil
	}

	result, err = utils.FetchModel[T](ctx, businessId, id, associations...)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedis[T](ctx, result, id); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "GetResource", "redis write failed", id, err)
	}
	return result, nil
}

// ListAllResource lists ModelT rows of the business in ctx projected into
// AllModelT, cached as one list per business.
func ListAllResource[ModelT any, AllModelT any](ctx context.Context, cond string, args []any, orders ...string) ([]*AllModelT, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	results, err := utils.RetrieveRedisList[AllModelT](ctx, businessId)
	if err != nil {
		return nil, err
	}
	if results != nil {
		return results, nil
	}

	var model ModelT
	dbCtx := config.GetDB().WithContext(ctx).Model(&model).Where("business_id = ?", businessId)
	if cond != "" {
		dbCtx = dbCtx.Where(cond, args...)
	}
	for _, order := range orders {
		dbCtx = dbCtx.Order(order)
	}
	results = []*AllModelT{}
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList[AllModelT](ctx, results, businessId); err != nil {
		return nil, err
	}
	return results, nil
}
