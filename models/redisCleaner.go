package models

import (
	"context"

	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

type RedisCleaner interface {
	RemoveInstanceRedis(ctx context.Context) error // remove one
	RemoveAllRedis(ctx context.Context) error      // remove list if exists
}

// remove both item & list
func RemoveRedisBoth[T RedisCleaner](ctx context.Context, obj T) error {
	if err := obj.RemoveInstanceRedis(ctx); err != nil {
		return err
	}
	return obj.RemoveAllRedis(ctx)
}

func (obj Product) RemoveInstanceRedis(ctx context.Context) error {
	return utils.RemoveRedisItem[Product](ctx, obj.ID)
}

func (obj Product) RemoveAllRedis(ctx context.Context) error {
	return nil
}

func (obj Supplier) RemoveInstanceRedis(ctx context.Context) error {
	return utils.RemoveRedisItem[Supplier](ctx, obj.ID)
}

func (obj Supplier) RemoveAllRedis(ctx context.Context) error {
	return utils.RemoveRedisList[AllSupplier](ctx, obj.BusinessId)
}

func (obj Purchase) RemoveInstanceRedis(ctx context.Context) error {
	return utils.RemoveRedisItem[Purchase](ctx, obj.ID)
}

func (obj Purchase) RemoveAllRedis(ctx context.Context) error {
	return nil
}
