package utils

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
)

var sequenceMutex sync.Mutex

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

// typeHasExpiration lists the models whose cache entries age out; the rest
// live until explicitly invalidated.
func typeHasExpiration(typeName string) bool {
	expirableTypes := map[string]bool{
		"Product":  true,
		"Material": true,
		"Color":    true,
	}
	return expirableTypes[typeName]
}

func cacheDuration(typeName string) time.Duration {
	if typeHasExpiration(typeName) {
		return config.CacheLifespan()
	}
	return 0
}

func itemKey[T any](id int) string {
	return GetTypeName[T]() + ":" + fmt.Sprint(id)
}

func listKey[T any](businessId string) string {
	if businessId == "" {
		return GetTypeName[T]() + "List"
	}
	return GetTypeName[T]() + "List:" + businessId
}

// StoreRedis caches obj under Type:id.
func StoreRedis[T any](ctx context.Context, obj *T, id int) error {
	return config.SetRedisObject(ctx, itemKey[T](id), obj, cacheDuration(GetTypeName[T]()))
}

// StoreRedisList caches a business's list under TypeList:businessId.
func StoreRedisList[T any](ctx context.Context, objs []*T, businessId string) error {
	return config.SetRedisObject(ctx, listKey[T](businessId), objs, cacheDuration(GetTypeName[T]()))
}

// RetrieveRedis returns nil when the item is not cached.
func RetrieveRedis[T any](ctx context.Context, id int) (*T, error) {
	var result T
	exists, err := config.GetRedisObject(ctx, itemKey[T](id), &result)
	if err != nil || !exists {
		return nil, err
	}
	return &result, nil
}

// RetrieveRedisList returns nil when the list is not cached.
func RetrieveRedisList[T any](ctx context.Context, businessId string) ([]*T, error) {
	var result []*T
	exists, err := config.GetRedisObject(ctx, listKey[T](businessId), &result)
	if err != nil || !exists {
		return nil, err
	}
	return result, nil
}

func RemoveRedisItem[T any](ctx context.Context, id int) error {
	return config.RemoveRedisKey(ctx, itemKey[T](id))
}

func RemoveRedisList[T any](ctx context.Context, businessId string) error {
	return config.RemoveRedisKey(ctx, listKey[T](businessId))
}

// GetSequence hands out the next sequence_no for T within a business. The
// redis counter is seeded from the table's max on first use, and numbers
// already taken in the table are skipped.
func GetSequence[T any](ctx context.Context, businessId string) (int64, error) {
	var model T
	sequenceMutex.Lock()
	defer sequenceMutex.Unlock()

	cacheKey := businessId + "-" + strings.ToLower(GetTypeName[T]()) + "_seq"
	db := config.GetDB()

	next := func() (int64, error) {
		seqNo, err := config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// 1 means the counter was just created, or redis is absent
		if seqNo > 1 {
			return seqNo, nil
		}
		var dbSeq *int64
		if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
			Where("business_id = ?", businessId).
			Scan(&dbSeq).Error; err != nil {
			return 0, err
		}
		seqNo = 1
		if dbSeq != nil {
			seqNo = *dbSeq + 1
		}
		if err := config.SetRedisObject(ctx, cacheKey, seqNo, 0); err != nil {
			return 0, err
		}
		return seqNo, nil
	}
	taken := func(seqNo int64) error {
		return ValidateUnique[T](ctx, businessId, "sequence_no", seqNo, 0)
	}
	return nextFreeSequence(ctx, next, taken)
}

// nextFreeSequence draws numbers from next until check accepts one. Only a
// duplicate moves on to the next number; any other failure is returned.
func nextFreeSequence(ctx context.Context, next func() (int64, error), check func(int64) error) (int64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		seqNo, err := next()
		if err != nil {
			return 0, err
		}
		err = check(seqNo)
		if err == nil {
			return seqNo, nil
		}
		if !errors.Is(err, ErrorDuplicate) {
			return 0, err
		}
	}
}
