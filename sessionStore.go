package main

import (
	"context"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/models"
)

// sessionStore parks composition sessions between requests.
type sessionStore interface {
	Lock(ctx context.Context, id string) (unlock func(), err error)
	Load(ctx context.Context, id string) (*models.PurchaseSession, error)
	Save(ctx context.Context, session *models.PurchaseSession) error
	Delete(ctx context.Context, id string) error
}

type redisSessionStore struct{}

func (redisSessionStore) Lock(ctx context.Context, id string) (func(), error) {
	lock, err := models.LockPurchaseSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			config.LogError(config.GetLogger(), "main", "redisSessionStore.Lock", "release lock", id, err)
		}
	}, nil
}

func (redisSessionStore) Load(ctx context.Context, id string) (*models.PurchaseSession, error) {
	return models.LoadPurchaseSession(ctx, id)
}

func (redisSessionStore) Save(ctx context.Context, session *models.PurchaseSession) error {
	return models.SavePurchaseSession(ctx, session)
}

func (redisSessionStore) Delete(ctx context.Context, id string) error {
	return models.DeletePurchaseSession(ctx, id)
}
