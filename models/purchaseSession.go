package models

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

const (
	purchaseSessionKeyPrefix = "PurchaseSession:"

	// PurchaseSessionLockTTL is how long one request may hold a session.
	PurchaseSessionLockTTL = 30 * time.Second
)

// PurchaseSession is a composition session parked in redis between requests.
type PurchaseSession struct {
	ID         string              `json:"id"`
	BusinessId string              `json:"business_id"`
	UserId     int                 `json:"user_id"`
	Snapshot   purchasing.Snapshot `json:"snapshot"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func purchaseSessionKey(id string) string {
	return purchaseSessionKeyPrefix + id
}

// SavePurchaseSession stores the session and refreshes its TTL.
func SavePurchaseSession(ctx context.Context, session *PurchaseSession) error {
	if config.GetRedisDB() == nil {
		return errors.New("service not ready (redis not initialized)")
	}
	session.UpdatedAt = time.Now()
	return config.SetRedisObject(ctx, purchaseSessionKey(session.ID), session, config.PurchaseSessionTTL())
}

// LoadPurchaseSession returns ErrorRecordNotFound for unknown or expired
// sessions, and for sessions owned by another business.
func LoadPurchaseSession(ctx context.Context, id string) (*PurchaseSession, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	var session PurchaseSession
	exists, err := config.GetRedisObject(ctx, purchaseSessionKey(id), &session)
	if err != nil {
		return nil, err
	}
	if !exists || session.BusinessId != businessId {
		return nil, utils.ErrorRecordNotFound
	}
	return &session, nil
}

func DeletePurchaseSession(ctx context.Context, id string) error {
	return config.RemoveRedisKey(ctx, purchaseSessionKey(id))
}

// LockPurchaseSession serialises mutations of one session across requests.
func LockPurchaseSession(ctx context.Context, id string) (*redislock.Lock, error) {
	return utils.ObtainLock(ctx, "PurchaseSessionLock", id, PurchaseSessionLockTTL, "models", "LockPurchaseSession")
}
