package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/models"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

const purchaseReferenceType = "purchases"

// publish is swapped out in tests.
var publish = config.PublishPurchaseEvent

// NewPurchaseEvent builds the pubsub envelope for a purchase write. oldPurchase
// is nil on create.
func NewPurchaseEvent(ctx context.Context, action models.HistoryAction, purchase *models.Purchase, oldPurchase *models.Purchase) (config.PubSubMessage, error) {
	if purchase == nil {
		return config.PubSubMessage{}, errors.New("purchase is required")
	}
	newObj, err := json.Marshal(purchase)
	if err != nil {
		return config.PubSubMessage{}, err
	}
	var oldObj []byte
	if oldPurchase != nil {
		if oldObj, err = json.Marshal(oldPurchase); err != nil {
			return config.PubSubMessage{}, err
		}
	}
	correlationId, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || correlationId == "" {
		correlationId = uuid.NewString()
	}
	return config.PubSubMessage{
		BusinessId:          purchase.BusinessId,
		TransactionDateTime: purchase.OrderDate,
		ReferenceId:         purchase.ID,
		ReferenceType:       purchaseReferenceType,
		Action:              string(action),
		OldObj:              oldObj,
		NewObj:              newObj,
		CorrelationId:       correlationId,
	}, nil
}

// PublishPurchaseEvent announces a committed purchase write. Publishing is
// best effort: the purchase is already stored, so failures are only logged.
func PublishPurchaseEvent(ctx context.Context, action models.HistoryAction, purchase *models.Purchase, oldPurchase *models.Purchase) {
	if !config.PubSubEnabled() {
		return
	}
	logger := config.GetLogger()

	msg, err := NewPurchaseEvent(ctx, action, purchase, oldPurchase)
	if err != nil {
		config.LogError(logger, "workflow", "PublishPurchaseEvent", "build message", nil, err)
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	msgId, err := publish(publishCtx, msg)
	if err != nil {
		config.LogError(logger, "workflow", "PublishPurchaseEvent", "publish", msg.ReferenceId, err)
		return
	}
	logger.WithFields(logrus.Fields{
		"module":         "workflow",
		"reference_id":   msg.ReferenceId,
		"action":         msg.Action,
		"message_id":     msgId,
		"correlation_id": msg.CorrelationId,
	}).Debug("purchase event published")
}
