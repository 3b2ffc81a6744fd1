package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/middlewares"
	"bitbucket.org/mmdatafocus/inventory_backend/models"
	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
	"bitbucket.org/mmdatafocus/inventory_backend/workflow"
)

// catalogLookup resolves products through the request's dataloader, so the
// concurrent lookups of an edit session become one query.
func catalogLookup(ctx context.Context, productID int) (purchasing.Product, error) {
	product, err := middlewares.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return purchasing.Product{}, purchasing.ErrProductNotFound
		}
		return purchasing.Product{}, err
	}
	if product == nil || !product.Active() {
		return purchasing.Product{}, purchasing.ErrProductNotFound
	}
	return product.CatalogView(), nil
}

// submitPurchase stores the order, creating it when it has no id yet, and
// announces the write.
func submitPurchase(ctx context.Context, order purchasing.PurchaseOrder) error {
	ctx, span := tracer.Start(ctx, "purchase.submit", trace.WithAttributes(
		attribute.Int("purchase.id", order.ID),
		attribute.Int("purchase.lines", len(order.Lines)),
	))
	defer span.End()

	input, err := models.NewPurchaseFromOrder(order)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if order.ID == 0 {
		purchase, err := models.CreatePurchase(ctx, input)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		workflow.PublishPurchaseEvent(ctx, models.HistoryActionCreate, purchase, nil)
		return nil
	}

	old, err := models.GetPurchase(ctx, order.ID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	purchase, err := models.UpdatePurchase(ctx, order.ID, input)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	workflow.PublishPurchaseEvent(ctx, models.HistoryActionUpdate, purchase, old)
	return nil
}

// sessionDeps wires a composition session to the database-backed catalog,
// submitter and supplier list.
func sessionDeps(ctx context.Context) (purchasing.Deps, error) {
	suppliers, err := models.SupplierDirectory(ctx)
	if err != nil {
		return purchasing.Deps{}, err
	}
	return purchasing.Deps{
		Catalog:   purchasing.CatalogFunc(catalogLookup),
		Submitter: purchasing.SubmitterFunc(submitPurchase),
		Suppliers: suppliers,
		Logger:    requestLogger(ctx),
	}, nil
}

func requestLogger(ctx context.Context) logrus.FieldLogger {
	fields := logrus.Fields{}
	if businessId, ok := utils.GetBusinessIdFromContext(ctx); ok {
		fields["business_id"] = businessId
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		fields["correlation_id"] = correlationId
	}
	return config.GetLogger().WithFields(fields)
}
