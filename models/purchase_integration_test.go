package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/models"
	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

func TestPurchaseLifecycle(t *testing.T) {
	requireIntegration(t)
	startBackends(t)
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetBusinessIdInContext(ctx, "biz-int")
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	db := config.GetDB().WithContext(ctx)

	cotton := models.Material{BusinessId: "biz-int", Name: "Cotton", IsActive: utils.NewTrue()}
	require.NoError(t, db.Create(&cotton).Error)
	shirt := models.Product{BusinessId: "biz-int", Name: "Shirt", Quantity: 10, CostPrice: decimal.NewFromInt(5), MaterialId: cotton.ID, IsActive: utils.NewTrue()}
	trousers := models.Product{BusinessId: "biz-int", Name: "Trousers", Quantity: 3, CostPrice: decimal.NewFromInt(20), IsActive: utils.NewTrue()}
	retired := models.Product{BusinessId: "biz-int", Name: "Retired", IsActive: utils.NewTrue()}
	require.NoError(t, db.Create(&shirt).Error)
	require.NoError(t, db.Create(&trousers).Error)
	require.NoError(t, db.Create(&retired).Error)
	require.NoError(t, db.Model(&retired).Update("is_active", false).Error)
	acme := models.Supplier{BusinessId: "biz-int", Name: "Acme Textiles", IsActive: utils.NewTrue()}
	require.NoError(t, db.Create(&acme).Error)

	t.Run("catalog skips inactive products", func(t *testing.T) {
		found, err := models.GetProductsByIds(ctx, []int{shirt.ID, retired.ID, 9999})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Cotton", found[0].CatalogView().MaterialName)

		_, err = models.GetProduct(ctx, retired.ID)
		assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
	})

	t.Run("supplier directory", func(t *testing.T) {
		dir, err := models.SupplierDirectory(ctx)
		require.NoError(t, err)
		assert.Equal(t, []purchasing.SupplierRef{{ID: acme.ID, Name: "Acme Textiles"}}, dir)
	})

	input := &models.NewPurchase{
		OrderDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		SupplierId: acme.ID,
		Status:     models.PurchaseStatusPending,
		AmountPaid: decimal.NewFromInt(90),
		Lines: []models.NewPurchaseLine{
			{ProductId: trousers.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(20), ProductName: "Trousers"},
			{ProductId: shirt.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(5), ProductName: "Shirt", MaterialName: "Cotton"},
		},
	}
	created, err := models.CreatePurchase(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "PO-1", created.OrderNumber)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(90)))

	var histories int64
	require.NoError(t, db.Model(&models.History{}).
		Where("business_id = ? AND reference_id = ? AND reference_type = ?", "biz-int", created.ID, "purchases").
		Count(&histories).Error)
	assert.EqualValues(t, 1, histories)

	loaded, err := models.GetPurchase(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, trousers.ID, loaded.Lines[0].ProductId)
	assert.Equal(t, "Cotton", loaded.Lines[1].MaterialName)

	t.Run("update replaces lines", func(t *testing.T) {
		order := loaded.ToOrder()
		order.Lines = order.Lines[1:]
		order.AmountPaid = decimal.NewFromInt(50)
		update, err := models.NewPurchaseFromOrder(order)
		require.NoError(t, err)

		updated, err := models.UpdatePurchase(ctx, created.ID, update)
		require.NoError(t, err)
		assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(50)))

		reloaded, err := models.GetPurchase(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Lines, 1)
		assert.Equal(t, shirt.ID, reloaded.Lines[0].ProductId)
		assert.Equal(t, "PO-1", reloaded.OrderNumber)
	})

	t.Run("other business cannot read", func(t *testing.T) {
		other := utils.SetBusinessIdInContext(ctx, "biz-other")
		_, err := models.GetPurchase(other, created.ID)
		assert.Error(t, err)
	})

	t.Run("strict editing blocks completed purchases", func(t *testing.T) {
		t.Setenv("STRICT_PURCHASE_EDITING", "true")
		order := loaded.ToOrder()
		order.Status = purchasing.StatusCompleted
		complete, err := models.NewPurchaseFromOrder(order)
		require.NoError(t, err)
		_, err = models.UpdatePurchase(ctx, created.ID, complete)
		require.NoError(t, err)

		_, err = models.UpdatePurchase(ctx, created.ID, complete)
		assert.Error(t, err)
	})
}

func TestPurchaseSessionStore(t *testing.T) {
	requireIntegration(t)
	startBackends(t)

	ctx := utils.SetBusinessIdInContext(context.Background(), "biz-int")
	session := &models.PurchaseSession{
		ID:         "sess-1",
		BusinessId: "biz-int",
		Snapshot: purchasing.Snapshot{
			Mode:  purchasing.ModeCreate,
			State: purchasing.StateReady,
			Lines: []purchasing.OrderLine{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(5), TotalPrice: decimal.NewFromInt(10)}},
		},
	}
	require.NoError(t, models.SavePurchaseSession(ctx, session))

	loaded, err := models.LoadPurchaseSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded.Snapshot.Lines, 1)
	assert.True(t, loaded.Snapshot.Lines[0].TotalPrice.Equal(decimal.NewFromInt(10)))

	_, err = models.LoadPurchaseSession(utils.SetBusinessIdInContext(ctx, "biz-other"), "sess-1")
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))

	lock, err := models.LockPurchaseSession(ctx, "sess-1")
	require.NoError(t, err)
	_, err = models.LockPurchaseSession(ctx, "sess-1")
	assert.ErrorIs(t, err, utils.ErrorLockNotObtained)
	require.NoError(t, lock.Release(ctx))

	require.NoError(t, models.DeletePurchaseSession(ctx, "sess-1"))
	_, err = models.LoadPurchaseSession(ctx, "sess-1")
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}
