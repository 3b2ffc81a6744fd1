package purchasing_test

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int]purchasing.Product
	failures map[int]error
	calls    map[int]int
}

func newFakeCatalog(products ...purchasing.Product) *fakeCatalog {
	c := &fakeCatalog{
		products: map[int]purchasing.Product{},
		failures: map[int]error{},
		calls:    map[int]int{},
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) Get(ctx context.Context, productID int) (purchasing.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[productID]++
	if err := ctx.Err(); err != nil {
		return purchasing.Product{}, err
	}
	if err, ok := c.failures[productID]; ok {
		return purchasing.Product{}, err
	}
	p, ok := c.products[productID]
	if !ok {
		return purchasing.Product{}, purchasing.ErrProductNotFound
	}
	return p, nil
}

func (c *fakeCatalog) set(p purchasing.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

func (c *fakeCatalog) fail(productID int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[productID] = err
}

func (c *fakeCatalog) callCount(productID int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[productID]
}

type fakeSubmitter struct {
	orders []purchasing.PurchaseOrder
	err    error
}

func (s *fakeSubmitter) Submit(_ context.Context, order purchasing.PurchaseOrder) error {
	s.orders = append(s.orders, order)
	return s.err
}

var errBackendDown = errors.New("backend down")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(id int, name string, qty int, cost string) purchasing.Product {
	return purchasing.Product{
		ID:           id,
		Name:         name,
		Quantity:     qty,
		CostPrice:    dec(cost),
		MaterialName: "Cotton",
		ColorName:    "Red",
		ColorCode:    "#ff0000",
	}
}

func newTestDeps(catalog *fakeCatalog, submitter *fakeSubmitter) (purchasing.Deps, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return purchasing.Deps{
		Catalog:   catalog,
		Submitter: submitter,
		Suppliers: []purchasing.SupplierRef{{ID: 1, Name: "Acme Textiles"}},
		Logger:    logger,
	}, hook
}
