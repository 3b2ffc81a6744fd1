package purchasing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Product is the catalog view of a product at lookup time.
type Product struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	MaterialName string          `json:"material_name"`
	ColorName    string          `json:"color_name"`
	ColorCode    string          `json:"color_code"`
}

// OrderLine is one committed line. The product fields are a snapshot taken at
// commit time and are not refreshed afterwards.
type OrderLine struct {
	ProductID    int             `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	ProductName  string          `json:"product_name"`
	MaterialName string          `json:"material_name"`
	ColorName    string          `json:"color_name"`
	ColorCode    string          `json:"color_code"`
}

// PurchaseForm holds the non-line fields of a purchase being composed.
type PurchaseForm struct {
	OrderNumber string          `json:"order_number" validate:"max=255"`
	OrderDate   time.Time       `json:"order_date" validate:"required"`
	SupplierID  int             `json:"supplier_id" validate:"gte=0"`
	Status      Status          `json:"status" validate:"required,oneof=pending completed cancelled"`
	Notes       string          `json:"notes" validate:"max=2000"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
}

// PurchaseOrder is the aggregate handed to the Submitter.
type PurchaseOrder struct {
	ID          int             `json:"id"`
	OrderNumber string          `json:"order_number"`
	OrderDate   time.Time       `json:"order_date"`
	SupplierID  int             `json:"supplier_id"`
	Status      Status          `json:"status"`
	Notes       string          `json:"notes"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []OrderLine     `json:"lines"`
}

func (po PurchaseOrder) Form() PurchaseForm {
	return PurchaseForm{
		OrderNumber: po.OrderNumber,
		OrderDate:   po.OrderDate,
		SupplierID:  po.SupplierID,
		Status:      po.Status,
		Notes:       po.Notes,
		AmountPaid:  po.AmountPaid,
	}
}

type SupplierRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Catalog resolves current product attributes. Implementations return
// ErrProductNotFound (possibly wrapped) for unknown products.
type Catalog interface {
	Get(ctx context.Context, productID int) (Product, error)
}

// Submitter persists a finalized purchase order.
type Submitter interface {
	Submit(ctx context.Context, order PurchaseOrder) error
}

type CatalogFunc func(ctx context.Context, productID int) (Product, error)

func (f CatalogFunc) Get(ctx context.Context, productID int) (Product, error) {
	return f(ctx, productID)
}

type SubmitterFunc func(ctx context.Context, order PurchaseOrder) error

func (f SubmitterFunc) Submit(ctx context.Context, order PurchaseOrder) error {
	return f(ctx, order)
}
