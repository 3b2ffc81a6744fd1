package models

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

const purchaseNumberPrefix = "PO-"

type Purchase struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BusinessId  string          `gorm:"index;not null" json:"business_id"`
	OrderNumber string          `gorm:"size:255;not null" json:"order_number"`
	SequenceNo  decimal.Decimal `gorm:"type:decimal(15);not null" json:"sequence_no"`
	OrderDate   time.Time       `gorm:"not null" json:"order_date"`
	SupplierId  int             `gorm:"index;default:0" json:"supplier_id"`
	Status      PurchaseStatus  `gorm:"type:enum('pending','completed','cancelled');not null;default:'pending'" json:"status"`
	Notes       string          `gorm:"type:text" json:"notes"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_paid"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Lines       []PurchaseLine  `gorm:"foreignKey:PurchaseId" json:"lines"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// PurchaseLine keeps the product snapshot taken when the line was committed.
type PurchaseLine struct {
	ID           int             `gorm:"primary_key" json:"id"`
	PurchaseId   int             `gorm:"index;not null" json:"purchase_id"`
	SortOrder    int             `gorm:"not null;default:0" json:"sort_order"`
	ProductId    int             `gorm:"index;not null" json:"product_id"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_price"`
	ProductName  string          `gorm:"size:100" json:"product_name"`
	MaterialName string          `gorm:"size:100" json:"material_name"`
	ColorName    string          `gorm:"size:100" json:"color_name"`
	ColorCode    string          `gorm:"size:20" json:"color_code"`
}

type NewPurchase struct {
	OrderNumber string            `json:"order_number" validate:"max=255"`
	OrderDate   time.Time         `json:"order_date" validate:"required"`
	SupplierId  int               `json:"supplier_id" validate:"gte=0"`
	Status      PurchaseStatus    `json:"status" validate:"required"`
	Notes       string            `json:"notes"`
	AmountPaid  decimal.Decimal   `json:"amount_paid"`
	Lines       []NewPurchaseLine `json:"lines" validate:"required,min=1,dive"`
}

type NewPurchaseLine struct {
	ProductId    int             `json:"product_id" validate:"required,gt=0"`
	Quantity     int             `json:"quantity" validate:"gte=0"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ProductName  string          `json:"product_name"`
	MaterialName string          `json:"material_name"`
	ColorName    string          `json:"color_name"`
	ColorCode    string          `json:"color_code"`
}

// TotalAmount recomputes the order total from the lines.
func (input NewPurchase) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range input.Lines {
		total = total.Add(line.totalPrice())
	}
	return total
}

func (line NewPurchaseLine) totalPrice() decimal.Decimal {
	return line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

func (input NewPurchase) lines() []PurchaseLine {
	lines := make([]PurchaseLine, 0, len(input.Lines))
	for i, line := range input.Lines {
		lines = append(lines, PurchaseLine{
			SortOrder:    i,
			ProductId:    line.ProductId,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			TotalPrice:   line.totalPrice(),
			ProductName:  line.ProductName,
			MaterialName: line.MaterialName,
			ColorName:    line.ColorName,
			ColorCode:    line.ColorCode,
		})
	}
	return lines
}

// checkInput runs the checks that need no database.
func (input NewPurchase) checkInput() error {
	if len(input.Lines) == 0 {
		return errors.New("at least one product required")
	}
	if !input.Status.IsValid() {
		return errors.New("invalid purchase status")
	}
	if input.AmountPaid.IsNegative() {
		return errors.New("amount paid must be 0 or more")
	}
	seen := make(map[int]bool, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductId <= 0 {
			return errors.New("product is required")
		}
		if seen[line.ProductId] {
			return errors.New("duplicate product")
		}
		seen[line.ProductId] = true
		if line.Quantity < 0 || line.UnitPrice.IsNegative() {
			return errors.New("quantity and unit price must be 0 or more")
		}
	}
	if input.AmountPaid.GreaterThan(input.TotalAmount()) {
		return errors.New("amount paid exceeds total")
	}
	return nil
}

func (input NewPurchase) validate(ctx context.Context, businessId string, _ int) error {
	if err := input.checkInput(); err != nil {
		return err
	}
	if input.SupplierId > 0 {
		if err := utils.ValidateResourceId[Supplier](ctx, businessId, input.SupplierId); err != nil {
			return errors.New("supplier not found")
		}
	}
	productIds := make([]int, 0, len(input.Lines))
	for _, line := range input.Lines {
		productIds = append(productIds, line.ProductId)
	}
	if err := utils.ValidateResourcesId[Product](ctx, businessId, productIds); err != nil {
		return errors.New("product not found")
	}
	return nil
}

func CreatePurchase(ctx context.Context, input *NewPurchase) (*Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	purchase := Purchase{
		BusinessId:  businessId,
		OrderNumber: strings.TrimSpace(input.OrderNumber),
		OrderDate:   input.OrderDate,
		SupplierId:  input.SupplierId,
		Status:      input.Status,
		Notes:       input.Notes,
		AmountPaid:  input.AmountPaid,
		TotalAmount: input.TotalAmount(),
		Lines:       input.lines(),
	}

	seqNo, err := utils.GetSequence[Purchase](ctx, businessId)
	if err != nil {
		return nil, err
	}
	purchase.SequenceNo = decimal.NewFromInt(seqNo)
	if purchase.OrderNumber == "" {
		purchase.OrderNumber = purchaseNumberPrefix + fmt.Sprint(seqNo)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		return createHistory(tx, HistoryActionCreate, purchase.ID, "purchases", nil, purchase,
			fmt.Sprintf("Purchase %s created for %v.", purchase.OrderNumber, purchase.TotalAmount))
	})
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(ctx, purchase); err != nil {
		config.LogError(config.GetLogger(), "models", "CreatePurchase", "clear cache", purchase.ID, err)
	}
	return &purchase, nil
}

// UpdatePurchase replaces the purchase fields and its lines. With strict
// editing on, completed and cancelled purchases are immutable.
func UpdatePurchase(ctx context.Context, id int, input *NewPurchase) (*Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	oldPurchase, err := utils.FetchModel[Purchase](ctx, businessId, id, "Lines")
	if err != nil {
		return nil, err
	}
	if config.StrictPurchaseEditing() && oldPurchase.Status.IsFinal() {
		return nil, fmt.Errorf("cannot edit %s purchase", oldPurchase.Status)
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	purchase := *oldPurchase
	purchase.Lines = nil
	purchase.OrderDate = input.OrderDate
	purchase.SupplierId = input.SupplierId
	purchase.Status = input.Status
	purchase.Notes = input.Notes
	purchase.AmountPaid = input.AmountPaid
	purchase.TotalAmount = input.TotalAmount()
	if number := strings.TrimSpace(input.OrderNumber); number != "" {
		purchase.OrderNumber = number
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ?", id).Delete(&PurchaseLine{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Purchase{ID: id}).Select(
			"OrderNumber", "OrderDate", "SupplierId", "Status", "Notes", "AmountPaid", "TotalAmount",
		).Updates(&purchase).Error; err != nil {
			return err
		}
		lines := input.lines()
		for i := range lines {
			lines[i].PurchaseId = id
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		purchase.Lines = lines
		return createHistory(tx, HistoryActionUpdate, id, "purchases", oldPurchase, purchase,
			fmt.Sprintf("Purchase %s updated.", purchase.OrderNumber))
	})
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(ctx, purchase); err != nil {
		config.LogError(config.GetLogger(), "models", "UpdatePurchase", "clear cache", id, err)
	}
	return &purchase, nil
}

// GetPurchase returns the purchase with its lines in their original order.
func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	purchase, err := GetResource[Purchase](ctx, id, "Lines")
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(purchase.Lines, func(a, b PurchaseLine) int {
		return a.SortOrder - b.SortOrder
	})
	return purchase, nil
}

// ToOrder converts the stored purchase into the composition aggregate.
func (p Purchase) ToOrder() purchasing.PurchaseOrder {
	order := purchasing.PurchaseOrder{
		ID:          p.ID,
		OrderNumber: p.OrderNumber,
		OrderDate:   p.OrderDate,
		SupplierID:  p.SupplierId,
		Status:      purchasing.Status(p.Status),
		Notes:       p.Notes,
		AmountPaid:  p.AmountPaid,
		TotalAmount: p.TotalAmount,
		Lines:       make([]purchasing.OrderLine, 0, len(p.Lines)),
	}
	for _, line := range p.Lines {
		order.Lines = append(order.Lines, purchasing.OrderLine{
			ProductID:    line.ProductId,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			TotalPrice:   line.TotalPrice,
			ProductName:  line.ProductName,
			MaterialName: line.MaterialName,
			ColorName:    line.ColorName,
			ColorCode:    line.ColorCode,
		})
	}
	return order
}

// NewPurchaseFromOrder builds the persistence input for a submitted order.
func NewPurchaseFromOrder(order purchasing.PurchaseOrder) (*NewPurchase, error) {
	status, err := PurchaseStatusFrom(order.Status)
	if err != nil {
		return nil, err
	}
	input := &NewPurchase{
		OrderNumber: order.OrderNumber,
		OrderDate:   order.OrderDate,
		SupplierId:  order.SupplierID,
		Status:      status,
		Notes:       order.Notes,
		AmountPaid:  order.AmountPaid,
		Lines:       make([]NewPurchaseLine, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		input.Lines = append(input.Lines, NewPurchaseLine{
			ProductId:    line.ProductID,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			ProductName:  line.ProductName,
			MaterialName: line.MaterialName,
			ColorName:    line.ColorName,
			ColorCode:    line.ColorCode,
		})
	}
	return input, nil
}
