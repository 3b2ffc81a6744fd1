package purchasing

import "github.com/shopspring/decimal"

// LineDraft is the single-slot edit buffer for one order line.
//
// Quantity and UnitPrice are nil while unset; a nil value falls back to the
// catalog default on commit. An explicit zero is kept as a real override.
type LineDraft struct {
	ProductID    int              `json:"product_id"`
	ProductName  string           `json:"product_name"`
	Quantity     *int             `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	EditingIndex *int             `json:"editing_index"`
}

func (d LineDraft) IsEditing() bool {
	return d.EditingIndex != nil
}

func (d *LineDraft) clearValues() {
	d.ProductName = ""
	d.Quantity = nil
	d.UnitPrice = nil
}

func (d *LineDraft) reset() {
	*d = LineDraft{}
}

func intPtr(v int) *int {
	return &v
}

func decimalPtr(v decimal.Decimal) *decimal.Decimal {
	return &v
}
