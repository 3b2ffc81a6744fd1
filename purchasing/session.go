// Package purchasing composes purchase orders line by line before they are
// handed to persistence.
//
// A Session owns one draft line and the ordered collection of committed lines.
// It is not safe for concurrent use; callers serialise access per session.
package purchasing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

type State string

const (
	StateUninitialized  State = "uninitialized"
	StateResolvingLines State = "resolving_lines"
	StateReady          State = "ready"
	StateClosed         State = "closed"
)

// Deps are the read-only collaborators injected into a session.
//
// Suppliers is the supplier directory; a nil slice disables the supplier check.
type Deps struct {
	Catalog   Catalog
	Submitter Submitter
	Suppliers []SupplierRef
	Logger    logrus.FieldLogger
}

type Session struct {
	deps       Deps
	mode       Mode
	state      State
	purchaseID int
	form       PurchaseForm
	draft      LineDraft
	lines      []OrderLine
	submitting bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewSession starts a session in create mode, ready for input.
func NewSession(deps Deps) *Session {
	return &Session{
		deps:  deps,
		mode:  ModeCreate,
		state: StateReady,
		form: PurchaseForm{
			OrderDate:  time.Now(),
			Status:     StatusPending,
			AmountPaid: decimal.Zero,
		},
	}
}

// NewEditSession starts a session in edit mode. It accepts no input until
// InitEditMode has completed.
func NewEditSession(deps Deps) *Session {
	return &Session{
		deps:  deps,
		mode:  ModeEdit,
		state: StateUninitialized,
	}
}

func (s *Session) Mode() Mode         { return s.mode }
func (s *Session) State() State       { return s.state }
func (s *Session) PurchaseID() int    { return s.purchaseID }
func (s *Session) Form() PurchaseForm { return s.form }
func (s *Session) Draft() LineDraft   { return s.draft }

// Lines returns a copy of the committed lines in display order.
func (s *Session) Lines() []OrderLine {
	return slices.Clone(s.lines)
}

// TotalAmount sums the committed line totals.
func (s *Session) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.TotalPrice)
	}
	return total
}

func (s *Session) logger() logrus.FieldLogger {
	if s.deps.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.deps.Logger
}

func (s *Session) checkMutable() error {
	switch s.state {
	case StateReady:
		if s.submitting {
			return ErrSubmitInProgress
		}
		return nil
	case StateClosed:
		return ErrSessionClosed
	default:
		return ErrSessionNotReady
	}
}

// SetForm replaces the non-line fields. Amount paid is checked against the
// total only on Submit.
func (s *Session) SetForm(form PurchaseForm) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	s.form = form
	return nil
}

// SelectProduct points the draft at productID and, when no line is being
// edited, seeds quantity and price from the catalog. A failed lookup clears
// the draft values and is returned as a DependencyError; the selection stays.
func (s *Session) SelectProduct(ctx context.Context, productID int) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if productID < 0 {
		return ErrNegativeValue
	}
	s.draft.ProductID = productID
	if productID == 0 {
		return nil
	}

	product, err := s.deps.Catalog.Get(ctx, productID)
	if err != nil {
		s.logger().WithFields(logrus.Fields{
			"module":     "purchasing",
			"product_id": productID,
		}).Warn("product lookup failed: " + err.Error())
		s.draft.clearValues()
		return &DependencyError{Op: "lookup product", Err: err}
	}

	s.draft.ProductName = product.Name
	if !s.draft.IsEditing() {
		s.draft.Quantity = intPtr(product.Quantity)
		s.draft.UnitPrice = decimalPtr(product.CostPrice)
	}
	return nil
}

func (s *Session) SetDraftQuantity(quantity int) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if quantity < 0 {
		return ErrNegativeValue
	}
	s.draft.Quantity = intPtr(quantity)
	return nil
}

func (s *Session) SetDraftUnitPrice(price decimal.Decimal) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if price.IsNegative() {
		return ErrNegativeValue
	}
	s.draft.UnitPrice = decimalPtr(price)
	return nil
}

// CancelDraft discards the draft, including any in-progress edit.
func (s *Session) CancelDraft() error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	s.draft.reset()
	return nil
}

func (s *Session) indexOf(productID int) int {
	return slices.IndexFunc(s.lines, func(line OrderLine) bool {
		return line.ProductID == productID
	})
}

// Commit turns the draft into an order line, replacing the edited line or
// appending a new one. The product is fetched again so the snapshot reflects
// the catalog, not the draft.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	productID := s.draft.ProductID
	if productID == 0 {
		return ErrNoProductSelected
	}
	if idx := s.indexOf(productID); idx >= 0 {
		if !s.draft.IsEditing() || *s.draft.EditingIndex != idx {
			return ErrDuplicateProduct
		}
	}

	product, err := s.deps.Catalog.Get(ctx, productID)
	if err != nil {
		return &DependencyError{Op: "lookup product", Err: err}
	}

	quantity := product.Quantity
	if s.draft.Quantity != nil {
		quantity = *s.draft.Quantity
	}
	unitPrice := product.CostPrice
	if s.draft.UnitPrice != nil {
		unitPrice = *s.draft.UnitPrice
	}

	line := OrderLine{
		ProductID:    product.ID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		TotalPrice:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		ProductName:  product.Name,
		MaterialName: product.MaterialName,
		ColorName:    product.ColorName,
		ColorCode:    product.ColorCode,
	}
	// catalogs keyed by something other than the requested id still commit under it
	if line.ProductID == 0 {
		line.ProductID = productID
	}

	if s.draft.IsEditing() {
		s.lines[*s.draft.EditingIndex] = line
	} else {
		s.lines = append(s.lines, line)
	}
	s.draft.reset()
	return nil
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.lines) {
		return &IndexError{Index: index, Length: len(s.lines)}
	}
	return nil
}

// EditLine loads the line at index into the draft. The line stays in place
// until the draft is committed.
func (s *Session) EditLine(index int) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if err := s.checkIndex(index); err != nil {
		return err
	}
	line := s.lines[index]
	s.draft = LineDraft{
		ProductID:    line.ProductID,
		ProductName:  line.ProductName,
		Quantity:     intPtr(line.Quantity),
		UnitPrice:    decimalPtr(line.UnitPrice),
		EditingIndex: intPtr(index),
	}
	return nil
}

// RemoveLine deletes the line at index. An edit of that line is abandoned; an
// edit of a later line follows it to its new position.
func (s *Session) RemoveLine(index int) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.lines = slices.Delete(s.lines, index, index+1)

	if s.draft.IsEditing() {
		switch editing := *s.draft.EditingIndex; {
		case editing == index:
			s.draft.reset()
		case editing > index:
			s.draft.EditingIndex = intPtr(editing - 1)
		}
	}
	return nil
}

func (s *Session) validateForm() error {
	if s.form.AmountPaid.IsNegative() {
		return ErrNegativeValue
	}
	if err := validate.Struct(s.form); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fe := fieldErrors[0]
			return ValidationError{Reason: fmt.Sprintf("invalid %s (%s)", fe.Field(), fe.Tag())}
		}
		return ValidationError{Reason: err.Error()}
	}
	if s.form.SupplierID != 0 && s.deps.Suppliers != nil {
		known := slices.ContainsFunc(s.deps.Suppliers, func(ref SupplierRef) bool {
			return ref.ID == s.form.SupplierID
		})
		if !known {
			return ErrUnknownSupplier
		}
	}
	return nil
}

// Submit validates the order and hands it to the Submitter. On success the
// session is closed and the submitted order returned; on failure every field
// is kept so the caller can retry.
func (s *Session) Submit(ctx context.Context) (PurchaseOrder, error) {
	if err := s.checkMutable(); err != nil {
		return PurchaseOrder{}, err
	}
	if len(s.lines) == 0 {
		return PurchaseOrder{}, ErrNoLines
	}
	total := s.TotalAmount()
	if s.form.AmountPaid.GreaterThan(total) {
		return PurchaseOrder{}, ErrAmountPaidExceedsTotal
	}
	if err := s.validateForm(); err != nil {
		return PurchaseOrder{}, err
	}

	order := PurchaseOrder{
		ID:          s.purchaseID,
		OrderNumber: s.form.OrderNumber,
		OrderDate:   s.form.OrderDate,
		SupplierID:  s.form.SupplierID,
		Status:      s.form.Status,
		Notes:       s.form.Notes,
		AmountPaid:  s.form.AmountPaid,
		TotalAmount: total,
		Lines:       slices.Clone(s.lines),
	}

	s.submitting = true
	err := s.deps.Submitter.Submit(ctx, order)
	s.submitting = false
	if err != nil {
		return PurchaseOrder{}, &DependencyError{Op: "submit purchase", Err: err}
	}

	s.Discard()
	return order, nil
}

// Discard closes the session without submitting.
func (s *Session) Discard() {
	s.state = StateClosed
	s.draft.reset()
	s.lines = nil
}
