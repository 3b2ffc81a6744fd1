package purchasing

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const resolveConcurrency = 8

// InitEditMode loads a persisted purchase into an edit session. Non-line fields
// are copied as stored; each line is resolved against the catalog concurrently
// and keeps its persisted values when the lookup fails. Line order is preserved.
//
// The session is Ready once every lookup has settled. Cancelling ctx aborts the
// load and leaves the session Uninitialized.
func (s *Session) InitEditMode(ctx context.Context, persisted PurchaseOrder) error {
	if s.mode != ModeEdit || s.state != StateUninitialized {
		return ErrAlreadyInitialized
	}
	s.state = StateResolvingLines

	resolved := make([]OrderLine, len(persisted.Lines))
	copy(resolved, persisted.Lines)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, line := range persisted.Lines {
		g.Go(func() error {
			product, err := s.deps.Catalog.Get(gctx, line.ProductID)
			if err != nil {
				s.logger().WithFields(logrus.Fields{
					"module":      "purchasing",
					"purchase_id": persisted.ID,
					"product_id":  line.ProductID,
					"line":        i,
				}).Warn("keeping persisted line, product lookup failed: " + err.Error())
				return nil
			}
			resolved[i].ProductName = product.Name
			resolved[i].MaterialName = product.MaterialName
			resolved[i].ColorName = product.ColorName
			resolved[i].ColorCode = product.ColorCode
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.state = StateUninitialized
		return &DependencyError{Op: "resolve lines", Err: err}
	}

	s.purchaseID = persisted.ID
	s.form = persisted.Form()
	s.lines = resolved
	s.draft.reset()
	s.state = StateReady
	return nil
}
