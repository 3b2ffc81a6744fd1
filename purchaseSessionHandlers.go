package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/models"
	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

var errPurchaseLocked = errors.New("purchase can no longer be edited")

type purchaseSessionHandler struct {
	store        sessionStore
	deps         func(ctx context.Context) (purchasing.Deps, error)
	loadPurchase func(ctx context.Context, id int) (*models.Purchase, error)
	strictEdits  func() bool
	// opTimeout bounds each locked operation so it settles before the lock expires.
	opTimeout time.Duration
}

func newPurchaseSessionHandler() *purchaseSessionHandler {
	return &purchaseSessionHandler{
		store:        redisSessionStore{},
		deps:         sessionDeps,
		loadPurchase: models.GetPurchase,
		strictEdits:  config.StrictPurchaseEditing,
		opTimeout:    models.PurchaseSessionLockTTL - 10*time.Second,
	}
}

func (h *purchaseSessionHandler) register(r gin.IRouter) {
	r.POST("/purchases/:id/sessions", h.startEdit)

	g := r.Group("/purchase-sessions")
	g.POST("", h.startCreate)
	g.GET("/:sid", h.get)
	g.DELETE("/:sid", h.discard)
	g.PUT("/:sid/form", h.setForm)
	g.PUT("/:sid/draft/product", h.selectProduct)
	g.PUT("/:sid/draft", h.setDraft)
	g.POST("/:sid/draft/commit", h.commit)
	g.POST("/:sid/draft/cancel", h.cancelDraft)
	g.POST("/:sid/lines/:index/edit", h.editLine)
	g.DELETE("/:sid/lines/:index", h.removeLine)
	g.POST("/:sid/submit", h.submit)
}

type sessionResponse struct {
	ID string `json:"id"`
	purchasing.Snapshot
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func newSessionResponse(id string, session *purchasing.Session) sessionResponse {
	return sessionResponse{
		ID:          id,
		Snapshot:    session.Snapshot(),
		TotalAmount: session.TotalAmount(),
	}
}

type formRequest struct {
	OrderNumber string `json:"order_number"`
	OrderDate   string `json:"order_date"`
	SupplierID  int    `json:"supplier_id"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	AmountPaid  string `json:"amount_paid"`
}

// toForm parses the user-entered values. Range checks are left to the session.
func (req formRequest) toForm() (purchasing.PurchaseForm, error) {
	form := purchasing.PurchaseForm{
		OrderNumber: strings.TrimSpace(req.OrderNumber),
		SupplierID:  req.SupplierID,
		Status:      purchasing.Status(strings.TrimSpace(req.Status)),
		Notes:       req.Notes,
		AmountPaid:  decimal.Zero,
	}
	if raw := strings.TrimSpace(req.OrderDate); raw != "" {
		date, err := parseOrderDate(raw)
		if err != nil {
			return form, purchasing.ValidationError{Reason: "invalid order_date"}
		}
		form.OrderDate = date
	}
	if strings.TrimSpace(req.AmountPaid) != "" {
		amount, err := utils.ParseDecimal(req.AmountPaid)
		if err != nil {
			return form, purchasing.ValidationError{Reason: "invalid amount_paid"}
		}
		form.AmountPaid = amount
	}
	return form, nil
}

func parseOrderDate(raw string) (time.Time, error) {
	if date, err := time.Parse(time.DateOnly, raw); err == nil {
		return date, nil
	}
	return time.Parse(time.RFC3339, raw)
}

type selectProductRequest struct {
	ProductID int `json:"product_id" binding:"gte=0"`
}

type draftRequest struct {
	Quantity  *int    `json:"quantity" binding:"omitempty,gte=0"`
	UnitPrice *string `json:"unit_price"`
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, utils.ProcessValidationErrors(err))
		return false
	}
	return true
}

func (h *purchaseSessionHandler) startCreate(c *gin.Context) {
	ctx := c.Request.Context()
	deps, err := h.deps(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	session := purchasing.NewSession(deps)

	id, err := h.park(ctx, uuid.NewString(), session)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(id, session))
}

func (h *purchaseSessionHandler) startEdit(c *gin.Context) {
	ctx := c.Request.Context()
	purchaseId, err := strconv.Atoi(c.Param("id"))
	if err != nil || purchaseId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}

	purchase, err := h.loadPurchase(ctx, purchaseId)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.strictEdits() && purchase.Status.IsFinal() {
		writeError(c, errPurchaseLocked)
		return
	}

	deps, err := h.deps(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	session := purchasing.NewEditSession(deps)
	if err := session.InitEditMode(ctx, purchase.ToOrder()); err != nil {
		writeError(c, err)
		return
	}

	id, err := h.park(ctx, uuid.NewString(), session)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(id, session))
}

// park stores session under id for the business in ctx.
func (h *purchaseSessionHandler) park(ctx context.Context, id string, session *purchasing.Session) (string, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return "", utils.ErrorBusinessMissing
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	err := h.store.Save(ctx, &models.PurchaseSession{
		ID:         id,
		BusinessId: businessId,
		UserId:     userId,
		Snapshot:   session.Snapshot(),
	})
	return id, err
}

func (h *purchaseSessionHandler) get(c *gin.Context) {
	ctx := c.Request.Context()
	sid := c.Param("sid")
	stored, err := h.store.Load(ctx, sid)
	if err != nil {
		writeError(c, err)
		return
	}
	deps, err := h.deps(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sid, purchasing.Restore(stored.Snapshot, deps)))
}

// mutate runs op against the stored session while holding its lock, then
// writes the resulting state back. The state is saved even when op fails,
// since a failed product lookup still clears the draft.
func (h *purchaseSessionHandler) mutate(c *gin.Context, status int, op func(ctx context.Context, session *purchasing.Session) (any, error)) {
	ctx := c.Request.Context()
	sid := c.Param("sid")

	unlock, err := h.store.Lock(ctx, sid)
	if err != nil {
		writeError(c, err)
		return
	}
	defer unlock()

	stored, err := h.store.Load(ctx, sid)
	if err != nil {
		writeError(c, err)
		return
	}
	deps, err := h.deps(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	session := purchasing.Restore(stored.Snapshot, deps)

	opCtx, cancel := context.WithTimeout(ctx, h.opTimeout)
	body, opErr := op(opCtx, session)
	cancel()

	if err := h.persist(ctx, sid, stored, session); err != nil {
		switch {
		case session.State() == purchasing.StateClosed:
			// the outcome already happened; report it and log the store failure
			_ = c.Error(err)
		case opErr == nil:
			writeError(c, err)
			return
		}
	}
	if opErr != nil {
		writeError(c, opErr)
		return
	}
	if body == nil {
		body = newSessionResponse(sid, session)
	}
	c.JSON(status, body)
}

// persist writes session back under sid. A closed session is deleted; when
// the delete fails it is kept in its closed state so a retried submit is
// refused instead of stored twice.
func (h *purchaseSessionHandler) persist(ctx context.Context, sid string, stored *models.PurchaseSession, session *purchasing.Session) error {
	stored.Snapshot = session.Snapshot()
	if session.State() != purchasing.StateClosed {
		return h.store.Save(ctx, stored)
	}
	err := h.store.Delete(ctx, sid)
	if err == nil {
		return nil
	}
	config.LogError(config.GetLogger(), "main", "purchaseSessionHandler.persist", "delete closed session", sid, err)
	return h.store.Save(ctx, stored)
}

func (h *purchaseSessionHandler) setForm(c *gin.Context) {
	var req formRequest
	if !bindJSON(c, &req) {
		return
	}
	form, err := req.toForm()
	if err != nil {
		writeError(c, err)
		return
	}
	h.mutate(c, http.StatusOK, func(_ context.Context, s *purchasing.Session) (any, error) {
		return nil, s.SetForm(form)
	})
}

func (h *purchaseSessionHandler) selectProduct(c *gin.Context) {
	var req selectProductRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, http.StatusOK, func(ctx context.Context, s *purchasing.Session) (any, error) {
		return nil, s.SelectProduct(ctx, req.ProductID)
	})
}

func (h *purchaseSessionHandler) setDraft(c *gin.Context) {
	var req draftRequest
	if !bindJSON(c, &req) {
		return
	}
	var price *decimal.Decimal
	if req.UnitPrice != nil {
		p, err := utils.ParseDecimal(*req.UnitPrice)
		if err != nil {
			writeError(c, purchasing.ValidationError{Reason: "invalid unit_price"})
			return
		}
		price = &p
	}
	h.mutate(c, http.StatusOK, func(_ context.Context, s *purchasing.Session) (any, error) {
		if req.Quantity != nil {
			if err := s.SetDraftQuantity(*req.Quantity); err != nil {
				return nil, err
			}
		}
		if price != nil {
			if err := s.SetDraftUnitPrice(*price); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
}

func (h *purchaseSessionHandler) commit(c *gin.Context) {
	h.mutate(c, http.StatusOK, func(ctx context.Context, s *purchasing.Session) (any, error) {
		return nil, s.Commit(ctx)
	})
}

func (h *purchaseSessionHandler) cancelDraft(c *gin.Context) {
	h.mutate(c, http.StatusOK, func(_ context.Context, s *purchasing.Session) (any, error) {
		return nil, s.CancelDraft()
	})
}

func (h *purchaseSessionHandler) editLine(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	h.mutate(c, http.StatusOK, func(_ context.Context, s *purchasing.Session) (any, error) {
		return nil, s.EditLine(index)
	})
}

func (h *purchaseSessionHandler) removeLine(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	h.mutate(c, http.StatusOK, func(_ context.Context, s *purchasing.Session) (any, error) {
		return nil, s.RemoveLine(index)
	})
}

func (h *purchaseSessionHandler) submit(c *gin.Context) {
	h.mutate(c, http.StatusCreated, func(ctx context.Context, s *purchasing.Session) (any, error) {
		order, err := s.Submit(ctx)
		if err != nil {
			return nil, err
		}
		return gin.H{"purchase": order}, nil
	})
}

func (h *purchaseSessionHandler) discard(c *gin.Context) {
	h.mutate(c, http.StatusOK, func(_ context.Context, s *purchasing.Session) (any, error) {
		s.Discard()
		return gin.H{"discarded": true}, nil
	})
}

func lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line index"})
		return 0, false
	}
	return index, true
}
