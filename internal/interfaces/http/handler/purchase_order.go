package handler

import (
	"context"

	procurementapp "github.com/erp/procurement/internal/application/procurement"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxIdempotencyKeyLength bounds the Idempotency-Key header
const maxIdempotencyKeyLength = 255

// PurchaseOrderHandler handles purchase orders and their wizards
type PurchaseOrderHandler struct {
	BaseHandler
	orderService  *procurementapp.PurchaseOrderService
	confirmWizard *procurementapp.ConfirmWizard
	cancelWizard  *procurementapp.CancelWizard
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(
	orderService *procurementapp.PurchaseOrderService,
	confirmWizard *procurementapp.ConfirmWizard,
	cancelWizard *procurementapp.CancelWizard,
) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orderService:  orderService,
		confirmWizard: confirmWizard,
		cancelWizard:  cancelWizard,
	}
}

// Create creates a draft RFQ.
//
// @Summary      Create a draft RFQ
// @Description  Creates a draft RFQ.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body procurementapp.CreatePurchaseOrderRequest true "Order"
// @Success      201 {object} dto.Response{data=procurementapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req procurementapp.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List lists purchase orders.
//
// @Summary      List purchase orders
// @Description  Lists purchase orders.
// @Tags         purchase-orders
// @Produce      json
// @Param        filter query procurementapp.PurchaseOrderListFilter false "Filters"
// @Success      200 {object} dto.Response{data=[]procurementapp.PurchaseOrderListItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter procurementapp.PurchaseOrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Get returns an order as seen by the caller.
//
// @Summary      Get a purchase order
// @Description  Returns an order as seen by the caller.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=procurementapp.PurchaseOrderResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	h.withOrder(c, h.orderService.GetByID)
}

// EditableFields lists the fields the caller may change.
//
// @Summary      Fields the caller may edit
// @Description  Lists the fields the caller may change.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=procurementapp.EditableFieldsResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/editable-fields [get]
func (h *PurchaseOrderHandler) EditableFields(c *gin.Context) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	fields, err := h.orderService.EditableFields(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fields)
}

// Update changes an order. Fields locked by the order state are rejected
// with FIELD_READONLY.
//
// @Summary      Update a purchase order
// @Description  Changes an order. Fields locked by the order state are rejected with FIELD_READONLY.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body procurementapp.UpdatePurchaseOrderRequest true "Changes"
// @Success      200 {object} dto.Response{data=procurementapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.UpdatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), tenantID, id, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// SubmitRFQ sends the RFQ and schedules the validator's review.
//
// @Summary      Send the RFQ
// @Description  Sends the RFQ and schedules the validator's review.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=procurementapp.PurchaseOrderResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/submit-rfq [post]
func (h *PurchaseOrderHandler) SubmitRFQ(c *gin.Context) {
	h.withOrder(c, h.orderService.SubmitRFQ)
}

// ConfirmWizard previews the budget check of the confirm wizard.
//
// @Summary      Preview the budget check
// @Description  Previews the budget check of the confirm wizard.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=procurementapp.ConfirmPreviewResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/confirm-wizard [get]
func (h *PurchaseOrderHandler) ConfirmWizard(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	preview, err := h.confirmWizard.Preview(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Confirm confirms the order and deducts its total from the project
// budget. A repeated Idempotency-Key replays without deducting again.
//
// @Summary      Confirm and deduct the budget
// @Description  Confirms the order and deducts its total from the project budget. A repeated Idempotency-Key replays without deducting again.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        Idempotency-Key header string false "Replays a previous confirm without deducting again"
// @Success      200 {object} dto.Response{data=procurementapp.ConfirmResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/confirm [post]
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	key := c.GetHeader(middleware.IdempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLength {
		h.ErrorWithCode(c, "INVALID_IDEMPOTENCY_KEY", "Idempotency-Key is too long")
		return
	}

	result, err := h.confirmWizard.Confirm(c.Request.Context(), tenantID, id, actor, procurementapp.ConfirmRequest{
		IdempotencyKey: key,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Approve approves an order waiting in to_approve.
//
// @Summary      Approve an order
// @Description  Approves an order waiting in to_approve.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=procurementapp.PurchaseOrderResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	h.withOrder(c, h.orderService.Approve)
}

// Cancel cancels the order through the cancel-reason wizard.
//
// @Summary      Cancel with a reason
// @Description  Cancels the order through the cancel-reason wizard.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body procurementapp.CancelRequest false "Reason"
// @Success      200 {object} dto.Response{data=procurementapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.CancelRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	order, err := h.cancelWizard.Cancel(c.Request.Context(), tenantID, id, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Lock locks a confirmed order.
//
// @Summary      Lock a confirmed order
// @Description  Locks a confirmed order.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=procurementapp.PurchaseOrderResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/lock [post]
func (h *PurchaseOrderHandler) Lock(c *gin.Context) {
	h.withOrder(c, h.orderService.Lock)
}

// Unlock reopens a locked order.
//
// @Summary      Unlock an order
// @Description  Reopens a locked order.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=procurementapp.PurchaseOrderResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/unlock [post]
func (h *PurchaseOrderHandler) Unlock(c *gin.Context) {
	h.withOrder(c, h.orderService.Unlock)
}

// ResetToDraft sets a cancelled order back to draft.
//
// @Summary      Reset a cancelled order to draft
// @Description  Sets a cancelled order back to draft.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=procurementapp.PurchaseOrderResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/draft [post]
func (h *PurchaseOrderHandler) ResetToDraft(c *gin.Context) {
	h.withOrder(c, h.orderService.ResetToDraft)
}

type orderAction func(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*procurementapp.PurchaseOrderResponse, error)

// withOrder runs an action taking only the order and the caller
func (h *PurchaseOrderHandler) withOrder(c *gin.Context, action orderAction) {
	tenantID, actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	order, err := action(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
