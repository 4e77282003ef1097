package procurement

import (
	"time"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// LineInput is one product line of a create or update request
type LineInput struct {
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	PriceUnit   decimal.Decimal `json:"price_unit" binding:"required"`
}

// CreatePurchaseOrderRequest represents a request to create an RFQ
type CreatePurchaseOrderRequest struct {
	VendorName   string      `json:"vendor_name" binding:"required,min=1,max=200"`
	ProjectID    *uuid.UUID  `json:"project_id"`
	DepartmentID *uuid.UUID  `json:"department_id"`
	Currency     string      `json:"currency" binding:"omitempty,len=3"`
	Notes        string      `json:"notes" binding:"max=2000"`
	Lines        []LineInput `json:"order_line" binding:"dive"`
}

// UpdatePurchaseOrderRequest represents a partial update. Nil fields are
// left untouched; ClearProject unsets the project.
type UpdatePurchaseOrderRequest struct {
	VendorName   *string      `json:"vendor_name" binding:"omitempty,min=1,max=200"`
	ProjectID    *uuid.UUID   `json:"project_id"`
	ClearProject bool         `json:"clear_project"`
	DepartmentID *uuid.UUID   `json:"department_id"`
	Currency     *string      `json:"currency" binding:"omitempty,len=3"`
	Notes        *string      `json:"notes" binding:"omitempty,max=2000"`
	Lines        *[]LineInput `json:"order_line"`
}

// PurchaseOrderListFilter represents list filters
type PurchaseOrderListFilter struct {
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search       string     `form:"search"`
	State        string     `form:"state" binding:"omitempty,oneof=draft sent to_approve purchase done cancel"`
	ProjectID    *uuid.UUID `form:"project_id"`
	DepartmentID *uuid.UUID `form:"department_id"`
	ValidatorID  *uuid.UUID `form:"validator_id"`
	BuyerID      *uuid.UUID `form:"buyer_id"`
}

// LineResponse is a purchase order line
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Sequence    int             `json:"sequence"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	PriceUnit   decimal.Decimal `json:"price_unit"`
	Subtotal    decimal.Decimal `json:"price_subtotal"`
}

// PurchaseOrderResponse is the purchase order view. IsUserCP and IsUserHOD
// reflect the user reading the order.
type PurchaseOrderResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrderNumber    string          `json:"name"`
	VendorName     string          `json:"vendor_name"`
	BuyerID        uuid.UUID       `json:"user_id"`
	ProjectID      *uuid.UUID      `json:"project_id,omitempty"`
	DepartmentID   uuid.UUID       `json:"department_id"`
	ValidatorID    *uuid.UUID      `json:"validator_id,omitempty"`
	Currency       string          `json:"currency"`
	State          string          `json:"state"`
	Lines          []LineResponse  `json:"order_line"`
	AmountTotal    decimal.Decimal `json:"amount_total"`
	Notes          string          `json:"notes,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	DateOrder      time.Time       `json:"date_order"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	ConfirmedAt    *time.Time      `json:"date_approve,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy     *uuid.UUID      `json:"approved_by,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	IsUserCP       bool            `json:"is_user_cp"`
	IsUserHOD      bool            `json:"is_user_hod"`
	EditableFields []string        `json:"editable_fields"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToPurchaseOrderResponse converts the domain order for the given reader
func ToPurchaseOrderResponse(o *procurement.PurchaseOrder, actor procurement.Actor) PurchaseOrderResponse {
	lines := make([]LineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = LineResponse{
			ID:          l.ID,
			Sequence:    l.Sequence,
			ProductName: l.ProductName,
			Description: l.Description,
			Quantity:    l.Quantity,
			PriceUnit:   l.PriceUnit,
			Subtotal:    l.Subtotal,
		}
	}
	return PurchaseOrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		VendorName:     o.VendorName,
		BuyerID:        o.BuyerID,
		ProjectID:      o.ProjectID,
		DepartmentID:   o.DepartmentID,
		ValidatorID:    o.ValidatorID,
		Currency:       o.Currency.String(),
		State:          o.State.String(),
		Lines:          lines,
		AmountTotal:    o.AmountTotal,
		Notes:          o.Notes,
		CancelReason:   o.CancelReason,
		DateOrder:      o.DateOrder,
		SubmittedAt:    o.SubmittedAt,
		ConfirmedAt:    o.ConfirmedAt,
		ApprovedAt:     o.ApprovedAt,
		ApprovedBy:     o.ApprovedBy,
		CancelledAt:    o.CancelledAt,
		IsUserCP:       actor.CP,
		IsUserHOD:      actor.HOD,
		EditableFields: o.EditableFields(actor),
		Version:        o.GetVersion(),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// PurchaseOrderListItemResponse is the list view of an order
type PurchaseOrderListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"name"`
	VendorName   string          `json:"vendor_name"`
	ProjectID    *uuid.UUID      `json:"project_id,omitempty"`
	DepartmentID uuid.UUID       `json:"department_id"`
	ValidatorID  *uuid.UUID      `json:"validator_id,omitempty"`
	Currency     string          `json:"currency"`
	State        string          `json:"state"`
	AmountTotal  decimal.Decimal `json:"amount_total"`
	LineCount    int             `json:"line_count"`
	DateOrder    time.Time       `json:"date_order"`
}

// ToPurchaseOrderListItemResponse converts the domain order for lists
func ToPurchaseOrderListItemResponse(o *procurement.PurchaseOrder) PurchaseOrderListItemResponse {
	return PurchaseOrderListItemResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		VendorName:   o.VendorName,
		ProjectID:    o.ProjectID,
		DepartmentID: o.DepartmentID,
		ValidatorID:  o.ValidatorID,
		Currency:     o.Currency.String(),
		State:        o.State.String(),
		AmountTotal:  o.AmountTotal,
		LineCount:    len(o.Lines),
		DateOrder:    o.DateOrder,
	}
}

// EditableFieldsResponse lists what the reader may change on the order
type EditableFieldsResponse struct {
	State          string   `json:"state"`
	EditableFields []string `json:"editable_fields"`
	IsUserCP       bool     `json:"is_user_cp"`
	IsUserHOD      bool     `json:"is_user_hod"`
}

// ==================== Wizard DTOs ====================

// ConfirmPreviewResponse holds the read-only fields of the confirm wizard
type ConfirmPreviewResponse struct {
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	AmountTotal     decimal.Decimal `json:"amount_total"`
	Currency        string          `json:"currency"`
	ProjectID       *uuid.UUID      `json:"project_id,omitempty"`
	ProjectName     string          `json:"project_name,omitempty"`
	ProjectBudget   decimal.Decimal `json:"project_budget"`
	ProjectCurrency string          `json:"project_currency,omitempty"`
	WithinBudget    bool            `json:"within_budget"`
}

// ConfirmRequest carries the optional client idempotency key
type ConfirmRequest struct {
	IdempotencyKey string `json:"-"`
}

// ConfirmResult is the outcome of the confirm wizard. Replayed is set when
// the idempotency key was seen before and nothing was deducted.
type ConfirmResult struct {
	Order           PurchaseOrderResponse `json:"order"`
	Deducted        decimal.Decimal       `json:"deducted"`
	RemainingBudget decimal.Decimal       `json:"remaining_budget"`
	Replayed        bool                  `json:"replayed"`
}

// CancelRequest is the cancel-reason wizard input
type CancelRequest struct {
	Reason string `json:"cancel_reason" binding:"max=2000"`
}
