package procurement

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchaseOrder is the aggregate type for purchase orders
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Purchase order domain event types
const (
	EventTypePurchaseOrderCreated           = "PurchaseOrderCreated"
	EventTypePurchaseOrderUpdated           = "PurchaseOrderUpdated"
	EventTypeRFQSubmitted                   = "RFQSubmitted"
	EventTypePurchaseOrderApprovalRequested = "PurchaseOrderApprovalRequested"
	EventTypePurchaseOrderConfirmed         = "PurchaseOrderConfirmed"
	EventTypePurchaseOrderCancelled         = "PurchaseOrderCancelled"
	EventTypePurchaseOrderStateChanged      = "PurchaseOrderStateChanged"
)

// PurchaseOrderCreatedEvent is raised when an RFQ is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber  string    `json:"order_number"`
	DepartmentID uuid.UUID `json:"department_id"`
	BuyerID      uuid.UUID `json:"buyer_id"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		DepartmentID:    o.DepartmentID,
		BuyerID:         o.BuyerID,
	}
}

// PurchaseOrderUpdatedEvent is raised when header fields or lines change
type PurchaseOrderUpdatedEvent struct {
	shared.BaseDomainEvent
	Fields []string `json:"fields"`
}

// NewPurchaseOrderUpdatedEvent creates a new PurchaseOrderUpdatedEvent
func NewPurchaseOrderUpdatedEvent(o *PurchaseOrder, fields []string) *PurchaseOrderUpdatedEvent {
	return &PurchaseOrderUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderUpdated, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		Fields:          fields,
	}
}

// RFQSubmittedEvent is raised when an RFQ is submitted to its validator
type RFQSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string    `json:"order_number"`
	ValidatorID   uuid.UUID `json:"validator_id"`
	SubmittedBy   uuid.UUID `json:"submitted_by"`
	SubmitterName string    `json:"submitter_name"`
}

// NewRFQSubmittedEvent creates a new RFQSubmittedEvent
func NewRFQSubmittedEvent(o *PurchaseOrder, actor Actor) *RFQSubmittedEvent {
	var validator uuid.UUID
	if o.ValidatorID != nil {
		validator = *o.ValidatorID
	}
	return &RFQSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRFQSubmitted, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		ValidatorID:     validator,
		SubmittedBy:     actor.UserID,
		SubmitterName:   actor.Name,
	}
}

// PurchaseOrderApprovalRequestedEvent is raised when confirmation needs a
// second validation
type PurchaseOrderApprovalRequestedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	AmountTotal decimal.Decimal `json:"amount_total"`
	RequestedBy uuid.UUID       `json:"requested_by"`
}

// NewPurchaseOrderApprovalRequestedEvent creates a new PurchaseOrderApprovalRequestedEvent
func NewPurchaseOrderApprovalRequestedEvent(o *PurchaseOrder, actor Actor) *PurchaseOrderApprovalRequestedEvent {
	return &PurchaseOrderApprovalRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderApprovalRequested, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		AmountTotal:     o.AmountTotal,
		RequestedBy:     actor.UserID,
	}
}

// PurchaseOrderConfirmedEvent is raised when the order reaches the purchase state
type PurchaseOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	ProjectID   *uuid.UUID      `json:"project_id,omitempty"`
	AmountTotal decimal.Decimal `json:"amount_total"`
	Currency    string          `json:"currency"`
	ConfirmedBy uuid.UUID       `json:"confirmed_by"`
}

// NewPurchaseOrderConfirmedEvent creates a new PurchaseOrderConfirmedEvent
func NewPurchaseOrderConfirmedEvent(o *PurchaseOrder, actor Actor) *PurchaseOrderConfirmedEvent {
	return &PurchaseOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderConfirmed, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		ProjectID:       o.ProjectID,
		AmountTotal:     o.AmountTotal,
		Currency:        o.Currency.String(),
		ConfirmedBy:     actor.UserID,
	}
}

// PurchaseOrderCancelledEvent is raised when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	FromState   State     `json:"from_state"`
	Reason      string    `json:"reason"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(o *PurchaseOrder, actor Actor, from State) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		FromState:       from,
		Reason:          o.CancelReason,
		CancelledBy:     actor.UserID,
	}
}

// PurchaseOrderStateChangedEvent covers lock, unlock and reset to draft
type PurchaseOrderStateChangedEvent struct {
	shared.BaseDomainEvent
	FromState State `json:"from_state"`
	ToState   State `json:"to_state"`
}

// NewPurchaseOrderStateChangedEvent creates a new PurchaseOrderStateChangedEvent
func NewPurchaseOrderStateChangedEvent(o *PurchaseOrder, from State) *PurchaseOrderStateChangedEvent {
	return &PurchaseOrderStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStateChanged, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		FromState:       from,
		ToState:         o.State,
	}
}
