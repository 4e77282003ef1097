package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderSequenceModel holds the last order number handed out per
// tenant and prefix
type PurchaseOrderSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix    string    `gorm:"type:varchar(10);primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderSequenceModel) TableName() string {
	return "purchase_order_sequences"
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate.
type PurchaseOrderModel struct {
	TenantAggregateModel
	OrderNumber  string                   `gorm:"type:varchar(50);not null;index"`
	VendorName   string                   `gorm:"type:varchar(200);not null"`
	BuyerID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	ProjectID    *uuid.UUID               `gorm:"type:uuid;index"`
	DepartmentID uuid.UUID                `gorm:"type:uuid;not null;index"`
	ValidatorID  *uuid.UUID               `gorm:"type:uuid;index"`
	Currency     string                   `gorm:"type:varchar(3);not null"`
	AmountTotal  decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	State        procurement.State        `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes        string                   `gorm:"type:text"`
	CancelReason string                   `gorm:"type:text"`
	DateOrder    time.Time                `gorm:"not null"`
	SubmittedAt  *time.Time
	ConfirmedAt  *time.Time
	ApprovedAt   *time.Time
	ApprovedBy   *uuid.UUID               `gorm:"type:uuid"`
	CancelledAt  *time.Time
	Lines        []PurchaseOrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
// Lines must be preloaded; they are returned ordered by sequence.
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	order := &procurement.PurchaseOrder{
		OrderNumber:  m.OrderNumber,
		VendorName:   m.VendorName,
		BuyerID:      m.BuyerID,
		ProjectID:    m.ProjectID,
		DepartmentID: m.DepartmentID,
		ValidatorID:  m.ValidatorID,
		Currency:     valueobject.Currency(m.Currency),
		Lines:        make([]procurement.Line, len(m.Lines)),
		AmountTotal:  m.AmountTotal,
		State:        m.State,
		Notes:        m.Notes,
		CancelReason: m.CancelReason,
		DateOrder:    m.DateOrder,
		SubmittedAt:  m.SubmittedAt,
		ConfirmedAt:  m.ConfirmedAt,
		ApprovedAt:   m.ApprovedAt,
		ApprovedBy:   m.ApprovedBy,
		CancelledAt:  m.CancelledAt,
	}
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	m.PopulateTenantAggregateRoot(&order.TenantAggregateRoot)
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder.
func (m *PurchaseOrderModel) FromDomain(o *procurement.PurchaseOrder) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.VendorName = o.VendorName
	m.BuyerID = o.BuyerID
	m.ProjectID = o.ProjectID
	m.DepartmentID = o.DepartmentID
	m.ValidatorID = o.ValidatorID
	m.Currency = string(o.Currency)
	m.AmountTotal = o.AmountTotal
	m.State = o.State
	m.Notes = o.Notes
	m.CancelReason = o.CancelReason
	m.DateOrder = o.DateOrder
	m.SubmittedAt = o.SubmittedAt
	m.ConfirmedAt = o.ConfirmedAt
	m.ApprovedAt = o.ApprovedAt
	m.ApprovedBy = o.ApprovedBy
	m.CancelledAt = o.CancelledAt
	m.Lines = make([]PurchaseOrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i] = *PurchaseOrderLineModelFromDomain(o.ID, o.TenantID, o.Lines[i])
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(o *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderLineModel is the persistence model for a purchase order line.
type PurchaseOrderLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Sequence    int             `gorm:"not null;default:1"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PriceUnit   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// ToDomain converts the persistence model to a domain Line.
func (m *PurchaseOrderLineModel) ToDomain() procurement.Line {
	return procurement.Line{
		ID:          m.ID,
		Sequence:    m.Sequence,
		ProductName: m.ProductName,
		Description: m.Description,
		Quantity:    m.Quantity,
		PriceUnit:   m.PriceUnit,
		Subtotal:    m.Subtotal,
	}
}

// PurchaseOrderLineModelFromDomain creates a line model for the given order.
func PurchaseOrderLineModelFromDomain(orderID, tenantID uuid.UUID, l procurement.Line) *PurchaseOrderLineModel {
	return &PurchaseOrderLineModel{
		ID:          l.ID,
		OrderID:     orderID,
		TenantID:    tenantID,
		Sequence:    l.Sequence,
		ProductName: l.ProductName,
		Description: l.Description,
		Quantity:    l.Quantity,
		PriceUnit:   l.PriceUnit,
		Subtotal:    l.Subtotal,
	}
}
