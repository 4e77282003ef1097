// Package procurement extends purchase orders with a project, a
// responsible department, a computed validator and the CP/HOD approval
// rules that drive the RFQ to purchase workflow.
package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field names used by the form editability policy
const (
	FieldVendorName   = "vendor_name"
	FieldProjectID    = "project_id"
	FieldDepartmentID = "department_id"
	FieldCurrency     = "currency"
	FieldLines        = "order_line"
	FieldNotes        = "notes"
)

var allFields = []string{FieldVendorName, FieldProjectID, FieldDepartmentID, FieldCurrency, FieldLines, FieldNotes}

// Business rule errors
var (
	ErrNoLines            = shared.NewDomainError("NO_LINES", "You cannot submit an RFQ without any products. Please add at least one product.")
	ErrNoValidator        = shared.NewDomainError("NO_VALIDATOR", "This Purchase Order doesn't have any validator. Please add a department responsible for the PO.")
	ErrProjectRequired    = shared.NewDomainError("PROJECT_REQUIRED", "Please set a project before confirming the purchase order.")
	ErrConfirmedNoProject = shared.NewDomainError("PROJECT_REQUIRED", "A project must be set for confirmed purchase orders.")
	ErrCPCannotCancel     = shared.NewDomainError("FORBIDDEN", "You don't have access to cancel this purchase order in its current state.")
	ErrCPNoEmployee       = shared.NewDomainError("CP_EMPLOYEE_REQUIRED", "CP users must be linked to an employee to create purchase orders.")
	ErrDepartmentRequired = shared.NewDomainError("DEPARTMENT_REQUIRED", "A department is required on purchase orders.")
	ErrReasonRequired     = shared.NewDomainError("CANCEL_REASON_REQUIRED", "Please provide a cancellation reason.")
	ErrLockedCancel       = shared.NewDomainError("INVALID_STATE", "A locked purchase order cannot be cancelled. Unlock it first.")
	ErrConfirmInProgress  = shared.NewDomainError("CONFIRM_IN_PROGRESS", "This purchase order is still being confirmed. Retry the request shortly.")
)

// PurchaseOrder is the aggregate root for a request for quotation and the
// purchase order it becomes
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber string
	VendorName  string
	// BuyerID is the purchase representative (the user who created the RFQ)
	BuyerID   uuid.UUID
	ProjectID *uuid.UUID
	// DepartmentID is the department responsible for the order
	DepartmentID uuid.UUID
	// ValidatorID is computed as the user of the department manager and
	// stored; it follows the department and its manager.
	ValidatorID  *uuid.UUID
	Currency     valueobject.Currency
	Lines        []Line
	AmountTotal  decimal.Decimal
	State        State
	Notes        string
	CancelReason string
	DateOrder    time.Time
	SubmittedAt  *time.Time
	ConfirmedAt  *time.Time
	ApprovedAt   *time.Time
	ApprovedBy   *uuid.UUID
	CancelledAt  *time.Time
}

// NewPurchaseOrder creates a draft RFQ ordered at now
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber, vendorName string, buyerID uuid.UUID, departmentID *uuid.UUID, currency valueobject.Currency, now time.Time) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	vendorName = strings.TrimSpace(vendorName)
	if vendorName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor name cannot be empty")
	}
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer cannot be empty")
	}
	if departmentID == nil || *departmentID == uuid.Nil {
		return nil, ErrDepartmentRequired
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}

	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, buyerID),
		OrderNumber:         orderNumber,
		VendorName:          vendorName,
		BuyerID:             buyerID,
		DepartmentID:        *departmentID,
		Currency:            currency,
		Lines:               make([]Line, 0),
		AmountTotal:         decimal.Zero,
		State:               StateDraft,
		DateOrder:           now,
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// SetLines replaces the order lines and recomputes the total
func (o *PurchaseOrder) SetLines(inputs []LineInput) error {
	lines := make([]Line, 0, len(inputs))
	for i, in := range inputs {
		line, err := newLine(i+1, in)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	previous := o.Lines
	o.Lines = lines
	o.recalculateTotal()
	if err := o.CheckConstraints(); err != nil {
		o.Lines = previous
		o.recalculateTotal()
		return err
	}
	o.MarkModified()
	return nil
}

// CheckConstraints verifies the record-level rules that hold on every save:
// non-draft orders need lines, every line needs a positive price and
// quantity, and confirmed states need a project.
func (o *PurchaseOrder) CheckConstraints() error {
	if o.State != StateDraft && len(o.Lines) == 0 {
		return ErrNoLines
	}
	for _, line := range o.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}
	if o.State.RequiresProject() && o.ProjectID == nil {
		return ErrConfirmedNoProject
	}
	return nil
}

// Changes lists the header fields a caller wants to modify
type Changes struct {
	VendorName   *string
	ProjectID    *uuid.UUID
	ClearProject bool
	DepartmentID *uuid.UUID
	Currency     *valueobject.Currency
	Lines        *[]LineInput
	Notes        *string
}

// Fields returns the names of the fields the change touches
func (c Changes) Fields() []string {
	var fields []string
	if c.VendorName != nil {
		fields = append(fields, FieldVendorName)
	}
	if c.ProjectID != nil || c.ClearProject {
		fields = append(fields, FieldProjectID)
	}
	if c.DepartmentID != nil {
		fields = append(fields, FieldDepartmentID)
	}
	if c.Currency != nil {
		fields = append(fields, FieldCurrency)
	}
	if c.Lines != nil {
		fields = append(fields, FieldLines)
	}
	if c.Notes != nil {
		fields = append(fields, FieldNotes)
	}
	return fields
}

// EditableFields applies the form policy for the actor:
//   - sent: only the project may be set
//   - CP user past draft, or any user on a purchase/done/cancel order: nothing
//   - otherwise every field
func (o *PurchaseOrder) EditableFields(actor Actor) []string {
	switch {
	case o.State == StateSent:
		return []string{FieldProjectID}
	case actor.CP && o.State != StateDraft:
		return []string{}
	case o.State == StatePurchase || o.State == StateDone || o.State == StateCancel:
		return []string{}
	default:
		out := make([]string, len(allFields))
		copy(out, allFields)
		return out
	}
}

// Update applies the changes the actor is allowed to make. It reports
// whether the department changed so the caller can recompute the validator.
func (o *PurchaseOrder) Update(c Changes, actor Actor) (departmentChanged bool, err error) {
	fields := c.Fields()
	if len(fields) == 0 {
		return false, nil
	}
	editable := o.EditableFields(actor)
	for _, f := range fields {
		if !contains(editable, f) {
			return false, shared.NewDomainError(shared.ErrFieldReadonly.Code,
				fmt.Sprintf("Field '%s' cannot be modified on a purchase order in state '%s'", f, o.State))
		}
	}

	snapshot := *o
	snapshot.Lines = append([]Line(nil), o.Lines...)

	if c.VendorName != nil {
		name := strings.TrimSpace(*c.VendorName)
		if name == "" {
			o.restore(snapshot)
			return false, shared.NewDomainError("INVALID_VENDOR", "Vendor name cannot be empty")
		}
		o.VendorName = name
	}
	if c.ClearProject {
		o.ProjectID = nil
	} else if c.ProjectID != nil {
		id := *c.ProjectID
		o.ProjectID = &id
	}
	if c.DepartmentID != nil {
		if *c.DepartmentID == uuid.Nil {
			o.restore(snapshot)
			return false, ErrDepartmentRequired
		}
		if *c.DepartmentID != o.DepartmentID {
			o.DepartmentID = *c.DepartmentID
			o.ValidatorID = nil
			departmentChanged = true
		}
	}
	if c.Currency != nil {
		if !c.Currency.IsValid() {
			o.restore(snapshot)
			return false, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
		}
		o.Currency = *c.Currency
	}
	if c.Notes != nil {
		o.Notes = strings.TrimSpace(*c.Notes)
	}
	if c.Lines != nil {
		lines := make([]Line, 0, len(*c.Lines))
		for i, in := range *c.Lines {
			line, lineErr := newLine(i+1, in)
			if lineErr != nil {
				o.restore(snapshot)
				return false, lineErr
			}
			lines = append(lines, line)
		}
		o.Lines = lines
		o.recalculateTotal()
	}

	if err := o.CheckConstraints(); err != nil {
		o.restore(snapshot)
		return false, err
	}

	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderUpdatedEvent(o, fields))

	return departmentChanged, nil
}

// SetValidator stores the computed validator. Derived data, so no policy check.
func (o *PurchaseOrder) SetValidator(validatorID *uuid.UUID) bool {
	if sameID(o.ValidatorID, validatorID) {
		return false
	}
	o.ValidatorID = validatorID
	o.MarkModified()
	return true
}

// SubmitRFQ sends the draft to the validator for review
func (o *PurchaseOrder) SubmitRFQ(actor Actor, now time.Time) error {
	if o.State != StateDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Only draft RFQs can be submitted, order is in state '%s'", o.State))
	}
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	if o.ValidatorID == nil {
		return ErrNoValidator
	}

	o.State = StateSent
	if err := o.CheckConstraints(); err != nil {
		o.State = StateDraft
		return err
	}
	o.SubmittedAt = &now
	o.MarkModified()

	o.AddDomainEvent(NewRFQSubmittedEvent(o, actor))

	return nil
}

// ApprovalPolicy configures two-step validation of large orders
type ApprovalPolicy struct {
	Enabled   bool
	Threshold decimal.Decimal
}

// RequiresApproval reports whether confirming the order by the actor has to
// wait for a second approval
func (p ApprovalPolicy) RequiresApproval(total decimal.Decimal, actor Actor) bool {
	if !p.Enabled || actor.CanApprove() {
		return false
	}
	return total.GreaterThanOrEqual(p.Threshold)
}

// Confirm turns the RFQ into a purchase order, or parks it in to_approve
// when the approval policy asks for a second validation
func (o *PurchaseOrder) Confirm(actor Actor, policy ApprovalPolicy, now time.Time) error {
	if o.ProjectID == nil {
		return ErrProjectRequired
	}
	if o.State != StateDraft && o.State != StateSent {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm a purchase order in state '%s'", o.State))
	}

	from := o.State
	target := StatePurchase
	if policy.RequiresApproval(o.AmountTotal, actor) {
		target = StateToApprove
	}
	o.State = target
	if err := o.CheckConstraints(); err != nil {
		o.State = from
		return err
	}

	o.ConfirmedAt = &now
	if target == StatePurchase {
		o.ApprovedAt = &now
		o.ApprovedBy = &actor.UserID
	}
	o.MarkModified()

	if target == StateToApprove {
		o.AddDomainEvent(NewPurchaseOrderApprovalRequestedEvent(o, actor))
	} else {
		o.AddDomainEvent(NewPurchaseOrderConfirmedEvent(o, actor))
	}

	return nil
}

// Approve validates an order waiting in to_approve
func (o *PurchaseOrder) Approve(actor Actor, now time.Time) error {
	if o.State != StateToApprove {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve a purchase order in state '%s'", o.State))
	}
	if !actor.CanApprove() {
		return shared.NewDomainError("FORBIDDEN", "Only heads of department or purchase managers can approve purchase orders.")
	}

	o.State = StatePurchase
	o.ApprovedAt = &now
	o.ApprovedBy = &actor.UserID
	o.MarkModified()

	o.AddDomainEvent(NewPurchaseOrderConfirmedEvent(o, actor))

	return nil
}

// Cancel cancels the order. CP users may only cancel drafts.
func (o *PurchaseOrder) Cancel(actor Actor, reason string, now time.Time) error {
	if actor.CP && o.State != StateDraft {
		return ErrCPCannotCancel
	}
	if o.State == StateDone {
		return ErrLockedCancel
	}
	if !o.State.CanTransitionTo(StateCancel) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a purchase order in state '%s'", o.State))
	}

	from := o.State
	o.State = StateCancel
	o.CancelReason = strings.TrimSpace(reason)
	o.CancelledAt = &now
	o.MarkModified()

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, actor, from))

	return nil
}

// Lock moves a confirmed order to done
func (o *PurchaseOrder) Lock() error {
	if o.State != StatePurchase {
		return shared.NewDomainError("INVALID_STATE", "Only confirmed purchase orders can be locked")
	}
	o.State = StateDone
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderStateChangedEvent(o, StatePurchase))
	return nil
}

// Unlock reopens a locked order
func (o *PurchaseOrder) Unlock() error {
	if o.State != StateDone {
		return shared.NewDomainError("INVALID_STATE", "Only locked purchase orders can be unlocked")
	}
	o.State = StatePurchase
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderStateChangedEvent(o, StateDone))
	return nil
}

// ResetToDraft reopens a cancelled order as a draft RFQ
func (o *PurchaseOrder) ResetToDraft() error {
	if o.State != StateCancel {
		return shared.NewDomainError("INVALID_STATE", "Only cancelled purchase orders can be reset to draft")
	}
	o.State = StateDraft
	o.CancelReason = ""
	o.CancelledAt = nil
	o.SubmittedAt = nil
	o.ConfirmedAt = nil
	o.ApprovedAt = nil
	o.ApprovedBy = nil
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderStateChangedEvent(o, StateCancel))
	return nil
}

// Total returns the order total as Money
func (o *PurchaseOrder) Total() valueobject.Money {
	return valueobject.MustNewMoney(o.AmountTotal, o.Currency)
}

// IsEditableBy reports whether the actor may change at least one field
func (o *PurchaseOrder) IsEditableBy(actor Actor) bool {
	return len(o.EditableFields(actor)) > 0
}

func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Subtotal)
	}
	o.AmountTotal = total
}

func (o *PurchaseOrder) restore(s PurchaseOrder) {
	events := o.GetDomainEvents()
	*o = s
	o.ClearDomainEvents()
	for _, e := range events {
		o.AddDomainEvent(e)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
