// Package project extends projects with a responsible department, the
// department manager, a budget amount consumed by confirmed purchase
// orders, and a validated date window.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field names used by the editability policy
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldDepartmentID = "department_id"
	FieldCurrency     = "currency"
	FieldAmount       = "amount"
	FieldDateStart    = "date_start"
	FieldDateEnd      = "date"
	FieldStage        = "stage"
)

// Validation errors
var (
	ErrAmountNotPositive = shared.NewDomainError("PROJECT_AMOUNT_INVALID", "Project amount cannot be negative or null.")
	ErrDatesRequired     = shared.NewDomainError("PROJECT_DATES_REQUIRED", "Both start date and end date are required.")
	ErrDateWindow        = shared.NewDomainError("PROJECT_DATE_WINDOW", "Current date must be within project date range (between start and end date) or project must start in the future")
	ErrBudgetExceeded    = shared.NewDomainError("BUDGET_EXCEEDED", "Purchase order amount exceeds project budget.")
)

// Project is the aggregate root for a budgeted project
type Project struct {
	shared.TenantAggregateRoot
	Name        string
	Description string
	// DepartmentID is the department responsible for the project
	DepartmentID *uuid.UUID
	// DepartmentManagerID is computed from the department's manager and
	// stored; it follows the department and the department's manager.
	DepartmentManagerID *uuid.UUID
	Currency            valueobject.Currency
	// Amount is the remaining budget. Confirmed purchase orders deduct from it.
	Amount    decimal.Decimal
	DateStart *time.Time
	DateEnd   *time.Time
	Stage     Stage
}

// NewProject creates a project in the "To Do" stage. today is the current
// company date used by the date window rule.
func NewProject(tenantID uuid.UUID, name string, currency valueobject.Currency, amount decimal.Decimal, start, end *time.Time, today time.Time) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PROJECT_NAME", "Project name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_PROJECT_NAME", "Project name cannot exceed 200 characters")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	start, end = normalizeDate(start), normalizeDate(end)
	if err := ValidateSchedule(start, end, today); err != nil {
		return nil, err
	}

	p := &Project{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Currency:            currency,
		Amount:              amount,
		DateStart:           start,
		DateEnd:             end,
		Stage:               StageToDo,
	}

	p.AddDomainEvent(NewProjectCreatedEvent(p))

	return p, nil
}

// ValidateAmount enforces a strictly positive budget
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountNotPositive
	}
	return nil
}

// ValidateSchedule enforces that both dates are set and that the project is
// either running today or starts in the future.
func ValidateSchedule(start, end *time.Time, today time.Time) error {
	if start == nil || end == nil {
		return ErrDatesRequired
	}
	s, e, t := shared.DateOf(*start), shared.DateOf(*end), shared.DateOf(today)
	running := !s.After(t) && !t.After(e)
	upcoming := s.After(t)
	if !running && !upcoming {
		return ErrDateWindow
	}
	return nil
}

// Changes lists the fields a caller wants to modify. Nil fields are untouched.
type Changes struct {
	Name            *string
	Description     *string
	DepartmentID    *uuid.UUID
	ClearDepartment bool
	Currency        *valueobject.Currency
	Amount          *decimal.Decimal
	DateStart       *time.Time
	DateEnd         *time.Time
}

// Fields returns the names of the fields the change touches
func (c Changes) Fields() []string {
	var fields []string
	if c.Name != nil {
		fields = append(fields, FieldName)
	}
	if c.Description != nil {
		fields = append(fields, FieldDescription)
	}
	if c.DepartmentID != nil || c.ClearDepartment {
		fields = append(fields, FieldDepartmentID)
	}
	if c.Currency != nil {
		fields = append(fields, FieldCurrency)
	}
	if c.Amount != nil {
		fields = append(fields, FieldAmount)
	}
	if c.DateStart != nil {
		fields = append(fields, FieldDateStart)
	}
	if c.DateEnd != nil {
		fields = append(fields, FieldDateEnd)
	}
	return fields
}

// Update applies user changes. Outside the "To Do" stage every field but
// the stage is read-only. It reports whether the department changed so
// the caller can recompute the department manager.
func (p *Project) Update(c Changes, today time.Time) (departmentChanged bool, err error) {
	fields := c.Fields()
	if len(fields) == 0 {
		return false, nil
	}
	for _, f := range fields {
		if !p.IsFieldEditable(f) {
			return false, shared.NewDomainError(shared.ErrFieldReadonly.Code,
				fmt.Sprintf("Field '%s' is read-only while the project is in stage '%s'", f, p.Stage))
		}
	}

	name := p.Name
	if c.Name != nil {
		name = strings.TrimSpace(*c.Name)
		if name == "" {
			return false, shared.NewDomainError("INVALID_PROJECT_NAME", "Project name cannot be empty")
		}
	}
	currency := p.Currency
	if c.Currency != nil {
		if !c.Currency.IsValid() {
			return false, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
		}
		currency = *c.Currency
	}
	amount := p.Amount
	if c.Amount != nil {
		if err := ValidateAmount(*c.Amount); err != nil {
			return false, err
		}
		amount = *c.Amount
	}
	start, end := p.DateStart, p.DateEnd
	datesChanged := c.DateStart != nil || c.DateEnd != nil
	if c.DateStart != nil {
		start = normalizeDate(c.DateStart)
	}
	if c.DateEnd != nil {
		end = normalizeDate(c.DateEnd)
	}
	if datesChanged {
		if err := ValidateSchedule(start, end, today); err != nil {
			return false, err
		}
	}

	dept := p.DepartmentID
	if c.ClearDepartment {
		dept = nil
	} else if c.DepartmentID != nil {
		id := *c.DepartmentID
		dept = &id
	}
	departmentChanged = !sameID(dept, p.DepartmentID)

	p.Name = name
	if c.Description != nil {
		p.Description = strings.TrimSpace(*c.Description)
	}
	p.Currency = currency
	p.Amount = amount
	p.DateStart, p.DateEnd = start, end
	p.DepartmentID = dept
	if departmentChanged {
		p.DepartmentManagerID = nil
	}
	p.MarkModified()

	p.AddDomainEvent(NewProjectUpdatedEvent(p, fields))

	return departmentChanged, nil
}

// SetDepartmentManager stores the computed department manager. It is
// derived data and bypasses the editability policy.
func (p *Project) SetDepartmentManager(managerID *uuid.UUID) bool {
	if sameID(p.DepartmentManagerID, managerID) {
		return false
	}
	p.DepartmentManagerID = managerID
	p.MarkModified()
	return true
}

// ChangeStage moves the project to another stage. The stage stays
// editable in every stage.
func (p *Project) ChangeStage(stage Stage) error {
	if !stage.IsValid() {
		return shared.NewDomainError("INVALID_STAGE", fmt.Sprintf("Unknown project stage: %s", stage))
	}
	if stage == p.Stage {
		return nil
	}
	from := p.Stage
	p.Stage = stage
	p.MarkModified()

	p.AddDomainEvent(NewProjectStageChangedEvent(p, from))

	return nil
}

// DeductBudget consumes part of the remaining budget for a confirmed
// purchase order. It runs with elevated rights, so it ignores the stage
// editability policy. The remaining budget must stay strictly positive,
// like any other write to the amount.
func (p *Project) DeductBudget(amount valueobject.Money, purchaseOrderID uuid.UUID) error {
	if amount.Currency() != p.Currency {
		return shared.NewDomainError(shared.ErrCurrencyMismatch.Code,
			fmt.Sprintf("Purchase order currency %s does not match project currency %s", amount.Currency(), p.Currency))
	}
	if amount.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Deducted amount cannot be negative")
	}
	if amount.Amount().GreaterThan(p.Amount) {
		return ErrBudgetExceeded
	}
	if err := ValidateAmount(p.Amount.Sub(amount.Amount())); err != nil {
		return err
	}

	before := p.Amount
	p.Amount = p.Amount.Sub(amount.Amount())
	p.MarkModified()

	p.AddDomainEvent(NewProjectBudgetDeductedEvent(p, purchaseOrderID, before, amount.Amount()))

	return nil
}

// Budget returns the remaining budget as Money
func (p *Project) Budget() valueobject.Money {
	return valueobject.MustNewMoney(p.Amount, p.Currency)
}

// IsFieldEditable applies the form policy: the stage is always editable,
// everything else only in "To Do".
func (p *Project) IsFieldEditable(field string) bool {
	if field == FieldStage {
		return true
	}
	return p.Stage.AllowsEditing()
}

// EditableFields lists the fields a user may currently change
func (p *Project) EditableFields() []string {
	if p.Stage.AllowsEditing() {
		return []string{FieldName, FieldDescription, FieldDepartmentID, FieldCurrency,
			FieldAmount, FieldDateStart, FieldDateEnd, FieldStage}
	}
	return []string{FieldStage}
}

// CanDelete reports whether the project may be removed
func (p *Project) CanDelete() bool {
	return p.Stage == StageToDo
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := shared.DateOf(*t)
	return &d
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
