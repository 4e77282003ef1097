package project

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeProject is the aggregate type for projects
const AggregateTypeProject = "Project"

// Project domain event types
const (
	EventTypeProjectCreated        = "ProjectCreated"
	EventTypeProjectUpdated        = "ProjectUpdated"
	EventTypeProjectStageChanged   = "ProjectStageChanged"
	EventTypeProjectBudgetDeducted = "ProjectBudgetDeducted"
)

// ProjectCreatedEvent is raised when a project is created
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectCreated, AggregateTypeProject, p.ID, p.TenantID),
		Name:            p.Name,
		Amount:          p.Amount,
		Currency:        p.Currency.String(),
	}
}

// ProjectUpdatedEvent is raised when user-editable fields change
type ProjectUpdatedEvent struct {
	shared.BaseDomainEvent
	Fields []string `json:"fields"`
}

// NewProjectUpdatedEvent creates a new ProjectUpdatedEvent
func NewProjectUpdatedEvent(p *Project, fields []string) *ProjectUpdatedEvent {
	return &ProjectUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectUpdated, AggregateTypeProject, p.ID, p.TenantID),
		Fields:          fields,
	}
}

// ProjectStageChangedEvent is raised when the project moves between stages
type ProjectStageChangedEvent struct {
	shared.BaseDomainEvent
	FromStage Stage `json:"from_stage"`
	ToStage   Stage `json:"to_stage"`
}

// NewProjectStageChangedEvent creates a new ProjectStageChangedEvent
func NewProjectStageChangedEvent(p *Project, from Stage) *ProjectStageChangedEvent {
	return &ProjectStageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectStageChanged, AggregateTypeProject, p.ID, p.TenantID),
		FromStage:       from,
		ToStage:         p.Stage,
	}
}

// ProjectBudgetDeductedEvent is raised when a confirmed purchase order
// consumes project budget
type ProjectBudgetDeductedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	Deducted        decimal.Decimal `json:"deducted"`
	BudgetBefore    decimal.Decimal `json:"budget_before"`
	BudgetAfter     decimal.Decimal `json:"budget_after"`
	Currency        string          `json:"currency"`
}

// NewProjectBudgetDeductedEvent creates a new ProjectBudgetDeductedEvent
func NewProjectBudgetDeductedEvent(p *Project, poID uuid.UUID, before, deducted decimal.Decimal) *ProjectBudgetDeductedEvent {
	return &ProjectBudgetDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectBudgetDeducted, AggregateTypeProject, p.ID, p.TenantID),
		PurchaseOrderID: poID,
		Deducted:        deducted,
		BudgetBefore:    before,
		BudgetAfter:     p.Amount,
		Currency:        p.Currency.String(),
	}
}
