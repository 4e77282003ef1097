package hr

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeDepartment = "Department"
	AggregateTypeEmployee   = "Employee"
)

// Domain event types
const (
	EventTypeDepartmentCreated        = "DepartmentCreated"
	EventTypeDepartmentManagerChanged = "DepartmentManagerChanged"
	EventTypeEmployeeUserLinked       = "EmployeeUserLinked"
)

// DepartmentCreatedEvent is raised when a new department is created
type DepartmentCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewDepartmentCreatedEvent creates a new DepartmentCreatedEvent
func NewDepartmentCreatedEvent(dept *Department) *DepartmentCreatedEvent {
	return &DepartmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentCreated, AggregateTypeDepartment, dept.ID, dept.TenantID),
		Code:            dept.Code,
		Name:            dept.Name,
	}
}

// DepartmentManagerChangedEvent is raised when a department's manager changes.
// Projects and open purchase orders of the department recompute their
// manager and validator from it.
type DepartmentManagerChangedEvent struct {
	shared.BaseDomainEvent
	ManagerID         *uuid.UUID `json:"manager_id,omitempty"`
	PreviousManagerID *uuid.UUID `json:"previous_manager_id,omitempty"`
}

// NewDepartmentManagerChangedEvent creates a new DepartmentManagerChangedEvent
func NewDepartmentManagerChangedEvent(dept *Department, previous *uuid.UUID) *DepartmentManagerChangedEvent {
	return &DepartmentManagerChangedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeDepartmentManagerChanged, AggregateTypeDepartment, dept.ID, dept.TenantID),
		ManagerID:         dept.ManagerID,
		PreviousManagerID: previous,
	}
}

// EmployeeUserLinkedEvent is raised when an employee's user link changes.
// A manager's user is the validator of department purchase orders, so
// this also invalidates stored validators.
type EmployeeUserLinkedEvent struct {
	shared.BaseDomainEvent
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

// NewEmployeeUserLinkedEvent creates a new EmployeeUserLinkedEvent
func NewEmployeeUserLinkedEvent(emp *Employee) *EmployeeUserLinkedEvent {
	return &EmployeeUserLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmployeeUserLinked, AggregateTypeEmployee, emp.ID, emp.TenantID),
		UserID:          emp.UserID,
		DepartmentID:    emp.DepartmentID,
	}
}
