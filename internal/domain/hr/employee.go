package hr

import (
	"net/mail"
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// Employee is a person in the organization, optionally linked to a user
// account and assigned to a department.
type Employee struct {
	shared.TenantAggregateRoot
	Name         string
	WorkEmail    string
	UserID       *uuid.UUID
	DepartmentID *uuid.UUID
	Active       bool
}

// NewEmployee creates a new employee
func NewEmployee(tenantID uuid.UUID, name string) (*Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE_NAME", "Employee name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE_NAME", "Employee name cannot exceed 200 characters")
	}

	return &Employee{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Active:              true,
	}, nil
}

// SetWorkEmail sets the work email; empty clears it
func (e *Employee) SetWorkEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Work email is not a valid address")
		}
	}
	e.WorkEmail = email
	e.MarkModified()
	return nil
}

// Rename changes the employee name
func (e *Employee) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_EMPLOYEE_NAME", "Employee name cannot be empty")
	}
	e.Name = name
	e.MarkModified()
	return nil
}

// AssignDepartment moves the employee to a department; nil removes it
func (e *Employee) AssignDepartment(departmentID *uuid.UUID) {
	if sameID(e.DepartmentID, departmentID) {
		return
	}
	e.DepartmentID = departmentID
	e.MarkModified()
}

// LinkUser links the employee to a user account; nil unlinks it
func (e *Employee) LinkUser(userID *uuid.UUID) {
	if sameID(e.UserID, userID) {
		return
	}
	e.UserID = userID
	e.MarkModified()
	e.AddDomainEvent(NewEmployeeUserLinkedEvent(e))
}

// HasUser reports whether the employee is linked to a user
func (e *Employee) HasUser() bool {
	return e.UserID != nil
}

// Archive hides the employee from active lists. Links are kept.
func (e *Employee) Archive() {
	if !e.Active {
		return
	}
	e.Active = false
	e.MarkModified()
}
