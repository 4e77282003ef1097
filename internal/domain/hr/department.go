// Package hr holds the organization structure purchase approval relies on:
// departments, their manager, and the employees linked to user accounts.
package hr

import (
	"regexp"
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

var departmentCodeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// Department is an organizational unit. Its manager is an employee whose
// linked user becomes the validator of the department's purchase orders.
type Department struct {
	shared.TenantAggregateRoot
	Code      string     // Unique code within tenant (e.g., "OPS", "IT")
	Name      string
	ManagerID *uuid.UUID // Employee ID of the department manager
	Active    bool
}

// NewDepartment creates a new department with required fields
func NewDepartment(tenantID uuid.UUID, code, name string) (*Department, error) {
	if err := validateDepartmentCode(code); err != nil {
		return nil, err
	}
	if err := validateDepartmentName(name); err != nil {
		return nil, err
	}

	dept := &Department{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Active:              true,
	}

	dept.AddDomainEvent(NewDepartmentCreatedEvent(dept))

	return dept, nil
}

// Rename sets the department name
func (d *Department) Rename(name string) error {
	if err := validateDepartmentName(name); err != nil {
		return err
	}
	d.Name = strings.TrimSpace(name)
	d.MarkModified()
	return nil
}

// SetManager assigns the manager employee. Passing nil clears it.
// The change invalidates every stored value computed from the manager.
func (d *Department) SetManager(managerID *uuid.UUID) {
	if sameID(d.ManagerID, managerID) {
		return
	}
	previous := d.ManagerID
	d.ManagerID = managerID
	d.MarkModified()

	d.AddDomainEvent(NewDepartmentManagerChangedEvent(d, previous))
}

// HasManager reports whether a manager is assigned
func (d *Department) HasManager() bool {
	return d.ManagerID != nil
}

// Archive deactivates the department
func (d *Department) Archive() error {
	if !d.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Department is already archived")
	}
	d.Active = false
	d.MarkModified()
	return nil
}

// Restore reactivates the department
func (d *Department) Restore() error {
	if d.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Department is already active")
	}
	d.Active = true
	d.MarkModified()
	return nil
}

func validateDepartmentCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_DEPARTMENT_CODE", "Department code cannot be empty")
	}
	if len(code) < 2 || len(code) > 50 {
		return shared.NewDomainError("INVALID_DEPARTMENT_CODE", "Department code must be between 2 and 50 characters")
	}
	if !departmentCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_DEPARTMENT_CODE", "Department code must start with a letter and contain only letters, numbers, underscores, and hyphens")
	}
	return nil
}

func validateDepartmentName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_DEPARTMENT_NAME", "Department name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_DEPARTMENT_NAME", "Department name cannot exceed 200 characters")
	}
	return nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
