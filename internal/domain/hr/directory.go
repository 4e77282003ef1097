package hr

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// Directory resolves the organization lookups that other aggregates store
// as computed fields: a department's manager and a purchase order validator.
type Directory struct {
	departments DepartmentRepository
	employees   EmployeeRepository
}

// NewDirectory creates a new Directory
func NewDirectory(departments DepartmentRepository, employees EmployeeRepository) *Directory {
	return &Directory{departments: departments, employees: employees}
}

// DepartmentManager returns the manager employee of a department.
// A nil department yields no manager.
func (d *Directory) DepartmentManager(ctx context.Context, tenantID uuid.UUID, departmentID *uuid.UUID) (*uuid.UUID, error) {
	if departmentID == nil {
		return nil, nil
	}
	dept, err := d.departments.FindByID(ctx, tenantID, *departmentID)
	if err != nil {
		return nil, err
	}
	return dept.ManagerID, nil
}

// Validator returns the user of the department manager, or nil when the
// department has no manager or the manager has no user account.
func (d *Directory) Validator(ctx context.Context, tenantID uuid.UUID, departmentID *uuid.UUID) (*uuid.UUID, error) {
	managerID, err := d.DepartmentManager(ctx, tenantID, departmentID)
	if err != nil || managerID == nil {
		return nil, err
	}
	manager, err := d.employees.FindByID(ctx, tenantID, *managerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return manager.UserID, nil
}

// EmployeeOfUser returns the employee linked to a user, or nil when none is.
func (d *Directory) EmployeeOfUser(ctx context.Context, tenantID, userID uuid.UUID) (*Employee, error) {
	emp, err := d.employees.FindByUserID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return emp, nil
}
