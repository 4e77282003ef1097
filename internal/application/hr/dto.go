package hr

import (
	"time"

	"github.com/erp/procurement/internal/domain/hr"
	"github.com/google/uuid"
)

// CreateDepartmentRequest represents a request to create a department
type CreateDepartmentRequest struct {
	Code      string     `json:"code" binding:"required,min=1,max=50"`
	Name      string     `json:"name" binding:"required,min=1,max=100"`
	ManagerID *uuid.UUID `json:"manager_id"`
}

// UpdateDepartmentRequest represents a request to update a department
type UpdateDepartmentRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
	Active *bool   `json:"active"`
}

// SetManagerRequest assigns or clears a department manager
type SetManagerRequest struct {
	ManagerID *uuid.UUID `json:"manager_id"`
}

// CreateEmployeeRequest represents a request to create an employee
type CreateEmployeeRequest struct {
	Name         string     `json:"name" binding:"required,min=1,max=200"`
	WorkEmail    string     `json:"work_email" binding:"omitempty,email"`
	DepartmentID *uuid.UUID `json:"department_id"`
	UserID       *uuid.UUID `json:"user_id"`
}

// UpdateEmployeeRequest represents a request to update an employee.
// ClearDepartment unsets the department.
type UpdateEmployeeRequest struct {
	Name            *string    `json:"name" binding:"omitempty,min=1,max=200"`
	WorkEmail       *string    `json:"work_email" binding:"omitempty,email"`
	DepartmentID    *uuid.UUID `json:"department_id"`
	ClearDepartment bool       `json:"clear_department"`
}

// LinkUserRequest links or unlinks a user account
type LinkUserRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

// ListFilter is the common list query of departments and employees
type ListFilter struct {
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search       string     `form:"search"`
	Active       *bool      `form:"active"`
	DepartmentID *uuid.UUID `form:"department_id"`
}

// DepartmentResponse is the department view
type DepartmentResponse struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	ManagerID *uuid.UUID `json:"manager_id,omitempty"`
	Active    bool       `json:"active"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EmployeeResponse is the employee view
type EmployeeResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	WorkEmail    string     `json:"work_email,omitempty"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToDepartmentResponse converts a domain department
func ToDepartmentResponse(d *hr.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:        d.ID,
		Code:      d.Code,
		Name:      d.Name,
		ManagerID: d.ManagerID,
		Active:    d.Active,
		Version:   d.GetVersion(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ToEmployeeResponse converts a domain employee
func ToEmployeeResponse(e *hr.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:           e.ID,
		Name:         e.Name,
		WorkEmail:    e.WorkEmail,
		UserID:       e.UserID,
		DepartmentID: e.DepartmentID,
		Active:       e.Active,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toDomainFilter(filter ListFilter) map[string]any {
	filters := make(map[string]any)
	if filter.Active != nil {
		filters["active"] = *filter.Active
	}
	if filter.DepartmentID != nil {
		filters["department_id"] = *filter.DepartmentID
	}
	return filters
}
