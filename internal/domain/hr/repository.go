package hr

import (
	"context"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// DepartmentRepository defines the interface for department persistence
type DepartmentRepository interface {
	Save(ctx context.Context, dept *Department) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Department, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Department, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	// FindByManagerID finds departments managed by the given employee
	FindByManagerID(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*Department, error)
}

// EmployeeRepository defines the interface for employee persistence
type EmployeeRepository interface {
	Save(ctx context.Context, emp *Employee) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Employee, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Employee, int64, error)
	// FindByUserID returns the first employee linked to the user
	FindByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*Employee, error)
	ExistsByUserID(ctx context.Context, tenantID, userID uuid.UUID, excludeID uuid.UUID) (bool, error)
	CountByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID) (int64, error)
}
