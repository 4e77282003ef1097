package project

import (
	"context"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Project, int64, error)
	FindByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID) ([]*Project, error)
	Save(ctx context.Context, p *Project) error
	// SaveWithLock saves only if the stored version still equals the version
	// the aggregate was loaded with
	SaveWithLock(ctx context.Context, p *Project) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
