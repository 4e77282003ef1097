package procurement

import (
	"context"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	// FindAll supports the filters state, project_id, department_id,
	// validator_id and buyer_id, plus a search on number and vendor
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*PurchaseOrder, int64, error)
	// FindOpenByDepartment returns orders of the department that are not
	// cancelled or locked
	FindOpenByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID) ([]*PurchaseOrder, error)
	CountByProject(ctx context.Context, tenantID, projectID uuid.UUID) (int64, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	// SaveWithLock saves only if the stored version still equals the
	// version the order was loaded with
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error
	GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
