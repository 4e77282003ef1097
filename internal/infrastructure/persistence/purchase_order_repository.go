package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultOrderNumberPrefix prefixes generated purchase order numbers
const DefaultOrderNumberPrefix = "P"

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db     *gorm.DB
	prefix string
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository.
// An empty prefix selects DefaultOrderNumberPrefix.
func NewGormPurchaseOrderRepository(db *gorm.DB, prefix string) *GormPurchaseOrderRepository {
	if prefix == "" {
		prefix = DefaultOrderNumberPrefix
	}
	return &GormPurchaseOrderRepository{db: db, prefix: prefix}
}

// FindByID finds a purchase order by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of purchase orders and the total match count
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*procurement.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.PurchaseOrderModel
	if err := paginate(query, filter, PurchaseOrderSortFields, "created_at").
		Preload("Lines", orderLines).
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*procurement.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, total, nil
}

// FindOpenByDepartment returns the department's orders that are not
// cancelled or locked
func (r *GormPurchaseOrderRepository) FindOpenByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID) ([]*procurement.PurchaseOrder, error) {
	var orderModels []models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("tenant_id = ? AND department_id = ? AND state NOT IN ?", tenantID, departmentID,
			[]procurement.State{procurement.StateCancel, procurement.StateDone}).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]*procurement.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, nil
}

// CountByProject counts the orders linked to a project
func (r *GormPurchaseOrderRepository) CountByProject(ctx context.Context, tenantID, projectID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("tenant_id = ? AND project_id = ?", tenantID, projectID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a purchase order and its lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseOrderModelFromDomain(order)
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}
		return saveLines(tx, order)
	})
	if err != nil {
		return err
	}
	order.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking: the update only applies when
// the stored version still equals the version the order was loaded with.
// A never-persisted order is inserted.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	if order.LoadedVersion() == 0 {
		return r.Save(ctx, order)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("tenant_id = ? AND id = ? AND version = ?", order.TenantID, order.ID, order.LoadedVersion()).
			Updates(map[string]any{
				"vendor_name":   order.VendorName,
				"project_id":    order.ProjectID,
				"department_id": order.DepartmentID,
				"validator_id":  order.ValidatorID,
				"currency":      string(order.Currency),
				"amount_total":  order.AmountTotal,
				"state":         order.State,
				"notes":         order.Notes,
				"cancel_reason": order.CancelReason,
				"submitted_at":  order.SubmittedAt,
				"confirmed_at":  order.ConfirmedAt,
				"approved_at":   order.ApprovedAt,
				"approved_by":   order.ApprovedBy,
				"cancelled_at":  order.CancelledAt,
				"version":       order.Version,
				"updated_at":    order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return saveLines(tx, order)
	})
	if err != nil {
		return err
	}
	order.MarkPersisted()
	return nil
}

// nextOrderSequenceSQL bumps the tenant's counter in a single statement, so
// concurrent creates never read the same value
const nextOrderSequenceSQL = `INSERT INTO purchase_order_sequences (tenant_id, prefix, last_value)
VALUES (?, ?, 1)
ON CONFLICT (tenant_id, prefix) DO UPDATE SET last_value = purchase_order_sequences.last_value + 1
RETURNING last_value`

// GenerateOrderNumber returns the next order number of the tenant,
// formatted as prefix followed by at least five digits (e.g. P00001).
// Numbers are never reused, even when the order is not saved.
func (r *GormPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var next int64
	if err := r.db.WithContext(ctx).Raw(nextOrderSequenceSQL, tenantID, r.prefix).Scan(&next).Error; err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	if next < 1 {
		return "", fmt.Errorf("failed to allocate order number: sequence returned %d", next)
	}
	return fmt.Sprintf("%s%05d", r.prefix, next), nil
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(vendor_name) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "state":
			query = query.Where("state = ?", value)
		case "states":
			if states, ok := value.([]string); ok && len(states) > 0 {
				query = query.Where("state IN ?", states)
			}
		case "project_id":
			query = query.Where("project_id = ?", value)
		case "department_id":
			query = query.Where("department_id = ?", value)
		case "validator_id":
			query = query.Where("validator_id = ?", value)
		case "buyer_id":
			query = query.Where("buyer_id = ?", value)
		}
	}
	return query
}

// saveLines deletes lines that are no longer on the order and upserts the rest
func saveLines(tx *gorm.DB, order *procurement.PurchaseOrder) error {
	lineIDs := make([]uuid.UUID, len(order.Lines))
	for i, line := range order.Lines {
		lineIDs[i] = line.ID
	}

	stale := tx.Where("order_id = ?", order.ID)
	if len(lineIDs) > 0 {
		stale = stale.Where("id NOT IN ?", lineIDs)
	}
	if err := stale.Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
		return err
	}

	for _, line := range order.Lines {
		if err := tx.Save(models.PurchaseOrderLineModelFromDomain(order.ID, order.TenantID, line)).Error; err != nil {
			return err
		}
	}
	return nil
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

// Ensure GormPurchaseOrderRepository implements procurement.PurchaseOrderRepository
var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
