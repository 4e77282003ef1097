package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDepartmentRepository implements DepartmentRepository using GORM
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewGormDepartmentRepository creates a new GormDepartmentRepository
func NewGormDepartmentRepository(db *gorm.DB) *GormDepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

// Save creates or updates a department
func (r *GormDepartmentRepository) Save(ctx context.Context, dept *hr.Department) error {
	model := models.DepartmentModelFromDomain(dept)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	dept.MarkPersisted()
	return nil
}

// Delete deletes a department within a tenant
func (r *GormDepartmentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DepartmentModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a department by ID within a tenant
func (r *GormDepartmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*hr.Department, error) {
	var model models.DepartmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of departments and the total match count
func (r *GormDepartmentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*hr.Department, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DepartmentModel{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}
	if active, ok := filter.Filters["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var deptModels []models.DepartmentModel
	if err := paginate(query, filter, DepartmentSortFields, "code").Find(&deptModels).Error; err != nil {
		return nil, 0, err
	}

	depts := make([]*hr.Department, len(deptModels))
	for i := range deptModels {
		depts[i] = deptModels[i].ToDomain()
	}
	return depts, total, nil
}

// ExistsByCode checks if a department code is already taken in the tenant
func (r *GormDepartmentRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DepartmentModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByManagerID returns the departments managed by an employee
func (r *GormDepartmentRepository) FindByManagerID(ctx context.Context, tenantID, managerID uuid.UUID) ([]*hr.Department, error) {
	var deptModels []models.DepartmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND manager_id = ?", tenantID, managerID).
		Order("code ASC").
		Find(&deptModels).Error; err != nil {
		return nil, err
	}
	depts := make([]*hr.Department, len(deptModels))
	for i := range deptModels {
		depts[i] = deptModels[i].ToDomain()
	}
	return depts, nil
}

// Ensure GormDepartmentRepository implements hr.DepartmentRepository
var _ hr.DepartmentRepository = (*GormDepartmentRepository)(nil)
