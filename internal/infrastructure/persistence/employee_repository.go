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

// GormEmployeeRepository implements EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// Save creates or updates an employee
func (r *GormEmployeeRepository) Save(ctx context.Context, emp *hr.Employee) error {
	model := models.EmployeeModelFromDomain(emp)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	emp.MarkPersisted()
	return nil
}

// FindByID finds an employee by ID within a tenant
func (r *GormEmployeeRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*hr.Employee, error) {
	var model models.EmployeeModel
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

// FindAll returns a page of employees and the total match count.
// Supported filters: department_id, user_id, active.
func (r *GormEmployeeRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*hr.Employee, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.EmployeeModel{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(work_email) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "department_id":
			query = query.Where("department_id = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var empModels []models.EmployeeModel
	if err := paginate(query, filter, EmployeeSortFields, "name").Find(&empModels).Error; err != nil {
		return nil, 0, err
	}

	emps := make([]*hr.Employee, len(empModels))
	for i := range empModels {
		emps[i] = empModels[i].ToDomain()
	}
	return emps, total, nil
}

// FindByUserID returns the first employee linked to the user
func (r *GormEmployeeRepository) FindByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*hr.Employee, error) {
	var model models.EmployeeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByUserID reports whether another employee is already linked to the user
func (r *GormEmployeeRepository) ExistsByUserID(ctx context.Context, tenantID, userID uuid.UUID, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.EmployeeModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByDepartment counts the employees of a department
func (r *GormEmployeeRepository) CountByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.EmployeeModel{}).
		Where("tenant_id = ? AND department_id = ?", tenantID, departmentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormEmployeeRepository implements hr.EmployeeRepository
var _ hr.EmployeeRepository = (*GormEmployeeRepository)(nil)
