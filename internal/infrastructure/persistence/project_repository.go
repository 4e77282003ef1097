package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by ID within a tenant
func (r *GormProjectRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	var model models.ProjectModel
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

// FindAll returns a page of projects and the total match count.
// Supported filters: department_id, stage, department_manager_id.
func (r *GormProjectRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*project.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "department_id":
			query = query.Where("department_id = ?", value)
		case "department_manager_id":
			query = query.Where("department_manager_id = ?", value)
		case "stage":
			query = query.Where("stage = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projectModels []models.ProjectModel
	if err := paginate(query, filter, ProjectSortFields, "created_at").Find(&projectModels).Error; err != nil {
		return nil, 0, err
	}

	projects := make([]*project.Project, len(projectModels))
	for i := range projectModels {
		projects[i] = projectModels[i].ToDomain()
	}
	return projects, total, nil
}

// FindByDepartment returns every project of a department
func (r *GormProjectRepository) FindByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID) ([]*project.Project, error) {
	var projectModels []models.ProjectModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND department_id = ?", tenantID, departmentID).
		Order("created_at ASC").
		Find(&projectModels).Error; err != nil {
		return nil, err
	}
	projects := make([]*project.Project, len(projectModels))
	for i := range projectModels {
		projects[i] = projectModels[i].ToDomain()
	}
	return projects, nil
}

// Save creates or updates a project without a version check
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	model := models.ProjectModelFromDomain(p)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// SaveWithLock updates the project only if nobody changed it since it was
// loaded. A project that was never persisted is inserted.
func (r *GormProjectRepository) SaveWithLock(ctx context.Context, p *project.Project) error {
	if p.LoadedVersion() == 0 {
		if err := r.db.WithContext(ctx).Create(models.ProjectModelFromDomain(p)).Error; err != nil {
			return err
		}
		p.MarkPersisted()
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", p.TenantID, p.ID, p.LoadedVersion()).
		Updates(map[string]any{
			"name":                  p.Name,
			"description":           p.Description,
			"department_id":         p.DepartmentID,
			"department_manager_id": p.DepartmentManagerID,
			"currency":              string(p.Currency),
			"amount":                p.Amount,
			"date_start":            p.DateStart,
			"date_end":              p.DateEnd,
			"stage":                 p.Stage,
			"version":               p.Version,
			"updated_at":            p.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	p.MarkPersisted()
	return nil
}

// Delete deletes a project within a tenant
func (r *GormProjectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormProjectRepository implements project.ProjectRepository
var _ project.ProjectRepository = (*GormProjectRepository)(nil)
