// Package project holds the project use cases: budgeted projects owned by
// a department, whose manager is stored on the project.
package project

import (
	"context"

	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrProjectInUse is returned when deleting a project purchase orders refer to
	ErrProjectInUse        = shared.NewDomainError("PROJECT_IN_USE", "The project is referenced by purchase orders and cannot be deleted.")
	ErrProjectNotDeletable = shared.NewDomainError("INVALID_STATE", "Only projects in the To Do stage can be deleted.")
)

// ProjectService handles project operations
type ProjectService struct {
	projectRepo     project.ProjectRepository
	orderRepo       procurement.PurchaseOrderRepository
	directory       *hr.Directory
	clock           shared.Clock
	defaultCurrency valueobject.Currency
	eventPublisher  shared.EventPublisher
}

// NewProjectService creates a new ProjectService. "Today" for the date
// rules is read from clock, which runs in the company timezone.
func NewProjectService(
	projectRepo project.ProjectRepository,
	orderRepo procurement.PurchaseOrderRepository,
	directory *hr.Directory,
	clock shared.Clock,
	defaultCurrency valueobject.Currency,
) *ProjectService {
	return &ProjectService{
		projectRepo:     projectRepo,
		orderRepo:       orderRepo,
		directory:       directory,
		clock:           clock,
		defaultCurrency: defaultCurrency,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProjectService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a project in the to_do stage
func (s *ProjectService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	currency := s.defaultCurrency
	if req.Currency != "" {
		var err error
		currency, err = valueobject.ParseCurrency(req.Currency)
		if err != nil {
			return nil, err
		}
	}

	p, err := project.NewProject(tenantID, req.Name, currency, req.Amount, req.DateStart, req.DateEnd, shared.Today(s.clock))
	if err != nil {
		return nil, err
	}
	p.Description = req.Description

	if req.DepartmentID != nil {
		id := *req.DepartmentID
		p.DepartmentID = &id
		managerID, err := s.directory.DepartmentManager(ctx, tenantID, p.DepartmentID)
		if err != nil {
			return nil, err
		}
		p.SetDepartmentManager(managerID)
	}

	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("project created",
		logger.Record("project.project", p.ID),
		zap.String("amount", p.Amount.String()),
		zap.String("currency", p.Currency.String()),
	)

	s.publish(ctx, p)

	response := ToProjectResponse(p)
	return &response, nil
}

// GetByID retrieves a project
func (s *ProjectService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// List retrieves projects with filtering and pagination
func (s *ProjectService) List(ctx context.Context, tenantID uuid.UUID, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.DepartmentID != nil {
		domainFilter.Filters["department_id"] = *filter.DepartmentID
	}
	if filter.Stage != "" {
		domainFilter.Filters["stage"] = filter.Stage
	}

	projects, total, err := s.projectRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		items[i] = ToProjectResponse(p)
	}
	return items, total, nil
}

// Update applies user changes under the stage editability rule
func (s *ProjectService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	changes := project.Changes{
		Name:            req.Name,
		Description:     req.Description,
		DepartmentID:    req.DepartmentID,
		ClearDepartment: req.ClearDepartment,
		Amount:          req.Amount,
		DateStart:       req.DateStart,
		DateEnd:         req.DateEnd,
	}
	if req.Currency != nil {
		currency, err := valueobject.ParseCurrency(*req.Currency)
		if err != nil {
			return nil, err
		}
		changes.Currency = &currency
	}

	departmentChanged, err := p.Update(changes, shared.Today(s.clock))
	if err != nil {
		return nil, err
	}

	if departmentChanged {
		managerID, err := s.directory.DepartmentManager(ctx, tenantID, p.DepartmentID)
		if err != nil {
			return nil, err
		}
		p.SetDepartmentManager(managerID)
	}

	if err := s.projectRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}

	s.publish(ctx, p)

	response := ToProjectResponse(p)
	return &response, nil
}

// ChangeStage moves the project to another stage
func (s *ProjectService) ChangeStage(ctx context.Context, tenantID, id uuid.UUID, req ChangeStageRequest) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := p.ChangeStage(project.Stage(req.Stage)); err != nil {
		return nil, err
	}

	if err := s.projectRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}

	s.publish(ctx, p)

	response := ToProjectResponse(p)
	return &response, nil
}

// Delete removes a to_do project no purchase order refers to
func (s *ProjectService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	p, err := s.projectRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if !p.CanDelete() {
		return ErrProjectNotDeletable
	}

	count, err := s.orderRepo.CountByProject(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrProjectInUse
	}

	return s.projectRepo.Delete(ctx, tenantID, id)
}

func (s *ProjectService) publish(ctx context.Context, p *project.Project) {
	events := p.GetDomainEvents()
	p.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Error("failed to publish project events", zap.Error(err))
	}
}
