// Package hr holds the department and employee use cases.
package hr

import (
	"context"
	"strings"

	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDepartmentCodeExists = shared.NewDomainError("ALREADY_EXISTS", "Department code already exists")
	ErrDepartmentNotEmpty   = shared.NewDomainError("DEPARTMENT_NOT_EMPTY", "Department still has employees")
)

// DepartmentService handles department operations
type DepartmentService struct {
	deptRepo       hr.DepartmentRepository
	empRepo        hr.EmployeeRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(deptRepo hr.DepartmentRepository, empRepo hr.EmployeeRepository, txScope TransactionScope) *DepartmentService {
	return &DepartmentService{deptRepo: deptRepo, empRepo: empRepo, txScope: txScope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DepartmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a department, optionally with its manager
func (s *DepartmentService) Create(ctx context.Context, tenantID uuid.UUID, req CreateDepartmentRequest) (*DepartmentResponse, error) {
	exists, err := s.deptRepo.ExistsByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDepartmentCodeExists
	}

	dept, err := hr.NewDepartment(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.ManagerID != nil {
		if err := s.checkEmployee(ctx, tenantID, *req.ManagerID); err != nil {
			return nil, err
		}
		dept.SetManager(req.ManagerID)
	}

	if err := s.deptRepo.Save(ctx, dept); err != nil {
		return nil, err
	}
	s.publish(ctx, dept)

	response := ToDepartmentResponse(dept)
	return &response, nil
}

// GetByID retrieves a department
func (s *DepartmentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*DepartmentResponse, error) {
	dept, err := s.deptRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToDepartmentResponse(dept)
	return &response, nil
}

// List retrieves departments with filtering and pagination
func (s *DepartmentService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]DepartmentResponse, int64, error) {
	depts, total, err := s.deptRepo.FindAll(ctx, tenantID, buildFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	items := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		items[i] = ToDepartmentResponse(d)
	}
	return items, total, nil
}

// Update renames, archives or restores a department
func (s *DepartmentService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateDepartmentRequest) (*DepartmentResponse, error) {
	dept, err := s.deptRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := dept.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Active != nil && *req.Active != dept.Active {
		if *req.Active {
			err = dept.Restore()
		} else {
			err = dept.Archive()
		}
		if err != nil {
			return nil, err
		}
	}
	if err := s.deptRepo.Save(ctx, dept); err != nil {
		return nil, err
	}

	response := ToDepartmentResponse(dept)
	return &response, nil
}

// SetManager assigns or clears the department manager. The manager stored
// on the department's projects and the validator of its open purchase
// orders are recomputed in the same transaction.
func (s *DepartmentService) SetManager(ctx context.Context, tenantID, id uuid.UUID, req SetManagerRequest) (*DepartmentResponse, error) {
	var dept *hr.Department
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		dept, err = repos.Departments().FindByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if req.ManagerID != nil {
			if _, err := repos.Employees().FindByID(ctx, tenantID, *req.ManagerID); err != nil {
				return err
			}
		}

		changed := !sameID(dept.ManagerID, req.ManagerID)
		dept.SetManager(req.ManagerID)
		if err := repos.Departments().Save(ctx, dept); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return newOrganizationSync(repos).department(ctx, tenantID, dept)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("department manager set",
		logger.Record("hr.department", dept.ID),
		zap.Bool("cleared", req.ManagerID == nil),
	)
	s.publish(ctx, dept)

	response := ToDepartmentResponse(dept)
	return &response, nil
}

// Delete removes a department without employees
func (s *DepartmentService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.deptRepo.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	count, err := s.empRepo.CountByDepartment(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDepartmentNotEmpty
	}
	return s.deptRepo.Delete(ctx, tenantID, id)
}

func (s *DepartmentService) checkEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) error {
	_, err := s.empRepo.FindByID(ctx, tenantID, employeeID)
	return err
}

func (s *DepartmentService) publish(ctx context.Context, dept *hr.Department) {
	events := dept.GetDomainEvents()
	dept.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Error("failed to publish department events", zap.Error(err))
	}
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func buildFilter(filter ListFilter) shared.Filter {
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
	for k, v := range toDomainFilter(filter) {
		domainFilter.Filters[k] = v
	}
	return domainFilter
}
