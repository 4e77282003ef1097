package hr

import (
	"context"

	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUserAlreadyLinked is returned when a user is already linked to another employee
var ErrUserAlreadyLinked = shared.NewDomainError("USER_ALREADY_LINKED", "The user is already linked to another employee")

// EmployeeService handles employee operations
type EmployeeService struct {
	empRepo        hr.EmployeeRepository
	deptRepo       hr.DepartmentRepository
	userRepo       identity.UserRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(
	empRepo hr.EmployeeRepository,
	deptRepo hr.DepartmentRepository,
	userRepo identity.UserRepository,
	txScope TransactionScope,
) *EmployeeService {
	return &EmployeeService{empRepo: empRepo, deptRepo: deptRepo, userRepo: userRepo, txScope: txScope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *EmployeeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates an employee
func (s *EmployeeService) Create(ctx context.Context, tenantID uuid.UUID, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	emp, err := hr.NewEmployee(tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := emp.SetWorkEmail(req.WorkEmail); err != nil {
		return nil, err
	}
	if req.DepartmentID != nil {
		if _, err := s.deptRepo.FindByID(ctx, tenantID, *req.DepartmentID); err != nil {
			return nil, err
		}
		emp.AssignDepartment(req.DepartmentID)
	}
	if req.UserID != nil {
		if err := s.checkUser(ctx, tenantID, *req.UserID, emp.ID); err != nil {
			return nil, err
		}
		emp.LinkUser(req.UserID)
	}

	if err := s.empRepo.Save(ctx, emp); err != nil {
		return nil, err
	}
	s.publish(ctx, emp)

	response := ToEmployeeResponse(emp)
	return &response, nil
}

// GetByID retrieves an employee
func (s *EmployeeService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*EmployeeResponse, error) {
	emp, err := s.empRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToEmployeeResponse(emp)
	return &response, nil
}

// GetByUser retrieves the employee linked to a user
func (s *EmployeeService) GetByUser(ctx context.Context, tenantID, userID uuid.UUID) (*EmployeeResponse, error) {
	emp, err := s.empRepo.FindByUserID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	response := ToEmployeeResponse(emp)
	return &response, nil
}

// List retrieves employees with filtering and pagination
func (s *EmployeeService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]EmployeeResponse, int64, error) {
	emps, total, err := s.empRepo.FindAll(ctx, tenantID, buildFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	items := make([]EmployeeResponse, len(emps))
	for i, e := range emps {
		items[i] = ToEmployeeResponse(e)
	}
	return items, total, nil
}

// Update changes an employee's name, email or department
func (s *EmployeeService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateEmployeeRequest) (*EmployeeResponse, error) {
	emp, err := s.empRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := emp.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.WorkEmail != nil {
		if err := emp.SetWorkEmail(*req.WorkEmail); err != nil {
			return nil, err
		}
	}
	switch {
	case req.ClearDepartment:
		emp.AssignDepartment(nil)
	case req.DepartmentID != nil:
		if _, err := s.deptRepo.FindByID(ctx, tenantID, *req.DepartmentID); err != nil {
			return nil, err
		}
		emp.AssignDepartment(req.DepartmentID)
	}

	if err := s.empRepo.Save(ctx, emp); err != nil {
		return nil, err
	}

	response := ToEmployeeResponse(emp)
	return &response, nil
}

// LinkUser links the employee to a user account, or unlinks it. A user is
// linked to at most one employee. Open purchase orders of the departments
// the employee manages get their validator recomputed in the same
// transaction.
func (s *EmployeeService) LinkUser(ctx context.Context, tenantID, id uuid.UUID, req LinkUserRequest) (*EmployeeResponse, error) {
	if req.UserID != nil {
		if _, err := s.userRepo.FindByID(ctx, tenantID, *req.UserID); err != nil {
			return nil, err
		}
	}

	var emp *hr.Employee
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		emp, err = repos.Employees().FindByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if req.UserID != nil {
			if err := checkUserFree(ctx, repos.Employees(), tenantID, *req.UserID, emp.ID); err != nil {
				return err
			}
		}

		changed := !sameID(emp.UserID, req.UserID)
		emp.LinkUser(req.UserID)
		if err := repos.Employees().Save(ctx, emp); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return newOrganizationSync(repos).managedBy(ctx, tenantID, emp.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("employee user link changed",
		logger.Record("hr.employee", emp.ID),
		zap.Bool("linked", req.UserID != nil),
	)
	s.publish(ctx, emp)

	response := ToEmployeeResponse(emp)
	return &response, nil
}

// Archive deactivates an employee. Employees are never hard deleted since
// departments and orders keep referring to them.
func (s *EmployeeService) Archive(ctx context.Context, tenantID, id uuid.UUID) error {
	emp, err := s.empRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	emp.Archive()
	return s.empRepo.Save(ctx, emp)
}

func (s *EmployeeService) checkUser(ctx context.Context, tenantID, userID, employeeID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, tenantID, userID); err != nil {
		return err
	}
	return checkUserFree(ctx, s.empRepo, tenantID, userID, employeeID)
}

// checkUserFree rejects a user already linked to another employee
func checkUserFree(ctx context.Context, empRepo hr.EmployeeRepository, tenantID, userID, employeeID uuid.UUID) error {
	linked, err := empRepo.ExistsByUserID(ctx, tenantID, userID, employeeID)
	if err != nil {
		return err
	}
	if linked {
		return ErrUserAlreadyLinked
	}
	return nil
}

func (s *EmployeeService) publish(ctx context.Context, emp *hr.Employee) {
	events := emp.GetDomainEvents()
	emp.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Error("failed to publish employee events", zap.Error(err))
	}
}
