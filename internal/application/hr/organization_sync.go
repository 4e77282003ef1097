package hr

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// saveAttempts bounds the reload-and-retry loop on version conflicts
const saveAttempts = 3

// organizationSync recomputes the department manager stored on projects
// and the validator stored on open purchase orders. It runs inside the
// transaction of the change that caused it, so a failure rolls the change
// back instead of leaving stale values behind.
type organizationSync struct {
	repos     TransactionalRepositories
	directory *hr.Directory
}

func newOrganizationSync(repos TransactionalRepositories) *organizationSync {
	return &organizationSync{
		repos:     repos,
		directory: hr.NewDirectory(repos.Departments(), repos.Employees()),
	}
}

// department refreshes everything derived from one department's manager
func (s *organizationSync) department(ctx context.Context, tenantID uuid.UUID, dept *hr.Department) error {
	if err := s.projectManagers(ctx, tenantID, dept); err != nil {
		return err
	}
	return s.validators(ctx, tenantID, dept.ID)
}

// managedBy refreshes the validators of every department the employee manages
func (s *organizationSync) managedBy(ctx context.Context, tenantID, employeeID uuid.UUID) error {
	departments, err := s.repos.Departments().FindByManagerID(ctx, tenantID, employeeID)
	if err != nil {
		return err
	}
	for _, dept := range departments {
		if err := s.validators(ctx, tenantID, dept.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *organizationSync) projectManagers(ctx context.Context, tenantID uuid.UUID, dept *hr.Department) error {
	repo := s.repos.Projects()
	projects, err := repo.FindByDepartment(ctx, tenantID, dept.ID)
	if err != nil {
		return err
	}

	updated := 0
	for _, p := range projects {
		changed, err := saveWithRetry(ctx, p,
			func(p *project.Project) bool { return p.SetDepartmentManager(dept.ManagerID) },
			repo.SaveWithLock,
			func(ctx context.Context) (*project.Project, error) { return repo.FindByID(ctx, tenantID, p.ID) },
		)
		if err != nil {
			return err
		}
		if changed {
			updated++
		}
	}

	logger.L(ctx).Info("recomputed project department managers",
		logger.Record("hr.department", dept.ID),
		zap.Int("projects", len(projects)),
		zap.Int("updated", updated),
	)
	return nil
}

func (s *organizationSync) validators(ctx context.Context, tenantID, departmentID uuid.UUID) error {
	validatorID, err := s.directory.Validator(ctx, tenantID, &departmentID)
	if err != nil {
		return err
	}

	repo := s.repos.PurchaseOrders()
	orders, err := repo.FindOpenByDepartment(ctx, tenantID, departmentID)
	if err != nil {
		return err
	}

	updated := 0
	for _, order := range orders {
		changed, err := saveWithRetry(ctx, order,
			func(o *procurement.PurchaseOrder) bool { return o.SetValidator(validatorID) },
			repo.SaveWithLock,
			func(ctx context.Context) (*procurement.PurchaseOrder, error) {
				return repo.FindByID(ctx, tenantID, order.ID)
			},
		)
		if err != nil {
			return err
		}
		if changed {
			updated++
		}
	}

	logger.L(ctx).Info("recomputed purchase order validators",
		logger.Record("hr.department", departmentID),
		zap.Int("open_orders", len(orders)),
		zap.Int("updated", updated),
	)
	return nil
}

// saveWithRetry applies set and saves, reloading the record when a
// concurrent write bumped its version. It reports whether a save happened.
func saveWithRetry[T any](
	ctx context.Context,
	record T,
	set func(T) bool,
	save func(context.Context, T) error,
	reload func(context.Context) (T, error),
) (bool, error) {
	for attempt := 1; ; attempt++ {
		if !set(record) {
			return false, nil
		}
		err := save(ctx, record)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt >= saveAttempts {
			return false, err
		}
		if record, err = reload(ctx); err != nil {
			return false, err
		}
	}
}
