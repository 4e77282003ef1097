package hr

import (
	"context"

	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
)

// TransactionScope runs an organization change atomically with the
// stored fields that derive from it.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories an organization
// change writes to. All of them share the same underlying transaction.
//
// Departments and Employees hold the change itself. Projects store the
// department manager and PurchaseOrders the validator, both derived from it.
type TransactionalRepositories interface {
	Departments() hr.DepartmentRepository
	Employees() hr.EmployeeRepository
	Projects() project.ProjectRepository
	PurchaseOrders() procurement.PurchaseOrderRepository
}
