package persistence

import (
	"context"

	apphr "github.com/erp/procurement/internal/application/hr"
	appproc "github.com/erp/procurement/internal/application/procurement"
	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db          *gorm.DB
	orderPrefix string
}

// NewGormTransactionScope creates a new GormTransactionScope. orderPrefix is
// passed to the purchase order repository used inside transactions.
func NewGormTransactionScope(db *gorm.DB, orderPrefix string) *GormTransactionScope {
	return &GormTransactionScope{db: db, orderPrefix: orderPrefix}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appproc.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx, orderPrefix: s.orderPrefix}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx          *gorm.DB
	orderPrefix string
}

// PurchaseOrders returns the purchase order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PurchaseOrders() procurement.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx, r.orderPrefix)
}

// Projects returns the project repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Projects() project.ProjectRepository {
	return NewGormProjectRepository(r.tx)
}

// Messages returns the chatter message repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Messages() chatter.MessageRepository {
	return NewGormMessageRepository(r.tx)
}

// Activities returns the chatter activity repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Activities() chatter.ActivityRepository {
	return NewGormActivityRepository(r.tx)
}

// GormOrganizationScope runs department and employee changes in a GORM
// transaction together with the project and purchase order fields that
// derive from them.
type GormOrganizationScope struct {
	db          *gorm.DB
	orderPrefix string
}

// NewGormOrganizationScope creates a new GormOrganizationScope
func NewGormOrganizationScope(db *gorm.DB, orderPrefix string) *GormOrganizationScope {
	return &GormOrganizationScope{db: db, orderPrefix: orderPrefix}
}

// Execute runs the given function within a database transaction.
func (s *GormOrganizationScope) Execute(ctx context.Context, fn func(repos apphr.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, orderPrefix: s.orderPrefix})
	})
}

// Departments returns the department repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Departments() hr.DepartmentRepository {
	return NewGormDepartmentRepository(r.tx)
}

// Employees returns the employee repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Employees() hr.EmployeeRepository {
	return NewGormEmployeeRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appproc.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appproc.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

var (
	_ apphr.TransactionScope          = (*GormOrganizationScope)(nil)
	_ apphr.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
