package procurement

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockPurchaseOrderRepository is a mock implementation of procurement.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*procurement.PurchaseOrder, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*procurement.PurchaseOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockPurchaseOrderRepository) FindOpenByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID) ([]*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, departmentID)
	return args.Get(0).([]*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountByProject(ctx context.Context, tenantID, projectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, projectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockProjectRepository is a mock implementation of project.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*project.Project, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*project.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) FindByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID) ([]*project.Project, error) {
	args := m.Called(ctx, tenantID, departmentID)
	return args.Get(0).([]*project.Project), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) SaveWithLock(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	args := m.Called(ctx, tenantID, username)
	return args.Bool(0), args.Error(1)
}

// MockDepartmentRepository is a mock implementation of hr.DepartmentRepository
type MockDepartmentRepository struct {
	mock.Mock
}

func (m *MockDepartmentRepository) Save(ctx context.Context, dept *hr.Department) error {
	args := m.Called(ctx, dept)
	return args.Error(0)
}

func (m *MockDepartmentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockDepartmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*hr.Department, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hr.Department), args.Error(1)
}

func (m *MockDepartmentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*hr.Department, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*hr.Department), args.Get(1).(int64), args.Error(2)
}

func (m *MockDepartmentRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockDepartmentRepository) FindByManagerID(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*hr.Department, error) {
	args := m.Called(ctx, tenantID, employeeID)
	return args.Get(0).([]*hr.Department), args.Error(1)
}

// MockEmployeeRepository is a mock implementation of hr.EmployeeRepository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Save(ctx context.Context, emp *hr.Employee) error {
	args := m.Called(ctx, emp)
	return args.Error(0)
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*hr.Employee, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hr.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*hr.Employee, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*hr.Employee), args.Get(1).(int64), args.Error(2)
}

func (m *MockEmployeeRepository) FindByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*hr.Employee, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hr.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) ExistsByUserID(ctx context.Context, tenantID, userID uuid.UUID, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, userID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEmployeeRepository) CountByDepartment(ctx context.Context, tenantID, departmentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, departmentID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMessageRepository is a mock implementation of chatter.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Save(ctx context.Context, msg *chatter.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*chatter.Message, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chatter.Message), args.Error(1)
}

func (m *MockMessageRepository) FindByRecord(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID, filter shared.Filter) ([]*chatter.Message, int64, error) {
	args := m.Called(ctx, tenantID, resModel, resID, filter)
	return args.Get(0).([]*chatter.Message), args.Get(1).(int64), args.Error(2)
}

// MockActivityRepository is a mock implementation of chatter.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Save(ctx context.Context, activity *chatter.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*chatter.Activity, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chatter.Activity), args.Error(1)
}

func (m *MockActivityRepository) FindByAssignee(ctx context.Context, tenantID, userID uuid.UUID, state chatter.ActivityState, filter shared.Filter) ([]*chatter.Activity, int64, error) {
	args := m.Called(ctx, tenantID, userID, state, filter)
	return args.Get(0).([]*chatter.Activity), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityRepository) FindOpenByRecord(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID) ([]*chatter.Activity, error) {
	args := m.Called(ctx, tenantID, resModel, resID)
	return args.Get(0).([]*chatter.Activity), args.Error(1)
}

// =============================================================================
// Mock Infrastructure
// =============================================================================

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockOrderMetrics is a mock implementation of OrderMetrics
type MockOrderMetrics struct {
	mock.Mock
}

func (m *MockOrderMetrics) RecordRFQSubmitted(ctx context.Context, tenantID uuid.UUID) {
	m.Called(ctx, tenantID)
}

func (m *MockOrderMetrics) RecordApprovalRequested(ctx context.Context, tenantID uuid.UUID) {
	m.Called(ctx, tenantID)
}

func (m *MockOrderMetrics) RecordConfirmed(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, currency string) {
	m.Called(ctx, tenantID, amount, currency)
}

func (m *MockOrderMetrics) RecordCancelled(ctx context.Context, tenantID uuid.UUID, fromState string) {
	m.Called(ctx, tenantID, fromState)
}

func (m *MockOrderMetrics) RecordBudgetDeducted(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, currency string) {
	m.Called(ctx, tenantID, amount, currency)
}

// fakeTransactionScope runs the function directly against the mocks.
// committed counts Execute calls whose function returned nil.
type fakeTransactionScope struct {
	orders     *MockPurchaseOrderRepository
	projects   *MockProjectRepository
	messages   *MockMessageRepository
	activities *MockActivityRepository
	committed  int
}

func (s *fakeTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	if err := fn(s); err != nil {
		return err
	}
	s.committed++
	return nil
}

func (s *fakeTransactionScope) PurchaseOrders() procurement.PurchaseOrderRepository { return s.orders }
func (s *fakeTransactionScope) Projects() project.ProjectRepository                 { return s.projects }
func (s *fakeTransactionScope) Messages() chatter.MessageRepository                 { return s.messages }
func (s *fakeTransactionScope) Activities() chatter.ActivityRepository              { return s.activities }
