package project

import (
	"context"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testToday = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	testClock = shared.FixedClock{Time: testToday}
	usd       = valueobject.Currency("USD")
)

func dateAt(days int) *time.Time {
	d := testToday.AddDate(0, 0, days)
	return &d
}

type fixture struct {
	projects *MockProjectRepository
	orders   *MockPurchaseOrderRepository
	depts    *MockDepartmentRepository
	service  *ProjectService
}

func newFixture() *fixture {
	f := &fixture{
		projects: new(MockProjectRepository),
		orders:   new(MockPurchaseOrderRepository),
		depts:    new(MockDepartmentRepository),
	}
	// Employees are not consulted for department managers.
	directory := hr.NewDirectory(f.depts, nil)
	f.service = NewProjectService(f.projects, f.orders, directory, testClock, usd)
	return f
}

func newProject(t *testing.T, tenantID uuid.UUID) *project.Project {
	t.Helper()
	p, err := project.NewProject(tenantID, "Warehouse", usd, decimal.NewFromInt(1000), dateAt(-1), dateAt(30), testToday)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func newDepartmentWithManager(t *testing.T, tenantID uuid.UUID, managerID *uuid.UUID) *hr.Department {
	t.Helper()
	dept, err := hr.NewDepartment(tenantID, "OPS", "Operations")
	require.NoError(t, err)
	dept.SetManager(managerID)
	dept.ClearDomainEvents()
	return dept
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("defaults currency and stores manager", func(t *testing.T) {
		f := newFixture()
		managerID := uuid.New()
		dept := newDepartmentWithManager(t, tenantID, &managerID)
		f.depts.On("FindByID", ctx, tenantID, dept.ID).Return(dept, nil)
		f.projects.On("Save", ctx, mock.AnythingOfType("*project.Project")).Return(nil)

		resp, err := f.service.Create(ctx, tenantID, CreateProjectRequest{
			Name:         "Warehouse",
			DepartmentID: &dept.ID,
			Amount:       decimal.NewFromInt(5000),
			DateStart:    dateAt(0),
			DateEnd:      dateAt(90),
		})

		require.NoError(t, err)
		assert.Equal(t, "USD", resp.Currency)
		assert.Equal(t, &managerID, resp.DepartmentManagerID)
		assert.Equal(t, "to_do", resp.Stage)
		assert.True(t, decimal.NewFromInt(5000).Equal(resp.Amount))
	})

	t.Run("rejects past window", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Create(ctx, tenantID, CreateProjectRequest{
			Name:      "Old",
			Amount:    decimal.NewFromInt(10),
			DateStart: dateAt(-30),
			DateEnd:   dateAt(-1),
		})
		assert.ErrorIs(t, err, project.ErrDateWindow)
		f.projects.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Create(ctx, tenantID, CreateProjectRequest{
			Name:      "Free",
			DateStart: dateAt(0),
			DateEnd:   dateAt(1),
		})
		assert.ErrorIs(t, err, project.ErrAmountNotPositive)
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Create(ctx, tenantID, CreateProjectRequest{
			Name:      "Abroad",
			Currency:  "us",
			Amount:    decimal.NewFromInt(10),
			DateStart: dateAt(0),
			DateEnd:   dateAt(1),
		})
		require.Error(t, err)
	})
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("department change recomputes manager", func(t *testing.T) {
		f := newFixture()
		p := newProject(t, tenantID)
		managerID := uuid.New()
		dept := newDepartmentWithManager(t, tenantID, &managerID)

		f.projects.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
		f.depts.On("FindByID", ctx, tenantID, dept.ID).Return(dept, nil)
		f.projects.On("SaveWithLock", ctx, p).Return(nil)

		resp, err := f.service.Update(ctx, tenantID, p.ID, UpdateProjectRequest{DepartmentID: &dept.ID})
		require.NoError(t, err)
		assert.Equal(t, &managerID, resp.DepartmentManagerID)
	})

	t.Run("read-only outside to_do", func(t *testing.T) {
		f := newFixture()
		p := newProject(t, tenantID)
		require.NoError(t, p.ChangeStage(project.StageInProgress))
		f.projects.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)

		name := "Renamed"
		_, err := f.service.Update(ctx, tenantID, p.ID, UpdateProjectRequest{Name: &name})
		assert.ErrorIs(t, err, shared.ErrFieldReadonly)
		f.projects.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("concurrent edit surfaces conflict", func(t *testing.T) {
		f := newFixture()
		p := newProject(t, tenantID)
		f.projects.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
		f.projects.On("SaveWithLock", ctx, p).Return(shared.ErrConcurrencyConflict)

		name := "Renamed"
		_, err := f.service.Update(ctx, tenantID, p.ID, UpdateProjectRequest{Name: &name})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestProjectService_ChangeStage(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newFixture()
	p := newProject(t, tenantID)
	f.projects.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
	f.projects.On("SaveWithLock", ctx, p).Return(nil)

	resp, err := f.service.ChangeStage(ctx, tenantID, p.ID, ChangeStageRequest{Stage: "done"})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Stage)
	assert.Equal(t, []string{project.FieldStage}, resp.EditableFields)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("only to_do", func(t *testing.T) {
		f := newFixture()
		p := newProject(t, tenantID)
		require.NoError(t, p.ChangeStage(project.StageInProgress))
		f.projects.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)

		err := f.service.Delete(ctx, tenantID, p.ID)
		assert.ErrorIs(t, err, ErrProjectNotDeletable)
	})

	t.Run("referenced by orders", func(t *testing.T) {
		f := newFixture()
		p := newProject(t, tenantID)
		f.projects.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
		f.orders.On("CountByProject", ctx, tenantID, p.ID).Return(int64(3), nil)

		err := f.service.Delete(ctx, tenantID, p.ID)
		assert.ErrorIs(t, err, ErrProjectInUse)
	})

	t.Run("deletes", func(t *testing.T) {
		f := newFixture()
		p := newProject(t, tenantID)
		f.projects.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
		f.orders.On("CountByProject", ctx, tenantID, p.ID).Return(int64(0), nil)
		f.projects.On("Delete", ctx, tenantID, p.ID).Return(nil)

		require.NoError(t, f.service.Delete(ctx, tenantID, p.ID))
		f.projects.AssertExpectations(t)
	})
}
