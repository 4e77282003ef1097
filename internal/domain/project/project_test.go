package project

import (
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := today.AddDate(0, 0, offset)
	return &d
}

func newTestProject(t *testing.T) *Project {
	t.Helper()
	p, err := NewProject(uuid.New(), "Warehouse retrofit", valueobject.USD, decimal.NewFromInt(10000), day(-10), day(30), today)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestNewProject(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates project in to do stage", func(t *testing.T) {
		p, err := NewProject(tenantID, "  Solar farm ", valueobject.EUR, decimal.NewFromInt(5000), day(0), day(90), today)
		require.NoError(t, err)

		assert.Equal(t, "Solar farm", p.Name)
		assert.Equal(t, StageToDo, p.Stage)
		assert.Equal(t, valueobject.EUR, p.Currency)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(5000)))
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeProjectCreated, p.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects zero or negative amount", func(t *testing.T) {
		for _, amount := range []int64{0, -1} {
			_, err := NewProject(tenantID, "P", valueobject.USD, decimal.NewFromInt(amount), day(0), day(1), today)
			require.Error(t, err)
			assert.Equal(t, "Project amount cannot be negative or null.", err.Error())
		}
	})

	t.Run("rejects missing dates", func(t *testing.T) {
		_, err := NewProject(tenantID, "P", valueobject.USD, decimal.NewFromInt(1), nil, day(1), today)
		assert.ErrorIs(t, err, ErrDatesRequired)

		_, err = NewProject(tenantID, "P", valueobject.USD, decimal.NewFromInt(1), day(0), nil, today)
		assert.Equal(t, "Both start date and end date are required.", err.Error())
	})

	t.Run("rejects invalid currency", func(t *testing.T) {
		_, err := NewProject(tenantID, "P", "dollars", decimal.NewFromInt(1), day(0), day(1), today)
		require.Error(t, err)
	})
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name    string
		start   *time.Time
		end     *time.Time
		wantErr error
	}{
		{"running project", day(-5), day(5), nil},
		{"starts today", day(0), day(5), nil},
		{"ends today", day(-5), day(0), nil},
		{"single day today", day(0), day(0), nil},
		{"starts in the future", day(3), day(10), nil},
		{"already finished", day(-10), day(-1), ErrDateWindow},
		{"future start ignores the end", day(5), day(2), nil},
		{"no start", nil, day(2), ErrDatesRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.start, tt.end, today)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("time of day is ignored", func(t *testing.T) {
		evening := today.Add(22 * time.Hour)
		morning := today.Add(1 * time.Hour)
		assert.NoError(t, ValidateSchedule(&morning, &morning, evening))
	})

	t.Run("window message", func(t *testing.T) {
		err := ValidateSchedule(day(-10), day(-1), today)
		assert.Equal(t, "Current date must be within project date range (between start and end date) or project must start in the future", err.Error())
	})
}

func TestProject_Update(t *testing.T) {
	t.Run("updates fields in to do stage", func(t *testing.T) {
		p := newTestProject(t)
		name := "Retrofit phase 2"
		amount := decimal.NewFromInt(2500)
		deptID := uuid.New()

		changed, err := p.Update(Changes{Name: &name, Amount: &amount, DepartmentID: &deptID}, today)
		require.NoError(t, err)

		assert.True(t, changed)
		assert.Equal(t, name, p.Name)
		assert.True(t, p.Amount.Equal(amount))
		assert.Equal(t, &deptID, p.DepartmentID)
		assert.Nil(t, p.DepartmentManagerID)
		require.Len(t, p.GetDomainEvents(), 1)
		evt := p.GetDomainEvents()[0].(*ProjectUpdatedEvent)
		assert.ElementsMatch(t, []string{FieldName, FieldAmount, FieldDepartmentID}, evt.Fields)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		p := newTestProject(t)
		zero := decimal.Zero
		_, err := p.Update(Changes{Amount: &zero}, today)
		assert.ErrorIs(t, err, ErrAmountNotPositive)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("revalidates dates when one changes", func(t *testing.T) {
		p := newTestProject(t)
		_, err := p.Update(Changes{DateEnd: day(-1)}, today)
		assert.ErrorIs(t, err, ErrDateWindow)
	})

	t.Run("date rule is not re-evaluated when dates are untouched", func(t *testing.T) {
		p := newTestProject(t)
		later := today.AddDate(0, 2, 0)
		desc := "still editable"
		_, err := p.Update(Changes{Description: &desc}, later)
		assert.NoError(t, err)
	})

	t.Run("fields are read-only outside to do", func(t *testing.T) {
		p := newTestProject(t)
		require.NoError(t, p.ChangeStage(StageInProgress))

		name := "renamed"
		_, err := p.Update(Changes{Name: &name}, today)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrFieldReadonly)
		assert.Equal(t, "Warehouse retrofit", p.Name)
		assert.Equal(t, []string{FieldStage}, p.EditableFields())
		assert.True(t, p.IsFieldEditable(FieldStage))
	})

	t.Run("clearing department reports a change", func(t *testing.T) {
		p := newTestProject(t)
		deptID := uuid.New()
		managerID := uuid.New()
		_, err := p.Update(Changes{DepartmentID: &deptID}, today)
		require.NoError(t, err)
		p.SetDepartmentManager(&managerID)

		changed, err := p.Update(Changes{ClearDepartment: true}, today)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Nil(t, p.DepartmentID)
		assert.Nil(t, p.DepartmentManagerID)
	})
}

func TestProject_ChangeStage(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.ChangeStage(StageDone))
	assert.Equal(t, StageDone, p.Stage)
	assert.False(t, p.CanDelete())
	evt := p.GetDomainEvents()[0].(*ProjectStageChangedEvent)
	assert.Equal(t, StageToDo, evt.FromStage)

	assert.Error(t, p.ChangeStage("archived"))

	require.NoError(t, p.ChangeStage(StageToDo))
	assert.True(t, p.CanDelete())
}

func TestProject_DeductBudget(t *testing.T) {
	poID := uuid.New()

	t.Run("deducts and records event", func(t *testing.T) {
		p := newTestProject(t)
		err := p.DeductBudget(valueobject.MustNewMoney(decimal.RequireFromString("2500.50"), valueobject.USD), poID)
		require.NoError(t, err)

		assert.True(t, p.Amount.Equal(decimal.RequireFromString("7499.50")))
		evt := p.GetDomainEvents()[0].(*ProjectBudgetDeductedEvent)
		assert.Equal(t, poID, evt.PurchaseOrderID)
		assert.True(t, evt.BudgetBefore.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("rejects consuming the whole budget", func(t *testing.T) {
		p := newTestProject(t)
		err := p.DeductBudget(p.Budget(), poID)
		require.ErrorIs(t, err, ErrAmountNotPositive)
		assert.Equal(t, "Project amount cannot be negative or null.", err.Error())
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(10000)))
		assert.Empty(t, p.GetDomainEvents())
	})

	t.Run("rejects amounts above the budget", func(t *testing.T) {
		p := newTestProject(t)
		err := p.DeductBudget(valueobject.MustNewMoney(decimal.NewFromInt(10001), valueobject.USD), poID)
		require.Error(t, err)
		assert.Equal(t, "Purchase order amount exceeds project budget.", err.Error())
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("rejects other currencies", func(t *testing.T) {
		p := newTestProject(t)
		err := p.DeductBudget(valueobject.MustNewMoney(decimal.NewFromInt(1), valueobject.EUR), poID)
		assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)
	})

	t.Run("ignores stage editability", func(t *testing.T) {
		p := newTestProject(t)
		require.NoError(t, p.ChangeStage(StageInProgress))
		require.NoError(t, p.DeductBudget(valueobject.MustNewMoney(decimal.NewFromInt(100), valueobject.USD), poID))
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(9900)))
	})
}
