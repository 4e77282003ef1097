package procurement

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

var now = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

func buyer() Actor {
	return Actor{UserID: uuid.New(), Name: "Awa Diop"}
}

func newTestOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	dept := uuid.New()
	o, err := NewPurchaseOrder(uuid.New(), "P00001", "Acme Supplies", uuid.New(), &dept, valueobject.USD, now)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func lines(items ...LineInput) []LineInput {
	return items
}

func item(name string, qty, price string) LineInput {
	return LineInput{
		ProductName: name,
		Quantity:    decimal.RequireFromString(qty),
		PriceUnit:   decimal.RequireFromString(price),
	}
}

func submittable(t *testing.T) *PurchaseOrder {
	t.Helper()
	o := newTestOrder(t)
	require.NoError(t, o.SetLines(lines(item("Cement", "10", "12.50"))))
	validator := uuid.New()
	o.SetValidator(&validator)
	o.ClearDomainEvents()
	return o
}

func TestNewPurchaseOrder(t *testing.T) {
	tenantID := uuid.New()
	dept := uuid.New()

	t.Run("creates draft", func(t *testing.T) {
		o, err := NewPurchaseOrder(tenantID, "P00001", " Acme ", uuid.New(), &dept, valueobject.EUR, now)
		require.NoError(t, err)
		assert.Equal(t, StateDraft, o.State)
		assert.Equal(t, "Acme", o.VendorName)
		assert.Equal(t, now, o.DateOrder)
		assert.True(t, o.AmountTotal.IsZero())
		require.Len(t, o.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePurchaseOrderCreated, o.GetDomainEvents()[0].EventType())
	})

	t.Run("department is required", func(t *testing.T) {
		_, err := NewPurchaseOrder(tenantID, "P00001", "Acme", uuid.New(), nil, valueobject.USD, now)
		assert.ErrorIs(t, err, ErrDepartmentRequired)

		nilDept := uuid.Nil
		_, err = NewPurchaseOrder(tenantID, "P00001", "Acme", uuid.New(), &nilDept, valueobject.USD, now)
		assert.ErrorIs(t, err, ErrDepartmentRequired)
	})

	t.Run("rejects empty vendor and number", func(t *testing.T) {
		_, err := NewPurchaseOrder(tenantID, "P00001", "  ", uuid.New(), &dept, valueobject.USD, now)
		assert.Error(t, err)
		_, err = NewPurchaseOrder(tenantID, "", "Acme", uuid.New(), &dept, valueobject.USD, now)
		assert.Error(t, err)
	})
}

func TestSetLines(t *testing.T) {
	t.Run("computes subtotals and total", func(t *testing.T) {
		o := newTestOrder(t)
		err := o.SetLines(lines(item("Cement", "10", "12.50"), item("Sand", "3", "0.333")))
		require.NoError(t, err)

		require.Len(t, o.Lines, 2)
		assert.Equal(t, "125", o.Lines[0].Subtotal.String())
		assert.Equal(t, "1", o.Lines[1].Subtotal.String())
		assert.Equal(t, "126", o.AmountTotal.String())
		assert.Equal(t, 2, o.Lines[1].Sequence)
	})

	t.Run("rejects non-positive price with product name", func(t *testing.T) {
		o := newTestOrder(t)
		err := o.SetLines(lines(item("Cement", "1", "0")))
		require.Error(t, err)
		assert.Equal(t, "Product 'Cement' must have a price greater than 0.", err.Error())
		assert.Empty(t, o.Lines)
	})

	t.Run("rejects non-positive quantity with product name", func(t *testing.T) {
		o := newTestOrder(t)
		err := o.SetLines(lines(item("Rebar", "-2", "5")))
		require.Error(t, err)
		assert.Equal(t, "Product 'Rebar' must have a quantity greater than 0.", err.Error())
	})

	t.Run("cannot empty a submitted order", func(t *testing.T) {
		o := submittable(t)
		require.NoError(t, o.SubmitRFQ(buyer(), now))
		err := o.SetLines(nil)
		assert.ErrorIs(t, err, ErrNoLines)
		assert.Len(t, o.Lines, 1)
	})
}

func TestEditableFields(t *testing.T) {
	plain := Actor{UserID: uuid.New()}
	cp := Actor{UserID: uuid.New(), CP: true}

	tests := []struct {
		name  string
		state State
		actor Actor
		want  []string
	}{
		{"draft plain user", StateDraft, plain, allFields},
		{"draft cp user", StateDraft, cp, allFields},
		{"sent plain user", StateSent, plain, []string{FieldProjectID}},
		{"sent cp user", StateSent, cp, []string{FieldProjectID}},
		{"to approve cp user", StateToApprove, cp, []string{}},
		{"to approve plain user", StateToApprove, plain, allFields},
		{"purchase", StatePurchase, plain, []string{}},
		{"done", StateDone, plain, []string{}},
		{"cancel", StateCancel, plain, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrder(t)
			o.State = tt.state
			assert.Equal(t, tt.want, o.EditableFields(tt.actor))
		})
	}
}

func TestUpdate(t *testing.T) {
	t.Run("draft accepts every field", func(t *testing.T) {
		o := newTestOrder(t)
		vendor := "Globex"
		project := uuid.New()
		items := lines(item("Cement", "2", "10"))
		notes := " deliver monday "

		changed, err := o.Update(Changes{VendorName: &vendor, ProjectID: &project, Lines: &items, Notes: &notes}, buyer())
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "Globex", o.VendorName)
		assert.Equal(t, project, *o.ProjectID)
		assert.Equal(t, "20", o.AmountTotal.String())
		assert.Equal(t, "deliver monday", o.Notes)
		require.Len(t, o.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePurchaseOrderUpdated, o.GetDomainEvents()[0].EventType())
	})

	t.Run("department change clears validator", func(t *testing.T) {
		o := submittable(t)
		dept := uuid.New()
		changed, err := o.Update(Changes{DepartmentID: &dept}, buyer())
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Nil(t, o.ValidatorID)
	})

	t.Run("sent order only accepts project", func(t *testing.T) {
		o := submittable(t)
		require.NoError(t, o.SubmitRFQ(buyer(), now))

		project := uuid.New()
		_, err := o.Update(Changes{ProjectID: &project}, buyer())
		require.NoError(t, err)

		vendor := "Other"
		_, err = o.Update(Changes{VendorName: &vendor}, buyer())
		assert.ErrorIs(t, err, shared.ErrFieldReadonly)
		assert.Equal(t, "Acme Supplies", o.VendorName)
	})

	t.Run("failed update leaves order untouched", func(t *testing.T) {
		o := submittable(t)
		version := o.Version
		vendor := "Globex"
		nilDept := uuid.Nil
		_, err := o.Update(Changes{VendorName: &vendor, DepartmentID: &nilDept}, buyer())
		assert.ErrorIs(t, err, ErrDepartmentRequired)
		assert.Equal(t, "Acme Supplies", o.VendorName)
		assert.Equal(t, version, o.Version)
		assert.NotNil(t, o.ValidatorID)
	})

	t.Run("bad line rolls back", func(t *testing.T) {
		o := submittable(t)
		items := lines(item("Cement", "1", "1"), item("Sand", "0", "1"))
		_, err := o.Update(Changes{Lines: &items}, buyer())
		require.Error(t, err)
		assert.Len(t, o.Lines, 1)
		assert.Equal(t, "125", o.AmountTotal.String())
	})

	t.Run("no changes is a no-op", func(t *testing.T) {
		o := newTestOrder(t)
		version := o.Version
		_, err := o.Update(Changes{}, buyer())
		require.NoError(t, err)
		assert.Equal(t, version, o.Version)
	})
}

func TestSubmitRFQ(t *testing.T) {
	t.Run("moves to sent", func(t *testing.T) {
		o := submittable(t)
		actor := buyer()
		require.NoError(t, o.SubmitRFQ(actor, now))

		assert.Equal(t, StateSent, o.State)
		assert.NotNil(t, o.SubmittedAt)
		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*RFQSubmittedEvent)
		require.True(t, ok)
		assert.Equal(t, *o.ValidatorID, ev.ValidatorID)
		assert.Equal(t, "Awa Diop", ev.SubmitterName)
	})

	t.Run("requires lines", func(t *testing.T) {
		o := newTestOrder(t)
		validator := uuid.New()
		o.SetValidator(&validator)
		err := o.SubmitRFQ(buyer(), now)
		require.Error(t, err)
		assert.Equal(t, "You cannot submit an RFQ without any products. Please add at least one product.", err.Error())
		assert.Equal(t, StateDraft, o.State)
	})

	t.Run("requires validator", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.SetLines(lines(item("Cement", "1", "1"))))
		err := o.SubmitRFQ(buyer(), now)
		require.Error(t, err)
		assert.Equal(t, "This Purchase Order doesn't have any validator. Please add a department responsible for the PO.", err.Error())
	})

	t.Run("only from draft", func(t *testing.T) {
		o := submittable(t)
		require.NoError(t, o.SubmitRFQ(buyer(), now))
		assert.Error(t, o.SubmitRFQ(buyer(), now))
	})
}

func TestConfirm(t *testing.T) {
	noApproval := ApprovalPolicy{}

	t.Run("requires project", func(t *testing.T) {
		o := submittable(t)
		err := o.Confirm(buyer(), noApproval, now)
		require.Error(t, err)
		assert.Equal(t, "Please set a project before confirming the purchase order.", err.Error())
	})

	t.Run("confirms from sent", func(t *testing.T) {
		o := submittable(t)
		project := uuid.New()
		o.ProjectID = &project
		require.NoError(t, o.SubmitRFQ(buyer(), now))
		o.ClearDomainEvents()

		actor := buyer()
		confirmedAt := now.Add(time.Hour)
		require.NoError(t, o.Confirm(actor, noApproval, confirmedAt))
		assert.Equal(t, StatePurchase, o.State)
		assert.Equal(t, actor.UserID, *o.ApprovedBy)
		assert.Equal(t, now, *o.SubmittedAt)
		assert.Equal(t, confirmedAt, *o.ConfirmedAt)
		assert.Equal(t, confirmedAt, *o.ApprovedAt)
		require.Len(t, o.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePurchaseOrderConfirmed, o.GetDomainEvents()[0].EventType())
	})

	t.Run("draft without lines cannot be confirmed", func(t *testing.T) {
		o := newTestOrder(t)
		project := uuid.New()
		o.ProjectID = &project
		assert.ErrorIs(t, o.Confirm(buyer(), noApproval, now), ErrNoLines)
		assert.Equal(t, StateDraft, o.State)
	})

	t.Run("double validation parks large orders", func(t *testing.T) {
		policy := ApprovalPolicy{Enabled: true, Threshold: decimal.NewFromInt(100)}
		o := submittable(t)
		project := uuid.New()
		o.ProjectID = &project

		require.NoError(t, o.Confirm(buyer(), policy, now))
		assert.Equal(t, StateToApprove, o.State)
		assert.Nil(t, o.ApprovedBy)
		assert.Equal(t, EventTypePurchaseOrderApprovalRequested, o.GetDomainEvents()[0].EventType())
	})

	t.Run("hod skips double validation", func(t *testing.T) {
		policy := ApprovalPolicy{Enabled: true, Threshold: decimal.NewFromInt(100)}
		o := submittable(t)
		project := uuid.New()
		o.ProjectID = &project

		require.NoError(t, o.Confirm(Actor{UserID: uuid.New(), HOD: true}, policy, now))
		assert.Equal(t, StatePurchase, o.State)
	})

	t.Run("below threshold confirms directly", func(t *testing.T) {
		policy := ApprovalPolicy{Enabled: true, Threshold: decimal.NewFromInt(1000)}
		o := submittable(t)
		project := uuid.New()
		o.ProjectID = &project
		require.NoError(t, o.Confirm(buyer(), policy, now))
		assert.Equal(t, StatePurchase, o.State)
	})

	t.Run("cannot confirm twice", func(t *testing.T) {
		o := submittable(t)
		project := uuid.New()
		o.ProjectID = &project
		require.NoError(t, o.Confirm(buyer(), noApproval, now))
		assert.Error(t, o.Confirm(buyer(), noApproval, now))
	})
}

func TestApprove(t *testing.T) {
	setup := func(t *testing.T) *PurchaseOrder {
		o := submittable(t)
		project := uuid.New()
		o.ProjectID = &project
		require.NoError(t, o.Confirm(buyer(), ApprovalPolicy{Enabled: true}, now))
		require.Equal(t, StateToApprove, o.State)
		return o
	}

	t.Run("hod approves", func(t *testing.T) {
		o := setup(t)
		hod := Actor{UserID: uuid.New(), HOD: true}
		approvedAt := now.Add(48 * time.Hour)
		require.NoError(t, o.Approve(hod, approvedAt))
		assert.Equal(t, StatePurchase, o.State)
		assert.Equal(t, hod.UserID, *o.ApprovedBy)
		assert.Equal(t, approvedAt, *o.ApprovedAt)
	})

	t.Run("plain user cannot approve", func(t *testing.T) {
		o := setup(t)
		assert.ErrorIs(t, o.Approve(buyer(), now), shared.ErrForbidden)
		assert.Equal(t, StateToApprove, o.State)
	})

	t.Run("only from to approve", func(t *testing.T) {
		o := submittable(t)
		assert.ErrorIs(t, o.Approve(Actor{Manager: true}, now), shared.ErrInvalidState)
	})
}

func TestCancel(t *testing.T) {
	cp := Actor{UserID: uuid.New(), CP: true}

	t.Run("cp user may cancel draft", func(t *testing.T) {
		o := submittable(t)
		require.NoError(t, o.Cancel(cp, " wrong vendor ", now))
		assert.Equal(t, StateCancel, o.State)
		assert.Equal(t, "wrong vendor", o.CancelReason)
		assert.Equal(t, now, *o.CancelledAt)

		ev, ok := o.GetDomainEvents()[0].(*PurchaseOrderCancelledEvent)
		require.True(t, ok)
		assert.Equal(t, StateDraft, ev.FromState)
	})

	t.Run("cp user cannot cancel after draft", func(t *testing.T) {
		o := submittable(t)
		require.NoError(t, o.SubmitRFQ(buyer(), now))
		err := o.Cancel(cp, "late", now)
		require.Error(t, err)
		assert.Equal(t, "You don't have access to cancel this purchase order in its current state.", err.Error())
		assert.Equal(t, StateSent, o.State)
	})

	t.Run("plain user cancels confirmed order", func(t *testing.T) {
		o := submittable(t)
		project := uuid.New()
		o.ProjectID = &project
		require.NoError(t, o.Confirm(buyer(), ApprovalPolicy{}, now))
		require.NoError(t, o.Cancel(buyer(), "budget cut", now))
		assert.Equal(t, StateCancel, o.State)
	})

	t.Run("locked order cannot be cancelled", func(t *testing.T) {
		o := submittable(t)
		project := uuid.New()
		o.ProjectID = &project
		require.NoError(t, o.Confirm(buyer(), ApprovalPolicy{}, now))
		require.NoError(t, o.Lock())
		assert.ErrorIs(t, o.Cancel(buyer(), "x", now), ErrLockedCancel)
	})

	t.Run("already cancelled", func(t *testing.T) {
		o := submittable(t)
		require.NoError(t, o.Cancel(buyer(), "x", now))
		assert.Error(t, o.Cancel(buyer(), "y", now))
	})
}

func TestLockUnlockReset(t *testing.T) {
	o := submittable(t)
	project := uuid.New()
	o.ProjectID = &project

	assert.Error(t, o.Lock())
	require.NoError(t, o.Confirm(buyer(), ApprovalPolicy{}, now))
	require.NoError(t, o.Lock())
	assert.Equal(t, StateDone, o.State)
	assert.Empty(t, o.EditableFields(buyer()))

	require.NoError(t, o.Unlock())
	assert.Equal(t, StatePurchase, o.State)

	assert.Error(t, o.ResetToDraft())
	require.NoError(t, o.Cancel(buyer(), "supplier closed", now))
	require.NoError(t, o.ResetToDraft())
	assert.Equal(t, StateDraft, o.State)
	assert.Empty(t, o.CancelReason)
	assert.Nil(t, o.ApprovedBy)
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateDraft.CanTransitionTo(StateSent))
	assert.False(t, StateSent.CanTransitionTo(StateDraft))
	assert.False(t, StateDone.CanTransitionTo(StateCancel))
	assert.True(t, StateCancel.CanTransitionTo(StateDraft))

	assert.False(t, StateDraft.RequiresProject())
	assert.False(t, StateSent.RequiresProject())
	assert.True(t, StateToApprove.RequiresProject())
	assert.True(t, StatePurchase.RequiresProject())
	assert.False(t, StateCancel.RequiresProject())
}

func TestConfirmedOrderNeedsProject(t *testing.T) {
	o := submittable(t)
	project := uuid.New()
	o.ProjectID = &project
	require.NoError(t, o.Confirm(buyer(), ApprovalPolicy{}, now))

	o.ProjectID = nil
	err := o.CheckConstraints()
	require.Error(t, err)
	assert.Equal(t, "A project must be set for confirmed purchase orders.", err.Error())
}
