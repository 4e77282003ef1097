package procurement

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newConfirmWizard(f *fixture, idem *MockIdempotencyStore, settings Settings) *ConfirmWizard {
	var store shared.IdempotencyStore
	if idem != nil {
		store = idem
	}
	w := NewConfirmWizard(f.orders, f.projects, f.tx, store, settings, testClock)
	w.SetEventPublisher(f.publisher)
	return w
}

func eventTypes(events []shared.DomainEvent) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

func TestConfirmWizard_Preview(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("within budget", func(t *testing.T) {
		f := newFixture()
		proj := newTestProject(t, tenantID, usd, 1000)
		order := newOrder(t, tenantID, uuid.New(), uuid.New())
		order.ProjectID = &proj.ID
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)

		preview, err := newConfirmWizard(f, nil, testSettings()).Preview(ctx, tenantID, order.ID)

		require.NoError(t, err)
		assert.Equal(t, "Warehouse", preview.ProjectName)
		assert.True(t, decimal.NewFromInt(1000).Equal(preview.ProjectBudget))
		assert.True(t, decimal.NewFromInt(400).Equal(preview.AmountTotal))
		assert.True(t, preview.WithinBudget)
	})

	t.Run("exact budget is not within budget", func(t *testing.T) {
		f := newFixture()
		proj := newTestProject(t, tenantID, usd, 400)
		order := newOrder(t, tenantID, uuid.New(), uuid.New())
		order.ProjectID = &proj.ID
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)

		preview, err := newConfirmWizard(f, nil, testSettings()).Preview(ctx, tenantID, order.ID)

		require.NoError(t, err)
		assert.False(t, preview.WithinBudget)
	})

	t.Run("no project", func(t *testing.T) {
		f := newFixture()
		order := newOrder(t, tenantID, uuid.New(), uuid.New())
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)

		preview, err := newConfirmWizard(f, nil, testSettings()).Preview(ctx, tenantID, order.ID)

		require.NoError(t, err)
		assert.Nil(t, preview.ProjectID)
		assert.False(t, preview.WithinBudget)
		assert.True(t, preview.ProjectBudget.IsZero())
	})
}

func TestConfirmWizard_Confirm(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	actor := procurement.Actor{UserID: uuid.New(), Name: "Bob"}

	t.Run("deducts budget and confirms", func(t *testing.T) {
		f := newFixture()
		proj := newTestProject(t, tenantID, usd, 1000)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.ProjectID = &proj.ID
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)
		f.projects.On("SaveWithLock", mock.Anything, proj).Return(nil)
		f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)

		var published []string
		f.publisher.On("Publish", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { published = eventTypes(args.Get(1).([]shared.DomainEvent)) }).
			Return(nil)

		result, err := newConfirmWizard(f, nil, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{})

		require.NoError(t, err)
		assert.Equal(t, "purchase", result.Order.State)
		assert.True(t, decimal.NewFromInt(400).Equal(result.Deducted))
		assert.True(t, decimal.NewFromInt(600).Equal(result.RemainingBudget))
		assert.True(t, decimal.NewFromInt(600).Equal(proj.Amount))
		require.NotNil(t, order.ConfirmedAt)
		assert.Equal(t, testToday, *order.ConfirmedAt)
		assert.False(t, result.Replayed)
		assert.Equal(t, 1, f.tx.committed)
		assert.ElementsMatch(t, []string{
			procurement.EventTypePurchaseOrderConfirmed,
			project.EventTypeProjectBudgetDeducted,
		}, published)
	})

	t.Run("budget may not reach zero", func(t *testing.T) {
		f := newFixture()
		proj := newTestProject(t, tenantID, usd, 400)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.ProjectID = &proj.ID
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)

		_, err := newConfirmWizard(f, nil, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{})

		require.ErrorIs(t, err, project.ErrAmountNotPositive)
		assert.Equal(t, "Project amount cannot be negative or null.", err.Error())
		assert.True(t, decimal.NewFromInt(400).Equal(proj.Amount))
		assert.Equal(t, procurement.StateDraft, order.State)
		assert.Equal(t, 0, f.tx.committed)
		f.projects.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("large order waits for approval", func(t *testing.T) {
		f := newFixture()
		settings := testSettings()
		settings.Approval = procurement.ApprovalPolicy{Enabled: true, Threshold: decimal.NewFromInt(300)}
		proj := newTestProject(t, tenantID, usd, 1000)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.ProjectID = &proj.ID
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)
		f.projects.On("SaveWithLock", mock.Anything, proj).Return(nil)
		f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return assert.ObjectsAreEqual([]string{
				procurement.EventTypePurchaseOrderApprovalRequested,
				project.EventTypeProjectBudgetDeducted,
			}, eventTypes(events))
		})).Return(nil)

		result, err := newConfirmWizard(f, nil, settings).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{})

		require.NoError(t, err)
		assert.Equal(t, "to_approve", result.Order.State)
		assert.Nil(t, result.Order.ApprovedBy)
		assert.True(t, decimal.NewFromInt(600).Equal(result.RemainingBudget))
		f.publisher.AssertExpectations(t)
	})

	t.Run("budget exceeded rolls back", func(t *testing.T) {
		f := newFixture()
		proj := newTestProject(t, tenantID, usd, 399)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.ProjectID = &proj.ID
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)

		result, err := newConfirmWizard(f, nil, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, project.ErrBudgetExceeded)
		assert.Equal(t, procurement.StateDraft, order.State)
		assert.True(t, decimal.NewFromInt(399).Equal(proj.Amount))
		assert.Equal(t, 0, f.tx.committed)
		f.projects.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("currency mismatch", func(t *testing.T) {
		f := newFixture()
		proj := newTestProject(t, tenantID, eur, 1000)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.ProjectID = &proj.ID
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)

		_, err := newConfirmWizard(f, nil, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{})

		assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)
	})

	t.Run("project required", func(t *testing.T) {
		f := newFixture()
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)

		_, err := newConfirmWizard(f, nil, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{})

		assert.ErrorIs(t, err, procurement.ErrProjectRequired)
		f.projects.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent deduction conflicts", func(t *testing.T) {
		f := newFixture()
		proj := newTestProject(t, tenantID, usd, 1000)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.ProjectID = &proj.ID
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)
		f.projects.On("SaveWithLock", mock.Anything, proj).Return(shared.ErrConcurrencyConflict)

		_, err := newConfirmWizard(f, nil, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("known idempotency key replays without deducting", func(t *testing.T) {
		f := newFixture()
		idem := new(MockIdempotencyStore)
		proj := newTestProject(t, tenantID, usd, 600)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.ProjectID = &proj.ID
		order.State = procurement.StatePurchase
		confirmedAt := testToday
		order.ConfirmedAt = &confirmedAt
		key := "confirm:" + order.ID.String() + ":abc"
		idem.On("MarkProcessed", mock.Anything, key, testSettings().IdempotencyTTL).Return(false, nil)
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)

		result, err := newConfirmWizard(f, idem, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{IdempotencyKey: "abc"})

		require.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.True(t, result.Deducted.IsZero())
		assert.True(t, decimal.NewFromInt(600).Equal(result.RemainingBudget))
		assert.Equal(t, 0, f.tx.committed)
	})

	t.Run("known idempotency key while the first confirm is running", func(t *testing.T) {
		f := newFixture()
		idem := new(MockIdempotencyStore)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.State = procurement.StateSent
		key := "confirm:" + order.ID.String() + ":abc"
		idem.On("MarkProcessed", mock.Anything, key, testSettings().IdempotencyTTL).Return(false, nil)
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)

		result, err := newConfirmWizard(f, idem, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{IdempotencyKey: "abc"})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, procurement.ErrConfirmInProgress)
		assert.Equal(t, 0, f.tx.committed)
		idem.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
		f.projects.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed confirm releases idempotency key", func(t *testing.T) {
		f := newFixture()
		idem := new(MockIdempotencyStore)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		key := "confirm:" + order.ID.String() + ":abc"
		idem.On("MarkProcessed", mock.Anything, key, testSettings().IdempotencyTTL).Return(true, nil)
		idem.On("Release", mock.Anything, key).Return(nil)
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)

		_, err := newConfirmWizard(f, idem, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{IdempotencyKey: "abc"})

		assert.ErrorIs(t, err, procurement.ErrProjectRequired)
		idem.AssertExpectations(t)
	})

	t.Run("unavailable idempotency store still confirms", func(t *testing.T) {
		f := newFixture()
		idem := new(MockIdempotencyStore)
		proj := newTestProject(t, tenantID, usd, 1000)
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.ProjectID = &proj.ID
		idem.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.projects.On("FindByID", mock.Anything, tenantID, proj.ID).Return(proj, nil)
		f.projects.On("SaveWithLock", mock.Anything, proj).Return(nil)
		f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := newConfirmWizard(f, idem, testSettings()).Confirm(ctx, tenantID, order.ID, actor, ConfirmRequest{IdempotencyKey: "abc"})

		require.NoError(t, err)
		assert.False(t, result.Replayed)
		idem.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})
}

func TestCancelWizard_Cancel(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("posts reason and cancels", func(t *testing.T) {
		f := newFixture()
		actor := procurement.Actor{UserID: uuid.New(), Name: "Bob"}
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.State = procurement.StateSent
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)

		var posted *chatter.Message
		f.messages.On("Save", mock.Anything, mock.AnythingOfType("*chatter.Message")).
			Run(func(args mock.Arguments) { posted = args.Get(1).(*chatter.Message) }).
			Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == procurement.EventTypePurchaseOrderCancelled
		})).Return(nil)

		w := NewCancelWizard(f.tx, testClock)
		w.SetEventPublisher(f.publisher)
		resp, err := w.Cancel(ctx, tenantID, order.ID, actor, CancelRequest{Reason: "  vendor out of stock "})

		require.NoError(t, err)
		assert.Equal(t, "cancel", resp.State)
		assert.Equal(t, "vendor out of stock", resp.CancelReason)
		require.NotNil(t, order.CancelledAt)
		assert.Equal(t, testToday, *order.CancelledAt)
		require.NotNil(t, posted)
		assert.Equal(t, chatter.CancellationBody("Bob", "vendor out of stock"), posted.Body)
		assert.Equal(t, order.ID, posted.ResID)
		require.NotNil(t, posted.AuthorID)
		assert.Equal(t, actor.UserID, *posted.AuthorID)
		assert.Equal(t, 1, f.tx.committed)
		f.publisher.AssertExpectations(t)
	})

	t.Run("blank reason", func(t *testing.T) {
		f := newFixture()
		w := NewCancelWizard(f.tx, testClock)

		_, err := w.Cancel(ctx, tenantID, uuid.New(), procurement.Actor{UserID: uuid.New()}, CancelRequest{Reason: "   "})

		assert.ErrorIs(t, err, procurement.ErrReasonRequired)
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CP cannot cancel a sent order and nothing is posted", func(t *testing.T) {
		f := newFixture()
		actor := procurement.Actor{UserID: uuid.New(), Name: "Carl", CP: true}
		order := newOrder(t, tenantID, actor.UserID, uuid.New())
		order.State = procurement.StateSent
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)

		_, err := NewCancelWizard(f.tx, testClock).Cancel(ctx, tenantID, order.ID, actor, CancelRequest{Reason: "changed my mind"})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Equal(t, procurement.StateSent, order.State)
		f.messages.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Equal(t, 0, f.tx.committed)
	})

	t.Run("locked order", func(t *testing.T) {
		f := newFixture()
		order := newOrder(t, tenantID, uuid.New(), uuid.New())
		projectID := uuid.New()
		order.ProjectID = &projectID
		order.State = procurement.StateDone
		f.orders.On("FindByID", mock.Anything, tenantID, order.ID).Return(order, nil)

		_, err := NewCancelWizard(f.tx, testClock).Cancel(ctx, tenantID, order.ID, procurement.Actor{UserID: uuid.New(), Manager: true}, CancelRequest{Reason: "late"})

		assert.ErrorIs(t, err, procurement.ErrLockedCancel)
	})
}
