package procurement

import (
	"context"
	"strings"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CancelWizard implements purchase.cancel.reason: the reason is posted to
// the order's chatter and stored on the order as it is cancelled.
type CancelWizard struct {
	txScope        TransactionScope
	clock          shared.Clock
	eventPublisher shared.EventPublisher
}

// NewCancelWizard creates a new CancelWizard
func NewCancelWizard(txScope TransactionScope, clock shared.Clock) *CancelWizard {
	return &CancelWizard{txScope: txScope, clock: clock}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (w *CancelWizard) SetEventPublisher(publisher shared.EventPublisher) {
	w.eventPublisher = publisher
}

// Cancel cancels the order with a mandatory reason. The chatter note, the
// reason and the state change commit together; a rejected cancel posts
// nothing.
func (w *CancelWizard) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor, req CancelRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "cancel",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()),
	)
	defer span.End()

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		telemetry.RecordError(span, procurement.ErrReasonRequired)
		return nil, procurement.ErrReasonRequired
	}

	var order *procurement.PurchaseOrder
	err := w.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}

		if err := order.Cancel(actor, reason, w.clock.Now()); err != nil {
			return err
		}

		authorID := actor.UserID
		msg, err := chatter.NewMessage(
			tenantID,
			chatter.ResModelPurchaseOrder,
			order.ID,
			&authorID,
			chatter.CancellationBody(actor.Name, reason),
			chatter.MessageTypeComment,
		)
		if err != nil {
			return err
		}
		if err := repos.Messages().Save(ctx, msg); err != nil {
			return err
		}

		return repos.PurchaseOrders().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)

	logger.L(ctx).Info("purchase order cancelled",
		logger.Record(chatter.ResModelPurchaseOrder, order.ID),
		zap.String("reason", reason),
	)

	publishEvents(ctx, w.eventPublisher, order)

	response := ToPurchaseOrderResponse(order, actor)
	return &response, nil
}
