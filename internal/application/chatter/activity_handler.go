package chatter

import (
	"context"
	"fmt"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderActivityHandler closes the review activities of a purchase order
// once it leaves review: done on confirmation, cancelled on cancellation.
// Closing is naturally idempotent since closed activities are skipped.
type OrderActivityHandler struct {
	service *ChatterService
	logger  *zap.Logger
}

// NewOrderActivityHandler creates a new OrderActivityHandler
func NewOrderActivityHandler(service *ChatterService, logger *zap.Logger) *OrderActivityHandler {
	return &OrderActivityHandler{service: service, logger: logger}
}

// Name returns the handler name used for idempotency keys
func (h *OrderActivityHandler) Name() string {
	return "chatter.order_activities"
}

// EventTypes returns the event types this handler is interested in
func (h *OrderActivityHandler) EventTypes() []string {
	return []string{
		procurement.EventTypePurchaseOrderConfirmed,
		procurement.EventTypePurchaseOrderCancelled,
	}
}

// Handle closes the order's planned activities
func (h *OrderActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var done bool
	switch event.(type) {
	case *procurement.PurchaseOrderConfirmedEvent:
		done = true
	case *procurement.PurchaseOrderCancelledEvent:
		done = false
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	closed, err := h.service.CloseActivitiesFor(ctx, event.TenantID(), chatter.ResModelPurchaseOrder, event.AggregateID(), done)
	if err != nil {
		return err
	}
	if closed > 0 {
		h.logger.Info("closed purchase order activities",
			zap.String("order_id", event.AggregateID().String()),
			zap.String("event_type", event.EventType()),
			zap.Int("closed", closed),
		)
	}
	return nil
}

var _ shared.EventHandler = (*OrderActivityHandler)(nil)
