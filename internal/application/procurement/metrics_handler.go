package procurement

import (
	"context"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderMetrics records purchase workflow business metrics
type OrderMetrics interface {
	RecordRFQSubmitted(ctx context.Context, tenantID uuid.UUID)
	RecordApprovalRequested(ctx context.Context, tenantID uuid.UUID)
	RecordConfirmed(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, currency string)
	RecordCancelled(ctx context.Context, tenantID uuid.UUID, fromState string)
	RecordBudgetDeducted(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, currency string)
}

// MetricsHandler feeds committed workflow events into OrderMetrics
type MetricsHandler struct {
	metrics OrderMetrics
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics OrderMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Name returns the handler name used for idempotency keys
func (h *MetricsHandler) Name() string {
	return "procurement.metrics"
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		procurement.EventTypeRFQSubmitted,
		procurement.EventTypePurchaseOrderApprovalRequested,
		procurement.EventTypePurchaseOrderConfirmed,
		procurement.EventTypePurchaseOrderCancelled,
		project.EventTypeProjectBudgetDeducted,
	}
}

// Handle records the event. Unknown events are ignored.
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *procurement.RFQSubmittedEvent:
		h.metrics.RecordRFQSubmitted(ctx, e.TenantID())
	case *procurement.PurchaseOrderApprovalRequestedEvent:
		h.metrics.RecordApprovalRequested(ctx, e.TenantID())
	case *procurement.PurchaseOrderConfirmedEvent:
		h.metrics.RecordConfirmed(ctx, e.TenantID(), e.AmountTotal, e.Currency)
	case *procurement.PurchaseOrderCancelledEvent:
		h.metrics.RecordCancelled(ctx, e.TenantID(), e.FromState.String())
	case *project.ProjectBudgetDeductedEvent:
		h.metrics.RecordBudgetDeducted(ctx, e.TenantID(), e.Deducted, e.Currency)
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
