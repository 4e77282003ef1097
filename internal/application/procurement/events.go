package procurement

import (
	"context"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// eventSource is an aggregate that buffers domain events
type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents drains the aggregates' events to the publisher. It runs
// after the transaction committed, so a publish failure is logged and
// does not fail the request.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, aggregates ...eventSource) {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Error("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
