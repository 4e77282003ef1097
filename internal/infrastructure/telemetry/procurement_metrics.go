package telemetry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// OrderStateCount is the number of purchase orders of one tenant in one state.
type OrderStateCount struct {
	TenantID uuid.UUID
	State    string
	Count    int64
}

// ProcurementStatsProvider reads aggregate procurement state for gauges.
type ProcurementStatsProvider interface {
	CountOrdersByState(ctx context.Context) ([]OrderStateCount, error)
}

// ProcurementMetrics records the purchase approval workflow: RFQ submissions,
// approvals, confirmations with their amounts, cancellations and budget
// deductions. Open order gauges are refreshed periodically.
type ProcurementMetrics struct {
	logger *zap.Logger

	rfqSubmitted      *Counter
	approvalRequested *Counter
	confirmed         *Counter
	confirmedAmount   *Histogram
	cancelled         *Counter
	budgetDeducted    *Counter
	ordersByState     metric.Int64Gauge

	provider    ProcurementStatsProvider
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
	done        chan struct{}
	running     atomic.Bool
}

// NewProcurementMetrics creates the instruments on meter. provider may be nil.
func NewProcurementMetrics(meter metric.Meter, provider ProcurementStatsProvider, logger *zap.Logger) (*ProcurementMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &ProcurementMetrics{
		logger:   logger,
		provider: provider,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}

	var err error
	if pm.rfqSubmitted, err = NewCounter(meter, "procurement_rfq_submitted_total",
		"RFQs submitted for department review", "{rfqs}"); err != nil {
		return nil, err
	}
	if pm.approvalRequested, err = NewCounter(meter, "procurement_approval_requested_total",
		"Purchase orders routed to second-level approval", "{orders}"); err != nil {
		return nil, err
	}
	if pm.confirmed, err = NewCounter(meter, "procurement_po_confirmed_total",
		"Purchase orders confirmed", "{orders}"); err != nil {
		return nil, err
	}
	if pm.confirmedAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "procurement_po_confirmed_amount",
		Description: "Total amount of confirmed purchase orders",
		Unit:        "{currency}",
		Boundaries:  []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
	}); err != nil {
		return nil, err
	}
	if pm.cancelled, err = NewCounter(meter, "procurement_po_cancelled_total",
		"Purchase orders cancelled", "{orders}"); err != nil {
		return nil, err
	}
	if pm.budgetDeducted, err = NewCounter(meter, "project_budget_deducted_minor_total",
		"Project budget consumed by confirmations, in minor currency units", "{minor_units}"); err != nil {
		return nil, err
	}
	if pm.ordersByState, err = meter.Int64Gauge("procurement_orders",
		metric.WithDescription("Purchase orders by state"), metric.WithUnit("{orders}")); err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordRFQSubmitted counts an RFQ sent to the department validator.
func (pm *ProcurementMetrics) RecordRFQSubmitted(ctx context.Context, tenantID uuid.UUID) {
	pm.rfqSubmitted.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordApprovalRequested counts an order waiting for second-level approval.
func (pm *ProcurementMetrics) RecordApprovalRequested(ctx context.Context, tenantID uuid.UUID) {
	pm.approvalRequested.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordConfirmed counts a confirmation and its amount.
func (pm *ProcurementMetrics) RecordConfirmed(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, currency string) {
	pm.confirmed.Inc(ctx, AttrTenantID.String(tenantID.String()))
	pm.confirmedAmount.Record(ctx, amount.InexactFloat64(),
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
}

// RecordCancelled counts a cancellation by the state it left.
func (pm *ProcurementMetrics) RecordCancelled(ctx context.Context, tenantID uuid.UUID, fromState string) {
	pm.cancelled.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrPOState.String(fromState))
}

// RecordBudgetDeducted adds a project budget deduction in minor units.
func (pm *ProcurementMetrics) RecordBudgetDeducted(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, currency string) {
	pm.budgetDeducted.Add(ctx, amount.Shift(2).Round(0).IntPart(),
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
}

// StartPeriodicCollection refreshes the order gauges every interval
// (default 5 minutes) until Stop is called or ctx ends.
func (pm *ProcurementMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if pm.provider == nil {
		return
	}
	pm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		pm.running.Store(true)
		go pm.run(ctx, interval)
	})
}

func (pm *ProcurementMetrics) run(ctx context.Context, interval time.Duration) {
	defer close(pm.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.Collect(ctx)
	for {
		select {
		case <-pm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.Collect(ctx)
		}
	}
}

// Collect reads the provider once and records the gauges.
func (pm *ProcurementMetrics) Collect(ctx context.Context) {
	if pm.provider == nil {
		return
	}
	counts, err := pm.provider.CountOrdersByState(ctx)
	if err != nil {
		pm.logger.Warn("Failed to collect procurement gauges", zap.Error(err))
		return
	}
	for _, c := range counts {
		pm.ordersByState.Record(ctx, c.Count, metric.WithAttributes(
			AttrTenantID.String(c.TenantID.String()),
			AttrPOState.String(c.State),
		))
	}
}

// Stop ends periodic collection and waits for the collector to exit.
func (pm *ProcurementMetrics) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
	})
	if pm.running.Load() {
		<-pm.done
	}
}
