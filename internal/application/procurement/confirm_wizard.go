package procurement

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConfirmWizard implements purchase.confirm: it checks the order total
// against the project's remaining budget, deducts it and confirms the
// order in a single transaction.
type ConfirmWizard struct {
	orderRepo      procurement.PurchaseOrderRepository
	projectRepo    project.ProjectRepository
	txScope        TransactionScope
	idempotency    shared.IdempotencyStore
	settings       Settings
	clock          shared.Clock
	eventPublisher shared.EventPublisher
}

// NewConfirmWizard creates a new ConfirmWizard. idempotency may be nil, in
// which case Idempotency-Key headers are ignored.
func NewConfirmWizard(
	orderRepo procurement.PurchaseOrderRepository,
	projectRepo project.ProjectRepository,
	txScope TransactionScope,
	idempotency shared.IdempotencyStore,
	settings Settings,
	clock shared.Clock,
) *ConfirmWizard {
	return &ConfirmWizard{
		orderRepo:   orderRepo,
		projectRepo: projectRepo,
		txScope:     txScope,
		idempotency: idempotency,
		settings:    settings,
		clock:       clock,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (w *ConfirmWizard) SetEventPublisher(publisher shared.EventPublisher) {
	w.eventPublisher = publisher
}

// Preview returns the wizard's read-only fields
func (w *ConfirmWizard) Preview(ctx context.Context, tenantID, orderID uuid.UUID) (*ConfirmPreviewResponse, error) {
	order, err := w.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	preview := &ConfirmPreviewResponse{
		PurchaseOrderID: order.ID,
		AmountTotal:     order.AmountTotal,
		Currency:        order.Currency.String(),
		ProjectID:       order.ProjectID,
		ProjectBudget:   decimal.Zero,
	}
	if order.ProjectID == nil {
		return preview, nil
	}

	proj, err := w.projectRepo.FindByID(ctx, tenantID, *order.ProjectID)
	if err != nil {
		return nil, err
	}
	preview.ProjectName = proj.Name
	preview.ProjectBudget = proj.Amount
	preview.ProjectCurrency = proj.Currency.String()
	preview.WithinBudget = proj.Currency == order.Currency && order.AmountTotal.LessThan(proj.Amount)
	return preview, nil
}

// Confirm deducts the order total from the project budget and confirms the
// order. A repeated idempotency key returns the current order without
// deducting again.
func (w *ConfirmWizard) Confirm(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor, req ConfirmRequest) (*ConfirmResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "confirm",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()),
	)
	defer span.End()

	key := ""
	if req.IdempotencyKey != "" && w.idempotency != nil {
		key = "confirm:" + orderID.String() + ":" + req.IdempotencyKey
		telemetry.SetAttribute(span, telemetry.SpanAttrIdempotentKey, req.IdempotencyKey)
		isNew, err := w.idempotency.MarkProcessed(ctx, key, w.settings.IdempotencyTTL)
		if err != nil {
			logger.L(ctx).Warn("idempotency store unavailable, confirming without replay protection", zap.Error(err))
			key = ""
		} else if !isNew {
			telemetry.AddEvent(span, "idempotency.replay")
			return w.replay(ctx, tenantID, orderID, actor)
		}
	}

	result, err := w.confirm(ctx, tenantID, orderID, actor)
	if err != nil {
		telemetry.RecordError(span, err)
		if key != "" {
			if relErr := w.idempotency.Release(ctx, key); relErr != nil {
				logger.L(ctx).Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, result.Order.OrderNumber,
		telemetry.SpanAttrOrderState, result.Order.State,
		telemetry.SpanAttrDepartmentID, result.Order.DepartmentID.String(),
		telemetry.SpanAttrAmount, result.Deducted.String(),
		telemetry.SpanAttrCurrency, result.Order.Currency,
	)
	if result.Order.ProjectID != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, result.Order.ProjectID.String())
	}
	telemetry.SetOK(span)
	return result, nil
}

func (w *ConfirmWizard) confirm(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*ConfirmResult, error) {
	var (
		order *procurement.PurchaseOrder
		proj  *project.Project
	)
	err := w.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order.ProjectID == nil {
			return procurement.ErrProjectRequired
		}

		proj, err = repos.Projects().FindByID(ctx, tenantID, *order.ProjectID)
		if err != nil {
			return err
		}

		// Deduction runs with elevated rights: the project stage does not matter.
		if err := proj.DeductBudget(order.Total(), order.ID); err != nil {
			return err
		}
		if err := order.Confirm(actor, w.settings.Approval, w.clock.Now()); err != nil {
			return err
		}

		if err := repos.Projects().SaveWithLock(ctx, proj); err != nil {
			return err
		}
		return repos.PurchaseOrders().SaveWithLock(ctx, order)
	})
	if err != nil {
		if errors.Is(err, project.ErrBudgetExceeded) {
			logger.L(ctx).Info("purchase order exceeds project budget",
				logger.Record(chatter.ResModelPurchaseOrder, orderID))
		}
		return nil, err
	}

	logger.L(ctx).Info("purchase order confirmed through wizard",
		logger.Record(chatter.ResModelPurchaseOrder, order.ID),
		zap.String("state", order.State.String()),
		zap.String("amount_total", order.AmountTotal.String()),
		zap.String("remaining_budget", proj.Amount.String()),
	)

	publishEvents(ctx, w.eventPublisher, order, proj)

	return &ConfirmResult{
		Order:           ToPurchaseOrderResponse(order, actor),
		Deducted:        order.AmountTotal,
		RemainingBudget: proj.Amount,
	}, nil
}

// replay answers a repeated idempotency key. The key is marked before the
// first confirm commits, so an unconfirmed order means it is still running.
func (w *ConfirmWizard) replay(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*ConfirmResult, error) {
	order, err := w.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.ConfirmedAt == nil {
		return nil, procurement.ErrConfirmInProgress
	}
	result := &ConfirmResult{
		Order:    ToPurchaseOrderResponse(order, actor),
		Deducted: decimal.Zero,
		Replayed: true,
	}
	if order.ProjectID != nil {
		proj, err := w.projectRepo.FindByID(ctx, tenantID, *order.ProjectID)
		if err != nil {
			return nil, err
		}
		result.RemainingBudget = proj.Amount
	}

	logger.L(ctx).Info("confirm replayed for known idempotency key",
		logger.Record(chatter.ResModelPurchaseOrder, orderID))
	return result, nil
}
