package procurement

import (
	"context"
	"errors"
	"time"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Settings holds the purchase workflow configuration
type Settings struct {
	// DefaultCurrency applies when a request names no currency
	DefaultCurrency valueobject.Currency
	// ActivityDeadlineDays is the delay given to the validator to review a submitted RFQ
	ActivityDeadlineDays int
	// Approval configures the to_approve step of large orders
	Approval procurement.ApprovalPolicy
	// IdempotencyTTL is how long a confirm Idempotency-Key is remembered
	IdempotencyTTL time.Duration
}

// PurchaseOrderService handles purchase order operations outside the wizards
type PurchaseOrderService struct {
	orderRepo      procurement.PurchaseOrderRepository
	projectRepo    project.ProjectRepository
	userRepo       identity.UserRepository
	directory      *hr.Directory
	txScope        TransactionScope
	settings       Settings
	clock          shared.Clock
	eventPublisher shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo procurement.PurchaseOrderRepository,
	projectRepo project.ProjectRepository,
	userRepo identity.UserRepository,
	directory *hr.Directory,
	txScope TransactionScope,
	settings Settings,
	clock shared.Clock,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:   orderRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		directory:   directory,
		txScope:     txScope,
		settings:    settings,
		clock:       clock,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a draft RFQ. CP users must be linked to an employee, and
// their order defaults to that employee's department.
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID uuid.UUID, actor procurement.Actor, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	departmentID := req.DepartmentID
	if actor.CP {
		emp, err := s.directory.EmployeeOfUser(ctx, tenantID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if emp == nil {
			return nil, procurement.ErrCPNoEmployee
		}
		if departmentID == nil {
			departmentID = emp.DepartmentID
		}
	}

	currency, err := s.currencyOrDefault(req.Currency)
	if err != nil {
		return nil, err
	}

	if req.ProjectID != nil {
		if _, err := s.projectRepo.FindByID(ctx, tenantID, *req.ProjectID); err != nil {
			return nil, err
		}
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := procurement.NewPurchaseOrder(tenantID, orderNumber, req.VendorName, actor.UserID, departmentID, currency, s.clock.Now())
	if err != nil {
		return nil, err
	}
	order.ProjectID = req.ProjectID
	order.Notes = req.Notes

	if len(req.Lines) > 0 {
		if err := order.SetLines(toLineInputs(req.Lines)); err != nil {
			return nil, err
		}
	}

	validatorID, err := s.directory.Validator(ctx, tenantID, &order.DepartmentID)
	if err != nil {
		return nil, err
	}
	order.SetValidator(validatorID)

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("purchase order created",
		logger.Record(chatter.ResModelPurchaseOrder, order.ID),
		zap.String("order_number", order.OrderNumber),
	)

	s.publish(ctx, order)

	response := ToPurchaseOrderResponse(order, actor)
	return &response, nil
}

// GetByID retrieves a purchase order as seen by the actor
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order, actor)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	if filter.State != "" {
		domainFilter.Filters["state"] = filter.State
	}
	if filter.ProjectID != nil {
		domainFilter.Filters["project_id"] = *filter.ProjectID
	}
	if filter.DepartmentID != nil {
		domainFilter.Filters["department_id"] = *filter.DepartmentID
	}
	if filter.ValidatorID != nil {
		domainFilter.Filters["validator_id"] = *filter.ValidatorID
	}
	if filter.BuyerID != nil {
		domainFilter.Filters["buyer_id"] = *filter.BuyerID
	}

	orders, total, err := s.orderRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]PurchaseOrderListItemResponse, len(orders))
	for i, o := range orders {
		items[i] = ToPurchaseOrderListItemResponse(o)
	}
	return items, total, nil
}

// EditableFields reports which fields the actor may change on the order
func (s *PurchaseOrderService) EditableFields(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*EditableFieldsResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return &EditableFieldsResponse{
		State:          order.State.String(),
		EditableFields: order.EditableFields(actor),
		IsUserCP:       actor.CP,
		IsUserHOD:      actor.HOD,
	}, nil
}

// Update applies a partial update under the order's edit policy and
// recomputes the validator when the department changes
func (s *PurchaseOrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	changes := procurement.Changes{
		VendorName:   req.VendorName,
		ProjectID:    req.ProjectID,
		ClearProject: req.ClearProject,
		DepartmentID: req.DepartmentID,
		Notes:        req.Notes,
	}
	if req.Currency != nil {
		currency, err := valueobject.ParseCurrency(*req.Currency)
		if err != nil {
			return nil, err
		}
		changes.Currency = &currency
	}
	if req.Lines != nil {
		lines := toLineInputs(*req.Lines)
		changes.Lines = &lines
	}
	if req.ProjectID != nil && !req.ClearProject {
		if _, err := s.projectRepo.FindByID(ctx, tenantID, *req.ProjectID); err != nil {
			return nil, err
		}
	}

	departmentChanged, err := order.Update(changes, actor)
	if err != nil {
		return nil, err
	}

	if departmentChanged {
		validatorID, err := s.directory.Validator(ctx, tenantID, &order.DepartmentID)
		if err != nil {
			return nil, err
		}
		order.SetValidator(validatorID)
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, order)

	response := ToPurchaseOrderResponse(order, actor)
	return &response, nil
}

// SubmitRFQ sends a draft to its validator and schedules the review
// activity, in one transaction
func (s *PurchaseOrderService) SubmitRFQ(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*PurchaseOrderResponse, error) {
	var order *procurement.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}

		if err := order.SubmitRFQ(actor, s.clock.Now()); err != nil {
			return err
		}

		buyerName, err := s.buyerName(ctx, order, actor)
		if err != nil {
			return err
		}

		today := shared.Today(s.clock)
		activity, err := chatter.NewActivity(
			tenantID,
			chatter.ResModelPurchaseOrder,
			order.ID,
			chatter.ActivityTypeTodo,
			chatter.SummaryReviewRFQ,
			chatter.ReviewRFQNote(buyerName),
			*order.ValidatorID,
			today.AddDate(0, 0, s.settings.ActivityDeadlineDays),
		)
		if err != nil {
			return err
		}

		if err := repos.PurchaseOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		return repos.Activities().Save(ctx, activity)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("RFQ submitted",
		logger.Record(chatter.ResModelPurchaseOrder, order.ID),
		zap.String("validator_id", order.ValidatorID.String()),
	)

	s.publish(ctx, order)

	response := ToPurchaseOrderResponse(order, actor)
	return &response, nil
}

// Approve validates an order waiting in to_approve
func (s *PurchaseOrderService) Approve(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actor, func(o *procurement.PurchaseOrder) error {
		return o.Approve(actor, s.clock.Now())
	})
}

// Lock moves a confirmed order to done
func (s *PurchaseOrderService) Lock(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actor, (*procurement.PurchaseOrder).Lock)
}

// Unlock reopens a locked order
func (s *PurchaseOrderService) Unlock(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actor, (*procurement.PurchaseOrder).Unlock)
}

// ResetToDraft reopens a cancelled order as an RFQ
func (s *PurchaseOrderService) ResetToDraft(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, actor, (*procurement.PurchaseOrder).ResetToDraft)
}

func (s *PurchaseOrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, actor procurement.Actor, apply func(*procurement.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	from := order.State
	if err := apply(order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("purchase order state changed",
		logger.Record(chatter.ResModelPurchaseOrder, order.ID),
		zap.String("from", from.String()),
		zap.String("to", order.State.String()),
	)

	s.publish(ctx, order)

	response := ToPurchaseOrderResponse(order, actor)
	return &response, nil
}

// buyerName returns the display name of the order's buyer
func (s *PurchaseOrderService) buyerName(ctx context.Context, order *procurement.PurchaseOrder, actor procurement.Actor) (string, error) {
	if order.BuyerID == actor.UserID && actor.Name != "" {
		return actor.Name, nil
	}
	buyer, err := s.userRepo.FindByID(ctx, order.TenantID, order.BuyerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return actor.Name, nil
		}
		return "", err
	}
	return buyer.Name(), nil
}

func (s *PurchaseOrderService) currencyOrDefault(code string) (valueobject.Currency, error) {
	if code == "" {
		return s.settings.DefaultCurrency, nil
	}
	return valueobject.ParseCurrency(code)
}

func (s *PurchaseOrderService) publish(ctx context.Context, aggregates ...eventSource) {
	publishEvents(ctx, s.eventPublisher, aggregates...)
}

func toLineInputs(in []LineInput) []procurement.LineInput {
	out := make([]procurement.LineInput, len(in))
	for i, l := range in {
		out[i] = procurement.LineInput{
			ProductName: l.ProductName,
			Description: l.Description,
			Quantity:    l.Quantity,
			PriceUnit:   l.PriceUnit,
		}
	}
	return out
}
