package event

import (
	"github.com/erp/procurement/internal/domain/hr"
	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
)

var knownEventTypes = map[string]string{
	hr.EventTypeDepartmentCreated:        hr.AggregateTypeDepartment,
	hr.EventTypeDepartmentManagerChanged: hr.AggregateTypeDepartment,
	hr.EventTypeEmployeeUserLinked:       hr.AggregateTypeEmployee,

	identity.EventTypeUserCreated:       identity.AggregateTypeUser,
	identity.EventTypeUserGroupsChanged: identity.AggregateTypeUser,

	project.EventTypeProjectCreated:        project.AggregateTypeProject,
	project.EventTypeProjectUpdated:        project.AggregateTypeProject,
	project.EventTypeProjectStageChanged:   project.AggregateTypeProject,
	project.EventTypeProjectBudgetDeducted: project.AggregateTypeProject,

	procurement.EventTypePurchaseOrderCreated:           procurement.AggregateTypePurchaseOrder,
	procurement.EventTypePurchaseOrderUpdated:           procurement.AggregateTypePurchaseOrder,
	procurement.EventTypeRFQSubmitted:                   procurement.AggregateTypePurchaseOrder,
	procurement.EventTypePurchaseOrderApprovalRequested: procurement.AggregateTypePurchaseOrder,
	procurement.EventTypePurchaseOrderConfirmed:         procurement.AggregateTypePurchaseOrder,
	procurement.EventTypePurchaseOrderCancelled:         procurement.AggregateTypePurchaseOrder,
	procurement.EventTypePurchaseOrderStateChanged:      procurement.AggregateTypePurchaseOrder,
}

// IsKnownEventType reports whether an event type is raised by any aggregate
func IsKnownEventType(eventType string) bool {
	_, ok := knownEventTypes[eventType]
	return ok
}

// AggregateTypeOf returns the aggregate that raises the event type
func AggregateTypeOf(eventType string) (string, bool) {
	agg, ok := knownEventTypes[eventType]
	return agg, ok
}

// KnownEventTypes lists all registered event types
func KnownEventTypes() []string {
	types := make([]string, 0, len(knownEventTypes))
	for t := range knownEventTypes {
		types = append(types, t)
	}
	return types
}
