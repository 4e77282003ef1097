package procurement

import (
	"context"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/project"
)

// TransactionScope runs purchase workflow steps atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories a purchase workflow
// step writes to. All of them share the same underlying transaction.
//
// Aggregate boundaries:
//   - PurchaseOrders and Projects save with an optimistic version check, so a
//     budget deduction racing another deduction fails instead of overwriting.
//   - Messages and Activities are chatter entries written alongside the
//     state change they record, so a rejected change leaves no trace.
type TransactionalRepositories interface {
	PurchaseOrders() procurement.PurchaseOrderRepository
	Projects() project.ProjectRepository
	Messages() chatter.MessageRepository
	Activities() chatter.ActivityRepository
}
