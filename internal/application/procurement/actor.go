package procurement

import (
	"slices"

	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/google/uuid"
)

// NewActor builds the acting user from the groups carried by the access
// token. Admins approve like purchase managers.
func NewActor(userID uuid.UUID, name string, groups []string) procurement.Actor {
	has := func(g identity.Group) bool { return slices.Contains(groups, string(g)) }
	return procurement.Actor{
		UserID:  userID,
		Name:    name,
		CP:      has(identity.GroupPurchaseCP),
		HOD:     has(identity.GroupPurchaseHOD),
		Manager: has(identity.GroupPurchaseManager) || has(identity.GroupAdmin),
	}
}
