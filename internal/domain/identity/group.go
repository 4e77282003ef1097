package identity

// Group is a security group granting purchase or project rights
type Group string

const (
	GroupPurchaseUser    Group = "purchase_user"
	GroupPurchaseManager Group = "purchase_manager"
	// GroupPurchaseCP marks Confirming Party users: they create purchase
	// orders for their own department and lose edit and cancel rights once
	// the order leaves draft.
	GroupPurchaseCP Group = "purchase_cp"
	// GroupPurchaseHOD marks Head of Department users, who approve orders
	// waiting in the to_approve state.
	GroupPurchaseHOD    Group = "purchase_hod"
	GroupProjectManager Group = "project_manager"
	GroupAdmin          Group = "admin"
)

// AllGroups lists every known group
func AllGroups() []Group {
	return []Group{
		GroupPurchaseUser,
		GroupPurchaseManager,
		GroupPurchaseCP,
		GroupPurchaseHOD,
		GroupProjectManager,
		GroupAdmin,
	}
}

// IsValid checks if the group is known
func (g Group) IsValid() bool {
	switch g {
	case GroupPurchaseUser, GroupPurchaseManager, GroupPurchaseCP,
		GroupPurchaseHOD, GroupProjectManager, GroupAdmin:
		return true
	}
	return false
}

// String returns the group name
func (g Group) String() string {
	return string(g)
}
