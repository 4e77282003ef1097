package procurement

import "github.com/google/uuid"

// Actor is the user performing an operation, reduced to what the purchase
// rules look at.
type Actor struct {
	UserID uuid.UUID
	Name   string
	// CP is true for Confirming Party users (purchase_cp group)
	CP bool
	// HOD is true for Head of Department users (purchase_hod group)
	HOD bool
	// Manager is true for purchase managers
	Manager bool
}

// CanApprove reports whether the actor may approve orders waiting in to_approve
func (a Actor) CanApprove() bool {
	return a.HOD || a.Manager
}
