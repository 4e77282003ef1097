package procurement

// State is the purchase order workflow state
type State string

const (
	StateDraft     State = "draft"      // RFQ being prepared
	StateSent      State = "sent"       // RFQ submitted to the validator
	StateToApprove State = "to_approve" // confirmed, waiting for a second approval
	StatePurchase  State = "purchase"   // confirmed purchase order
	StateDone      State = "done"       // locked
	StateCancel    State = "cancel"
)

// IsValid checks if the state is known
func (s State) IsValid() bool {
	switch s {
	case StateDraft, StateSent, StateToApprove, StatePurchase, StateDone, StateCancel:
		return true
	}
	return false
}

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// CanTransitionTo checks if the state can transition to the target state
func (s State) CanTransitionTo(target State) bool {
	switch s {
	case StateDraft:
		return target == StateSent || target == StateToApprove || target == StatePurchase || target == StateCancel
	case StateSent:
		return target == StateToApprove || target == StatePurchase || target == StateCancel
	case StateToApprove:
		return target == StatePurchase || target == StateCancel
	case StatePurchase:
		return target == StateDone || target == StateCancel
	case StateDone:
		return target == StatePurchase
	case StateCancel:
		return target == StateDraft
	}
	return false
}

// RequiresProject reports whether an order in this state must carry a project
func (s State) RequiresProject() bool {
	return s != StateDraft && s != StateSent && s != StateCancel
}

// IsConfirmed reports whether the order has passed confirmation
func (s State) IsConfirmed() bool {
	return s == StatePurchase || s == StateDone
}
