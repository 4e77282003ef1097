package chatter

import (
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityType is the kind of scheduled activity
type ActivityType string

const (
	ActivityTypeTodo ActivityType = "todo"
)

// ActivityState is the lifecycle state of an activity
type ActivityState string

const (
	ActivityStatePlanned   ActivityState = "planned"
	ActivityStateDone      ActivityState = "done"
	ActivityStateCancelled ActivityState = "cancelled"
)

// IsValid checks if the state is known
func (s ActivityState) IsValid() bool {
	switch s {
	case ActivityStatePlanned, ActivityStateDone, ActivityStateCancelled:
		return true
	}
	return false
}

// Activity summaries used by the purchase workflow
const (
	SummaryReviewRFQ = "Review RFQ Submission"
)

// ReviewRFQNote renders the note of the validator's review activity
func ReviewRFQNote(buyerName string) string {
	return "Please review the RFQ submitted by " + buyerName
}

// Activity is a to-do scheduled on a record for a user
type Activity struct {
	shared.BaseEntity
	TenantID       uuid.UUID
	ResModel       string
	ResID          uuid.UUID
	ActivityType   ActivityType
	Summary        string
	Note           string
	AssignedUserID uuid.UUID
	DeadlineDate   time.Time
	State          ActivityState
	Feedback       string
	DoneAt         *time.Time
}

// NewActivity schedules a planned activity. The deadline is kept as a
// calendar date.
func NewActivity(tenantID uuid.UUID, resModel string, resID uuid.UUID, activityType ActivityType, summary, note string, assignedUserID uuid.UUID, deadline time.Time) (*Activity, error) {
	if !IsKnownResModel(resModel) {
		return nil, shared.NewDomainError("INVALID_RES_MODEL", "Unknown record model: "+resModel)
	}
	if resID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RES_ID", "Record ID cannot be empty")
	}
	if assignedUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNEE", "Activity must be assigned to a user")
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, shared.NewDomainError("INVALID_SUMMARY", "Activity summary cannot be empty")
	}
	if activityType == "" {
		activityType = ActivityTypeTodo
	}
	return &Activity{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		ResModel:       resModel,
		ResID:          resID,
		ActivityType:   activityType,
		Summary:        summary,
		Note:           strings.TrimSpace(note),
		AssignedUserID: assignedUserID,
		DeadlineDate:   shared.DateOf(deadline),
		State:          ActivityStatePlanned,
	}, nil
}

// IsOverdue reports whether a planned activity is past its deadline
func (a *Activity) IsOverdue(today time.Time) bool {
	return a.State == ActivityStatePlanned && a.DeadlineDate.Before(shared.DateOf(today))
}

// MarkDone closes the activity with optional feedback. Only the assignee
// may do it unless force is set by the system.
func (a *Activity) MarkDone(userID uuid.UUID, feedback string, force bool, now time.Time) error {
	if a.State != ActivityStatePlanned {
		return shared.NewDomainError("INVALID_STATE", "Activity is already closed")
	}
	if !force && userID != a.AssignedUserID {
		return shared.NewDomainError("FORBIDDEN", "Only the assigned user can mark this activity as done")
	}
	a.State = ActivityStateDone
	a.Feedback = strings.TrimSpace(feedback)
	a.DoneAt = &now
	a.Touch()
	return nil
}

// Cancel drops a planned activity
func (a *Activity) Cancel() error {
	if a.State != ActivityStatePlanned {
		return shared.NewDomainError("INVALID_STATE", "Activity is already closed")
	}
	a.State = ActivityStateCancelled
	a.Touch()
	return nil
}
