package identity

import (
	"github.com/erp/procurement/internal/domain/shared"
)

// AggregateTypeUser is the aggregate type for users
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated       = "UserCreated"
	EventTypeUserGroupsChanged = "UserGroupsChanged"
)

// UserCreatedEvent is raised when a user account is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID, u.TenantID),
		Username:        u.Username,
	}
}

// UserGroupsChangedEvent is raised when the user's security groups change
type UserGroupsChangedEvent struct {
	shared.BaseDomainEvent
	Groups []string `json:"groups"`
}

// NewUserGroupsChangedEvent creates a new UserGroupsChangedEvent
func NewUserGroupsChangedEvent(u *User) *UserGroupsChangedEvent {
	return &UserGroupsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserGroupsChanged, AggregateTypeUser, u.ID, u.TenantID),
		Groups:          u.Permissions(),
	}
}
