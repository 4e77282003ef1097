package identity

import (
	"time"

	"github.com/erp/procurement/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	TenantID uuid.UUID
	Username string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
	User        UserDTO   `json:"user"`
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	TokenJTI string
	// RemainingTTL is how long the token would still be accepted
	RemainingTTL time.Duration
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	Username    string   `json:"username" binding:"required,min=3,max=100"`
	Password    string   `json:"password" binding:"required,min=8,max=128"`
	DisplayName string   `json:"display_name" binding:"max=200"`
	Email       string   `json:"email" binding:"omitempty,email"`
	Groups      []string `json:"groups"`
}

// SetGroupsInput replaces a user's security groups
type SetGroupsInput struct {
	Groups []string `json:"groups" binding:"required"`
}

// UserListFilter filters the user list
type UserListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Group    string `form:"group"`
	Active   *bool  `form:"active"`
}

// UserDTO represents user data transfer object
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email,omitempty"`
	Groups      []string   `json:"groups"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToUserDTO converts a domain user
func ToUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Username:    u.Username,
		DisplayName: u.Name(),
		Email:       u.Email,
		Groups:      u.Permissions(),
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toGroups(names []string) []identity.Group {
	groups := make([]identity.Group, len(names))
	for i, n := range names {
		groups[i] = identity.Group(n)
	}
	return groups
}
