// Package identity models the user accounts and the security groups that
// decide who may create, submit, approve and cancel purchase orders.
package identity

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt work factor; tests lower it
var bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// User represents a user in the system
type User struct {
	shared.TenantAggregateRoot
	Username     string
	DisplayName  string
	Email        string
	PasswordHash string
	Groups       []Group
	Active       bool
	LastLoginAt  *time.Time
}

// NewUser creates an active user with a hashed password
func NewUser(tenantID uuid.UUID, username, password string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:        passwordHash,
		Groups:              []Group{GroupPurchaseUser},
		Active:              true,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// SetDisplayName sets the name shown in chatter and activities
func (u *User) SetDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	u.DisplayName = name
	u.MarkModified()
	return nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) {
	u.Email = strings.ToLower(strings.TrimSpace(email))
	u.MarkModified()
}

// SetPassword replaces the password hash
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = passwordHash
	u.MarkModified()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetGroups replaces the user's security groups
func (u *User) SetGroups(groups []Group) error {
	normalized := make([]Group, 0, len(groups))
	for _, g := range groups {
		if !g.IsValid() {
			return shared.NewDomainError("INVALID_GROUP", "Unknown security group: "+string(g))
		}
		if !slices.Contains(normalized, g) {
			normalized = append(normalized, g)
		}
	}
	slices.Sort(normalized)

	u.Groups = normalized
	u.MarkModified()
	u.AddDomainEvent(NewUserGroupsChangedEvent(u))
	return nil
}

// HasGroup reports membership in a security group
func (u *User) HasGroup(group Group) bool {
	return slices.Contains(u.Groups, group)
}

// IsPurchaseCP reports whether the user is a Confirming Party
func (u *User) IsPurchaseCP() bool {
	return u.HasGroup(GroupPurchaseCP)
}

// IsPurchaseHOD reports whether the user is a Head of Department
func (u *User) IsPurchaseHOD() bool {
	return u.HasGroup(GroupPurchaseHOD)
}

// Deactivate blocks further logins
func (u *User) Deactivate() {
	u.Active = false
	u.MarkModified()
}

// Activate re-enables the account
func (u *User) Activate() {
	u.Active = true
	u.MarkModified()
}

// RecordLogin stamps a successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.Touch()
}

// Name returns the display name, falling back to the username
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Permissions returns the group names carried in access tokens
func (u *User) Permissions() []string {
	perms := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		perms = append(perms, string(g))
	}
	return perms
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 || len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be between 3 and 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
