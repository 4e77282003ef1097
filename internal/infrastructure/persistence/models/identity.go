package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/identity"
	"github.com/google/uuid"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	TenantAggregateModel
	Username     string           `gorm:"type:varchar(100);not null"`
	DisplayName  string           `gorm:"type:varchar(200)"`
	Email        string           `gorm:"type:varchar(200)"`
	PasswordHash string           `gorm:"type:varchar(255);not null"`
	Active       bool             `gorm:"not null;default:true"`
	LastLoginAt  *time.Time       `gorm:"index"`
	Groups       []UserGroupModel `gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// Groups must be preloaded by the repository.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Active:       m.Active,
		LastLoginAt:  m.LastLoginAt,
		Groups:       make([]identity.Group, 0, len(m.Groups)),
	}
	for _, g := range m.Groups {
		user.Groups = append(user.Groups, identity.Group(g.GroupName))
	}
	m.PopulateTenantAggregateRoot(&user.TenantAggregateRoot)
	return user
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Username = u.Username
	m.DisplayName = u.DisplayName
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
	m.Groups = make([]UserGroupModel, 0, len(u.Groups))
	for _, g := range u.Groups {
		m.Groups = append(m.Groups, UserGroupModel{
			UserID:    u.ID,
			GroupName: string(g),
			TenantID:  u.TenantID,
			CreatedAt: u.UpdatedAt,
		})
	}
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserGroupModel is the persistence model for a user's security group membership.
type UserGroupModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupName string    `gorm:"column:group_name;type:varchar(50);primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserGroupModel) TableName() string {
	return "user_groups"
}
