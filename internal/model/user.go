package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organizational roles a user can hold. Dashboards are rendered per role.
const (
	RoleMember        = "member"
	RoleManager       = "manager"
	RoleSupervisor    = "supervisor"
	RoleDirector      = "director"
	RoleVicePresident = "vice_president"
	RolePresident     = "president"
	RoleAdmin         = "admin"
)

var roles = map[string]bool{
	RoleMember:        true,
	RoleManager:       true,
	RoleSupervisor:    true,
	RoleDirector:      true,
	RoleVicePresident: true,
	RolePresident:     true,
	RoleAdmin:         true,
}

// ValidRole reports whether role is one of the organizational roles.
func ValidRole(role string) bool {
	return roles[role]
}

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	Username       string    `gorm:"not null"`
	HashedPassword string    `gorm:"not null"`
	Role           string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	return nil
}
