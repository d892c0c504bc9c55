package models

import "time"

// RoleClient is the role name of end users eligible for the whitelist.
const RoleClient = "Client"

// User is an application account. This service only reads it.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Username  string `gorm:"type:text;not null;uniqueIndex" json:"username"` // Unique login name.
	FirstName string `gorm:"type:text" json:"first_name"`                    // Given name.
	LastName  string `gorm:"type:text" json:"last_name"`                     // Family name.
	Email     string `gorm:"type:text" json:"email"`                         // Contact address.

	IsStatus int `gorm:"not null;default:0" json:"is_status"` // 0 means the account is in good standing.

	Roles []Role `gorm:"many2many:user_roles" json:"-"` // Assigned roles.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}

// Role is a named group of users.
type Role struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`       // Primary key.
	Name string `gorm:"type:text;not null;uniqueIndex"` // Role name, e.g. Client.
}
