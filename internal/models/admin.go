package models

import (
	"time"

	"gorm.io/datatypes"
)

// Admin represents an administrator account stored in the database.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Active bool `gorm:"not null;default:true"` // Whether the admin can sign in.

	IsAdmin bool `gorm:"not null;default:false"` // Bypasses every capability check when true.

	UserType string `gorm:"type:text;not null;default:'staff'"` // Page context label shown in views.

	Capabilities datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Capability names in JSON.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
