package models

import "time"

// Whitelist entry statuses.
const (
	WhitelistStatusInactive = 0
	WhitelistStatusActive   = 1
)

// WhitelistEntry exempts a user from the birthdate ban rule.
type WhitelistEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID uint64 `gorm:"not null;index" json:"user_id"`             // Exempted user.
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"` // Exempted user record.

	Status  int     `gorm:"not null;default:0" json:"status"` // 1 when the exemption is active.
	Remarks *string `gorm:"type:text" json:"remarks"`         // Free-form note.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}

// TableName keeps the table name used by the rest of the application.
func (WhitelistEntry) TableName() string {
	return "whitelisted_users"
}
