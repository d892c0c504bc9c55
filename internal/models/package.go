package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is a priced bundle of questions offered to clients.
type Package struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Name           string          `gorm:"type:text;not null;uniqueIndex" json:"name"` // Unique display name.
	Description    string          `gorm:"type:text;not null" json:"description"`      // Marketing copy.
	Rate           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`    // Price of the package.
	MaxQuestions   int64           `gorm:"not null;default:0" json:"max_questions"`    // Question allowance.
	Sequence       *int64          `json:"sequence"`                                   // Optional display order.
	ThumbnailColor string          `gorm:"type:text;not null;default:''" json:"thumbnail_color"` // Card accent color.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}
