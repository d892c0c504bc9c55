package store

import (
	"context"
	"fmt"

	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"gorm.io/gorm"
)

// UserStore reads application users.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore wires a UserStore.
func NewUserStore(db *gorm.DB) (*UserStore, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	return &UserStore{db: db}, nil
}

// Candidates returns Client users in good standing ordered by username.
func (s *UserStore) Candidates(ctx context.Context) ([]models.User, error) {
	rows := make([]models.User, 0)
	errFind := s.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("users.is_status = ?", 0).
		Where("roles.name = ?", models.RoleClient).
		Distinct().
		Order("users.username ASC").
		Find(&rows).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list candidate users: %w", errFind)
	}
	return rows, nil
}
