package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PackageUpdate holds the editable package fields.
type PackageUpdate struct {
	Name           string
	Description    string
	Rate           decimal.Decimal
	MaxQuestions   int64
	Sequence       *int64
	SequenceSet    bool // Write Sequence; nil then clears it.
	ThumbnailColor string
}

// PackageStore reads and updates packages.
type PackageStore struct {
	db *gorm.DB
}

// NewPackageStore wires a PackageStore.
func NewPackageStore(db *gorm.DB) (*PackageStore, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	return &PackageStore{db: db}, nil
}

// Find returns the package with id, or nil when there is none.
func (s *PackageStore) Find(ctx context.Context, id uint64) (*models.Package, error) {
	var pkg models.Package
	if errFind := s.db.WithContext(ctx).First(&pkg, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: find package %d: %w", id, errFind)
	}
	return &pkg, nil
}

// NameTaken reports whether another package than exceptID already uses name.
func (s *PackageStore) NameTaken(ctx context.Context, name string, exceptID uint64) (bool, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.Package{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("store: check package name: %w", errCount)
	}
	return count > 0, nil
}

// Update writes the editable fields of the package with id. Sequence is left alone unless SequenceSet.
func (s *PackageStore) Update(ctx context.Context, id uint64, in PackageUpdate) (MutationResult, error) {
	values := map[string]any{
		"name":            in.Name,
		"description":     in.Description,
		"rate":            in.Rate,
		"max_questions":   in.MaxQuestions,
		"thumbnail_color": in.ThumbnailColor,
	}
	if in.SequenceSet {
		values["sequence"] = in.Sequence
	}
	res := s.db.WithContext(ctx).
		Model(&models.Package{}).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		return MutationResult{}, fmt.Errorf("store: update package %d: %w", id, res.Error)
	}
	return MutationResult{RowsAffected: res.RowsAffected}, nil
}
