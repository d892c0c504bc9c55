package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"github.com/router-for-me/WhitelistAdmin/internal/query"
	"gorm.io/gorm"
)

// WhitelistPageSize is the number of entries per paginated listing.
const WhitelistPageSize = 10

// whitelistUserJoin reaches the exempted user's name columns.
const whitelistUserJoin = "LEFT JOIN users ON users.id = whitelisted_users.user_id"

// WhitelistColumns are the searchable and sortable listing fields.
var WhitelistColumns = []query.Column{
	{Name: "id", Expr: "whitelisted_users.id", Cast: true},
	{Name: "user.first_name", Expr: "users.first_name", Join: whitelistUserJoin},
	{Name: "user.last_name", Expr: "users.last_name", Join: whitelistUserJoin},
	{Name: "remarks", Expr: "whitelisted_users.remarks"},
}

// UpsertResult is the entry written by Upsert and whether it was newly created.
type UpsertResult struct {
	Entry   models.WhitelistEntry
	Created bool
}

// WhitelistStore reads and writes whitelist entries.
type WhitelistStore struct {
	db *gorm.DB
}

// NewWhitelistStore wires a WhitelistStore.
func NewWhitelistStore(db *gorm.DB) (*WhitelistStore, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	return &WhitelistStore{db: db}, nil
}

// All returns every entry regardless of status, without users.
func (s *WhitelistStore) All(ctx context.Context) ([]models.WhitelistEntry, error) {
	rows := make([]models.WhitelistEntry, 0)
	if errFind := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("store: list whitelist: %w", errFind)
	}
	return rows, nil
}

// ActivePage returns one page of active entries with their users, searched and sorted per p.
func (s *WhitelistStore) ActivePage(ctx context.Context, p query.Params) (query.Page[models.WhitelistEntry], error) {
	conn := s.db.WithContext(ctx)
	q := conn.Model(&models.WhitelistEntry{}).
		Where("whitelisted_users.status = ?", models.WhitelistStatusActive)
	q = query.Apply(conn, q, p, WhitelistColumns)
	order := query.OrderBy(p, WhitelistColumns, "whitelisted_users.id ASC")
	return query.Paginate[models.WhitelistEntry](q, p, order, WhitelistPageSize, func(tx *gorm.DB) *gorm.DB {
		return tx.Preload("User")
	})
}

// Upsert activates the entry for userID, creating it when absent.
// remarks replaces the stored remarks when non-nil.
//
// There is no unique index on user_id; two concurrent first-time calls for the
// same user can both insert.
func (s *WhitelistStore) Upsert(ctx context.Context, userID uint64, remarks *string) (UpsertResult, error) {
	var result UpsertResult
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.WhitelistEntry
		errFind := tx.Where("user_id = ?", userID).Order("id ASC").First(&entry).Error
		switch {
		case errors.Is(errFind, gorm.ErrRecordNotFound):
			entry = models.WhitelistEntry{
				UserID:  userID,
				Status:  models.WhitelistStatusActive,
				Remarks: remarks,
			}
			if errCreate := tx.Create(&entry).Error; errCreate != nil {
				return errCreate
			}
			result = UpsertResult{Entry: entry, Created: true}
			return nil
		case errFind != nil:
			return errFind
		}

		updates := map[string]any{"status": models.WhitelistStatusActive}
		if remarks != nil {
			updates["remarks"] = *remarks
		}
		if errUpdate := tx.Model(&entry).Updates(updates).Error; errUpdate != nil {
			return errUpdate
		}
		result = UpsertResult{Entry: entry}
		return nil
	})
	if errTx != nil {
		return UpsertResult{}, fmt.Errorf("store: upsert whitelist user %d: %w", userID, errTx)
	}
	return result, nil
}

// Delete hard-deletes the entry with id.
func (s *WhitelistStore) Delete(ctx context.Context, id uint64) (MutationResult, error) {
	res := s.db.WithContext(ctx).Delete(&models.WhitelistEntry{}, id)
	if res.Error != nil {
		return MutationResult{}, fmt.Errorf("store: delete whitelist %d: %w", id, res.Error)
	}
	return MutationResult{RowsAffected: res.RowsAffected}, nil
}
