package store

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	dbutil "github.com/router-for-me/WhitelistAdmin/internal/db"
	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"github.com/router-for-me/WhitelistAdmin/internal/query"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		t.Fatalf("sql db: %v", errDB)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if errMigrate := dbutil.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, username, first, last string, isStatus int, roles ...string) models.User {
	t.Helper()
	user := models.User{Username: username, FirstName: first, LastName: last, IsStatus: isStatus}
	for _, name := range roles {
		role := models.Role{Name: name}
		if errRole := conn.Where("name = ?", name).FirstOrCreate(&role).Error; errRole != nil {
			t.Fatalf("seed role %s: %v", name, errRole)
		}
		user.Roles = append(user.Roles, role)
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("seed user %s: %v", username, errCreate)
	}
	return user
}

func strPtr(s string) *string { return &s }

func TestWhitelistUpsertCreatesThenUpdates(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	store, errStore := NewWhitelistStore(conn)
	if errStore != nil {
		t.Fatalf("new store: %v", errStore)
	}
	user := seedUser(t, conn, "alice", "Alice", "Smith", 0, models.RoleClient)

	first, errFirst := store.Upsert(ctx, user.ID, strPtr("born on leap day"))
	if errFirst != nil {
		t.Fatalf("first upsert: %v", errFirst)
	}
	if !first.Created {
		t.Fatalf("expected first upsert to create")
	}

	if errDeactivate := conn.Model(&models.WhitelistEntry{}).Where("id = ?", first.Entry.ID).Update("status", models.WhitelistStatusInactive).Error; errDeactivate != nil {
		t.Fatalf("deactivate: %v", errDeactivate)
	}

	second, errSecond := store.Upsert(ctx, user.ID, nil)
	if errSecond != nil {
		t.Fatalf("second upsert: %v", errSecond)
	}
	if second.Created {
		t.Fatalf("expected second upsert to update")
	}
	if second.Entry.ID != first.Entry.ID {
		t.Fatalf("expected same entry, got %d and %d", first.Entry.ID, second.Entry.ID)
	}

	var rows []models.WhitelistEntry
	if errFind := conn.Where("user_id = ?", user.ID).Find(&rows).Error; errFind != nil {
		t.Fatalf("find: %v", errFind)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Status != models.WhitelistStatusActive {
		t.Fatalf("expected active status, got %d", rows[0].Status)
	}
	if rows[0].Remarks == nil || *rows[0].Remarks != "born on leap day" {
		t.Fatalf("expected remarks to survive nil upsert, got %v", rows[0].Remarks)
	}

	if _, errThird := store.Upsert(ctx, user.ID, strPtr("")); errThird != nil {
		t.Fatalf("third upsert: %v", errThird)
	}
	var entry models.WhitelistEntry
	if errFind := conn.First(&entry, first.Entry.ID).Error; errFind != nil {
		t.Fatalf("reload: %v", errFind)
	}
	if entry.Remarks == nil || *entry.Remarks != "" {
		t.Fatalf("expected remarks cleared, got %v", entry.Remarks)
	}
}

func TestWhitelistActivePageFiltersAndPaginates(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	store, _ := NewWhitelistStore(conn)

	for i := 0; i < 12; i++ {
		user := seedUser(t, conn, fmt.Sprintf("user%02d", i), fmt.Sprintf("First%02d", i), "Doe", 0, models.RoleClient)
		if _, errUpsert := store.Upsert(ctx, user.ID, nil); errUpsert != nil {
			t.Fatalf("upsert %d: %v", i, errUpsert)
		}
	}
	inactive := seedUser(t, conn, "ghost", "Ghost", "Doe", 0, models.RoleClient)
	if errCreate := conn.Create(&models.WhitelistEntry{UserID: inactive.ID, Status: models.WhitelistStatusInactive}).Error; errCreate != nil {
		t.Fatalf("create inactive: %v", errCreate)
	}

	req := httptest.NewRequest("GET", "http://admin.local/v0/admin/birthdate-ban-whitelist?page=2", nil)
	page, errPage := store.ActivePage(ctx, query.FromRequest(req))
	if errPage != nil {
		t.Fatalf("active page: %v", errPage)
	}
	if page.Total != 12 {
		t.Fatalf("expected 12 active entries, got %d", page.Total)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 rows on page 2, got %d", len(page.Data))
	}
	if page.LastPage != 2 || page.NextPageURL != nil || page.PrevPageURL == nil {
		t.Fatalf("unexpected links: %+v", page)
	}
	for _, row := range page.Data {
		if row.Status != models.WhitelistStatusActive {
			t.Fatalf("inactive row leaked: %+v", row)
		}
		if row.User == nil || row.User.LastName != "Doe" {
			t.Fatalf("expected preloaded user, got %+v", row.User)
		}
	}
}

func TestWhitelistActivePageSearchAndSort(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	store, _ := NewWhitelistStore(conn)

	names := []string{"Zed", "Amy", "Bob"}
	for i, name := range names {
		user := seedUser(t, conn, fmt.Sprintf("u%d", i), name, "Tester", 0, models.RoleClient)
		if _, errUpsert := store.Upsert(ctx, user.ID, strPtr("note "+name)); errUpsert != nil {
			t.Fatalf("upsert: %v", errUpsert)
		}
	}

	req := httptest.NewRequest("GET", "/list?search=amy", nil)
	page, errPage := store.ActivePage(ctx, query.FromRequest(req))
	if errPage != nil {
		t.Fatalf("search: %v", errPage)
	}
	if page.Total != 1 || page.Data[0].User.FirstName != "Amy" {
		t.Fatalf("expected only Amy, got %+v", page.Data)
	}

	for _, wildcard := range []string{"%25", "_"} {
		req = httptest.NewRequest("GET", "/list?search="+wildcard, nil)
		page, errPage = store.ActivePage(ctx, query.FromRequest(req))
		if errPage != nil {
			t.Fatalf("search %s: %v", wildcard, errPage)
		}
		if page.Total != 0 {
			t.Fatalf("search %s: expected wildcard to match literally, got %d rows", wildcard, page.Total)
		}
	}

	req = httptest.NewRequest("GET", "/list?sort=user.first_name&direction=desc", nil)
	page, errPage = store.ActivePage(ctx, query.FromRequest(req))
	if errPage != nil {
		t.Fatalf("sort: %v", errPage)
	}
	if len(page.Data) != 3 || page.Data[0].User.FirstName != "Zed" || page.Data[2].User.FirstName != "Amy" {
		t.Fatalf("unexpected order: %+v", page.Data)
	}
}

func TestWhitelistDelete(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	store, _ := NewWhitelistStore(conn)
	user := seedUser(t, conn, "carol", "Carol", "King", 0)

	res, errUpsert := store.Upsert(ctx, user.ID, nil)
	if errUpsert != nil {
		t.Fatalf("upsert: %v", errUpsert)
	}

	deleted, errDelete := store.Delete(ctx, res.Entry.ID)
	if errDelete != nil {
		t.Fatalf("delete: %v", errDelete)
	}
	if !deleted.Applied() {
		t.Fatalf("expected a deleted row")
	}

	again, errAgain := store.Delete(ctx, res.Entry.ID)
	if errAgain != nil {
		t.Fatalf("second delete: %v", errAgain)
	}
	if again.Applied() {
		t.Fatalf("expected no rows on second delete")
	}

	all, errAll := store.All(ctx)
	if errAll != nil {
		t.Fatalf("all: %v", errAll)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty table, got %d", len(all))
	}
}

func TestPackageStoreFindNameTakenUpdate(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	store, _ := NewPackageStore(conn)

	basic := models.Package{Name: "Basic", Description: "starter", Rate: decimal.RequireFromString("9.99"), MaxQuestions: 5}
	premium := models.Package{Name: "Premium", Description: "more", Rate: decimal.RequireFromString("19.99"), MaxQuestions: 20}
	if errCreate := conn.Create(&basic).Error; errCreate != nil {
		t.Fatalf("create basic: %v", errCreate)
	}
	if errCreate := conn.Create(&premium).Error; errCreate != nil {
		t.Fatalf("create premium: %v", errCreate)
	}

	missing, errMissing := store.Find(ctx, 999)
	if errMissing != nil || missing != nil {
		t.Fatalf("expected nil for missing package, got %v %v", missing, errMissing)
	}

	taken, errTaken := store.NameTaken(ctx, "Premium", basic.ID)
	if errTaken != nil || !taken {
		t.Fatalf("expected Premium taken for basic, got %v %v", taken, errTaken)
	}
	own, errOwn := store.NameTaken(ctx, "Basic", basic.ID)
	if errOwn != nil || own {
		t.Fatalf("expected own name free, got %v %v", own, errOwn)
	}

	seq := int64(3)
	res, errUpdate := store.Update(ctx, basic.ID, PackageUpdate{
		Name:           "Basic Plus",
		Description:    "starter plus",
		Rate:           decimal.RequireFromString("12.50"),
		MaxQuestions:   8,
		Sequence:       &seq,
		SequenceSet:    true,
		ThumbnailColor: "#ff0000",
	})
	if errUpdate != nil {
		t.Fatalf("update: %v", errUpdate)
	}
	if !res.Applied() {
		t.Fatalf("expected update to apply")
	}

	got, errFind := store.Find(ctx, basic.ID)
	if errFind != nil || got == nil {
		t.Fatalf("find updated: %v %v", got, errFind)
	}
	if got.Name != "Basic Plus" || got.MaxQuestions != 8 || got.Sequence == nil || *got.Sequence != 3 {
		t.Fatalf("unexpected package: %+v", got)
	}
	if !got.Rate.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected rate: %s", got.Rate)
	}

	if _, errKeep := store.Update(ctx, basic.ID, PackageUpdate{Name: "Basic Plus", Description: "again", ThumbnailColor: "#ff0000"}); errKeep != nil {
		t.Fatalf("update without sequence: %v", errKeep)
	}
	kept, errKept := store.Find(ctx, basic.ID)
	if errKept != nil || kept == nil || kept.Sequence == nil || *kept.Sequence != 3 {
		t.Fatalf("expected sequence kept, got %+v %v", kept, errKept)
	}

	none, errNone := store.Update(ctx, 999, PackageUpdate{Name: "x", Description: "y"})
	if errNone != nil {
		t.Fatalf("update missing: %v", errNone)
	}
	if none.Applied() {
		t.Fatalf("expected no rows for missing package")
	}
}

func TestUserCandidates(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	store, _ := NewUserStore(conn)

	seedUser(t, conn, "zoe", "Zoe", "A", 0, models.RoleClient)
	seedUser(t, conn, "adam", "Adam", "B", 0, models.RoleClient, "Moderator")
	seedUser(t, conn, "banned", "Ban", "C", 1, models.RoleClient)
	seedUser(t, conn, "staff", "Staff", "D", 0, "Moderator")

	users, errUsers := store.Candidates(ctx)
	if errUsers != nil {
		t.Fatalf("candidates: %v", errUsers)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(users))
	}
	if users[0].Username != "adam" || users[1].Username != "zoe" {
		t.Fatalf("unexpected order: %s, %s", users[0].Username, users[1].Username)
	}
}
