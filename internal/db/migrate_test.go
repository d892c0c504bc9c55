package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"gorm.io/gorm"
)

func TestMigrateSQLiteCreatesTables(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, table := range []string{"admins", "users", "roles", "user_roles", "whitelisted_users", "packages"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	for _, column := range []string{"user_id", "status", "remarks"} {
		if !conn.Migrator().HasColumn("whitelisted_users", column) {
			t.Fatalf("whitelisted_users missing column %s", column)
		}
	}
}

func TestMigrateSeedsClientRoleOnce(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	for i := 0; i < 2; i++ {
		if errMigrate := Migrate(conn); errMigrate != nil {
			t.Fatalf("migrate run %d: %v", i, errMigrate)
		}
	}

	var count int64
	if errCount := conn.Model(&models.Role{}).Where("name = ?", models.RoleClient).Count(&count).Error; errCount != nil {
		t.Fatalf("count roles: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected 1 client role, got %d", count)
	}
}

func TestDetectDialectFromDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost/app": DialectPostgres,
		"host=localhost dbname=app":    DialectPostgres,
		"file:data/whitelist.db":       DialectSQLite,
		"sqlite://data/whitelist.db":   DialectSQLite,
		"whitelist.db":                 DialectSQLite,
	}
	for dsn, want := range cases {
		got, err := detectDialectFromDSN(dsn)
		if err != nil {
			t.Fatalf("detectDialectFromDSN(%q): %v", dsn, err)
		}
		if got != want {
			t.Fatalf("detectDialectFromDSN(%q) = %q, want %q", dsn, got, want)
		}
	}
	if _, err := detectDialectFromDSN("mysql://localhost/app"); err == nil {
		t.Fatalf("expected error for mysql dsn")
	}
}
