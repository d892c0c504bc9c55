package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, errLoad := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.JWT.Expiry != 24*time.Hour {
		t.Fatalf("expected default expiry 24h, got %s", cfg.JWT.Expiry)
	}
	if cfg.Flash.Driver != FlashDriverCookie {
		t.Fatalf("expected cookie flash driver, got %q", cfg.Flash.Driver)
	}
	if cfg.Admin.UpdateSuccessOK {
		t.Fatalf("expected update_success_ok to default to false")
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`server:
  port: 9090
database:
  dsn: "file:test.db"
jwt:
  secret: "s3cret"
  expiry: 2h
admin:
  update_success_ok: true
`)
	if errWrite := os.WriteFile(path, content, 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.DSN != "file:test.db" {
		t.Fatalf("expected dsn file:test.db, got %q", cfg.Database.DSN)
	}
	if cfg.JWT.Secret != "s3cret" || cfg.JWT.Expiry != 2*time.Hour {
		t.Fatalf("unexpected jwt config: %+v", cfg.JWT)
	}
	if !cfg.Admin.UpdateSuccessOK {
		t.Fatalf("expected update_success_ok=true")
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("expected default host to be kept, got %q", cfg.Server.Host)
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("WHITELIST_JWT_SECRET", "from-env")
	t.Setenv("WHITELIST_SERVER_PORT", "7070")

	cfg, errLoad := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Fatalf("expected jwt secret from env, got %q", cfg.JWT.Secret)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected port 7070 from env, got %d", cfg.Server.Port)
	}
}

func TestLoadRejectsUnknownFlashDriver(t *testing.T) {
	t.Setenv("WHITELIST_FLASH_DRIVER", "memcached")

	if _, errLoad := Load(filepath.Join(t.TempDir(), "absent.yaml")); errLoad == nil {
		t.Fatalf("expected error for unknown flash driver")
	}
}

func TestWriteExampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Default()
	want.JWT.Secret = "example"
	if errWrite := WriteExample(path, want); errWrite != nil {
		t.Fatalf("write example: %v", errWrite)
	}

	got, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load example: %v", errLoad)
	}
	if got.JWT.Secret != "example" || got.JWT.Expiry != want.JWT.Expiry {
		t.Fatalf("jwt config mismatch: got %+v want %+v", got.JWT, want.JWT)
	}
	if got.Flash.TTL != want.Flash.TTL {
		t.Fatalf("flash ttl mismatch: got %s want %s", got.Flash.TTL, want.Flash.TTL)
	}
}
