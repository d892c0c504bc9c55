package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRootCmdRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"serve", "migrate", "create-admin", "config"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected subcommand %s", name)
		}
	}
}

func TestConfigInitWritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", path, "config", "init"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, errRead := os.ReadFile(path)
	if errRead != nil {
		t.Fatalf("read config: %v", errRead)
	}
	if !strings.Contains(string(data), "route_prefix: /v0/admin") {
		t.Fatalf("unexpected config:\n%s", data)
	}

	cmd = NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", path, "config", "init"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected existing file to be kept")
	}
}

func TestMigrateAndCreateAdminCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("WHITELIST_DATABASE_DSN", "file:"+filepath.Join(dir, "whitelist.db"))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "migrate"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cmd = NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "create-admin", "--username", "root", "--password", "long enough", "--admin"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("create-admin: %v", err)
	}
	if !strings.Contains(out.String(), "created admin root") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
