package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Noflood.LockTTL != def.Noflood.LockTTL {
		t.Errorf("expected default lock ttl %s, got %s", def.Noflood.LockTTL, cfg.Noflood.LockTTL)
	}
	if cfg.Noflood.LockTTL != 310*time.Second {
		t.Errorf("expected 310s lock ttl, got %s", cfg.Noflood.LockTTL)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
project:
  sender: NOFLOOD_TEST
noflood:
  authority: CONFIG_TEST
  testGroups: [-1001, -1002]
  reportTTL:
    show: 45s
channels:
  telegram:
    enabled: true
    token: "123:abc"
exchange:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Project.Sender != "NOFLOOD_TEST" {
		t.Errorf("expected sender NOFLOOD_TEST, got %q", cfg.Project.Sender)
	}
	if cfg.Noflood.Authority != "CONFIG_TEST" {
		t.Errorf("expected authority CONFIG_TEST, got %q", cfg.Noflood.Authority)
	}
	if !cfg.Noflood.IsTestGroup(-1002) || cfg.Noflood.IsTestGroup(-1003) {
		t.Errorf("unexpected test groups: %v", cfg.Noflood.TestGroups)
	}
	if cfg.Noflood.ReportTTL.Show != 45*time.Second {
		t.Errorf("expected show ttl 45s, got %s", cfg.Noflood.ReportTTL.Show)
	}
	// Unset keys keep their defaults.
	if cfg.Noflood.ReportTTL.Failure != 5*time.Second {
		t.Errorf("expected failure ttl 5s, got %s", cfg.Noflood.ReportTTL.Failure)
	}
	if !cfg.Channels.Telegram.Enabled || cfg.Channels.Telegram.Token != "123:abc" {
		t.Errorf("telegram config not loaded: %+v", cfg.Channels.Telegram)
	}
	if len(cfg.Exchange.Brokers) != 2 {
		t.Errorf("expected 2 brokers, got %v", cfg.Exchange.Brokers)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "noflood: [not: valid")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for invalid YAML (falls back to default), got: %v", err)
	}
	if cfg.Noflood.Authority != "CONFIG" {
		t.Errorf("expected default authority, got %q", cfg.Noflood.Authority)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "channels:\n  telegram:\n    token: from-file\n")

	t.Setenv("NOFLOOD_TELEGRAM_TOKEN", "from-env")
	t.Setenv("NOFLOOD_EXCHANGE_BROKERS", "a:9092,b:9092")
	t.Setenv("NOFLOOD_LOCK_TTL", "2m")
	t.Setenv("NOFLOOD_DIRECT_EDIT_LOCKS", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Channels.Telegram.Token != "from-env" {
		t.Errorf("expected env token, got %q", cfg.Channels.Telegram.Token)
	}
	if len(cfg.Exchange.Brokers) != 2 || cfg.Exchange.Brokers[1] != "b:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Exchange.Brokers)
	}
	if cfg.Noflood.LockTTL != 2*time.Minute {
		t.Errorf("expected lock ttl 2m, got %s", cfg.Noflood.LockTTL)
	}
	if cfg.Noflood.DirectEditLocks {
		t.Error("expected directEditLocks=false from env")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := DefaultConfig()
	original.Noflood.Debug = "telegram:-100999"
	original.Noflood.ReportTTL.Reply = time.Minute
	original.Store.Path = filepath.Join(dir, "db.sqlite")

	if err := Save(&original, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Noflood.Debug != original.Noflood.Debug {
		t.Errorf("debug mismatch: got %q, want %q", loaded.Noflood.Debug, original.Noflood.Debug)
	}
	if loaded.Noflood.ReportTTL.Reply != time.Minute {
		t.Errorf("reply ttl mismatch: got %s", loaded.Noflood.ReportTTL.Reply)
	}
	if loaded.Store.StorePath() != original.Store.Path {
		t.Errorf("store path mismatch: got %q", loaded.Store.StorePath())
	}
}

func TestSave_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected permissions 0600, got %04o", perm)
	}
}

func TestConfigPath_Env(t *testing.T) {
	t.Setenv("NOFLOOD_CONFIG", "/etc/noflood/config.yaml")
	if got := ConfigPath(); got != "/etc/noflood/config.yaml" {
		t.Errorf("expected env path, got %q", got)
	}
}
