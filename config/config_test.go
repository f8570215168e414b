package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load without config file: %v", err)
	}
	if cfg.Client.Scheme != "velocity" {
		t.Fatalf("expected default scheme velocity, got %q", cfg.Client.Scheme)
	}
	if cfg.Client.ReleasePolicy != "any" {
		t.Fatalf("expected default release policy any, got %q", cfg.Client.ReleasePolicy)
	}
	if !cfg.Client.SuppressRepeat {
		t.Fatalf("expected repeat suppression on by default")
	}
	if cfg.Server.Addr != ":3000" {
		t.Fatalf("expected default addr :3000, got %q", cfg.Server.Addr)
	}
	if got := cfg.Server.TickInterval().Milliseconds(); got != 30 {
		t.Fatalf("expected 30ms tick, got %dms", got)
	}
	if got := cfg.Client.ReleaseAfter().Milliseconds(); got <= 660 {
		t.Fatalf("release_after must exceed the usual 660ms repeat delay, got %dms", got)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	body := []byte("client:\n  scheme: step\n  server_url: http://example.test:9000\nserver:\n  step: 4\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KEYRELAY_CLIENT_RELEASE_POLICY", "all")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Client.Scheme != "step" {
		t.Fatalf("expected scheme from file, got %q", cfg.Client.Scheme)
	}
	if cfg.Client.ServerURL != "http://example.test:9000" {
		t.Fatalf("unexpected server url %q", cfg.Client.ServerURL)
	}
	if cfg.Server.Step != 4 {
		t.Fatalf("expected step 4, got %v", cfg.Server.Step)
	}
	if cfg.Client.ReleasePolicy != "all" {
		t.Fatalf("expected env override for release policy, got %q", cfg.Client.ReleasePolicy)
	}
}

func TestLoadRejectsUnknownScheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("client:\n  scheme: joystick\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error when an explicit config file is missing")
	}
}
