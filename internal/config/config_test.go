package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProducesLocalRelayMode(t *testing.T) {
	cfg := Default()
	if cfg.RelayMode != "local" {
		t.Fatalf("got relay-mode %q", cfg.RelayMode)
	}
	if cfg.IologMode != FileMode(0600) {
		t.Fatalf("got iolog-mode %o", cfg.IologMode)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults for a missing config file")
	}
}

func TestLoadOverlaysOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logsrvd.yaml")
	contents := "relay-dir: /tmp/relay\niolog-mode: \"0640\"\nrandom-drop-percent: \"5%\"\nrelay-mode: journal\n"
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RelayDir != "/tmp/relay" {
		t.Fatalf("got relay-dir %q", cfg.RelayDir)
	}
	if cfg.IologMode != FileMode(0640) {
		t.Fatalf("got iolog-mode %o", cfg.IologMode)
	}
	if cfg.RandomDropPercent != DropPercent(0.05) {
		t.Fatalf("got random-drop-percent %v", cfg.RandomDropPercent)
	}
	if cfg.RelayMode != "journal" {
		t.Fatalf("got relay-mode %q", cfg.RelayMode)
	}
	// unset keys keep their default value
	if cfg.ServerTimeout != Default().ServerTimeout {
		t.Fatalf("expected unset server-timeout to keep default")
	}
}

func TestDropPercentRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("random-drop-percent: \"150\"\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for out-of-range random-drop-percent")
	}
}
