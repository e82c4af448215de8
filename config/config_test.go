package config

import (
	"os"
	"path/filepath"
	"testing"

	"pirc/lower"
	"pirc/report"
)

func TestLoadFallsBackToDefaultWhenFileIsAbsent(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected Default() when pir.toml is absent, got %+v", cfg)
	}
}

func TestLoadParsesAndValidatesOverrides(t *testing.T) {
	dir := t.TempDir()
	contents := `
log-level = "error"
safepoint-slack-bytes = 8192
max-inline-safepoint-spill = 16
enable-binding-cache = false
target-triple = "aarch64-unknown-linux-gnu"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != report.LogLevelError {
		t.Fatalf("expected error log level, got %d", cfg.LogLevel)
	}
	if cfg.Lower.SafepointSlackBytes != 8192 {
		t.Fatalf("expected overridden safepoint slack, got %d", cfg.Lower.SafepointSlackBytes)
	}
	if cfg.Lower.MaxInlineSafepointSpill != 16 {
		t.Fatalf("expected overridden spill limit, got %d", cfg.Lower.MaxInlineSafepointSpill)
	}
	if cfg.Lower.EnableBindingCache {
		t.Fatalf("expected the binding cache to be disabled by the override")
	}
	if cfg.TargetTriple != "aarch64-unknown-linux-gnu" {
		t.Fatalf("expected overridden target triple, got %q", cfg.TargetTriple)
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	dir := t.TempDir()
	contents := `log-level = "chatty"`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatalf("expected an error for an unrecognized log-level")
	}
}

func TestDefaultValuesMatchLowerDefaults(t *testing.T) {
	cfg := Default()
	if cfg.LogLevel != report.LogLevelWarn {
		t.Fatalf("expected warn as the default log level")
	}
	if cfg.Lower != lower.DefaultConfig {
		t.Fatalf("expected lower.DefaultConfig, got %+v", cfg.Lower)
	}
}
