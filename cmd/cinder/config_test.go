package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cinder.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
include_paths = ["include", "vendor/include"]
dynamic_lookup = true
step_quota = 5000
recursion_limit = 64
history = "history.db"
log_level = "debug"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if len(cfg.IncludePaths) != 2 || cfg.IncludePaths[1] != "vendor/include" {
		t.Fatalf("unexpected include paths %v", cfg.IncludePaths)
	}
	if !cfg.DynamicLookup || cfg.StepQuota != 5000 || cfg.RecursionLimit != 64 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.History != "history.db" || cfg.LogLevel != "debug" || cfg.LogFile != "" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "step_quota = 10\nstep_qouta = 20\n")
	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "unknown keys step_qouta") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfigRejectsNegativeQuota(t *testing.T) {
	path := writeConfig(t, "step_quota = -1\n")
	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected negative quota error")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}

	t.Chdir(t.TempDir())
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("missing default config must not fail: %v", err)
	}
	if cfg.StepQuota != 0 || len(cfg.IncludePaths) != 0 {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, "step_quota = 100\ninclude_paths = [\"a\"]\nlog_level = \"warn\"\n")
	var common commonFlags
	common.configPath = path
	common.steps = 0
	common.includePaths = pathList{"b"}
	common.logLevel = "debug"

	cfg, err := common.settings()
	if err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if cfg.StepQuota != 0 {
		t.Fatalf("flag must override step quota, got %d", cfg.StepQuota)
	}
	if strings.Join(cfg.IncludePaths, ",") != "a,b" {
		t.Fatalf("unexpected include paths %v", cfg.IncludePaths)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}

	common.steps = -1
	cfg, err = common.settings()
	if err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if cfg.StepQuota != 100 {
		t.Fatalf("unset flag must keep config quota, got %d", cfg.StepQuota)
	}
}
