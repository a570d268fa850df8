package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Poll.ParseInterval() != 5*time.Second {
		t.Errorf("expected poll interval 5s, got %v", cfg.Poll.ParseInterval())
	}
	if cfg.Poll.ParseSettleDelay() != 30*time.Second {
		t.Errorf("expected settle delay 30s, got %v", cfg.Poll.ParseSettleDelay())
	}
	if len(cfg.Checks.Include) != 0 {
		t.Errorf("expected empty include list, got %v", cfg.Checks.Include)
	}
	if cfg.Checks.Require {
		t.Error("expected checks.require to default to false")
	}
}

func TestLoadJSONC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonc")

	content := []byte(`{
  // This is a JSONC comment
  "checks": {
    "exclude": ["flaky-*"]
  },
  "poll": {
    "interval": "10s"
  }
}`)

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m, err := loadJSONC(path)
	if err != nil {
		t.Fatalf("loadJSONC failed: %v", err)
	}

	poll, ok := m["poll"].(map[string]any)
	if !ok {
		t.Fatal("expected poll to be a map")
	}
	if poll["interval"] != "10s" {
		t.Errorf("expected interval=10s, got %v", poll["interval"])
	}
}

func TestLoadJSONC_FileNotFound(t *testing.T) {
	_, err := loadJSONC("/nonexistent/path/config.jsonc")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadJSONC_MalformedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jsonc")

	// Truncated JSON
	if err := os.WriteFile(path, []byte(`{"poll": {"interval": "10s"`), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	_, err := loadJSONC(path)
	if err == nil {
		t.Error("expected error for malformed JSONC")
	}
}

func TestMergeIntoConfig(t *testing.T) {
	cfg := DefaultConfig()

	src := map[string]any{
		"poll": map[string]any{
			"interval": "15s",
		},
	}

	if err := mergeIntoConfig(&cfg, src); err != nil {
		t.Fatalf("mergeIntoConfig failed: %v", err)
	}

	if cfg.Poll.Interval != "15s" {
		t.Errorf("expected interval=15s, got %s", cfg.Poll.Interval)
	}
	// Settle delay should remain untouched
	if cfg.Poll.SettleDelay != "30s" {
		t.Errorf("expected settle_delay preserved as 30s, got %s", cfg.Poll.SettleDelay)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("GITHUB_TOKEN", "gh-token-456")
	t.Setenv("PRLOOP_INCLUDE_CHECKS", "build-*, test")
	t.Setenv("PRLOOP_EXCLUDE_CHECKS", "flaky-*,,")

	applyEnvOverrides(&cfg)

	if cfg.GitHub.Token != "gh-token-456" {
		t.Errorf("expected token=gh-token-456, got %s", cfg.GitHub.Token)
	}
	if len(cfg.Checks.Include) != 2 || cfg.Checks.Include[0] != "build-*" || cfg.Checks.Include[1] != "test" {
		t.Errorf("expected include=[build-* test], got %v", cfg.Checks.Include)
	}
	if len(cfg.Checks.Exclude) != 1 || cfg.Checks.Exclude[0] != "flaky-*" {
		t.Errorf("expected exclude=[flaky-*], got %v", cfg.Checks.Exclude)
	}
}

func TestApplyEnvOverrides_Unset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Checks.Include = []string{"keep-me"}

	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("PRLOOP_INCLUDE_CHECKS", "")
	t.Setenv("PRLOOP_EXCLUDE_CHECKS", "")

	applyEnvOverrides(&cfg)

	if len(cfg.Checks.Include) != 1 || cfg.Checks.Include[0] != "keep-me" {
		t.Errorf("expected include preserved, got %v", cfg.Checks.Include)
	}
}

func TestParseInterval_Invalid(t *testing.T) {
	p := PollConfig{Interval: "not-a-duration"}
	if p.ParseInterval() != 5*time.Second {
		t.Error("expected fallback to 5s for invalid duration")
	}
}

func TestParseSettleDelay_Invalid(t *testing.T) {
	p := PollConfig{SettleDelay: "bad"}
	if p.ParseSettleDelay() != 30*time.Second {
		t.Error("expected fallback to 30s for invalid duration")
	}
}

func TestSplitPatterns(t *testing.T) {
	got := splitPatterns(" a ,, b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}
	if splitPatterns("") != nil {
		t.Error("expected nil for empty input")
	}
}
