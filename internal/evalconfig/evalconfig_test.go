package evalconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/driftlang/drift/internal/evalconfig"
)

func TestDefaultsMatchSpecDefaults(t *testing.T) {
	d := evalconfig.Defaults()
	if d.MaxArrayMapSize != 8 {
		t.Fatalf("MaxArrayMapSize = %d, want 8", d.MaxArrayMapSize)
	}
	if d.ArityFastPathCutoff != 10 {
		t.Fatalf("ArityFastPathCutoff = %d, want 10", d.ArityFastPathCutoff)
	}
	if d.RemoteCompile {
		t.Fatal("RemoteCompile should default to false")
	}
}

func TestParseConfigFillsMissingFieldsWithDefaults(t *testing.T) {
	cfg, err := evalconfig.ParseConfig([]byte("max_array_map_size: 16\n"), "inline")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.MaxArrayMapSize != 16 {
		t.Fatalf("MaxArrayMapSize = %d, want 16 (overridden)", cfg.MaxArrayMapSize)
	}
	if cfg.ArityFastPathCutoff != 10 {
		t.Fatalf("ArityFastPathCutoff = %d, want 10 (default)", cfg.ArityFastPathCutoff)
	}
	if cfg.JITCachePath != "drift-modcache.sqlite" {
		t.Fatalf("JITCachePath = %q, want default", cfg.JITCachePath)
	}
}

func TestParseConfigInvalidYAML(t *testing.T) {
	_, err := evalconfig.ParseConfig([]byte(":::not yaml"), "inline")
	if err == nil {
		t.Fatal("expected an error parsing malformed YAML")
	}
}

func TestFindConfigWalksUpToParent(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, evalconfig.FileName), []byte("max_array_map_size: 4\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	found, err := evalconfig.FindConfig(sub)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found == "" {
		t.Fatal("expected FindConfig to locate the config by walking up")
	}

	cfg, err := evalconfig.LoadConfig(found)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxArrayMapSize != 4 {
		t.Fatalf("MaxArrayMapSize = %d, want 4", cfg.MaxArrayMapSize)
	}
}

func TestFindConfigReturnsEmptyWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	found, err := evalconfig.FindConfig(dir)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found != "" {
		t.Fatalf("expected no config found, got %q", found)
	}
}
