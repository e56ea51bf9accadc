package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func TestLoadFileParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileYAML)
	writeConfig(t, path, `
hub: ICN
min_connect: 60
max_connect: 600
inbound_label: "To ICN"
outbound_label: "From ICN"
group_a:
  routes: [" US ", "CANADA"]
  carriers: [KE]
group_b:
  routes: [ASIA]
  carriers: [KE, OZ, ""]
exclude_carriers:
  - 7C*
exclude_airports:
  - NRT
format: text
cache_ttl: 2d
clickhouse_dsn: clickhouse://reader@ch.internal:9000/ops
timeout: 30s
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.MinConnect == nil || *cfg.MinConnect != 60 {
		t.Fatalf("expected min_connect=60, got %v", cfg.MinConnect)
	}
	if cfg.MaxConnect == nil || *cfg.MaxConnect != 600 {
		t.Fatalf("expected max_connect=600, got %v", cfg.MaxConnect)
	}
	if len(cfg.GroupA.Routes) != 2 || cfg.GroupA.Routes[0] != "US" {
		t.Fatalf("unexpected group_a.routes: %v", cfg.GroupA.Routes)
	}
	if len(cfg.GroupB.Carriers) != 2 {
		t.Fatalf("expected empty carrier to be dropped, got %v", cfg.GroupB.Carriers)
	}
	if cfg.Format != "text" {
		t.Fatalf("expected format=text, got %q", cfg.Format)
	}
	if cfg.CacheTTL != "2d" {
		t.Fatalf("expected cache_ttl=2d, got %q", cfg.CacheTTL)
	}
}

func TestApplyToRespectsChangedFlags(t *testing.T) {
	minConnect := 60
	maxConnect := 600
	fc := &FileConfig{
		Hub:        "GMP",
		MinConnect: &minConnect,
		MaxConnect: &maxConnect,
		GroupA:     GroupFile{Routes: []string{"US"}, Carriers: []string{"KE"}},
		Format:     "text",
		CacheTTL:   "2d",
	}

	cfg := DefaultConfig()
	cfg.MinConnect = 30
	changed := map[string]bool{"min-connect": true}

	if err := fc.ApplyTo(cfg, func(flag string) bool { return changed[flag] }); err != nil {
		t.Fatalf("ApplyTo failed: %v", err)
	}

	if cfg.MinConnect != 30 {
		t.Fatalf("expected flag value 30 to win, got %d", cfg.MinConnect)
	}
	if cfg.MaxConnect != 600 {
		t.Fatalf("expected file max_connect=600, got %d", cfg.MaxConnect)
	}
	if cfg.Hub != "GMP" || cfg.Format != "text" {
		t.Fatalf("expected file hub/format, got %q/%q", cfg.Hub, cfg.Format)
	}
	if cfg.CacheTTL != 48*time.Hour {
		t.Fatalf("expected cache ttl 48h, got %v", cfg.CacheTTL)
	}
	if len(cfg.GroupARoutes) != 1 || cfg.GroupARoutes[0] != "US" {
		t.Fatalf("unexpected group a routes: %v", cfg.GroupARoutes)
	}
	if cfg.OutboundDirection() != "From GMP" {
		t.Fatalf("expected outbound label to follow the file hub, got %q", cfg.OutboundDirection())
	}
}

func TestApplyToRejectsBadDuration(t *testing.T) {
	fc := &FileConfig{CacheTTL: "soon"}
	if err := fc.ApplyTo(DefaultConfig(), nil); err == nil {
		t.Fatal("expected invalid cache_ttl to fail")
	}
}

func TestAutoLoadFilePrefersCWD(t *testing.T) {
	cwd := t.TempDir()
	home := t.TempDir()

	writeConfig(t, filepath.Join(cwd, DefaultConfigFileYAML), "hub: CWD\n")
	writeConfig(t, filepath.Join(home, DefaultConfigFileYAML), "hub: HOM\n")

	t.Setenv("HOME", home)
	t.Chdir(cwd)

	cfg, path, err := AutoLoadFile()
	if err != nil {
		t.Fatalf("AutoLoadFile failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config file to be loaded")
	}
	if cfg.Hub != "CWD" {
		t.Fatalf("expected cwd config to win, got %q", cfg.Hub)
	}
	if path != DefaultConfigFileYAML {
		t.Fatalf("expected returned path to be %q, got %q", DefaultConfigFileYAML, path)
	}
}

func TestLoadFirstExistingFileNoMatch(t *testing.T) {
	cfg, path, err := LoadFirstExistingFile([]string{
		filepath.Join(t.TempDir(), "missing-1.yaml"),
		filepath.Join(t.TempDir(), "missing-2.yaml"),
	})
	if err != nil {
		t.Fatalf("expected no error when no files found, got %v", err)
	}
	if cfg != nil || path != "" {
		t.Fatalf("expected nil config and empty path, got cfg=%v path=%q", cfg, path)
	}
}

func TestLoadFirstExistingFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := LoadFirstExistingFile([]string{dir}); err == nil {
		t.Fatal("expected directory path to fail")
	}
}
